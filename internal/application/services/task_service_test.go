package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dayflow/core/internal/domain/entities"
	"github.com/dayflow/core/internal/infrastructure/logger"
	"github.com/dayflow/core/internal/ports"
)

func TestTaskService_CreateTask(t *testing.T) {
	taskRepo := new(MockTaskRepository)
	svc := NewTaskService(taskRepo, logger.NewNop())
	ownerID := mustUUID(t)

	taskRepo.On("Create", mock.Anything, mock.AnythingOfType("*entities.Task")).Return(nil)

	task, err := svc.CreateTask(context.Background(), ownerID, ports.CreateTaskRequest{
		Title:    "  Buy groceries  ",
		Category: "upcoming",
	})

	require.NoError(t, err)
	assert.Equal(t, "Buy groceries", task.Title, "title should be trimmed")
	assert.Equal(t, entities.CategoryUpcoming, task.Category)
	assert.Equal(t, ownerID, task.OwnerID)
	assert.False(t, task.Completed)
	assert.False(t, task.Date.IsZero(), "date defaults to now when omitted")
}

func TestTaskService_CreateTask_EmptyTitle(t *testing.T) {
	taskRepo := new(MockTaskRepository)
	svc := NewTaskService(taskRepo, logger.NewNop())

	_, err := svc.CreateTask(context.Background(), mustUUID(t), ports.CreateTaskRequest{
		Title: "   ",
	})

	assert.ErrorIs(t, err, entities.ErrEmptyTitle)
	taskRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestTaskService_CreateTask_UnknownCategoryDefaultsToToday(t *testing.T) {
	taskRepo := new(MockTaskRepository)
	svc := NewTaskService(taskRepo, logger.NewNop())

	taskRepo.On("Create", mock.Anything, mock.AnythingOfType("*entities.Task")).Return(nil)

	task, err := svc.CreateTask(context.Background(), mustUUID(t), ports.CreateTaskRequest{
		Title:    "Review PR",
		Category: "All",
	})

	require.NoError(t, err)
	assert.Equal(t, entities.CategoryToday, task.Category)
}

func TestTaskService_UpdateTask_PartialMerge(t *testing.T) {
	taskRepo := new(MockTaskRepository)
	svc := NewTaskService(taskRepo, logger.NewNop())
	ownerID := mustUUID(t)
	taskID := mustUUID(t)

	desc := "existing description"
	existing := &entities.Task{
		ID:          taskID,
		OwnerID:     ownerID,
		Title:       "Original title",
		Description: &desc,
		Category:    entities.CategoryToday,
		Date:        time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
	}
	taskRepo.On("GetByID", mock.Anything, ownerID, taskID).Return(existing, nil)
	taskRepo.On("Update", mock.Anything, mock.AnythingOfType("*entities.Task")).Return(nil)

	completed := true
	task, err := svc.UpdateTask(context.Background(), ownerID, taskID, ports.UpdateTaskRequest{
		Completed: &completed,
	})

	require.NoError(t, err)
	assert.True(t, task.Completed)
	assert.Equal(t, "Original title", task.Title, "unset fields stay unchanged")
	assert.Equal(t, &desc, task.Description)
}

func TestTaskService_UpdateTask_NotFound(t *testing.T) {
	taskRepo := new(MockTaskRepository)
	svc := NewTaskService(taskRepo, logger.NewNop())
	ownerID := mustUUID(t)
	taskID := mustUUID(t)

	taskRepo.On("GetByID", mock.Anything, ownerID, taskID).Return(nil, entities.ErrTaskNotFound)

	_, err := svc.UpdateTask(context.Background(), ownerID, taskID, ports.UpdateTaskRequest{})

	assert.ErrorIs(t, err, entities.ErrTaskNotFound)
}

func TestTaskService_UpdateTask_EmptyTitleRejected(t *testing.T) {
	taskRepo := new(MockTaskRepository)
	svc := NewTaskService(taskRepo, logger.NewNop())
	ownerID := mustUUID(t)
	taskID := mustUUID(t)

	existing := &entities.Task{ID: taskID, OwnerID: ownerID, Title: "Has a title", Category: entities.CategoryToday}
	taskRepo.On("GetByID", mock.Anything, ownerID, taskID).Return(existing, nil)

	blank := "   "
	_, err := svc.UpdateTask(context.Background(), ownerID, taskID, ports.UpdateTaskRequest{Title: &blank})

	assert.ErrorIs(t, err, entities.ErrEmptyTitle)
	taskRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestTaskService_DeleteTask_NotFound(t *testing.T) {
	taskRepo := new(MockTaskRepository)
	svc := NewTaskService(taskRepo, logger.NewNop())
	ownerID := mustUUID(t)
	taskID := mustUUID(t)

	taskRepo.On("Delete", mock.Anything, ownerID, taskID).Return(entities.ErrTaskNotFound)

	err := svc.DeleteTask(context.Background(), ownerID, taskID)
	assert.ErrorIs(t, err, entities.ErrTaskNotFound)
}

func TestTaskService_ListTasks(t *testing.T) {
	taskRepo := new(MockTaskRepository)
	svc := NewTaskService(taskRepo, logger.NewNop())
	ownerID := mustUUID(t)

	tasks := []*entities.Task{
		{Title: "Newest"},
		{Title: "Oldest"},
	}
	taskRepo.On("ListByOwner", mock.Anything, ownerID).Return(tasks, nil)

	got, err := svc.ListTasks(context.Background(), ownerID)
	require.NoError(t, err)
	assert.Equal(t, tasks, got)
}
