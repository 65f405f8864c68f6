package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dayflow/core/internal/domain/entities"
	"github.com/dayflow/core/internal/infrastructure/logger"
	"github.com/dayflow/core/internal/ports"
)

// TaskService handles owner-scoped task operations
type TaskService struct {
	taskRepo ports.TaskRepository
	logger   *logger.Logger
}

// NewTaskService creates a new task service
func NewTaskService(taskRepo ports.TaskRepository, logger *logger.Logger) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		logger:   logger,
	}
}

// CreateTask creates a new task for the given owner
func (s *TaskService) CreateTask(ctx context.Context, ownerID uuid.UUID, req ports.CreateTaskRequest) (*entities.Task, error) {
	date := time.Now()
	if req.Date != nil {
		date = *req.Date
	}

	task := &entities.Task{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Category:    entities.NormalizeCategory(req.Category),
		Completed:   req.Completed,
		Date:        date,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.logger.Info("Task created", "task_id", task.ID, "owner_id", ownerID)

	return task, nil
}

// ListTasks returns all of the owner's tasks, newest-created first
func (s *TaskService) ListTasks(ctx context.Context, ownerID uuid.UUID) ([]*entities.Task, error) {
	tasks, err := s.taskRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, nil
}

// UpdateTask applies a partial update to an owner's task
func (s *TaskService) UpdateTask(ctx context.Context, ownerID, id uuid.UUID, req ports.UpdateTaskRequest) (*entities.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		task.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		task.Description = req.Description
	}
	if req.Category != nil {
		task.Category = entities.NormalizeCategory(*req.Category)
	}
	if req.Completed != nil {
		task.Completed = *req.Completed
	}
	if req.Date != nil {
		task.Date = *req.Date
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, err
	}

	s.logger.Info("Task updated", "task_id", task.ID, "owner_id", ownerID)

	return task, nil
}

// DeleteTask removes an owner's task; deletion is final
func (s *TaskService) DeleteTask(ctx context.Context, ownerID, id uuid.UUID) error {
	if err := s.taskRepo.Delete(ctx, ownerID, id); err != nil {
		return err
	}

	s.logger.Info("Task deleted", "task_id", id, "owner_id", ownerID)

	return nil
}
