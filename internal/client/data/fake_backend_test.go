package data

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dayflow/core/internal/client/api"
	"github.com/dayflow/core/internal/domain/entities"
	"github.com/dayflow/core/internal/ports"
)

var errOffline = errors.New("connection refused")

// fakeBackend is an in-memory stand-in for the API server. It keeps tasks
// in creation order, can be taken offline, and can hold one create or update
// request hostage on a gate channel to exercise in-flight interleavings.
type fakeBackend struct {
	mu      sync.Mutex
	tasks   map[string]*entities.Task
	order   []string
	notes   map[string]*entities.DailyNote
	offline bool

	createCalls int
	updateCalls int
	deleteCalls int
	saveCalls   int

	createGate chan struct{}
	updateGate chan struct{}
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		tasks: make(map[string]*entities.Task),
		notes: make(map[string]*entities.DailyNote),
	}
}

func (f *fakeBackend) seedTask(title string) *entities.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	task := &entities.Task{
		ID:        uuid.New(),
		Title:     title,
		Category:  entities.CategoryToday,
		Date:      time.Now(),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	f.tasks[task.ID.String()] = task
	f.order = append(f.order, task.ID.String())
	return task
}

func (f *fakeBackend) setOffline(offline bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.offline = offline
}

func (f *fakeBackend) taskTitles() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	titles := make([]string, 0, len(f.order))
	for _, id := range f.order {
		titles = append(titles, f.tasks[id].Title)
	}
	return titles
}

func (f *fakeBackend) calls() (create, update, del, save int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.createCalls, f.updateCalls, f.deleteCalls, f.saveCalls
}

func (f *fakeBackend) Signup(ctx context.Context, req ports.RegisterRequest) (*ports.AuthResponse, error) {
	return nil, errors.New("not supported by fake")
}

func (f *fakeBackend) Login(ctx context.Context, req ports.LoginRequest) (*ports.AuthResponse, error) {
	return nil, errors.New("not supported by fake")
}

func (f *fakeBackend) ListTasks(ctx context.Context, token string) ([]*entities.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.offline {
		return nil, errOffline
	}
	out := make([]*entities.Task, 0, len(f.order))
	for i := len(f.order) - 1; i >= 0; i-- {
		copied := *f.tasks[f.order[i]]
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeBackend) CreateTask(ctx context.Context, token string, req ports.CreateTaskRequest) (*entities.Task, error) {
	f.mu.Lock()
	f.createCalls++
	gate := f.createGate
	f.createGate = nil
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.offline {
		return nil, errOffline
	}

	date := time.Now()
	if req.Date != nil {
		date = *req.Date
	}
	task := &entities.Task{
		ID:          uuid.New(),
		Title:       req.Title,
		Description: req.Description,
		Category:    entities.NormalizeCategory(req.Category),
		Completed:   req.Completed,
		Date:        date,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	f.tasks[task.ID.String()] = task
	f.order = append(f.order, task.ID.String())
	copied := *task
	return &copied, nil
}

func (f *fakeBackend) UpdateTask(ctx context.Context, token, id string, req ports.UpdateTaskRequest) (*entities.Task, error) {
	f.mu.Lock()
	f.updateCalls++
	gate := f.updateGate
	f.updateGate = nil
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.offline {
		return nil, errOffline
	}
	task, ok := f.tasks[id]
	if !ok {
		return nil, &api.Error{StatusCode: http.StatusNotFound, Message: "Task not found"}
	}
	if req.Title != nil {
		task.Title = *req.Title
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
	task.UpdatedAt = time.Now()
	copied := *task
	return &copied, nil
}

func (f *fakeBackend) DeleteTask(ctx context.Context, token, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	if f.offline {
		return errOffline
	}
	if _, ok := f.tasks[id]; !ok {
		return &api.Error{StatusCode: http.StatusNotFound, Message: "Task not found"}
	}
	delete(f.tasks, id)
	for i, oid := range f.order {
		if oid == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeBackend) ListNotes(ctx context.Context, token string) ([]*entities.DailyNote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.offline {
		return nil, errOffline
	}
	out := make([]*entities.DailyNote, 0, len(f.notes))
	for _, n := range f.notes {
		copied := *n
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeBackend) SaveNote(ctx context.Context, token string, req ports.SaveNoteRequest) (*entities.DailyNote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saveCalls++
	if f.offline {
		return nil, errOffline
	}
	note, ok := f.notes[req.Date]
	if !ok {
		note = &entities.DailyNote{ID: uuid.New(), Date: req.Date, CreatedAt: time.Now()}
		f.notes[req.Date] = note
	}
	note.Content = req.Content
	note.UpdatedAt = time.Now()
	copied := *note
	return &copied, nil
}

func (f *fakeBackend) Health(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.offline {
		return errOffline
	}
	return nil
}
