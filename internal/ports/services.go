package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dayflow/core/internal/domain/entities"
)

// AuthService interface for authentication operations
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	ValidateToken(tokenString string) (uuid.UUID, error)
}

// TaskService interface for owner-scoped task operations
type TaskService interface {
	CreateTask(ctx context.Context, ownerID uuid.UUID, req CreateTaskRequest) (*entities.Task, error)
	ListTasks(ctx context.Context, ownerID uuid.UUID) ([]*entities.Task, error)
	UpdateTask(ctx context.Context, ownerID, id uuid.UUID, req UpdateTaskRequest) (*entities.Task, error)
	DeleteTask(ctx context.Context, ownerID, id uuid.UUID) error
}

// NoteService interface for owner-scoped daily note operations
type NoteService interface {
	SaveNote(ctx context.Context, ownerID uuid.UUID, req SaveNoteRequest) (*entities.DailyNote, error)
	ListNotes(ctx context.Context, ownerID uuid.UUID) ([]*entities.DailyNote, error)
}

// Request/Response Types

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token string         `json:"token"`
	User  *entities.User `json:"user"`
}

type CreateTaskRequest struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=2000"`
	Category    string     `json:"category"`
	Completed   bool       `json:"completed"`
	Date        *time.Time `json:"date"`
}

// UpdateTaskRequest carries a partial update; nil fields are left as-is.
type UpdateTaskRequest struct {
	Title       *string    `json:"title" validate:"omitempty,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=2000"`
	Category    *string    `json:"category"`
	Completed   *bool      `json:"completed"`
	Date        *time.Time `json:"date"`
}

type SaveNoteRequest struct {
	Date    string `json:"date" validate:"required"`
	Content string `json:"content"`
}
