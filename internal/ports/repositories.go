package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/dayflow/core/internal/domain/entities"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
}

// TaskRepository defines the interface for task data operations.
// Every query is scoped to an owner id; a task belonging to a different
// owner is indistinguishable from a missing one.
type TaskRepository interface {
	Create(ctx context.Context, task *entities.Task) error
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*entities.Task, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*entities.Task, error)
	Update(ctx context.Context, task *entities.Task) error
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}

// NoteRepository defines the interface for daily note operations.
// Upsert is keyed by (owner, date).
type NoteRepository interface {
	Upsert(ctx context.Context, note *entities.DailyNote) error
	GetByDate(ctx context.Context, ownerID uuid.UUID, date string) (*entities.DailyNote, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*entities.DailyNote, error)
}
