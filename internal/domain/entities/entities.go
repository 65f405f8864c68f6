package entities

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrTaskNotFound       = errors.New("task not found")
	ErrNoteNotFound       = errors.New("note not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidCategory    = errors.New("invalid category")
	ErrEmptyTitle         = errors.New("task title must not be empty")
	ErrInvalidNoteDate    = errors.New("note date must be YYYY-MM-DD")
	ErrUnauthorized       = errors.New("unauthorized")
)

// Category is the stored task category. Only two values are persisted;
// "all" and "completed" are presentation filters, not storage states.
type Category string

const (
	CategoryToday    Category = "today"
	CategoryUpcoming Category = "upcoming"
)

// NoteDateLayout is the calendar-day granularity used for daily notes.
const NoteDateLayout = "2006-01-02"

// User represents an account holder.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Task represents a single task owned by exactly one user.
type Task struct {
	ID          uuid.UUID `json:"id" db:"id"`
	OwnerID     uuid.UUID `json:"-" db:"owner_id"`
	Title       string    `json:"title" db:"title"`
	Description *string   `json:"description,omitempty" db:"description"`
	Category    Category  `json:"category" db:"category"`
	Completed   bool      `json:"completed" db:"completed"`
	Date        time.Time `json:"date" db:"date"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// DailyNote is the single freeform note a user keeps per calendar day.
// Uniqueness of (owner, date) is enforced by the store; saves are upserts.
type DailyNote struct {
	ID        uuid.UUID `json:"id" db:"id"`
	OwnerID   uuid.UUID `json:"-" db:"owner_id"`
	Date      string    `json:"date" db:"date"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsValid reports whether c is a storable category.
func (c Category) IsValid() bool {
	switch c {
	case CategoryToday, CategoryUpcoming:
		return true
	default:
		return false
	}
}

// NormalizeCategory maps arbitrary input to a stored category. Legacy
// clients sent view filters ("All", "Completed") as categories; those and
// anything unknown collapse to today, which was also the legacy default.
func NormalizeCategory(raw string) Category {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(CategoryUpcoming):
		return CategoryUpcoming
	default:
		return CategoryToday
	}
}

// Validate checks the task's own invariants.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	if !t.Category.IsValid() {
		return ErrInvalidCategory
	}
	return nil
}

// SameDay reports whether the task falls on the given calendar day.
func (t *Task) SameDay(day time.Time) bool {
	y1, m1, d1 := t.Date.Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// ValidNoteDate reports whether s is a YYYY-MM-DD calendar day.
func ValidNoteDate(s string) bool {
	_, err := time.Parse(NoteDateLayout, s)
	return err == nil
}
