// Package data is the client's local-first data layer. Mutations apply to
// the in-memory collections immediately, the result is mirrored to local
// storage, and when a session exists the change is propagated to the
// backend in the background. Reads never touch the network.
package data

import (
	"errors"
	"time"

	"github.com/dayflow/core/internal/domain/entities"
)

// Errors surfaced to callers of the data layer.
var (
	ErrDuplicateTask = errors.New("a task with this title already exists for that day")
	ErrTaskNotFound  = errors.New("task not found")
)

// SyncState describes how far a record has travelled toward the backend.
type SyncState string

const (
	// SyncLocal means the record exists only on this device.
	SyncLocal SyncState = "local"
	// SyncPending means a propagation request is queued or in flight.
	SyncPending SyncState = "pending"
	// SyncSynced means the backend has acknowledged the record.
	SyncSynced SyncState = "synced"
	// SyncFailed means the last propagation attempt was rejected or
	// never reached the backend.
	SyncFailed SyncState = "failed"
)

// Task is a client-side task record. IDs are opaque strings: records
// created offline carry a locally generated id until the backend assigns
// the canonical one.
type Task struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description *string           `json:"description,omitempty"`
	Category    entities.Category `json:"category"`
	Completed   bool              `json:"completed"`
	Date        time.Time         `json:"date"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	Sync        SyncState         `json:"sync"`
}

// Note is a client-side daily note, keyed by its calendar date.
type Note struct {
	Date      string    `json:"date"`
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updated_at"`
	Sync      SyncState `json:"sync"`
}

// TaskInput carries the caller-supplied fields for a new task.
type TaskInput struct {
	Title       string
	Description *string
	Category    entities.Category
	Date        time.Time
}

// TaskPatch carries a partial update; nil fields are left unchanged.
type TaskPatch struct {
	Title       *string
	Description *string
	Category    *entities.Category
	Date        *time.Time
}
