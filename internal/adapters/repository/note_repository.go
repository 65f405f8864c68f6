package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dayflow/core/internal/domain/entities"
	"github.com/dayflow/core/internal/ports"
)

// NoteRepositoryImpl implements the NoteRepository interface
type NoteRepositoryImpl struct {
	db *sqlx.DB
}

// NewNoteRepository creates a new daily note repository
func NewNoteRepository(db *sqlx.DB) ports.NoteRepository {
	return &NoteRepositoryImpl{db: db}
}

// Upsert inserts a note or overwrites the content of the existing note
// for the same (owner, date) key.
func (r *NoteRepositoryImpl) Upsert(ctx context.Context, note *entities.DailyNote) error {
	query := `
		INSERT INTO daily_notes (id, owner_id, date, content)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (owner_id, date)
		DO UPDATE SET content = EXCLUDED.content, updated_at = CURRENT_TIMESTAMP
		RETURNING id, created_at, updated_at`

	if note.ID == uuid.Nil {
		note.ID = uuid.New()
	}

	err := r.db.QueryRowContext(ctx, query,
		note.ID, note.OwnerID, note.Date, note.Content,
	).Scan(&note.ID, &note.CreatedAt, &note.UpdatedAt)

	if err != nil {
		return fmt.Errorf("upsert note: %w", err)
	}

	return nil
}

func (r *NoteRepositoryImpl) GetByDate(ctx context.Context, ownerID uuid.UUID, date string) (*entities.DailyNote, error) {
	query := `
		SELECT id, owner_id, date, content, created_at, updated_at
		FROM daily_notes
		WHERE owner_id = $1 AND date = $2`

	var note entities.DailyNote
	err := r.db.GetContext(ctx, &note, query, ownerID, date)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrNoteNotFound
		}
		return nil, fmt.Errorf("get note by date: %w", err)
	}

	return &note, nil
}

func (r *NoteRepositoryImpl) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*entities.DailyNote, error) {
	query := `
		SELECT id, owner_id, date, content, created_at, updated_at
		FROM daily_notes
		WHERE owner_id = $1
		ORDER BY date`

	notes := []*entities.DailyNote{}
	if err := r.db.SelectContext(ctx, &notes, query, ownerID); err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}

	return notes, nil
}
