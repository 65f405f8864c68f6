package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dayflow/core/internal/domain/entities"
	"github.com/dayflow/core/internal/infrastructure/logger"
	"github.com/dayflow/core/internal/ports"
)

// NoteService handles owner-scoped daily note operations
type NoteService struct {
	noteRepo ports.NoteRepository
	logger   *logger.Logger
}

// NewNoteService creates a new note service
func NewNoteService(noteRepo ports.NoteRepository, logger *logger.Logger) *NoteService {
	return &NoteService{
		noteRepo: noteRepo,
		logger:   logger,
	}
}

// SaveNote creates or overwrites the owner's note for a calendar day.
// Saving twice for the same day keeps a single note with the latest content.
func (s *NoteService) SaveNote(ctx context.Context, ownerID uuid.UUID, req ports.SaveNoteRequest) (*entities.DailyNote, error) {
	if !entities.ValidNoteDate(req.Date) {
		return nil, entities.ErrInvalidNoteDate
	}

	note := &entities.DailyNote{
		OwnerID: ownerID,
		Date:    req.Date,
		Content: req.Content,
	}

	if err := s.noteRepo.Upsert(ctx, note); err != nil {
		return nil, fmt.Errorf("failed to save note: %w", err)
	}

	s.logger.Info("Note saved", "owner_id", ownerID, "date", note.Date)

	return note, nil
}

// ListNotes returns all of the owner's daily notes
func (s *NoteService) ListNotes(ctx context.Context, ownerID uuid.UUID) ([]*entities.DailyNote, error) {
	notes, err := s.noteRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}

	return notes, nil
}
