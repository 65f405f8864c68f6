package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dayflow/core/internal/application/services"
	"github.com/dayflow/core/internal/domain/entities"
	"github.com/dayflow/core/internal/infrastructure/logger"
	"github.com/dayflow/core/internal/ports"
)

// NoteHandler handles daily note requests
type NoteHandler struct {
	noteService *services.NoteService
	logger      *logger.Logger
}

// NewNoteHandler creates a new note handler
func NewNoteHandler(noteService *services.NoteService, logger *logger.Logger) *NoteHandler {
	return &NoteHandler{
		noteService: noteService,
		logger:      logger,
	}
}

// ListNotes godoc
// @Summary List the caller's daily notes
// @Tags notes
// @Produce json
// @Success 200 {array} entities.DailyNote
// @Security BearerAuth
// @Router /api/notes [get]
func (h *NoteHandler) ListNotes(c echo.Context) error {
	ownerID := getUserIDFromContext(c)

	notes, err := h.noteService.ListNotes(c.Request().Context(), ownerID)
	if err != nil {
		h.logger.Error("List notes failed", "error", err, "owner_id", ownerID)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list notes")
	}

	return c.JSON(http.StatusOK, notes)
}

// SaveNote godoc
// @Summary Create or overwrite the note for a calendar day
// @Tags notes
// @Accept json
// @Produce json
// @Param request body ports.SaveNoteRequest true "Note"
// @Success 200 {object} entities.DailyNote
// @Security BearerAuth
// @Router /api/notes [post]
func (h *NoteHandler) SaveNote(c echo.Context) error {
	ownerID := getUserIDFromContext(c)

	var req ports.SaveNoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	note, err := h.noteService.SaveNote(c.Request().Context(), ownerID, req)
	if err != nil {
		if errors.Is(err, entities.ErrInvalidNoteDate) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		h.logger.Error("Save note failed", "error", err, "owner_id", ownerID)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to save note")
	}

	return c.JSON(http.StatusOK, note)
}
