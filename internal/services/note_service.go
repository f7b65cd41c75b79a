package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/mihira/deskpulse/internal/models"
	"github.com/mihira/deskpulse/internal/repository"
)

// NoteService encapsulates the business logic for dashboard notes.
type NoteService struct {
	repo *repository.NoteRepository
}

// NewNoteService creates a new instance of NoteService.
func NewNoteService(repo *repository.NoteRepository) *NoteService {
	return &NoteService{repo: repo}
}

// GetNotes lists a user's notes, newest first.
func (s *NoteService) GetNotes(ctx context.Context, userID string) ([]models.Note, error) {
	return s.repo.GetNotes(ctx, userID)
}

// AddNote stores a new note. Empty text is a validation failure.
func (s *NoteService) AddNote(ctx context.Context, userID, text string) (*models.Note, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("note text cannot be empty")
	}
	return s.repo.AddNote(ctx, &models.Note{UserID: userID, Text: text})
}

// EditNote rewrites a note's text, scoped to its owner.
func (s *NoteService) EditNote(ctx context.Context, userID, id, text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("note text cannot be empty")
	}
	if err := s.repo.UpdateNote(ctx, id, userID, text); err != nil {
		return fmt.Errorf("note not found")
	}
	return nil
}

// DeleteNote removes a note, scoped to its owner.
func (s *NoteService) DeleteNote(ctx context.Context, userID, id string) error {
	if err := s.repo.DeleteNote(ctx, id, userID); err != nil {
		return fmt.Errorf("note not found")
	}
	return nil
}
