package repository

import (
	"context"
	"sort"
	"time"

	"github.com/mihira/deskpulse/internal/models"
	"github.com/mihira/deskpulse/internal/storage"
)

// NoteRepository handles storage operations for dashboard notes.
type NoteRepository struct {
	collection *storage.Collection[models.Note]
}

// NewNoteRepository opens the notes collection.
func NewNoteRepository(dataDir string) (*NoteRepository, error) {
	collection, err := storage.NewCollection(dataDir, "notes",
		func(n *models.Note) string { return n.ID },
		func(n *models.Note, id string) { n.ID = id },
	)
	if err != nil {
		return nil, err
	}
	return &NoteRepository{collection: collection}, nil
}

// GetNotes returns a user's notes, newest first.
func (r *NoteRepository) GetNotes(ctx context.Context, userID string) ([]models.Note, error) {
	all, err := r.collection.List()
	if err != nil {
		return nil, err
	}

	var notes []models.Note
	for _, note := range all {
		if note.UserID == userID {
			notes = append(notes, note)
		}
	}
	sort.Slice(notes, func(i, j int) bool {
		return notes[i].CreatedAt.After(notes[j].CreatedAt)
	})
	return notes, nil
}

// AddNote stores a new note.
func (r *NoteRepository) AddNote(ctx context.Context, note *models.Note) (*models.Note, error) {
	note.CreatedAt = time.Now()
	note.UpdatedAt = time.Now()
	if err := r.collection.Put(note); err != nil {
		return nil, err
	}
	return note, nil
}

// UpdateNote changes a note's text, scoped to its owner.
func (r *NoteRepository) UpdateNote(ctx context.Context, id, userID, text string) error {
	note, err := r.collection.Get(id)
	if err != nil {
		return err
	}
	if note.UserID != userID {
		return storage.ErrNotFound
	}

	note.Text = text
	note.UpdatedAt = time.Now()
	return r.collection.Put(note)
}

// DeleteNote removes a note, scoped to its owner.
func (r *NoteRepository) DeleteNote(ctx context.Context, id, userID string) error {
	note, err := r.collection.Get(id)
	if err != nil {
		return err
	}
	if note.UserID != userID {
		return storage.ErrNotFound
	}
	return r.collection.Delete(id)
}
