package repository

import (
	"context"
	"sort"

	"github.com/mihira/deskpulse/internal/models"
	"github.com/mihira/deskpulse/internal/storage"
	"github.com/mihira/deskpulse/pkg/logger"
)

// TimeEntryRepository handles storage operations for work sessions.
type TimeEntryRepository struct {
	collection *storage.Collection[models.TimeEntry]
}

// NewTimeEntryRepository opens the time entries collection.
func NewTimeEntryRepository(dataDir string) (*TimeEntryRepository, error) {
	collection, err := storage.NewCollection(dataDir, "time_entries",
		func(e *models.TimeEntry) string { return e.ID },
		func(e *models.TimeEntry, id string) { e.ID = id },
	)
	if err != nil {
		return nil, err
	}
	return &TimeEntryRepository{collection: collection}, nil
}

// GetEntries returns a user's sessions ordered by date, then start time.
func (r *TimeEntryRepository) GetEntries(ctx context.Context, userID string) ([]models.TimeEntry, error) {
	all, err := r.collection.List()
	if err != nil {
		return nil, err
	}

	var entries []models.TimeEntry
	for _, entry := range all {
		if entry.UserID == userID {
			entries = append(entries, entry)
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].Date.Equal(entries[j].Date) {
			return entries[i].Date.Before(entries[j].Date)
		}
		return entries[i].StartTime.Before(entries[j].StartTime)
	})
	return entries, nil
}

// GetEntryByID fetches one session, scoped to its owner.
func (r *TimeEntryRepository) GetEntryByID(ctx context.Context, id, userID string) (*models.TimeEntry, error) {
	entry, err := r.collection.Get(id)
	if err != nil {
		return nil, err
	}
	if entry.UserID != userID {
		return nil, storage.ErrNotFound
	}
	return entry, nil
}

// AddEntry appends a completed session.
func (r *TimeEntryRepository) AddEntry(ctx context.Context, entry *models.TimeEntry) (*models.TimeEntry, error) {
	if err := r.collection.Put(entry); err != nil {
		logger.Log.WithError(err).Error("Failed to insert time entry")
		return nil, err
	}
	logger.Log.WithField("entry_id", entry.ID).Info("Time entry saved")
	return entry, nil
}

// UpdateEntry replaces a session, scoped to its owner.
func (r *TimeEntryRepository) UpdateEntry(ctx context.Context, entry *models.TimeEntry) error {
	if _, err := r.GetEntryByID(ctx, entry.ID, entry.UserID); err != nil {
		return err
	}
	return r.collection.Put(entry)
}

// DeleteEntry removes a session, scoped to its owner.
func (r *TimeEntryRepository) DeleteEntry(ctx context.Context, id, userID string) error {
	if _, err := r.GetEntryByID(ctx, id, userID); err != nil {
		return err
	}
	return r.collection.Delete(id)
}
