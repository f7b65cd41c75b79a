package repository

import (
	"context"
	"sort"
	"time"

	"github.com/mihira/deskpulse/internal/models"
	"github.com/mihira/deskpulse/internal/storage"
)

// HabitRepository handles storage operations for habits.
type HabitRepository struct {
	collection *storage.Collection[models.Habit]
}

// NewHabitRepository opens the habits collection.
func NewHabitRepository(dataDir string) (*HabitRepository, error) {
	collection, err := storage.NewCollection(dataDir, "habits",
		func(h *models.Habit) string { return h.ID },
		func(h *models.Habit, id string) { h.ID = id },
	)
	if err != nil {
		return nil, err
	}
	return &HabitRepository{collection: collection}, nil
}

// GetHabits returns a user's habits, newest first.
func (r *HabitRepository) GetHabits(ctx context.Context, userID string) ([]models.Habit, error) {
	all, err := r.collection.List()
	if err != nil {
		return nil, err
	}

	var habits []models.Habit
	for _, habit := range all {
		if habit.UserID == userID {
			habits = append(habits, habit)
		}
	}
	sort.Slice(habits, func(i, j int) bool {
		return habits[i].CreatedAt.After(habits[j].CreatedAt)
	})
	return habits, nil
}

// GetHabitByID fetches one habit.
func (r *HabitRepository) GetHabitByID(ctx context.Context, id string) (*models.Habit, error) {
	return r.collection.Get(id)
}

// AddHabit stores a new habit.
func (r *HabitRepository) AddHabit(ctx context.Context, habit *models.Habit) (*models.Habit, error) {
	habit.CreatedAt = time.Now()
	if habit.StartDate.IsZero() {
		habit.StartDate = time.Now()
	}
	if err := r.collection.Put(habit); err != nil {
		return nil, err
	}
	return habit, nil
}

// UpdateHabit replaces a habit record.
func (r *HabitRepository) UpdateHabit(ctx context.Context, habit *models.Habit) error {
	if _, err := r.collection.Get(habit.ID); err != nil {
		return err
	}
	return r.collection.Put(habit)
}

// DeleteHabit removes a habit by ID.
func (r *HabitRepository) DeleteHabit(ctx context.Context, id string) error {
	return r.collection.Delete(id)
}
