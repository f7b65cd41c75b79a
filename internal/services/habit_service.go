package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mihira/deskpulse/internal/models"
	"github.com/mihira/deskpulse/internal/repository"
)

// HabitService encapsulates the business logic for habits.
type HabitService struct {
	repo *repository.HabitRepository
	now  func() time.Time
}

// NewHabitService creates a new instance of HabitService.
func NewHabitService(repo *repository.HabitRepository) *HabitService {
	return &HabitService{repo: repo, now: time.Now}
}

// GetHabits lists a user's habits, newest first.
func (s *HabitService) GetHabits(ctx context.Context, userID string) ([]models.Habit, error) {
	return s.repo.GetHabits(ctx, userID)
}

// AddHabitInput carries the habit creation fields. CustomDays uses
// weekday names ("Monday", ...) and only applies to Custom frequency.
type AddHabitInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Frequency   string   `json:"frequency"`
	CustomDays  []string `json:"custom_days"`
	StartDate   string   `json:"start_date"`
}

var weekdayNames = map[string]time.Weekday{
	"Sunday": time.Sunday, "Monday": time.Monday, "Tuesday": time.Tuesday,
	"Wednesday": time.Wednesday, "Thursday": time.Thursday,
	"Friday": time.Friday, "Saturday": time.Saturday,
}

// AddHabit stores a new habit. Unparseable custom days are skipped
// rather than rejected.
func (s *HabitService) AddHabit(ctx context.Context, userID string, input AddHabitInput) (*models.Habit, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("habit name cannot be empty")
	}

	habit := &models.Habit{
		UserID:      userID,
		Name:        input.Name,
		Description: input.Description,
		Frequency:   input.Frequency,
	}
	if habit.Frequency == "" {
		habit.Frequency = models.FrequencyDaily
	}

	if habit.Frequency == models.FrequencyCustom {
		for _, name := range input.CustomDays {
			if day, ok := weekdayNames[strings.TrimSpace(name)]; ok {
				habit.CustomDays = append(habit.CustomDays, day)
			}
		}
	}

	if input.StartDate != "" {
		if start, err := time.Parse("2006-01-02", input.StartDate); err == nil {
			habit.StartDate = start
		}
	}

	return s.repo.AddHabit(ctx, habit)
}

// ToggleToday flips today's completion mark for a habit.
func (s *HabitService) ToggleToday(ctx context.Context, userID, id string) (*models.Habit, error) {
	habit, err := s.repo.GetHabitByID(ctx, id)
	if err != nil || habit.UserID != userID {
		return nil, fmt.Errorf("habit not found")
	}

	today := midnight(s.now())
	if habit.CompletedOn(today) {
		kept := habit.CompletedDates[:0]
		for _, done := range habit.CompletedDates {
			if !midnight(done).Equal(today) {
				kept = append(kept, done)
			}
		}
		habit.CompletedDates = kept
	} else {
		habit.CompletedDates = append(habit.CompletedDates, today)
	}

	if err := s.repo.UpdateHabit(ctx, habit); err != nil {
		return nil, fmt.Errorf("failed to update habit: %v", err)
	}
	return habit, nil
}

// DeleteHabit removes a habit, scoped to its owner.
func (s *HabitService) DeleteHabit(ctx context.Context, userID, id string) error {
	habit, err := s.repo.GetHabitByID(ctx, id)
	if err != nil || habit.UserID != userID {
		return fmt.Errorf("habit not found")
	}
	return s.repo.DeleteHabit(ctx, id)
}
