package services

import (
	"context"
	"fmt"

	"github.com/mihira/deskpulse/internal/models"
	"github.com/mihira/deskpulse/pkg/logger"
)

// DashboardService composes the per-user dashboard read model.
type DashboardService struct {
	users  *UserService
	notes  *NoteService
	habits *HabitService
	goals  *GoalService
}

// NewDashboardService creates a new instance of DashboardService.
func NewDashboardService(users *UserService, notes *NoteService, habits *HabitService, goals *GoalService) *DashboardService {
	return &DashboardService{users: users, notes: notes, habits: habits, goals: goals}
}

// GetDashboard assembles notes, habits, goals with metrics, and the
// user's resolved widget permissions into one view. pinVerified comes
// from the caller's session token.
func (s *DashboardService) GetDashboard(ctx context.Context, userID string, pinVerified bool) (*models.DashboardView, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %v", err)
	}

	notes, err := s.notes.GetNotes(ctx, userID)
	if err != nil {
		logger.Log.WithError(err).Warn("Failed to load notes for dashboard")
	}

	habits, err := s.habits.GetHabits(ctx, userID)
	if err != nil {
		logger.Log.WithError(err).Warn("Failed to load habits for dashboard")
	}

	goals, err := s.goals.GetGoals(ctx, userID, "")
	if err != nil {
		logger.Log.WithError(err).Warn("Failed to load goals for dashboard")
	}

	if notes == nil {
		notes = []models.Note{}
	}
	if habits == nil {
		habits = []models.Habit{}
	}
	if goals == nil {
		goals = []models.GoalView{}
	}

	return &models.DashboardView{
		Notes:            notes,
		Habits:           habits,
		Goals:            goals,
		PermittedWidgets: user.PermittedWidgets,
		HasSecurityPin:   user.HasSecurityPin(),
		IsPinVerified:    pinVerified,
	}, nil
}
