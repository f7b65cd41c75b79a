package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mihira/deskpulse/internal/models"
	"github.com/mihira/deskpulse/internal/repository"
	"github.com/mihira/deskpulse/pkg/logger"
)

// GoalService encapsulates the business logic for goals.
type GoalService struct {
	repo     *repository.GoalRepository
	validate *validator.Validate
	now      func() time.Time
}

// NewGoalService creates a new instance of GoalService.
func NewGoalService(repo *repository.GoalRepository) *GoalService {
	return &GoalService{
		repo:     repo,
		validate: validator.New(),
		now:      time.Now,
	}
}

// view attaches computed metrics to a stored goal.
func (s *GoalService) view(goal *models.Goal) models.GoalView {
	return models.GoalView{
		Goal:    *goal,
		Metrics: ComputeGoalMetrics(goal, s.now()),
	}
}

// CreateGoal validates and stores a new goal for the given user.
func (s *GoalService) CreateGoal(ctx context.Context, userID string, goal *models.Goal) (*models.GoalView, error) {
	goal.UserID = userID

	if err := s.validate.Struct(goal); err != nil {
		logger.Log.WithError(err).Warn("Goal validation failed")
		return nil, fmt.Errorf("invalid goal: %v", err)
	}
	if goal.Category != "" {
		if _, ok := models.AllowedCategories[goal.Category]; !ok {
			return nil, fmt.Errorf("invalid category %q", goal.Category)
		}
	}
	if goal.EndDate.Before(goal.StartDate) {
		return nil, fmt.Errorf("end date cannot precede start date")
	}
	if goal.CurrentValue < 0 {
		return nil, fmt.Errorf("current value cannot be negative")
	}
	if goal.Difficulty == "" {
		goal.Difficulty = models.DifficultyMedium
	}

	SyncDailyLogs(goal)

	created, err := s.repo.CreateGoal(ctx, goal)
	if err != nil {
		return nil, fmt.Errorf("failed to create goal: %v", err)
	}

	logger.Log.WithField("goal_id", created.ID).Info("Goal created in service layer")
	view := s.view(created)
	return &view, nil
}

// GetGoal retrieves one goal with computed metrics, scoped to its owner.
func (s *GoalService) GetGoal(ctx context.Context, id, userID string) (*models.GoalView, error) {
	goal, err := s.repo.GetGoalByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get goal: %v", err)
	}
	if goal.UserID != userID {
		return nil, fmt.Errorf("goal not found")
	}

	view := s.view(goal)
	return &view, nil
}

// GetGoals retrieves a user's goals with computed metrics and an
// optional category filter.
func (s *GoalService) GetGoals(ctx context.Context, userID, category string) ([]models.GoalView, error) {
	goals, err := s.repo.GetGoals(ctx, userID, category)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch goals: %v", err)
	}

	views := make([]models.GoalView, 0, len(goals))
	for i := range goals {
		views = append(views, s.view(&goals[i]))
	}
	return views, nil
}

// UpdateGoal replaces the mutable fields of an existing goal.
func (s *GoalService) UpdateGoal(ctx context.Context, id, userID string, updated *models.Goal) (*models.GoalView, error) {
	goal, err := s.repo.GetGoalByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get goal: %v", err)
	}
	if goal.UserID != userID {
		return nil, fmt.Errorf("goal not found")
	}

	goal.Title = updated.Title
	goal.Description = updated.Description
	goal.StartDate = updated.StartDate
	goal.EndDate = updated.EndDate
	goal.TargetValue = updated.TargetValue
	goal.CurrentValue = updated.CurrentValue
	goal.Category = updated.Category
	goal.Priority = updated.Priority
	goal.Difficulty = updated.Difficulty
	goal.IsCompleted = updated.IsCompleted
	goal.DailyLogs = updated.DailyLogs

	if err := s.validate.Struct(goal); err != nil {
		return nil, fmt.Errorf("invalid goal: %v", err)
	}

	SyncDailyLogs(goal)

	saved, err := s.repo.UpdateGoal(ctx, goal)
	if err != nil {
		return nil, fmt.Errorf("failed to update goal: %v", err)
	}

	logger.Log.WithField("goal_id", id).Info("Goal updated in service layer")
	view := s.view(saved)
	return &view, nil
}

// UpdateProgress adjusts the current value, or one daily log entry for
// log-backed goals.
func (s *GoalService) UpdateProgress(ctx context.Context, id, userID string, value float64, logDate *time.Time) (*models.GoalView, error) {
	goal, err := s.repo.GetGoalByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get goal: %v", err)
	}
	if goal.UserID != userID {
		return nil, fmt.Errorf("goal not found")
	}
	if value < 0 {
		return nil, fmt.Errorf("progress value cannot be negative")
	}

	if logDate != nil {
		s.upsertDailyLog(goal, *logDate, value)
		SyncDailyLogs(goal)
	} else {
		goal.CurrentValue = value
	}

	saved, err := s.repo.UpdateGoal(ctx, goal)
	if err != nil {
		return nil, fmt.Errorf("failed to update goal progress: %v", err)
	}

	view := s.view(saved)
	return &view, nil
}

// upsertDailyLog records the actual value for one calendar day,
// starting the log when the goal had none.
func (s *GoalService) upsertDailyLog(goal *models.Goal, date time.Time, actual float64) {
	day := midnight(date)
	for i := range goal.DailyLogs {
		if midnight(goal.DailyLogs[i].Date).Equal(day) {
			goal.DailyLogs[i].Actual = actual
			return
		}
	}
	goal.DailyLogs = append(goal.DailyLogs, models.DailyLog{Date: day, Actual: actual})
}

// SyncLogs rebuilds the goal's daily log span and rederives the
// current value, persisting the result.
func (s *GoalService) SyncLogs(ctx context.Context, id, userID string) (*models.GoalView, error) {
	goal, err := s.repo.GetGoalByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get goal: %v", err)
	}
	if goal.UserID != userID {
		return nil, fmt.Errorf("goal not found")
	}

	SyncDailyLogs(goal)

	saved, err := s.repo.UpdateGoal(ctx, goal)
	if err != nil {
		return nil, fmt.Errorf("failed to sync goal logs: %v", err)
	}

	view := s.view(saved)
	return &view, nil
}

// ToggleComplete flips the completion flag.
func (s *GoalService) ToggleComplete(ctx context.Context, id, userID string) (*models.GoalView, error) {
	goal, err := s.repo.GetGoalByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get goal: %v", err)
	}
	if goal.UserID != userID {
		return nil, fmt.Errorf("goal not found")
	}

	goal.IsCompleted = !goal.IsCompleted
	saved, err := s.repo.UpdateGoal(ctx, goal)
	if err != nil {
		return nil, fmt.Errorf("failed to toggle goal: %v", err)
	}

	view := s.view(saved)
	return &view, nil
}

// DeleteGoal removes a goal, scoped to its owner.
func (s *GoalService) DeleteGoal(ctx context.Context, id, userID string) error {
	goal, err := s.repo.GetGoalByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get goal: %v", err)
	}
	if goal.UserID != userID {
		return fmt.Errorf("goal not found")
	}

	if err := s.repo.DeleteGoal(ctx, id); err != nil {
		return fmt.Errorf("failed to delete goal: %v", err)
	}
	return nil
}

// SyncAllLogs rebuilds daily logs for every log-backed goal. Run
// nightly by the scheduler so log spans follow date edits.
func (s *GoalService) SyncAllLogs(ctx context.Context) error {
	goals, err := s.repo.GetAllGoals(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch goals: %v", err)
	}

	for i := range goals {
		if len(goals[i].DailyLogs) == 0 {
			continue
		}
		SyncDailyLogs(&goals[i])
		if _, err := s.repo.UpdateGoal(ctx, &goals[i]); err != nil {
			logger.Log.WithError(err).WithField("goal_id", goals[i].ID).Warn("Failed to sync goal logs")
		}
	}
	return nil
}
