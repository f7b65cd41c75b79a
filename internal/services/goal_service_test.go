package services

import (
	"context"
	"testing"
	"time"

	"github.com/mihira/deskpulse/internal/models"
	"github.com/mihira/deskpulse/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGoalServiceForTest(t *testing.T) *GoalService {
	t.Helper()
	repo, err := repository.NewGoalRepository(t.TempDir())
	require.NoError(t, err)
	svc := NewGoalService(repo)
	svc.now = func() time.Time { return day(0) }
	return svc
}

func validGoal() *models.Goal {
	return &models.Goal{
		Title:       "Read 20 books",
		StartDate:   day(0),
		EndDate:     day(9),
		TargetValue: 20,
		Category:    "Study",
	}
}

func TestCreateGoal(t *testing.T) {
	ctx := context.Background()

	t.Run("Should store a valid goal with metrics attached", func(t *testing.T) {
		svc := newGoalServiceForTest(t)

		view, err := svc.CreateGoal(ctx, "u1", validGoal())
		require.NoError(t, err)

		assert.NotEmpty(t, view.ID)
		assert.Equal(t, "u1", view.UserID)
		assert.Equal(t, models.DifficultyMedium, view.Difficulty)
		assert.Equal(t, 10, view.Metrics.TotalDays)
	})

	t.Run("Should reject a short title", func(t *testing.T) {
		svc := newGoalServiceForTest(t)
		goal := validGoal()
		goal.Title = "ab"
		_, err := svc.CreateGoal(ctx, "u1", goal)
		assert.Error(t, err)
	})

	t.Run("Should reject a non-positive target", func(t *testing.T) {
		svc := newGoalServiceForTest(t)
		goal := validGoal()
		goal.TargetValue = 0
		_, err := svc.CreateGoal(ctx, "u1", goal)
		assert.Error(t, err)
	})

	t.Run("Should reject an unknown category", func(t *testing.T) {
		svc := newGoalServiceForTest(t)
		goal := validGoal()
		goal.Category = "Gaming"
		_, err := svc.CreateGoal(ctx, "u1", goal)
		assert.Error(t, err)
	})

	t.Run("Should reject an end date before the start", func(t *testing.T) {
		svc := newGoalServiceForTest(t)
		goal := validGoal()
		goal.EndDate = day(-1)
		_, err := svc.CreateGoal(ctx, "u1", goal)
		assert.Error(t, err)
	})
}

func TestGoalOwnership(t *testing.T) {
	ctx := context.Background()

	t.Run("Should hide another user's goal", func(t *testing.T) {
		svc := newGoalServiceForTest(t)
		created, err := svc.CreateGoal(ctx, "u1", validGoal())
		require.NoError(t, err)

		_, err = svc.GetGoal(ctx, created.ID, "u2")
		assert.Error(t, err)
		assert.Error(t, svc.DeleteGoal(ctx, created.ID, "u2"))

		_, err = svc.GetGoal(ctx, created.ID, "u1")
		assert.NoError(t, err)
	})

	t.Run("Should filter listings by category", func(t *testing.T) {
		svc := newGoalServiceForTest(t)
		_, err := svc.CreateGoal(ctx, "u1", validGoal())
		require.NoError(t, err)

		health := validGoal()
		health.Title = "Run 100 km"
		health.Category = "Health"
		_, err = svc.CreateGoal(ctx, "u1", health)
		require.NoError(t, err)

		all, err := svc.GetGoals(ctx, "u1", "")
		require.NoError(t, err)
		assert.Len(t, all, 2)

		study, err := svc.GetGoals(ctx, "u1", "Study")
		require.NoError(t, err)
		require.Len(t, study, 1)
		assert.Equal(t, "Read 20 books", study[0].Title)
	})
}

func TestUpdateProgress(t *testing.T) {
	ctx := context.Background()

	t.Run("Should set the current value directly without a log date", func(t *testing.T) {
		svc := newGoalServiceForTest(t)
		created, err := svc.CreateGoal(ctx, "u1", validGoal())
		require.NoError(t, err)

		view, err := svc.UpdateProgress(ctx, created.ID, "u1", 8, nil)
		require.NoError(t, err)
		assert.Equal(t, 8.0, view.CurrentValue)
		assert.Empty(t, view.DailyLogs)
	})

	t.Run("Should start a log and derive the value with a log date", func(t *testing.T) {
		svc := newGoalServiceForTest(t)
		created, err := svc.CreateGoal(ctx, "u1", validGoal())
		require.NoError(t, err)

		logDate := day(2)
		view, err := svc.UpdateProgress(ctx, created.ID, "u1", 5, &logDate)
		require.NoError(t, err)

		require.Len(t, view.DailyLogs, 10)
		assert.Equal(t, 5.0, view.DailyLogs[2].Actual)
		assert.Equal(t, 5.0, view.CurrentValue)

		// A second day adds up.
		second := day(4)
		view, err = svc.UpdateProgress(ctx, created.ID, "u1", 3, &second)
		require.NoError(t, err)
		assert.Equal(t, 8.0, view.CurrentValue)

		// Re-logging the same day overwrites, not accumulates.
		view, err = svc.UpdateProgress(ctx, created.ID, "u1", 7, &logDate)
		require.NoError(t, err)
		assert.Equal(t, 10.0, view.CurrentValue)
	})

	t.Run("Should reject a negative value", func(t *testing.T) {
		svc := newGoalServiceForTest(t)
		created, err := svc.CreateGoal(ctx, "u1", validGoal())
		require.NoError(t, err)

		_, err = svc.UpdateProgress(ctx, created.ID, "u1", -1, nil)
		assert.Error(t, err)
	})
}

func TestToggleComplete(t *testing.T) {
	ctx := context.Background()

	t.Run("Should flip completion and affect status", func(t *testing.T) {
		svc := newGoalServiceForTest(t)
		created, err := svc.CreateGoal(ctx, "u1", validGoal())
		require.NoError(t, err)

		view, err := svc.ToggleComplete(ctx, created.ID, "u1")
		require.NoError(t, err)
		assert.True(t, view.IsCompleted)
		assert.Equal(t, models.GoalCompleted, view.Metrics.Status)

		view, err = svc.ToggleComplete(ctx, created.ID, "u1")
		require.NoError(t, err)
		assert.False(t, view.IsCompleted)
	})
}

func TestSyncAllLogs(t *testing.T) {
	ctx := context.Background()

	t.Run("Should resync only log-backed goals", func(t *testing.T) {
		svc := newGoalServiceForTest(t)

		plain, err := svc.CreateGoal(ctx, "u1", validGoal())
		require.NoError(t, err)
		_, err = svc.UpdateProgress(ctx, plain.ID, "u1", 4, nil)
		require.NoError(t, err)

		logged := validGoal()
		logged.Title = "Logged goal"
		logged.DailyLogs = []models.DailyLog{{Date: day(1), Actual: 6}}
		created, err := svc.CreateGoal(ctx, "u1", logged)
		require.NoError(t, err)

		require.NoError(t, svc.SyncAllLogs(ctx))

		plainView, err := svc.GetGoal(ctx, plain.ID, "u1")
		require.NoError(t, err)
		assert.Equal(t, 4.0, plainView.CurrentValue)

		loggedView, err := svc.GetGoal(ctx, created.ID, "u1")
		require.NoError(t, err)
		assert.Len(t, loggedView.DailyLogs, 10)
		assert.Equal(t, 6.0, loggedView.CurrentValue)
	})
}
