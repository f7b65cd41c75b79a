package services

import (
	"strings"
	"testing"
	"time"

	"github.com/mihira/deskpulse/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(offset int) time.Time {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	return base.AddDate(0, 0, offset)
}

func TestComputeGoalMetrics(t *testing.T) {
	t.Run("Should report completed with full health when target is reached", func(t *testing.T) {
		goal := &models.Goal{
			StartDate:    day(0),
			EndDate:      day(9),
			TargetValue:  100,
			CurrentValue: 100,
			Difficulty:   models.DifficultyMedium,
		}
		m := ComputeGoalMetrics(goal, day(5))

		assert.Equal(t, models.GoalCompleted, m.Status)
		assert.Equal(t, 100.0, m.ProgressPercentage)
		assert.Equal(t, 100.0, m.HealthScore)
		assert.Equal(t, "Goal achieved, set a new challenge!", m.SmartSuggestion)
		assert.Contains(t, m.AchievementBadges, "Finisher")
	})

	t.Run("Should report late after the deadline with no progress", func(t *testing.T) {
		goal := &models.Goal{
			StartDate:    day(-10),
			EndDate:      day(0),
			TargetValue:  50,
			CurrentValue: 0,
		}
		m := ComputeGoalMetrics(goal, day(1))

		assert.Equal(t, models.GoalLate, m.Status)
		assert.Equal(t, 0, m.DaysRemaining)
		assert.Equal(t, 0.0, m.ProgressPercentage)
		assert.Contains(t, m.SmartSuggestion, "overdue")
	})

	t.Run("Should report late on the end date itself when unfinished", func(t *testing.T) {
		goal := &models.Goal{
			StartDate:    day(-10),
			EndDate:      day(0),
			TargetValue:  100,
			CurrentValue: 0,
		}
		m := ComputeGoalMetrics(goal, day(0))

		assert.Equal(t, models.GoalLate, m.Status)
		assert.Equal(t, 0, m.DaysRemaining)
		assert.Contains(t, m.SmartSuggestion, "overdue")
	})

	t.Run("Should keep progress percentage within 0 and 100", func(t *testing.T) {
		cases := []struct {
			name    string
			current float64
			target  float64
		}{
			{"zero progress", 0, 100},
			{"overshoot", 250, 100},
			{"negative current", -5, 100},
			{"zero target", 10, 0},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				goal := &models.Goal{
					StartDate:    day(0),
					EndDate:      day(9),
					TargetValue:  tc.target,
					CurrentValue: tc.current,
				}
				m := ComputeGoalMetrics(goal, day(4))
				assert.GreaterOrEqual(t, m.ProgressPercentage, 0.0)
				assert.LessOrEqual(t, m.ProgressPercentage, 100.0)
				assert.GreaterOrEqual(t, m.HealthScore, 0.0)
				assert.LessOrEqual(t, m.HealthScore, 100.0)
			})
		}
	})

	t.Run("Should clamp days passed to the goal span", func(t *testing.T) {
		goal := &models.Goal{
			StartDate:   day(0),
			EndDate:     day(4),
			TargetValue: 10,
		}
		m := ComputeGoalMetrics(goal, day(30))
		assert.Equal(t, 5, m.TotalDays)
		assert.Equal(t, 5, m.DaysPassed)
	})

	t.Run("Should treat an inverted date range as a single day", func(t *testing.T) {
		goal := &models.Goal{
			StartDate:   day(5),
			EndDate:     day(0),
			TargetValue: 10,
		}
		m := ComputeGoalMetrics(goal, day(5))
		assert.Equal(t, 1, m.TotalDays)
		assert.Equal(t, 10.0, m.DailyTarget)
	})

	t.Run("Should compute velocities on a mid-flight goal", func(t *testing.T) {
		goal := &models.Goal{
			StartDate:    day(-4),
			EndDate:      day(5),
			TargetValue:  100,
			CurrentValue: 40,
		}
		m := ComputeGoalMetrics(goal, day(0))

		assert.Equal(t, 4, m.DaysPassed)
		assert.Equal(t, 5, m.DaysRemaining)
		assert.InDelta(t, 10.0, m.CurrentVelocity, 1e-9)
		assert.InDelta(t, 12.0, m.RequiredVelocity, 1e-9)
		require.NotNil(t, m.EstimatedCompletionDate)
		assert.Equal(t, day(6), *m.EstimatedCompletionDate)
	})

	t.Run("Should omit the completion estimate without velocity", func(t *testing.T) {
		goal := &models.Goal{
			StartDate:   day(0),
			EndDate:     day(9),
			TargetValue: 100,
		}
		m := ComputeGoalMetrics(goal, day(0))
		assert.Nil(t, m.EstimatedCompletionDate)
	})

	t.Run("Should apply the deadline penalty near the end", func(t *testing.T) {
		behind := &models.Goal{
			StartDate:    day(-9),
			EndDate:      day(1),
			TargetValue:  100,
			CurrentValue: 50,
		}
		safe := &models.Goal{
			StartDate:    day(-9),
			EndDate:      day(5),
			TargetValue:  100,
			CurrentValue: 50,
		}
		penalized := ComputeGoalMetrics(behind, day(0))
		unpenalized := ComputeGoalMetrics(safe, day(0))
		assert.Less(t, penalized.HealthScore, unpenalized.HealthScore)
	})

	t.Run("Should weight health by difficulty", func(t *testing.T) {
		mk := func(difficulty string) float64 {
			goal := &models.Goal{
				StartDate:    day(-4),
				EndDate:      day(5),
				TargetValue:  100,
				CurrentValue: 40,
				Difficulty:   difficulty,
			}
			return ComputeGoalMetrics(goal, day(0)).HealthScore
		}
		hard := mk(models.DifficultyHard)
		medium := mk(models.DifficultyMedium)
		easy := mk(models.DifficultyEasy)
		assert.Less(t, hard, medium)
		assert.GreaterOrEqual(t, easy, medium)
	})
}

func TestSuggestionTiers(t *testing.T) {
	mk := func(current float64) models.GoalMetrics {
		goal := &models.Goal{
			StartDate:    day(-4),
			EndDate:      day(5),
			TargetValue:  100,
			CurrentValue: current,
		}
		return ComputeGoalMetrics(goal, day(0))
	}

	t.Run("Should praise when well ahead of schedule", func(t *testing.T) {
		m := mk(60)
		assert.Contains(t, m.SmartSuggestion, "ahead of schedule")
	})
	t.Run("Should confirm on-track effort", func(t *testing.T) {
		m := mk(50)
		assert.Equal(t, models.GoalOnTrack, m.Status)
		assert.Equal(t, "You are on track.", m.SmartSuggestion)
	})
	t.Run("Should warn when slightly at risk", func(t *testing.T) {
		m := mk(42)
		assert.Equal(t, models.GoalAtRisk, m.Status)
		assert.Contains(t, m.SmartSuggestion, "Slightly at risk")
	})
	t.Run("Should prescribe a catch-up pace when behind", func(t *testing.T) {
		m := mk(32)
		assert.Equal(t, models.GoalBehind, m.Status)
		assert.True(t, strings.HasPrefix(m.SmartSuggestion, "You are behind"))
	})
	t.Run("Should flag high risk when far behind", func(t *testing.T) {
		m := mk(5)
		assert.Contains(t, m.SmartSuggestion, "High risk")
	})
}

func TestAchievementBadges(t *testing.T) {
	t.Run("Should award early bird and high velocity for a fast finish", func(t *testing.T) {
		goal := &models.Goal{
			StartDate:    day(-2),
			EndDate:      day(17),
			TargetValue:  100,
			CurrentValue: 100,
		}
		m := ComputeGoalMetrics(goal, day(0))
		assert.ElementsMatch(t, []string{"Finisher", "Early Bird", "High Velocity"}, m.AchievementBadges)
	})

	t.Run("Should award only finisher for a last-minute finish", func(t *testing.T) {
		goal := &models.Goal{
			StartDate:    day(-9),
			EndDate:      day(0),
			TargetValue:  100,
			CurrentValue: 100,
		}
		m := ComputeGoalMetrics(goal, day(0))
		assert.Equal(t, []string{"Finisher"}, m.AchievementBadges)
	})

	t.Run("Should award no badges while incomplete", func(t *testing.T) {
		goal := &models.Goal{
			StartDate:    day(-2),
			EndDate:      day(7),
			TargetValue:  100,
			CurrentValue: 50,
		}
		m := ComputeGoalMetrics(goal, day(0))
		assert.Empty(t, m.AchievementBadges)
	})
}

func TestSyncDailyLogs(t *testing.T) {
	t.Run("Should leave goals without logs untouched", func(t *testing.T) {
		goal := &models.Goal{
			StartDate:    day(0),
			EndDate:      day(9),
			TargetValue:  100,
			CurrentValue: 42,
		}
		SyncDailyLogs(goal)
		assert.Empty(t, goal.DailyLogs)
		assert.Equal(t, 42.0, goal.CurrentValue)
	})

	t.Run("Should span the full date range and derive the current value", func(t *testing.T) {
		goal := &models.Goal{
			StartDate:   day(0),
			EndDate:     day(4),
			TargetValue: 50,
			DailyLogs: []models.DailyLog{
				{Date: day(1), Actual: 7},
				{Date: day(3), Actual: 3},
			},
		}
		SyncDailyLogs(goal)

		require.Len(t, goal.DailyLogs, 5)
		assert.Equal(t, 10.0, goal.CurrentValue)
		for i, log := range goal.DailyLogs {
			assert.Equal(t, day(i), log.Date)
			assert.Equal(t, 10.0, log.Target)
		}
		assert.Equal(t, 7.0, goal.DailyLogs[1].Actual)
		assert.Equal(t, 3.0, goal.DailyLogs[3].Actual)
	})

	t.Run("Should drop log entries outside the date range", func(t *testing.T) {
		goal := &models.Goal{
			StartDate:   day(0),
			EndDate:     day(2),
			TargetValue: 30,
			DailyLogs: []models.DailyLog{
				{Date: day(-5), Actual: 99},
				{Date: day(1), Actual: 4},
			},
		}
		SyncDailyLogs(goal)

		require.Len(t, goal.DailyLogs, 3)
		assert.Equal(t, 4.0, goal.CurrentValue)
	})

	t.Run("Should be idempotent", func(t *testing.T) {
		goal := &models.Goal{
			StartDate:   day(0),
			EndDate:     day(6),
			TargetValue: 70,
			DailyLogs: []models.DailyLog{
				{Date: day(2), Actual: 12},
			},
		}
		SyncDailyLogs(goal)
		first := append([]models.DailyLog(nil), goal.DailyLogs...)
		firstValue := goal.CurrentValue

		SyncDailyLogs(goal)
		assert.Equal(t, first, goal.DailyLogs)
		assert.Equal(t, firstValue, goal.CurrentValue)
	})
}
