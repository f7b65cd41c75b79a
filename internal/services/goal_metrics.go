package services

import (
	"fmt"
	"math"
	"time"

	"github.com/mihira/deskpulse/internal/models"
)

// Weights and thresholds for the goal health model.
const (
	efficiencyWeight = 0.7
	progressWeight   = 0.3

	hardMultiplier   = 0.85
	easyMultiplier   = 1.1
	mediumMultiplier = 1.0

	deadlinePenalty = 0.5
)

// safeDiv divides num by den, returning fallback when the denominator
// is zero. Every derived metric goes through here so the
// zero-denominator policy lives in one place.
func safeDiv(num, den, fallback float64) float64 {
	if den == 0 {
		return fallback
	}
	return num / den
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// midnight truncates a timestamp to the local calendar date.
func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// daysBetween counts whole calendar days from a to b.
func daysBetween(a, b time.Time) int {
	return int(midnight(b).Sub(midnight(a)).Hours() / 24)
}

// pastDeadline reports whether the end date can no longer be beaten:
// once the clock is on the end date's day, an unfinished goal is late.
func pastDeadline(now, endDate time.Time) bool {
	return !midnight(now).Before(midnight(endDate))
}

func difficultyMultiplier(difficulty string) float64 {
	switch difficulty {
	case models.DifficultyHard:
		return hardMultiplier
	case models.DifficultyEasy:
		return easyMultiplier
	default:
		return mediumMultiplier
	}
}

// ComputeGoalMetrics derives the full metric view for a goal at the
// given instant. It is a pure function of the stored fields and now;
// nothing it returns is ever persisted.
func ComputeGoalMetrics(goal *models.Goal, now time.Time) models.GoalMetrics {
	totalDays := daysBetween(goal.StartDate, goal.EndDate) + 1
	if totalDays < 1 {
		totalDays = 1
	}

	dailyTarget := safeDiv(goal.TargetValue, float64(totalDays), 0)

	daysPassed := daysBetween(goal.StartDate, now)
	if daysPassed < 0 {
		daysPassed = 0
	}
	if daysPassed > totalDays {
		daysPassed = totalDays
	}

	daysRemaining := daysBetween(now, goal.EndDate)
	if daysRemaining < 0 {
		daysRemaining = 0
	}

	expectedDays := daysPassed + 1
	if expectedDays > totalDays {
		expectedDays = totalDays
	}
	expectedProgress := dailyTarget * float64(expectedDays)

	progress := clamp(safeDiv(goal.CurrentValue, goal.TargetValue, 0)*100, 0, 100)

	currentVelocity := goal.CurrentValue
	if daysPassed > 0 {
		currentVelocity = goal.CurrentValue / float64(daysPassed)
	}

	remaining := goal.TargetValue - goal.CurrentValue
	if remaining < 0 {
		remaining = 0
	}
	requiredVelocity := 0.0
	if remaining > 0 && daysRemaining > 0 {
		requiredVelocity = remaining / float64(daysRemaining)
	}

	efficiency := safeDiv(goal.CurrentValue, expectedProgress, 0) * 100
	if expectedProgress <= 0 {
		if goal.CurrentValue > 0 {
			efficiency = 100
		} else {
			efficiency = 0
		}
	}

	health := clamp(efficiency*efficiencyWeight+progress*progressWeight, 0, 100)
	health *= difficultyMultiplier(goal.Difficulty)
	if daysRemaining <= 1 && progress < 90 {
		health *= deadlinePenalty
	}
	health = clamp(health, 0, 100)

	completed := goal.IsCompleted || goal.CurrentValue >= goal.TargetValue

	status := deriveStatus(goal, now, completed, efficiency)

	metrics := models.GoalMetrics{
		Status:                status,
		TotalDays:             totalDays,
		DaysPassed:            daysPassed,
		DaysRemaining:         daysRemaining,
		DailyTarget:           dailyTarget,
		ExpectedProgress:      expectedProgress,
		ProgressPercentage:    progress,
		CurrentVelocity:       currentVelocity,
		RequiredVelocity:      requiredVelocity,
		PerformanceEfficiency: efficiency,
		HealthScore:           health,
		SmartSuggestion:       suggest(status, efficiency, requiredVelocity, now, goal.EndDate),
	}

	if daysPassed > 0 && goal.CurrentValue > 0 && currentVelocity > 0 {
		days := int(math.Ceil(remaining / currentVelocity))
		estimate := midnight(now).AddDate(0, 0, days)
		metrics.EstimatedCompletionDate = &estimate
	}

	if completed {
		metrics.AchievementBadges = badges(daysRemaining, totalDays, currentVelocity, dailyTarget)
	}

	return metrics
}

func deriveStatus(goal *models.Goal, now time.Time, completed bool, efficiency float64) models.GoalStatus {
	switch {
	case completed:
		return models.GoalCompleted
	case pastDeadline(now, goal.EndDate):
		return models.GoalLate
	case efficiency >= 95:
		return models.GoalOnTrack
	case efficiency >= 80:
		return models.GoalAtRisk
	default:
		return models.GoalBehind
	}
}

// suggest picks the coaching message. Tiers are evaluated in order and
// the first match wins.
func suggest(status models.GoalStatus, efficiency, requiredVelocity float64, now, endDate time.Time) string {
	switch {
	case status == models.GoalCompleted:
		return "Goal achieved, set a new challenge!"
	case pastDeadline(now, endDate):
		return "This goal is overdue. Review the target or extend the deadline."
	case efficiency >= 110:
		return "You are ahead of schedule, keep the momentum going."
	case efficiency >= 95:
		return "You are on track."
	case efficiency >= 80:
		return "Slightly at risk: increase your daily effort to stay on schedule."
	case efficiency >= 60:
		return fmt.Sprintf("You are behind: aim for %.1f per day to catch up.", requiredVelocity)
	default:
		return fmt.Sprintf("High risk of missing this goal: you need %.1f per day to recover.", requiredVelocity)
	}
}

// badges lists the achievements earned at completion time.
func badges(daysRemaining, totalDays int, currentVelocity, dailyTarget float64) []string {
	earned := []string{"Finisher"}
	if float64(daysRemaining) > float64(totalDays)*0.15 {
		earned = append(earned, "Early Bird")
	}
	if currentVelocity > dailyTarget*1.25 {
		earned = append(earned, "High Velocity")
	}
	return earned
}

// SyncDailyLogs rebuilds a goal's per-day log to span exactly the goal
// date range: one entry per calendar day, prior Actual values preserved
// by date match, new days zeroed. CurrentValue becomes the sum of all
// Actual values, so log-backed goals derive their progress entirely
// from the log. Goals without logs are left untouched. Idempotent.
func SyncDailyLogs(goal *models.Goal) {
	if len(goal.DailyLogs) == 0 {
		return
	}

	totalDays := daysBetween(goal.StartDate, goal.EndDate) + 1
	if totalDays < 1 {
		totalDays = 1
	}
	dailyTarget := safeDiv(goal.TargetValue, float64(totalDays), 0)

	actualByDate := make(map[time.Time]float64, len(goal.DailyLogs))
	for _, log := range goal.DailyLogs {
		actualByDate[midnight(log.Date)] = log.Actual
	}

	logs := make([]models.DailyLog, 0, totalDays)
	total := 0.0
	for i := 0; i < totalDays; i++ {
		date := midnight(goal.StartDate).AddDate(0, 0, i)
		actual := actualByDate[date]
		total += actual
		logs = append(logs, models.DailyLog{Date: date, Target: dailyTarget, Actual: actual})
	}

	goal.DailyLogs = logs
	goal.CurrentValue = total
}
