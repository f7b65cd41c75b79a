package models

import "time"

// GoalStatus is the closed set of derived goal states.
type GoalStatus string

const (
	GoalCompleted GoalStatus = "Completed"
	GoalLate      GoalStatus = "Late"
	GoalOnTrack   GoalStatus = "On Track"
	GoalAtRisk    GoalStatus = "At Risk"
	GoalBehind    GoalStatus = "Behind"
)

// Goal difficulty levels, used to weight the health score.
const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"
)

// AllowedCategories lists the goal categories accepted at creation.
var AllowedCategories = map[string]struct{}{
	"Health":   {},
	"Finance":  {},
	"Study":    {},
	"Personal": {},
	"Career":   {},
}

// DailyLog is one day of a log-backed goal. When logs are present,
// CurrentValue is derived as the sum of Actual across all entries.
type DailyLog struct {
	Date   time.Time `json:"date"`
	Target float64   `json:"target"`
	Actual float64   `json:"actual"`
}

// Goal is a measurable target over a date range. All progress metrics
// are computed from the stored fields on every read and never persisted.
type Goal struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	Title       string `json:"title" validate:"required,min=3"`
	Description string `json:"description"`

	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	TargetValue  float64   `json:"target_value" validate:"gt=0"`
	CurrentValue float64   `json:"current_value"`

	Category   string `json:"category"`
	Priority   string `json:"priority"`
	Difficulty string `json:"difficulty"`

	IsCompleted bool       `json:"is_completed"`
	DailyLogs   []DailyLog `json:"daily_logs,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GoalMetrics is the derived view computed by the metrics engine.
type GoalMetrics struct {
	Status                  GoalStatus `json:"status"`
	TotalDays               int        `json:"total_days"`
	DaysPassed              int        `json:"days_passed"`
	DaysRemaining           int        `json:"days_remaining"`
	DailyTarget             float64    `json:"daily_target"`
	ExpectedProgress        float64    `json:"expected_progress"`
	ProgressPercentage      float64    `json:"progress_percentage"`
	CurrentVelocity         float64    `json:"current_velocity"`
	RequiredVelocity        float64    `json:"required_velocity"`
	PerformanceEfficiency   float64    `json:"performance_efficiency"`
	HealthScore             float64    `json:"health_score"`
	SmartSuggestion         string     `json:"smart_suggestion"`
	EstimatedCompletionDate *time.Time `json:"estimated_completion_date,omitempty"`
	AchievementBadges       []string   `json:"achievement_badges,omitempty"`
}

// GoalView pairs a stored goal with its computed metrics for API reads.
type GoalView struct {
	Goal
	Metrics GoalMetrics `json:"metrics"`
}
