package models

import "time"

// Habit frequency values.
const (
	FrequencyDaily  = "Daily"
	FrequencyWeekly = "Weekly"
	FrequencyCustom = "Custom"
)

// Habit is a recurring activity checked off per day.
type Habit struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	Name        string `json:"name"`
	Description string `json:"description"`

	Frequency  string         `json:"frequency"`
	CustomDays []time.Weekday `json:"custom_days,omitempty"`
	StartDate  time.Time      `json:"start_date"`

	CompletedDates []time.Time `json:"completed_dates,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
}

// CompletedOn reports whether the habit was checked off on the given
// calendar day.
func (h *Habit) CompletedOn(day time.Time) bool {
	y, m, d := day.Date()
	for _, done := range h.CompletedDates {
		dy, dm, dd := done.Date()
		if dy == y && dm == m && dd == d {
			return true
		}
	}
	return false
}
