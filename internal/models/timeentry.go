package models

import (
	"fmt"
	"time"
)

// SessionStatus is the closed set of tracker states. There is no
// persisted paused state: anything stored as "paused" is normalized to
// stopped on load.
type SessionStatus string

const (
	SessionStopped SessionStatus = "stopped"
	SessionRunning SessionStatus = "running"
)

// NormalizeSessionStatus maps legacy values onto the closed set.
func NormalizeSessionStatus(raw string) SessionStatus {
	if raw == string(SessionRunning) {
		return SessionRunning
	}
	return SessionStopped
}

// TimeEntry is one completed work session. DurationInSeconds is
// authoritative: EndTime is always recomputed as StartTime + duration
// on edit and is never independently editable.
type TimeEntry struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	TaskName          string    `json:"task_name"`
	StartTime         time.Time `json:"start_time"`
	EndTime           time.Time `json:"end_time"`
	DurationInSeconds int64     `json:"duration_in_seconds"`
	Date              time.Time `json:"date"`
}

// FormattedDuration renders the duration as hh:mm:ss.
func (e *TimeEntry) FormattedDuration() string {
	d := e.DurationInSeconds
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", d/3600, (d%3600)/60, d%60)
}
