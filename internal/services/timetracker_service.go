package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mihira/deskpulse/internal/models"
	"github.com/mihira/deskpulse/internal/repository"
	"github.com/mihira/deskpulse/pkg/logger"
)

// runningSession is the single in-flight session for one user.
type runningSession struct {
	taskName  string
	startTime time.Time
}

// dailyTotal accumulates stopped seconds for one user's current
// calendar day. In-memory only, reset when the local day changes.
type dailyTotal struct {
	day     time.Time
	seconds int64
}

// TimeTrackerService drives the stopped→running→stopped session state
// machine and persists completed sessions. Only one session per user
// can be in flight; there is no paused state.
type TimeTrackerService struct {
	repo *repository.TimeEntryRepository
	now  func() time.Time

	mu       sync.Mutex
	sessions map[string]runningSession
	totals   map[string]dailyTotal
}

// NewTimeTrackerService creates a new instance of TimeTrackerService.
func NewTimeTrackerService(repo *repository.TimeEntryRepository) *TimeTrackerService {
	return &TimeTrackerService{
		repo:     repo,
		now:      time.Now,
		sessions: make(map[string]runningSession),
		totals:   make(map[string]dailyTotal),
	}
}

// Status reports the user's current tracker state.
func (s *TimeTrackerService) Status(userID string) (models.SessionStatus, *time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session, ok := s.sessions[userID]; ok {
		start := session.startTime
		return models.SessionRunning, &start
	}
	return models.SessionStopped, nil
}

// Start begins a session at the current wall-clock time. Starting
// while already running is rejected: a single start/stop pair is in
// flight at a time.
func (s *TimeTrackerService) Start(ctx context.Context, userID, taskName string) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, running := s.sessions[userID]; running {
		return time.Time{}, fmt.Errorf("a session is already running")
	}

	start := s.now()
	s.sessions[userID] = runningSession{taskName: taskName, startTime: start}

	logger.Log.WithFields(map[string]interface{}{
		"user_id": userID,
		"task":    taskName,
	}).Info("Tracker session started")
	return start, nil
}

// Stop ends the running session, persists the completed entry tagged
// with the local calendar date of its start, and adds the elapsed
// seconds to the day's running total.
func (s *TimeTrackerService) Stop(ctx context.Context, userID string) (*models.TimeEntry, error) {
	s.mu.Lock()
	session, running := s.sessions[userID]
	if !running {
		s.mu.Unlock()
		return nil, fmt.Errorf("no session is running")
	}
	delete(s.sessions, userID)
	s.mu.Unlock()

	end := s.now()
	elapsed := int64(end.Sub(session.startTime).Seconds())
	if elapsed < 0 {
		elapsed = 0
	}

	taskName := session.taskName
	if taskName == "" {
		taskName = "Unnamed Task"
	}

	entry := &models.TimeEntry{
		UserID:            userID,
		TaskName:          taskName,
		StartTime:         session.startTime,
		EndTime:           session.startTime.Add(time.Duration(elapsed) * time.Second),
		DurationInSeconds: elapsed,
		Date:              midnight(session.startTime),
	}

	saved, err := s.repo.AddEntry(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("failed to save time entry: %v", err)
	}

	s.addToDailyTotal(userID, entry.Date, elapsed)
	return saved, nil
}

func (s *TimeTrackerService) addToDailyTotal(userID string, day time.Time, seconds int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := s.totals[userID]
	if !total.day.Equal(day) {
		total = dailyTotal{day: day}
	}
	total.seconds += seconds
	s.totals[userID] = total
}

// DailyTotal returns the seconds accumulated today for the user.
func (s *TimeTrackerService) DailyTotal(userID string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := s.totals[userID]
	if !total.day.Equal(midnight(s.now())) {
		return 0
	}
	return total.seconds
}

// SaveEntry persists a completed session computed on the client. The
// entry keeps exactly the client-sent boundaries, tagged with the start
// time's calendar date.
func (s *TimeTrackerService) SaveEntry(ctx context.Context, userID string, entry *models.TimeEntry) (*models.TimeEntry, error) {
	if entry.DurationInSeconds < 0 {
		return nil, fmt.Errorf("duration cannot be negative")
	}

	entry.ID = ""
	entry.UserID = userID
	if entry.TaskName == "" {
		entry.TaskName = "Unnamed Task"
	}
	if entry.Date.IsZero() {
		entry.Date = midnight(entry.StartTime)
	}
	return s.repo.AddEntry(ctx, entry)
}

// GetEntries lists the user's sessions in date, then start order.
func (s *TimeTrackerService) GetEntries(ctx context.Context, userID string) ([]models.TimeEntry, error) {
	return s.repo.GetEntries(ctx, userID)
}

// UpdateEntry changes task name and duration only. The end time is
// recomputed from the immutable start time plus the new duration.
func (s *TimeTrackerService) UpdateEntry(ctx context.Context, userID, entryID, taskName string, durationInSeconds int64) (*models.TimeEntry, error) {
	if durationInSeconds < 0 {
		return nil, fmt.Errorf("duration cannot be negative")
	}

	existing, err := s.repo.GetEntryByID(ctx, entryID, userID)
	if err != nil {
		return nil, fmt.Errorf("time entry not found")
	}

	existing.TaskName = taskName
	existing.DurationInSeconds = durationInSeconds
	existing.EndTime = existing.StartTime.Add(time.Duration(durationInSeconds) * time.Second)

	if err := s.repo.UpdateEntry(ctx, existing); err != nil {
		return nil, fmt.Errorf("failed to update time entry: %v", err)
	}
	return existing, nil
}

// DeleteEntry removes one session, scoped to its owner.
func (s *TimeTrackerService) DeleteEntry(ctx context.Context, userID, entryID string) error {
	if err := s.repo.DeleteEntry(ctx, entryID, userID); err != nil {
		return fmt.Errorf("time entry not found")
	}
	return nil
}
