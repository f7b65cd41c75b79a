package scheduler

import (
	"context"

	"github.com/mihira/deskpulse/internal/jobs"
	"github.com/mihira/deskpulse/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// StartCronJobs wires the periodic maintenance work: reaping expired
// signups and keeping every goal's daily log span aligned with its
// date range across midnight.
func StartCronJobs(userService *services.UserService, goalService *services.GoalService) *cron.Cron {
	c := cron.New()

	reaper := jobs.NewSignupReaper(userService)

	// Expired OTP signups
	c.AddFunc("*/5 * * * *", func() {
		reaper.Run()
	})

	// Nightly daily-log resync
	c.AddFunc("0 0 * * *", func() {
		if err := goalService.SyncAllLogs(context.Background()); err != nil {
			logrus.WithError(err).Error("SyncAllLogs failed")
		}
	})

	c.Start()
	logrus.Info("Cron jobs started")
	return c
}
