package jobs

import (
	"github.com/mihira/deskpulse/internal/services"
	"github.com/sirupsen/logrus"
)

// SignupReaper drops pending signups whose OTP window has lapsed, so
// an abandoned registration never blocks the email address for long.
type SignupReaper struct {
	UserService *services.UserService
}

// NewSignupReaper creates a new instance of SignupReaper
func NewSignupReaper(userService *services.UserService) *SignupReaper {
	return &SignupReaper{UserService: userService}
}

// Run purges expired pending signups and logs how many were removed.
func (j *SignupReaper) Run() {
	purged := j.UserService.PurgeExpiredSignups()
	if purged > 0 {
		logrus.WithField("purged", purged).Info("Expired pending signups removed")
	}
}
