package models

// DashboardView is the composed read model returned for one user.
type DashboardView struct {
	Notes            []Note     `json:"notes"`
	Habits           []Habit    `json:"habits"`
	Goals            []GoalView `json:"goals"`
	PermittedWidgets []string   `json:"permitted_widgets"`
	HasSecurityPin   bool       `json:"has_security_pin"`
	IsPinVerified    bool       `json:"is_pin_verified"`
}
