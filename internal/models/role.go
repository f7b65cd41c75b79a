package models

// Role is a named permission set. Users inherit the role's permitted
// widgets and capability flags on every read.
type Role struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	PermittedWidgets []string `json:"permitted_widgets"`

	CanViewUsers       bool `json:"can_view_users"`
	CanAddUser         bool `json:"can_add_user"`
	CanEditUser        bool `json:"can_edit_user"`
	CanDeleteUser      bool `json:"can_delete_user"`
	CanAccessDashboard bool `json:"can_access_dashboard"`
	CanAccessWidgets   bool `json:"can_access_widgets"`
	CanAccessSettings  bool `json:"can_access_settings"`
}

// Built-in role names seeded on first run.
const (
	RoleAdmin   = "Admin"
	RoleUser    = "User"
	RolePrivate = "Private"
	RoleVisitor = "Visitor"
)

// DefaultRoles returns the four roles seeded when the registry file is
// absent. IDs are assigned by the repository at seed time.
func DefaultRoles() []Role {
	return []Role{
		{
			Name: RoleAdmin,
			PermittedWidgets: []string{
				"Weather Details", "Currency Conversion", "Time Conversion",
				"Headlines / News", "World Countries", "Personal Notes",
				"Habit Tracker", "Emergency Numbers", "Language Translator",
				"PDF Converter", "Goal Tracking",
			},
			CanViewUsers: true, CanAddUser: true, CanEditUser: true, CanDeleteUser: true,
			CanAccessDashboard: true, CanAccessWidgets: true, CanAccessSettings: true,
		},
		{
			Name: RoleUser,
			PermittedWidgets: []string{
				"Weather Details", "Currency Conversion", "Time Conversion",
				"Headlines / News", "World Countries", "Emergency Numbers",
				"Language Translator", "Goal Tracking",
			},
			CanViewUsers: true,
			CanAccessDashboard: true, CanAccessWidgets: true,
		},
		{
			Name: RolePrivate,
			PermittedWidgets: []string{
				"Weather Details", "Time Conversion", "Personal Notes",
				"Emergency Numbers", "Language Translator",
			},
			CanAccessDashboard: true, CanAccessWidgets: true,
		},
		{
			Name: RoleVisitor,
			PermittedWidgets: []string{
				"Weather Details", "Currency Conversion", "Time Conversion",
				"Headlines / News", "World Countries", "Emergency Numbers",
			},
			CanAccessDashboard: true,
		},
	}
}
