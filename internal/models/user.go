package models

import "time"

// User represents an account in the dashboard.
//
// Role, RoleID and PermittedWidgets are linked: RoleID is the primary
// reference, Role keeps the legacy name for records predating role IDs,
// and PermittedWidgets is a cache overwritten from the resolved role on
// every repository read. The stored widget list is never authoritative.
type User struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	HashedPassword string `json:"hashed_password"`

	RoleID           string   `json:"role_id"`
	Role             string   `json:"role"`
	PermittedWidgets []string `json:"permitted_widgets"`

	SecurityPin     string `json:"security_pin,omitempty"`
	IsEmailVerified bool   `json:"is_email_verified"`

	LoginHistory []time.Time `json:"login_history,omitempty"`
	LoginCount   int         `json:"login_count"`
	LastLoginAt  *time.Time  `json:"last_login_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PublicUser is the safe projection returned to other users.
type PublicUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Public strips credentials and history from a user record.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// HasSecurityPin reports whether widget-level re-authentication is set up.
func (u *User) HasSecurityPin() bool {
	return u.SecurityPin != ""
}
