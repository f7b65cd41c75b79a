package services

import (
	"context"
	"fmt"

	"github.com/mihira/deskpulse/internal/models"
	"github.com/mihira/deskpulse/internal/repository"
	"github.com/mihira/deskpulse/pkg/logger"
)

// RolePermissionsView pairs the role registry with the widget catalog
// for the admin permissions screen.
type RolePermissionsView struct {
	Roles               []models.Role `json:"roles"`
	AllAvailableWidgets []string      `json:"all_available_widgets"`
}

// RoleService encapsulates the business logic for role administration.
type RoleService struct {
	repo    *repository.RoleRepository
	widgets *repository.WidgetRepository
}

// NewRoleService creates a new instance of RoleService.
func NewRoleService(repo *repository.RoleRepository, widgets *repository.WidgetRepository) *RoleService {
	return &RoleService{repo: repo, widgets: widgets}
}

// GetPermissionsView returns every role plus the full widget catalog.
func (s *RoleService) GetPermissionsView(ctx context.Context) (*RolePermissionsView, error) {
	roles, err := s.repo.GetAllRoles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch roles: %v", err)
	}

	widgets, err := s.widgets.GetAllWidgets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch widgets: %v", err)
	}

	names := make([]string, 0, len(widgets))
	for _, w := range widgets {
		names = append(names, w.Name)
	}
	return &RolePermissionsView{Roles: roles, AllAvailableWidgets: names}, nil
}

// UpdatePermissionsInput carries the editable role fields.
type UpdatePermissionsInput struct {
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

// UpdatePermissions rewrites a role's widget list, capability flags
// and name. A rename propagates to every linked user on their next
// read, because user records re-sync the name from the role ID.
func (s *RoleService) UpdatePermissions(ctx context.Context, roleID string, input UpdatePermissionsInput) (*models.Role, error) {
	role, err := s.repo.GetRoleByID(ctx, roleID)
	if err != nil {
		return nil, fmt.Errorf("role not found")
	}

	if input.Name != "" {
		role.Name = input.Name
	}
	role.PermittedWidgets = input.PermittedWidgets
	role.CanViewUsers = input.CanViewUsers
	role.CanAddUser = input.CanAddUser
	role.CanEditUser = input.CanEditUser
	role.CanDeleteUser = input.CanDeleteUser
	role.CanAccessDashboard = input.CanAccessDashboard
	role.CanAccessWidgets = input.CanAccessWidgets
	role.CanAccessSettings = input.CanAccessSettings

	updated, err := s.repo.UpdateRole(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("failed to update role: %v", err)
	}

	logger.Log.WithField("role_id", roleID).Info("Role permissions updated")
	return updated, nil
}

// GetRoleByName resolves a role by its case-insensitive name.
func (s *RoleService) GetRoleByName(ctx context.Context, name string) (*models.Role, error) {
	return s.repo.GetRoleByName(ctx, name)
}
