package services

import (
	"context"
	"testing"

	"github.com/mihira/deskpulse/internal/models"
	"github.com/mihira/deskpulse/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRoleServiceForTest(t *testing.T) (*RoleService, *UserService, *repository.RoleRepository) {
	t.Helper()
	dir := t.TempDir()
	roleRepo, err := repository.NewRoleRepository(dir)
	require.NoError(t, err)
	widgetRepo, err := repository.NewWidgetRepository(dir)
	require.NoError(t, err)
	userRepo, err := repository.NewUserRepository(dir, roleRepo)
	require.NoError(t, err)

	return NewRoleService(roleRepo, widgetRepo), NewUserService(userRepo, roleRepo, &fakeMailer{}), roleRepo
}

func TestGetPermissionsView(t *testing.T) {
	t.Run("Should pair seeded roles with the full widget catalog", func(t *testing.T) {
		svc, _, _ := newRoleServiceForTest(t)

		view, err := svc.GetPermissionsView(context.Background())
		require.NoError(t, err)

		assert.Len(t, view.Roles, 4)
		assert.Len(t, view.AllAvailableWidgets, 11)
		assert.Contains(t, view.AllAvailableWidgets, "Goal Tracking")
	})
}

func TestUpdatePermissions(t *testing.T) {
	ctx := context.Background()

	t.Run("Should propagate a rename to linked users on read", func(t *testing.T) {
		roleSvc, userSvc, roleRepo := newRoleServiceForTest(t)

		user := registerUser(t, userSvc, "Uma", "uma@example.com", "pw123456", models.RoleUser)
		require.Equal(t, models.RoleUser, user.Role)

		role, err := roleRepo.GetRoleByName(ctx, models.RoleUser)
		require.NoError(t, err)

		widgets := []string{"Weather Details", "Personal Notes"}
		_, err = roleSvc.UpdatePermissions(ctx, role.ID, UpdatePermissionsInput{
			Name:               "Member",
			PermittedWidgets:   widgets,
			CanAccessDashboard: true,
			CanAccessWidgets:   true,
		})
		require.NoError(t, err)

		reread, err := userSvc.GetUser(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "Member", reread.Role)
		assert.Equal(t, widgets, reread.PermittedWidgets)
	})

	t.Run("Should reject renaming onto an existing role", func(t *testing.T) {
		roleSvc, _, roleRepo := newRoleServiceForTest(t)

		role, err := roleRepo.GetRoleByName(ctx, models.RoleVisitor)
		require.NoError(t, err)

		_, err = roleSvc.UpdatePermissions(ctx, role.ID, UpdatePermissionsInput{Name: models.RoleAdmin})
		assert.Error(t, err)
	})

	t.Run("Should reject an unknown role ID", func(t *testing.T) {
		roleSvc, _, _ := newRoleServiceForTest(t)
		_, err := roleSvc.UpdatePermissions(ctx, "missing", UpdatePermissionsInput{Name: "X"})
		assert.Error(t, err)
	})
}
