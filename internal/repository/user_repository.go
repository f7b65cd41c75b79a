package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mihira/deskpulse/internal/models"
	"github.com/mihira/deskpulse/internal/storage"
	"github.com/mihira/deskpulse/pkg/logger"
)

// UserRepository handles storage operations for users and applies
// role-based permission inheritance on every read.
type UserRepository struct {
	collection *storage.Collection[models.User]
	roles      *RoleRepository
}

// NewUserRepository opens the users collection.
func NewUserRepository(dataDir string, roles *RoleRepository) (*UserRepository, error) {
	collection, err := storage.NewCollection(dataDir, "users",
		func(u *models.User) string { return u.ID },
		func(u *models.User, id string) { u.ID = id },
	)
	if err != nil {
		return nil, err
	}
	return &UserRepository{collection: collection, roles: roles}, nil
}

// resolveRole overwrites the user's permitted widgets and role name
// with the linked role's canonical values. The role is found by ID
// first, falling back to the legacy role-name field. When no role
// matches, the stored (possibly stale) values pass through unchanged.
func (r *UserRepository) resolveRole(ctx context.Context, user *models.User) {
	role, err := r.roles.GetRoleByID(ctx, user.RoleID)
	if err != nil {
		role, err = r.roles.GetRoleByName(ctx, user.Role)
	}
	if err != nil || role == nil {
		logger.Log.WithFields(map[string]interface{}{
			"user_id": user.ID,
			"role_id": user.RoleID,
		}).Warn("User references no known role, stored permissions pass through")
		return
	}

	user.PermittedWidgets = role.PermittedWidgets
	user.Role = role.Name
	user.RoleID = role.ID
}

// GetAllUsers returns every user with role permissions resolved.
func (r *UserRepository) GetAllUsers(ctx context.Context) ([]models.User, error) {
	users, err := r.collection.List()
	if err != nil {
		return nil, err
	}
	for i := range users {
		r.resolveRole(ctx, &users[i])
	}
	return users, nil
}

// GetUserByID fetches one user with role permissions resolved.
func (r *UserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	user, err := r.collection.Get(id)
	if err != nil {
		return nil, err
	}
	r.resolveRole(ctx, user)
	return user, nil
}

// GetUserByEmail fetches a user by email, case-insensitive.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	users, err := r.collection.List()
	if err != nil {
		return nil, err
	}
	for i := range users {
		if strings.EqualFold(users[i].Email, email) {
			r.resolveRole(ctx, &users[i])
			return &users[i], nil
		}
	}
	return nil, storage.ErrNotFound
}

// CreateUser inserts a new user.
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	if existing, _ := r.GetUserByEmail(ctx, user.Email); existing != nil {
		return nil, fmt.Errorf("email already in use")
	}

	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()

	if err := r.collection.Put(user); err != nil {
		logger.Log.WithError(err).Error("Failed to insert user")
		return nil, fmt.Errorf("failed to insert user: %v", err)
	}

	logger.Log.WithField("user_id", user.ID).Info("User inserted")
	return user, nil
}

// UpdateUser replaces a user record.
func (r *UserRepository) UpdateUser(ctx context.Context, user *models.User) (*models.User, error) {
	if _, err := r.collection.Get(user.ID); err != nil {
		return nil, err
	}

	user.UpdatedAt = time.Now()
	if err := r.collection.Put(user); err != nil {
		logger.Log.WithError(err).WithField("user_id", user.ID).Error("Failed to update user")
		return nil, fmt.Errorf("failed to update user: %v", err)
	}
	return user, nil
}

// DeleteUser removes a user by ID.
func (r *UserRepository) DeleteUser(ctx context.Context, id string) error {
	if err := r.collection.Delete(id); err != nil {
		logger.Log.WithError(err).WithField("user_id", id).Warn("Failed to delete user")
		return err
	}
	logger.Log.WithField("user_id", id).Info("User deleted")
	return nil
}
