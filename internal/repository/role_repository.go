package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/mihira/deskpulse/internal/models"
	"github.com/mihira/deskpulse/internal/storage"
	"github.com/mihira/deskpulse/pkg/logger"
)

// RoleRepository handles storage operations for the role registry.
type RoleRepository struct {
	collection *storage.Collection[models.Role]
}

// NewRoleRepository opens the roles collection and seeds the default
// registry when it is absent.
func NewRoleRepository(dataDir string) (*RoleRepository, error) {
	collection, err := storage.NewCollection(dataDir, "roles",
		func(r *models.Role) string { return r.ID },
		func(r *models.Role, id string) { r.ID = id },
	)
	if err != nil {
		return nil, err
	}

	if err := collection.Seed(models.DefaultRoles()); err != nil {
		return nil, fmt.Errorf("failed to seed roles: %v", err)
	}
	return &RoleRepository{collection: collection}, nil
}

// GetAllRoles returns every role in the registry.
func (r *RoleRepository) GetAllRoles(ctx context.Context) ([]models.Role, error) {
	return r.collection.List()
}

// GetRoleByID fetches a role by its ID.
func (r *RoleRepository) GetRoleByID(ctx context.Context, id string) (*models.Role, error) {
	return r.collection.Get(id)
}

// GetRoleByName fetches a role by name, case-insensitive. Name is the
// fallback key for legacy users lacking a role ID, so lookups must not
// be case-sensitive.
func (r *RoleRepository) GetRoleByName(ctx context.Context, name string) (*models.Role, error) {
	roles, err := r.collection.List()
	if err != nil {
		return nil, err
	}
	for _, role := range roles {
		if strings.EqualFold(role.Name, name) {
			return &role, nil
		}
	}
	return nil, storage.ErrNotFound
}

// CreateRole adds a role. Two roles must never share a name.
func (r *RoleRepository) CreateRole(ctx context.Context, role *models.Role) (*models.Role, error) {
	if existing, _ := r.GetRoleByName(ctx, role.Name); existing != nil {
		return nil, fmt.Errorf("role name %q already exists", role.Name)
	}

	if err := r.collection.Put(role); err != nil {
		logger.Log.WithError(err).Error("Failed to create role")
		return nil, err
	}

	logger.Log.WithField("role_id", role.ID).Info("Role created")
	return role, nil
}

// UpdateRole replaces a role record. A rename that collides with
// another role's name is rejected.
func (r *RoleRepository) UpdateRole(ctx context.Context, role *models.Role) (*models.Role, error) {
	if existing, _ := r.GetRoleByName(ctx, role.Name); existing != nil && existing.ID != role.ID {
		return nil, fmt.Errorf("role name %q already exists", role.Name)
	}

	if _, err := r.collection.Get(role.ID); err != nil {
		return nil, err
	}
	if err := r.collection.Put(role); err != nil {
		logger.Log.WithError(err).WithField("role_id", role.ID).Error("Failed to update role")
		return nil, err
	}

	logger.Log.WithField("role_id", role.ID).Info("Role updated")
	return role, nil
}
