package repository

import (
	"context"
	"time"

	"github.com/mihira/deskpulse/internal/models"
	"github.com/mihira/deskpulse/internal/storage"
	"github.com/mihira/deskpulse/pkg/logger"
)

// GoalRepository handles storage operations for goals.
type GoalRepository struct {
	collection *storage.Collection[models.Goal]
}

// NewGoalRepository opens the goals collection.
func NewGoalRepository(dataDir string) (*GoalRepository, error) {
	collection, err := storage.NewCollection(dataDir, "goals",
		func(g *models.Goal) string { return g.ID },
		func(g *models.Goal, id string) { g.ID = id },
	)
	if err != nil {
		return nil, err
	}
	return &GoalRepository{collection: collection}, nil
}

// CreateGoal stores a new goal.
func (r *GoalRepository) CreateGoal(ctx context.Context, goal *models.Goal) (*models.Goal, error) {
	goal.CreatedAt = time.Now()
	goal.UpdatedAt = time.Now()

	if err := r.collection.Put(goal); err != nil {
		logger.Log.WithError(err).Error("Failed to insert goal")
		return nil, err
	}

	logger.Log.WithField("goal_id", goal.ID).Info("Goal created")
	return goal, nil
}

// GetGoalByID fetches a goal by its ID.
func (r *GoalRepository) GetGoalByID(ctx context.Context, id string) (*models.Goal, error) {
	return r.collection.Get(id)
}

// GetGoals fetches goals for one user with an optional category filter.
func (r *GoalRepository) GetGoals(ctx context.Context, userID, category string) ([]models.Goal, error) {
	all, err := r.collection.List()
	if err != nil {
		return nil, err
	}

	var goals []models.Goal
	for _, goal := range all {
		if goal.UserID != userID {
			continue
		}
		if category != "" && goal.Category != category {
			continue
		}
		goals = append(goals, goal)
	}
	return goals, nil
}

// GetAllGoals fetches every goal across users.
func (r *GoalRepository) GetAllGoals(ctx context.Context) ([]models.Goal, error) {
	return r.collection.List()
}

// UpdateGoal replaces an existing goal.
func (r *GoalRepository) UpdateGoal(ctx context.Context, goal *models.Goal) (*models.Goal, error) {
	if _, err := r.collection.Get(goal.ID); err != nil {
		return nil, err
	}

	goal.UpdatedAt = time.Now()
	if err := r.collection.Put(goal); err != nil {
		logger.Log.WithError(err).WithField("goal_id", goal.ID).Error("Failed to update goal")
		return nil, err
	}
	return goal, nil
}

// DeleteGoal removes a goal by its ID.
func (r *GoalRepository) DeleteGoal(ctx context.Context, id string) error {
	if err := r.collection.Delete(id); err != nil {
		logger.Log.WithError(err).WithField("goal_id", id).Warn("Failed to delete goal")
		return err
	}
	logger.Log.WithField("goal_id", id).Info("Goal deleted")
	return nil
}
