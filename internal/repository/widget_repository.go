package repository

import (
	"context"
	"fmt"

	"github.com/mihira/deskpulse/internal/models"
	"github.com/mihira/deskpulse/internal/storage"
)

// WidgetRepository serves the static widget catalog.
type WidgetRepository struct {
	collection *storage.Collection[models.Widget]
}

// NewWidgetRepository opens the widgets collection and seeds the
// catalog when absent.
func NewWidgetRepository(dataDir string) (*WidgetRepository, error) {
	collection, err := storage.NewCollection(dataDir, "widgets",
		func(w *models.Widget) string { return w.ID },
		func(w *models.Widget, id string) { w.ID = id },
	)
	if err != nil {
		return nil, err
	}

	if err := collection.Seed(models.DefaultWidgets()); err != nil {
		return nil, fmt.Errorf("failed to seed widgets: %v", err)
	}
	return &WidgetRepository{collection: collection}, nil
}

// GetAllWidgets returns the full catalog.
func (r *WidgetRepository) GetAllWidgets(ctx context.Context) ([]models.Widget, error) {
	return r.collection.List()
}
