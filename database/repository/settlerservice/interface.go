package settlerServiceRepo

import (
	"context"
	"errors"

	"settisfy/models"
)

var ErrNotFound = errors.New("settler service not found")

// SettlerServiceRepository defines data access for settler service profiles.
type SettlerServiceRepository interface {
	// GetByID retrieves a settler service profile by its unique ID.
	GetByID(ctx context.Context, id string) (*models.SettlerService, error)

	// IncrementJobsCount credits one completed job to the service. Keyed by
	// booking ID so a retried completion confirmation never double-counts.
	IncrementJobsCount(ctx context.Context, id, bookingID string) error

	// AddRating folds one review rating into the running aggregates.
	AddRating(ctx context.Context, id string, rating int) error
}
