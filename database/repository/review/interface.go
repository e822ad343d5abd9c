package reviewRepo

import (
	"context"
	"errors"

	"settisfy/models"
)

var ErrNotFound = errors.New("review not found")

// ReviewRepository defines data access for booking reviews. It is consumed
// to decide between the "review" and "view review" call to action, and to
// persist the review closing out a booking.
type ReviewRepository interface {
	// Create inserts a new review record.
	Create(ctx context.Context, review *models.Review) error
	// GetByBookingID retrieves the review left for a booking, if any.
	GetByBookingID(ctx context.Context, serviceID, bookingID string) (*models.Review, error)
}
