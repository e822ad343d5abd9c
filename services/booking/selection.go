package booking

import (
	"context"
	"fmt"

	"settisfy/models"
	"settisfy/utils"

	"go.uber.org/zap"
)

// AcceptorAt returns the acceptor at the given index. Out-of-range indexes
// are a validation error, never a panic; the customer pages through the
// candidates one at a time.
func AcceptorAt(b *models.Booking, index int) (models.Acceptor, error) {
	if index < 0 || index >= len(b.Acceptors) {
		return models.Acceptor{}, fmt.Errorf("acceptor index %d out of range (have %d): %w",
			index, len(b.Acceptors), ErrValidation)
	}
	return b.Acceptors[index], nil
}

// AcceptorDetails pairs the indexed acceptor with the settler's public
// profile and service statistics. The join is read-only decision support; it
// is never stored on the booking.
func (s *DefaultBookingService) AcceptorDetails(ctx context.Context, bookingID string, index int) (*models.AcceptorDetails, error) {
	b, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	acc, err := AcceptorAt(b, index)
	if err != nil {
		return nil, err
	}

	details := &models.AcceptorDetails{
		Index:     index,
		Acceptor:  acc,
		TotalBids: len(b.Acceptors),
	}

	logger := utils.GetLogger()
	if profile, err := s.Users.GetByID(ctx, acc.SettlerID); err != nil {
		logger.Warn("failed to enrich acceptor with settler profile",
			zap.String("settlerID", acc.SettlerID), zap.Error(err))
	} else {
		details.Profile = profile
	}
	if svc, err := s.Services.GetByID(ctx, acc.SettlerServiceID); err != nil {
		logger.Warn("failed to enrich acceptor with service statistics",
			zap.String("settlerServiceID", acc.SettlerServiceID), zap.Error(err))
	} else {
		details.Service = svc
		details.RatingAverage = svc.RatingAverage()
		details.JobsCount = svc.JobsCount
	}

	return details, nil
}

// SelectSettler commits the customer's one-time pick of an acceptor: the
// settler identity, a freshly generated 7-digit service start code and the
// status advance are written in a single conditional update. Once committed
// the acceptors list becomes historical.
func (s *DefaultBookingService) SelectSettler(ctx context.Context, bookingID string, index int) (*models.Booking, error) {
	b, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.HasSettler() {
		return nil, fmt.Errorf("settler %s already selected: %w", b.SettlerID, ErrConflict)
	}
	if b.Status != models.StatusBroadcasting {
		return nil, newTransitionError("select a settler", b.Status)
	}
	acc, err := AcceptorAt(b, index)
	if err != nil {
		return nil, err
	}

	code, err := utils.NewServiceStartCode()
	if err != nil {
		return nil, err
	}

	sel := models.SettlerSelection{
		SettlerID:        acc.SettlerID,
		SettlerServiceID: acc.SettlerServiceID,
		FirstName:        acc.FirstName,
		LastName:         acc.LastName,
		ServiceStartCode: code,
	}
	if err := s.Repo.CommitSelection(ctx, bookingID, sel); err != nil {
		return nil, mapRepoError(err)
	}

	s.notify(ctx, acc.SettlerID, "settler_selected", "You got the job!",
		fmt.Sprintf("You have been selected for %q. Share your start code with the customer to begin.", b.Catalogue.Title),
		bookingID)

	return s.refresh(ctx, bookingID)
}
