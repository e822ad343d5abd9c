package booking

import (
	"errors"
	"fmt"

	bookingRepo "settisfy/database/repository/booking"
	"settisfy/models"
)

// Error taxonomy for the booking lifecycle. Validation errors are recovered
// locally (no remote call was made); conflicts mean a concurrent writer won
// the conditional update and the caller should re-fetch and retry.
var (
	ErrNotFound          = bookingRepo.ErrNotFound
	ErrValidation        = errors.New("validation failed")
	ErrConflict          = errors.New("booking was modified concurrently")
	ErrReportLocked      = errors.New("problem report already filed; withdraw it to resubmit")
	ErrInvalidTransition = errors.New("action not valid for current booking status")
)

// TransitionError reports an action applied at the wrong lifecycle stage.
type TransitionError struct {
	Action string
	From   models.BookingStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s while booking is %s", e.Action, e.From)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

func newTransitionError(action string, from models.BookingStatus) error {
	return &TransitionError{Action: action, From: from}
}

// mapRepoError translates record-store guard failures into the service
// taxonomy. Not-found passes through unchanged.
func mapRepoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bookingRepo.ErrStaleStatus):
		return fmt.Errorf("%v: %w", err, ErrConflict)
	case errors.Is(err, bookingRepo.ErrAlreadySelected):
		return fmt.Errorf("%v: %w", err, ErrConflict)
	case errors.Is(err, bookingRepo.ErrBidExists):
		return fmt.Errorf("%v: %w", err, ErrValidation)
	case errors.Is(err, bookingRepo.ErrReportExists):
		return fmt.Errorf("%v: %w", err, ErrReportLocked)
	default:
		return err
	}
}
