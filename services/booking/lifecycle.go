package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	userRepo "settisfy/database/repository/user"
	"settisfy/models"
	"settisfy/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AcceptBid records a settler's bid on a broadcast booking. The acceptor
// list only grows; a settler may bid once and bids are never retracted.
func (s *DefaultBookingService) AcceptBid(ctx context.Context, bookingID, settlerID, settlerServiceID string) (*models.Booking, error) {
	if settlerID == "" || settlerServiceID == "" {
		return nil, fmt.Errorf("settler and settler service are required: %w", ErrValidation)
	}

	settler, err := s.Users.GetByID(ctx, settlerID)
	if err != nil {
		if errors.Is(err, userRepo.ErrNotFound) {
			return nil, fmt.Errorf("unknown settler %s: %w", settlerID, ErrValidation)
		}
		return nil, err
	}

	acc := models.Acceptor{
		SettlerID:        settlerID,
		SettlerServiceID: settlerServiceID,
		FirstName:        settler.FirstName,
		LastName:         settler.LastName,
	}
	if err := s.Repo.AppendAcceptor(ctx, bookingID, acc); err != nil {
		return nil, mapRepoError(err)
	}

	b, err := s.refresh(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, b.CustomerID, "bid_received", "New bid on your booking",
		fmt.Sprintf("%s %s offered to take on %q.", acc.FirstName, acc.LastName, b.Catalogue.Title),
		bookingID)
	return b, nil
}

// ConfirmStartCode verifies the shared 7-digit code and moves the booking
// into active service. A mismatched code is a local validation failure; no
// remote write happens.
func (s *DefaultBookingService) ConfirmStartCode(ctx context.Context, bookingID, code string) (*models.Booking, error) {
	b, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != models.StatusSettlerSelected {
		return nil, newTransitionError("confirm the start code", b.Status)
	}
	if code == "" || code != b.ServiceStartCode {
		return nil, fmt.Errorf("service start code does not match: %w", ErrValidation)
	}

	if err := s.Repo.UpdateStatus(ctx, bookingID, models.StatusSettlerSelected, models.StatusActiveService); err != nil {
		return nil, mapRepoError(err)
	}

	s.notify(ctx, b.SettlerID, "service_started", "Service started",
		fmt.Sprintf("The customer confirmed your start code for %q.", b.Catalogue.Title),
		bookingID)
	return s.refresh(ctx, bookingID)
}

// ConfirmCompletion records the customer's sign-off: the booking passes
// through completion-confirmed, the settler's jobs count is credited exactly
// once, and the booking settles into cooldown.
func (s *DefaultBookingService) ConfirmCompletion(ctx context.Context, bookingID string) (*models.Booking, error) {
	b, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	switch b.Status {
	case models.StatusActiveService:
		if err := s.Repo.UpdateStatus(ctx, bookingID, models.StatusActiveService, models.StatusCompletionConfirmed); err != nil {
			return nil, mapRepoError(err)
		}
	case models.StatusCompletionConfirmed:
		// A previous confirmation stalled before reaching cooldown; resume.
	default:
		return nil, newTransitionError("confirm completion", b.Status)
	}

	// Credited-bookings guard makes the increment idempotent across retries.
	if err := s.Services.IncrementJobsCount(ctx, b.SettlerServiceID, bookingID); err != nil {
		return nil, fmt.Errorf("completion recorded but settler stats update failed, retry: %w", err)
	}

	if err := s.Repo.UpdateStatus(ctx, bookingID, models.StatusCompletionConfirmed, models.StatusCooldown); err != nil {
		return nil, mapRepoError(err)
	}

	fresh, err := s.refresh(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	s.enqueueCooldownReminder(fresh)
	s.notify(ctx, b.SettlerID, "completion_confirmed", "Job confirmed complete",
		fmt.Sprintf("The customer confirmed completion of %q.", b.Catalogue.Title),
		bookingID)
	return fresh, nil
}

// RejectCompletion moves the booking straight into cooldown without
// crediting the settler, so the customer can dispute.
func (s *DefaultBookingService) RejectCompletion(ctx context.Context, bookingID string) (*models.Booking, error) {
	b, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != models.StatusActiveService {
		return nil, newTransitionError("reject completion", b.Status)
	}

	if err := s.Repo.UpdateStatus(ctx, bookingID, models.StatusActiveService, models.StatusCooldown); err != nil {
		return nil, mapRepoError(err)
	}

	fresh, err := s.refresh(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	s.enqueueCooldownReminder(fresh)
	s.notify(ctx, b.SettlerID, "completion_rejected", "Completion disputed",
		fmt.Sprintf("The customer did not confirm completion of %q.", b.Catalogue.Title),
		bookingID)
	return fresh, nil
}

// ReleasePayment captures the committed total and moves the booking to
// review-pending. The capture happens before the transition; if the status
// moved underneath us the conflict is surfaced for the operator to
// reconcile rather than silently double-charging on retry.
func (s *DefaultBookingService) ReleasePayment(ctx context.Context, bookingID string) (*models.Booking, error) {
	b, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != models.StatusCooldown {
		return nil, newTransitionError("release payment", b.Status)
	}
	if b.HasPendingQuote() {
		return nil, fmt.Errorf("resolve the pending quote update first: %w", ErrValidation)
	}

	paymentRef, err := s.Payments.CapturePayment(ctx, b)
	if err != nil {
		return nil, err
	}

	if err := s.Repo.UpdateStatus(ctx, bookingID, models.StatusCooldown, models.StatusReviewPending); err != nil {
		utils.GetLogger().Error("payment captured but status transition failed",
			zap.String("bookingID", bookingID),
			zap.String("paymentRef", paymentRef),
			zap.Error(err))
		return nil, mapRepoError(err)
	}

	s.notify(ctx, b.SettlerID, "payment_released", "Payment released",
		fmt.Sprintf("The customer released payment of %.2f for %q.", b.Total, b.Catalogue.Title),
		bookingID)
	return s.refresh(ctx, bookingID)
}

// SubmitReview records the customer's review, folds the rating into the
// settler service aggregates and completes the booking.
func (s *DefaultBookingService) SubmitReview(ctx context.Context, bookingID string, input ReviewInput) (*models.Review, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, fmt.Errorf("rating must be between 1 and 5: %w", ErrValidation)
	}

	b, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != models.StatusReviewPending {
		return nil, newTransitionError("submit a review", b.Status)
	}

	review := &models.Review{
		ID:               uuid.New().String(),
		BookingID:        bookingID,
		SettlerServiceID: b.SettlerServiceID,
		CustomerID:       b.CustomerID,
		Rating:           input.Rating,
		Comment:          input.Comment,
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.Reviews.Create(ctx, review); err != nil {
		return nil, err
	}

	if err := s.Services.AddRating(ctx, b.SettlerServiceID, input.Rating); err != nil {
		utils.GetLogger().Warn("review stored but rating aggregate update failed",
			zap.String("bookingID", bookingID), zap.Error(err))
	}

	if err := s.Repo.UpdateStatus(ctx, bookingID, models.StatusReviewPending, models.StatusCompleted); err != nil {
		return nil, mapRepoError(err)
	}
	if _, err := s.refresh(ctx, bookingID); err != nil {
		utils.GetLogger().Warn("failed to refresh booking after review",
			zap.String("bookingID", bookingID), zap.Error(err))
	}

	s.notify(ctx, b.SettlerID, "review_submitted", "You received a review",
		fmt.Sprintf("The customer rated %q %d/5.", b.Catalogue.Title, input.Rating),
		bookingID)
	return review, nil
}

// SetAdvisoryFlags updates the visit-and-fix / update-evidence banners. They
// are advisory only and never gate a transition.
func (s *DefaultBookingService) SetAdvisoryFlags(ctx context.Context, bookingID string, visitAndFix, updateEvidence *bool) (*models.Booking, error) {
	if visitAndFix == nil && updateEvidence == nil {
		return nil, fmt.Errorf("no flags provided: %w", ErrValidation)
	}
	if err := s.Repo.SetAdvisoryFlags(ctx, bookingID, visitAndFix, updateEvidence); err != nil {
		return nil, mapRepoError(err)
	}
	return s.refresh(ctx, bookingID)
}
