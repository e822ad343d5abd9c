package booking

import (
	"context"
	"fmt"

	"settisfy/models"
)

// FileProblemReport uploads the evidence images and files the report during
// cooldown. The report is write-once per dispute cycle: while one is
// present, further submissions are rejected and the only way forward is
// withdraw-then-resubmit.
func (s *DefaultBookingService) FileProblemReport(ctx context.Context, bookingID, remark string, imagePaths []string) (*models.Booking, error) {
	if remark == "" {
		return nil, fmt.Errorf("a problem description is required: %w", ErrValidation)
	}

	b, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != models.StatusCooldown {
		return nil, newTransitionError("file a problem report", b.Status)
	}
	if b.HasProblemReport() {
		return nil, ErrReportLocked
	}

	// Upload before writing the record: the report either lands complete
	// (remark plus every image) or not at all.
	var urls []string
	if len(imagePaths) > 0 {
		urls, err = s.Storage.UploadEvidence(ctx, bookingID, imagePaths)
		if err != nil {
			return nil, err
		}
	}

	if err := s.Repo.SetProblemReport(ctx, bookingID, remark, urls); err != nil {
		return nil, mapRepoError(err)
	}

	s.notify(ctx, b.SettlerID, "problem_reported", "Problem reported",
		fmt.Sprintf("The customer reported a problem with %q.", b.Catalogue.Title),
		bookingID)
	return s.refresh(ctx, bookingID)
}

// WithdrawProblemReport deletes the filed evidence so the customer can
// resubmit. This is the only edit path once a report exists.
func (s *DefaultBookingService) WithdrawProblemReport(ctx context.Context, bookingID string) (*models.Booking, error) {
	b, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != models.StatusCooldown {
		return nil, newTransitionError("withdraw a problem report", b.Status)
	}
	if !b.HasProblemReport() {
		return nil, fmt.Errorf("no problem report to withdraw: %w", ErrValidation)
	}

	if err := s.Repo.ClearProblemReport(ctx, bookingID); err != nil {
		return nil, mapRepoError(err)
	}
	return s.refresh(ctx, bookingID)
}

// mergeDisputedAddons validates the customer's dispute payload against the
// stored addons and applies only the completion flags. Shape and prices must
// match the record; anything else in the payload is a validation failure.
func mergeDisputedAddons(stored []models.AddonGroup, input []models.AddonGroup) ([]models.AddonGroup, bool, error) {
	if len(input) != len(stored) {
		return nil, false, fmt.Errorf("addon groups do not match the booking: %w", ErrValidation)
	}

	toggledOff := false
	merged := make([]models.AddonGroup, len(stored))
	for i, group := range stored {
		if len(input[i].Options) != len(group.Options) {
			return nil, false, fmt.Errorf("addon options do not match the booking: %w", ErrValidation)
		}
		merged[i] = models.AddonGroup{Title: group.Title, Options: make([]models.AddonOption, len(group.Options))}
		for j, opt := range group.Options {
			in := input[i].Options[j]
			if in.Label != opt.Label || in.AdditionalPrice != opt.AdditionalPrice {
				return nil, false, fmt.Errorf("addon option %q does not match the booking: %w", in.Label, ErrValidation)
			}
			opt.IsCompleted = in.IsCompleted
			if !in.IsCompleted {
				toggledOff = true
			}
			merged[i].Options[j] = opt
		}
	}
	return merged, toggledOff, nil
}

// PreviewAdjustedTotal recomputes the customer-facing total for a dispute in
// progress, without writing anything. The details screen calls this as each
// checkbox is toggled.
func (s *DefaultBookingService) PreviewAdjustedTotal(ctx context.Context, bookingID string, input IncompletionInput) (float64, error) {
	b, err := s.GetBooking(ctx, bookingID)
	if err != nil {
		return 0, err
	}
	merged, _, err := mergeDisputedAddons(b.Addons, input.Addons)
	if err != nil {
		return 0, err
	}
	return AdjustedTotal(b.Catalogue.BasePrice, merged, b.ManualQuotePrice, input.ManualQuoteCompleted), nil
}

// FlagIncompletion confirms the partial-completion dispute: the mutated
// completion flags and the recomputed proposed total are written together
// and the booking moves to incompletion-flagged, awaiting the settler's
// response.
func (s *DefaultBookingService) FlagIncompletion(ctx context.Context, bookingID string, input IncompletionInput) (*models.Booking, error) {
	b, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != models.StatusCooldown {
		return nil, newTransitionError("flag incompletion", b.Status)
	}

	merged, toggledOff, err := mergeDisputedAddons(b.Addons, input.Addons)
	if err != nil {
		return nil, err
	}

	manualQuoteToggledOff := b.IsManualQuoteCompleted && !input.ManualQuoteCompleted
	if !toggledOff && !manualQuoteToggledOff {
		return nil, fmt.Errorf("mark at least one line incomplete: %w", ErrValidation)
	}

	newTotal := AdjustedTotal(b.Catalogue.BasePrice, merged, b.ManualQuotePrice, input.ManualQuoteCompleted)
	if err := s.Repo.FlagIncompletion(ctx, bookingID, merged, input.ManualQuoteCompleted, newTotal); err != nil {
		return nil, mapRepoError(err)
	}

	s.notify(ctx, b.SettlerID, "incompletion_flagged", "Job flagged incomplete",
		fmt.Sprintf("The customer marked parts of %q incomplete. Proposed total: %.2f.", b.Catalogue.Title, newTotal),
		bookingID)
	return s.refresh(ctx, bookingID)
}
