package booking

import (
	"context"
	"fmt"

	"settisfy/models"
)

// ProposeQuoteUpdate records a settler-proposed price revision. Allowed from
// cooldown, or from incompletion-flagged as the settler's answer to a
// partial-completion dispute. The revision lives entirely in the new_*
// fields; the committed total stays authoritative until the customer
// accepts.
func (s *DefaultBookingService) ProposeQuoteUpdate(ctx context.Context, bookingID string, prop models.QuoteProposal) (*models.Booking, error) {
	if prop.Description == "" && prop.Price == nil && len(prop.Addons) == 0 && prop.Total == nil {
		return nil, fmt.Errorf("quote proposal is empty: %w", ErrValidation)
	}

	b, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != models.StatusCooldown && b.Status != models.StatusIncompletionFlagged {
		return nil, newTransitionError("propose a quote update", b.Status)
	}

	// Derive the proposed total when the settler did not supply one, from
	// the proposed line items falling back to the committed ones.
	if prop.Total == nil {
		addons := prop.Addons
		if len(addons) == 0 {
			addons = b.Addons
		}
		price := prop.Price
		completed := b.IsManualQuoteCompleted
		if price == nil {
			price = b.ManualQuotePrice
		} else {
			// A newly proposed price restores the line, even if a dispute
			// had toggled the committed one off.
			completed = true
		}
		total := AdjustedTotal(b.Catalogue.BasePrice, addons, price, completed)
		prop.Total = &total
	}

	if err := s.Repo.ApplyQuoteProposal(ctx, bookingID, b.Status, prop); err != nil {
		return nil, mapRepoError(err)
	}

	s.notify(ctx, b.CustomerID, "quote_proposed", "Updated quote received",
		fmt.Sprintf("The settler proposed a revised quote of %.2f for %q.", *prop.Total, b.Catalogue.Title),
		bookingID)
	return s.refresh(ctx, bookingID)
}

// ResolveQuoteUpdate applies the customer's binary decision on a pending
// revision. Accept commits every new_* field onto its canonical
// counterpart; reject discards them. Both paths clear the revision in the
// same update and return the booking to active service.
func (s *DefaultBookingService) ResolveQuoteUpdate(ctx context.Context, bookingID string, accept bool) (*models.Booking, error) {
	b, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != models.StatusQuoteUpdatePending {
		return nil, newTransitionError("resolve a quote update", b.Status)
	}

	if err := s.Repo.ResolveQuoteUpdate(ctx, bookingID, accept); err != nil {
		return nil, mapRepoError(err)
	}

	event, title := "quote_rejected", "Quote update declined"
	if accept {
		event, title = "quote_accepted", "Quote update accepted"
	}
	s.notify(ctx, b.SettlerID, event, title,
		fmt.Sprintf("The customer responded to your revised quote for %q.", b.Catalogue.Title),
		bookingID)
	return s.refresh(ctx, bookingID)
}
