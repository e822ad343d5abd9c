package booking

import (
	"context"

	"settisfy/models"
)

// CreateBookingInput is the intake payload from the checkout flow. The
// catalogue definition is snapshotted onto the booking so historical records
// stay stable, and every addon option starts out marked completed.
type CreateBookingInput struct {
	CustomerID             string                   `json:"customerId"`
	Catalogue              models.CatalogueSnapshot `json:"catalogue"`
	Addons                 []models.AddonGroup      `json:"addons,omitempty"`
	ManualQuoteDescription string                   `json:"manualQuoteDescription,omitempty"`
	ManualQuotePrice       *float64                 `json:"manualQuotePrice,omitempty"`
}

// IncompletionInput carries the customer's partial-completion dispute: the
// addon groups with updated completion flags plus the manual quote line.
// Labels and prices must match the stored booking; only completion changes.
type IncompletionInput struct {
	Addons               []models.AddonGroup `json:"addons"`
	ManualQuoteCompleted bool                `json:"manualQuoteCompleted"`
}

// ReviewInput is the customer's review closing out a booking.
type ReviewInput struct {
	CustomerID string `json:"-"`
	Rating     int    `json:"rating"`
	Comment    string `json:"comment,omitempty"`
}

// BookingDetail is the booking plus the display joins the details screen
// needs: the chat channel (reachable once a settler is selected) and the
// review, which decides the "review" vs "view review" call to action.
type BookingDetail struct {
	Booking       models.Booking `json:"booking"`
	ChatChannelID string         `json:"chatChannelId,omitempty"`
	AdjustedTotal float64        `json:"adjustedTotal"`
	Review        *models.Review `json:"review,omitempty"`
}

// BookingService is the booking lifecycle engine: it gates which actions are
// valid for the current status and applies each transition as one
// conditional update against the record store.
type BookingService interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*models.Booking, error)
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	GetBookingDetail(ctx context.Context, id string) (*BookingDetail, error)
	ListCustomerBookings(ctx context.Context, customerID string) ([]models.Booking, error)
	ListSettlerBookings(ctx context.Context, settlerID string) ([]models.Booking, error)

	AcceptBid(ctx context.Context, bookingID, settlerID, settlerServiceID string) (*models.Booking, error)
	AcceptorDetails(ctx context.Context, bookingID string, index int) (*models.AcceptorDetails, error)
	SelectSettler(ctx context.Context, bookingID string, index int) (*models.Booking, error)
	ConfirmStartCode(ctx context.Context, bookingID, code string) (*models.Booking, error)
	ConfirmCompletion(ctx context.Context, bookingID string) (*models.Booking, error)
	RejectCompletion(ctx context.Context, bookingID string) (*models.Booking, error)

	FileProblemReport(ctx context.Context, bookingID, remark string, imagePaths []string) (*models.Booking, error)
	WithdrawProblemReport(ctx context.Context, bookingID string) (*models.Booking, error)
	PreviewAdjustedTotal(ctx context.Context, bookingID string, input IncompletionInput) (float64, error)
	FlagIncompletion(ctx context.Context, bookingID string, input IncompletionInput) (*models.Booking, error)

	ProposeQuoteUpdate(ctx context.Context, bookingID string, prop models.QuoteProposal) (*models.Booking, error)
	ResolveQuoteUpdate(ctx context.Context, bookingID string, accept bool) (*models.Booking, error)

	ReleasePayment(ctx context.Context, bookingID string) (*models.Booking, error)
	SubmitReview(ctx context.Context, bookingID string, input ReviewInput) (*models.Review, error)

	SetAdvisoryFlags(ctx context.Context, bookingID string, visitAndFix, updateEvidence *bool) (*models.Booking, error)

	// WatchBooking streams authoritative booking snapshots on every change
	// until ctx is cancelled.
	WatchBooking(ctx context.Context, bookingID string) (<-chan models.Booking, error)
}
