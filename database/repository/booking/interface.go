package bookingRepo

import (
	"context"
	"errors"

	"settisfy/models"
)

// Guard failures surfaced by conditional writes. ErrStaleStatus means the
// stored status no longer matches the expected pre-state (a concurrent
// writer got there first); callers re-fetch and retry.
var (
	ErrNotFound        = errors.New("booking not found")
	ErrStaleStatus     = errors.New("booking status changed concurrently")
	ErrBidExists       = errors.New("settler already bid on this booking")
	ErrAlreadySelected = errors.New("a settler has already been selected")
	ErrReportExists    = errors.New("a problem report has already been filed")
)

// BookingRepository is the booking record store. Every lifecycle mutation is
// a single partial update (merge semantics, unspecified fields untouched)
// conditioned on the expected pre-state, so two racing writers can never
// corrupt the status.
type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	ListByCustomer(ctx context.Context, customerID string) ([]models.Booking, error)
	ListBySettler(ctx context.Context, settlerID string) ([]models.Booking, error)

	// AppendAcceptor records a settler's bid while the booking is still
	// broadcasting. A settler may bid at most once.
	AppendAcceptor(ctx context.Context, id string, acc models.Acceptor) error

	// CommitSelection writes the selected settler, the service start code and
	// the status advance in one atomic update. Fails once a settler is set.
	CommitSelection(ctx context.Context, id string, sel models.SettlerSelection) error

	// UpdateStatus moves status from -> to, conditioned on from.
	UpdateStatus(ctx context.Context, id string, from, to models.BookingStatus) error

	// ApplyQuoteProposal writes the new_* revision fields and flips the
	// booking to quote-update-pending, conditioned on from.
	ApplyQuoteProposal(ctx context.Context, id string, from models.BookingStatus, prop models.QuoteProposal) error

	// ResolveQuoteUpdate atomically resolves a pending revision. On accept
	// every new_* field is copied onto its canonical counterpart; on reject
	// nothing is committed. Either way all new_* fields are removed and the
	// booking returns to active service.
	ResolveQuoteUpdate(ctx context.Context, id string, accept bool) error

	// SetProblemReport files dispute evidence during cooldown. Write-once:
	// fails while a report is already present.
	SetProblemReport(ctx context.Context, id string, remark string, imageURLs []string) error

	// ClearProblemReport withdraws the filed evidence (delete-then-resubmit).
	ClearProblemReport(ctx context.Context, id string) error

	// FlagIncompletion writes the disputed addon completion state together
	// with the recomputed proposed total and moves the booking to
	// incompletion-flagged, conditioned on cooldown.
	FlagIncompletion(ctx context.Context, id string, addons []models.AddonGroup, manualQuoteCompleted bool, newTotal float64) error

	// SetAdvisoryFlags updates the visit-and-fix / update-evidence banners.
	// Nil pointers leave the corresponding flag untouched.
	SetAdvisoryFlags(ctx context.Context, id string, visitAndFix, updateEvidence *bool) error

	// Watch streams the full booking document on every change until ctx is
	// cancelled. Payloads are authoritative snapshots.
	Watch(ctx context.Context, id string) (<-chan models.Booking, error)
}
