package models

// BookingStatus is the lifecycle stage of a booking. The integer values are
// persisted verbatim (0..8) so existing stored records keep decoding.
type BookingStatus int

const (
	// StatusBroadcasting: booking created, settlers may bid.
	StatusBroadcasting BookingStatus = iota
	// StatusSettlerSelected: customer picked one acceptor, start code pending.
	StatusSettlerSelected
	// StatusActiveService: start code confirmed, service underway.
	StatusActiveService
	// StatusCompletionConfirmed: customer confirmed, settler jobs count
	// pending increment before cooldown.
	StatusCompletionConfirmed
	// StatusCooldown: post-service window for disputes and payment release.
	StatusCooldown
	// StatusReviewPending: payment released, awaiting customer review.
	StatusReviewPending
	// StatusCompleted: review submitted. Terminal.
	StatusCompleted
	// StatusQuoteUpdatePending: settler proposed a price revision.
	StatusQuoteUpdatePending
	// StatusIncompletionFlagged: customer marked the job partially incomplete.
	StatusIncompletionFlagged
)

func (s BookingStatus) String() string {
	switch s {
	case StatusBroadcasting:
		return "broadcasting"
	case StatusSettlerSelected:
		return "settler_selected"
	case StatusActiveService:
		return "active_service"
	case StatusCompletionConfirmed:
		return "completion_confirmed"
	case StatusCooldown:
		return "cooldown"
	case StatusReviewPending:
		return "review_pending"
	case StatusCompleted:
		return "completed"
	case StatusQuoteUpdatePending:
		return "quote_update_pending"
	case StatusIncompletionFlagged:
		return "incompletion_flagged"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether no further customer action can move the booking.
func (s BookingStatus) IsTerminal() bool {
	return s == StatusCompleted
}

var bookingTransitions = map[BookingStatus][]BookingStatus{
	StatusBroadcasting:        {StatusSettlerSelected},
	StatusSettlerSelected:     {StatusActiveService},
	StatusActiveService:       {StatusCompletionConfirmed, StatusCooldown},
	StatusCompletionConfirmed: {StatusCooldown},
	StatusCooldown:            {StatusReviewPending, StatusQuoteUpdatePending, StatusIncompletionFlagged},
	StatusReviewPending:       {StatusCompleted},
	StatusCompleted:           nil,
	StatusQuoteUpdatePending:  {StatusActiveService},
	StatusIncompletionFlagged: {StatusQuoteUpdatePending},
}

// CanTransitionTo reports whether the lifecycle allows moving from s to next.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ValidTransitions returns the statuses reachable from s.
func (s BookingStatus) ValidTransitions() []BookingStatus {
	return bookingTransitions[s]
}
