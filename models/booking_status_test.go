package models

import "testing"

func TestBookingStatusWireValues(t *testing.T) {
	// These integers are persisted and exchanged with clients; they must
	// never be renumbered.
	expected := map[BookingStatus]int{
		StatusBroadcasting:        0,
		StatusSettlerSelected:     1,
		StatusActiveService:       2,
		StatusCompletionConfirmed: 3,
		StatusCooldown:            4,
		StatusReviewPending:       5,
		StatusCompleted:           6,
		StatusQuoteUpdatePending:  7,
		StatusIncompletionFlagged: 8,
	}
	for status, value := range expected {
		if int(status) != value {
			t.Errorf("status %s = %d, want %d", status, int(status), value)
		}
	}
}

func TestBookingStatusTransitions(t *testing.T) {
	allowed := []struct {
		from, to BookingStatus
	}{
		{StatusBroadcasting, StatusSettlerSelected},
		{StatusSettlerSelected, StatusActiveService},
		{StatusActiveService, StatusCompletionConfirmed},
		{StatusActiveService, StatusCooldown},
		{StatusCompletionConfirmed, StatusCooldown},
		{StatusCooldown, StatusReviewPending},
		{StatusCooldown, StatusQuoteUpdatePending},
		{StatusCooldown, StatusIncompletionFlagged},
		{StatusReviewPending, StatusCompleted},
		{StatusQuoteUpdatePending, StatusActiveService},
		{StatusIncompletionFlagged, StatusQuoteUpdatePending},
	}
	for _, tr := range allowed {
		if !tr.from.CanTransitionTo(tr.to) {
			t.Errorf("expected %s -> %s to be allowed", tr.from, tr.to)
		}
	}

	denied := []struct {
		from, to BookingStatus
	}{
		{StatusBroadcasting, StatusActiveService},
		{StatusSettlerSelected, StatusBroadcasting},
		{StatusActiveService, StatusReviewPending},
		{StatusCooldown, StatusCompleted},
		{StatusReviewPending, StatusCooldown},
		{StatusCompleted, StatusBroadcasting},
		{StatusQuoteUpdatePending, StatusCooldown},
		{StatusIncompletionFlagged, StatusCooldown},
	}
	for _, tr := range denied {
		if tr.from.CanTransitionTo(tr.to) {
			t.Errorf("expected %s -> %s to be denied", tr.from, tr.to)
		}
	}
}

func TestBookingStatusTerminal(t *testing.T) {
	if !StatusCompleted.IsTerminal() {
		t.Error("completed must be terminal")
	}
	if len(StatusCompleted.ValidTransitions()) != 0 {
		t.Error("completed must have no outgoing transitions")
	}
	for _, s := range []BookingStatus{
		StatusBroadcasting, StatusSettlerSelected, StatusActiveService,
		StatusCompletionConfirmed, StatusCooldown, StatusReviewPending,
		StatusQuoteUpdatePending, StatusIncompletionFlagged,
	} {
		if s.IsTerminal() {
			t.Errorf("%s must not be terminal", s)
		}
	}
}

func TestBookingStatusString(t *testing.T) {
	if got := StatusBroadcasting.String(); got != "broadcasting" {
		t.Errorf("unexpected name %q", got)
	}
	if got := BookingStatus(42).String(); got == "" {
		t.Error("unknown status must still render")
	}
}
