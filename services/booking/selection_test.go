package booking_test

import (
	"context"
	"regexp"
	"testing"

	"settisfy/models"
	"settisfy/services/booking"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var startCodePattern = regexp.MustCompile(`^\d{7}$`)

func TestAcceptBidAndSelectSettler(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	b := f.createStandardBooking(ctx)

	_, err := f.svc.AcceptBid(ctx, b.ID, "settler-a", "svc-a")
	require.NoError(t, err)
	_, err = f.svc.AcceptBid(ctx, b.ID, "settler-b", "svc-b")
	require.NoError(t, err)

	selected, err := f.svc.SelectSettler(ctx, b.ID, 1)
	require.NoError(t, err)

	assert.Equal(t, "settler-b", selected.SettlerID)
	assert.Equal(t, "svc-b", selected.SettlerServiceID)
	assert.Equal(t, models.StatusSettlerSelected, selected.Status)
	assert.Regexp(t, startCodePattern, selected.ServiceStartCode)
	// The candidate list stays on the record as history.
	assert.Len(t, selected.Acceptors, 2)
	// The winner gets a push.
	assert.Contains(t, f.notifier.eventsFor("settler-b"), "settler_selected")
}

func TestAcceptBidUnknownSettler(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	b := f.createStandardBooking(ctx)

	_, err := f.svc.AcceptBid(ctx, b.ID, "settler-ghost", "svc-ghost")
	assert.ErrorIs(t, err, booking.ErrValidation)
	assert.Empty(t, f.repo.mustGet(b.ID).Acceptors)
}

func TestAcceptBidTwiceBySameSettler(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	b := f.createStandardBooking(ctx)

	_, err := f.svc.AcceptBid(ctx, b.ID, "settler-a", "svc-a")
	require.NoError(t, err)

	_, err = f.svc.AcceptBid(ctx, b.ID, "settler-a", "svc-a")
	assert.ErrorIs(t, err, booking.ErrValidation)
	assert.Len(t, f.repo.mustGet(b.ID).Acceptors, 1)
}

func TestAcceptBidAfterSelection(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	b := f.createStandardBooking(ctx)

	_, err := f.svc.AcceptBid(ctx, b.ID, "settler-a", "svc-a")
	require.NoError(t, err)
	_, err = f.svc.SelectSettler(ctx, b.ID, 0)
	require.NoError(t, err)

	_, err = f.svc.AcceptBid(ctx, b.ID, "settler-b", "svc-b")
	assert.ErrorIs(t, err, booking.ErrConflict)
}

func TestSelectSettlerIndexOutOfRange(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	b := f.createStandardBooking(ctx)

	_, err := f.svc.AcceptBid(ctx, b.ID, "settler-a", "svc-a")
	require.NoError(t, err)

	_, err = f.svc.SelectSettler(ctx, b.ID, 1)
	assert.ErrorIs(t, err, booking.ErrValidation)
	_, err = f.svc.SelectSettler(ctx, b.ID, -1)
	assert.ErrorIs(t, err, booking.ErrValidation)
}

func TestSelectSettlerIsWriteOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	b := f.createStandardBooking(ctx)

	_, err := f.svc.AcceptBid(ctx, b.ID, "settler-a", "svc-a")
	require.NoError(t, err)
	_, err = f.svc.AcceptBid(ctx, b.ID, "settler-b", "svc-b")
	require.NoError(t, err)

	first, err := f.svc.SelectSettler(ctx, b.ID, 0)
	require.NoError(t, err)

	// A second commit, no matter the index, must not overwrite the winner.
	_, err = f.svc.SelectSettler(ctx, b.ID, 1)
	assert.ErrorIs(t, err, booking.ErrConflict)
	assert.Equal(t, first.SettlerID, f.repo.mustGet(b.ID).SettlerID)
	assert.Equal(t, first.ServiceStartCode, f.repo.mustGet(b.ID).ServiceStartCode)
}

func TestAcceptorDetailsJoinsProfileAndStats(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	b := f.createStandardBooking(ctx)

	_, err := f.svc.AcceptBid(ctx, b.ID, "settler-b", "svc-b")
	require.NoError(t, err)

	details, err := f.svc.AcceptorDetails(ctx, b.ID, 0)
	require.NoError(t, err)

	assert.Equal(t, "settler-b", details.Acceptor.SettlerID)
	assert.Equal(t, 1, details.TotalBids)
	require.NotNil(t, details.Profile)
	assert.Equal(t, "Chan", details.Profile.FirstName)
	assert.Equal(t, 4, details.JobsCount)
	assert.InDelta(t, 4.5, details.RatingAverage, 0.001)
}

func TestAcceptorDetailsIndexOutOfRange(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	b := f.createStandardBooking(ctx)

	_, err := f.svc.AcceptorDetails(ctx, b.ID, 0)
	assert.ErrorIs(t, err, booking.ErrValidation)
}
