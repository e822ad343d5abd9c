package booking_test

import (
	"context"
	"testing"

	"settisfy/models"
	"settisfy/services/booking"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProposeQuoteUpdateFromCooldown(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	b := f.advanceToCooldown(ctx)

	updated, err := f.svc.ProposeQuoteUpdate(ctx, b.ID, models.QuoteProposal{
		Description: "Extra pipework needed",
		Price:       floatPtr(80),
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusQuoteUpdatePending, updated.Status)
	assert.Equal(t, "Extra pipework needed", updated.NewManualQuoteDescription)
	require.NotNil(t, updated.NewManualQuotePrice)
	assert.Equal(t, 80.0, *updated.NewManualQuotePrice)
	// Derived: 50 base + 10 addon + 80 manual quote + 2 fee.
	require.NotNil(t, updated.NewTotal)
	assert.Equal(t, 142.0, *updated.NewTotal)
	// The committed total stays authoritative until the customer accepts.
	assert.Equal(t, 62.0, updated.Total)
	assert.Contains(t, f.notifier.eventsFor("customer-1"), "quote_proposed")
}

func TestProposeQuoteUpdateEmptyProposal(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	b := f.advanceToCooldown(ctx)

	_, err := f.svc.ProposeQuoteUpdate(ctx, b.ID, models.QuoteProposal{})
	assert.ErrorIs(t, err, booking.ErrValidation)
	assert.Equal(t, models.StatusCooldown, f.repo.mustGet(b.ID).Status)
}

func TestProposeQuoteUpdateOutsideCooldown(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	b := f.advanceToActiveService(ctx)

	_, err := f.svc.ProposeQuoteUpdate(ctx, b.ID, models.QuoteProposal{Price: floatPtr(80)})
	assert.ErrorIs(t, err, booking.ErrInvalidTransition)
}

func TestProposeQuoteUpdateAnswersIncompletionFlag(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	b := f.advanceToCooldown(ctx)

	// Customer flags the addon incomplete; settler responds with a lowered
	// quote instead of accepting the flag as-is.
	input := booking.IncompletionInput{Addons: standardAddons()}
	input.Addons[0].Options[0].IsCompleted = false
	_, err := f.svc.FlagIncompletion(ctx, b.ID, input)
	require.NoError(t, err)

	updated, err := f.svc.ProposeQuoteUpdate(ctx, b.ID, models.QuoteProposal{Total: floatPtr(55)})
	require.NoError(t, err)
	assert.Equal(t, models.StatusQuoteUpdatePending, updated.Status)
	assert.Equal(t, 55.0, *updated.NewTotal)
}

func TestResolveQuoteUpdateAccept(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	b := f.advanceToCooldown(ctx)

	_, err := f.svc.ProposeQuoteUpdate(ctx, b.ID, models.QuoteProposal{
		Description: "Extra pipework needed",
		Price:       floatPtr(80),
	})
	require.NoError(t, err)

	resolved, err := f.svc.ResolveQuoteUpdate(ctx, b.ID, true)
	require.NoError(t, err)

	// Every proposed field is committed and the revision is cleared.
	assert.Equal(t, models.StatusActiveService, resolved.Status)
	assert.Equal(t, "Extra pipework needed", resolved.ManualQuoteDescription)
	require.NotNil(t, resolved.ManualQuotePrice)
	assert.Equal(t, 80.0, *resolved.ManualQuotePrice)
	assert.Equal(t, 142.0, resolved.Total)
	assert.False(t, resolved.HasPendingQuote())
	assert.Contains(t, f.notifier.eventsFor("settler-a"), "quote_accepted")
}

func TestResolveQuoteUpdateReject(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	b := f.advanceToCooldown(ctx)

	_, err := f.svc.ProposeQuoteUpdate(ctx, b.ID, models.QuoteProposal{Price: floatPtr(80)})
	require.NoError(t, err)

	resolved, err := f.svc.ResolveQuoteUpdate(ctx, b.ID, false)
	require.NoError(t, err)

	// Nothing committed, revision gone, back to active service.
	assert.Equal(t, models.StatusActiveService, resolved.Status)
	assert.Equal(t, 62.0, resolved.Total)
	assert.Nil(t, resolved.ManualQuotePrice)
	assert.False(t, resolved.HasPendingQuote())
	assert.Contains(t, f.notifier.eventsFor("settler-a"), "quote_rejected")
}

func TestResolveQuoteUpdateAcceptKeepsUnrevisedFields(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	price := 30.0
	created, err := f.svc.CreateBooking(ctx, booking.CreateBookingInput{
		CustomerID:             "customer-1",
		Catalogue:              models.CatalogueSnapshot{ServiceID: "cat-1", Title: "Home Cleaning", BasePrice: 50},
		ManualQuoteDescription: "Fix the leaking tap",
		ManualQuotePrice:       &price,
	})
	require.NoError(t, err)
	_, err = f.svc.AcceptBid(ctx, created.ID, "settler-a", "svc-a")
	require.NoError(t, err)
	sel, err := f.svc.SelectSettler(ctx, created.ID, 0)
	require.NoError(t, err)
	_, err = f.svc.ConfirmStartCode(ctx, created.ID, sel.ServiceStartCode)
	require.NoError(t, err)
	_, err = f.svc.ConfirmCompletion(ctx, created.ID)
	require.NoError(t, err)

	// The proposal revises only the total; the committed description and
	// price must survive the accept.
	_, err = f.svc.ProposeQuoteUpdate(ctx, created.ID, models.QuoteProposal{Total: floatPtr(70)})
	require.NoError(t, err)
	resolved, err := f.svc.ResolveQuoteUpdate(ctx, created.ID, true)
	require.NoError(t, err)

	assert.Equal(t, 70.0, resolved.Total)
	assert.Equal(t, "Fix the leaking tap", resolved.ManualQuoteDescription)
	require.NotNil(t, resolved.ManualQuotePrice)
	assert.Equal(t, 30.0, *resolved.ManualQuotePrice)
}

func TestResolveQuoteUpdateAcceptMarksManualQuoteCompleted(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	b := f.advanceToCooldown(ctx)

	// The booking had no manual quote line; the accepted revision
	// introduces one.
	_, err := f.svc.ProposeQuoteUpdate(ctx, b.ID, models.QuoteProposal{Price: floatPtr(80)})
	require.NoError(t, err)
	resolved, err := f.svc.ResolveQuoteUpdate(ctx, b.ID, true)
	require.NoError(t, err)

	// The landed line is counted by every later derivation: recomputing
	// from the record reproduces the committed total.
	assert.True(t, resolved.IsManualQuoteCompleted)
	assert.Equal(t, 142.0, resolved.Total)
	assert.Equal(t, resolved.Total, booking.BookingAdjustedTotal(resolved))

	// And the line is disputable: back in cooldown, unchecking only the
	// manual quote is a valid incompletion flag.
	_, err = f.svc.ConfirmCompletion(ctx, b.ID)
	require.NoError(t, err)
	input := booking.IncompletionInput{Addons: standardAddons(), ManualQuoteCompleted: false}
	flagged, err := f.svc.FlagIncompletion(ctx, b.ID, input)
	require.NoError(t, err)
	require.NotNil(t, flagged.NewTotal)
	assert.Equal(t, 62.0, *flagged.NewTotal)
}

func TestProposeQuoteUpdateDerivationRespectsCompletionFlag(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	price := 30.0
	created, err := f.svc.CreateBooking(ctx, booking.CreateBookingInput{
		CustomerID:       "customer-1",
		Catalogue:        models.CatalogueSnapshot{ServiceID: "cat-1", Title: "Home Cleaning", BasePrice: 50},
		ManualQuotePrice: &price,
	})
	require.NoError(t, err)
	_, err = f.svc.AcceptBid(ctx, created.ID, "settler-a", "svc-a")
	require.NoError(t, err)
	sel, err := f.svc.SelectSettler(ctx, created.ID, 0)
	require.NoError(t, err)
	_, err = f.svc.ConfirmStartCode(ctx, created.ID, sel.ServiceStartCode)
	require.NoError(t, err)
	_, err = f.svc.ConfirmCompletion(ctx, created.ID)
	require.NoError(t, err)

	// The customer disputed the manual quote line off the bill.
	_, err = f.svc.FlagIncompletion(ctx, created.ID, booking.IncompletionInput{ManualQuoteCompleted: false})
	require.NoError(t, err)

	// A proposal without a price keeps the toggled-off line out of the
	// derived total: 50 base + 2 fee.
	updated, err := f.svc.ProposeQuoteUpdate(ctx, created.ID, models.QuoteProposal{Description: "Partial redo only"})
	require.NoError(t, err)
	require.NotNil(t, updated.NewTotal)
	assert.Equal(t, 52.0, *updated.NewTotal)

	// A proposal with a fresh price restores the line: 50 + 20 + 2.
	resolved, err := f.svc.ResolveQuoteUpdate(ctx, created.ID, false)
	require.NoError(t, err)
	_, err = f.svc.ConfirmCompletion(ctx, resolved.ID)
	require.NoError(t, err)
	updated, err = f.svc.ProposeQuoteUpdate(ctx, created.ID, models.QuoteProposal{Price: floatPtr(20)})
	require.NoError(t, err)
	require.NotNil(t, updated.NewTotal)
	assert.Equal(t, 72.0, *updated.NewTotal)
}

func TestResolveQuoteUpdateWithoutPendingRevision(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	b := f.advanceToCooldown(ctx)

	_, err := f.svc.ResolveQuoteUpdate(ctx, b.ID, true)
	assert.ErrorIs(t, err, booking.ErrInvalidTransition)
}
