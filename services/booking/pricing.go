package booking

import (
	"math"

	"settisfy/models"
)

// PlatformFee is the flat fee added to every booking total, in currency units.
const PlatformFee = 2.0

// AdjustedTotal derives the customer-facing total from the completion state
// of every line item: base price, plus every completed addon sub-option
// across all groups, plus the manual quote line when completed, plus the
// platform fee. Negative addon prices act as discount lines and are simply
// summed. The arithmetic runs in integer minor units so repeated toggling
// never drifts.
func AdjustedTotal(basePrice float64, addons []models.AddonGroup, manualQuotePrice *float64, isManualQuoteCompleted bool) float64 {
	cents := toCents(basePrice)
	for _, group := range addons {
		for _, opt := range group.Options {
			if opt.IsCompleted {
				cents += toCents(opt.AdditionalPrice)
			}
		}
	}
	if isManualQuoteCompleted && manualQuotePrice != nil {
		cents += toCents(*manualQuotePrice)
	}
	cents += toCents(PlatformFee)
	return fromCents(cents)
}

// BookingAdjustedTotal recomputes the total from a booking snapshot. It is
// re-invoked from scratch whenever any completion flag changes.
func BookingAdjustedTotal(b *models.Booking) float64 {
	return AdjustedTotal(b.Catalogue.BasePrice, b.Addons, b.ManualQuotePrice, b.IsManualQuoteCompleted)
}

func toCents(v float64) int64 {
	return int64(math.Round(v * 100))
}

func fromCents(c int64) float64 {
	return float64(c) / 100
}
