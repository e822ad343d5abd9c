package booking

import (
	"context"
	"fmt"
	"strings"

	"settisfy/models"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"go.uber.org/zap"
)

// PaymentHandler releases the customer's payment for a completed booking.
type PaymentHandler interface {
	CapturePayment(ctx context.Context, booking *models.Booking) (string, error)
}

// StripePaymentHandler captures the committed booking total through a Stripe
// PaymentIntent when the customer releases payment.
type StripePaymentHandler struct {
	logger   *zap.Logger
	currency string
}

func NewStripePaymentHandler(logger *zap.Logger, currency string) *StripePaymentHandler {
	return &StripePaymentHandler{
		logger:   logger,
		currency: strings.ToLower(currency),
	}
}

// CapturePayment creates and confirms a PaymentIntent for the booking total
// and returns the payment reference.
func (h *StripePaymentHandler) CapturePayment(ctx context.Context, booking *models.Booking) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(toCents(booking.Total)),
		Currency: stripe.String(h.currency),
		Confirm:  stripe.Bool(true),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
		Metadata: map[string]string{
			"booking_id":  booking.ID,
			"customer_id": booking.CustomerID,
		},
	}
	params.Context = ctx

	pi, err := paymentintent.New(params)
	if err != nil {
		return "", fmt.Errorf("payment capture failed for booking %s: %w", booking.ID, err)
	}

	h.logger.Info("payment captured",
		zap.String("bookingID", booking.ID),
		zap.String("paymentIntentID", pi.ID),
		zap.Float64("amount", booking.Total))
	return pi.ID, nil
}
