package handlers

import (
	"settisfy/services/booking"

	"go.uber.org/zap"
)

// HandlerBundle aggregates the HTTP handlers so route registration takes a
// single dependency.
type HandlerBundle struct {
	Booking *BookingHandler
	Live    *LiveBookingHandler
}

func NewHandlerBundle(svc booking.BookingService, logger *zap.Logger) *HandlerBundle {
	return &HandlerBundle{
		Booking: NewBookingHandler(svc, logger),
		Live:    NewLiveBookingHandler(svc, logger),
	}
}
