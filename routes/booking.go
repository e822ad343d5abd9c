package routes

import (
	"settisfy/handlers"
	"settisfy/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterBookingRoutes registers all endpoints for the booking lifecycle
// engine. Every mutation is authenticated; the acting user comes from the
// session, not the payload.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	booking := r.Group("/api/bookings")
	{
		booking.Use(middleware.AuthMiddleware())

		booking.POST("", hb.Booking.CreateBookingHandler)
		booking.GET("/mine", hb.Booking.ListMyBookingsHandler)
		booking.GET("/:id", hb.Booking.GetBookingHandler)
		booking.GET("/:id/live", hb.Live.StreamBookingHandler)

		// Broadcast and selection.
		booking.POST("/:id/bids", middleware.RequireRole("settler"), hb.Booking.AcceptBidHandler)
		booking.GET("/:id/acceptors/:index", hb.Booking.GetAcceptorHandler)
		booking.POST("/:id/select", hb.Booking.SelectSettlerHandler)

		// Active service.
		booking.POST("/:id/start-code", hb.Booking.ConfirmStartCodeHandler)
		booking.POST("/:id/completion", hb.Booking.CompletionHandler)

		// Dispute flow.
		booking.POST("/:id/problem-report", hb.Booking.FileProblemReportHandler)
		booking.DELETE("/:id/problem-report", hb.Booking.WithdrawProblemReportHandler)
		booking.POST("/:id/incompletion/preview", hb.Booking.PreviewTotalHandler)
		booking.POST("/:id/incompletion", hb.Booking.FlagIncompletionHandler)

		// Quote adjustment.
		booking.POST("/:id/quote-update", middleware.RequireRole("settler"), hb.Booking.ProposeQuoteUpdateHandler)
		booking.POST("/:id/quote-update/resolve", hb.Booking.ResolveQuoteUpdateHandler)

		// Settlement.
		booking.POST("/:id/release-payment", hb.Booking.ReleasePaymentHandler)
		booking.POST("/:id/reviews", hb.Booking.SubmitReviewHandler)

		booking.PATCH("/:id/advisory-flags", middleware.RequireRole("settler"), hb.Booking.SetAdvisoryFlagsHandler)
	}
}
