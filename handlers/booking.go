package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"settisfy/models"
	"settisfy/services/booking"
	"settisfy/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler exposes the booking lifecycle over HTTP.
type BookingHandler struct {
	Service booking.BookingService
	logger  *zap.Logger
}

func NewBookingHandler(svc booking.BookingService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{Service: svc, logger: logger}
}

// respondBookingError maps the service error taxonomy onto HTTP statuses.
// Conflicts are retryable: the client should re-fetch and reapply.
func respondBookingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, booking.ErrNotFound):
		utils.JSONError(c, http.StatusNotFound, "Booking not found", err.Error())
	case errors.Is(err, booking.ErrValidation):
		utils.JSONError(c, http.StatusBadRequest, "Validation failed", err.Error())
	case errors.Is(err, booking.ErrInvalidTransition):
		utils.JSONError(c, http.StatusConflict, "Action not available", err.Error())
	case errors.Is(err, booking.ErrReportLocked):
		utils.JSONError(c, http.StatusConflict, "Problem report already filed", err.Error())
	case errors.Is(err, booking.ErrConflict):
		utils.JSONError(c, http.StatusConflict, "Booking changed, refresh and retry", err.Error())
	default:
		utils.JSONError(c, http.StatusInternalServerError, "Something went wrong, please retry", err.Error())
	}
}

// requireCustomer ensures the session user owns the booking before a
// customer-side transition runs.
func (h *BookingHandler) requireCustomer(c *gin.Context, bookingID string) bool {
	b, err := h.Service.GetBooking(c.Request.Context(), bookingID)
	if err != nil {
		respondBookingError(c, err)
		return false
	}
	if b.CustomerID != c.GetString("userID") {
		utils.JSONError(c, http.StatusForbidden, "Not your booking", "")
		return false
	}
	return true
}

// CreateBookingHandler creates a broadcast booking from the checkout flow.
func (h *BookingHandler) CreateBookingHandler(c *gin.Context) {
	var input booking.CreateBookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid input", err.Error())
		return
	}
	input.CustomerID = c.GetString("userID")

	b, err := h.Service.CreateBooking(c.Request.Context(), input)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// GetBookingHandler returns the booking plus display joins.
func (h *BookingHandler) GetBookingHandler(c *gin.Context) {
	detail, err := h.Service.GetBookingDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// ListMyBookingsHandler lists the session user's bookings by role.
func (h *BookingHandler) ListMyBookingsHandler(c *gin.Context) {
	userID := c.GetString("userID")

	var (
		bookings []models.Booking
		err      error
	)
	if c.GetString("role") == "settler" {
		bookings, err = h.Service.ListSettlerBookings(c.Request.Context(), userID)
	} else {
		bookings, err = h.Service.ListCustomerBookings(c.Request.Context(), userID)
	}
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// AcceptBidHandler records the session settler's bid on a broadcast booking.
func (h *BookingHandler) AcceptBidHandler(c *gin.Context) {
	var input struct {
		SettlerServiceID string `json:"settlerServiceId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid input", err.Error())
		return
	}

	b, err := h.Service.AcceptBid(c.Request.Context(), c.Param("id"), c.GetString("userID"), input.SettlerServiceID)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// GetAcceptorHandler returns one enriched acceptor for paging through
// candidates.
func (h *BookingHandler) GetAcceptorHandler(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid acceptor index", err.Error())
		return
	}

	details, err := h.Service.AcceptorDetails(c.Request.Context(), c.Param("id"), index)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

// SelectSettlerHandler commits the customer's one-time acceptor pick.
func (h *BookingHandler) SelectSettlerHandler(c *gin.Context) {
	if !h.requireCustomer(c, c.Param("id")) {
		return
	}
	var input struct {
		Index *int `json:"index" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid input", err.Error())
		return
	}

	b, err := h.Service.SelectSettler(c.Request.Context(), c.Param("id"), *input.Index)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// ConfirmStartCodeHandler verifies the shared start code.
func (h *BookingHandler) ConfirmStartCodeHandler(c *gin.Context) {
	if !h.requireCustomer(c, c.Param("id")) {
		return
	}
	var input struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid input", err.Error())
		return
	}

	b, err := h.Service.ConfirmStartCode(c.Request.Context(), c.Param("id"), input.Code)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// CompletionHandler applies the customer's completion verdict.
func (h *BookingHandler) CompletionHandler(c *gin.Context) {
	if !h.requireCustomer(c, c.Param("id")) {
		return
	}
	var input struct {
		Confirmed *bool `json:"confirmed" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid input", err.Error())
		return
	}

	var (
		b   *models.Booking
		err error
	)
	if *input.Confirmed {
		b, err = h.Service.ConfirmCompletion(c.Request.Context(), c.Param("id"))
	} else {
		b, err = h.Service.RejectCompletion(c.Request.Context(), c.Param("id"))
	}
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// FileProblemReportHandler accepts the dispute evidence as a multipart form
// (remark plus images), uploads the images and files the report.
func (h *BookingHandler) FileProblemReportHandler(c *gin.Context) {
	if !h.requireCustomer(c, c.Param("id")) {
		return
	}
	remark := c.PostForm("remark")

	form, err := c.MultipartForm()
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid multipart form", err.Error())
		return
	}

	var localPaths []string
	defer func() {
		for _, p := range localPaths {
			os.Remove(p)
		}
	}()
	for i, file := range form.File["images"] {
		dst := filepath.Join(os.TempDir(), fmt.Sprintf("evidence-%s-%d%s", c.Param("id"), i, filepath.Ext(file.Filename)))
		if err := c.SaveUploadedFile(file, dst); err != nil {
			utils.JSONError(c, http.StatusInternalServerError, "Failed to receive image", err.Error())
			return
		}
		localPaths = append(localPaths, dst)
	}

	b, err := h.Service.FileProblemReport(c.Request.Context(), c.Param("id"), remark, localPaths)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// WithdrawProblemReportHandler deletes the filed evidence.
func (h *BookingHandler) WithdrawProblemReportHandler(c *gin.Context) {
	if !h.requireCustomer(c, c.Param("id")) {
		return
	}
	b, err := h.Service.WithdrawProblemReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// PreviewTotalHandler recomputes the adjusted total for an in-progress
// dispute without persisting anything.
func (h *BookingHandler) PreviewTotalHandler(c *gin.Context) {
	var input booking.IncompletionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid input", err.Error())
		return
	}

	total, err := h.Service.PreviewAdjustedTotal(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"adjustedTotal": total})
}

// FlagIncompletionHandler confirms the partial-completion dispute.
func (h *BookingHandler) FlagIncompletionHandler(c *gin.Context) {
	if !h.requireCustomer(c, c.Param("id")) {
		return
	}
	var input booking.IncompletionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid input", err.Error())
		return
	}

	b, err := h.Service.FlagIncompletion(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// ProposeQuoteUpdateHandler records the settler's revised quote.
func (h *BookingHandler) ProposeQuoteUpdateHandler(c *gin.Context) {
	var prop models.QuoteProposal
	if err := c.ShouldBindJSON(&prop); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid input", err.Error())
		return
	}

	b, err := h.Service.ProposeQuoteUpdate(c.Request.Context(), c.Param("id"), prop)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// ResolveQuoteUpdateHandler applies the customer's accept/reject decision.
func (h *BookingHandler) ResolveQuoteUpdateHandler(c *gin.Context) {
	if !h.requireCustomer(c, c.Param("id")) {
		return
	}
	var input struct {
		Accept *bool `json:"accept" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid input", err.Error())
		return
	}

	b, err := h.Service.ResolveQuoteUpdate(c.Request.Context(), c.Param("id"), *input.Accept)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// ReleasePaymentHandler captures payment and opens the review stage.
func (h *BookingHandler) ReleasePaymentHandler(c *gin.Context) {
	if !h.requireCustomer(c, c.Param("id")) {
		return
	}
	b, err := h.Service.ReleasePayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// SubmitReviewHandler records the customer's review and completes the
// booking.
func (h *BookingHandler) SubmitReviewHandler(c *gin.Context) {
	if !h.requireCustomer(c, c.Param("id")) {
		return
	}
	var input booking.ReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid input", err.Error())
		return
	}
	input.CustomerID = c.GetString("userID")

	review, err := h.Service.SubmitReview(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

// SetAdvisoryFlagsHandler updates the settler's banner flags.
func (h *BookingHandler) SetAdvisoryFlagsHandler(c *gin.Context) {
	var input struct {
		IsDoingVisitAndFix    *bool `json:"isDoingVisitAndFix"`
		IsDoingUpdateEvidence *bool `json:"isDoingUpdateEvidence"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid input", err.Error())
		return
	}

	b, err := h.Service.SetAdvisoryFlags(c.Request.Context(), c.Param("id"), input.IsDoingVisitAndFix, input.IsDoingUpdateEvidence)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}
