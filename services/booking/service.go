package booking

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"settisfy/cron"
	bookingRepo "settisfy/database/repository/booking"
	reviewRepo "settisfy/database/repository/review"
	settlerServiceRepo "settisfy/database/repository/settlerservice"
	userRepo "settisfy/database/repository/user"
	"settisfy/models"
	"settisfy/services/notification"
	"settisfy/services/storage"
	"settisfy/utils"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const bookingCacheTTL = 5 * time.Minute

// DefaultBookingService is the production booking lifecycle engine.
// Queue and Cache may be nil; reminders and snapshot caching are then
// skipped, everything else behaves identically.
type DefaultBookingService struct {
	Repo     bookingRepo.BookingRepository
	Users    userRepo.UserRepository
	Services settlerServiceRepo.SettlerServiceRepository
	Reviews  reviewRepo.ReviewRepository
	Storage  storage.StorageService
	Payments PaymentHandler
	Notifier notification.NotificationService
	Queue    *asynq.Client
	Cache    *redis.Client

	// Delay before the customer is reminded to release payment.
	CooldownReminderDelay time.Duration
}

func bookingCacheKey(id string) string {
	return "booking:" + id
}

// cacheSnapshot writes the latest booking through to the snapshot cache.
// Best-effort: a cache failure never fails the transition.
func (s *DefaultBookingService) cacheSnapshot(ctx context.Context, b *models.Booking) {
	if s.Cache == nil {
		return
	}
	data, err := json.Marshal(b)
	if err != nil {
		return
	}
	if err := s.Cache.Set(ctx, bookingCacheKey(b.ID), data, bookingCacheTTL).Err(); err != nil {
		utils.GetLogger().Warn("failed to cache booking snapshot",
			zap.String("bookingID", b.ID), zap.Error(err))
	}
}

// refresh re-fetches the authoritative record after a mutation and refreshes
// the snapshot cache with it.
func (s *DefaultBookingService) refresh(ctx context.Context, id string) (*models.Booking, error) {
	b, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cacheSnapshot(ctx, b)
	return b, nil
}

// notify sends a best-effort lifecycle push; failures are logged, never
// surfaced to the transition caller.
func (s *DefaultBookingService) notify(ctx context.Context, userID, event, title, body, bookingID string) {
	if s.Notifier == nil || userID == "" {
		return
	}
	data := map[string]string{
		"bookingId": bookingID,
		"type":      event,
	}
	if err := s.Notifier.SendUserPushNotification(ctx, userID, title, body, data); err != nil {
		utils.GetLogger().Warn("lifecycle push failed",
			zap.String("bookingID", bookingID),
			zap.String("event", event),
			zap.Error(err))
	}
}

// enqueueCooldownReminder schedules the release-payment prompt when a
// booking enters cooldown.
func (s *DefaultBookingService) enqueueCooldownReminder(b *models.Booking) {
	if s.Queue == nil {
		return
	}
	task, err := cron.NewCooldownReminderTask(b.ID, b.CustomerID)
	if err != nil {
		utils.GetLogger().Warn("failed to build cooldown reminder task",
			zap.String("bookingID", b.ID), zap.Error(err))
		return
	}
	delay := s.CooldownReminderDelay
	if delay <= 0 {
		delay = 24 * time.Hour
	}
	if _, err := s.Queue.Enqueue(task, asynq.ProcessIn(delay)); err != nil {
		utils.GetLogger().Warn("failed to enqueue cooldown reminder",
			zap.String("bookingID", b.ID), zap.Error(err))
	}
}

// CreateBooking creates a broadcast booking from the checkout intake. The
// catalogue is snapshotted, every addon option defaults to completed and the
// committed total is derived by the pricing calculator.
func (s *DefaultBookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*models.Booking, error) {
	if input.CustomerID == "" {
		return nil, errors.New("customer ID is required")
	}
	if input.Catalogue.Title == "" || input.Catalogue.BasePrice < 0 {
		return nil, errors.New("invalid catalogue snapshot")
	}

	addons := make([]models.AddonGroup, len(input.Addons))
	for i, group := range input.Addons {
		addons[i] = models.AddonGroup{Title: group.Title, Options: make([]models.AddonOption, len(group.Options))}
		for j, opt := range group.Options {
			opt.IsCompleted = true
			addons[i].Options[j] = opt
		}
	}

	now := time.Now().UTC()
	b := &models.Booking{
		ID:                     uuid.New().String(),
		CustomerID:             input.CustomerID,
		Status:                 models.StatusBroadcasting,
		Catalogue:              input.Catalogue,
		Addons:                 addons,
		ManualQuoteDescription: input.ManualQuoteDescription,
		ManualQuotePrice:       input.ManualQuotePrice,
		IsManualQuoteCompleted: input.ManualQuotePrice != nil,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	b.Total = BookingAdjustedTotal(b)

	if err := s.Repo.Create(ctx, b); err != nil {
		return nil, err
	}
	s.cacheSnapshot(ctx, b)
	return b, nil
}

// GetBooking returns the latest booking record, via the snapshot cache when
// warm. All mutations write through the cache, so a hit is authoritative.
func (s *DefaultBookingService) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	if s.Cache != nil {
		if data, err := s.Cache.Get(ctx, bookingCacheKey(id)).Result(); err == nil {
			var b models.Booking
			if jsonErr := json.Unmarshal([]byte(data), &b); jsonErr == nil {
				return &b, nil
			}
		}
	}
	return s.refresh(ctx, id)
}

// GetBookingDetail returns the booking plus the display joins the details
// screen needs.
func (s *DefaultBookingService) GetBookingDetail(ctx context.Context, id string) (*BookingDetail, error) {
	b, err := s.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &BookingDetail{
		Booking:       *b,
		ChatChannelID: b.ChatChannelID(),
		AdjustedTotal: BookingAdjustedTotal(b),
	}

	if b.Status >= models.StatusReviewPending {
		review, err := s.Reviews.GetByBookingID(ctx, b.SettlerServiceID, b.ID)
		if err != nil && !errors.Is(err, reviewRepo.ErrNotFound) {
			return nil, err
		}
		detail.Review = review
	}
	return detail, nil
}

// ListCustomerBookings returns the customer's bookings, newest first.
func (s *DefaultBookingService) ListCustomerBookings(ctx context.Context, customerID string) ([]models.Booking, error) {
	return s.Repo.ListByCustomer(ctx, customerID)
}

// ListSettlerBookings returns bookings the settler is selected for or has
// bid on, newest first.
func (s *DefaultBookingService) ListSettlerBookings(ctx context.Context, settlerID string) ([]models.Booking, error) {
	return s.Repo.ListBySettler(ctx, settlerID)
}

// WatchBooking streams authoritative booking snapshots on every change. The
// viewer reconciles any optimistic local state against these payloads,
// preferring the remote value on conflict.
func (s *DefaultBookingService) WatchBooking(ctx context.Context, bookingID string) (<-chan models.Booking, error) {
	if _, err := s.Repo.GetByID(ctx, bookingID); err != nil {
		return nil, err
	}
	return s.Repo.Watch(ctx, bookingID)
}
