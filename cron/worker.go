package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"settisfy/config"
	bookingRepo "settisfy/database/repository/booking"
	"settisfy/models"
	"settisfy/services/notification"

	"github.com/hibiken/asynq"
)

const TypeCooldownReminder = "cooldown:remind"

// NewCooldownReminderTask builds the task scheduled when a booking enters
// cooldown, prompting the customer to release payment.
func NewCooldownReminderTask(bookingID, customerID string) (*asynq.Task, error) {
	payload, err := json.Marshal(models.CooldownReminderPayload{
		BookingID:  bookingID,
		CustomerID: customerID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal cooldown reminder payload: %w", err)
	}
	return asynq.NewTask(TypeCooldownReminder, payload), nil
}

// InitCooldownWorker runs the async worker in background.
func InitCooldownWorker(repo bookingRepo.BookingRepository, notifSvc notification.NotificationService) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeCooldownReminder, handleCooldownReminder(repo, notifSvc))

	go func() {
		log.Println("[CooldownWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[CooldownWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[CooldownWorker] max retry attempts reached, exiting")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

// handleCooldownReminder pushes a release-payment reminder, but only when
// the booking is still sitting in cooldown by the time the task fires.
func handleCooldownReminder(repo bookingRepo.BookingRepository, notifSvc notification.NotificationService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.CooldownReminderPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[CooldownReminder] invalid payload: %v", err)
			return err
		}

		booking, err := repo.GetByID(ctx, p.BookingID)
		if err != nil {
			return fmt.Errorf("cooldown reminder: %w", err)
		}
		if booking.Status != models.StatusCooldown {
			// Already released, disputed or renegotiated; nothing to remind.
			return nil
		}

		data := map[string]string{
			"bookingId": p.BookingID,
			"type":      "cooldown_reminder",
		}
		if err := notifSvc.SendUserPushNotification(ctx, p.CustomerID,
			"Release payment?",
			fmt.Sprintf("Your %q service has finished. Release the payment or report a problem.", booking.Catalogue.Title),
			data); err != nil {
			log.Printf("[CooldownReminder] push failed for booking %s: %v", p.BookingID, err)
			return err
		}
		return nil
	}
}
