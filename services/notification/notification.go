package notification

import (
	"context"
	"fmt"

	userRepo "settisfy/database/repository/user"
	"settisfy/utils"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// NotificationService defines methods for sending FCM pushes about booking
// lifecycle events. Delivery is best-effort; the lifecycle never blocks on a
// push.
type NotificationService interface {
	SendUserPushNotification(ctx context.Context, userID, title, body string, data map[string]string) error
}

// DefaultNotificationService is the production implementation.
type DefaultNotificationService struct {
	Users userRepo.UserRepository
	FCM   *messaging.Client
}

func NewDefaultNotificationService(users userRepo.UserRepository, fcm *messaging.Client) (*DefaultNotificationService, error) {
	if users == nil || fcm == nil {
		return nil, fmt.Errorf("notification service initialization error: user repo or FCM client is nil")
	}
	return &DefaultNotificationService{Users: users, FCM: fcm}, nil
}

// SendUserPushNotification looks up a user's FCM token and sends a push.
func (s *DefaultNotificationService) SendUserPushNotification(
	ctx context.Context,
	userID, title, body string,
	data map[string]string,
) error {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("SendUserPushNotification: could not find user %s: %w", userID, err)
	}
	if u.FCMToken == "" {
		return fmt.Errorf("SendUserPushNotification: user %s has no FCM token", userID)
	}

	msg := &messaging.Message{
		Token: u.FCMToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}

	if _, err := s.FCM.Send(ctx, msg); err != nil {
		utils.GetLogger().Error("failed to send push notification",
			zap.String("userID", userID), zap.Error(err))
		return fmt.Errorf("SendUserPushNotification: send failed: %w", err)
	}
	return nil
}
