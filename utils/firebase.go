package utils

import (
	"context"

	"settisfy/config"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// FCMClient delivers the lifecycle pushes (bid received, settler selected,
// completion, quote and dispute events) to customer and settler devices.
var FCMClient *messaging.Client

// FirebaseInit initializes the Firebase app and the messaging client.
func FirebaseInit() {
	ctx := context.Background()
	opt := option.WithCredentialsFile(config.AppConfig.FirebaseCredentialsFile)

	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		GetLogger().Sugar().Fatalf("firebase: error initializing app: %v", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		GetLogger().Sugar().Fatalf("firebase: error getting messaging client: %v", err)
	}

	FCMClient = client
	GetLogger().Info("firebase messaging ready",
		zap.String("credentialsFile", config.AppConfig.FirebaseCredentialsFile))
}
