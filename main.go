package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"settisfy/config"
	"settisfy/cron"
	"settisfy/database"
	bookingRepoPkg "settisfy/database/repository/booking"
	reviewRepoPkg "settisfy/database/repository/review"
	settlerServiceRepoPkg "settisfy/database/repository/settlerservice"
	userRepoPkg "settisfy/database/repository/user"
	"settisfy/handlers"
	"settisfy/routes"
	"settisfy/services/booking"
	"settisfy/services/notification"
	"settisfy/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/stripe/stripe-go/v76"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.FirebaseInit()

	cloudinaryStorageService, err := utils.Cloudinary()
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize cloudinary storage service: %v", err)
	}

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	stripe.Key = config.AppConfig.StripeKey

	// repositories.
	bookingRepo := bookingRepoPkg.NewMongoBookingRepo()
	userRepo := userRepoPkg.NewMongoUserRepo()
	settlerServiceRepo := settlerServiceRepoPkg.NewMongoSettlerServiceRepo()
	reviewRepo := reviewRepoPkg.NewMongoReviewRepo()

	// services.
	notificationService, err := notification.NewDefaultNotificationService(userRepo, utils.FCMClient)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize notification service: %v", err)
	}

	queueClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
	defer queueClient.Close()

	bookingService := &booking.DefaultBookingService{
		Repo:                  bookingRepo,
		Users:                 userRepo,
		Services:              settlerServiceRepo,
		Reviews:               reviewRepo,
		Storage:               cloudinaryStorageService,
		Payments:              booking.NewStripePaymentHandler(logger, config.AppConfig.Currency),
		Notifier:              notificationService,
		Queue:                 queueClient,
		Cache:                 utils.GetCacheClient(),
		CooldownReminderDelay: time.Duration(config.AppConfig.CooldownReminderHours) * time.Hour,
	}

	cron.InitCooldownWorker(bookingRepo, notificationService)

	handlerBundle := handlers.NewHandlerBundle(bookingService, logger)
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
