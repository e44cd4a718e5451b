package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/skillswap-labs/skillswap-api/internal/config"
	"github.com/skillswap-labs/skillswap-api/internal/database"
	"github.com/skillswap-labs/skillswap-api/internal/handler"
	"github.com/skillswap-labs/skillswap-api/internal/middleware"
	"github.com/skillswap-labs/skillswap-api/internal/repository"
	"github.com/skillswap-labs/skillswap-api/internal/router"
	"github.com/skillswap-labs/skillswap-api/internal/service"
	cloud "github.com/skillswap-labs/skillswap-api/pkg/cloudinary"
)

const sseKeepAlive = 25 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	natsConn, err := database.ConnectNATS(cfg.NATSURL)
	if err != nil {
		log.Fatalf("failed to connect to nats: %v", err)
	}
	if natsConn != nil {
		defer natsConn.Close()
	}

	// Avatar uploads degrade to 503 when no cloudinary credentials are set.
	var avatarStorage service.AvatarStorage
	uploader, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("cloudinary disabled")
	} else {
		avatarStorage = uploader
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	swapRepo := repository.NewSwapRequestRepository(db)
	chatRepo := repository.NewChatMessageRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	ratingRepo := repository.NewRatingRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	adminRepo := repository.NewAdminRepository(db)

	mailer := service.NewLogMailer(cfg.MailFrom, logger)

	authService := service.NewAuthService(userRepo, mailer, validate, cfg.JWTSecret, cfg.TokenTTL, logger)
	profileService := service.NewProfileService(userRepo, avatarStorage, validate, cfg.AvatarMaxSizeMB, logger)
	browseService := service.NewBrowseService(userRepo, redisClient, cfg.MatchCacheTTL, logger)
	notificationService := service.NewNotificationService(notificationRepo, redisClient, cfg.AppName, natsConn, validate, logger)
	swapService := service.NewSwapService(swapRepo, userRepo, mailer, notificationService, validate, logger)
	chatService := service.NewChatService(chatRepo, swapRepo, redisClient, natsConn, cfg.AppName, validate, logger)
	sessionService := service.NewSessionService(sessionRepo, swapRepo, userRepo, validate, logger)
	ratingService := service.NewRatingService(ratingRepo, sessionRepo, validate, logger)
	adminService := service.NewAdminService(adminRepo, userRepo, swapRepo, sessionRepo, logger)

	runCtx, stopConsumers := context.WithCancel(context.Background())
	defer stopConsumers()
	chatService.Start(runCtx)
	notificationService.Start(runCtx)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:         handler.NewAuthHandler(authService, logger),
		ProfileHandler:      handler.NewProfileHandler(profileService, logger),
		BrowseHandler:       handler.NewBrowseHandler(browseService, logger),
		SwapHandler:         handler.NewSwapHandler(swapService, logger),
		ChatHandler:         handler.NewChatHandler(chatService, logger),
		SessionHandler:      handler.NewSessionHandler(sessionService, logger),
		RatingHandler:       handler.NewRatingHandler(ratingService, logger),
		AdminHandler:        handler.NewAdminHandler(adminService, logger),
		NotificationHandler: handler.NewNotificationHandler(notificationService, logger, sseKeepAlive),
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app, stopConsumers)
}

func waitForShutdown(app *fiber.App, stopConsumers context.CancelFunc) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()
	stopConsumers()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
