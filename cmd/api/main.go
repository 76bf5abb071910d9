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
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/acadex/acadex-api/internal/config"
	"github.com/acadex/acadex-api/internal/database"
	"github.com/acadex/acadex-api/internal/handler"
	"github.com/acadex/acadex-api/internal/middleware"
	"github.com/acadex/acadex-api/internal/models"
	"github.com/acadex/acadex-api/internal/repository"
	"github.com/acadex/acadex-api/internal/router"
	"github.com/acadex/acadex-api/internal/service"
	"github.com/acadex/acadex-api/internal/session"
	"github.com/acadex/acadex-api/pkg/googleauth"
)

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

	if err := db.AutoMigrate(&models.User{}, &models.Assessment{}, &models.Submission{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	// NATS is optional; the submission service tolerates a nil connection.
	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, submission events disabled")
		} else {
			defer natsConn.Drain()
		}
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	sessions := session.NewRedisStore(redisClient, cfg.SessionTTL, logger)
	verifier, err := googleauth.New(cfg.GoogleClientID)
	if err != nil {
		log.Fatalf("failed to configure google verifier: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	assessmentRepo := repository.NewAssessmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)

	authService := service.NewAuthService(userRepo, sessions, verifier, logger)
	assessmentService := service.NewAssessmentService(assessmentRepo, submissionRepo, validate, logger)
	submissionService := service.NewSubmissionService(submissionRepo, assessmentRepo, validate, natsConn, cfg.NATSSubject, logger)

	authHandler := handler.NewAuthHandler(authService, validate, cfg.SecureCookies, cfg.SessionTTL, logger)
	assessmentHandler := handler.NewAssessmentHandler(assessmentService, validate, logger)
	submissionHandler := handler.NewSubmissionHandler(submissionService, validate, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{
		Logger:      &logger,
		CORSOrigins: cfg.CORSOrigins,
	})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:       authHandler,
		AssessmentHandler: assessmentHandler,
		SubmissionHandler: submissionHandler,
		Sessions:          sessions,
		DB:                db,
		Redis:             redisClient,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
