package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"libraryplanner/config"
	authadapter "libraryplanner/internal/adapters/auth"
	emailadapter "libraryplanner/internal/adapters/email"
	"libraryplanner/internal/adapters/openai"
	delivery "libraryplanner/internal/delivery/http"
	"libraryplanner/internal/delivery/http/controllers"
	"libraryplanner/internal/delivery/http/middleware"
	"libraryplanner/internal/repository/postgres"
	"libraryplanner/internal/services"
)

const serviceTimeout = 5 * time.Second

// @title Library Planner API
// @version 1.0
// @description Library catalog and event scheduling backend.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger := config.NewLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("failed to open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "err", err)
		os.Exit(1)
	}

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	roleRepo := postgres.NewRoleRepository(db)
	bookRepo := postgres.NewBookRepository(db)
	borrowRepo := postgres.NewBorrowRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	invitationRepo := postgres.NewInvitationRepository(db)

	// Adapters
	hasher := authadapter.NewBcryptHasher(0)
	tokenIssuer := authadapter.NewJWTIssuer(cfg.JWTSecret)
	tokenVerifier := authadapter.NewJWTVerifier(cfg.JWTSecret)
	mailer, err := emailadapter.NewMailer(emailadapter.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: emailadapter.SESConfig{
			Region:             cfg.Email.SESRegion,
			AccessKeyID:        cfg.Email.SESAccessKeyID,
			SecretAccessKey:    cfg.Email.SESSecretKey,
			InsecureSkipVerify: cfg.Email.SESInsecureTLS,
		},
	})
	if err != nil {
		logger.Error("failed to create mailer", "err", err)
		os.Exit(1)
	}
	extractor := openai.NewExtractor(&http.Client{Timeout: 30 * time.Second}, openai.Config{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Model:   cfg.OpenAI.Model,
	})

	// Services
	authService := services.NewAuthService(userRepo, roleRepo, hasher, tokenIssuer, cfg.JWTExpiry, serviceTimeout)
	bookService := services.NewBookService(bookRepo, borrowRepo, roleRepo, serviceTimeout)
	libraryService := services.NewLibraryService(bookRepo, borrowRepo, roleRepo, serviceTimeout)
	eventService := services.NewEventService(eventRepo, invitationRepo, userRepo, serviceTimeout)
	emailService := services.NewEmailService(mailer, emailadapter.NewTemplateRenderer())
	invitationService := services.NewInvitationService(invitationRepo, eventRepo, userRepo, emailService, cfg.AppBaseURL, logger, serviceTimeout)

	// Controllers
	authController := controllers.NewAuthController(logger, authService)
	bookController := controllers.NewBookController(logger, bookService, libraryService)
	eventController := controllers.NewEventController(logger, eventService, invitationService)
	invitationController := controllers.NewInvitationController(logger, invitationService)
	aiController := controllers.NewAIController(logger, extractor)

	mux := delivery.NewRouter(logger, tokenVerifier, authController, bookController, eventController, invitationController, aiController)
	handler := middleware.CORS(cfg.CORSAllowedOrigins, middleware.LoggingMiddleware(logger, mux))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
	}
}
