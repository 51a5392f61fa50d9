package main

import (
	"alcyxob/swimtrack/internal/api"
	"alcyxob/swimtrack/internal/config"
	"alcyxob/swimtrack/internal/repository/mongo"
	"alcyxob/swimtrack/internal/repository/postgres"
	"alcyxob/swimtrack/internal/service"
	"alcyxob/swimtrack/internal/store"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal().Err(err).Msg("Could not load config")
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	if cfg.Server.Environment != "production" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	logger.Info().Str("environment", cfg.Server.Environment).Msg("Starting swimtrack server")

	// --- Document Store Connection ---
	mongoClient, err := mongo.ConnectDB(cfg.Mongo.URI)
	if err != nil {
		logger.Fatal().Err(err).Msg("Could not connect to MongoDB")
	}
	defer func() {
		logger.Info().Msg("Disconnecting MongoDB")
		if err := mongo.DisconnectDB(mongoClient); err != nil {
			logger.Error().Err(err).Msg("Failed to disconnect MongoDB")
		}
	}()
	appDB := mongoClient.Database(cfg.Mongo.Name)

	// --- Ensure Indexes ---
	go func() { // Run index creation concurrently/in background
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureUserIndexes(ctx, appDB.Collection("users"))
		logger.Info().Msg("Index creation process completed")
	}()

	// --- Relational Backend Connection ---
	gormDB, err := postgres.ConnectDB(cfg.Postgres.DSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("Could not connect to Postgres")
	}
	logger.Info().Msg("Database connections established")

	// --- Initialize Repositories ---
	userRepo := mongo.NewMongoUserRepository(appDB)
	accountRepo := postgres.NewAccountRepository(gormDB)
	swimRepo := postgres.NewSwimRepository(gormDB)
	goalRepo := postgres.NewGoalRepository(gormDB)
	sessionRepo := postgres.NewSessionRepository(gormDB)

	// --- Initialize Services ---
	authService := service.NewAuthService(accountRepo, userRepo, cfg.JWT.Secret, cfg.JWT.Expiration, logger)
	stravaService := service.NewStravaService(userRepo, sessionRepo, cfg.Server.StravaRedirectURL(), logger)

	// --- Session Stores ---
	stores := store.NewManager(store.Deps{
		Auth:        authService,
		UserRepo:    userRepo,
		SwimRepo:    swimRepo,
		GoalRepo:    goalRepo,
		SessionRepo: sessionRepo,
		Strava:      stravaService,
		Log:         logger,
	})
	// Hydrate a session store on every successful login or signup.
	authService.Subscribe(stores.HandleAuthEvent)

	// --- Initialize Gin Engine ---
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- Setup Routes ---
	api.SetupRoutes(router, cfg.JWT.Secret, stores, userRepo, stravaService, cfg.Server.StaticDir)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	logger.Info().Str("address", cfg.Server.Address).Msg("Server starting")

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("ListenAndServe error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("Shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server exiting")
}
