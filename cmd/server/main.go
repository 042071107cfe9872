package main

import (
	"alcyxob/fitcoach/internal/access"
	"alcyxob/fitcoach/internal/api"
	"alcyxob/fitcoach/internal/config"
	"alcyxob/fitcoach/internal/logger"
	"alcyxob/fitcoach/internal/metrics"
	"alcyxob/fitcoach/internal/notify"
	"alcyxob/fitcoach/internal/repository/mongo"
	"alcyxob/fitcoach/internal/service"
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// @title Fitness Coaching API
// @version 1.0
// @description Trainers, clients, workouts and progress tracking.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}

	zlog, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("FATAL: Could not build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	if err := run(cfg, zlog); err != nil {
		zlog.Fatal("server stopped with error", zap.Error(err))
	}
	zlog.Info("server exiting")
}

func run(cfg config.Config, zlog *zap.Logger) error {
	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI, cfg.Database.Timeout)
	if err != nil {
		return err
	}
	defer func() {
		zlog.Info("disconnecting MongoDB")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			zlog.Error("failed to disconnect MongoDB", zap.Error(err))
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	zlog.Info("database connection established", zap.String("database", cfg.Database.Name))

	indexCtx, cancelIndexes := context.WithTimeout(context.Background(), time.Minute)
	err = mongo.EnsureIndexes(indexCtx, appDB)
	cancelIndexes()
	if err != nil {
		// The API works without the indexes, only slower.
		zlog.Warn("index creation incomplete", zap.Error(err))
	}

	// --- Repositories ---
	userRepo := mongo.NewMongoUserRepository(appDB)
	profileRepo := mongo.NewMongoProfileRepository(appDB)
	mappingRepo := mongo.NewMongoMappingRepository(appDB)
	exerciseRepo := mongo.NewMongoExerciseRepository(appDB)
	workoutRepo := mongo.NewMongoWorkoutRepository(appDB)
	notificationRepo := mongo.NewMongoNotificationRepository(appDB)
	habitRepo := mongo.NewMongoHabitRepository(appDB)
	challengeRepo := mongo.NewMongoChallengeRepository(appDB)

	// --- Notifications ---
	m := metrics.NewManager("fitcoach", "server")
	dispatcher := notify.NewDispatcher(
		notify.NewStoreSink(notificationRepo),
		cfg.Notifications.BufferSize,
		cfg.Notifications.DeliverTimeout,
		zlog,
		m,
	)

	// --- Services ---
	checker := access.NewChecker(profileRepo, mappingRepo)
	progressService := service.NewProgressService(workoutRepo, nil)
	services := api.Services{
		Auth:         service.NewAuthService(userRepo, profileRepo, cfg.JWT.Secret, cfg.JWT.Expiration),
		Admin:        service.NewAdminService(userRepo, profileRepo, mappingRepo, dispatcher, zlog),
		Exercise:     service.NewExerciseService(exerciseRepo, workoutRepo),
		Trainer:      service.NewTrainerService(userRepo, profileRepo, mappingRepo, workoutRepo, checker, progressService),
		Client:       service.NewClientService(userRepo, profileRepo, mappingRepo),
		Workout:      service.NewWorkoutService(userRepo, profileRepo, workoutRepo, checker, progressService, dispatcher, zlog, nil),
		Notification: service.NewNotificationService(notificationRepo),
		Habit:        service.NewHabitService(profileRepo, habitRepo, nil),
		Challenge:    service.NewChallengeService(challengeRepo),
	}

	// --- Gin Engine ---
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery(), api.RequestID(), api.Logger(zlog.Named("http")), api.Metrics(m))
	api.SetupRoutes(router, services, m)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		zlog.Info("server starting", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		if err != nil {
			_ = dispatcher.Close(context.Background())
			return err
		}
	case sig := <-quit:
		zlog.Info("shutting down server", zap.String("signal", sig.String()))
	}

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		zlog.Error("server forced to shutdown", zap.Error(err))
	}
	// Handlers are done publishing; flush what is still queued.
	if err := dispatcher.Close(ctxShutdown); err != nil {
		zlog.Warn("pending notifications not delivered", zap.Error(err))
	}
	return nil
}
