package main

import (
	"aloop3/flow/internal/api"
	"aloop3/flow/internal/config"
	"aloop3/flow/internal/logging"
	"aloop3/flow/internal/metrics"
	"aloop3/flow/internal/repository/mongo"
	"aloop3/flow/internal/service"
	"aloop3/flow/internal/storage"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// @title Flow Coaching API
// @version 1.0
// @description API for coaches and athletes: training blocks, workout tracking and analytics.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// A .env file is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warnf("could not read .env: %s", err)
	}

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("could not load config: %s", err)
	}

	logging.Setup(logging.LoggerSetupParams{
		LogFileName:   cfg.Logging.File,
		LogToStdout:   cfg.Logging.ToStdout,
		LogLevel:      cfg.Logging.Level,
		LogFormatJSON: cfg.Logging.JSON,
		MaxSizeMB:     cfg.Logging.MaxSizeMB,
	})
	log.Info("starting flow server")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatalf("could not connect to MongoDB: %s", err)
	}
	defer func() {
		log.Info("disconnecting MongoDB")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Errorf("failed to disconnect MongoDB: %s", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		mongo.EnsureIndexes(ctx, appDB)
		log.Info("index creation completed")
	}()

	// --- Storage ---
	storageCtx, cancelStorage := context.WithTimeout(context.Background(), 30*time.Second)
	fileStorage, err := storage.NewS3Storage(storageCtx, cfg.S3)
	cancelStorage()
	if err != nil {
		log.Fatalf("failed to initialize S3 storage: %s", err)
	}

	// --- Metrics ---
	var metricsManager *metrics.Manager
	if cfg.Metrics.Enabled {
		metricsManager = metrics.NewManager(cfg.Metrics.Namespace, "server", prometheus.DefaultRegisterer)
	} else {
		// Services always count; without exposure the counters go to a private registry.
		metricsManager = metrics.NewManager(cfg.Metrics.Namespace, "server", prometheus.NewRegistry())
	}

	// --- Repositories ---
	userRepo := mongo.NewMongoUserRepository(appDB)
	blockRepo := mongo.NewMongoBlockRepository(appDB)
	weekRepo := mongo.NewMongoWeekRepository(appDB)
	dayRepo := mongo.NewMongoDayRepository(appDB)
	dayExerciseRepo := mongo.NewMongoDayExerciseRepository(appDB)
	workoutRepo := mongo.NewMongoWorkoutRepository(appDB)
	exerciseRepo := mongo.NewMongoExerciseRepository(appDB)
	notificationRepo := mongo.NewMongoNotificationRepository(appDB)

	// --- Services ---
	access := service.NewRosterAccessChecker(userRepo)
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	catalogService := service.NewCatalogService(userRepo)
	notificationService := service.NewNotificationService(notificationRepo, userRepo, dayRepo, metricsManager)
	blockService := service.NewBlockService(blockRepo, weekRepo, dayRepo, dayExerciseRepo, catalogService, access)
	exerciseService := service.NewExerciseService(exerciseRepo, workoutRepo, userRepo, catalogService, access, metricsManager)
	workoutService := service.NewWorkoutService(
		workoutRepo, exerciseRepo, dayRepo, dayExerciseRepo, userRepo,
		catalogService, notificationService, access, metricsManager,
	)
	history := service.NewHistoryJoiner(workoutRepo, exerciseRepo, blockRepo, weekRepo, dayRepo)
	analyticsService := service.NewAnalyticsService(service.NewAnalyticsEngine(history), blockRepo, access, metricsManager)
	exportService := service.NewExportService(history, fileStorage, access, cfg.S3.ExportURLExpiry)

	// --- HTTP ---
	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	if cfg.Metrics.Enabled {
		router.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	api.SetupRoutes(router, authService.GetJWTSecret(), api.Services{
		Auth:         authService,
		Catalog:      catalogService,
		Blocks:       blockService,
		Workouts:     workoutService,
		Exercises:    exerciseService,
		Analytics:    analyticsService,
		Notification: notificationService,
		Export:       exportService,
		Access:       access,
	}, metricsManager)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Infof("listening on %s", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ListenAndServe: %s", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()
	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Errorf("server forced to shutdown: %s", err)
	}
	log.Info("server exiting")
}
