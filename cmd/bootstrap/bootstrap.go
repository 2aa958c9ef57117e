package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clinic-queue-manager/config"
	deliveryHttp "clinic-queue-manager/internal/delivery/http"
	"clinic-queue-manager/internal/delivery/http/handler"
	"clinic-queue-manager/internal/delivery/http/middleware"
	"clinic-queue-manager/internal/infrastructure/cache"
	"clinic-queue-manager/internal/infrastructure/database"
	"clinic-queue-manager/internal/repository"
	"clinic-queue-manager/internal/scheduler"
	"clinic-queue-manager/internal/service"
	"clinic-queue-manager/internal/usecase"
	"clinic-queue-manager/pkg/jwt"
	"clinic-queue-manager/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	DB          *gorm.DB
	RedisClient *redis.Client
	Server      *http.Server
	Scheduler   *scheduler.ConfirmationScheduler

	schedulerCancel context.CancelFunc
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	app := &App{}

	// Setup logger
	setupLogger()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg
	logrus.Info("Configuration loaded successfully")

	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid clinic timezone %q: %w", cfg.Scheduler.Timezone, err)
	}

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB, cfg.Scheduler.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	logrus.Info("Database connected successfully")

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient
	logrus.Info("Redis connected successfully")

	// Initialize all layers
	server, confirmationScheduler := initializeServer(cfg, db, redisClient, location)
	app.Server = server
	app.Scheduler = confirmationScheduler

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.InfoLevel)
}

// initializeServer creates and configures the HTTP server plus the
// background confirmation scheduler
func initializeServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, location *time.Location) (*http.Server, *scheduler.ConfirmationScheduler) {
	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT)

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize repositories
	profileRepo := repository.NewProfileRepository()
	clinicRepo := repository.NewClinicRepository()
	doctorRepo := repository.NewDoctorRepository()
	scheduleRepo := repository.NewDoctorScheduleRepository()
	queueRepo := repository.NewQueueRepository()
	ticketRepo := repository.NewQueueTicketRepository()
	appointmentRepo := repository.NewAppointmentRepository()
	queueEventRepo := repository.NewQueueEventRepository()

	// Initialize logger
	log := logrus.StandardLogger()

	// Initialize services
	boardService := service.NewQueueBoardService(redisClient, log)
	eventService := service.NewQueueEventService(db, log, queueEventRepo)

	// Initialize usecases
	authUsecase := usecase.NewAuthUsecase(db, log, profileRepo, clinicRepo, jwtService, redisClient)
	clinicUsecase := usecase.NewClinicUsecase(db, log, clinicRepo)
	doctorUsecase := usecase.NewDoctorUsecase(db, log, doctorRepo, clinicRepo)
	scheduleUsecase := usecase.NewDoctorScheduleUsecase(db, log, scheduleRepo, doctorRepo, appointmentRepo, location)
	queueUsecase := usecase.NewQueueUsecase(db, log, queueRepo, clinicRepo, boardService, eventService)
	ticketUsecase := usecase.NewQueueTicketUsecase(db, log, ticketRepo, queueRepo, boardService, eventService)
	appointmentUsecase := usecase.NewAppointmentUsecase(db, log, appointmentRepo, doctorRepo, clinicRepo)
	queueEventUsecase := usecase.NewQueueEventUsecase(db, log, queueEventRepo, queueRepo)
	statisticsUsecase := usecase.NewStatisticsUsecase(db, log, queueRepo, appointmentRepo, location)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authUsecase, jwtService, customValidator)
	clinicHandler := handler.NewClinicHandler(clinicUsecase, doctorUsecase, customValidator)
	doctorHandler := handler.NewDoctorHandler(doctorUsecase, customValidator)
	scheduleHandler := handler.NewDoctorScheduleHandler(scheduleUsecase, customValidator)
	queueHandler := handler.NewQueueHandler(queueUsecase, queueEventUsecase, customValidator)
	ticketHandler := handler.NewQueueTicketHandler(ticketUsecase, customValidator)
	appointmentHandler := handler.NewAppointmentHandler(appointmentUsecase, customValidator)
	statisticsHandler := handler.NewStatisticsHandler(statisticsUsecase)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, redisClient)
	corsMiddleware := middleware.NewCORSMiddleware()

	// Initialize router
	router := deliveryHttp.NewRouter(
		authHandler,
		clinicHandler,
		doctorHandler,
		scheduleHandler,
		queueHandler,
		ticketHandler,
		appointmentHandler,
		statisticsHandler,
		authMiddleware,
		corsMiddleware,
	)
	httpRouter := router.Setup()

	// Background confirmation scheduler
	confirmationScheduler := scheduler.NewConfirmationScheduler(db, log, appointmentRepo, cfg.Scheduler.ConfirmInterval, location)

	// Create server
	serverAddr := fmt.Sprintf(":%s", cfg.App.Port)
	server := &http.Server{
		Addr:    serverAddr,
		Handler: httpRouter,
	}

	return server, confirmationScheduler
}

// Run starts the HTTP server and the confirmation scheduler, then
// handles graceful shutdown
func (app *App) Run() {
	schedulerCtx, cancel := context.WithCancel(context.Background())
	app.schedulerCancel = cancel
	go app.Scheduler.Start(schedulerCtx)

	// Start server in goroutine
	go func() {
		logrus.Infof("Server starting on port %s", app.Config.App.Port)
		logrus.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	// Stop the scheduler loop first so no new confirmation runs start
	if app.schedulerCancel != nil {
		app.schedulerCancel()
	}

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	// Close connections
	app.Close()

	logrus.Info("Server shutdown complete")
}

// Close closes all connections (database, redis, etc.)
func (app *App) Close() {
	// Close database connection
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	// Close Redis connection
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
