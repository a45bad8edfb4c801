package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hospital-records/config"
	deliveryHttp "hospital-records/internal/delivery/http"
	"hospital-records/internal/delivery/http/handler"
	"hospital-records/internal/delivery/http/middleware"
	"hospital-records/internal/infrastructure/filestore"
	"hospital-records/internal/repository"
	"hospital-records/internal/service"
	"hospital-records/internal/usecase"
	"hospital-records/pkg/clock"
	"hospital-records/pkg/jwt"
	"hospital-records/pkg/password"
	"hospital-records/pkg/validator"

	"github.com/sirupsen/logrus"
)

const devJWTSecret = "development-only-secret"

// App holds all dependencies for the application
type App struct {
	Config *config.Config
	Log    *logrus.Logger
	Files  *filestore.FileStore
	Store  *repository.Store
	Auth   usecase.AuthUsecase
	Server *http.Server
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := setupLogger(cfg)
	log.Info("Configuration loaded successfully")

	if cfg.JWT.Secret == "" {
		if !cfg.IsDev() {
			return nil, errors.New("JWT_SECRET must be set outside development")
		}
		log.Warn("JWT_SECRET is not set, using the development secret")
		cfg.JWT.Secret = devJWTSecret
	}

	app := &App{
		Config: cfg,
		Log:    log,
	}
	app.initialize()

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger(cfg *config.Config) *logrus.Logger {
	log := logrus.StandardLogger()
	if cfg.IsDev() {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	log.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}

// initialize wires every layer and builds the HTTP server
func (app *App) initialize() {
	cfg, log := app.Config, app.Log
	clk := clock.System(cfg.Location())

	// Storage
	files := filestore.New(cfg.Storage.BackupDir, clk, log)
	customValidator := validator.NewValidator()
	store := repository.NewStore(repository.Deps{
		Files:    files,
		Validate: customValidator,
		Log:      log,
		Backup:   cfg.Storage.BackupEnabled,
	}, cfg)
	auditService := service.NewAuditService(files, cfg.DataFile(config.AuditFile), clk, log)

	jwtService := jwt.NewJWTService(cfg.JWT)
	hasher := password.NewBcryptHasher(0)

	// Initialize usecases
	authUsecase := usecase.NewAuthUsecase(log, clk, store.Accounts, store.Patients, store.Doctors, hasher, jwtService, auditService)
	bookingUsecase := usecase.NewBookingUsecase(log, clk, store.Appointments, store.Doctors, store.Patients, auditService)
	dispensingUsecase := usecase.NewDispensingUsecase(log, clk, store.Prescriptions, store.Medicines, store.Appointments, auditService)
	medicineUsecase := usecase.NewMedicineUsecase(log, clk, store.Medicines, auditService)
	recordsUsecase := usecase.NewRecordsUsecase(log, store.Patients, store.Doctors, store.Departments)
	auditLogUsecase := usecase.NewAuditLogUsecase(log, auditService)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authUsecase, customValidator)
	doctorHandler := handler.NewDoctorHandler(recordsUsecase, bookingUsecase)
	patientHandler := handler.NewPatientHandler(recordsUsecase)
	appointmentHandler := handler.NewAppointmentHandler(bookingUsecase, recordsUsecase, customValidator)
	medicineHandler := handler.NewMedicineHandler(medicineUsecase, customValidator)
	prescriptionHandler := handler.NewPrescriptionHandler(dispensingUsecase, recordsUsecase, customValidator)
	departmentHandler := handler.NewDepartmentHandler(recordsUsecase, customValidator)
	auditLogHandler := handler.NewAuditLogHandler(auditLogUsecase)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, store.Accounts, log)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.IsDev())
	var rateLimiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitRPS > 0 {
		rateLimiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst, cfg.HTTP.TrustedProxies)
	}

	// Initialize router
	router := deliveryHttp.NewRouter(
		authHandler,
		doctorHandler,
		patientHandler,
		appointmentHandler,
		medicineHandler,
		prescriptionHandler,
		departmentHandler,
		auditLogHandler,
		authMiddleware,
		corsMiddleware,
		rateLimiter,
	)

	app.Files = files
	app.Store = store
	app.Auth = authUsecase
	app.Server = &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.App.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Run loads every data file, starts the HTTP server and handles graceful shutdown
func (app *App) Run() error {
	// Surface malformed or unreadable files at startup rather than on the first request.
	if err := app.Store.LoadAll(); err != nil {
		return fmt.Errorf("failed to load data files: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		app.Log.Infof("Server starting on port %s", app.Config.App.Port)
		app.Log.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for interrupt signal
	return app.waitForShutdown(errCh)
}

// waitForShutdown blocks until an interrupt signal is received or the server fails
func (app *App) waitForShutdown(errCh <-chan error) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-quit:
	}

	app.Log.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.Server.Shutdown(ctx); err != nil {
		app.Log.Errorf("Server forced to shutdown: %v", err)
	}

	app.Log.Info("Server shutdown complete")
	return nil
}
