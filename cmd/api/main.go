package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/config"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/fixtures"
	appHTTP "github.com/cmlabs-hris/hris-attendance-go/internal/handler/http"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/logger"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/oauth"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/qrimage"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/qrtoken"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/sse"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/storage"
	"github.com/cmlabs-hris/hris-attendance-go/internal/repository/memory"
	"github.com/cmlabs-hris/hris-attendance-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/hris-attendance-go/internal/service/attendance"
	serviceAuth "github.com/cmlabs-hris/hris-attendance-go/internal/service/auth"
	notificationService "github.com/cmlabs-hris/hris-attendance-go/internal/service/notification"
)

const appName = "hris-attendance"

// repositories groups the store implementations selected by STORE_DRIVER.
type repositories struct {
	attendance   attendance.AttendanceRepository
	employee     employee.EmployeeRepository
	user         user.UserRepository
	notification notification.Repository
	close        func()
}

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(os.Stdout, logger.Options{
		App:     appName,
		Version: cfg.App.Version,
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
	})
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		return err
	}
	defer repos.close()

	location, err := cfg.Location()
	if err != nil {
		return fmt.Errorf("invalid timezone: %w", err)
	}

	var fileStorage storage.FileStorage
	if cfg.Storage.BasePath != "" {
		local, err := storage.NewLocalStorage(cfg.Storage.BasePath)
		if err != nil {
			return fmt.Errorf("failed to initialize local storage: %w", err)
		}
		fileStorage = local
	} else {
		log.Warn("STORAGE_BASE_PATH is not set, attendance clear will not archive")
	}

	var googleService oauth.GoogleService
	if cfg.OAuth2Google.Enabled() {
		googleService = oauth.NewGoogleService(cfg.OAuth2Google.ClientID, cfg.OAuth2Google.ClientSecret, cfg.OAuth2Google.RedirectURL, cfg.OAuth2Google.Scopes)
	}

	hub := sse.NewHub()
	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	notifService := notificationService.NewNotificationService(repos.notification, hub, notificationService.Config{
		BatchSize:     cfg.Notification.BatchSize,
		FlushInterval: cfg.Notification.FlushInterval,
		WorkerCount:   cfg.Notification.WorkerCount,
		QueueSize:     cfg.Notification.QueueSize,
	}, log)
	defer notifService.Stop()

	attendanceSvc := attendanceService.NewAttendanceService(attendanceService.Config{
		Generator: qrtoken.NewGenerator(cfg.Attendance.QRSecret, qrtoken.WithInterval(cfg.Attendance.QRInterval)),
		Renderer:  qrimage.NewRenderer(cfg.Attendance.QRImageSize),
		Office:    cfg.Attendance.Office,
		Policy: attendance.Policy{
			WorkStart:     cfg.Attendance.WorkStart,
			WorkEnd:       cfg.Attendance.WorkEnd,
			LateThreshold: cfg.Attendance.LateThreshold,
			HalfDayHours:  cfg.Attendance.HalfDayHours,
			Location:      location,
		},
		WorkDays: cfg.Attendance.WorkDays,
	}, repos.attendance, repos.employee, notifService, fileStorage, log)

	authService := serviceAuth.NewAuthService(repos.user, JWTService)

	scheduler := cron.NewScheduler()
	cron.NewAttendanceJobs(attendanceSvc, hub, cfg.Attendance.QRInterval).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			Logger:         log,
			AllowedOrigins: cfg.App.AllowedOrigins,
			LogLevel:       logger.ParseLevel(cfg.App.LogLevel),
		},
		JWTService,
		appHTTP.NewAuthHandler(JWTService, authService, googleService, cfg.IsProduction()),
		appHTTP.NewAttendanceHandler(attendanceSvc, JWTService, hub),
		appHTTP.NewNotificationHandler(notifService, JWTService),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server starting", "port", cfg.App.Port, "store", cfg.Database.Driver,
			"office_radius_m", cfg.Attendance.Office.RadiusMeters, "timezone", cfg.Attendance.Timezone)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

func openRepositories(ctx context.Context, cfg *config.Config) (repositories, error) {
	if cfg.Database.Driver == config.StoreDriverMemory {
		store := memory.NewStore()

		hash, err := serviceAuth.HashPassword(getEnv("DEMO_PASSWORD", "password123"))
		if err != nil {
			return repositories{}, fmt.Errorf("failed to hash demo password: %w", err)
		}
		dir, err := fixtures.DemoDirectory(hash)
		if err != nil {
			return repositories{}, err
		}
		store.Load(dir)
		slog.Warn("Using in-memory store with the demo directory, data is lost on restart")

		return repositories{
			attendance:   memory.NewAttendanceRepository(store),
			employee:     memory.NewEmployeeRepository(store),
			user:         memory.NewUserRepository(store),
			notification: memory.NewNotificationRepository(store),
			close:        func() {},
		}, nil
	}

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolConfig{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return repositories{}, fmt.Errorf("failed to connect to database: %w", err)
	}

	return repositories{
		attendance:   postgresql.NewAttendanceRepository(db),
		employee:     postgresql.NewEmployeeRepository(db),
		user:         postgresql.NewUserRepository(db),
		notification: postgresql.NewNotificationRepository(db),
		close:        db.Close,
	}, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
