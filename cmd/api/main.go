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

	"golang.org/x/sync/errgroup"

	"github.com/cmlabs-hris/attendance-engine/internal/config"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/overtime"
	appHTTP "github.com/cmlabs-hris/attendance-engine/internal/handler/http"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/cron"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/gateway"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/i18n"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-engine/internal/repository"
	"github.com/cmlabs-hris/attendance-engine/internal/repository/postgresql"
	"github.com/cmlabs-hris/attendance-engine/internal/repository/sqlite"
	"github.com/cmlabs-hris/attendance-engine/internal/service"
)

const (
	shutdownTimeout = 10 * time.Second
	// tokenExpiration applies to tokens minted locally; production tokens come
	// from the identity provider.
	tokenExpiration = 12 * time.Hour
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel()})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	lateThreshold, err := cfg.LateThreshold()
	if err != nil {
		return err
	}
	translator, err := i18n.New(cfg.App.Locale)
	if err != nil {
		return fmt.Errorf("failed to load locales: %w", err)
	}

	repos, closeDB, err := openRepositories(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	services := service.New(repos, service.Options{
		Location:       loc,
		Translator:     translator,
		OvertimePolicy: overtime.Policy{ClampNegative: cfg.Policy.OvertimeClampNegative},
		LateThreshold:  lateThreshold,
		DeviceClient:   gateway.NewClient(cfg.Device.HTTPTimeout, loc),
	})

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, tokenExpiration)
	router := appHTTP.NewRouter(JWTService, services.RBAC, appHTTP.RouterConfig{
		AllowedOrigins: cfg.App.CORSAllowedOrigins,
		Env:            cfg.App.Env,
		LogLevel:       cfg.LogLevel(),
	}, appHTTP.Handlers{
		Attendance: appHTTP.NewAttendanceHandler(services.Attendance, loc),
		Employee:   appHTTP.NewEmployeeHandler(services.Employee),
		Shift:      appHTTP.NewShiftHandler(services.Shift),
		Status:     appHTTP.NewStatusHandler(services.Status),
		Overtime:   appHTTP.NewOvertimeHandler(services.Overtime),
		Report:     appHTTP.NewReportHandler(services.Report),
		RBAC:       appHTTP.NewRBACHandler(services.RBAC),
		Device:     appHTTP.NewDeviceHandler(services.Device),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Server running", "addr", server.Addr, "env", cfg.App.Env, "driver", cfg.Database.Driver, "timezone", loc.String())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if cfg.Device.PollEnabled {
		scheduler := cron.NewScheduler()
		cron.NewDeviceJobs(services.Device).RegisterJobs(scheduler, cfg.Device.PollInterval)
		g.Go(func() error {
			return scheduler.Run(gCtx)
		})
	}

	return g.Wait()
}

// openRepositories opens the configured store, applies its migrations and
// returns the repository set with a close function.
func openRepositories(ctx context.Context, cfg *config.Config) (repository.Set, func(), error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		db, err := postgresql.Open(ctx, cfg.DatabaseURL(), database.PoolOptions{
			MaxConns:        cfg.Database.MaxConns,
			MinConns:        cfg.Database.MinConns,
			MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		})
		if err != nil {
			return repository.Set{}, nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		return postgresql.NewRepositories(db), db.Close, nil
	default:
		db, err := sqlite.Open(ctx, cfg.Database.SQLitePath)
		if err != nil {
			return repository.Set{}, nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		return sqlite.NewRepositories(db), func() { _ = db.Close() }, nil
	}
}
