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

	"github.com/cmlabs-hris/payroll-service/internal/config"
	appHTTP "github.com/cmlabs-hris/payroll-service/internal/handler/http"
	"github.com/cmlabs-hris/payroll-service/internal/pkg/cron"
	"github.com/cmlabs-hris/payroll-service/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-service/internal/repository/postgresql"
	payrollService "github.com/cmlabs-hris/payroll-service/internal/service/payroll"
)

const (
	appName    = "payroll-service"
	appVersion = "v1.0.0"
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
		return fmt.Errorf("load config: %w", err)
	}

	level := appHTTP.ParseLevel(cfg.App.LogLevel)
	logger := appHTTP.NewLogger(os.Stdout, level, appName, appVersion, cfg.App.Env)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if cfg.App.RunMigrations {
		if err := db.Migrate(ctx, cfg.App.MigrationsDir); err != nil {
			return err
		}
	}

	transactor := postgresql.NewTransactor(db)
	periodLocker := postgresql.NewPeriodLocker(db)
	periodRepo := postgresql.NewPeriodRepository(db)
	payrollRepo := postgresql.NewPayrollRepository(db)
	conceptRepo := postgresql.NewConceptRepository(db)
	benefitRepo := postgresql.NewBenefitRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	leaveRequestRepo := postgresql.NewLeaveRequestRepository(db)

	payrollSvc, err := payrollService.NewPayrollService(
		cfg.Payroll,
		transactor,
		periodLocker,
		periodRepo,
		payrollRepo,
		conceptRepo,
		benefitRepo,
		employeeRepo,
		attendanceRepo,
		leaveRequestRepo,
	)
	if err != nil {
		return err
	}

	scheduler := cron.NewScheduler()
	cron.NewPayrollJobs(payrollSvc, cfg.Scheduler.AutoProcessInterval).RegisterJobs(scheduler)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	payrollHandler := appHTTP.NewPayrollHandler(payrollSvc)
	router := appHTTP.NewRouter(appHTTP.RouterOptions{
		Logger:         logger,
		AllowedOrigins: cfg.App.CORSAllowedOrigins,
		LogLevel:       level,
	}, payrollHandler)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
