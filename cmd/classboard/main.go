package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/classboard/classboard/config"
	"github.com/classboard/classboard/internal/bootstrap"
	"github.com/classboard/classboard/internal/devseed"
)

func main() {
	ctx := context.Background()
	logger := bootstrap.InitLogger()
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}

	logStartupInfo(ctx, logger, &cfg)

	db, err := bootstrap.ConnectDB(bootstrap.DatabaseConfig{
		DBConfig: cfg.Postgres,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close database failed", "error", cerr)
		}
	}()

	if cfg.Postgres.RunMigrationsOnStart {
		if err = bootstrap.RunMigrations(ctx, db, logger); err != nil {
			return err
		}
	} else {
		logger.InfoContext(ctx, "skipping database migrations on startup", "reason", "disabled via config")
	}

	if err = seedIfEnabled(ctx, &cfg, db, logger); err != nil {
		return err
	}

	services := bootstrap.BuildServices(db, cfg, logger)

	server, err := bootstrap.StartHTTPServer(&bootstrap.HTTPServerConfig{
		Config:   &cfg,
		Services: services,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("start http server: %w", err)
	}

	// Block until interrupted, then drain in-flight requests.
	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()

	return bootstrap.ShutdownHTTPServer(context.Background(), server, logger)
}

func seedIfEnabled(ctx context.Context, cfg *config.AppConfig, db *sql.DB, logger *slog.Logger) error {
	if !cfg.IsDev || !cfg.SeedOnStart {
		return nil
	}
	logger.InfoContext(ctx, "seeding development data")
	if err := devseed.Run(ctx, devseed.NewServices(db), logger); err != nil {
		return fmt.Errorf("seed data: %w", err)
	}
	return nil
}

func logStartupInfo(ctx context.Context, logger *slog.Logger, cfg *config.AppConfig) {
	logger.InfoContext(ctx, "starting classboard",
		"addr", cfg.HTTP.Addr,
		"db_host", cfg.Postgres.Host,
		"db_port", cfg.Postgres.Port,
		"db_name", cfg.Postgres.Name,
		"dev", cfg.IsDev)
}
