package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/config"
	"github.com/cmlabs-hris/hris-attendance-go/internal/fixtures"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/logger"
	"github.com/cmlabs-hris/hris-attendance-go/internal/repository/postgresql"
	serviceAuth "github.com/cmlabs-hris/hris-attendance-go/internal/service/auth"
	"github.com/cmlabs-hris/hris-attendance-go/migrations"
)

func main() {
	seed := flag.Bool("seed", false, "insert the demo directory after migrating")
	password := flag.String("password", "password123", "password of every seeded user")
	flag.Parse()

	if err := run(*seed, *password); err != nil {
		slog.Error("Migration failed", "error", err)
		os.Exit(1)
	}
}

func run(seed bool, password string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	slog.SetDefault(logger.New(os.Stdout, logger.Options{
		App:     "hris-attendance-migrate",
		Version: cfg.App.Version,
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
	}))

	if cfg.Database.Driver != config.StoreDriverPostgres {
		return fmt.Errorf("migrations need STORE_DRIVER=%s, got %q", config.StoreDriverPostgres, cfg.Database.Driver)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolConfig{MaxConns: 2, MinConns: 1})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := postgresql.ApplyMigrations(ctx, db, migrations.FS); err != nil {
		return err
	}

	if !seed {
		return nil
	}

	hash, err := serviceAuth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	dir, err := fixtures.DemoDirectory(hash)
	if err != nil {
		return err
	}
	return postgresql.SeedDirectory(ctx, db, dir)
}
