package main

// Apply the workspace schema:
//   go run ./cmd/migrate                 # dialect from KV_BACKEND
//   go run ./cmd/migrate -dialect sqlite

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"

	"career-backend/internal/shared/config"
	"career-backend/internal/shared/storage/db"
	"career-backend/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	dialect := flag.String("dialect", "", "postgres or sqlite; defaults to KV_BACKEND")
	flag.Parse()

	d := db.Dialect(*dialect)
	if d == "" {
		d = db.Dialect(cfg.KVBackend)
	}
	if err := migrate(context.Background(), cfg, d); err != nil {
		telemetry.Error("migrate.failed", map[string]any{"dialect": string(d), "err": err})
		telemetry.Sync()
		os.Exit(1)
	}
}

func migrate(ctx context.Context, cfg config.Config, d db.Dialect) error {
	opts := db.OptionsFromEnv(db.DefaultMigrateOptions())

	var (
		sqlDB *sql.DB
		err   error
	)
	switch d {
	case db.DialectPostgres:
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, opts)
	case db.DialectSQLite:
		sqlDB, err = db.ConnectSQLite(ctx, cfg.SQLitePath, opts)
	default:
		telemetry.Info("migrate.skipped", map[string]any{"kv_backend": string(d)})
		return nil
	}
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer sqlDB.Close()

	if err := db.RunMigrations(ctx, sqlDB, d); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	telemetry.Info("migrate.applied", map[string]any{"dialect": string(d)})
	return nil
}
