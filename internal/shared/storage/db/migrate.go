package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationFiles embed.FS

// RunMigrations applies embedded SQL migrations for the dialect via goose.
// If database is nil, it's a no-op.
func RunMigrations(ctx context.Context, database *sql.DB, dialect Dialect) error {
	if database == nil {
		return nil
	}
	var dir, gooseDialect string
	switch dialect {
	case DialectPostgres:
		dir, gooseDialect = "migrations/postgres", "postgres"
	case DialectSQLite:
		dir, gooseDialect = "migrations/sqlite", "sqlite3"
	default:
		return fmt.Errorf("unsupported dialect %q", dialect)
	}
	goose.SetBaseFS(migrationFiles)
	if err := goose.SetDialect(gooseDialect); err != nil {
		return err
	}
	return goose.UpContext(ctx, database, dir)
}
