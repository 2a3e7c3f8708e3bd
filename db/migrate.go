package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*/*.sql
var migrations embed.FS

// Migrate applies the embedded migrations of one service
// ("identity", "catalogue", "media", "notification").
func Migrate(ctx context.Context, conn *sql.DB, service string) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	if err := goose.UpContext(ctx, conn, "migrations/"+service); err != nil {
		return fmt.Errorf("migrate %s: %w", service, err)
	}
	return nil
}
