package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/Spok95/sekretariat/internal/migrations"
)

func init() {
	goose.SetBaseFS(migrations.FS)
}

// Migrate runs goose with the embedded schema. command is up, down or status.
func Migrate(ctx context.Context, database *sql.DB, command string) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	switch command {
	case "", "up":
		return goose.UpContext(ctx, database, ".")
	case "down":
		return goose.DownContext(ctx, database, ".")
	case "status":
		return goose.StatusContext(ctx, database, ".")
	default:
		return fmt.Errorf("unknown migrate command %q", command)
	}
}
