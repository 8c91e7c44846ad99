package persistence

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io"
	"io/fs"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

func MigrationsFS() (fs.FS, error) {
	return fs.Sub(embeddedMigrations, "migrations")
}

// OpenMigrationDB opens a database/sql handle over the pgx driver for goose.
func OpenMigrationDB(dsn string) (*sql.DB, error) {
	return sql.Open("pgx", dsn)
}

// Migrate applies command ("up", "down" or "status") to the employees schema
// and reports each migration touched on out.
func Migrate(ctx context.Context, db *sql.DB, command string, out io.Writer) error {
	fsys, err := MigrationsFS()
	if err != nil {
		return err
	}
	provider, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		return err
	}

	switch command {
	case "", "up":
		results, err := provider.Up(ctx)
		for _, r := range results {
			_, _ = fmt.Fprintf(out, "up %d %s (%s)\n", r.Source.Version, r.Source.Path, r.Duration)
		}
		return err
	case "down":
		r, err := provider.Down(ctx)
		if r != nil {
			_, _ = fmt.Fprintf(out, "down %d %s (%s)\n", r.Source.Version, r.Source.Path, r.Duration)
		}
		return err
	case "status":
		statuses, err := provider.Status(ctx)
		if err != nil {
			return err
		}
		for _, st := range statuses {
			_, _ = fmt.Fprintf(out, "%d %s %s\n", st.Source.Version, st.Source.Path, st.State)
		}
		return nil
	default:
		return fmt.Errorf("unknown migrate command %q (expected up|down|status)", command)
	}
}
