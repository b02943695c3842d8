package persistence

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// TicketChangeChannel is the NOTIFY channel the tickets trigger publishes on
// and the change listener subscribes to.
const TicketChangeChannel = "ticket_changes"

//go:embed migrations/*.sql
var migrationFiles embed.FS

var migrationVars = strings.NewReplacer("{{ticket_change_channel}}", TicketChangeChannel)

// MigrationNames returns the embedded migration files in apply order.
func MigrationNames() ([]string, error) {
	entries, err := fs.ReadDir(migrationFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

// MigrationSQL returns the body of one embedded migration with its
// placeholders filled in.
func MigrationSQL(name string) (string, error) {
	content, err := migrationFiles.ReadFile("migrations/" + name)
	if err != nil {
		return "", fmt.Errorf("read migration %s: %w", name, err)
	}
	return migrationVars.Replace(string(content)), nil
}

// RunMigrations executes the embedded SQL migrations. Every file is written to
// be re-applied safely, so they run on each boot.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	if pool == nil {
		logger.Warn("no postgres pool available; skipping migrations")
		return nil
	}

	names, err := MigrationNames()
	if err != nil {
		return err
	}

	for _, name := range names {
		sql, err := MigrationSQL(name)
		if err != nil {
			return err
		}

		logger.Info("applying migration", zap.String("file", name))
		if _, err := pool.Exec(ctx, sql); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
	}

	logger.Info("migrations applied", zap.Int("count", len(names)))
	return nil
}
