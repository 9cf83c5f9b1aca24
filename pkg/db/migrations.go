package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

const migrationsLogPrefix = "db:migrations"

// migrations are applied in order. Forward-only; there are no down migrations.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS dispatch_history (
		id BIGSERIAL PRIMARY KEY,
		dispatched_at TIMESTAMPTZ NOT NULL,
		agent_type TEXT NOT NULL,
		request TEXT NOT NULL,
		confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
		success BOOLEAN NOT NULL,
		execution_time DOUBLE PRECISION NOT NULL,
		error TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_dispatch_history_agent_type
		ON dispatch_history (agent_type, dispatched_at DESC)`,
}

// RunMigrations applies the schema migrations in order.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info(fmt.Sprintf("%s - Running %d migrations", migrationsLogPrefix, len(migrations)))

	for _, sql := range migrations {
		if _, err := pool.Exec(ctx, sql); err != nil {
			return fmt.Errorf("%s - migration failed: %w", migrationsLogPrefix, err)
		}
	}

	slog.Info(fmt.Sprintf("%s - Migrations complete", migrationsLogPrefix))
	return nil
}

// MigrationStatus reports whether migrations have been applied (by checking
// for the dispatch_history table).
func MigrationStatus(ctx context.Context, pool *pgxpool.Pool) error {
	var exists bool
	err := pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_schema = 'public' AND table_name = 'dispatch_history')`).Scan(&exists)
	if err != nil {
		return fmt.Errorf("%s - failed to check schema: %w", migrationsLogPrefix, err)
	}

	if exists {
		fmt.Printf("Migration status: applied (schema present, %d migrations)\n", len(migrations))
	} else {
		fmt.Printf("Migration status: not applied (run 'orchestrator migrate up'). %d migrations pending\n", len(migrations))
	}
	return nil
}
