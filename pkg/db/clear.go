package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

const clearLogPrefix = "db:clear"

// ClearHistory truncates the dispatch history archive. Schema is preserved;
// only data is removed. RESTART IDENTITY resets sequences.
func ClearHistory(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info(fmt.Sprintf("%s - Clearing dispatch history", clearLogPrefix))

	_, err := pool.Exec(ctx, `TRUNCATE TABLE dispatch_history RESTART IDENTITY`)
	if err != nil {
		return fmt.Errorf("%s - truncate failed: %w", clearLogPrefix, err)
	}

	slog.Info(fmt.Sprintf("%s - Dispatch history cleared", clearLogPrefix))
	return nil
}
