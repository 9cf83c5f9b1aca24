package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sahayak-ai/agent-orchestrator/pkg/telemetry"
)

// HistoryArchive persists dispatch history entries beyond the in-memory ring.
// It implements telemetry.Archiver.
type HistoryArchive struct {
	pool *pgxpool.Pool
}

// NewHistoryArchive creates a HistoryArchive over an existing pool.
func NewHistoryArchive(pool *pgxpool.Pool) *HistoryArchive {
	return &HistoryArchive{pool: pool}
}

// ArchiveEntry inserts one history entry. The caller treats failures as
// non-fatal, so no retry logic lives here.
func (a *HistoryArchive) ArchiveEntry(ctx context.Context, e telemetry.Entry) error {
	_, err := a.pool.Exec(ctx,
		`INSERT INTO dispatch_history (dispatched_at, agent_type, request, confidence, success, execution_time, error)
		 VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''))`,
		e.Timestamp, e.AgentType, e.Request, e.Confidence, e.Success, e.ExecutionTime, e.Error)
	if err != nil {
		return fmt.Errorf("insert dispatch_history: %w", err)
	}
	return nil
}

// RecentEntries reads back the newest entries from the archive, oldest first.
func (a *HistoryArchive) RecentEntries(ctx context.Context, limit int) ([]telemetry.Entry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := a.pool.Query(ctx,
		`SELECT dispatched_at, agent_type, request, confidence, success, execution_time, COALESCE(error, '')
		 FROM dispatch_history ORDER BY dispatched_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query dispatch_history: %w", err)
	}
	defer rows.Close()

	var entries []telemetry.Entry
	for rows.Next() {
		var e telemetry.Entry
		if err := rows.Scan(&e.Timestamp, &e.AgentType, &e.Request, &e.Confidence, &e.Success, &e.ExecutionTime, &e.Error); err != nil {
			return nil, fmt.Errorf("scan dispatch_history row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse to chronological order.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}
