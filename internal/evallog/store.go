package evallog

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// Store appends and queries evaluation runs.
type Store interface {
	Append(ctx context.Context, run *Run) (int64, error)
	ListRuns(ctx context.Context, filter Filter) ([]Run, error)
	Close() error
}

// Filter narrows ListRuns. Zero value lists everything, newest first.
type Filter struct {
	Success *bool
	From    *time.Time
	To      *time.Time
	Limit   int
}

// Open selects the backend from the DSN: postgres:// DSNs use pgx, anything
// else is treated as a SQLite path (":memory:" supported).
func Open(ctx context.Context, dsn string, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return openPostgres(ctx, dsn, logger)
	}
	return openSQLite(ctx, dsn, logger)
}
