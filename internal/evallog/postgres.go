package evallog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS eval_runs (
	id BIGSERIAL PRIMARY KEY,
	source_file TEXT NOT NULL,
	ts TIMESTAMPTZ NOT NULL,
	provider TEXT NOT NULL,
	model TEXT NOT NULL,
	predicted_type TEXT,
	ground_truth_type TEXT,
	output_json TEXT,
	success BOOLEAN NOT NULL,
	error_message TEXT,
	latency_ms BIGINT NOT NULL,
	ocr_used BOOLEAN NOT NULL,
	input_type TEXT NOT NULL,
	input_length BIGINT NOT NULL,
	notes TEXT
);
CREATE INDEX IF NOT EXISTS eval_runs_ts ON eval_runs (ts);
`

type postgresStore struct {
	db  *sql.DB
	log *slog.Logger
}

func openPostgres(ctx context.Context, dsn string, logger *slog.Logger) (Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init postgres schema: %w", err)
	}
	logger.Info("evallog.postgres_ready")
	return &postgresStore{db: db, log: logger}, nil
}

func (s *postgresStore) Append(ctx context.Context, run *Run) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO eval_runs (
			source_file, ts, provider, model, predicted_type, ground_truth_type,
			output_json, success, error_message, latency_ms, ocr_used,
			input_type, input_length, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id`,
		run.SourceFile, run.Timestamp.UTC(), run.Provider, run.Model,
		run.PredictedType, run.GroundTruthType, run.OutputJSON, run.Success,
		run.ErrorMessage, run.LatencyMS, run.OCRUsed,
		run.InputType, run.InputLength, run.Notes,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("append eval run: %w", err)
	}
	return id, nil
}

func (s *postgresStore) ListRuns(ctx context.Context, filter Filter) ([]Run, error) {
	query, args := buildListQuery(filter, func(n int) string { return "$" + strconv.Itoa(n) })
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list eval runs: %w", err)
	}
	defer rows.Close()
	return scanRuns(rows)
}

func (s *postgresStore) Close() error {
	return s.db.Close()
}
