package evallog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS eval_runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	source_file TEXT NOT NULL,
	ts TIMESTAMP NOT NULL,
	provider TEXT NOT NULL,
	model TEXT NOT NULL,
	predicted_type TEXT,
	ground_truth_type TEXT,
	output_json TEXT,
	success INTEGER NOT NULL,
	error_message TEXT,
	latency_ms INTEGER NOT NULL,
	ocr_used INTEGER NOT NULL,
	input_type TEXT NOT NULL,
	input_length INTEGER NOT NULL,
	notes TEXT
);
CREATE INDEX IF NOT EXISTS eval_runs_ts ON eval_runs (ts);
`

type sqliteStore struct {
	db  *sql.DB
	log *slog.Logger
}

func openSQLite(ctx context.Context, path string, logger *slog.Logger) (Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// the store is shared across requests; a single connection keeps
	// in-memory databases coherent too
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init sqlite schema: %w", err)
	}
	logger.Info("evallog.sqlite_ready", "path", path)
	return &sqliteStore{db: db, log: logger}, nil
}

func (s *sqliteStore) Append(ctx context.Context, run *Run) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO eval_runs (
			source_file, ts, provider, model, predicted_type, ground_truth_type,
			output_json, success, error_message, latency_ms, ocr_used,
			input_type, input_length, notes
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.SourceFile, run.Timestamp.UTC(), run.Provider, run.Model,
		run.PredictedType, run.GroundTruthType, run.OutputJSON, run.Success,
		run.ErrorMessage, run.LatencyMS, run.OCRUsed,
		run.InputType, run.InputLength, run.Notes,
	)
	if err != nil {
		return 0, fmt.Errorf("append eval run: %w", err)
	}
	return res.LastInsertId()
}

func (s *sqliteStore) ListRuns(ctx context.Context, filter Filter) ([]Run, error) {
	query, args := buildListQuery(filter, func(int) string { return "?" })
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list eval runs: %w", err)
	}
	defer rows.Close()
	return scanRuns(rows)
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// buildListQuery assembles the filtered SELECT; placeholder renders the n-th
// (1-based) parameter for the backend's dialect.
func buildListQuery(filter Filter, placeholder func(int) string) (string, []any) {
	var b strings.Builder
	b.WriteString(`SELECT id, source_file, ts, provider, model,
		COALESCE(predicted_type, ''), COALESCE(ground_truth_type, ''),
		COALESCE(output_json, ''), success, COALESCE(error_message, ''),
		latency_ms, ocr_used, input_type, input_length, COALESCE(notes, '')
		FROM eval_runs`)

	var conds []string
	var args []any
	n := 0
	arg := func(v any) string {
		n++
		args = append(args, v)
		return placeholder(n)
	}
	if filter.Success != nil {
		conds = append(conds, "success = "+arg(*filter.Success))
	}
	if filter.From != nil {
		conds = append(conds, "ts >= "+arg(filter.From.UTC()))
	}
	if filter.To != nil {
		conds = append(conds, "ts <= "+arg(filter.To.UTC()))
	}
	if len(conds) > 0 {
		b.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}
	b.WriteString(" ORDER BY id DESC")
	if filter.Limit > 0 {
		b.WriteString(" LIMIT " + arg(filter.Limit))
	}
	return b.String(), args
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanRuns(rows rowScanner) ([]Run, error) {
	var out []Run
	for rows.Next() {
		var r Run
		var ts time.Time
		if err := rows.Scan(
			&r.ID, &r.SourceFile, &ts, &r.Provider, &r.Model,
			&r.PredictedType, &r.GroundTruthType, &r.OutputJSON, &r.Success,
			&r.ErrorMessage, &r.LatencyMS, &r.OCRUsed,
			&r.InputType, &r.InputLength, &r.Notes,
		); err != nil {
			return nil, fmt.Errorf("scan eval run: %w", err)
		}
		r.Timestamp = ts.UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}
