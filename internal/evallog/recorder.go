package evallog

import (
	"context"
	"log/slog"
	"time"
)

// Recorder wraps a Store so that pipeline results are logged on a
// best-effort basis. An evaluation row failing to persist must never
// fail the extraction itself.
type Recorder struct {
	store Store
	log   *slog.Logger
}

func NewRecorder(store Store, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{store: store, log: logger}
}

// Record persists the run, filling in the timestamp and assigned id.
// Errors are logged and swallowed.
func (r *Recorder) Record(ctx context.Context, run *Run) {
	if r == nil || r.store == nil {
		return
	}
	if run.Timestamp.IsZero() {
		run.Timestamp = time.Now().UTC()
	}
	id, err := r.store.Append(ctx, run)
	if err != nil {
		r.log.Warn("evallog.append_failed", "source_file", run.SourceFile, "error", err)
		return
	}
	run.ID = id
}
