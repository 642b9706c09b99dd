// Package evallog persists one immutable row per extraction attempt. The
// store is append-only and shared by concurrent requests; nothing mutates or
// deletes a row once written.
package evallog

import "time"

// Run describes a single extraction attempt: inputs, outputs, outcome.
type Run struct {
	ID              int64
	SourceFile      string
	Timestamp       time.Time
	Provider        string
	Model           string
	PredictedType   string
	GroundTruthType string
	OutputJSON      string
	Success         bool
	ErrorMessage    string
	LatencyMS       int64
	OCRUsed         bool
	InputType       string // "PDF" | "TEXT" | "IMAGE"
	InputLength     int
	Notes           string
}
