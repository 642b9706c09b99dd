package llm

import (
	"context"
	"encoding/json"

	"github.com/tripdocs/extractor/constants"
)

// Completer is the single operation the orchestrator needs from a provider.
// The concrete provider (cloud or local) is chosen once at configuration
// time, never per request.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
	Name() string
	Model() string
}

// ExtractRequest carries normalized source text into one provider call. Owned
// solely by the orchestrator for the duration of that call.
type ExtractRequest struct {
	Text       string
	SourceFile string
}

// CandidateRecord is the tagged union decoded from model output. Fields hold
// the schema keys for the record's kind; after completion no required key is
// absent, only null. The completer and the post-processing heuristics mutate
// it in place.
type CandidateRecord struct {
	Kind   constants.RecordKind
	Fields map[string]any
}

// StringField returns the field as a non-empty string, or ("", false) when it
// is null, missing, or not a string.
func (r *CandidateRecord) StringField(key string) (string, bool) {
	v, ok := r.Fields[key]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// payload is the full wire shape including the "type" tag.
func (r *CandidateRecord) payload() map[string]any {
	m := make(map[string]any, len(r.Fields)+1)
	m["type"] = string(r.Kind)
	for k, v := range r.Fields {
		m[k] = v
	}
	return m
}

// JSON serializes the record with its tag for callers and the eval log.
func (r *CandidateRecord) JSON() ([]byte, error) {
	return json.Marshal(r.payload())
}

// MarshalJSON keeps the tag on the wire when a record is embedded in a
// result payload.
func (r *CandidateRecord) MarshalJSON() ([]byte, error) {
	return r.JSON()
}
