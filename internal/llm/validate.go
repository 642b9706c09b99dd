package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/tripdocs/extractor/constants"
	"github.com/tripdocs/extractor/internal/common"
)

// NewCandidate builds a CandidateRecord from decoded model output. The
// required field set is determined solely by the "type" tag; any other tag
// fails. The first completion pass runs immediately.
func NewCandidate(m map[string]any) (*CandidateRecord, error) {
	v, ok := m["type"]
	if !ok {
		return nil, common.NewSchemaError(`model output has no "type" tag`, nil)
	}
	tag, _ := v.(string)
	if !constants.IsRecordKind(tag) {
		return nil, common.NewSchemaError(fmt.Sprintf("unrecognized record type %q", v), nil)
	}

	fields := make(map[string]any, len(m))
	for k, val := range m {
		if k != "type" {
			fields[k] = val
		}
	}
	rec := &CandidateRecord{Kind: constants.RecordKind(tag), Fields: fields}
	rec.Complete()
	return rec, nil
}

// Complete inserts null for any missing required key and prunes keys outside
// the record's schema. Safe to run repeatedly; post-processing may drop keys,
// so it runs again afterwards.
func (r *CandidateRecord) Complete() {
	req := RequiredKeys(r.Kind)
	allowed := make(map[string]struct{}, len(req))
	for _, k := range req {
		allowed[k] = struct{}{}
	}
	for k := range r.Fields {
		if _, ok := allowed[k]; !ok {
			delete(r.Fields, k)
		}
	}
	for _, k := range req {
		if _, ok := r.Fields[k]; !ok {
			r.Fields[k] = nil
		}
	}
}

// Validate re-checks that every required key is present (a field may be null,
// never missing) and that the record matches its kind's schema. Any violation
// is fatal for the attempt.
func (r *CandidateRecord) Validate() error {
	for _, k := range RequiredKeys(r.Kind) {
		if _, ok := r.Fields[k]; !ok {
			return common.NewSchemaError(fmt.Sprintf("required field %q missing after completion", k), nil)
		}
	}
	if err := validateAgainstSchema(schemaFor(r.Kind), r.payload()); err != nil {
		return common.NewSchemaError(fmt.Sprintf("%s record does not match schema", r.Kind), err)
	}
	return nil
}

// validateAgainstSchema validates value against schemaMap.
func validateAgainstSchema(schemaMap map[string]any, value any) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	if err := schema.Validate(value); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
