package common

import (
	"errors"
	"fmt"
)

// Kind buckets every pipeline failure into one of the four reportable
// categories. The caller sees a single message; the kind drives logging and
// tests.
type Kind string

const (
	KindInput    Kind = "INPUT"
	KindUpstream Kind = "UPSTREAM"
	KindDecode   Kind = "DECODE"
	KindSchema   Kind = "SCHEMA"
)

// PipelineError carries the failure category alongside a human-readable
// message and the underlying cause.
type PipelineError struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *PipelineError) Error() string {
	if e.Cause != nil && e.Cause.Error() != e.Message {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// NewInputError marks a user-correctable problem with the submitted document.
func NewInputError(message string, cause error) *PipelineError {
	return &PipelineError{Kind: KindInput, Message: message, Cause: cause}
}

// NewUpstreamError marks a provider transport or provider-reported failure.
// The message carries the provider's wording verbatim; the caller may retry.
func NewUpstreamError(message string, cause error) *PipelineError {
	return &PipelineError{Kind: KindUpstream, Message: message, Cause: cause}
}

// NewDecodeError marks model output with no parseable JSON object. Fatal for
// the attempt.
func NewDecodeError(message string, cause error) *PipelineError {
	return &PipelineError{Kind: KindDecode, Message: message, Cause: cause}
}

// NewSchemaError marks an unrecognized record tag or a required key still
// missing after completion. Fatal for the attempt.
func NewSchemaError(message string, cause error) *PipelineError {
	return &PipelineError{Kind: KindSchema, Message: message, Cause: cause}
}

// KindOf returns the category of err, or "" when err is not a PipelineError.
func KindOf(err error) Kind {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}
