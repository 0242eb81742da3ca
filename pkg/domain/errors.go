package domain

import (
	"context"
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrJobNotFound is returned when a job ID cannot be found in the result store.
var ErrJobNotFound = errors.New("job not found")

// ErrInvalidTransition is the parent of every intake transition that is not allowed.
var ErrInvalidTransition = errors.New("invalid transition")

// ErrSessionComplete is returned when an answer is submitted to a completed session.
var ErrSessionComplete = fmt.Errorf("%w: session already complete", ErrInvalidTransition)

// ErrSessionNotComplete is returned when the pipeline is requested before the intake finished.
var ErrSessionNotComplete = errors.New("session not complete")

// ErrInvalidLanguage is returned when the language selection is not a supported code.
var ErrInvalidLanguage = errors.New("invalid language")

// ErrInvalidInput is the parent of answer texts rejected before they reach a session.
var ErrInvalidInput = errors.New("invalid input")

// ErrJobFinalized is returned when a store is asked to overwrite a completed or failed job.
var ErrJobFinalized = errors.New("job already finalized")

// ErrStageParse is matched by stage errors whose model output did not fit the expected shape.
var ErrStageParse = errors.New("stage output could not be parsed")

// ErrUpstreamUnavailable marks failures of the reasoning service or reference store
// that are worth retrying.
var ErrUpstreamUnavailable = errors.New("upstream unavailable")

// FailureKind classifies why a stage failed.
type FailureKind string

const (
	FailureParse    FailureKind = "parse"
	FailureUpstream FailureKind = "upstream"
	FailureTimeout  FailureKind = "timeout"
	FailureInternal FailureKind = "internal"
)

// StageError reports the failure of a single pipeline stage.
// Raw holds the offending model output for logging; it is never sent to clients.
type StageError struct {
	Stage Stage
	Kind  FailureKind
	Raw   string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed (%s): %v", e.Stage, e.Kind, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Is lets errors.Is match a StageError against the sentinel of its kind.
func (e *StageError) Is(target error) bool {
	switch target {
	case ErrStageParse:
		return e.Kind == FailureParse
	case ErrUpstreamUnavailable:
		return e.Kind == FailureUpstream
	case context.DeadlineExceeded:
		return e.Kind == FailureTimeout
	}
	return false
}

// NewParseError wraps a decoding or validation failure of a stage output.
func NewParseError(stage Stage, raw string, err error) *StageError {
	return &StageError{Stage: stage, Kind: FailureParse, Raw: raw, Err: err}
}

// ClassifyStageError converts an arbitrary stage failure into a StageError.
func ClassifyStageError(stage Stage, err error) *StageError {
	var se *StageError
	if errors.As(err, &se) {
		return se
	}
	kind := FailureInternal
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = FailureTimeout
	case errors.Is(err, ErrUpstreamUnavailable):
		kind = FailureUpstream
	case errors.Is(err, ErrStageParse):
		kind = FailureParse
	}
	return &StageError{Stage: stage, Kind: kind, Err: err}
}
