package domain

import "time"

// Stage names a state of the pipeline state machine.
type Stage string

const (
	StagePending     Stage = "pending"
	StageExtracting  Stage = "extracting"
	StageClassifying Stage = "classifying"
	StageRouting     Stage = "routing"
	StageDone        Stage = "done"
	StageFailed      Stage = "failed"
)

// Label returns the stage name used in client messages.
func (s Stage) Label() string {
	switch s {
	case StageExtracting:
		return "extraction"
	case StageClassifying:
		return "classification"
	case StageRouting:
		return "routing"
	default:
		return string(s)
	}
}

// JobStatus is the externally visible state of a job.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// RetryHint tells a client what to do after a failed job.
type RetryHint string

const (
	// HintRetryJob means the same completed session can be submitted again.
	HintRetryJob RetryHint = "retry_job"
	// HintRestartSession means the answers could not be processed and the
	// intake should be repeated.
	HintRestartSession RetryHint = "restart_session"
)

// JobFailure is the client-safe description of a failed job.
type JobFailure struct {
	Stage   Stage       `json:"stage"`
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
	Hint    RetryHint   `json:"hint"`
}

// Job tracks one pipeline invocation.
type Job struct {
	ID        string          `json:"id"`
	SessionID string          `json:"session_id"`
	Status    JobStatus       `json:"status"`
	Stage     Stage           `json:"stage"`
	Result    *PipelineResult `json:"result,omitempty"`
	Failure   *JobFailure     `json:"failure,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewJob creates a pending job for the given session.
func NewJob(id, sessionID string, now time.Time) *Job {
	return &Job{
		ID:        id,
		SessionID: sessionID,
		Status:    JobPending,
		Stage:     StagePending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Final reports whether the job reached a terminal status.
func (j *Job) Final() bool {
	return j.Status == JobCompleted || j.Status == JobFailed
}

// Complete marks the job as completed with its result.
func (j *Job) Complete(result *PipelineResult, now time.Time) {
	j.Status = JobCompleted
	j.Stage = StageDone
	j.Result = result
	j.Failure = nil
	j.UpdatedAt = now
}

// Fail marks the job as failed. The message is derived from the error kind
// so upstream bodies and model output never reach the client.
func (j *Job) Fail(err *StageError, now time.Time) {
	j.Status = JobFailed
	j.Stage = StageFailed
	j.Result = nil
	j.Failure = &JobFailure{
		Stage:   err.Stage,
		Kind:    err.Kind,
		Message: failureMessage(err),
		Hint:    failureHint(err),
	}
	j.UpdatedAt = now
}

func failureMessage(err *StageError) string {
	switch err.Kind {
	case FailureParse:
		return "the " + err.Stage.Label() + " stage returned output that did not match the expected format"
	case FailureUpstream:
		return "the reasoning service was unavailable during the " + err.Stage.Label() + " stage"
	case FailureTimeout:
		return "the " + err.Stage.Label() + " stage timed out"
	default:
		return "the " + err.Stage.Label() + " stage failed"
	}
}

// Unusable answers can only be fixed by a new intake; everything else may
// succeed on a second run.
func failureHint(err *StageError) RetryHint {
	if err.Kind == FailureParse && err.Stage == StageExtracting {
		return HintRestartSession
	}
	return HintRetryJob
}

// Clone returns a copy of the job record. The result is shared because it
// is immutable once assigned.
func (j *Job) Clone() *Job {
	c := *j
	if j.Failure != nil {
		f := *j.Failure
		c.Failure = &f
	}
	return &c
}
