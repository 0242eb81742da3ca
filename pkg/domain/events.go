package domain

import (
	"context"
	"time"
)

// AnswerEvent is emitted after an intake answer has been stored.
type AnswerEvent struct {
	SessionID      string
	QuestionNumber int
	Language       string
	Complete       bool
}

// StageEvent is emitted around each pipeline stage.
type StageEvent struct {
	JobID     string
	SessionID string
	Stage     Stage
	Attempt   int
	Duration  time.Duration
	Err       error
}

// JobEvent is emitted when a job reaches a terminal status.
type JobEvent struct {
	JobID     string
	SessionID string
	Status    JobStatus
	Duration  time.Duration
	Failure   *JobFailure
}

// LifecycleHooks defines callbacks for service observability.
// Every field is optional.
type LifecycleHooks struct {
	OnAnswer         func(context.Context, *AnswerEvent)
	OnIntakeComplete func(context.Context, *AnswerEvent)
	OnStageStart     func(context.Context, *StageEvent)
	OnStageEnd       func(context.Context, *StageEvent)
	OnJobFinish      func(context.Context, *JobEvent)
}

// MergeHooks returns hooks that call every non-nil callback of hs in order.
func MergeHooks(hs ...LifecycleHooks) LifecycleHooks {
	var out LifecycleHooks
	for _, h := range hs {
		out.OnAnswer = chain(out.OnAnswer, h.OnAnswer)
		out.OnIntakeComplete = chain(out.OnIntakeComplete, h.OnIntakeComplete)
		out.OnStageStart = chain(out.OnStageStart, h.OnStageStart)
		out.OnStageEnd = chain(out.OnStageEnd, h.OnStageEnd)
		out.OnJobFinish = chain(out.OnJobFinish, h.OnJobFinish)
	}
	return out
}

func chain[E any](a, b func(context.Context, *E)) func(context.Context, *E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e *E) {
		a(ctx, e)
		b(ctx, e)
	}
}
