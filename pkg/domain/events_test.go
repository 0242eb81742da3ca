package domain_test

import (
	"context"
	"testing"

	"github.com/aretw0/triage/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestMergeHooks(t *testing.T) {
	var calls []string
	a := domain.LifecycleHooks{
		OnAnswer: func(context.Context, *domain.AnswerEvent) { calls = append(calls, "a.answer") },
	}
	b := domain.LifecycleHooks{
		OnAnswer:    func(context.Context, *domain.AnswerEvent) { calls = append(calls, "b.answer") },
		OnJobFinish: func(context.Context, *domain.JobEvent) { calls = append(calls, "b.job") },
	}

	merged := domain.MergeHooks(a, domain.LifecycleHooks{}, b)
	merged.OnAnswer(context.Background(), &domain.AnswerEvent{})
	merged.OnJobFinish(context.Background(), &domain.JobEvent{})

	assert.Equal(t, []string{"a.answer", "b.answer", "b.job"}, calls)
	assert.Nil(t, merged.OnStageStart)
}
