package metrics_test

import (
	"context"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aretw0/triage/internal/metrics"
	"github.com/aretw0/triage/pkg/domain"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHooks_FeedCollectors(t *testing.T) {
	rec := metrics.New()
	hooks := rec.Hooks()
	ctx := context.Background()

	hooks.OnAnswer(ctx, &domain.AnswerEvent{SessionID: "s", QuestionNumber: 1, Language: "en"})
	hooks.OnAnswer(ctx, &domain.AnswerEvent{SessionID: "s", QuestionNumber: 2, Language: "en"})
	hooks.OnIntakeComplete(ctx, &domain.AnswerEvent{SessionID: "s", Language: "en", Complete: true})
	hooks.OnStageEnd(ctx, &domain.StageEvent{Stage: domain.StageExtracting, Duration: 2 * time.Second})
	hooks.OnStageEnd(ctx, &domain.StageEvent{
		Stage: domain.StageClassifying,
		Err:   domain.NewParseError(domain.StageClassifying, "oops", fmt.Errorf("bad")),
	})
	hooks.OnJobFinish(ctx, &domain.JobEvent{Status: domain.JobFailed, Duration: time.Second})

	out, err := testutil.GatherAndCount(rec.Registry(),
		"triage_answers_total",
		"triage_intakes_completed_total",
		"triage_stage_attempts_total",
		"triage_jobs_total",
	)
	require.NoError(t, err)
	assert.Equal(t, 5, out, "one series per label combination")

	srv := httptest.NewServer(rec.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `triage_answers_total{language="en"} 2`)
	assert.Contains(t, string(body), `triage_stage_attempts_total{outcome="parse",stage="classifying"} 1`)
	assert.Contains(t, string(body), `triage_stage_attempts_total{outcome="ok",stage="extracting"} 1`)
	assert.Contains(t, string(body), `triage_jobs_total{status="failed"} 1`)
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", metrics.Outcome(nil))
	assert.Equal(t, "timeout", metrics.Outcome(context.DeadlineExceeded))
	assert.Equal(t, "upstream", metrics.Outcome(fmt.Errorf("%w: 503", domain.ErrUpstreamUnavailable)))
	assert.Equal(t, "internal", metrics.Outcome(fmt.Errorf("boom")))
}
