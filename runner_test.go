package triage_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/triage"
	"github.com/aretw0/triage/internal/testutils"
	"github.com/aretw0/triage/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunner_FullIntake(t *testing.T) {
	svc := newService(t, benign())

	lines := append([]string{"klingon", "1"}, testutils.BenignAnswers()...)
	var out bytes.Buffer
	r := triage.NewRunner(strings.NewReader(strings.Join(lines, "\n")+"\n"), &out)
	r.PollInterval = 5 * time.Millisecond

	job, err := r.Run(context.Background(), svc)
	require.NoError(t, err)
	assert.Equal(t, domain.JobCompleted, job.Status)

	text := out.String()
	assert.Contains(t, text, "1. English (en)")
	assert.Contains(t, text, "Please choose one of the listed languages.")
	assert.Contains(t, text, "[1/14]")
	assert.Contains(t, text, "General Practice")
}

func TestRunner_RendersThroughRenderer(t *testing.T) {
	svc := newService(t, benign())

	lines := append([]string{"en"}, testutils.BenignAnswers()...)
	var out bytes.Buffer
	r := triage.NewRunner(strings.NewReader(strings.Join(lines, "\n")), &out)
	r.PollInterval = 5 * time.Millisecond
	r.Renderer = func(md string) (string, error) { return "RENDERED:" + md, nil }

	_, err := r.Run(context.Background(), svc)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "RENDERED:# Triage result")
}

func TestRunner_Exit(t *testing.T) {
	svc := newService(t, benign())

	var out bytes.Buffer
	r := triage.NewRunner(strings.NewReader("en\nJohn\nquit\n"), &out)
	_, err := r.Run(context.Background(), svc)
	assert.ErrorIs(t, err, triage.ErrAborted)
	assert.Contains(t, out.String(), "Bye!")
}

func TestRunner_EOF(t *testing.T) {
	svc := newService(t, benign())

	r := triage.NewRunner(strings.NewReader("en\n"), &bytes.Buffer{})
	_, err := r.Run(context.Background(), svc)
	assert.ErrorIs(t, err, triage.ErrAborted)
}
