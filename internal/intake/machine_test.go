package intake_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/triage/internal/intake"
	"github.com/aretw0/triage/pkg/adapters/memory"
	"github.com/aretw0/triage/pkg/catalog"
	"github.com/aretw0/triage/pkg/domain"
	"github.com/aretw0/triage/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMachine(t *testing.T, opts ...intake.Option) *intake.Machine {
	t.Helper()
	return intake.New(session.NewManager(memory.NewSessionStore()), opts...)
}

func TestMachine_FullIntake(t *testing.T) {
	m := newMachine(t)
	ctx := context.Background()

	s, err := m.Create(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, s.CurrentQuestion)
	assert.Empty(t, s.Language)

	step, err := m.Answer(ctx, s.ID, "en")
	require.NoError(t, err)
	assert.Equal(t, 1, step.QuestionNumber)
	assert.Equal(t, catalog.TextOrDefault(1, "en"), step.NextQuestion)
	assert.Empty(t, step.Session.Answers, "the language choice is not an answer")

	cursor := step.Session.CurrentQuestion
	for k := 1; k <= catalog.Total(); k++ {
		step, err = m.Answer(ctx, s.ID, "answer")
		require.NoError(t, err, "question %d", k)
		assert.GreaterOrEqual(t, step.Session.CurrentQuestion, cursor, "cursor never decreases")
		cursor = step.Session.CurrentQuestion

		if k < catalog.Total() {
			assert.False(t, step.Complete)
			assert.Equal(t, k+1, step.QuestionNumber)
			assert.NotEmpty(t, step.NextQuestion)
		}
	}

	assert.True(t, step.Complete)
	assert.Equal(t, catalog.Total(), step.QuestionNumber)
	assert.Empty(t, step.NextQuestion)
	assert.Len(t, step.Session.Answers, catalog.Total())
	for k := 1; k <= catalog.Total(); k++ {
		assert.Contains(t, step.Session.Answers, k)
	}

	_, err = m.Answer(ctx, s.ID, "one more")
	assert.ErrorIs(t, err, domain.ErrSessionComplete)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	after, err := m.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Len(t, after.Answers, catalog.Total(), "a rejected answer never mutates")
}

func TestMachine_LanguageSelection(t *testing.T) {
	m := newMachine(t)
	ctx := context.Background()

	s, err := m.Create(ctx)
	require.NoError(t, err)

	_, err = m.Answer(ctx, s.ID, "klingon")
	assert.ErrorIs(t, err, domain.ErrInvalidLanguage)

	still, err := m.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, still.CurrentQuestion)

	step, err := m.Answer(ctx, s.ID, "PT-br")
	require.NoError(t, err)
	assert.Equal(t, "pt-BR", step.Session.Language)
	assert.Equal(t, catalog.TextOrDefault(1, "pt-BR"), step.NextQuestion)
}

func TestMachine_UnknownSession(t *testing.T) {
	m := newMachine(t)
	_, err := m.Answer(context.Background(), "missing", "en")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestMachine_RejectsOversizedAnswer(t *testing.T) {
	m := newMachine(t, intake.WithMaxInputSize(8))
	ctx := context.Background()

	s, err := m.Create(ctx)
	require.NoError(t, err)
	_, err = m.Answer(ctx, s.ID, "en")
	require.NoError(t, err)

	_, err = m.Answer(ctx, s.ID, strings.Repeat("x", 9))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	loaded, err := m.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.CurrentQuestion)
	assert.Empty(t, loaded.Answers)
}

func TestMachine_StripsControlCharacters(t *testing.T) {
	m := newMachine(t)
	ctx := context.Background()

	s, err := m.Create(ctx)
	require.NoError(t, err)
	_, err = m.Answer(ctx, s.ID, "en")
	require.NoError(t, err)

	step, err := m.Answer(ctx, s.ID, "Ana\x1b[31m Lopez\x00")
	require.NoError(t, err)
	assert.Equal(t, "Ana[31m Lopez", step.Session.Answers[1])
}

func TestMachine_ConcurrentAnswersAreSerialized(t *testing.T) {
	m := newMachine(t)
	ctx := context.Background()

	s, err := m.Create(ctx)
	require.NoError(t, err)
	_, err = m.Answer(ctx, s.ID, "en")
	require.NoError(t, err)

	var wg sync.WaitGroup
	writers := 5
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Answer(ctx, s.ID, "same answer")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	loaded, err := m.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 1+writers, loaded.CurrentQuestion)
	assert.Len(t, loaded.Answers, writers)
}

func TestMachine_Hooks(t *testing.T) {
	var mu sync.Mutex
	var answers, completes int
	hooks := domain.LifecycleHooks{
		OnAnswer: func(context.Context, *domain.AnswerEvent) {
			mu.Lock()
			answers++
			mu.Unlock()
		},
		OnIntakeComplete: func(_ context.Context, ev *domain.AnswerEvent) {
			mu.Lock()
			completes++
			mu.Unlock()
			assert.True(t, ev.Complete)
			assert.Equal(t, "es", ev.Language)
		},
	}

	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	store := memory.NewSessionStore(memory.WithClock(func() time.Time { return fixed }))
	m := intake.New(session.NewManager(store),
		intake.WithHooks(hooks),
		intake.WithClock(func() time.Time { return fixed }),
		intake.WithIDGenerator(func() string { return "fixed-id" }),
	)
	ctx := context.Background()

	s, err := m.Create(ctx)
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", s.ID)
	assert.Equal(t, fixed, s.CreatedAt)

	_, err = m.Answer(ctx, s.ID, "es")
	require.NoError(t, err)
	for k := 1; k <= catalog.Total(); k++ {
		_, err = m.Answer(ctx, s.ID, "respuesta")
		require.NoError(t, err)
	}

	assert.Equal(t, catalog.Total()+1, answers)
	assert.Equal(t, 1, completes)
}
