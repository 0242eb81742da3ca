// Package intake drives a patient through language selection and the fixed
// questionnaire.
package intake

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/triage/internal/logging"
	"github.com/aretw0/triage/pkg/catalog"
	"github.com/aretw0/triage/pkg/domain"
	"github.com/aretw0/triage/pkg/session"
	"github.com/google/uuid"
)

// Step is the outcome of one accepted answer.
type Step struct {
	Session *domain.Session
	// QuestionNumber is the question now being asked, or the last question
	// once the intake is complete.
	QuestionNumber int
	// NextQuestion is empty once the intake is complete.
	NextQuestion string
	Complete     bool
}

// Machine implements the intake transitions on top of a session.Manager.
type Machine struct {
	sessions *session.Manager
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
	maxInput int
}

// Option configures the Machine.
type Option func(*Machine)

// WithHooks registers lifecycle callbacks.
func WithHooks(h domain.LifecycleHooks) Option {
	return func(m *Machine) { m.hooks = h }
}

// WithLogger configures a logger for the Machine.
func WithLogger(l *slog.Logger) Option {
	return func(m *Machine) { m.logger = l }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) { m.now = now }
}

// WithIDGenerator overrides the session id source.
func WithIDGenerator(fn func() string) Option {
	return func(m *Machine) { m.newID = fn }
}

// WithMaxInputSize bounds the answer length in bytes.
func WithMaxInputSize(n int) Option {
	return func(m *Machine) { m.maxInput = n }
}

// New creates an intake machine.
func New(sessions *session.Manager, opts ...Option) *Machine {
	m := &Machine{
		sessions: sessions,
		logger:   logging.NewNop(),
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create allocates a session awaiting its language.
func (m *Machine) Create(ctx context.Context) (*domain.Session, error) {
	s := domain.NewSession(m.newID(), m.now())
	if err := m.sessions.Create(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	m.logger.Debug("Session created", "session_id", s.ID)
	return s, nil
}

// Get returns the session or domain.ErrSessionNotFound.
func (m *Machine) Get(ctx context.Context, id string) (*domain.Session, error) {
	return m.sessions.Load(ctx, id)
}

// Answer applies one transition. At cursor 0 the text selects the language;
// afterwards it answers the current question. Rejected input leaves the
// session untouched.
func (m *Machine) Answer(ctx context.Context, id, text string) (*Step, error) {
	var step *Step
	updated, err := m.sessions.Update(ctx, id, func(s *domain.Session) error {
		var err error
		step, err = m.apply(s, text)
		return err
	})
	if err != nil {
		return nil, err
	}
	step.Session = updated

	ev := &domain.AnswerEvent{
		SessionID:      updated.ID,
		QuestionNumber: step.QuestionNumber,
		Language:       updated.Language,
		Complete:       step.Complete,
	}
	if m.hooks.OnAnswer != nil {
		m.hooks.OnAnswer(ctx, ev)
	}
	if step.Complete {
		m.logger.Info("Intake complete", "session_id", updated.ID, "language", updated.Language)
		if m.hooks.OnIntakeComplete != nil {
			m.hooks.OnIntakeComplete(ctx, ev)
		}
	}
	return step, nil
}

func (m *Machine) apply(s *domain.Session, text string) (*Step, error) {
	if s.Complete {
		return nil, domain.ErrSessionComplete
	}

	if s.AwaitingLanguage() {
		code, err := catalog.ResolveLanguage(text)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidLanguage, text)
		}
		first, err := catalog.FirstQuestionText(code)
		if err != nil {
			return nil, err
		}
		s.Language = code
		s.CurrentQuestion = 1
		return &Step{QuestionNumber: 1, NextQuestion: first}, nil
	}

	clean, err := SanitizeInput(text, m.maxInput)
	if err != nil {
		return nil, err
	}

	k := s.CurrentQuestion
	s.Answers[k] = clean
	s.CurrentQuestion = k + 1

	if k >= catalog.Total() {
		s.Complete = true
		return &Step{QuestionNumber: catalog.Total(), Complete: true}, nil
	}
	return &Step{
		QuestionNumber: k + 1,
		NextQuestion:   catalog.TextOrDefault(k+1, s.Language),
	}, nil
}
