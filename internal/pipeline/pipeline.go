// Package pipeline turns a completed intake into a PipelineResult through
// three dependent model calls: extraction, classification and routing.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/triage/internal/logging"
	"github.com/aretw0/triage/internal/retry"
	"github.com/aretw0/triage/pkg/domain"
	"github.com/aretw0/triage/pkg/ports"
	"github.com/aretw0/triage/pkg/schema"
	"golang.org/x/sync/errgroup"
)

// DefaultStageTimeout bounds a single stage attempt.
const DefaultStageTimeout = 60 * time.Second

// Orchestrator runs the stage state machine.
type Orchestrator struct {
	reasoner     ports.Reasoner
	refs         ports.ReferenceStore
	retry        retry.Policy
	stageTimeout time.Duration
	topK         int
	hooks        domain.LifecycleHooks
	logger       *slog.Logger
	now          func() time.Time
}

// Option configures the Orchestrator.
type Option func(*Orchestrator)

// WithRetry sets the retry policy applied to each stage.
func WithRetry(p retry.Policy) Option {
	return func(o *Orchestrator) { o.retry = p }
}

// WithStageTimeout bounds every stage attempt. Zero or less disables it.
func WithStageTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.stageTimeout = d }
}

// WithTopK sets how many snippets each reference lookup returns.
func WithTopK(k int) Option {
	return func(o *Orchestrator) { o.topK = k }
}

// WithHooks registers stage callbacks.
func WithHooks(h domain.LifecycleHooks) Option {
	return func(o *Orchestrator) { o.hooks = h }
}

// WithLogger configures a logger for the Orchestrator.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithClock overrides time.Now for result timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// New creates an orchestrator over a reasoning service and a reference store.
func New(reasoner ports.Reasoner, refs ports.ReferenceStore, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		reasoner:     reasoner,
		refs:         refs,
		retry:        retry.DefaultPolicy(),
		stageTimeout: DefaultStageTimeout,
		topK:         ports.DefaultTopK,
		logger:       logging.NewNop(),
		now:          func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Observer is told about every state the run enters.
type Observer func(ctx context.Context, stage domain.Stage)

// run holds the typed output of each finished stage. Every stage reads only
// the outputs before it, never the raw answers past extraction.
type run struct {
	jobID   string
	session *domain.Session
	state   domain.Stage

	intake         *domain.StructuredIntake
	classification *domain.Classification
	routing        *domain.Routing
}

// Run executes the pipeline for a completed session.
func (o *Orchestrator) Run(ctx context.Context, s *domain.Session) (*domain.PipelineResult, error) {
	return o.RunJob(ctx, "", s, nil)
}

// RunJob executes the pipeline on behalf of jobID, reporting each state
// transition to observe. Any stage failure aborts the run with a
// *domain.StageError and no partial result.
func (o *Orchestrator) RunJob(ctx context.Context, jobID string, s *domain.Session, observe Observer) (*domain.PipelineResult, error) {
	if !s.Complete {
		return nil, domain.ErrSessionNotComplete
	}

	r := &run{jobID: jobID, session: s, state: domain.StageExtracting}
	for {
		if observe != nil {
			observe(ctx, r.state)
		}

		var err error
		switch r.state {
		case domain.StageExtracting:
			err = o.stage(ctx, r, o.extract)
			r.advance(err, domain.StageClassifying)
		case domain.StageClassifying:
			err = o.stage(ctx, r, o.classify)
			r.advance(err, domain.StageRouting)
		case domain.StageRouting:
			err = o.stage(ctx, r, o.route)
			r.advance(err, domain.StageDone)
		case domain.StageDone:
			return &domain.PipelineResult{
				Timestamp:        o.now(),
				SessionID:        s.ID,
				StructuredIntake: *r.intake,
				Classification:   *r.classification,
				Routing:          *r.routing,
			}, nil
		default:
			return nil, fmt.Errorf("pipeline entered unexpected state %q", r.state)
		}

		if err != nil {
			if observe != nil {
				observe(ctx, domain.StageFailed)
			}
			return nil, err
		}
	}
}

func (r *run) advance(err error, next domain.Stage) {
	if err != nil {
		r.state = domain.StageFailed
		return
	}
	r.state = next
}

// stage runs one attempt function under the retry policy and the per
// attempt timeout, and classifies the final error.
func (o *Orchestrator) stage(ctx context.Context, r *run, attempt func(context.Context, *run) error) error {
	stage := r.state
	start := time.Now()
	attempts := 0

	err := o.retry.Execute(ctx, func(ctx context.Context, n int) error {
		attempts = n
		ev := &domain.StageEvent{JobID: r.jobID, SessionID: r.session.ID, Stage: stage, Attempt: n}
		if o.hooks.OnStageStart != nil {
			o.hooks.OnStageStart(ctx, ev)
		}

		attemptCtx, cancel := o.withTimeout(ctx)
		attemptStart := time.Now()
		err := attempt(attemptCtx, r)
		if err != nil && ctx.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
			err = &domain.StageError{Stage: stage, Kind: domain.FailureTimeout, Err: context.DeadlineExceeded}
		}
		cancel()

		ev.Duration = time.Since(attemptStart)
		ev.Err = err
		if o.hooks.OnStageEnd != nil {
			o.hooks.OnStageEnd(ctx, ev)
		}
		if err != nil && retry.Retryable(err) {
			o.logger.Warn("Stage attempt failed",
				"job_id", r.jobID,
				"stage", stage,
				"attempt", n,
				"err", err,
			)
		}
		return err
	})
	if err == nil {
		o.logger.Debug("Stage finished", "job_id", r.jobID, "stage", stage, "attempts", attempts, "duration", time.Since(start))
		return nil
	}

	se := domain.ClassifyStageError(stage, err)
	logArgs := []any{"job_id", r.jobID, "session_id", r.session.ID, "stage", stage, "kind", se.Kind, "attempts", attempts, "err", se.Err}
	if fields := schema.Fields(se.Err); len(fields) > 0 {
		logArgs = append(logArgs, "invalid_fields", fields)
	}
	if se.Raw != "" {
		logArgs = append(logArgs, "raw", se.Raw)
	}
	o.logger.Error("Stage failed", logArgs...)
	return se
}

func (o *Orchestrator) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.stageTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, o.stageTimeout)
}

func (o *Orchestrator) extract(ctx context.Context, r *run) error {
	raw, err := o.reasoner.Complete(ctx, extractionInstruction, extractionInput(r.session))
	if err != nil {
		return err
	}

	var in domain.StructuredIntake
	if err := decodeStage(domain.StageExtracting, raw, extractionSchema, &in); err != nil {
		return err
	}
	in.Language = r.session.Language
	in.AssociatedSymptoms = nonNil(in.AssociatedSymptoms)
	in.MedicalHistory = nonNil(in.MedicalHistory)
	in.CurrentMedications = nonNil(in.CurrentMedications)
	in.Allergies = nonNil(in.Allergies)

	r.intake = &in
	return nil
}

func (o *Orchestrator) classify(ctx context.Context, r *run) error {
	protocols, err := o.search(ctx, ports.CollectionTriageProtocols, protocolQuery(r.intake))
	if err != nil {
		return err
	}

	raw, err := o.reasoner.Complete(ctx, classificationInstruction, classificationInput(r.intake, protocols))
	if err != nil {
		return err
	}

	var c domain.Classification
	if err := decodeStage(domain.StageClassifying, raw, classificationSchema, &c); err != nil {
		return err
	}
	level, err := domain.ParseSeverity(string(c.Level))
	if err != nil {
		return domain.NewParseError(domain.StageClassifying, raw, err)
	}
	c.Level = level
	c.Priority = level.Priority()
	c.RiskFactors = nonNil(c.RiskFactors)
	c.MatchedProtocols = nonNil(c.MatchedProtocols)
	c.References = protocols

	r.classification = &c
	return nil
}

func (o *Orchestrator) route(ctx context.Context, r *run) error {
	var rules, orders []domain.Snippet

	// The two lookups are independent; results are consumed rules first.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rules, err = o.search(gctx, ports.CollectionRoutingRules, ruleQuery(r.intake, r.classification.Level))
		return err
	})
	g.Go(func() error {
		var err error
		orders, err = o.search(gctx, ports.CollectionPreliminaryOrders, protocolQuery(r.intake))
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	raw, err := o.reasoner.Complete(ctx, routingInstruction, routingInput(r.intake, r.classification, rules, orders))
	if err != nil {
		return err
	}

	var rt domain.Routing
	if err := decodeStage(domain.StageRouting, raw, routingSchema, &rt); err != nil {
		return err
	}
	if u, ok := domain.ParseUrgency(string(rt.Urgency)); ok {
		rt.Urgency = u
	} else {
		rt.Urgency = r.classification.Level.DefaultUrgency()
	}
	rt.PreliminaryOrders = nonNil(rt.PreliminaryOrders)
	rt.Contraindications = nonNil(rt.Contraindications)
	rt.SafetyFlags = []domain.SafetyFlag{}
	crossCheckAllergies(r.intake.Allergies, &rt)

	r.routing = &rt
	return nil
}

func (o *Orchestrator) search(ctx context.Context, collection, query string) ([]domain.Snippet, error) {
	snippets, err := o.refs.Search(ctx, collection, query, o.topK)
	if err != nil {
		return nil, fmt.Errorf("reference lookup in %s: %w", collection, err)
	}
	return snippets, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
