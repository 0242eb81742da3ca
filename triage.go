package triage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/triage/internal/intake"
	"github.com/aretw0/triage/internal/logging"
	"github.com/aretw0/triage/internal/pipeline"
	"github.com/aretw0/triage/internal/retry"
	"github.com/aretw0/triage/pkg/adapters/memory"
	"github.com/aretw0/triage/pkg/catalog"
	"github.com/aretw0/triage/pkg/domain"
	"github.com/aretw0/triage/pkg/ports"
	"github.com/aretw0/triage/pkg/session"
	"github.com/google/uuid"
)

// Version is reported by the health endpoint and the CLI.
const Version = "2.0.0"

// ErrClosed is returned by StartPipeline once Close has been called.
var ErrClosed = errors.New("service is closed")

// finalSaveTimeout bounds the write of a job's terminal record.
const finalSaveTimeout = 10 * time.Second

// SessionInfo is returned when a session starts.
type SessionInfo struct {
	SessionID      string
	Languages      []catalog.Language
	LanguagePrompt string
	Welcome        string
}

// AnswerStep is the outcome of one submitted answer.
type AnswerStep struct {
	SessionID      string
	Language       string
	QuestionNumber int
	NextQuestion   string
	Complete       bool
}

// Service is the session lifecycle API: intake, pipeline start and result
// polling.
type Service struct {
	sessions ports.SessionStore
	results  ports.ResultStore
	reasoner ports.Reasoner
	refs     ports.ReferenceStore
	locker   ports.DistributedLocker
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string

	sessionTTL   time.Duration
	lockTTL      time.Duration
	stageTimeout *time.Duration
	retry        *retry.Policy
	topK         int
	maxInput     int

	manager  *session.Manager
	intake   *intake.Machine
	pipeline *pipeline.Orchestrator

	mu      sync.Mutex
	closed  bool
	wg      sync.WaitGroup
	runCtx  context.Context
	stopRun context.CancelFunc
}

// Option configures the Service.
type Option func(*Service)

// WithSessionStore replaces the in-memory session store.
func WithSessionStore(s ports.SessionStore) Option {
	return func(svc *Service) { svc.sessions = s }
}

// WithResultStore replaces the in-memory result store.
func WithResultStore(s ports.ResultStore) Option {
	return func(svc *Service) { svc.results = s }
}

// WithLocker serializes session updates across replicas.
func WithLocker(l ports.DistributedLocker) Option {
	return func(svc *Service) { svc.locker = l }
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(h domain.LifecycleHooks) Option {
	return func(svc *Service) { svc.hooks = h }
}

// WithLogger sets a custom structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(svc *Service) { svc.logger = l }
}

// WithSessionTTL sets the retention of the default in-memory stores.
// Sessions expire that long after creation.
func WithSessionTTL(ttl time.Duration) Option {
	return func(svc *Service) { svc.sessionTTL = ttl }
}

// WithLockTTL sets the lease of the distributed session lock.
func WithLockTTL(ttl time.Duration) Option {
	return func(svc *Service) { svc.lockTTL = ttl }
}

// WithStageTimeout bounds every pipeline stage attempt.
func WithStageTimeout(d time.Duration) Option {
	return func(svc *Service) { svc.stageTimeout = &d }
}

// WithRetryPolicy sets the retry policy for upstream failures.
func WithRetryPolicy(p retry.Policy) Option {
	return func(svc *Service) { svc.retry = &p }
}

// WithTopK sets how many reference snippets each lookup injects.
func WithTopK(k int) Option {
	return func(svc *Service) { svc.topK = k }
}

// WithMaxInputSize caps the size of a single answer in bytes.
func WithMaxInputSize(n int) Option {
	return func(svc *Service) { svc.maxInput = n }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(svc *Service) { svc.now = now }
}

// WithIDGenerator overrides the session and job ID generator.
func WithIDGenerator(fn func() string) Option {
	return func(svc *Service) { svc.newID = fn }
}

// New creates a Service over a reasoning service and a reference store.
// Sessions and results are kept in memory unless stores are injected.
func New(reasoner ports.Reasoner, refs ports.ReferenceStore, opts ...Option) (*Service, error) {
	if reasoner == nil {
		return nil, fmt.Errorf("a reasoner is required")
	}
	if refs == nil {
		return nil, fmt.Errorf("a reference store is required")
	}

	svc := &Service{
		reasoner:   reasoner,
		refs:       refs,
		logger:     logging.NewNop(),
		now:        func() time.Time { return time.Now().UTC() },
		newID:      uuid.NewString,
		sessionTTL: memory.DefaultRetention,
	}
	for _, opt := range opts {
		opt(svc)
	}

	if svc.sessions == nil {
		svc.sessions = memory.NewSessionStore(memory.WithTTL(svc.sessionTTL), memory.WithClock(svc.now))
	}
	if svc.results == nil {
		svc.results = memory.NewResultStore(memory.WithTTL(svc.sessionTTL))
	}

	managerOpts := []session.Option{session.WithLogger(svc.logger)}
	if svc.locker != nil {
		managerOpts = append(managerOpts, session.WithLocker(svc.locker))
	}
	if svc.lockTTL > 0 {
		managerOpts = append(managerOpts, session.WithLockTTL(svc.lockTTL))
	}
	svc.manager = session.NewManager(svc.sessions, managerOpts...)
	svc.intake = intake.New(svc.manager,
		intake.WithHooks(svc.hooks),
		intake.WithLogger(svc.logger),
		intake.WithClock(svc.now),
		intake.WithIDGenerator(svc.newID),
		intake.WithMaxInputSize(svc.maxInput),
	)

	pipelineOpts := []pipeline.Option{
		pipeline.WithHooks(svc.hooks),
		pipeline.WithLogger(svc.logger),
		pipeline.WithClock(svc.now),
	}
	if svc.stageTimeout != nil {
		pipelineOpts = append(pipelineOpts, pipeline.WithStageTimeout(*svc.stageTimeout))
	}
	if svc.retry != nil {
		pipelineOpts = append(pipelineOpts, pipeline.WithRetry(*svc.retry))
	}
	if svc.topK > 0 {
		pipelineOpts = append(pipelineOpts, pipeline.WithTopK(svc.topK))
	}
	svc.pipeline = pipeline.New(svc.reasoner, svc.refs, pipelineOpts...)

	svc.runCtx, svc.stopRun = context.WithCancel(context.Background())
	return svc, nil
}

// CreateSession starts a new intake awaiting its language selection.
func (s *Service) CreateSession(ctx context.Context) (*SessionInfo, error) {
	sess, err := s.intake.Create(ctx)
	if err != nil {
		return nil, err
	}
	return &SessionInfo{
		SessionID:      sess.ID,
		Languages:      catalog.Languages(),
		LanguagePrompt: catalog.LanguagePrompt(catalog.DefaultLanguage),
		Welcome:        catalog.Welcome(catalog.DefaultLanguage),
	}, nil
}

// SubmitAnswer applies the patient's text to the session: the first
// submission selects the language, the following ones answer the questions.
func (s *Service) SubmitAnswer(ctx context.Context, sessionID, text string) (*AnswerStep, error) {
	step, err := s.intake.Answer(ctx, sessionID, text)
	if err != nil {
		return nil, err
	}
	return &AnswerStep{
		SessionID:      step.Session.ID,
		Language:       step.Session.Language,
		QuestionNumber: step.QuestionNumber,
		NextQuestion:   step.NextQuestion,
		Complete:       step.Complete,
	}, nil
}

// GetSession returns a copy of the session.
func (s *Service) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	return s.intake.Get(ctx, sessionID)
}

// ListSessions returns the IDs of the unexpired sessions.
func (s *Service) ListSessions(ctx context.Context) ([]string, error) {
	return s.manager.List(ctx)
}

// DeleteSession removes a session while holding its lock. Deleting an
// unknown session is not an error.
func (s *Service) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.manager.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	s.logger.Info("Session deleted", "session_id", sessionID)
	return nil
}

// StartPipeline saves a pending job for a completed session and runs the
// pipeline in the background. The run is detached from ctx.
func (s *Service) StartPipeline(ctx context.Context, sessionID string) (string, error) {
	sess, err := s.intake.Get(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if !sess.Complete {
		return "", domain.ErrSessionNotComplete
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", ErrClosed
	}

	job := domain.NewJob(s.newID(), sess.ID, s.now())
	if err := s.results.Save(ctx, job); err != nil {
		return "", fmt.Errorf("failed to save job: %w", err)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(s.runCtx, job, sess)
	}()

	s.logger.Info("Pipeline started", "job_id", job.ID, "session_id", sess.ID)
	return job.ID, nil
}

// run drives one job to its terminal record.
func (s *Service) run(ctx context.Context, job *domain.Job, sess *domain.Session) {
	start := time.Now()

	observe := func(ctx context.Context, stage domain.Stage) {
		if stage == domain.StageDone || stage == domain.StageFailed {
			return
		}
		job.Stage = stage
		job.UpdatedAt = s.now()
		if err := s.results.Save(ctx, job); err != nil {
			s.logger.Warn("Failed to record job stage", "job_id", job.ID, "stage", stage, "err", err)
		}
	}

	result, err := s.pipeline.RunJob(ctx, job.ID, sess, observe)
	if err != nil {
		job.Fail(domain.ClassifyStageError(job.Stage, err), s.now())
	} else {
		job.Complete(result, s.now())
	}

	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finalSaveTimeout)
	defer cancel()
	if err := s.results.Save(saveCtx, job); err != nil {
		s.logger.Error("Failed to save job result", "job_id", job.ID, "err", err)
		return
	}

	duration := time.Since(start)
	if job.Status == domain.JobCompleted {
		s.logger.Info("Pipeline completed",
			"job_id", job.ID,
			"session_id", sess.ID,
			"level", result.Classification.Level,
			"department", result.Routing.Department,
			"duration", duration,
		)
	} else {
		s.logger.Warn("Pipeline failed",
			"job_id", job.ID,
			"session_id", sess.ID,
			"stage", job.Failure.Stage,
			"kind", job.Failure.Kind,
		)
	}

	if s.hooks.OnJobFinish != nil {
		s.hooks.OnJobFinish(ctx, &domain.JobEvent{
			JobID:     job.ID,
			SessionID: sess.ID,
			Status:    job.Status,
			Duration:  duration,
			Failure:   job.Failure,
		})
	}
}

// GetResult returns the job record: pending, completed with its result, or
// failed with a client-safe failure.
func (s *Service) GetResult(ctx context.Context, jobID string) (*domain.Job, error) {
	return s.results.Load(ctx, jobID)
}

// DeleteResult removes a job record.
func (s *Service) DeleteResult(ctx context.Context, jobID string) error {
	if err := s.results.Delete(ctx, jobID); err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	return nil
}

// Close stops accepting pipeline runs and waits for the running ones.
// When ctx ends first, running jobs are cancelled and fail with the
// stage they were in.
func (s *Service) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.stopRun()
		return nil
	case <-ctx.Done():
		s.stopRun()
		<-done
		return ctx.Err()
	}
}
