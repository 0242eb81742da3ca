// Package mcp exposes the session lifecycle as Model Context Protocol tools,
// so an agent can run an intake and read the triage result.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/triage"
	"github.com/aretw0/triage/internal/logging"
	"github.com/aretw0/triage/internal/presentation/graph"
	"github.com/aretw0/triage/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// PipelineURI names the resource holding the pipeline flowchart.
const PipelineURI = "triage://pipeline"

// Service is the lifecycle API the tools call into.
type Service interface {
	CreateSession(ctx context.Context) (*triage.SessionInfo, error)
	SubmitAnswer(ctx context.Context, sessionID, text string) (*triage.AnswerStep, error)
	GetSession(ctx context.Context, sessionID string) (*domain.Session, error)
	StartPipeline(ctx context.Context, sessionID string) (string, error)
	GetResult(ctx context.Context, jobID string) (*domain.Job, error)
}

var _ Service = (*triage.Service)(nil)

// Language is one selectable intake language.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// SessionResponse is returned by create_session.
type SessionResponse struct {
	SessionID      string     `json:"session_id" jsonschema_description:"Identifier to pass to submit_answer and start_pipeline"`
	Languages      []Language `json:"language_options" jsonschema_description:"Languages the first answer may select"`
	LanguagePrompt string     `json:"prompt" jsonschema_description:"Language selection prompt to show the patient"`
	Welcome        string     `json:"welcome"`
}

// AnswerResponse is returned by submit_answer.
type AnswerResponse struct {
	SessionID      string `json:"session_id"`
	Language       string `json:"language,omitempty"`
	QuestionNumber int    `json:"question_number" jsonschema_description:"Number of the question now being asked"`
	NextQuestion   string `json:"next_question,omitempty" jsonschema_description:"Question to ask next, empty once the intake is complete"`
	Complete       bool   `json:"is_complete"`
}

// SessionStateResponse is returned by get_session.
type SessionStateResponse struct {
	SessionID       string `json:"session_id"`
	CurrentQuestion int    `json:"current_question"`
	Complete        bool   `json:"is_complete"`
	AnswersCount    int    `json:"answers_count"`
	Language        string `json:"language,omitempty"`
}

// ProcessResponse is returned by start_pipeline.
type ProcessResponse struct {
	Status string `json:"status"`
	JobID  string `json:"job_id" jsonschema_description:"Identifier to pass to get_result"`
}

// ResultResponse is returned by get_result.
type ResultResponse struct {
	Status string                 `json:"status" jsonschema_description:"processing, completed or error"`
	JobID  string                 `json:"job_id"`
	Stage  domain.Stage           `json:"stage"`
	Result *domain.PipelineResult `json:"result,omitempty"`
	Error  *domain.JobFailure     `json:"error,omitempty"`
}

type sessionArgs struct {
	SessionID string `json:"session_id"`
}

type answerArgs struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type jobArgs struct {
	JobID string `json:"job_id"`
}

// Server wraps the Service and exposes it as an MCP Server.
type Server struct {
	svc       Service
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger for tool failures and the SSE listener.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// NewServer creates a new MCP Server instance.
func NewServer(svc Service, opts ...Option) *Server {
	s := &Server{
		svc:    svc,
		logger: logging.NewNop(),
		mcpServer: server.NewMCPServer("triage-mcp", strings.TrimSpace(triage.Version),
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
		),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "addr", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("create_session",
		mcp.WithDescription("Start a new triage intake. The first answer selects the language."),
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.handleCreateSession))

	s.mcpServer.AddTool(mcp.NewTool("submit_answer",
		mcp.WithDescription("Submit the patient's answer to the current question and get the next one."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID from create_session")),
		mcp.WithString("message", mcp.Required(), mcp.Description("Answer text, or a language code or number for the first answer")),
		mcp.WithOutputSchema[AnswerResponse](),
	), mcp.NewStructuredToolHandler(s.handleSubmitAnswer))

	s.mcpServer.AddTool(mcp.NewTool("get_session",
		mcp.WithDescription("Show the progress of an intake session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithOutputSchema[SessionStateResponse](),
	), mcp.NewStructuredToolHandler(s.handleGetSession))

	s.mcpServer.AddTool(mcp.NewTool("start_pipeline",
		mcp.WithDescription("Run extraction, classification and routing over a completed intake."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID of a completed intake")),
		mcp.WithOutputSchema[ProcessResponse](),
	), mcp.NewStructuredToolHandler(s.handleStartPipeline))

	s.mcpServer.AddTool(mcp.NewTool("get_result",
		mcp.WithDescription("Poll a pipeline job for its stage and, once completed, the triage result."),
		mcp.WithString("job_id", mcp.Required(), mcp.Description("Job ID from start_pipeline")),
		mcp.WithOutputSchema[ResultResponse](),
	), mcp.NewStructuredToolHandler(s.handleGetResult))

	s.mcpServer.AddTool(mcp.NewTool("get_result_graph",
		mcp.WithDescription("Render the job's path through the pipeline as a Mermaid flowchart."),
		mcp.WithString("job_id", mcp.Required(), mcp.Description("Job ID from start_pipeline")),
	), s.handleGetResultGraph)
}

func (s *Server) handleCreateSession(ctx context.Context, _ mcp.CallToolRequest, _ map[string]any) (SessionResponse, error) {
	info, err := s.svc.CreateSession(ctx)
	if err != nil {
		return SessionResponse{}, s.toolError("create_session", err)
	}
	langs := make([]Language, len(info.Languages))
	for i, l := range info.Languages {
		langs[i] = Language{Code: l.Code, Name: l.Name}
	}
	return SessionResponse{
		SessionID:      info.SessionID,
		Languages:      langs,
		LanguagePrompt: info.LanguagePrompt,
		Welcome:        info.Welcome,
	}, nil
}

func (s *Server) handleSubmitAnswer(ctx context.Context, _ mcp.CallToolRequest, args answerArgs) (AnswerResponse, error) {
	step, err := s.svc.SubmitAnswer(ctx, args.SessionID, args.Message)
	if err != nil {
		return AnswerResponse{}, s.toolError("submit_answer", err)
	}
	return AnswerResponse{
		SessionID:      step.SessionID,
		Language:       step.Language,
		QuestionNumber: step.QuestionNumber,
		NextQuestion:   step.NextQuestion,
		Complete:       step.Complete,
	}, nil
}

func (s *Server) handleGetSession(ctx context.Context, _ mcp.CallToolRequest, args sessionArgs) (SessionStateResponse, error) {
	sess, err := s.svc.GetSession(ctx, args.SessionID)
	if err != nil {
		return SessionStateResponse{}, s.toolError("get_session", err)
	}
	return SessionStateResponse{
		SessionID:       sess.ID,
		CurrentQuestion: sess.CurrentQuestion,
		Complete:        sess.Complete,
		AnswersCount:    len(sess.Answers),
		Language:        sess.Language,
	}, nil
}

func (s *Server) handleStartPipeline(ctx context.Context, _ mcp.CallToolRequest, args sessionArgs) (ProcessResponse, error) {
	jobID, err := s.svc.StartPipeline(ctx, args.SessionID)
	if err != nil {
		return ProcessResponse{}, s.toolError("start_pipeline", err)
	}
	return ProcessResponse{Status: "processing", JobID: jobID}, nil
}

func (s *Server) handleGetResult(ctx context.Context, _ mcp.CallToolRequest, args jobArgs) (ResultResponse, error) {
	job, err := s.svc.GetResult(ctx, args.JobID)
	if err != nil {
		return ResultResponse{}, s.toolError("get_result", err)
	}
	resp := ResultResponse{JobID: job.ID, Stage: job.Stage}
	switch job.Status {
	case domain.JobCompleted:
		resp.Status = "completed"
		resp.Result = job.Result
	case domain.JobFailed:
		resp.Status = "error"
		resp.Error = job.Failure
	default:
		resp.Status = "processing"
	}
	return resp, nil
}

func (s *Server) handleGetResultGraph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jobID, err := request.RequireString("job_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	job, err := s.svc.GetResult(ctx, jobID)
	if err != nil {
		return mcp.NewToolResultError(s.toolError("get_result_graph", err).Error()), nil
	}
	return mcp.NewToolResultText(graph.Pipeline(graph.OverlayFor(job))), nil
}

// toolError maps a service error to the message an agent sees. Internal
// failures are logged and reported without detail.
func (s *Server) toolError(op string, err error) error {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return errors.New("session not found")
	case errors.Is(err, domain.ErrJobNotFound):
		return errors.New("job not found")
	case errors.Is(err, domain.ErrSessionComplete):
		return errors.New("session already complete")
	case errors.Is(err, domain.ErrSessionNotComplete):
		return errors.New("the intake is not complete yet")
	case errors.Is(err, domain.ErrInvalidLanguage):
		return errors.New("unsupported language selection")
	case errors.Is(err, domain.ErrInvalidInput):
		return err
	case errors.Is(err, triage.ErrClosed):
		return errors.New("the service is shutting down")
	}
	s.logger.Error("MCP tool failed", "tool", op, "err", err)
	return errors.New("internal error")
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(PipelineURI, "Triage Pipeline",
		mcp.WithResourceDescription("Mermaid flowchart of the extraction, classification and routing stages"),
		mcp.WithMIMEType("text/plain"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      PipelineURI,
				MIMEType: "text/plain",
				Text:     graph.Pipeline(nil),
			},
		}, nil
	})
}
