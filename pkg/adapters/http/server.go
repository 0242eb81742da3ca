// Package http exposes the session lifecycle as a JSON API over chi.
package http

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/triage"
	"github.com/aretw0/triage/internal/logging"
	"github.com/aretw0/triage/internal/presentation/graph"
	"github.com/aretw0/triage/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

// maxBodyBytes caps request bodies; answers are far smaller.
const maxBodyBytes = 64 << 10

// Service is the lifecycle API served by the handler.
type Service interface {
	CreateSession(ctx context.Context) (*triage.SessionInfo, error)
	SubmitAnswer(ctx context.Context, sessionID, text string) (*triage.AnswerStep, error)
	GetSession(ctx context.Context, sessionID string) (*domain.Session, error)
	StartPipeline(ctx context.Context, sessionID string) (string, error)
	GetResult(ctx context.Context, jobID string) (*domain.Job, error)
}

var _ Service = (*triage.Service)(nil)

// Server holds the handler dependencies.
type Server struct {
	Service Service
	Streams *StreamManager

	apiKey   string
	origins  []string
	metrics  http.Handler
	logger   *slog.Logger
	validate *validator.Validate
}

// Option configures the handler.
type Option func(*Server)

// WithAPIKey requires every API call except the health check to carry key
// in X-API-Key or as a bearer token. An empty key disables the check.
func WithAPIKey(key string) Option {
	return func(s *Server) { s.apiKey = key }
}

// WithCORSOrigins sets the allowed origins. "*" allows any origin.
func WithCORSOrigins(origins ...string) Option {
	return func(s *Server) { s.origins = origins }
}

// WithMetrics mounts h at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithStreams enables job event streaming from the given manager.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) { s.Streams = sm }
}

// WithLogger configures request logging.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// NewHandler creates the HTTP handler for svc.
func NewHandler(svc Service, opts ...Option) http.Handler {
	s := &Server{
		Service:  svc,
		origins:  []string{"*"},
		logger:   logging.NewNop(),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.cors)

	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	// Swagger UI
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(rawSpec())
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(swaggerHTML))
	})

	wrapper := &ServerInterfaceWrapper{Handler: s, ErrorHandlerFunc: s.paramError}
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", wrapper.GetHealth)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAPIKey)
			r.Use(middleware.RequestSize(maxBodyBytes))

			r.Post("/session", wrapper.CreateSession)
			r.Get("/session/{id}", wrapper.GetSession)
			r.Post("/chat", wrapper.Chat)
			r.Post("/process", wrapper.Process)
			r.Get("/result/{job_id}", wrapper.GetResult)
			r.Get("/result/{job_id}/graph", wrapper.GetResultGraph)
			if s.Streams != nil {
				r.Get("/result/{job_id}/events", wrapper.SubscribeEvents)
			}
		})
	})
	return r
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Triage API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// paramError answers 400 for a path parameter that could not be bound.
func (s *Server) paramError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Warn("Invalid request parameter", "path", r.URL.Path, "err", err)
	writeError(w, http.StatusBadRequest, "invalid_request", err.Error(), "fix_request")
}

func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := s.allowedOrigin(r.Header.Get("Origin")); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			if origin != "*" {
				w.Header().Add("Vary", "Origin")
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) allowedOrigin(origin string) string {
	for _, o := range s.origins {
		if o == "*" {
			return "*"
		}
		if origin != "" && strings.EqualFold(o, origin) {
			return origin
		}
	}
	return ""
}

func (s *Server) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" {
			next.ServeHTTP(w, r)
			return
		}
		key := r.Header.Get("X-API-Key")
		if key == "" {
			if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				key = strings.TrimPrefix(auth, "Bearer ")
			}
		}
		if subtle.ConstantTimeCompare([]byte(key), []byte(s.apiKey)) != 1 {
			writeError(w, http.StatusUnauthorized, "unauthorized", "missing or invalid API key", "")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles GET /api/health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:  "healthy",
		Service: "triage",
		Version: triage.Version,
	}
	if swagger, err := GetSwagger(); err == nil && swagger.Info != nil {
		resp.APIVersion = swagger.Info.Version
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateSession handles POST /api/session.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	info, err := s.Service.CreateSession(r.Context())
	if err != nil {
		s.fail(w, r, "CreateSession", err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(info))
}

// GetSession handles GET /api/session/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request, id string) {
	sess, err := s.Service.GetSession(r.Context(), id)
	if err != nil {
		s.fail(w, r, "GetSession", err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionStateResponse(sess))
}

// Chat handles POST /api/chat.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	var body chatRequest
	if !s.decode(w, r, &body) {
		return
	}

	step, err := s.Service.SubmitAnswer(r.Context(), body.SessionID, *body.Message)
	if err != nil {
		s.fail(w, r, "Chat", err)
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{
		SessionID:      step.SessionID,
		QuestionNumber: step.QuestionNumber,
		NextQuestion:   step.NextQuestion,
		IsComplete:     step.Complete,
	})
}

// Process handles POST /api/process.
func (s *Server) Process(w http.ResponseWriter, r *http.Request) {
	var body processRequest
	if !s.decode(w, r, &body) {
		return
	}

	jobID, err := s.Service.StartPipeline(r.Context(), body.SessionID)
	if err != nil {
		s.fail(w, r, "Process", err)
		return
	}
	writeJSON(w, http.StatusAccepted, processResponse{Status: statusProcessing, JobID: jobID})
}

// GetResult handles GET /api/result/{job_id}.
func (s *Server) GetResult(w http.ResponseWriter, r *http.Request, jobID string) {
	job, err := s.Service.GetResult(r.Context(), jobID)
	if err != nil {
		s.fail(w, r, "GetResult", err)
		return
	}
	writeJSON(w, http.StatusOK, newResultResponse(job))
}

// GetResultGraph handles GET /api/result/{job_id}/graph with the job's
// path through the pipeline as a Mermaid flowchart.
func (s *Server) GetResultGraph(w http.ResponseWriter, r *http.Request, jobID string) {
	job, err := s.Service.GetResult(r.Context(), jobID)
	if err != nil {
		s.fail(w, r, "GetResultGraph", err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, graph.Pipeline(graph.OverlayFor(job)))
}

// decode reads and validates a JSON body, answering 400 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		s.logger.Warn("Invalid request body", "path", r.URL.Path, "err", err)
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body", "fix_request")
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", validationMessage(err), "fix_request")
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request body"
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", jsonName(fe.Field()), fe.Tag()))
	}
	return "invalid fields: " + strings.Join(fields, ", ")
}

func jsonName(field string) string {
	switch field {
	case "SessionID":
		return "session_id"
	case "Message":
		return "message"
	default:
		return strings.ToLower(field)
	}
}

// fail maps a service error to a status, a stable code and a hint.
// Internal error text never reaches the client.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "session_not_found", "session not found", "restart_session")
	case errors.Is(err, domain.ErrJobNotFound):
		writeError(w, http.StatusNotFound, "job_not_found", "job not found", "retry_job")
	case errors.Is(err, domain.ErrSessionComplete):
		writeError(w, http.StatusConflict, "session_complete", "session already complete", "")
	case errors.Is(err, domain.ErrSessionNotComplete):
		writeError(w, http.StatusConflict, "session_not_complete", "the intake is not complete yet", "")
	case errors.Is(err, domain.ErrInvalidLanguage):
		writeError(w, http.StatusBadRequest, "invalid_language", "unsupported language selection", "fix_request")
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error(), "fix_request")
	case errors.Is(err, triage.ErrClosed):
		writeError(w, http.StatusServiceUnavailable, "shutting_down", "the service is shutting down", "retry_job")
	default:
		s.logger.Error(op+" failed", "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()), "err", err)
		writeError(w, http.StatusInternalServerError, "internal", "internal error", "")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Response encode failed", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, msg, hint string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code, Hint: hint})
}

// NewServer wraps handler in an http.Server with conservative timeouts.
// The write timeout is left open for event streams.
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
