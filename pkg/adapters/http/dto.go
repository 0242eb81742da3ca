package http

import (
	"github.com/aretw0/triage"
	"github.com/aretw0/triage/pkg/domain"
)

// Request bodies.

type chatRequest struct {
	SessionID string  `json:"session_id" validate:"required,max=128"`
	Message   *string `json:"message" validate:"required"`
}

type processRequest struct {
	SessionID string `json:"session_id" validate:"required,max=128"`
}

// Response bodies.

type healthResponse struct {
	Status     string `json:"status"`
	Service    string `json:"service"`
	Version    string `json:"version"`
	APIVersion string `json:"api_version,omitempty"`
}

type languageOption struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type sessionResponse struct {
	SessionID           string           `json:"session_id"`
	LanguageOptions     []languageOption `json:"language_options"`
	IsLanguageSelection bool             `json:"is_language_selection"`
	Prompt              string           `json:"prompt"`
	Welcome             string           `json:"welcome"`
}

type sessionStateResponse struct {
	SessionID       string `json:"session_id"`
	CurrentQuestion int    `json:"current_question"`
	IsComplete      bool   `json:"is_complete"`
	AnswersCount    int    `json:"answers_count"`
	Language        string `json:"language,omitempty"`
}

type chatResponse struct {
	SessionID      string `json:"session_id"`
	QuestionNumber int    `json:"question_number"`
	NextQuestion   string `json:"next_question,omitempty"`
	IsComplete     bool   `json:"is_complete"`
}

type processResponse struct {
	Status string `json:"status"`
	JobID  string `json:"job_id"`
}

// Result statuses as seen by clients.
const (
	statusProcessing = "processing"
	statusCompleted  = "completed"
	statusError      = "error"
)

type resultResponse struct {
	Status string                 `json:"status"`
	JobID  string                 `json:"job_id"`
	Stage  domain.Stage           `json:"stage"`
	Result *domain.PipelineResult `json:"result,omitempty"`
	Error  *domain.JobFailure     `json:"error,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Hint  string `json:"hint,omitempty"`
}

func newSessionResponse(info *triage.SessionInfo) sessionResponse {
	opts := make([]languageOption, len(info.Languages))
	for i, l := range info.Languages {
		opts[i] = languageOption{Code: l.Code, Name: l.Name}
	}
	return sessionResponse{
		SessionID:           info.SessionID,
		LanguageOptions:     opts,
		IsLanguageSelection: true,
		Prompt:              info.LanguagePrompt,
		Welcome:             info.Welcome,
	}
}

func newSessionStateResponse(s *domain.Session) sessionStateResponse {
	return sessionStateResponse{
		SessionID:       s.ID,
		CurrentQuestion: s.CurrentQuestion,
		IsComplete:      s.Complete,
		AnswersCount:    len(s.Answers),
		Language:        s.Language,
	}
}

func newResultResponse(job *domain.Job) resultResponse {
	resp := resultResponse{JobID: job.ID, Stage: job.Stage}
	switch job.Status {
	case domain.JobCompleted:
		resp.Status = statusCompleted
		resp.Result = job.Result
	case domain.JobFailed:
		resp.Status = statusError
		resp.Error = job.Failure
	default:
		resp.Status = statusProcessing
	}
	return resp
}
