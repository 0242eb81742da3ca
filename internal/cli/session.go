package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/aretw0/triage/pkg/catalog"
	"github.com/aretw0/triage/pkg/domain"
)

// SessionView is the inspect rendering of a session, with answers keyed by
// the intake field they feed.
type SessionView struct {
	ID              string            `json:"id"`
	CreatedAt       time.Time         `json:"created_at"`
	Language        string            `json:"language,omitempty"`
	CurrentQuestion int               `json:"current_question"`
	Complete        bool              `json:"is_complete"`
	Answers         map[string]string `json:"answers"`
}

// NewSessionView labels the answers of s with their field names.
func NewSessionView(s *domain.Session) SessionView {
	v := SessionView{
		ID:              s.ID,
		CreatedAt:       s.CreatedAt,
		Language:        s.Language,
		CurrentQuestion: s.CurrentQuestion,
		Complete:        s.Complete,
		Answers:         make(map[string]string, len(s.Answers)),
	}
	for k, text := range s.Answers {
		field, err := catalog.Field(k)
		if err != nil {
			field = fmt.Sprintf("question_%d", k)
		}
		v.Answers[field] = text
	}
	return v
}

// ListSessions prints one line per retained session.
func ListSessions(ctx context.Context, app *App, out io.Writer) error {
	ids, err := app.Service.ListSessions(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	if len(ids) == 0 {
		fmt.Fprintln(out, "No active sessions found.")
		return nil
	}
	sort.Strings(ids)

	fmt.Fprintln(out, "Active Sessions:")
	for _, id := range ids {
		s, err := app.Service.GetSession(ctx, id)
		if errors.Is(err, domain.ErrSessionNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to load session %s: %w", id, err)
		}
		language := s.Language
		if language == "" {
			language = "-"
		}
		fmt.Fprintf(out, "- %s  cursor=%d language=%s complete=%t answers=%d\n",
			s.ID, s.CurrentQuestion, language, s.Complete, len(s.Answers))
	}
	return nil
}

// InspectSession prints the session as indented JSON.
func InspectSession(ctx context.Context, app *App, id string, out io.Writer) error {
	s, err := app.Service.GetSession(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load session '%s': %w", id, err)
	}
	data, err := json.MarshalIndent(NewSessionView(s), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	fmt.Fprintln(out, string(data))
	return nil
}

// RemoveSession deletes a session.
func RemoveSession(ctx context.Context, app *App, id string, out io.Writer) error {
	if err := app.Service.DeleteSession(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(out, "Removed session '%s'\n", id)
	return nil
}

// InspectJob prints the job record as indented JSON.
func InspectJob(ctx context.Context, app *App, id string, out io.Writer) error {
	job, err := app.Service.GetResult(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load job '%s': %w", id, err)
	}
	data, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode job: %w", err)
	}
	fmt.Fprintln(out, string(data))
	return nil
}

// RemoveJob deletes a job record.
func RemoveJob(ctx context.Context, app *App, id string, out io.Writer) error {
	if err := app.Service.DeleteResult(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(out, "Removed job '%s'\n", id)
	return nil
}
