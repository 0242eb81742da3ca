package ports

import (
	"context"

	"github.com/aretw0/triage/pkg/domain"
)

// SessionStore persists intake sessions.
type SessionStore interface {
	// Save creates or replaces the session under session.ID.
	Save(ctx context.Context, session *domain.Session) error

	// Load retrieves a session.
	// Returns domain.ErrSessionNotFound if the session does not exist or has expired.
	Load(ctx context.Context, sessionID string) (*domain.Session, error)

	// Delete removes a session. Deleting an unknown session is not an error.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of the sessions still retained.
	List(ctx context.Context) ([]string, error)
}

// ResultStore persists pipeline jobs and their results.
type ResultStore interface {
	// Save creates or updates a job. Updating a job that is already
	// completed or failed returns domain.ErrJobFinalized.
	// A job becomes visible to Load only after Save returns.
	Save(ctx context.Context, job *domain.Job) error

	// Load retrieves a job.
	// Returns domain.ErrJobNotFound if the job does not exist or has expired.
	Load(ctx context.Context, jobID string) (*domain.Job, error)

	// Delete removes a job.
	Delete(ctx context.Context, jobID string) error
}
