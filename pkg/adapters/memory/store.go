package memory

import (
	"context"
	"sort"
	"time"

	"github.com/aretw0/triage/pkg/domain"
	"github.com/patrickmn/go-cache"
)

// DefaultRetention is how long sessions and jobs are kept.
const DefaultRetention = 24 * time.Hour

// Option configures the in-memory stores.
type Option func(*options)

type options struct {
	ttl     time.Duration
	cleanup time.Duration
	now     func() time.Time
}

// WithTTL sets the retention window. Zero keeps entries forever.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		o.ttl = ttl
	}
}

// WithCleanupInterval sets how often expired entries are purged.
func WithCleanupInterval(d time.Duration) Option {
	return func(o *options) {
		o.cleanup = d
	}
}

// WithClock sets the time source used to compute session expiry.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func newOptions(opts []Option) options {
	o := options{ttl: DefaultRetention, cleanup: 10 * time.Minute, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func newCache(o options) *cache.Cache {
	ttl := o.ttl
	if ttl == 0 {
		ttl = cache.NoExpiration
	}
	return cache.New(ttl, o.cleanup)
}

// SessionStore implements ports.SessionStore in memory.
// Safe for concurrent use.
type SessionStore struct {
	cache *cache.Cache
	ttl   time.Duration
	now   func() time.Time
}

// NewSessionStore creates an in-memory session store.
func NewSessionStore(opts ...Option) *SessionStore {
	o := newOptions(opts)
	return &SessionStore{cache: newCache(o), ttl: o.ttl, now: o.now}
}

// Save stores a copy of the session until created_at plus the TTL.
// Saving an already expired session drops it.
func (s *SessionStore) Save(ctx context.Context, session *domain.Session) error {
	if s.ttl == 0 {
		s.cache.Set(session.ID, session.Clone(), cache.NoExpiration)
		return nil
	}

	created := session.CreatedAt
	if created.IsZero() {
		created = s.now()
	}
	remaining := created.Add(s.ttl).Sub(s.now())
	if remaining <= 0 {
		s.cache.Delete(session.ID)
		return domain.ErrSessionNotFound
	}
	s.cache.Set(session.ID, session.Clone(), remaining)
	return nil
}

// Load returns a copy so callers cannot mutate the stored record by pointer.
func (s *SessionStore) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	x, found := s.cache.Get(sessionID)
	if !found {
		return nil, domain.ErrSessionNotFound
	}
	return x.(*domain.Session).Clone(), nil
}

// Delete removes the session.
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	s.cache.Delete(sessionID)
	return nil
}

// List returns the unexpired session IDs in lexical order.
func (s *SessionStore) List(ctx context.Context) ([]string, error) {
	items := s.cache.Items()
	ids := make([]string, 0, len(items))
	for id := range items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
