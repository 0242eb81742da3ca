// Package redis provides Redis-backed session and result stores and a
// distributed locker.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/triage/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// farFuture is the index score of keys without expiry (2100-01-01).
const farFuture = 4102444800

// Option configures the Redis stores.
type Option func(*config)

type config struct {
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

// WithTTL sets the expiration of stored records.
func WithTTL(ttl time.Duration) Option {
	return func(c *config) {
		c.ttl = ttl
	}
}

// WithClock sets the time source used to compute session expiry.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.now = now
		}
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(c *config) {
		c.prefix = prefix
	}
}

func newConfig(defaultPrefix string, opts []Option) config {
	c := config{prefix: defaultPrefix, ttl: 24 * time.Hour, now: time.Now}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// NewClient creates a go-redis client from connection settings.
func NewClient(address, password string, db int) *backend.Client {
	return backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
}

// SessionStore implements ports.SessionStore using Redis.
type SessionStore struct {
	client *backend.Client
	config
}

// NewSessionStore creates a session store from an existing client.
func NewSessionStore(client *backend.Client, opts ...Option) *SessionStore {
	return &SessionStore{
		client: client,
		config: newConfig("triage:session:", opts),
	}
}

func (s *SessionStore) key(sessionID string) string {
	return s.prefix + sessionID
}

// indexKey lives beside the prefix rather than under it, so no session ID
// can address it when the prefix ends with a separator.
func (s *SessionStore) indexKey() string {
	if strings.HasSuffix(s.prefix, ":") {
		return strings.TrimSuffix(s.prefix, ":") + ".index"
	}
	return s.prefix + ".index"
}

// expiry returns the absolute expiry of a session. Sessions expire a fixed
// TTL after creation; saving never extends it.
func (s *SessionStore) expiry(session *domain.Session) time.Time {
	created := session.CreatedAt
	if created.IsZero() {
		created = s.now()
	}
	return created.Add(s.ttl)
}

// Save persists the session as JSON until its creation-relative expiry,
// records that expiry in a sorted-set index and prunes index entries that
// have already expired.
func (s *SessionStore) Save(ctx context.Context, session *domain.Session) error {
	key := s.key(session.ID)
	if key == s.indexKey() {
		return fmt.Errorf("session id %q collides with the session index key", session.ID)
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	now := s.now()
	var remaining time.Duration
	score := float64(farFuture)
	if s.ttl > 0 {
		expiresAt := s.expiry(session)
		remaining = expiresAt.Sub(now)
		if remaining <= 0 {
			if err := s.Delete(ctx, session.ID); err != nil {
				return fmt.Errorf("failed to drop expired session: %w", err)
			}
			return domain.ErrSessionNotFound
		}
		score = float64(expiresAt.Unix())
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, key, data, remaining)
	pipe.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%d", now.Unix()))
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: score, Member: session.ID})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save session to redis: %w", err)
	}
	return nil
}

// Load retrieves the session from Redis.
func (s *SessionStore) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	val, err := s.client.Get(ctx, s.key(sessionID)).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session from redis: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal([]byte(val), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	if session.Answers == nil {
		session.Answers = make(map[int]string)
	}
	return &session, nil
}

// Delete removes the session and its index entry.
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.key(sessionID))
	pipe.ZRem(ctx, s.indexKey(), sessionID)
	_, err := pipe.Exec(ctx)
	return err
}

// List prunes expired entries from the index and returns the rest.
func (s *SessionStore) List(ctx context.Context) ([]string, error) {
	now := s.now().Unix()
	if err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%d", now)).Err(); err != nil {
		return nil, fmt.Errorf("failed to prune expired sessions: %w", err)
	}

	sessions, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}
