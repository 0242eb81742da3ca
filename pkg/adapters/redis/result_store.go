package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/triage/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// maxTxRetries bounds optimistic transaction retries under contention.
const maxTxRetries = 10

// ResultStore implements ports.ResultStore using Redis.
type ResultStore struct {
	client *backend.Client
	config
}

// NewResultStore creates a result store from an existing client.
func NewResultStore(client *backend.Client, opts ...Option) *ResultStore {
	return &ResultStore{
		client: client,
		config: newConfig("triage:job:", opts),
	}
}

func (s *ResultStore) key(jobID string) string {
	return s.prefix + jobID
}

// Save writes the job inside a WATCH transaction so a job finalized by
// another writer is never overwritten.
func (s *ResultStore) Save(ctx context.Context, job *domain.Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}
	key := s.key(job.ID)

	txf := func(tx *backend.Tx) error {
		current, err := tx.Get(ctx, key).Result()
		switch {
		case errors.Is(err, backend.Nil):
		case err != nil:
			return err
		default:
			var existing domain.Job
			if err := json.Unmarshal([]byte(current), &existing); err != nil {
				return fmt.Errorf("failed to unmarshal stored job: %w", err)
			}
			if existing.Final() {
				return domain.ErrJobFinalized
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
			pipe.Set(ctx, key, data, s.ttl)
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, backend.TxFailedErr) {
			continue
		}
		if err != nil && !errors.Is(err, domain.ErrJobFinalized) {
			return fmt.Errorf("failed to save job to redis: %w", err)
		}
		return err
	}
	return fmt.Errorf("failed to save job to redis: too much contention on %s", job.ID)
}

// Load retrieves the job from Redis.
func (s *ResultStore) Load(ctx context.Context, jobID string) (*domain.Job, error) {
	val, err := s.client.Get(ctx, s.key(jobID)).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job from redis: %w", err)
	}

	var job domain.Job
	if err := json.Unmarshal([]byte(val), &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}
	return &job, nil
}

// Delete removes the job.
func (s *ResultStore) Delete(ctx context.Context, jobID string) error {
	return s.client.Del(ctx, s.key(jobID)).Err()
}
