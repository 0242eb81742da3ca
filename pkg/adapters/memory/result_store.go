package memory

import (
	"context"
	"sync"

	"github.com/aretw0/triage/pkg/domain"
	"github.com/patrickmn/go-cache"
)

// ResultStore implements ports.ResultStore in memory.
// Safe for concurrent use.
type ResultStore struct {
	cache *cache.Cache
	mu    sync.Mutex // serializes the finalized check with the write
}

// NewResultStore creates an in-memory result store.
func NewResultStore(opts ...Option) *ResultStore {
	return &ResultStore{cache: newCache(newOptions(opts))}
}

// Save creates or updates a job unless the stored one is already final.
func (s *ResultStore) Save(ctx context.Context, job *domain.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if x, found := s.cache.Get(job.ID); found && x.(*domain.Job).Final() {
		return domain.ErrJobFinalized
	}
	s.cache.Set(job.ID, job.Clone(), cache.DefaultExpiration)
	return nil
}

// Load returns a copy of the job.
func (s *ResultStore) Load(ctx context.Context, jobID string) (*domain.Job, error) {
	x, found := s.cache.Get(jobID)
	if !found {
		return nil, domain.ErrJobNotFound
	}
	return x.(*domain.Job).Clone(), nil
}

// Delete removes the job.
func (s *ResultStore) Delete(ctx context.Context, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Delete(jobID)
	return nil
}
