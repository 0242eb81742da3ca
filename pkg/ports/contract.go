package ports

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/triage/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSessionStoreContract verifies that a SessionStore implementation
// adheres to the interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	sessionID := "contract-session-" + time.Now().Format("20060102150405.000")

	t.Run("Save and Load", func(t *testing.T) {
		s := domain.NewSession(sessionID, time.Now().UTC())
		s.Language = "es"
		s.CurrentQuestion = 3
		s.Answers[1] = "Ana Lopez"
		s.Answers[2] = "1990-05-04"

		require.NoError(t, store.Save(ctx, s), "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, "es", loaded.Language)
		assert.Equal(t, 3, loaded.CurrentQuestion)
		assert.Equal(t, "Ana Lopez", loaded.Answers[1])
		assert.Equal(t, "1990-05-04", loaded.Answers[2])
		assert.False(t, loaded.Complete)
	})

	t.Run("Load returns a copy", func(t *testing.T) {
		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		loaded.Answers[1] = "mutated"

		again, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "Ana Lopez", again.Answers[1])
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		require.NoError(t, store.Save(ctx, domain.NewSession(id1, time.Now())))
		require.NoError(t, store.Save(ctx, domain.NewSession(id2, time.Now())))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, sessionID), "Delete should not return error")

		_, err := store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")

		assert.NoError(t, store.Delete(ctx, sessionID), "Deleting twice should be a no-op")
	})
}

// RunResultStoreContract verifies that a ResultStore implementation
// adheres to the interface contract.
func RunResultStoreContract(t *testing.T, store ResultStore) {
	ctx := context.Background()
	prefix := "contract-job-" + time.Now().Format("20060102150405.000")

	t.Run("Pending then Completed", func(t *testing.T) {
		id := prefix + "-ok"
		job := domain.NewJob(id, "sess-1", time.Now().UTC())
		require.NoError(t, store.Save(ctx, job))

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.JobPending, loaded.Status)
		assert.Nil(t, loaded.Result)

		result := &domain.PipelineResult{
			SessionID:      "sess-1",
			Classification: domain.Classification{Level: domain.SeverityGreen, Priority: domain.PriorityStandard},
			Routing:        domain.Routing{Department: "General Practice"},
		}
		loaded.Complete(result, time.Now().UTC())
		require.NoError(t, store.Save(ctx, loaded))

		first, err := store.Load(ctx, id)
		require.NoError(t, err)
		second, err := store.Load(ctx, id)
		require.NoError(t, err)

		assert.Equal(t, domain.JobCompleted, first.Status)
		require.NotNil(t, first.Result)
		assert.Equal(t, "General Practice", first.Result.Routing.Department)
		assert.Equal(t, first.Result, second.Result, "reads must be idempotent")
	})

	t.Run("Finalized jobs are immutable", func(t *testing.T) {
		id := prefix + "-final"
		job := domain.NewJob(id, "sess-2", time.Now().UTC())
		job.Fail(domain.NewParseError(domain.StageClassifying, "oops", assert.AnError), time.Now().UTC())
		require.NoError(t, store.Save(ctx, job))

		overwrite := domain.NewJob(id, "sess-2", time.Now().UTC())
		overwrite.Complete(&domain.PipelineResult{SessionID: "sess-2"}, time.Now().UTC())
		assert.ErrorIs(t, store.Save(ctx, overwrite), domain.ErrJobFinalized)

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.JobFailed, loaded.Status)
		assert.Nil(t, loaded.Result)
		require.NotNil(t, loaded.Failure)
		assert.Equal(t, domain.StageClassifying, loaded.Failure.Stage)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, prefix+"-missing")
		assert.ErrorIs(t, err, domain.ErrJobNotFound)
	})

	t.Run("Concurrent finalize", func(t *testing.T) {
		id := prefix + "-race"
		require.NoError(t, store.Save(ctx, domain.NewJob(id, "sess-3", time.Now().UTC())))

		var wg sync.WaitGroup
		var mu sync.Mutex
		succeeded := 0
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				job := domain.NewJob(id, "sess-3", time.Now().UTC())
				job.Complete(&domain.PipelineResult{SessionID: "sess-3"}, time.Now().UTC())
				if err := store.Save(ctx, job); err == nil {
					mu.Lock()
					succeeded++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, succeeded, "exactly one writer may finalize a job")
	})

	t.Run("Delete", func(t *testing.T) {
		id := prefix + "-ok"
		require.NoError(t, store.Delete(ctx, id))
		_, err := store.Load(ctx, id)
		assert.ErrorIs(t, err, domain.ErrJobNotFound)
	})
}
