package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/triage/pkg/adapters/embedding"
	"github.com/aretw0/triage/pkg/adapters/memory"
	"github.com/aretw0/triage/pkg/domain"
	"github.com/aretw0/triage/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySessionStore_Contract(t *testing.T) {
	ports.RunSessionStoreContract(t, memory.NewSessionStore())
}

func TestMemoryResultStore_Contract(t *testing.T) {
	ports.RunResultStoreContract(t, memory.NewResultStore())
}

func TestMemorySessionStore_Expiry(t *testing.T) {
	store := memory.NewSessionStore(memory.WithTTL(50*time.Millisecond), memory.WithCleanupInterval(10*time.Millisecond))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.NewSession("short-lived", time.Now())))
	_, err := store.Load(ctx, "short-lived")
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		_, err := store.Load(ctx, "short-lived")
		return err == domain.ErrSessionNotFound
	}, time.Second, 10*time.Millisecond)

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestMemorySessionStore_TTLDoesNotSlide(t *testing.T) {
	start := time.Now()
	now := start
	store := memory.NewSessionStore(
		memory.WithTTL(time.Hour),
		memory.WithCleanupInterval(10*time.Millisecond),
		memory.WithClock(func() time.Time { return now }),
	)
	ctx := context.Background()

	s := domain.NewSession("steady", start)
	require.NoError(t, store.Save(ctx, s))

	// 50ms of the hour remain; a fresh save must not restore the full window.
	now = start.Add(time.Hour - 50*time.Millisecond)
	s.Answers[1] = "late answer"
	require.NoError(t, store.Save(ctx, s))

	assert.Eventually(t, func() bool {
		_, err := store.Load(ctx, "steady")
		return err == domain.ErrSessionNotFound
	}, time.Second, 10*time.Millisecond)

	now = start.Add(2 * time.Hour)
	assert.ErrorIs(t, store.Save(ctx, s), domain.ErrSessionNotFound)
	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestMemorySessionStore_ZeroTTLKeepsForever(t *testing.T) {
	store := memory.NewSessionStore(memory.WithTTL(0))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.NewSession("old", time.Now().Add(-48*time.Hour))))
	_, err := store.Load(ctx, "old")
	assert.NoError(t, err)
}

func TestMemorySessionStore_SaveIsolatesCaller(t *testing.T) {
	store := memory.NewSessionStore()
	ctx := context.Background()

	s := domain.NewSession("iso", time.Now())
	s.Answers[1] = "original"
	require.NoError(t, store.Save(ctx, s))

	s.Answers[1] = "changed after save"

	loaded, err := store.Load(ctx, "iso")
	require.NoError(t, err)
	assert.Equal(t, "original", loaded.Answers[1])
}

func TestMemoryReferenceStore_Search(t *testing.T) {
	ctx := context.Background()
	store := memory.NewReferenceStore(embedding.NewHashing(256))

	err := store.Index(ctx, ports.CollectionTriageProtocols, []ports.Document{
		{ID: "p1", Text: "RED: chest pain radiating to the left arm with diaphoresis"},
		{ID: "p2", Text: "BLUE: common cold symptoms, mild congestion, no fever"},
		{ID: "p3", Text: "GREEN: minor laceration, bleeding controlled"},
	})
	require.NoError(t, err)

	n, err := store.Count(ctx, ports.CollectionTriageProtocols)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	results, err := store.Search(ctx, ports.CollectionTriageProtocols, "chest pain diaphoresis", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Contains(t, results[0].Text, "chest pain")
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)

	empty, err := store.Search(ctx, ports.CollectionRoutingRules, "chest pain", 5)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemoryReferenceStore_IndexReplacesByID(t *testing.T) {
	ctx := context.Background()
	store := memory.NewReferenceStore(embedding.NewHashing(64))

	require.NoError(t, store.Index(ctx, "c", []ports.Document{{ID: "a", Text: "old text"}}))
	require.NoError(t, store.Index(ctx, "c", []ports.Document{{ID: "a", Text: "new text"}}))

	n, err := store.Count(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	results, err := store.Search(ctx, "c", "text", 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "new text", results[0].Text)
}
