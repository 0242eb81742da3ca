package seed_test

import (
	"context"
	"testing"

	"github.com/aretw0/triage/internal/seed"
	"github.com/aretw0/triage/pkg/adapters/embedding"
	"github.com/aretw0/triage/pkg/adapters/memory"
	"github.com/aretw0/triage/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocuments(t *testing.T) {
	want := map[string]int{
		ports.CollectionTriageProtocols:   29,
		ports.CollectionRoutingRules:      31,
		ports.CollectionPreliminaryOrders: 22,
	}
	for collection, n := range want {
		docs, err := seed.Documents(collection)
		require.NoError(t, err)
		assert.Len(t, docs, n, collection)

		ids := make(map[string]bool)
		for _, d := range docs {
			assert.NotEmpty(t, d.Text)
			assert.False(t, ids[d.ID], "duplicate id %s", d.ID)
			ids[d.ID] = true
		}
	}

	docs, err := seed.Documents(ports.CollectionTriageProtocols)
	require.NoError(t, err)
	assert.Equal(t, "protocol_0", docs[0].ID)

	_, err = seed.Documents("unknown")
	assert.Error(t, err)
}

func TestSeed_Idempotent(t *testing.T) {
	store := memory.NewReferenceStore(embedding.NewHashing(256))
	ctx := context.Background()

	report, err := seed.Seed(ctx, store, seed.Options{})
	require.NoError(t, err)
	assert.Equal(t, 29, report.Indexed[ports.CollectionTriageProtocols])
	assert.Equal(t, 31, report.Total[ports.CollectionRoutingRules])

	again, err := seed.Seed(ctx, store, seed.Options{})
	require.NoError(t, err)
	assert.Empty(t, again.Indexed, "a seeded store is left alone")
	assert.Equal(t, 22, again.Total[ports.CollectionPreliminaryOrders])

	forced, err := seed.Seed(ctx, store, seed.Options{Force: true})
	require.NoError(t, err)
	assert.Equal(t, 22, forced.Indexed[ports.CollectionPreliminaryOrders])
	assert.Equal(t, 22, forced.Total[ports.CollectionPreliminaryOrders], "upsert never duplicates")
}

func TestSeed_SearchFindsRelevantProtocol(t *testing.T) {
	store := memory.NewReferenceStore(embedding.NewHashing(embedding.DefaultDimensions))
	ctx := context.Background()
	_, err := seed.Seed(ctx, store, seed.Options{})
	require.NoError(t, err)

	snippets, err := store.Search(ctx, ports.CollectionPreliminaryOrders, "anaphylaxis epinephrine airway", 3)
	require.NoError(t, err)
	require.NotEmpty(t, snippets)
	assert.Contains(t, snippets[0].Text, "Anaphylaxis")
}
