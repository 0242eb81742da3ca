package embedding_test

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aretw0/triage/pkg/adapters/embedding"
	"github.com/aretw0/triage/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func magnitude(v []float32) float64 {
	var m float64
	for _, x := range v {
		m += float64(x) * float64(x)
	}
	return math.Sqrt(m)
}

func TestOllama_Embed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embeddings", r.URL.Path)
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "nomic-embed-text", req["model"])
		assert.Equal(t, "chest pain", req["prompt"])
		_, _ = w.Write([]byte(`{"embedding":[3,4]}`))
	}))
	defer srv.Close()

	e := embedding.NewOllama(srv.URL, "")
	v, err := e.Embed(context.Background(), "chest pain")
	require.NoError(t, err)
	assert.InDelta(t, 0.6, v[0], 1e-6)
	assert.InDelta(t, 0.8, v[1], 1e-6)
}

func TestOllama_ServerErrorIsUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := embedding.NewOllama(srv.URL, "m").Embed(context.Background(), "x")
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestOllama_ClientErrorIsPermanent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := embedding.NewOllama(srv.URL, "m").Embed(context.Background(), "x")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestHashing_Deterministic(t *testing.T) {
	h := embedding.NewHashing(128)
	ctx := context.Background()

	a, err := h.Embed(ctx, "Severe headache, sudden onset")
	require.NoError(t, err)
	b, err := h.Embed(ctx, "severe HEADACHE sudden onset")
	require.NoError(t, err)

	assert.Len(t, a, 128)
	assert.Equal(t, a, b)
	assert.InDelta(t, 1.0, magnitude(a), 1e-5)
}

func TestHashing_EmptyText(t *testing.T) {
	v, err := embedding.NewHashing(0).Embed(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, v, embedding.DefaultDimensions)
	assert.Zero(t, magnitude(v))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, []float32{0, 0}, embedding.Normalize([]float32{0, 0}))
	assert.InDelta(t, 1.0, magnitude(embedding.Normalize([]float32{1, 2, 3})), 1e-6)
}
