package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/aretw0/triage/pkg/domain"
	"github.com/aretw0/triage/pkg/ports"
)

type indexedDoc struct {
	id     string
	text   string
	vector []float32
}

// ReferenceStore implements ports.ReferenceStore and ports.ReferenceIndexer
// with a brute-force cosine search over embedded documents.
type ReferenceStore struct {
	embedder ports.Embedder

	mu          sync.RWMutex
	collections map[string][]indexedDoc
}

// NewReferenceStore creates an empty reference store using embedder for
// both documents and queries.
func NewReferenceStore(embedder ports.Embedder) *ReferenceStore {
	return &ReferenceStore{
		embedder:    embedder,
		collections: make(map[string][]indexedDoc),
	}
}

// Index embeds docs and inserts them, replacing documents with the same ID.
func (s *ReferenceStore) Index(ctx context.Context, collection string, docs []ports.Document) error {
	embedded := make([]indexedDoc, 0, len(docs))
	for _, d := range docs {
		v, err := s.embedder.Embed(ctx, d.Text)
		if err != nil {
			return fmt.Errorf("failed to embed document %s: %w", d.ID, err)
		}
		embedded = append(embedded, indexedDoc{id: d.ID, text: d.Text, vector: v})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	existing := s.collections[collection]
	for _, d := range embedded {
		replaced := false
		for i := range existing {
			if existing[i].id == d.id {
				existing[i] = d
				replaced = true
				break
			}
		}
		if !replaced {
			existing = append(existing, d)
		}
	}
	s.collections[collection] = existing
	return nil
}

// Count returns the number of documents in collection.
func (s *ReferenceStore) Count(ctx context.Context, collection string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.collections[collection]), nil
}

// Search returns the topK most similar documents. Equal scores keep
// insertion order so results are reproducible.
func (s *ReferenceStore) Search(ctx context.Context, collection, query string, topK int) ([]domain.Snippet, error) {
	if topK <= 0 {
		topK = ports.DefaultTopK
	}
	q, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	s.mu.RLock()
	docs := s.collections[collection]
	snippets := make([]domain.Snippet, len(docs))
	for i, d := range docs {
		snippets[i] = domain.Snippet{Text: d.text, Score: cosine(q, d.vector)}
	}
	s.mu.RUnlock()

	sort.SliceStable(snippets, func(i, j int) bool {
		return snippets[i].Score > snippets[j].Score
	})
	if len(snippets) > topK {
		snippets = snippets[:topK]
	}
	return snippets, nil
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
