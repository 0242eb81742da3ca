package ports

import (
	"context"

	"github.com/aretw0/triage/pkg/domain"
)

// Reference collections queried by the pipeline.
const (
	CollectionTriageProtocols   = "triage_protocols"
	CollectionRoutingRules      = "routing_rules"
	CollectionPreliminaryOrders = "preliminary_orders"
)

// Collections lists every reference collection.
var Collections = []string{
	CollectionTriageProtocols,
	CollectionRoutingRules,
	CollectionPreliminaryOrders,
}

// DefaultTopK is used when a search asks for zero or fewer results.
const DefaultTopK = 5

// ReferenceStore is a read-only similarity oracle over seeded reference documents.
type ReferenceStore interface {
	// Search returns up to topK snippets from collection, ordered by descending score.
	Search(ctx context.Context, collection, query string, topK int) ([]domain.Snippet, error)
}

// Document is a reference text indexed under a stable ID.
type Document struct {
	ID   string
	Text string
}

// ReferenceIndexer loads reference documents. It is only used by seeding.
type ReferenceIndexer interface {
	// Index inserts or replaces docs in collection.
	Index(ctx context.Context, collection string, docs []Document) error

	// Count returns how many documents collection holds.
	Count(ctx context.Context, collection string) (int, error)
}

// Embedder turns text into a unit-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Reasoner is the hosted language model.
type Reasoner interface {
	// Complete sends a stage instruction and its input and returns the raw
	// model text, which may wrap the expected JSON in prose or code fences.
	// Transient failures wrap domain.ErrUpstreamUnavailable.
	Complete(ctx context.Context, instruction, input string) (string, error)
}
