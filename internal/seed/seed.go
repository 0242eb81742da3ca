// Package seed loads the reference documents the pipeline consults.
package seed

import (
	"context"
	"fmt"

	"github.com/aretw0/triage/pkg/ports"
)

// Options controls seeding.
type Options struct {
	// Force re-indexes collections that already hold every document.
	Force bool
}

// Report lists, per collection, the documents indexed by this call and
// the count afterwards.
type Report struct {
	Indexed map[string]int
	Total   map[string]int
}

// Documents returns the seed documents of collection with their stable IDs.
func Documents(collection string) ([]ports.Document, error) {
	var texts []string
	var prefix string
	switch collection {
	case ports.CollectionTriageProtocols:
		texts, prefix = triageProtocols, "protocol"
	case ports.CollectionRoutingRules:
		texts, prefix = routingRules, "rule"
	case ports.CollectionPreliminaryOrders:
		texts, prefix = preliminaryOrders, "order"
	default:
		return nil, fmt.Errorf("unknown collection %q", collection)
	}

	docs := make([]ports.Document, len(texts))
	for i, t := range texts {
		docs[i] = ports.Document{ID: fmt.Sprintf("%s_%d", prefix, i), Text: t}
	}
	return docs, nil
}

// Seed indexes every collection. Indexing is an upsert by ID, so running it
// twice leaves the same documents in place.
func Seed(ctx context.Context, indexer ports.ReferenceIndexer, opts Options) (*Report, error) {
	report := &Report{
		Indexed: make(map[string]int, len(ports.Collections)),
		Total:   make(map[string]int, len(ports.Collections)),
	}

	for _, collection := range ports.Collections {
		docs, err := Documents(collection)
		if err != nil {
			return nil, err
		}

		have, err := indexer.Count(ctx, collection)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", collection, err)
		}
		if have >= len(docs) && !opts.Force {
			report.Total[collection] = have
			continue
		}

		if err := indexer.Index(ctx, collection, docs); err != nil {
			return nil, fmt.Errorf("failed to index %s: %w", collection, err)
		}
		total, err := indexer.Count(ctx, collection)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", collection, err)
		}
		report.Indexed[collection] = len(docs)
		report.Total[collection] = total
	}
	return report, nil
}
