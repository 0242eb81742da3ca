package cli

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/aretw0/triage/internal/seed"
)

// Seed indexes the reference documents into the configured store and
// prints a per-collection summary.
func Seed(ctx context.Context, app *App, force bool, out io.Writer) error {
	report, err := seed.Seed(ctx, app.Indexer(), seed.Options{Force: force})
	if err != nil {
		return err
	}

	collections := make([]string, 0, len(report.Total))
	for c := range report.Total {
		collections = append(collections, c)
	}
	sort.Strings(collections)

	for _, c := range collections {
		fmt.Fprintf(out, "%-20s indexed %3d, total %3d\n", c, report.Indexed[c], report.Total[c])
	}
	return nil
}
