// Package graph draws the pipeline state machine as a Mermaid flowchart.
package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/triage/pkg/domain"
)

// Overlay marks the stages a job went through.
type Overlay struct {
	Visited []domain.Stage
	Current domain.Stage
}

// stages in pipeline order; every working stage may fall through to failed.
var stages = []domain.Stage{
	domain.StagePending,
	domain.StageExtracting,
	domain.StageClassifying,
	domain.StageRouting,
	domain.StageDone,
}

// Pipeline produces the Mermaid flowchart of the pipeline. Shapes:
// - pending and done: ((Circle))
// - model stages: [[Subroutine]]
// - failed: {{Hexagon}}
// Overlay styles are applied when overlay is non-nil.
func Pipeline(overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, st := range append(stages, domain.StageFailed) {
		opener, closer := "[[", "]]"
		switch st {
		case domain.StagePending, domain.StageDone:
			opener, closer = "((", "))"
		case domain.StageFailed:
			opener, closer = "{{", "}}"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", st, opener, st, closer)
	}

	for i := 0; i+1 < len(stages); i++ {
		fmt.Fprintf(&sb, "    %s --> %s\n", stages[i], stages[i+1])
	}
	for _, st := range []domain.Stage{domain.StageExtracting, domain.StageClassifying, domain.StageRouting} {
		fmt.Fprintf(&sb, "    %s -. \"error\" .-> %s\n", st, domain.StageFailed)
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Black text keeps contrast on both light and dark themes.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[domain.Stage]bool)
		for _, st := range overlay.Visited {
			if st != "" && !seen[st] {
				seen[st] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", st)
			}
		}
		if overlay.Current != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", overlay.Current)
		}
	}

	return sb.String()
}

// OverlayFor derives the path of job through the pipeline.
func OverlayFor(job *domain.Job) *Overlay {
	last := job.Stage
	if job.Status == domain.JobFailed && job.Failure != nil {
		last = job.Failure.Stage
	}

	o := &Overlay{Current: job.Stage}
	for _, st := range stages {
		if st == last {
			break
		}
		o.Visited = append(o.Visited, st)
	}
	if job.Status == domain.JobFailed {
		o.Visited = append(o.Visited, last)
	}
	return o
}
