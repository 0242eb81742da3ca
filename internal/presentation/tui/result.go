package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/triage/pkg/domain"
)

var levelBadge = map[domain.Severity]string{
	domain.SeverityRed:    "🔴 RED",
	domain.SeverityYellow: "🟡 YELLOW",
	domain.SeverityGreen:  "🟢 GREEN",
	domain.SeverityBlue:   "🔵 BLUE",
}

// ResultMarkdown formats a pipeline result for staff review.
func ResultMarkdown(res *domain.PipelineResult) string {
	in := res.StructuredIntake
	c := res.Classification
	r := res.Routing

	var b strings.Builder
	fmt.Fprintf(&b, "# Triage result\n\n")
	fmt.Fprintf(&b, "**%s** · %s · %s\n\n", badge(c.Level), c.Priority, r.Urgency)

	b.WriteString("## Patient\n\n")
	fmt.Fprintf(&b, "- **Name:** %s\n", in.PatientName)
	fmt.Fprintf(&b, "- **Date of birth:** %s\n", in.DateOfBirth)
	fmt.Fprintf(&b, "- **Chief complaint:** %s\n", in.ChiefComplaint)
	fmt.Fprintf(&b, "- **Onset:** %s\n", in.Onset)
	if in.PainScale != nil {
		fmt.Fprintf(&b, "- **Pain:** %d/10\n", *in.PainScale)
	}
	listLine(&b, "Symptoms", in.AssociatedSymptoms)
	listLine(&b, "Allergies", in.Allergies)

	b.WriteString("\n## Classification\n\n")
	b.WriteString(c.Reasoning + "\n\n")
	listLine(&b, "Risk factors", c.RiskFactors)
	listLine(&b, "Matched protocols", c.MatchedProtocols)

	b.WriteString("\n## Routing\n\n")
	fmt.Fprintf(&b, "- **Department:** %s\n", r.Department)
	fmt.Fprintf(&b, "- **Doctor:** %s\n", r.DoctorType)
	if r.RoomType != "" {
		fmt.Fprintf(&b, "- **Room:** %s\n", r.RoomType)
	}

	if len(r.PreliminaryOrders) > 0 {
		b.WriteString("\n### Preliminary orders\n\n")
		for i, o := range r.PreliminaryOrders {
			fmt.Fprintf(&b, "%d. %s\n", i+1, o)
		}
	}

	if len(r.SafetyFlags) > 0 {
		b.WriteString("\n### ⚠ Allergy alerts\n\n")
		for _, f := range r.SafetyFlags {
			fmt.Fprintf(&b, "- **%s** appears in: %s\n", f.Allergy, f.Source)
		}
	}
	listLine(&b, "Contraindications", r.Contraindications)

	if r.NotesForStaff != "" {
		fmt.Fprintf(&b, "\n> %s\n", r.NotesForStaff)
	}
	return b.String()
}

func badge(level domain.Severity) string {
	if s, ok := levelBadge[level]; ok {
		return s
	}
	return string(level)
}

func listLine(b *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "- **%s:** %s\n", label, strings.Join(items, ", "))
}
