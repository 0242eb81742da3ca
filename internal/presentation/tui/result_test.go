package tui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aretw0/triage/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultMarkdown(t *testing.T) {
	pain := 7
	res := &domain.PipelineResult{
		StructuredIntake: domain.StructuredIntake{
			PatientName:    "Ana Souza",
			ChiefComplaint: "chest pain",
			PainScale:      &pain,
			Allergies:      []string{"aspirin"},
		},
		Classification: domain.Classification{
			Level:     domain.SeverityRed,
			Priority:  domain.PriorityEmergency,
			Reasoning: "Cardiac features",
		},
		Routing: domain.Routing{
			Department:        "Cardiology",
			Urgency:           domain.UrgencyImmediate,
			PreliminaryOrders: []string{"12-lead ECG", "Aspirin 325mg"},
			Contraindications: []string{"aspirin"},
			SafetyFlags:       []domain.SafetyFlag{{Allergy: "aspirin", Source: "Aspirin 325mg"}},
		},
	}

	md := ResultMarkdown(res)
	assert.Contains(t, md, "RED")
	assert.Contains(t, md, "EMERGENCY")
	assert.Contains(t, md, "- **Pain:** 7/10")
	assert.Contains(t, md, "1. 12-lead ECG\n2. Aspirin 325mg")
	assert.Contains(t, md, "**aspirin** appears in: Aspirin 325mg")
	assert.NotContains(t, md, "Room:")
	assert.Less(t, strings.Index(md, "## Classification"), strings.Index(md, "## Routing"))
}

func TestRenderer(t *testing.T) {
	render, err := NewRenderer(80)
	require.NoError(t, err)

	out, err := render("# Title\n\nbody text")
	require.NoError(t, err)
	assert.Contains(t, out, "body text")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "1.2.3")
	assert.Contains(t, buf.String(), "v1.2.3")
	assert.Contains(t, buf.String(), "|___/")
}
