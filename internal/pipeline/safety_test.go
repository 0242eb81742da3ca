package pipeline

import (
	"testing"

	"github.com/aretw0/triage/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestKnownAllergies(t *testing.T) {
	got := knownAllergies([]string{"None", " NKDA ", "n/a", "Penicillin (rash)", "penicillin", "Sulfa drugs.", ""})
	assert.Equal(t, []string{"Penicillin", "Sulfa drugs"}, got)
}

func TestCrossCheckAllergies(t *testing.T) {
	r := &domain.Routing{
		PreliminaryOrders: []string{
			"CBC, BMP",
			"Penicillin G 2.4 million units IM",
			"Amoxicillin 500mg",
		},
		Contraindications: []string{},
		NotesForStaff:     "Consider aspirin if ECG confirms",
	}

	crossCheckAllergies([]string{"penicillin", "Aspirin", "latex"}, r)

	assert.Equal(t, []string{"penicillin", "Aspirin"}, r.Contraindications)
	assert.Equal(t, []domain.SafetyFlag{
		{Allergy: "penicillin", Source: "Penicillin G 2.4 million units IM"},
		{Allergy: "Aspirin", Source: SourceNotes},
	}, r.SafetyFlags)
}

func TestCrossCheckAllergies_WholeWordsOnly(t *testing.T) {
	r := &domain.Routing{PreliminaryOrders: []string{"Sulfamethoxazole", "latex-free gloves"}}
	crossCheckAllergies([]string{"sulfa", "latex"}, r)

	assert.Equal(t, []string{"latex"}, r.Contraindications, "sulfa is not a whole word of sulfamethoxazole")
	assert.Len(t, r.SafetyFlags, 1)
}

func TestCrossCheckAllergies_KeepsExistingContraindication(t *testing.T) {
	r := &domain.Routing{
		PreliminaryOrders: []string{"Aspirin 325mg"},
		Contraindications: []string{"Avoid ASPIRIN (reported allergy)"},
	}
	crossCheckAllergies([]string{"aspirin"}, r)

	assert.Equal(t, []string{"Avoid ASPIRIN (reported allergy)"}, r.Contraindications)
	assert.Len(t, r.SafetyFlags, 1)
}

func TestCrossCheckAllergies_NoneReported(t *testing.T) {
	r := &domain.Routing{PreliminaryOrders: []string{"None needed"}}
	crossCheckAllergies([]string{"none"}, r)
	assert.Empty(t, r.Contraindications)
	assert.Empty(t, r.SafetyFlags)
}
