package testutils

import (
	"context"
	"testing"

	"github.com/aretw0/triage/internal/seed"
	"github.com/aretw0/triage/pkg/adapters/embedding"
	"github.com/aretw0/triage/pkg/adapters/memory"
	"github.com/aretw0/triage/pkg/catalog"
	"github.com/stretchr/testify/require"
)

// Canned stage outputs for a benign headache.
const (
	BenignExtraction = "```json\n" + `{
  "patient_name": "John Doe",
  "date_of_birth": "1985-03-12",
  "phone_number": "555-0100",
  "emergency_contact_name": "Jane Doe",
  "emergency_contact_phone": "555-0101",
  "chief_complaint": "mild headache",
  "onset": "this morning",
  "duration": null,
  "pain_scale": 2,
  "pain_type": "dull",
  "location": "frontal",
  "radiation": null,
  "associated_symptoms": [],
  "medical_history": [],
  "current_medications": [],
  "allergies": ["none"]
}` + "\n```"

	BenignClassification = `Based on the protocols: {"color": "GREEN", "reasoning": "Mild headache without red flags", "risk_factors": [], "matched_protocols": ["GREEN: Mild headache without neurological signs"]}`

	BenignRouting = `{"department": "General Practice", "doctor_type": "General Practitioner", "urgency": "Within 1 hour", "room_type": "Consultation room", "preliminary_orders": ["Vital signs"], "contraindications": [], "notes_for_staff": "Stable patient with mild headache"}`
)

// BenignAnswers answers every catalog question for the benign scenario.
func BenignAnswers() []string {
	answers := []string{
		"John Doe",
		"1985-03-12",
		"555-0100",
		"Jane Doe",
		"555-0101",
		"mild headache",
		"this morning",
		"2",
		"forehead",
		"no",
		"none",
		"none",
		"none",
		"none",
	}
	return answers[:catalog.Total()]
}

// SeededReferences returns an in-memory reference store holding the seed
// documents, embedded offline.
func SeededReferences(t *testing.T) *memory.ReferenceStore {
	t.Helper()
	store := memory.NewReferenceStore(embedding.NewHashing(embedding.DefaultDimensions))
	_, err := seed.Seed(context.Background(), store, seed.Options{})
	require.NoError(t, err)
	return store
}
