package pipeline

import (
	"github.com/aretw0/triage/pkg/schema"
)

var extractionSchema = func() schema.Schema {
	s := schema.MustParseTypeMap(map[string]string{
		"patient_name":            "text",
		"date_of_birth":           "text",
		"chief_complaint":         "text",
		"onset":                   "text",
		"phone_number":            "string?",
		"emergency_contact_name":  "string?",
		"emergency_contact_phone": "string?",
		"duration":                "string?",
		"pain_type":               "string?",
		"location":                "string?",
		"radiation":               "string?",
		"associated_symptoms":     "[string]?",
		"medical_history":         "[string]?",
		"current_medications":     "[string]?",
		"allergies":               "[string]?",
	})
	s["pain_scale"] = schema.Optional(schema.IntRange(1, 10))
	return s
}()

var classificationSchema = schema.Schema{
	"color":             schema.Enum("RED", "YELLOW", "GREEN", "BLUE"),
	"reasoning":         schema.NonEmpty(),
	"risk_factors":      schema.Optional(schema.Slice(schema.String())),
	"matched_protocols": schema.Optional(schema.Slice(schema.String())),
}

var routingSchema = schema.MustParseTypeMap(map[string]string{
	"department":         "text",
	"doctor_type":        "text",
	"urgency":            "string?",
	"room_type":          "string?",
	"preliminary_orders": "[string]?",
	"contraindications":  "[string]?",
	"notes_for_staff":    "string?",
})
