package domain

import "time"

// StructuredIntake is the normalized form of the intake answers.
type StructuredIntake struct {
	Language string `json:"language" mapstructure:"language"`

	PatientName           string `json:"patient_name" mapstructure:"patient_name"`
	DateOfBirth           string `json:"date_of_birth" mapstructure:"date_of_birth"`
	PhoneNumber           string `json:"phone_number,omitempty" mapstructure:"phone_number"`
	EmergencyContactName  string `json:"emergency_contact_name,omitempty" mapstructure:"emergency_contact_name"`
	EmergencyContactPhone string `json:"emergency_contact_phone,omitempty" mapstructure:"emergency_contact_phone"`

	ChiefComplaint string `json:"chief_complaint" mapstructure:"chief_complaint"`
	Onset          string `json:"onset" mapstructure:"onset"`
	Duration       string `json:"duration,omitempty" mapstructure:"duration"`
	PainScale      *int   `json:"pain_scale,omitempty" mapstructure:"pain_scale"`
	PainType       string `json:"pain_type,omitempty" mapstructure:"pain_type"`
	Location       string `json:"location,omitempty" mapstructure:"location"`
	Radiation      string `json:"radiation,omitempty" mapstructure:"radiation"`

	AssociatedSymptoms []string `json:"associated_symptoms" mapstructure:"associated_symptoms"`
	MedicalHistory     []string `json:"medical_history" mapstructure:"medical_history"`
	CurrentMedications []string `json:"current_medications" mapstructure:"current_medications"`
	Allergies          []string `json:"allergies" mapstructure:"allergies"`
}

// Snippet is one reference document returned by a similarity search.
type Snippet struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// Classification is the output of the classification stage.
type Classification struct {
	Level            Severity  `json:"level" mapstructure:"color"`
	Priority         Priority  `json:"priority" mapstructure:"-"`
	Reasoning        string    `json:"reasoning" mapstructure:"reasoning"`
	RiskFactors      []string  `json:"risk_factors" mapstructure:"risk_factors"`
	MatchedProtocols []string  `json:"matched_protocols" mapstructure:"matched_protocols"`
	References       []Snippet `json:"references" mapstructure:"-"`
}

// SafetyFlag records an allergy that appears in a proposed order or note.
type SafetyFlag struct {
	Allergy string `json:"allergy"`
	Source  string `json:"source"`
}

// Routing is the output of the routing stage.
type Routing struct {
	Department        string       `json:"department" mapstructure:"department"`
	DoctorType        string       `json:"doctor_type" mapstructure:"doctor_type"`
	Urgency           Urgency      `json:"urgency" mapstructure:"urgency"`
	RoomType          string       `json:"room_type,omitempty" mapstructure:"room_type"`
	PreliminaryOrders []string     `json:"preliminary_orders" mapstructure:"preliminary_orders"`
	Contraindications []string     `json:"contraindications" mapstructure:"contraindications"`
	SafetyFlags       []SafetyFlag `json:"safety_flags" mapstructure:"-"`
	NotesForStaff     string       `json:"notes_for_staff" mapstructure:"notes_for_staff"`
}

// PipelineResult assembles the three stage outputs. It is never mutated
// after the pipeline returns it.
type PipelineResult struct {
	Timestamp        time.Time        `json:"timestamp"`
	SessionID        string           `json:"session_id"`
	StructuredIntake StructuredIntake `json:"structured_intake"`
	Classification   Classification   `json:"classification"`
	Routing          Routing          `json:"routing"`
}
