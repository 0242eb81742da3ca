package pipeline

import (
	"fmt"
	"strings"

	"github.com/aretw0/triage/pkg/catalog"
	"github.com/aretw0/triage/pkg/domain"
)

const extractionInstruction = `You are a medical data extraction assistant. Analyze the patient responses from a triage intake interview and extract structured medical information.

The responses may be in any language. Extract the information regardless of the input language and write field values in medical English terminology where appropriate.

Guidelines:
- patient_name: the full name exactly as provided
- date_of_birth: in the format provided
- phone_number, emergency_contact_name, emergency_contact_phone: if provided
- chief_complaint: the main reason for the visit in medical terminology ("chest pain" instead of "my chest hurts")
- onset: when the symptoms started
- pain_scale: integer 1-10; if not numeric, estimate from descriptors (severe=8-10, moderate=5-7, mild=1-4)
- location: body location using anatomical terms
- radiation: where the pain spreads to, if mentioned
- associated_symptoms: other symptoms in medical terminology ("sweating" -> "diaphoresis", "throwing up" -> "nausea/vomiting", "hard to breathe" -> "dyspnea", "dizzy" -> "dizziness/vertigo")
- medical_history, current_medications, allergies: lists, drug allergies especially

Respond with ONLY a valid JSON object of this shape:
{
  "patient_name": "string",
  "date_of_birth": "string",
  "phone_number": "string or null",
  "emergency_contact_name": "string or null",
  "emergency_contact_phone": "string or null",
  "chief_complaint": "string",
  "onset": "string",
  "duration": "string or null",
  "pain_scale": number or null,
  "pain_type": "string or null",
  "location": "string or null",
  "radiation": "string or null",
  "associated_symptoms": ["string"],
  "medical_history": ["string"],
  "current_medications": ["string"],
  "allergies": ["string"]
}
Use null for missing optional fields and empty arrays for missing lists.`

const classificationInstruction = `You are an emergency department triage specialist. Classify the patient using the Manchester Triage Protocol.

| Color | Priority | Criteria | Max wait |
|-------|----------|----------|----------|
| RED | EMERGENCY | Life-threatening: airway compromise, severe breathing difficulty, major hemorrhage, shock, unconsciousness, severe chest pain with cardiac features | Immediate |
| YELLOW | URGENT | Serious but stable: moderate pain (7-8/10), localized infection with fever, possible fractures, moderate breathing issues | 30-60 minutes |
| GREEN | STANDARD | Non-urgent: minor injuries, mild symptoms, stable vital signs, low-grade fever | 1-4 hours |
| BLUE | LOW | Minor issues: small cuts, minor cold symptoms, chronic stable conditions | 4+ hours |

Analyze the symptoms against the reference protocols, consider red flags (chest pain with radiation or diaphoresis, severe pain, breathing difficulty, altered consciousness) and account for risk factors in the medical history.

Respond with ONLY a valid JSON object:
{
  "color": "RED" | "YELLOW" | "GREEN" | "BLUE",
  "reasoning": "brief explanation of the classification",
  "risk_factors": ["string"],
  "matched_protocols": ["string"]
}`

const routingInstruction = `You are a hospital routing specialist. Direct the triaged patient to the appropriate department and propose preliminary orders.

Department options:
- Cardiology: chest pain, cardiac symptoms, arrhythmias
- Orthopedics: fractures, dislocations, musculoskeletal trauma
- General Surgery: abdominal emergencies, surgical conditions
- Neurology: stroke symptoms, seizures, severe headaches
- Pediatrics: patients under 18
- Obstetrics: pregnancy-related conditions
- General Practice: general illness, infections, non-specific symptoms
- Emergency Medicine: critical or unstable patients

Match the symptoms to a department, select relevant preliminary orders from the reference material, check every order against the patient allergies and write a brief note for the receiving staff.

Respond with ONLY a valid JSON object:
{
  "department": "department name",
  "doctor_type": "specialist type",
  "urgency": "Immediate" | "Within 30 min" | "Within 1 hour" | "Standard",
  "room_type": "Emergency bay" | "Consultation room" | "Trauma bay" | null,
  "preliminary_orders": ["string"],
  "contraindications": ["string"],
  "notes_for_staff": "string"
}`

// extractionInput pairs every question, in the session language, with its answer.
func extractionInput(s *domain.Session) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Patient language: %s\n\n## Patient Responses\n", catalog.LanguageName(s.Language))
	for k := 1; k <= catalog.Total(); k++ {
		answer, ok := s.Answers[k]
		if !ok || strings.TrimSpace(answer) == "" {
			answer = "Not provided"
		}
		fmt.Fprintf(&b, "\nQ%d: %s\nA: %s\n", k, catalog.TextOrDefault(k, s.Language), answer)
	}
	return b.String()
}

func classificationInput(in *domain.StructuredIntake, protocols []domain.Snippet) string {
	var b strings.Builder
	b.WriteString("## Patient Intake\n")
	writeIntake(&b, in, true)
	b.WriteString("\n## Relevant Triage Protocols\n")
	writeSnippets(&b, protocols)
	return b.String()
}

func routingInput(in *domain.StructuredIntake, c *domain.Classification, rules, orders []domain.Snippet) string {
	lang := catalog.LanguageName(in.Language)

	var b strings.Builder
	fmt.Fprintf(&b, "Patient language: %s. Match the data against the English reference material below and write preliminary_orders, contraindications and notes_for_staff in %s.\n\n", lang, lang)
	b.WriteString("## Patient Intake\n")
	writeIntake(&b, in, false)

	fmt.Fprintf(&b, "\n## Triage Classification\n- Color: %s\n- Priority: %s\n- Reasoning: %s\n", c.Level, c.Priority, c.Reasoning)

	if allergies := knownAllergies(in.Allergies); len(allergies) > 0 {
		fmt.Fprintf(&b, "\n## PATIENT ALLERGIES - CHECK FOR CONTRAINDICATIONS\n%s\nNo preliminary order may conflict with these allergies.\n", strings.Join(allergies, ", "))
	}

	b.WriteString("\n## Routing Rules\n")
	writeSnippets(&b, rules)
	b.WriteString("\n## Preliminary Orders\n")
	writeSnippets(&b, orders)
	return b.String()
}

func writeIntake(b *strings.Builder, in *domain.StructuredIntake, clinical bool) {
	fmt.Fprintf(b, "- Chief Complaint: %s\n", in.ChiefComplaint)
	if clinical {
		fmt.Fprintf(b, "- Onset: %s\n", in.Onset)
		pain := "Not specified"
		if in.PainScale != nil {
			pain = fmt.Sprintf("%d", *in.PainScale)
		}
		fmt.Fprintf(b, "- Pain Scale: %s/10\n", pain)
	}
	fmt.Fprintf(b, "- Location: %s\n", orDefault(in.Location, "Not specified"))
	if clinical {
		fmt.Fprintf(b, "- Radiation: %s\n", orDefault(in.Radiation, "None"))
	}
	fmt.Fprintf(b, "- Associated Symptoms: %s\n", joinOr(in.AssociatedSymptoms, "None"))
	fmt.Fprintf(b, "- Medical History: %s\n", joinOr(in.MedicalHistory, "None reported"))
	fmt.Fprintf(b, "- Current Medications: %s\n", joinOr(in.CurrentMedications, "None"))
	fmt.Fprintf(b, "- Allergies: %s\n", joinOr(knownAllergies(in.Allergies), "NKDA"))
}

func writeSnippets(b *strings.Builder, snippets []domain.Snippet) {
	if len(snippets) == 0 {
		b.WriteString("- (none found)\n")
		return
	}
	for _, s := range snippets {
		fmt.Fprintf(b, "- %s\n", s.Text)
	}
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func joinOr(items []string, def string) string {
	if len(items) == 0 {
		return def
	}
	return strings.Join(items, ", ")
}

// protocolQuery also drives the preliminary orders lookup.
func protocolQuery(in *domain.StructuredIntake) string {
	return strings.TrimSpace(in.ChiefComplaint + " " + strings.Join(in.AssociatedSymptoms, " "))
}

func ruleQuery(in *domain.StructuredIntake, level domain.Severity) string {
	return strings.TrimSpace(in.ChiefComplaint + " " + string(level))
}

// Instruction returns the fixed instruction sent for stage, or "" for a
// state that makes no model call.
func Instruction(stage domain.Stage) string {
	switch stage {
	case domain.StageExtracting:
		return extractionInstruction
	case domain.StageClassifying:
		return classificationInstruction
	case domain.StageRouting:
		return routingInstruction
	default:
		return ""
	}
}
