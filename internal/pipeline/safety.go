package pipeline

import (
	"regexp"
	"strings"

	"github.com/aretw0/triage/pkg/domain"
)

// SourceNotes is the SafetyFlag source for a match in the staff notes.
const SourceNotes = "notes_for_staff"

// noAllergy holds the answers that mean the patient reported none.
var noAllergy = map[string]bool{
	"":                        true,
	"-":                       true,
	"no":                      true,
	"none":                    true,
	"nil":                     true,
	"n/a":                     true,
	"na":                      true,
	"nka":                     true,
	"nkda":                    true,
	"unknown":                 true,
	"none known":              true,
	"no allergies":            true,
	"no known allergies":      true,
	"no known drug allergies": true,
}

// knownAllergies normalizes the allergy list: placeholders are dropped,
// parenthetical remarks removed and duplicates collapsed.
func knownAllergies(list []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, a := range list {
		if i := strings.IndexByte(a, '('); i >= 0 {
			a = a[:i]
		}
		a = strings.TrimSpace(strings.Trim(strings.TrimSpace(a), ".,;"))
		key := strings.ToLower(a)
		if noAllergy[key] || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, a)
	}
	return out
}

func wordPattern(term string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(^|[^\p{L}\p{N}])` + regexp.QuoteMeta(term) + `($|[^\p{L}\p{N}])`)
}

// crossCheckAllergies flags every allergy named as a whole word in a
// preliminary order or in the staff notes. Flagged allergies are appended
// to the contraindications unless one already names them.
func crossCheckAllergies(allergies []string, r *domain.Routing) {
	for _, allergy := range knownAllergies(allergies) {
		pattern := wordPattern(allergy)

		flagged := false
		for _, order := range r.PreliminaryOrders {
			if pattern.MatchString(order) {
				r.SafetyFlags = append(r.SafetyFlags, domain.SafetyFlag{Allergy: allergy, Source: order})
				flagged = true
			}
		}
		if pattern.MatchString(r.NotesForStaff) {
			r.SafetyFlags = append(r.SafetyFlags, domain.SafetyFlag{Allergy: allergy, Source: SourceNotes})
			flagged = true
		}
		if !flagged {
			continue
		}

		listed := false
		for _, c := range r.Contraindications {
			if pattern.MatchString(c) {
				listed = true
				break
			}
		}
		if !listed {
			r.Contraindications = append(r.Contraindications, allergy)
		}
	}
}
