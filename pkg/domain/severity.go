package domain

import (
	"fmt"
	"strings"
)

// Severity is one of the four ordered triage levels, most severe first.
type Severity string

const (
	SeverityRed    Severity = "RED"
	SeverityYellow Severity = "YELLOW"
	SeverityGreen  Severity = "GREEN"
	SeverityBlue   Severity = "BLUE"
)

// Severities lists the levels from most to least severe.
var Severities = []Severity{SeverityRed, SeverityYellow, SeverityGreen, SeverityBlue}

// Priority is the care priority derived from a severity level.
type Priority string

const (
	PriorityEmergency Priority = "EMERGENCY"
	PriorityUrgent    Priority = "URGENT"
	PriorityStandard  Priority = "STANDARD"
	PriorityLow       Priority = "LOW"
)

// Urgency is the time window in which the patient should be seen.
type Urgency string

const (
	UrgencyImmediate    Urgency = "Immediate"
	UrgencyWithin30Min  Urgency = "Within 30 min"
	UrgencyWithin1Hour  Urgency = "Within 1 hour"
	UrgencyStandardWait Urgency = "Standard"
)

// ParseSeverity accepts a level name in any case. Values outside the fixed
// set are rejected.
func ParseSeverity(s string) (Severity, error) {
	v := Severity(strings.ToUpper(strings.TrimSpace(s)))
	for _, lvl := range Severities {
		if v == lvl {
			return lvl, nil
		}
	}
	return "", fmt.Errorf("unknown severity level %q", s)
}

// Valid reports whether s is one of the four levels.
func (s Severity) Valid() bool {
	_, err := ParseSeverity(string(s))
	return err == nil
}

// Priority maps the level to its care priority.
func (s Severity) Priority() Priority {
	switch s {
	case SeverityRed:
		return PriorityEmergency
	case SeverityYellow:
		return PriorityUrgent
	case SeverityGreen:
		return PriorityStandard
	default:
		return PriorityLow
	}
}

// DefaultUrgency is used when the routing stage returns no recognizable urgency.
func (s Severity) DefaultUrgency() Urgency {
	switch s {
	case SeverityRed:
		return UrgencyImmediate
	case SeverityYellow:
		return UrgencyWithin30Min
	case SeverityGreen:
		return UrgencyWithin1Hour
	default:
		return UrgencyStandardWait
	}
}

// ParseUrgency matches one of the known urgency labels, ignoring case.
func ParseUrgency(s string) (Urgency, bool) {
	for _, u := range []Urgency{UrgencyImmediate, UrgencyWithin30Min, UrgencyWithin1Hour, UrgencyStandardWait} {
		if strings.EqualFold(strings.TrimSpace(s), string(u)) {
			return u, true
		}
	}
	return "", false
}
