package models

// Severity classifies how impactful a set of statute changes is. Values are
// totally ordered; pipeline rules may only raise severity, never lower it.
type Severity int

const (
	SeverityNone Severity = iota
	SeverityMinor
	SeverityModerate
	SeverityMajor
	SeverityBreaking
)

var severityNames = map[Severity]string{
	SeverityNone:     "none",
	SeverityMinor:    "minor",
	SeverityModerate: "moderate",
	SeverityMajor:    "major",
	SeverityBreaking: "breaking",
}

func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return "unknown"
}

// ParseSeverity maps a stored name back to its Severity, defaulting to None.
func ParseSeverity(name string) Severity {
	for s, n := range severityNames {
		if n == name {
			return s
		}
	}
	return SeverityNone
}

// ImpactAssessment aggregates the effect of all discovered changes.
// Severity only ever rises, the boolean flags are OR-accumulated, and notes
// are append-only.
type ImpactAssessment struct {
	Severity           Severity `json:"severity"`
	AffectsEligibility bool     `json:"affects_eligibility"`
	AffectsOutcome     bool     `json:"affects_outcome"`
	DiscretionChanged  bool     `json:"discretion_changed"`
	Notes              []string `json:"notes,omitempty"`
}

// RaiseSeverity raises the severity to at least s. Lower candidates are
// ignored, preserving the monotonicity invariant.
func (ia *ImpactAssessment) RaiseSeverity(s Severity) {
	if s > ia.Severity {
		ia.Severity = s
	}
}

// AddNote appends a note to the assessment.
func (ia *ImpactAssessment) AddNote(note string) {
	ia.Notes = append(ia.Notes, note)
}
