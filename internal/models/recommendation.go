package models

// Priority ranks how urgently a recommendation should be acted on.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
	PriorityCritical
)

var priorityNames = map[Priority]string{
	PriorityLow:      "low",
	PriorityMedium:   "medium",
	PriorityHigh:     "high",
	PriorityCritical: "critical",
}

func (p Priority) String() string {
	if name, ok := priorityNames[p]; ok {
		return name
	}
	return "unknown"
}

// ParsePriority maps a name to its Priority and reports whether it matched.
func ParsePriority(name string) (Priority, bool) {
	for p, n := range priorityNames {
		if n == name {
			return p, true
		}
	}
	return PriorityLow, false
}

// Category groups recommendations by the concern they address.
type Category string

const (
	CategoryConsistency    Category = "consistency"
	CategoryClarity        Category = "clarity"
	CategoryCompliance     Category = "compliance"
	CategoryBestPractice   Category = "best_practice"
	CategoryPotentialError Category = "potential_error"
	CategoryPerformance    Category = "performance"
)

// Recommendation is one advisory finding produced by analyzing a diff.
// Immutable after construction; callers filter and sort copies of the
// emitted list rather than mutating it.
type Recommendation struct {
	Priority        Priority `json:"priority"`
	Category        Category `json:"category"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Rationale       string   `json:"rationale"`
	SuggestedAction string   `json:"suggested_action,omitempty"`
	Confidence      float64  `json:"confidence"`
	RelatedChanges  []string `json:"related_changes,omitempty"`
}

// NewRecommendation constructs a recommendation, clamping confidence into
// [0, 1].
func NewRecommendation(priority Priority, category Category, title, description, rationale string, confidence float64) Recommendation {
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return Recommendation{
		Priority:    priority,
		Category:    category,
		Title:       title,
		Description: description,
		Rationale:   rationale,
		Confidence:  confidence,
	}
}
