package diffengine

import "github.com/lexflow/statrev/internal/models"

// impactUpdate is one rule's partial contribution to the overall impact
// assessment. The zero value contributes nothing.
type impactUpdate struct {
	severity           models.Severity
	affectsEligibility bool
	affectsOutcome     bool
	discretionChanged  bool
	note               string
}

// foldImpact folds partial updates into a single assessment. Severity is a
// max-reduction and the flags OR-accumulate, so appending further updates
// can never lower the result.
func foldImpact(updates []impactUpdate) models.ImpactAssessment {
	var ia models.ImpactAssessment
	for _, u := range updates {
		ia.RaiseSeverity(u.severity)
		ia.AffectsEligibility = ia.AffectsEligibility || u.affectsEligibility
		ia.AffectsOutcome = ia.AffectsOutcome || u.affectsOutcome
		ia.DiscretionChanged = ia.DiscretionChanged || u.discretionChanged
		if u.note != "" {
			ia.AddNote(u.note)
		}
	}
	return ia
}
