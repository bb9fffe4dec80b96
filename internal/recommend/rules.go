package recommend

import (
	"fmt"

	"github.com/lexflow/statrev/internal/models"
)

// metadataSyncRule flags title changes that were not accompanied by a
// metadata update, a common sign of an incomplete edit.
func metadataSyncRule(d *models.StatuteDiff, _ []*models.StatuteDiff, _ Config) []models.Recommendation {
	titleChanged := len(d.ChangesTargeting(models.TargetTitle)) > 0
	metadataChanged := len(d.ChangesTargeting(models.TargetMetadata)) > 0
	if !titleChanged || metadataChanged {
		return nil
	}

	rec := models.NewRecommendation(
		models.PriorityMedium,
		models.CategoryBestPractice,
		"Title changed without metadata update",
		"The statute title was changed but no metadata entry was touched.",
		"Title changes usually warrant updating descriptive metadata (short name, citation, last-amended date) so downstream catalogs stay in sync.",
		0.8,
	)
	rec.SuggestedAction = "Review the statute metadata and update entries that reference the old title."
	rec.RelatedChanges = renderTargets(d.ChangesTargeting(models.TargetTitle))
	return []models.Recommendation{rec}
}

// preconditionChurnRule flags diffs that touch many preconditions at once.
func preconditionChurnRule(d *models.StatuteDiff, _ []*models.StatuteDiff, cfg Config) []models.Recommendation {
	pcChanges := d.ChangesTargeting(models.TargetPrecondition)
	if len(pcChanges) <= cfg.PreconditionChurnThreshold {
		return nil
	}

	rec := models.NewRecommendation(
		models.PriorityMedium,
		models.CategoryClarity,
		"Many precondition changes in one revision",
		fmt.Sprintf("This revision touches %d preconditions.", len(pcChanges)),
		"Large precondition churn is hard to review for consistency; consider splitting the revision or adding a summary of the intended eligibility change.",
		0.7,
	)
	rec.RelatedChanges = renderTargets(pcChanges)
	return []models.Recommendation{rec}
}

// breakingChangeRule emits up to two independent findings: one when the
// diff affects outcomes or eligibility, and one when discretion changed.
func breakingChangeRule(d *models.StatuteDiff, _ []*models.StatuteDiff, _ Config) []models.Recommendation {
	var recs []models.Recommendation

	if d.Impact.AffectsOutcome || d.Impact.AffectsEligibility {
		rec := models.NewRecommendation(
			models.PriorityHigh,
			models.CategoryBestPractice,
			"Document breaking change",
			"This revision changes who qualifies or what outcome they receive.",
			"Changes affecting eligibility or outcomes are breaking for anyone relying on the previous rule and must be documented before taking effect.",
			0.95,
		)
		rec.SuggestedAction = "Publish a change notice describing the old and new behavior and its effective date."
		recs = append(recs, rec)
	}

	if d.Impact.DiscretionChanged {
		rec := models.NewRecommendation(
			models.PriorityHigh,
			models.CategoryCompliance,
			"Discretion logic changed",
			"The role of human judgment in applying this statute changed.",
			"Decision-makers need updated guidance whenever discretion is introduced, removed, or reworded; otherwise application becomes inconsistent.",
			0.9,
		)
		rec.SuggestedAction = "Update decision-maker guidance to reflect the new discretion logic."
		recs = append(recs, rec)
	}

	return recs
}

// historicalPatternRule flags current changes whose type recurs frequently
// in this statute's prior revisions. One finding per matching change.
func historicalPatternRule(d *models.StatuteDiff, historical []*models.StatuteDiff, cfg Config) []models.Recommendation {
	if len(historical) == 0 {
		return nil
	}

	freq := make(map[models.ChangeType]int)
	for _, h := range historical {
		for _, c := range h.Changes {
			freq[c.Type]++
		}
	}

	var recs []models.Recommendation
	for _, c := range d.Changes {
		if freq[c.Type] <= cfg.HistoryFrequencyThreshold {
			continue
		}
		rec := models.NewRecommendation(
			models.PriorityLow,
			models.CategoryBestPractice,
			fmt.Sprintf("Recurring %s changes", c.Type),
			fmt.Sprintf("Changes of type %q have occurred %d times in this statute's history.", c.Type, freq[c.Type]),
			"Frequent repetition of the same change type may indicate an unstable rule that deserves a structural rework rather than another patch.",
			0.6,
		)
		rec.RelatedChanges = []string{c.Target.Render()}
		recs = append(recs, rec)
	}
	return recs
}

// commonPitfallsRule covers known review pitfalls: effect changes made
// without revisiting preconditions, and bulk precondition removal.
func commonPitfallsRule(d *models.StatuteDiff, _ []*models.StatuteDiff, cfg Config) []models.Recommendation {
	var recs []models.Recommendation

	effectChanged := len(d.ChangesTargeting(models.TargetEffect)) > 0
	pcChanges := d.ChangesTargeting(models.TargetPrecondition)
	if effectChanged && len(pcChanges) == 0 {
		rec := models.NewRecommendation(
			models.PriorityMedium,
			models.CategoryPotentialError,
			"Effect changed without precondition review",
			"The statute's effect changed but none of its preconditions did.",
			"An effect change usually implies the eligibility criteria were re-examined; an untouched precondition list may mean that step was skipped.",
			0.75,
		)
		rec.RelatedChanges = renderTargets(d.ChangesTargeting(models.TargetEffect))
		recs = append(recs, rec)
	}

	var removed []models.Change
	for _, c := range pcChanges {
		if c.Type == models.ChangeRemoved {
			removed = append(removed, c)
		}
	}
	if len(removed) > cfg.RemovedPreconditionThreshold {
		rec := models.NewRecommendation(
			models.PriorityHigh,
			models.CategoryPotentialError,
			"Multiple preconditions removed",
			fmt.Sprintf("%d preconditions were removed in one revision.", len(removed)),
			"Removing several preconditions at once broadens eligibility sharply; verify this expansion is intended and budgeted.",
			0.85,
		)
		rec.RelatedChanges = renderTargets(removed)
		recs = append(recs, rec)
	}

	return recs
}

func renderTargets(changes []models.Change) []string {
	out := make([]string, len(changes))
	for i, c := range changes {
		out[i] = c.Target.Render()
	}
	return out
}
