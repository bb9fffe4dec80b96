package diffengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexflow/statrev/internal/models"
)

func strPtr(s string) *string { return &s }

func baseStatute() *models.Statute {
	return &models.Statute{
		ID:    "housing-benefit",
		Title: "Housing Benefit Eligibility",
		Preconditions: []models.Condition{
			{Field: "age", Operator: ">=", Value: "18"},
			{Field: "income", Operator: "<=", Value: "50000"},
		},
		Effect: models.Effect{Kind: models.EffectGrant, Subject: "housing_benefit"},
		Metadata: map[string]string{
			"jurisdiction": "XX",
		},
	}
}

func TestDiff_IdenticalStatutes(t *testing.T) {
	s := baseStatute()
	s.DiscretionLogic = strPtr("caseworker may waive")

	d, err := Diff(s, s)
	require.NoError(t, err)

	assert.Empty(t, d.Changes)
	assert.Equal(t, models.SeverityNone, d.Impact.Severity)
	assert.False(t, d.Impact.AffectsEligibility)
	assert.False(t, d.Impact.AffectsOutcome)
	assert.False(t, d.Impact.DiscretionChanged)
	assert.Empty(t, d.Impact.Notes)
	assert.Equal(t, "housing-benefit", d.StatuteID)
}

func TestDiff_EmptyStatutes(t *testing.T) {
	old := &models.Statute{ID: "x", Title: "T", Effect: models.Effect{Kind: models.EffectGrant}}
	d, err := Diff(old, old)
	require.NoError(t, err)
	assert.Empty(t, d.Changes)
}

func TestDiff_IDMismatch(t *testing.T) {
	a := baseStatute()
	b := baseStatute()
	b.ID = "other-statute"

	_, err := Diff(a, b)
	require.Error(t, err)
	var mismatch *IDMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "housing-benefit", mismatch.OldID)
	assert.Equal(t, "other-statute", mismatch.NewID)

	// Symmetric: mismatch in either direction fails
	_, err = Diff(b, a)
	require.Error(t, err)
}

func TestDiff_TitleOnly(t *testing.T) {
	old := baseStatute()
	updated := baseStatute()
	updated.Title = "Housing Benefit Entitlement"

	d, err := Diff(old, updated)
	require.NoError(t, err)

	require.Len(t, d.Changes, 1)
	c := d.Changes[0]
	assert.Equal(t, models.ChangeModified, c.Type)
	assert.Equal(t, models.TargetTitle, c.Target.Kind)
	assert.Equal(t, "Housing Benefit Eligibility", c.OldValue)
	assert.Equal(t, "Housing Benefit Entitlement", c.NewValue)

	// A title change alone is never more than minor.
	assert.Equal(t, models.SeverityMinor, d.Impact.Severity)
	assert.False(t, d.Impact.AffectsEligibility)
	assert.False(t, d.Impact.AffectsOutcome)
}

func TestDiff_PreconditionsRemoved(t *testing.T) {
	old := baseStatute()
	updated := baseStatute()
	updated.Preconditions = nil

	d, err := Diff(old, updated)
	require.NoError(t, err)

	require.Len(t, d.Changes, 2)
	assert.Equal(t, models.ChangeRemoved, d.Changes[0].Type)
	assert.Equal(t, models.PreconditionTarget(0), d.Changes[0].Target)
	assert.Equal(t, models.ChangeRemoved, d.Changes[1].Type)
	assert.Equal(t, models.PreconditionTarget(1), d.Changes[1].Target)

	assert.True(t, d.Impact.AffectsEligibility)
	assert.GreaterOrEqual(t, d.Impact.Severity, models.SeverityMajor)
	require.Len(t, d.Impact.Notes, 1)
	assert.Contains(t, d.Impact.Notes[0], "broadened")
}

func TestDiff_PreconditionsAdded(t *testing.T) {
	old := baseStatute()
	updated := baseStatute()
	updated.Preconditions = append(updated.Preconditions,
		models.Condition{Field: "residency", Operator: "==", Value: "true"})

	d, err := Diff(old, updated)
	require.NoError(t, err)

	require.Len(t, d.Changes, 1)
	assert.Equal(t, models.ChangeAdded, d.Changes[0].Type)
	assert.Equal(t, models.PreconditionTarget(2), d.Changes[0].Target)
	assert.True(t, d.Impact.AffectsEligibility)
	assert.Equal(t, models.SeverityMajor, d.Impact.Severity)
}

func TestDiff_PreconditionModified(t *testing.T) {
	old := baseStatute()
	updated := baseStatute()
	updated.Preconditions[1].Value = "60000"

	d, err := Diff(old, updated)
	require.NoError(t, err)

	require.Len(t, d.Changes, 1)
	assert.Equal(t, models.ChangeModified, d.Changes[0].Type)
	assert.Equal(t, models.PreconditionTarget(1), d.Changes[0].Target)
	assert.True(t, d.Impact.AffectsEligibility)
	assert.Equal(t, models.SeverityModerate, d.Impact.Severity)
}

func TestDiff_LengthChangeAlwaysFlagsEligibility(t *testing.T) {
	// Any difference in precondition list length implies the eligibility flag.
	old := baseStatute()
	for extra := 1; extra <= 3; extra++ {
		updated := baseStatute()
		for i := 0; i < extra; i++ {
			updated.Preconditions = append(updated.Preconditions,
				models.Condition{Field: "extra", Operator: "==", Value: "x"})
		}
		d, err := Diff(old, updated)
		require.NoError(t, err)
		assert.True(t, d.Impact.AffectsEligibility)
	}
}

func TestDiff_EffectChanged(t *testing.T) {
	old := baseStatute()
	updated := baseStatute()
	updated.Effect = models.Effect{Kind: models.EffectRevoke, Subject: "housing_benefit"}

	d, err := Diff(old, updated)
	require.NoError(t, err)

	require.Len(t, d.Changes, 1)
	assert.Equal(t, models.ChangeModified, d.Changes[0].Type)
	assert.Equal(t, models.TargetEffect, d.Changes[0].Target.Kind)
	assert.True(t, d.Impact.AffectsOutcome)
	assert.Equal(t, models.SeverityMajor, d.Impact.Severity)
}

func TestDiff_Discretion(t *testing.T) {
	tests := []struct {
		name         string
		old, new     *string
		wantType     models.ChangeType
		wantSeverity models.Severity
		wantNote     string
	}{
		{"added", nil, strPtr("judgment applies"), models.ChangeAdded, models.SeverityMajor, "human judgment now required"},
		{"removed", strPtr("judgment applies"), nil, models.ChangeRemoved, models.SeverityMajor, "now deterministic"},
		{"modified", strPtr("old text"), strPtr("new text"), models.ChangeModified, models.SeverityModerate, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			old := baseStatute()
			old.DiscretionLogic = tt.old
			updated := baseStatute()
			updated.DiscretionLogic = tt.new

			d, err := Diff(old, updated)
			require.NoError(t, err)

			require.Len(t, d.Changes, 1)
			assert.Equal(t, tt.wantType, d.Changes[0].Type)
			assert.Equal(t, models.TargetDiscretionLogic, d.Changes[0].Target.Kind)
			assert.True(t, d.Impact.DiscretionChanged)
			assert.Equal(t, tt.wantSeverity, d.Impact.Severity)
			if tt.wantNote != "" {
				require.Len(t, d.Impact.Notes, 1)
				assert.Equal(t, tt.wantNote, d.Impact.Notes[0])
			}
		})
	}
}

func TestDiff_DiscretionUnchanged(t *testing.T) {
	old := baseStatute()
	old.DiscretionLogic = strPtr("same text")
	updated := baseStatute()
	updated.DiscretionLogic = strPtr("same text")

	d, err := Diff(old, updated)
	require.NoError(t, err)
	assert.Empty(t, d.Changes)
	assert.False(t, d.Impact.DiscretionChanged)
}

func TestDiff_Metadata(t *testing.T) {
	old := baseStatute()
	old.Metadata = map[string]string{"citation": "XX 12-34", "jurisdiction": "XX"}
	updated := baseStatute()
	updated.Metadata = map[string]string{"jurisdiction": "YY", "revision": "2"}

	d, err := Diff(old, updated)
	require.NoError(t, err)

	// Union of keys walked in sorted order: citation, jurisdiction, revision.
	require.Len(t, d.Changes, 3)
	assert.Equal(t, models.ChangeRemoved, d.Changes[0].Type)
	assert.Equal(t, models.MetadataTarget("citation"), d.Changes[0].Target)
	assert.Equal(t, models.ChangeModified, d.Changes[1].Type)
	assert.Equal(t, models.MetadataTarget("jurisdiction"), d.Changes[1].Target)
	assert.Equal(t, models.ChangeAdded, d.Changes[2].Type)
	assert.Equal(t, models.MetadataTarget("revision"), d.Changes[2].Target)

	assert.Equal(t, models.SeverityMinor, d.Impact.Severity)
	assert.False(t, d.Impact.AffectsEligibility)
}

func TestDiff_ChangeOrdering(t *testing.T) {
	// Changes come out in fixed field order: title, preconditions, effect,
	// discretion logic, metadata.
	old := baseStatute()
	old.DiscretionLogic = strPtr("old discretion")

	updated := baseStatute()
	updated.Title = "New Title"
	updated.Preconditions[0].Value = "21"
	updated.Effect = models.Effect{Kind: models.EffectDeny, Subject: "housing_benefit"}
	updated.DiscretionLogic = strPtr("new discretion")
	updated.Metadata = map[string]string{"jurisdiction": "YY"}

	d, err := Diff(old, updated)
	require.NoError(t, err)

	require.Len(t, d.Changes, 5)
	assert.Equal(t, models.TargetTitle, d.Changes[0].Target.Kind)
	assert.Equal(t, models.TargetPrecondition, d.Changes[1].Target.Kind)
	assert.Equal(t, models.TargetEffect, d.Changes[2].Target.Kind)
	assert.Equal(t, models.TargetDiscretionLogic, d.Changes[3].Target.Kind)
	assert.Equal(t, models.TargetMetadata, d.Changes[4].Target.Kind)
}

func TestDiff_SeverityIsMaxAcrossRules(t *testing.T) {
	// A minor title change combined with a major effect change yields the
	// effect's severity; the title can never pull it down.
	old := baseStatute()
	updated := baseStatute()
	updated.Title = "New Title"
	updated.Effect = models.Effect{Kind: models.EffectDeny, Subject: "housing_benefit"}

	d, err := Diff(old, updated)
	require.NoError(t, err)
	assert.Equal(t, models.SeverityMajor, d.Impact.Severity)

	// Title plus moderate precondition edit stays moderate.
	updated2 := baseStatute()
	updated2.Title = "New Title"
	updated2.Preconditions[0].Value = "21"

	d2, err := Diff(old, updated2)
	require.NoError(t, err)
	assert.Equal(t, models.SeverityModerate, d2.Impact.Severity)
}
