package statutes

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexflow/statrev/internal/models"
)

const validDoc = `
id: housing-benefit
title: Housing Benefit Eligibility
preconditions:
  - {field: age, operator: ">=", value: "18"}
  - {field: income, operator: "<=", value: "50000"}
effect:
  kind: grant
  subject: housing_benefit
discretion_logic: caseworker may waive the income test in hardship cases
metadata:
  jurisdiction: XX
`

func TestParse_Valid(t *testing.T) {
	s, err := Parse([]byte(validDoc))
	require.NoError(t, err)

	assert.Equal(t, "housing-benefit", s.ID)
	assert.Equal(t, "Housing Benefit Eligibility", s.Title)
	require.Len(t, s.Preconditions, 2)
	assert.Equal(t, models.Condition{Field: "age", Operator: ">=", Value: "18"}, s.Preconditions[0])
	assert.Equal(t, models.EffectGrant, s.Effect.Kind)
	require.NotNil(t, s.DiscretionLogic)
	assert.Contains(t, *s.DiscretionLogic, "hardship")
	assert.Equal(t, "XX", s.Metadata["jurisdiction"])
}

func TestParse_NoDiscretion(t *testing.T) {
	s, err := Parse([]byte("id: x\ntitle: T\neffect: {kind: deny, subject: s}\n"))
	require.NoError(t, err)
	assert.Nil(t, s.DiscretionLogic)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"missing id", "title: T\neffect: {kind: grant, subject: s}\n"},
		{"missing title", "id: x\neffect: {kind: grant, subject: s}\n"},
		{"unknown effect kind", "id: x\ntitle: T\neffect: {kind: bestow, subject: s}\n"},
		{"incomplete precondition", "id: x\ntitle: T\npreconditions: [{value: \"18\"}]\neffect: {kind: grant, subject: s}\n"},
		{"not yaml", ": : :"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "statute.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validDoc), 0644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "housing-benefit", s.ID)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
