// Package statutes loads statute documents from YAML files.
//
// A statute file looks like:
//
//	id: housing-benefit
//	title: Housing Benefit Eligibility
//	preconditions:
//	  - {field: age, operator: ">=", value: "18"}
//	  - {field: income, operator: "<=", value: "50000"}
//	effect:
//	  kind: grant
//	  subject: housing_benefit
//	discretion_logic: caseworker may waive the income test in hardship cases
//	metadata:
//	  jurisdiction: XX
//	  citation: XX Code 12-34
package statutes

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lexflow/statrev/internal/models"
)

// Load reads and validates a statute document from a YAML file.
func Load(path string) (*models.Statute, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read statute file: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes and validates a statute document from YAML bytes.
func Parse(data []byte) (*models.Statute, error) {
	var s models.Statute
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse statute: %w", err)
	}
	if err := Validate(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the structural requirements the pipeline relies on.
func Validate(s *models.Statute) error {
	if s.ID == "" {
		return fmt.Errorf("statute is missing an id")
	}
	if s.Title == "" {
		return fmt.Errorf("statute %q is missing a title", s.ID)
	}
	switch s.Effect.Kind {
	case models.EffectGrant, models.EffectDeny, models.EffectRevoke, models.EffectModify:
	default:
		return fmt.Errorf("statute %q has unknown effect kind %q", s.ID, s.Effect.Kind)
	}
	for i, c := range s.Preconditions {
		if c.Field == "" || c.Operator == "" {
			return fmt.Errorf("statute %q precondition %d is missing field or operator", s.ID, i)
		}
	}
	return nil
}
