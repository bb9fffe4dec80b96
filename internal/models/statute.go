package models

// EffectKind is the kind of legal outcome an effect produces.
type EffectKind string

const (
	EffectGrant  EffectKind = "grant"
	EffectDeny   EffectKind = "deny"
	EffectRevoke EffectKind = "revoke"
	EffectModify EffectKind = "modify"
)

// Condition is one eligibility condition within a statute's ordered
// precondition list. Conditions compare structurally; the pipeline never
// interprets their semantics.
type Condition struct {
	Field    string `yaml:"field" json:"field"`
	Operator string `yaml:"operator" json:"operator"`
	Value    string `yaml:"value" json:"value"`
}

// Effect is the outcome a statute produces when its preconditions hold.
type Effect struct {
	Kind    EffectKind `yaml:"kind" json:"kind"`
	Subject string     `yaml:"subject" json:"subject"`
	Detail  string     `yaml:"detail,omitempty" json:"detail,omitempty"`
}

// Statute is a single structured legal rule. The change pipeline only reads
// statutes; authoring and evaluation live elsewhere.
type Statute struct {
	ID              string            `yaml:"id" json:"id"`
	Title           string            `yaml:"title" json:"title"`
	Preconditions   []Condition       `yaml:"preconditions" json:"preconditions"`
	Effect          Effect            `yaml:"effect" json:"effect"`
	DiscretionLogic *string           `yaml:"discretion_logic,omitempty" json:"discretion_logic,omitempty"`
	Metadata        map[string]string `yaml:"metadata,omitempty" json:"metadata,omitempty"`
}
