package models

import "time"

// StatuteDiff is the result of comparing two versions of one statute.
// It is a value object: produced once by the diff engine, then read by the
// recommendation engine and review sessions without further mutation.
type StatuteDiff struct {
	ID          string           `json:"id,omitempty"` // assigned when persisted
	StatuteID   string           `json:"statute_id"`
	VersionInfo string           `json:"version_info,omitempty"`
	Changes     []Change         `json:"changes"`
	Impact      ImpactAssessment `json:"impact"`
	CreatedAt   time.Time        `json:"created_at"`
}

// ChangesOfType returns the changes with the given type, in emission order.
func (d *StatuteDiff) ChangesOfType(t ChangeType) []Change {
	var out []Change
	for _, c := range d.Changes {
		if c.Type == t {
			out = append(out, c)
		}
	}
	return out
}

// ChangesTargeting returns the changes touching the given target kind, in
// emission order.
func (d *StatuteDiff) ChangesTargeting(kind TargetKind) []Change {
	var out []Change
	for _, c := range d.Changes {
		if c.Target.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}
