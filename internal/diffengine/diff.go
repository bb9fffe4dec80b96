// Package diffengine compares two versions of a statute and classifies the
// differences between them.
package diffengine

import (
	"fmt"
	"sort"
	"time"

	"github.com/lexflow/statrev/internal/models"
)

// IDMismatchError reports an attempt to diff two unrelated statutes.
type IDMismatchError struct {
	OldID string
	NewID string
}

func (e *IDMismatchError) Error() string {
	return fmt.Sprintf("statute id mismatch: %q vs %q", e.OldID, e.NewID)
}

// Diff compares two versions of the same statute and returns the ordered
// list of changes plus an impact assessment. The only failure mode is an id
// mismatch between the two inputs.
//
// Changes are emitted in a fixed field order: title, preconditions, effect,
// discretion logic, metadata. Callers may rely on that ordering.
func Diff(old, new *models.Statute) (*models.StatuteDiff, error) {
	if old.ID != new.ID {
		return nil, &IDMismatchError{OldID: old.ID, NewID: new.ID}
	}

	var changes []models.Change
	var updates []impactUpdate

	// Title
	if old.Title != new.Title {
		changes = append(changes, models.Change{
			Type:        models.ChangeModified,
			Target:      models.TitleTarget(),
			Description: fmt.Sprintf("title changed from %q to %q", old.Title, new.Title),
			OldValue:    old.Title,
			NewValue:    new.Title,
		})
		updates = append(updates, impactUpdate{severity: models.SeverityMinor})
	}

	// Preconditions
	pc, pu := diffPreconditions(old.Preconditions, new.Preconditions)
	changes = append(changes, pc...)
	updates = append(updates, pu...)

	// Effect
	if old.Effect != new.Effect {
		changes = append(changes, models.Change{
			Type:        models.ChangeModified,
			Target:      models.EffectTarget(),
			Description: fmt.Sprintf("effect changed from %q to %q", renderEffect(old.Effect), renderEffect(new.Effect)),
			OldValue:    renderEffect(old.Effect),
			NewValue:    renderEffect(new.Effect),
		})
		updates = append(updates, impactUpdate{
			severity:       models.SeverityMajor,
			affectsOutcome: true,
		})
	}

	// Discretion logic
	dc, du := diffDiscretion(old.DiscretionLogic, new.DiscretionLogic)
	changes = append(changes, dc...)
	updates = append(updates, du...)

	// Metadata
	mc, mu := diffMetadata(old.Metadata, new.Metadata)
	changes = append(changes, mc...)
	updates = append(updates, mu...)

	return &models.StatuteDiff{
		StatuteID: old.ID,
		Changes:   changes,
		Impact:    foldImpact(updates),
		CreatedAt: time.Now().UTC(),
	}, nil
}

// diffPreconditions compares the ordered precondition lists positionally:
// length changes are emitted over the longer list's tail, then the
// overlapping prefix is checked element-wise.
func diffPreconditions(old, new []models.Condition) ([]models.Change, []impactUpdate) {
	var changes []models.Change
	var updates []impactUpdate

	switch {
	case len(new) > len(old):
		for i := len(old); i < len(new); i++ {
			changes = append(changes, models.Change{
				Type:        models.ChangeAdded,
				Target:      models.PreconditionTarget(i),
				Description: fmt.Sprintf("precondition added: %s", renderCondition(new[i])),
				NewValue:    renderCondition(new[i]),
			})
		}
		updates = append(updates, impactUpdate{
			severity:           models.SeverityMajor,
			affectsEligibility: true,
			note:               fmt.Sprintf("%d precondition(s) added; eligibility criteria narrowed", len(new)-len(old)),
		})
	case len(old) > len(new):
		for i := len(new); i < len(old); i++ {
			changes = append(changes, models.Change{
				Type:        models.ChangeRemoved,
				Target:      models.PreconditionTarget(i),
				Description: fmt.Sprintf("precondition removed: %s", renderCondition(old[i])),
				OldValue:    renderCondition(old[i]),
			})
		}
		updates = append(updates, impactUpdate{
			severity:           models.SeverityMajor,
			affectsEligibility: true,
			note:               fmt.Sprintf("%d precondition(s) removed; eligibility criteria broadened", len(old)-len(new)),
		})
	}

	overlap := len(old)
	if len(new) < overlap {
		overlap = len(new)
	}
	for i := 0; i < overlap; i++ {
		if old[i] != new[i] {
			changes = append(changes, models.Change{
				Type:        models.ChangeModified,
				Target:      models.PreconditionTarget(i),
				Description: fmt.Sprintf("precondition changed from %q to %q", renderCondition(old[i]), renderCondition(new[i])),
				OldValue:    renderCondition(old[i]),
				NewValue:    renderCondition(new[i]),
			})
			updates = append(updates, impactUpdate{
				severity:           models.SeverityModerate,
				affectsEligibility: true,
			})
		}
	}

	return changes, updates
}

func diffDiscretion(old, new *string) ([]models.Change, []impactUpdate) {
	switch {
	case old == nil && new != nil:
		return []models.Change{{
				Type:        models.ChangeAdded,
				Target:      models.DiscretionTarget(),
				Description: "discretion logic added",
				NewValue:    *new,
			}}, []impactUpdate{{
				severity:          models.SeverityMajor,
				discretionChanged: true,
				note:              "human judgment now required",
			}}
	case old != nil && new == nil:
		return []models.Change{{
				Type:        models.ChangeRemoved,
				Target:      models.DiscretionTarget(),
				Description: "discretion logic removed",
				OldValue:    *old,
			}}, []impactUpdate{{
				severity:          models.SeverityMajor,
				discretionChanged: true,
				note:              "now deterministic",
			}}
	case old != nil && new != nil && *old != *new:
		return []models.Change{{
				Type:        models.ChangeModified,
				Target:      models.DiscretionTarget(),
				Description: "discretion logic changed",
				OldValue:    *old,
				NewValue:    *new,
			}}, []impactUpdate{{
				severity:          models.SeverityModerate,
				discretionChanged: true,
			}}
	}
	return nil, nil
}

// diffMetadata walks the union of keys in sorted order so output is
// deterministic across runs.
func diffMetadata(old, new map[string]string) ([]models.Change, []impactUpdate) {
	keys := make(map[string]bool, len(old)+len(new))
	for k := range old {
		keys[k] = true
	}
	for k := range new {
		keys[k] = true
	}
	sorted := make([]string, 0, len(keys))
	for k := range keys {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)

	var changes []models.Change
	var updates []impactUpdate
	for _, k := range sorted {
		oldVal, inOld := old[k]
		newVal, inNew := new[k]
		switch {
		case !inOld && inNew:
			changes = append(changes, models.Change{
				Type:        models.ChangeAdded,
				Target:      models.MetadataTarget(k),
				Description: fmt.Sprintf("metadata %q added", k),
				NewValue:    newVal,
			})
		case inOld && !inNew:
			changes = append(changes, models.Change{
				Type:        models.ChangeRemoved,
				Target:      models.MetadataTarget(k),
				Description: fmt.Sprintf("metadata %q removed", k),
				OldValue:    oldVal,
			})
		case oldVal != newVal:
			changes = append(changes, models.Change{
				Type:        models.ChangeModified,
				Target:      models.MetadataTarget(k),
				Description: fmt.Sprintf("metadata %q changed", k),
				OldValue:    oldVal,
				NewValue:    newVal,
			})
		default:
			continue
		}
		updates = append(updates, impactUpdate{severity: models.SeverityMinor})
	}

	return changes, updates
}

func renderCondition(c models.Condition) string {
	return fmt.Sprintf("%s %s %s", c.Field, c.Operator, c.Value)
}

func renderEffect(e models.Effect) string {
	if e.Detail == "" {
		return fmt.Sprintf("%s %s", e.Kind, e.Subject)
	}
	return fmt.Sprintf("%s %s (%s)", e.Kind, e.Subject, e.Detail)
}
