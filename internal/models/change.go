package models

import "fmt"

// ChangeType classifies how a statute element changed between versions.
type ChangeType string

const (
	ChangeAdded     ChangeType = "added"
	ChangeRemoved   ChangeType = "removed"
	ChangeModified  ChangeType = "modified"
	ChangeReordered ChangeType = "reordered"
)

// TargetKind identifies which part of a statute a change touches.
type TargetKind string

const (
	TargetTitle           TargetKind = "title"
	TargetPrecondition    TargetKind = "precondition"
	TargetEffect          TargetKind = "effect"
	TargetDiscretionLogic TargetKind = "discretion_logic"
	TargetMetadata        TargetKind = "metadata"
)

// ChangeTarget is a tagged location within a statute. Index is meaningful
// only for precondition targets, Key only for metadata targets.
type ChangeTarget struct {
	Kind  TargetKind `json:"kind"`
	Index int        `json:"index,omitempty"`
	Key   string     `json:"key,omitempty"`
}

// TitleTarget locates the statute title.
func TitleTarget() ChangeTarget { return ChangeTarget{Kind: TargetTitle} }

// PreconditionTarget locates the precondition at the given list index.
func PreconditionTarget(index int) ChangeTarget {
	return ChangeTarget{Kind: TargetPrecondition, Index: index}
}

// EffectTarget locates the statute effect.
func EffectTarget() ChangeTarget { return ChangeTarget{Kind: TargetEffect} }

// DiscretionTarget locates the statute's discretion logic.
func DiscretionTarget() ChangeTarget { return ChangeTarget{Kind: TargetDiscretionLogic} }

// MetadataTarget locates the metadata entry under the given key.
func MetadataTarget(key string) ChangeTarget {
	return ChangeTarget{Kind: TargetMetadata, Key: key}
}

// Render returns the canonical location string used in descriptions,
// tables, and comment anchors.
func (t ChangeTarget) Render() string {
	switch t.Kind {
	case TargetTitle:
		return "title"
	case TargetPrecondition:
		return fmt.Sprintf("precondition[%d]", t.Index)
	case TargetEffect:
		return "effect"
	case TargetDiscretionLogic:
		return "discretion_logic"
	case TargetMetadata:
		return fmt.Sprintf("metadata[%s]", t.Key)
	default:
		return string(t.Kind)
	}
}

// Change is one atomic difference between two versions of a statute.
// Changes are immutable once constructed and owned by their StatuteDiff.
type Change struct {
	Type        ChangeType   `json:"type"`
	Target      ChangeTarget `json:"target"`
	Description string       `json:"description"`
	OldValue    string       `json:"old_value,omitempty"`
	NewValue    string       `json:"new_value,omitempty"`
}

func (c Change) String() string {
	return fmt.Sprintf("[%s] %s: %s", c.Type, c.Target.Render(), c.Description)
}
