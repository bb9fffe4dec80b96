package review

import (
	"errors"
	"sync"
)

// ErrNotARequiredApprover is returned when a user outside the required set
// tries to approve a workflow.
var ErrNotARequiredApprover = errors.New("user is not a required approver")

// ApprovalWorkflow tracks quorum-based approval independently of a review
// session. It is not wired into Session.Approve: callers wanting
// multi-approver semantics compose the two explicitly.
type ApprovalWorkflow struct {
	mu           sync.Mutex
	required     []string // declared order, also the order of PendingApprovers
	approved     map[string]bool
	minApprovals int
}

// NewApprovalWorkflow creates a workflow requiring minApprovals distinct
// approvals from the given approver set.
func NewApprovalWorkflow(requiredApprovers []string, minApprovals int) *ApprovalWorkflow {
	return &ApprovalWorkflow{
		required:     append([]string(nil), requiredApprovers...),
		approved:     make(map[string]bool),
		minApprovals: minApprovals,
	}
}

// Approve records an approval. Re-approving is a no-op, not an error.
func (w *ApprovalWorkflow) Approve(userID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.isRequiredLocked(userID) {
		return ErrNotARequiredApprover
	}
	w.approved[userID] = true
	return nil
}

// IsComplete reports whether the quorum has been reached.
func (w *ApprovalWorkflow) IsComplete() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.approved) >= w.minApprovals
}

// PendingApprovers returns the required approvers who have not yet
// approved, in declared order.
func (w *ApprovalWorkflow) PendingApprovers() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	var out []string
	for _, u := range w.required {
		if !w.approved[u] {
			out = append(out, u)
		}
	}
	return out
}

// ApprovedBy returns the approvers who have approved, in declared order.
func (w *ApprovalWorkflow) ApprovedBy() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	var out []string
	for _, u := range w.required {
		if w.approved[u] {
			out = append(out, u)
		}
	}
	return out
}

func (w *ApprovalWorkflow) isRequiredLocked(userID string) bool {
	for _, u := range w.required {
		if u == userID {
			return true
		}
	}
	return false
}
