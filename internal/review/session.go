// Package review implements the stakeholder review workflow around a
// statute diff: sessions, comments, annotations, approvals, and the
// notification side channel.
package review

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/lexflow/statrev/internal/models"
)

// State is the review session lifecycle state.
type State string

const (
	StateInProgress       State = "in_progress"
	StateApproved         State = "approved"
	StateChangesRequested State = "changes_requested"
	StateRejected         State = "rejected"
	StateCancelled        State = "cancelled"
)

// Role is a participant's role within one session.
type Role string

const (
	RoleReviewer  Role = "reviewer"
	RoleApprover  Role = "approver"
	RoleAuthor    Role = "author"
	RoleModerator Role = "moderator"
)

// ParseRole maps a name to its Role and reports whether it matched.
func ParseRole(name string) (Role, bool) {
	switch Role(name) {
	case RoleReviewer, RoleApprover, RoleAuthor, RoleModerator:
		return Role(name), true
	}
	return "", false
}

// AnnotationType classifies an annotation.
type AnnotationType string

const (
	AnnotationSuggestion AnnotationType = "suggestion"
	AnnotationNote       AnnotationType = "note"
	AnnotationQuestion   AnnotationType = "question"
	AnnotationIssue      AnnotationType = "issue"
)

// Participant is one stakeholder on a session. Participants are never
// deleted; leaving a review means being marked inactive.
type Participant struct {
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Role        Role      `json:"role"`
	JoinedAt    time.Time `json:"joined_at"`
	IsActive    bool      `json:"is_active"`
}

// Comment is one threaded comment on a session. Resolution is a flag flip;
// comments are never removed.
type Comment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	Target    string    `json:"target,omitempty"`    // rendered change location, e.g. "precondition[1]"
	ParentID  string    `json:"parent_id,omitempty"` // empty for top-level comments
	Resolved  bool      `json:"resolved"`
	CreatedAt time.Time `json:"created_at"`
}

// Annotation is one structured note attached to a change location.
type Annotation struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Target    string         `json:"target"`
	Text      string         `json:"text"`
	Type      AnnotationType `json:"type"`
	CreatedAt time.Time      `json:"created_at"`
}

// ErrNotAnApprover is returned when a user without the approver role tries
// to approve a session.
var ErrNotAnApprover = errors.New("user is not an approver on this session")

// Session wraps one statute diff in a review workflow. The diff is owned by
// the session and never mutated. All collections are append-only; the
// session itself is never deleted, only moved to a terminal state.
//
// A session is safe for concurrent use: an internal mutex serializes all
// operations. Mutate it only through its methods.
type Session struct {
	mu sync.Mutex

	ID           string              `json:"id"`
	Diff         *models.StatuteDiff `json:"diff"`
	Participants []Participant       `json:"participants"`
	Comments     []Comment           `json:"comments"`
	Annotations  []Annotation        `json:"annotations"`
	State        State               `json:"state"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`

	notifier *NotificationSystem
}

// NewSession creates a session in progress with the author as its first
// participant.
func NewSession(diff *models.StatuteDiff, authorID, authorName string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:   newULID(),
		Diff: diff,
		Participants: []Participant{{
			UserID:      authorID,
			DisplayName: authorName,
			Role:        RoleAuthor,
			JoinedAt:    now,
			IsActive:    true,
		}},
		State:     StateInProgress,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SetNotifier attaches a notification sink. Without one, session events are
// silently dropped.
func (s *Session) SetNotifier(n *NotificationSystem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifier = n
}

// AddParticipant appends a participant. Duplicate user ids are accepted,
// including under different roles; the session does not enforce uniqueness.
func (s *Session) AddParticipant(userID, displayName string, role Role) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Participants = append(s.Participants, Participant{
		UserID:      userID,
		DisplayName: displayName,
		Role:        role,
		JoinedAt:    time.Now().UTC(),
		IsActive:    true,
	})
	s.touchLocked()
	s.notifyLocked(userID, NotificationAddedToReview,
		fmt.Sprintf("You were added to review session %s as %s", s.ID, role))
}

// DeactivateParticipant marks every entry for the user inactive. The
// participant record itself is kept for audit history.
func (s *Session) DeactivateParticipant(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.Participants {
		if s.Participants[i].UserID == userID {
			s.Participants[i].IsActive = false
		}
	}
	s.touchLocked()
}

// AddComment appends a comment. target may anchor the comment to a rendered
// change location; pass "" for a general comment. Commenting does not
// require being a participant.
func (s *Session) AddComment(userID, content, target string) Comment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addCommentLocked(userID, content, target, "")
}

// AddReply appends a reply under the given parent comment.
func (s *Session) AddReply(userID, parentID, content string) Comment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addCommentLocked(userID, content, "", parentID)
}

func (s *Session) addCommentLocked(userID, content, target, parentID string) Comment {
	c := Comment{
		ID:        newULID(),
		UserID:    userID,
		Content:   content,
		Target:    target,
		ParentID:  parentID,
		CreatedAt: time.Now().UTC(),
	}
	s.Comments = append(s.Comments, c)
	s.touchLocked()
	s.notifyOthersLocked(userID, NotificationCommentAdded,
		fmt.Sprintf("%s commented on review session %s", userID, s.ID))
	return c
}

// ResolveComment flips the resolved flag on one comment. Unknown ids are a
// no-op.
func (s *Session) ResolveComment(commentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.Comments {
		if s.Comments[i].ID == commentID {
			s.Comments[i].Resolved = true
			s.touchLocked()
			return
		}
	}
}

// AddAnnotation appends an annotation anchored to a change location. Like
// commenting, this carries no authorization check.
func (s *Session) AddAnnotation(userID, target, text string, annotationType AnnotationType) Annotation {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := Annotation{
		ID:        newULID(),
		UserID:    userID,
		Target:    target,
		Text:      text,
		Type:      annotationType,
		CreatedAt: time.Now().UTC(),
	}
	s.Annotations = append(s.Annotations, a)
	s.touchLocked()
	return a
}

// Approve moves the session to Approved. It fails unless the user holds the
// approver role; a single approver is sufficient to flip the state. Callers
// that want quorum semantics compose an ApprovalWorkflow alongside the
// session.
func (s *Session) Approve(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hasRoleLocked(userID, RoleApprover) {
		return ErrNotAnApprover
	}
	s.setStateLocked(StateApproved, userID)
	return nil
}

// RequestChanges moves the session to ChangesRequested. The reason is
// always persisted as a comment by the requesting user.
func (s *Session) RequestChanges(userID, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.addCommentLocked(userID, reason, "", "")
	s.setStateLocked(StateChangesRequested, userID)
}

// Reject moves the session to Rejected, persisting the reason as a comment.
func (s *Session) Reject(userID, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.addCommentLocked(userID, reason, "", "")
	s.setStateLocked(StateRejected, userID)
}

// Cancel moves the session to Cancelled. Any user may cancel; the actor is
// recorded via the notification stream only.
func (s *Session) Cancel(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setStateLocked(StateCancelled, userID)
}

// UnresolvedComments returns the comments not yet resolved, in insertion
// order.
func (s *Session) UnresolvedComments() []Comment {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Comment
	for _, c := range s.Comments {
		if !c.Resolved {
			out = append(out, c)
		}
	}
	return out
}

// Snapshot returns a copy of the session for rendering or persistence.
// Collections are copied; the diff is shared (it is immutable).
func (s *Session) Snapshot() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := &Session{
		ID:        s.ID,
		Diff:      s.Diff,
		State:     s.State,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
	out.Participants = append([]Participant(nil), s.Participants...)
	out.Comments = append([]Comment(nil), s.Comments...)
	out.Annotations = append([]Annotation(nil), s.Annotations...)
	return out
}

func (s *Session) hasRoleLocked(userID string, role Role) bool {
	for _, p := range s.Participants {
		if p.UserID == userID && p.Role == role && p.IsActive {
			return true
		}
	}
	return false
}

func (s *Session) setStateLocked(state State, actorID string) {
	s.State = state
	s.touchLocked()
	s.notifyOthersLocked(actorID, NotificationStateChanged,
		fmt.Sprintf("Review session %s moved to %s", s.ID, state))
}

func (s *Session) touchLocked() {
	s.UpdatedAt = time.Now().UTC()
}

// notifyLocked sends to a single recipient.
func (s *Session) notifyLocked(recipient string, t NotificationType, message string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(recipient, t, s.ID, message)
}

// notifyOthersLocked fans out to every active participant except the actor.
// Duplicate participant entries for one user produce a single notification.
func (s *Session) notifyOthersLocked(actorID string, t NotificationType, message string) {
	if s.notifier == nil {
		return
	}
	seen := map[string]bool{actorID: true}
	for _, p := range s.Participants {
		if !p.IsActive || seen[p.UserID] {
			continue
		}
		seen[p.UserID] = true
		s.notifier.Notify(p.UserID, t, s.ID, message)
	}
}

// newULID generates a new ULID string.
func newULID() string {
	entropy := rand.New(rand.NewSource(time.Now().UnixNano()))
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulid.Monotonic(entropy, 0)).String()
}
