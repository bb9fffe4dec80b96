package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexflow/statrev/internal/models"
)

func testDiff() *models.StatuteDiff {
	return &models.StatuteDiff{
		StatuteID: "housing-benefit",
		Changes: []models.Change{
			{Type: models.ChangeModified, Target: models.TitleTarget(), Description: "title changed"},
		},
		Impact: models.ImpactAssessment{Severity: models.SeverityMinor},
	}
}

func TestNewSession(t *testing.T) {
	s := NewSession(testDiff(), "alice", "Alice")

	assert.NotEmpty(t, s.ID)
	assert.Equal(t, StateInProgress, s.State)
	assert.False(t, s.CreatedAt.IsZero())
	assert.Equal(t, s.CreatedAt, s.UpdatedAt)

	require.Len(t, s.Participants, 1)
	author := s.Participants[0]
	assert.Equal(t, "alice", author.UserID)
	assert.Equal(t, RoleAuthor, author.Role)
	assert.True(t, author.IsActive)
}

func TestAddParticipant_DuplicatesAccepted(t *testing.T) {
	s := NewSession(testDiff(), "alice", "Alice")
	s.AddParticipant("bob", "Bob", RoleReviewer)
	s.AddParticipant("bob", "Bob", RoleApprover)

	// Participants are append-only; the same user may appear under
	// multiple roles.
	require.Len(t, s.Participants, 3)
	assert.Equal(t, RoleReviewer, s.Participants[1].Role)
	assert.Equal(t, RoleApprover, s.Participants[2].Role)
}

func TestDeactivateParticipant_KeepsRecord(t *testing.T) {
	s := NewSession(testDiff(), "alice", "Alice")
	s.AddParticipant("bob", "Bob", RoleReviewer)

	s.DeactivateParticipant("bob")

	require.Len(t, s.Participants, 2)
	assert.False(t, s.Participants[1].IsActive)
	assert.True(t, s.Participants[0].IsActive)
}

func TestApprove(t *testing.T) {
	s := NewSession(testDiff(), "alice", "Alice")
	s.AddParticipant("bob", "Bob", RoleApprover)

	// Unregistered users cannot approve, and the state is untouched.
	err := s.Approve("carol")
	require.ErrorIs(t, err, ErrNotAnApprover)
	assert.Equal(t, StateInProgress, s.State)

	// Non-approver roles cannot approve either.
	err = s.Approve("alice")
	require.ErrorIs(t, err, ErrNotAnApprover)

	// A single approver flips the state.
	require.NoError(t, s.Approve("bob"))
	assert.Equal(t, StateApproved, s.State)
}

func TestApprove_InactiveApproverRejected(t *testing.T) {
	s := NewSession(testDiff(), "alice", "Alice")
	s.AddParticipant("bob", "Bob", RoleApprover)
	s.DeactivateParticipant("bob")

	err := s.Approve("bob")
	require.ErrorIs(t, err, ErrNotAnApprover)
	assert.Equal(t, StateInProgress, s.State)
}

func TestAddComment_NoAuthorizationRequired(t *testing.T) {
	s := NewSession(testDiff(), "alice", "Alice")

	// Commenting does not require being a participant.
	c := s.AddComment("stranger", "looks wrong", "precondition[0]")
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "stranger", c.UserID)
	assert.Equal(t, "precondition[0]", c.Target)
	assert.False(t, c.Resolved)

	require.Len(t, s.Comments, 1)
}

func TestAddReply(t *testing.T) {
	s := NewSession(testDiff(), "alice", "Alice")
	parent := s.AddComment("alice", "first", "")
	reply := s.AddReply("bob", parent.ID, "second")

	require.Len(t, s.Comments, 2)
	assert.Equal(t, parent.ID, reply.ParentID)
	assert.Empty(t, parent.ParentID)
}

func TestResolveComment(t *testing.T) {
	s := NewSession(testDiff(), "alice", "Alice")
	c1 := s.AddComment("alice", "one", "")
	c2 := s.AddComment("bob", "two", "")

	s.ResolveComment(c1.ID)
	s.ResolveComment("unknown-id") // no-op

	unresolved := s.UnresolvedComments()
	require.Len(t, unresolved, 1)
	assert.Equal(t, c2.ID, unresolved[0].ID)
}

func TestUnresolvedComments_InsertionOrder(t *testing.T) {
	s := NewSession(testDiff(), "alice", "Alice")
	first := s.AddComment("a", "1", "")
	second := s.AddComment("b", "2", "")
	third := s.AddComment("c", "3", "")
	s.ResolveComment(second.ID)

	unresolved := s.UnresolvedComments()
	require.Len(t, unresolved, 2)
	assert.Equal(t, first.ID, unresolved[0].ID)
	assert.Equal(t, third.ID, unresolved[1].ID)
}

func TestRequestChanges_PersistsReasonAsComment(t *testing.T) {
	s := NewSession(testDiff(), "alice", "Alice")
	s.RequestChanges("bob", "precondition[1] conflicts with §4")

	assert.Equal(t, StateChangesRequested, s.State)
	require.Len(t, s.Comments, 1)
	assert.Equal(t, "bob", s.Comments[0].UserID)
	assert.Equal(t, "precondition[1] conflicts with §4", s.Comments[0].Content)
}

func TestRequestChanges_SessionStaysOpenForComments(t *testing.T) {
	s := NewSession(testDiff(), "alice", "Alice")
	s.RequestChanges("bob", "needs work")

	// Further comments and annotations still land after ChangesRequested.
	s.AddComment("alice", "addressed", "")
	s.AddAnnotation("alice", "title", "reworded", AnnotationNote)

	assert.Len(t, s.Comments, 2)
	assert.Len(t, s.Annotations, 1)
}

func TestReject_PersistsReasonAsComment(t *testing.T) {
	s := NewSession(testDiff(), "alice", "Alice")
	s.Reject("bob", "duplicate of an earlier revision")

	assert.Equal(t, StateRejected, s.State)
	require.Len(t, s.Comments, 1)
	assert.Equal(t, "duplicate of an earlier revision", s.Comments[0].Content)
}

func TestCancel(t *testing.T) {
	s := NewSession(testDiff(), "alice", "Alice")
	s.Cancel("alice")
	assert.Equal(t, StateCancelled, s.State)
}

func TestAddAnnotation(t *testing.T) {
	s := NewSession(testDiff(), "alice", "Alice")
	a := s.AddAnnotation("bob", "effect", "should this be deny?", AnnotationQuestion)

	assert.NotEmpty(t, a.ID)
	assert.Equal(t, AnnotationQuestion, a.Type)
	require.Len(t, s.Annotations, 1)
}

func TestMutationsTouchUpdatedAt(t *testing.T) {
	s := NewSession(testDiff(), "alice", "Alice")
	created := s.CreatedAt

	s.AddComment("bob", "hi", "")
	assert.Equal(t, created, s.CreatedAt)
	assert.False(t, s.UpdatedAt.Before(created))
}

func TestApproveFlow(t *testing.T) {
	// Author submits, an approver is added and approves; outsiders fail.
	s := NewSession(testDiff(), "alice", "Alice")
	s.AddParticipant("bob", "Bob", RoleApprover)

	require.NoError(t, s.Approve("bob"))
	assert.Equal(t, StateApproved, s.State)

	err := s.Approve("carol")
	require.Error(t, err)
	assert.Equal(t, StateApproved, s.State)
}

func TestSnapshot_CopiesCollections(t *testing.T) {
	s := NewSession(testDiff(), "alice", "Alice")
	s.AddComment("alice", "one", "")

	snap := s.Snapshot()
	s.AddComment("bob", "two", "")

	assert.Len(t, snap.Comments, 1)
	assert.Len(t, s.Comments, 2)
	assert.Equal(t, s.ID, snap.ID)
}

func TestSessionNotifications(t *testing.T) {
	n := NewNotificationSystem()
	s := NewSession(testDiff(), "alice", "Alice")
	s.SetNotifier(n)

	s.AddParticipant("bob", "Bob", RoleApprover)

	// Bob is told he was added; alice is not notified about herself.
	bobNotifs := n.Notifications("bob")
	require.Len(t, bobNotifs, 1)
	assert.Equal(t, NotificationAddedToReview, bobNotifs[0].Type)
	assert.Equal(t, s.ID, bobNotifs[0].SessionID)

	// A comment by bob notifies alice but not bob.
	s.AddComment("bob", "reviewing now", "")
	require.Len(t, n.Notifications("alice"), 1)
	assert.Equal(t, NotificationCommentAdded, n.Notifications("alice")[0].Type)
	assert.Len(t, n.Notifications("bob"), 1)

	// Approval notifies the author of the state change.
	require.NoError(t, s.Approve("bob"))
	aliceNotifs := n.Notifications("alice")
	require.Len(t, aliceNotifs, 2)
	assert.Equal(t, NotificationStateChanged, aliceNotifs[1].Type)
}

func TestSessionNotifications_InactiveParticipantsSkipped(t *testing.T) {
	n := NewNotificationSystem()
	s := NewSession(testDiff(), "alice", "Alice")
	s.SetNotifier(n)
	s.AddParticipant("bob", "Bob", RoleReviewer)
	s.DeactivateParticipant("bob")

	s.AddComment("alice", "anyone?", "")
	// Only the added-to-review entry; the comment did not reach bob.
	assert.Len(t, n.Notifications("bob"), 1)
}
