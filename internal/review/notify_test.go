package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotify_AppendsToInbox(t *testing.T) {
	n := NewNotificationSystem()

	first := n.Notify("alice", NotificationCommentAdded, "sess-1", "bob commented")
	second := n.Notify("alice", NotificationStateChanged, "sess-1", "approved")
	n.Notify("bob", NotificationAddedToReview, "sess-1", "added")

	inbox := n.Notifications("alice")
	require.Len(t, inbox, 2)
	assert.Equal(t, first.ID, inbox[0].ID)
	assert.Equal(t, second.ID, inbox[1].ID)
	assert.False(t, inbox[0].Read)

	assert.Len(t, n.Notifications("bob"), 1)
	assert.Empty(t, n.Notifications("nobody"))
}

func TestMarkRead(t *testing.T) {
	n := NewNotificationSystem()
	first := n.Notify("alice", NotificationCommentAdded, "sess-1", "one")
	n.Notify("alice", NotificationCommentAdded, "sess-1", "two")

	n.MarkRead("alice", first.ID)

	unread := n.UnreadNotifications("alice")
	require.Len(t, unread, 1)
	assert.Equal(t, "two", unread[0].Message)

	// Unknown ids and wrong users are no-ops.
	n.MarkRead("alice", "missing")
	n.MarkRead("bob", first.ID)
	assert.Len(t, n.UnreadNotifications("alice"), 1)
}

func TestUnreadNotifications_PreservesOrder(t *testing.T) {
	n := NewNotificationSystem()
	n.Notify("alice", NotificationCommentAdded, "s", "1")
	mid := n.Notify("alice", NotificationCommentAdded, "s", "2")
	n.Notify("alice", NotificationCommentAdded, "s", "3")
	n.MarkRead("alice", mid.ID)

	unread := n.UnreadNotifications("alice")
	require.Len(t, unread, 2)
	assert.Equal(t, "1", unread[0].Message)
	assert.Equal(t, "3", unread[1].Message)
}
