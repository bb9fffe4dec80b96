package review

import (
	"sync"
	"time"
)

// NotificationType classifies a notification.
type NotificationType string

const (
	NotificationCommentAdded  NotificationType = "comment_added"
	NotificationStateChanged  NotificationType = "state_changed"
	NotificationAddedToReview NotificationType = "added_to_review"
)

// Notification is one inbox entry. Delivery (email, webhook) is external;
// this system only holds the inbox.
type Notification struct {
	ID        string           `json:"id"`
	Recipient string           `json:"recipient"`
	Type      NotificationType `json:"type"`
	SessionID string           `json:"session_id"`
	Message   string           `json:"message"`
	CreatedAt time.Time        `json:"created_at"`
	Read      bool             `json:"read"`
}

// NotificationSystem is a per-user append-only inbox map. A single mutex
// serializes all access; contention is expected to be low.
type NotificationSystem struct {
	mu      sync.Mutex
	inboxes map[string][]Notification
}

// NewNotificationSystem creates an empty notification system.
func NewNotificationSystem() *NotificationSystem {
	return &NotificationSystem{inboxes: make(map[string][]Notification)}
}

// Notify appends a notification to the recipient's inbox and returns it.
func (n *NotificationSystem) Notify(recipient string, t NotificationType, sessionID, message string) Notification {
	n.mu.Lock()
	defer n.mu.Unlock()

	notif := Notification{
		ID:        newULID(),
		Recipient: recipient,
		Type:      t,
		SessionID: sessionID,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
	n.inboxes[recipient] = append(n.inboxes[recipient], notif)
	return notif
}

// Notifications returns a copy of the user's inbox in insertion order.
func (n *NotificationSystem) Notifications(userID string) []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notification(nil), n.inboxes[userID]...)
}

// UnreadNotifications returns the user's unread notifications in insertion
// order.
func (n *NotificationSystem) UnreadNotifications(userID string) []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()

	var out []Notification
	for _, notif := range n.inboxes[userID] {
		if !notif.Read {
			out = append(out, notif)
		}
	}
	return out
}

// MarkRead flips the read flag on exactly one notification. Unknown ids are
// a no-op.
func (n *NotificationSystem) MarkRead(userID, notificationID string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	inbox := n.inboxes[userID]
	for i := range inbox {
		if inbox[i].ID == notificationID {
			inbox[i].Read = true
			return
		}
	}
}
