package store

import (
	"context"

	"github.com/lexflow/statrev/internal/models"
	"github.com/lexflow/statrev/internal/review"
)

// SessionListFilter specifies filters for listing review sessions.
type SessionListFilter struct {
	StatuteID string
	State     review.State
}

// Store defines the persistence interface for statrev.
type Store interface {
	// Statute diffs
	SaveDiff(ctx context.Context, d *models.StatuteDiff) error
	GetDiff(ctx context.Context, id string) (*models.StatuteDiff, error)
	ListDiffsByStatute(ctx context.Context, statuteID string) ([]*models.StatuteDiff, error)

	// Review sessions
	CreateReviewSession(ctx context.Context, s *review.Session) error
	GetReviewSession(ctx context.Context, id string) (*review.Session, error)
	UpdateReviewSession(ctx context.Context, s *review.Session) error
	ListReviewSessions(ctx context.Context, filter SessionListFilter) ([]*review.Session, error)

	// Notifications
	SaveNotification(ctx context.Context, n review.Notification) error
	ListNotifications(ctx context.Context, userID string, unreadOnly bool) ([]review.Notification, error)
	MarkNotificationRead(ctx context.Context, userID, notificationID string) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
