// Package notifications exposes a user's notification inbox. The entries are
// produced by the other services writing through the notification store.
package notifications

import (
	"context"

	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain/notification"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/storage"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/pkg/logger"
)

// Service reads and mutates the notification inbox.
type Service struct {
	store storage.NotificationStore
	log   *logger.Logger
}

// New constructs a notifications service.
func New(store storage.NotificationStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("notifications")
	}
	return &Service{store: store, log: log}
}

// List returns the caller's notifications, newest first.
func (s *Service) List(ctx context.Context, callerID string, unreadOnly bool, page storage.Page) ([]notification.Notification, error) {
	return s.store.ListNotifications(ctx, callerID, unreadOnly, page)
}

// MarkRead marks one of the caller's notifications read.
func (s *Service) MarkRead(ctx context.Context, callerID, id string) error {
	return s.store.MarkNotificationRead(ctx, id, callerID)
}

// MarkAllRead marks every unread notification read.
func (s *Service) MarkAllRead(ctx context.Context, callerID string) error {
	return s.store.MarkAllNotificationsRead(ctx, callerID)
}

// UnreadCount returns the number of unread notifications.
func (s *Service) UnreadCount(ctx context.Context, callerID string) (int, error) {
	return s.store.CountUnreadNotifications(ctx, callerID)
}
