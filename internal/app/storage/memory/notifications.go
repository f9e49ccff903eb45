package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain/notification"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/storage"
)

// NotificationStore implementation --------------------------------------------

func (s *Store) CreateNotification(_ context.Context, n notification.Notification) (notification.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n.ID == "" {
		n.ID = newID()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	s.notifsByUser[n.RecipientID] = append(s.notifsByUser[n.RecipientID], n)
	return n, nil
}

func (s *Store) ListNotifications(_ context.Context, recipientID string, unreadOnly bool, page storage.Page) ([]notification.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.notifsByUser[recipientID]
	var out []notification.Notification
	// Newest first.
	for i := len(all) - 1; i >= 0; i-- {
		if unreadOnly && all[i].Read {
			continue
		}
		out = append(out, all[i])
	}
	lo, hi := bounds(page, len(out))
	return out[lo:hi], nil
}

func (s *Store) MarkNotificationRead(_ context.Context, id, recipientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.notifsByUser[recipientID]
	for i := range all {
		if all[i].ID == id {
			all[i].Read = true
			return nil
		}
	}
	return fmt.Errorf("notification %s: %w", id, domain.ErrNotFound)
}

func (s *Store) MarkAllNotificationsRead(_ context.Context, recipientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.notifsByUser[recipientID]
	for i := range all {
		all[i].Read = true
	}
	return nil
}

func (s *Store) CountUnreadNotifications(_ context.Context, recipientID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, n := range s.notifsByUser[recipientID] {
		if !n.Read {
			count++
		}
	}
	return count, nil
}
