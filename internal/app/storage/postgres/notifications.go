package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain/notification"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/storage"
)

// --- NotificationStore -------------------------------------------------------

func (s *Store) CreateNotification(ctx context.Context, n notification.Notification) (notification.Notification, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, recipient_id, actor_id, kind, subject_id, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, n.ID, n.RecipientID, n.ActorID, n.Kind, n.SubjectID, n.Read, n.CreatedAt)
	if err != nil {
		return notification.Notification{}, translate("create notification", err)
	}
	return n, nil
}

func (s *Store) ListNotifications(ctx context.Context, recipientID string, unreadOnly bool, p storage.Page) ([]notification.Notification, error) {
	query := `
		SELECT id, recipient_id, actor_id, kind, subject_id, read, created_at
		FROM notifications
		WHERE recipient_id = $1`
	if unreadOnly {
		query += ` AND NOT read`
	}
	query += ` ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	limit, offset := page(p)
	rows, err := s.db.QueryContext(ctx, query, recipientID, limit, offset)
	if err != nil {
		return nil, translate("list notifications", err)
	}
	defer rows.Close()

	var out []notification.Notification
	for rows.Next() {
		var n notification.Notification
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.ActorID, &n.Kind, &n.SubjectID, &n.Read, &n.CreatedAt); err != nil {
			return nil, translate("list notifications", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Store) MarkNotificationRead(ctx context.Context, id, recipientID string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE notifications SET read = TRUE WHERE id = $1 AND recipient_id = $2
	`, id, recipientID)
	if err != nil {
		return translate("mark notification read", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return translate("mark notification read", sql.ErrNoRows)
	}
	return nil
}

func (s *Store) MarkAllNotificationsRead(ctx context.Context, recipientID string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE notifications SET read = TRUE WHERE recipient_id = $1 AND NOT read
	`, recipientID)
	return translate("mark all notifications read", err)
}

func (s *Store) CountUnreadNotifications(ctx context.Context, recipientID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND NOT read
	`, recipientID).Scan(&count)
	if err != nil {
		return 0, translate("count unread notifications", err)
	}
	return count, nil
}
