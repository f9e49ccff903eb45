package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain/messaging"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/storage"
)

// --- MessageStore ------------------------------------------------------------

const conversationColumns = `id, participant_a, participant_b, created_at, last_message_at`

func scanConversation(row interface{ Scan(...any) error }) (messaging.Conversation, error) {
	var c messaging.Conversation
	err := row.Scan(&c.ID, &c.ParticipantA, &c.ParticipantB, &c.CreatedAt, &c.LastMessageAt)
	return c, err
}

func (s *Store) CreateConversation(ctx context.Context, c messaging.Conversation) (messaging.Conversation, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.LastMessageAt = now

	// Participants are stored ordered so the unique index covers both
	// directions of the pair.
	if c.ParticipantB < c.ParticipantA {
		c.ParticipantA, c.ParticipantB = c.ParticipantB, c.ParticipantA
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO conversations (id, participant_a, participant_b, created_at, last_message_at)
		VALUES ($1, $2, $3, $4, $5)
	`, c.ID, c.ParticipantA, c.ParticipantB, c.CreatedAt, c.LastMessageAt)
	if err != nil {
		return messaging.Conversation{}, translate("create conversation", err)
	}
	return c, nil
}

func (s *Store) GetConversation(ctx context.Context, id string) (messaging.Conversation, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+conversationColumns+` FROM conversations WHERE id = $1`, id)
	c, err := scanConversation(row)
	if err != nil {
		return messaging.Conversation{}, translate("get conversation", err)
	}
	return c, nil
}

func (s *Store) GetConversationBetween(ctx context.Context, userA, userB string) (messaging.Conversation, error) {
	if userB < userA {
		userA, userB = userB, userA
	}
	row := s.db.QueryRowContext(ctx, `
		SELECT `+conversationColumns+` FROM conversations
		WHERE participant_a = $1 AND participant_b = $2
	`, userA, userB)
	c, err := scanConversation(row)
	if err != nil {
		return messaging.Conversation{}, translate("get conversation between", err)
	}
	return c, nil
}

func (s *Store) ListConversations(ctx context.Context, userID string, p storage.Page) ([]messaging.Conversation, error) {
	limit, offset := page(p)
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+conversationColumns+`
		FROM conversations
		WHERE participant_a = $1 OR participant_b = $1
		ORDER BY last_message_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, translate("list conversations", err)
	}
	defer rows.Close()

	var out []messaging.Conversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, translate("list conversations", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

const messageColumns = `id, conversation_id, sender_id, body, created_at, read_at`

func scanMessage(row interface{ Scan(...any) error }) (messaging.Message, error) {
	var (
		m      messaging.Message
		readAt sql.NullTime
	)
	if err := row.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Body, &m.CreatedAt, &readAt); err != nil {
		return messaging.Message{}, err
	}
	if readAt.Valid {
		m.ReadAt = readAt.Time
	}
	return m, nil
}

func (s *Store) CreateMessage(ctx context.Context, m messaging.Message) (messaging.Message, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return messaging.Message{}, translate("create message", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO messages (id, conversation_id, sender_id, body, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, m.ID, m.ConversationID, m.SenderID, m.Body, m.CreatedAt); err != nil {
		return messaging.Message{}, translate("create message", err)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE conversations SET last_message_at = $2 WHERE id = $1
	`, m.ConversationID, m.CreatedAt); err != nil {
		return messaging.Message{}, translate("create message", err)
	}
	if err := tx.Commit(); err != nil {
		return messaging.Message{}, translate("create message", err)
	}
	return m, nil
}

func (s *Store) ListMessages(ctx context.Context, conversationID string, p storage.Page) ([]messaging.Message, error) {
	limit, offset := page(p)
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+messageColumns+`
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at
		LIMIT $2 OFFSET $3
	`, conversationID, limit, offset)
	if err != nil {
		return nil, translate("list messages", err)
	}
	return collectMessages(rows)
}

func (s *Store) ListMessagesSince(ctx context.Context, conversationID string, since time.Time) ([]messaging.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+messageColumns+`
		FROM messages
		WHERE conversation_id = $1 AND created_at > $2
		ORDER BY created_at
	`, conversationID, since)
	if err != nil {
		return nil, translate("list messages since", err)
	}
	return collectMessages(rows)
}

func (s *Store) MarkConversationRead(ctx context.Context, conversationID, readerID string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE messages SET read_at = $3
		WHERE conversation_id = $1 AND sender_id <> $2 AND read_at IS NULL
	`, conversationID, readerID, at)
	return translate("mark conversation read", err)
}

func collectMessages(rows *sql.Rows) ([]messaging.Message, error) {
	defer rows.Close()

	var out []messaging.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, translate("scan message", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
