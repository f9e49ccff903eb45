package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain/messaging"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/storage"
)

// MessageStore implementation -------------------------------------------------

func convPairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "|" + b
}

func (s *Store) CreateConversation(_ context.Context, c messaging.Conversation) (messaging.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := convPairKey(c.ParticipantA, c.ParticipantB)
	if _, exists := s.convByPair[key]; exists {
		return messaging.Conversation{}, fmt.Errorf("conversation: %w", domain.ErrConflict)
	}
	if c.ID == "" {
		c.ID = newID()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.LastMessageAt = now
	s.conversations[c.ID] = c
	s.convByPair[key] = c.ID
	return c, nil
}

func (s *Store) GetConversation(_ context.Context, id string) (messaging.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.conversations[id]
	if !ok {
		return messaging.Conversation{}, fmt.Errorf("conversation %s: %w", id, domain.ErrNotFound)
	}
	return c, nil
}

func (s *Store) GetConversationBetween(_ context.Context, userA, userB string) (messaging.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.convByPair[convPairKey(userA, userB)]
	if !ok {
		return messaging.Conversation{}, fmt.Errorf("conversation: %w", domain.ErrNotFound)
	}
	return s.conversations[id], nil
}

func (s *Store) ListConversations(_ context.Context, userID string, page storage.Page) ([]messaging.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []messaging.Conversation
	for _, c := range s.conversations {
		if c.HasParticipant(userID) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastMessageAt.Equal(out[j].LastMessageAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].LastMessageAt.After(out[j].LastMessageAt)
	})
	lo, hi := bounds(page, len(out))
	return out[lo:hi], nil
}

func (s *Store) CreateMessage(_ context.Context, m messaging.Message) (messaging.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.conversations[m.ConversationID]
	if !ok {
		return messaging.Message{}, fmt.Errorf("conversation %s: %w", m.ConversationID, domain.ErrNotFound)
	}
	if m.ID == "" {
		m.ID = newID()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	s.messages[m.ConversationID] = append(s.messages[m.ConversationID], m)
	c.LastMessageAt = m.CreatedAt
	s.conversations[c.ID] = c
	return m, nil
}

func (s *Store) ListMessages(_ context.Context, conversationID string, page storage.Page) ([]messaging.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.messages[conversationID]
	lo, hi := bounds(page, len(msgs))
	out := make([]messaging.Message, hi-lo)
	copy(out, msgs[lo:hi])
	return out, nil
}

func (s *Store) ListMessagesSince(_ context.Context, conversationID string, since time.Time) ([]messaging.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []messaging.Message
	for _, m := range s.messages[conversationID] {
		if m.CreatedAt.After(since) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *Store) MarkConversationRead(_ context.Context, conversationID, readerID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.conversations[conversationID]; !ok {
		return fmt.Errorf("conversation %s: %w", conversationID, domain.ErrNotFound)
	}
	msgs := s.messages[conversationID]
	for i := range msgs {
		if msgs[i].SenderID != readerID && msgs[i].ReadAt.IsZero() {
			msgs[i].ReadAt = at
		}
	}
	return nil
}
