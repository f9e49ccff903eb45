// Package messaging implements direct conversations between two users.
package messaging

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain/messaging"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain/notification"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/metrics"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/storage"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/pkg/logger"
)

const maxBodyLength = 4000

// Service manages conversations and messages.
type Service struct {
	store         storage.MessageStore
	users         storage.UserStore
	notifications storage.NotificationStore
	log           *logger.Logger
}

// New constructs a messaging service.
func New(store storage.MessageStore, users storage.UserStore, notifications storage.NotificationStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("messaging")
	}
	return &Service{store: store, users: users, notifications: notifications, log: log}
}

// Start returns the conversation between the caller and peerID, creating it
// if the pair has never talked. Blocked pairs cannot converse.
func (s *Service) Start(ctx context.Context, callerID, peerID string) (messaging.Conversation, error) {
	if callerID == peerID {
		return messaging.Conversation{}, fmt.Errorf("%w: cannot message yourself", domain.ErrInvalid)
	}
	if _, err := s.users.GetUser(ctx, peerID); err != nil {
		return messaging.Conversation{}, err
	}
	blocked, err := s.users.BlockExists(ctx, callerID, peerID)
	if err != nil {
		return messaging.Conversation{}, err
	}
	if blocked {
		return messaging.Conversation{}, fmt.Errorf("%w: blocked", domain.ErrForbidden)
	}

	conv, err := s.store.GetConversationBetween(ctx, callerID, peerID)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return messaging.Conversation{}, err
	}
	conv, err = s.store.CreateConversation(ctx, messaging.Conversation{
		ParticipantA: callerID,
		ParticipantB: peerID,
	})
	if err != nil && errors.Is(err, domain.ErrConflict) {
		// Lost a race against the peer starting the same conversation.
		return s.store.GetConversationBetween(ctx, callerID, peerID)
	}
	return conv, err
}

// Conversations lists the caller's conversations, newest activity first.
func (s *Service) Conversations(ctx context.Context, callerID string, page storage.Page) ([]messaging.Conversation, error) {
	return s.store.ListConversations(ctx, callerID, page)
}

// Send appends a message to a conversation the caller belongs to and
// notifies the peer.
func (s *Service) Send(ctx context.Context, callerID, conversationID, body string) (messaging.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return messaging.Message{}, fmt.Errorf("%w: message body is required", domain.ErrInvalid)
	}
	if len(body) > maxBodyLength {
		return messaging.Message{}, fmt.Errorf("%w: message too long", domain.ErrInvalid)
	}

	conv, err := s.requireParticipant(ctx, callerID, conversationID)
	if err != nil {
		return messaging.Message{}, err
	}
	peer := conv.Peer(callerID)
	blocked, err := s.users.BlockExists(ctx, callerID, peer)
	if err != nil {
		return messaging.Message{}, err
	}
	if blocked {
		return messaging.Message{}, fmt.Errorf("%w: blocked", domain.ErrForbidden)
	}

	msg, err := s.store.CreateMessage(ctx, messaging.Message{
		ConversationID: conversationID,
		SenderID:       callerID,
		Body:           body,
	})
	if err != nil {
		return messaging.Message{}, err
	}
	metrics.RecordMessageSent()
	if s.notifications != nil {
		if _, err := s.notifications.CreateNotification(ctx, notification.Notification{
			RecipientID: peer,
			ActorID:     callerID,
			Kind:        notification.KindMessage,
			SubjectID:   conversationID,
		}); err != nil {
			s.log.WithError(err).Warn("message notification")
		}
	}
	return msg, nil
}

// Messages lists a conversation's messages, oldest first.
func (s *Service) Messages(ctx context.Context, callerID, conversationID string, page storage.Page) ([]messaging.Message, error) {
	if _, err := s.requireParticipant(ctx, callerID, conversationID); err != nil {
		return nil, err
	}
	return s.store.ListMessages(ctx, conversationID, page)
}

// MessagesSince returns messages created strictly after since, oldest first.
// This is the poll endpoint; there are no delivery guarantees beyond the
// database sort.
func (s *Service) MessagesSince(ctx context.Context, callerID, conversationID string, since time.Time) ([]messaging.Message, error) {
	if _, err := s.requireParticipant(ctx, callerID, conversationID); err != nil {
		return nil, err
	}
	return s.store.ListMessagesSince(ctx, conversationID, since)
}

// MarkRead sets read-at on the peer's unread messages.
func (s *Service) MarkRead(ctx context.Context, callerID, conversationID string) error {
	if _, err := s.requireParticipant(ctx, callerID, conversationID); err != nil {
		return err
	}
	return s.store.MarkConversationRead(ctx, conversationID, callerID, time.Now().UTC())
}

func (s *Service) requireParticipant(ctx context.Context, callerID, conversationID string) (messaging.Conversation, error) {
	conv, err := s.store.GetConversation(ctx, conversationID)
	if err != nil {
		return messaging.Conversation{}, err
	}
	if !conv.HasParticipant(callerID) {
		// Do not leak that the conversation exists.
		return messaging.Conversation{}, fmt.Errorf("%w: conversation", domain.ErrNotFound)
	}
	return conv, nil
}
