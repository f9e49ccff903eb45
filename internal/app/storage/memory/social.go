package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain/social"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/storage"
)

// SocialStore implementation --------------------------------------------------

func connKey(userID string, provider social.Provider) string {
	return userID + "|" + string(provider)
}

func (s *Store) UpsertConnection(_ context.Context, c social.Connection) (social.Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := connKey(c.UserID, c.Provider)
	if existing, ok := s.connections[key]; ok {
		c.ID = existing.ID
		c.CreatedAt = existing.CreatedAt
	} else {
		if c.ID == "" {
			c.ID = newID()
		}
		c.CreatedAt = time.Now().UTC()
	}
	s.connections[key] = c
	return c, nil
}

func (s *Store) GetConnection(_ context.Context, userID string, provider social.Provider) (social.Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.connections[connKey(userID, provider)]
	if !ok {
		return social.Connection{}, fmt.Errorf("connection %s: %w", provider, domain.ErrNotFound)
	}
	return c, nil
}

func (s *Store) DeleteConnection(_ context.Context, userID string, provider social.Provider) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := connKey(userID, provider)
	if _, ok := s.connections[key]; !ok {
		return fmt.Errorf("connection %s: %w", provider, domain.ErrNotFound)
	}
	delete(s.connections, key)
	return nil
}

func (s *Store) ListConnections(_ context.Context, userID string) ([]social.Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []social.Connection
	for _, c := range s.connections {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Store) CreateSocialPost(_ context.Context, p social.Post) (social.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = newID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	s.socialPosts[p.ID] = p
	s.postOrder = append(s.postOrder, p.ID)
	return p, nil
}

func (s *Store) UpdateSocialPost(_ context.Context, p social.Post) (social.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.socialPosts[p.ID]
	if !ok {
		return social.Post{}, fmt.Errorf("post %s: %w", p.ID, domain.ErrNotFound)
	}
	p.UserID = existing.UserID
	p.QuizID = existing.QuizID
	p.Provider = existing.Provider
	p.CreatedAt = existing.CreatedAt
	s.socialPosts[p.ID] = p
	return p, nil
}

func (s *Store) GetSocialPost(_ context.Context, id string) (social.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.socialPosts[id]
	if !ok {
		return social.Post{}, fmt.Errorf("post %s: %w", id, domain.ErrNotFound)
	}
	return p, nil
}

func (s *Store) ListSocialPosts(_ context.Context, userID string, page storage.Page) ([]social.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []social.Post
	for i := len(s.postOrder) - 1; i >= 0; i-- {
		p := s.socialPosts[s.postOrder[i]]
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	lo, hi := bounds(page, len(out))
	return out[lo:hi], nil
}

func (s *Store) ListDuePosts(_ context.Context, now time.Time) ([]social.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []social.Post
	for _, id := range s.postOrder {
		p := s.socialPosts[id]
		if p.Status == social.PostPending && !p.ScheduledFor.IsZero() && !p.ScheduledFor.After(now) {
			out = append(out, p)
		}
	}
	return out, nil
}
