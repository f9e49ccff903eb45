package memory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain/user"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/storage"
)

// UserStore implementation ----------------------------------------------------

func (s *Store) CreateUser(_ context.Context, u user.User) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := strings.ToLower(u.Username)
	mail := strings.ToLower(u.Email)
	if _, exists := s.userIDByName[name]; exists {
		return user.User{}, fmt.Errorf("username %s: %w", u.Username, domain.ErrConflict)
	}
	if _, exists := s.userIDByMail[mail]; exists {
		return user.User{}, fmt.Errorf("email %s: %w", u.Email, domain.ErrConflict)
	}

	if u.ID == "" {
		u.ID = newID()
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	s.users[u.ID] = u
	s.userIDByName[name] = u.ID
	s.userIDByMail[mail] = u.ID
	return u, nil
}

func (s *Store) UpdateUser(_ context.Context, u user.User) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[u.ID]
	if !ok {
		return user.User{}, fmt.Errorf("user %s: %w", u.ID, domain.ErrNotFound)
	}
	u.Username = existing.Username
	u.Email = existing.Email
	u.CreatedAt = existing.CreatedAt
	u.UpdatedAt = time.Now().UTC()
	s.users[u.ID] = u
	return u, nil
}

func (s *Store) GetUser(_ context.Context, id string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return user.User{}, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	return u, nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.userIDByName[strings.ToLower(username)]
	if !ok {
		return user.User{}, fmt.Errorf("user %s: %w", username, domain.ErrNotFound)
	}
	return s.users[id], nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.userIDByMail[strings.ToLower(email)]
	if !ok {
		return user.User{}, fmt.Errorf("user %s: %w", email, domain.ErrNotFound)
	}
	return s.users[id], nil
}

func (s *Store) CreateFollow(_ context.Context, f user.Follow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey(f.FollowerID, f.FolloweeID)
	if _, exists := s.follows[key]; exists {
		return fmt.Errorf("follow: %w", domain.ErrConflict)
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	s.follows[key] = f
	s.followOrder = append(s.followOrder, key)
	return nil
}

func (s *Store) DeleteFollow(_ context.Context, followerID, followeeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteFollowLocked(followerID, followeeID)
}

func (s *Store) deleteFollowLocked(followerID, followeeID string) error {
	key := pairKey(followerID, followeeID)
	if _, exists := s.follows[key]; !exists {
		return fmt.Errorf("follow: %w", domain.ErrNotFound)
	}
	delete(s.follows, key)
	for i, k := range s.followOrder {
		if k == key {
			s.followOrder = append(s.followOrder[:i], s.followOrder[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) FollowExists(_ context.Context, followerID, followeeID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.follows[pairKey(followerID, followeeID)]
	return ok, nil
}

func (s *Store) ListFollowers(_ context.Context, userID string, page storage.Page) ([]user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []user.User
	for _, key := range s.followOrder {
		f := s.follows[key]
		if f.FolloweeID == userID {
			out = append(out, s.users[f.FollowerID])
		}
	}
	lo, hi := bounds(page, len(out))
	return out[lo:hi], nil
}

func (s *Store) ListFollowing(_ context.Context, userID string, page storage.Page) ([]user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []user.User
	for _, key := range s.followOrder {
		f := s.follows[key]
		if f.FollowerID == userID {
			out = append(out, s.users[f.FolloweeID])
		}
	}
	lo, hi := bounds(page, len(out))
	return out[lo:hi], nil
}

func (s *Store) ListFollowingIDs(_ context.Context, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []string
	for _, key := range s.followOrder {
		f := s.follows[key]
		if f.FollowerID == userID {
			out = append(out, f.FolloweeID)
		}
	}
	return out, nil
}

func (s *Store) CreateBlock(_ context.Context, b user.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey(b.BlockerID, b.BlockedID)
	if _, exists := s.blocks[key]; exists {
		return fmt.Errorf("block: %w", domain.ErrConflict)
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	s.blocks[key] = b
	_ = s.deleteFollowLocked(b.BlockerID, b.BlockedID)
	_ = s.deleteFollowLocked(b.BlockedID, b.BlockerID)
	return nil
}

func (s *Store) DeleteBlock(_ context.Context, blockerID, blockedID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey(blockerID, blockedID)
	if _, exists := s.blocks[key]; !exists {
		return fmt.Errorf("block: %w", domain.ErrNotFound)
	}
	delete(s.blocks, key)
	return nil
}

func (s *Store) BlockExists(_ context.Context, userA, userB string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.blocks[pairKey(userA, userB)]; ok {
		return true, nil
	}
	_, ok := s.blocks[pairKey(userB, userA)]
	return ok, nil
}
