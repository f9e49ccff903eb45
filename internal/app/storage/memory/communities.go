package memory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain/community"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/storage"
)

// CommunityStore implementation -----------------------------------------------

func (s *Store) CreateCommunity(_ context.Context, c community.Community, owner community.Member) (community.Community, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.communityOrder {
		if strings.EqualFold(s.communities[id].Name, c.Name) {
			return community.Community{}, fmt.Errorf("community %s: %w", c.Name, domain.ErrConflict)
		}
	}

	if c.ID == "" {
		c.ID = newID()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	c.MemberCount = 1

	owner.CommunityID = c.ID
	owner.Role = community.RoleOwner
	if owner.JoinedAt.IsZero() {
		owner.JoinedAt = now
	}

	s.communities[c.ID] = c
	s.communityOrder = append(s.communityOrder, c.ID)
	s.members[c.ID] = map[string]community.Member{owner.UserID: owner}
	s.memberOrder[c.ID] = []string{owner.UserID}
	return c, nil
}

func (s *Store) UpdateCommunity(_ context.Context, c community.Community) (community.Community, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.communities[c.ID]
	if !ok {
		return community.Community{}, fmt.Errorf("community %s: %w", c.ID, domain.ErrNotFound)
	}
	c.Name = existing.Name
	c.CreatorID = existing.CreatorID
	c.MemberCount = existing.MemberCount
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = time.Now().UTC()
	s.communities[c.ID] = c
	return c, nil
}

func (s *Store) GetCommunity(_ context.Context, id string) (community.Community, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.communities[id]
	if !ok {
		return community.Community{}, fmt.Errorf("community %s: %w", id, domain.ErrNotFound)
	}
	return c, nil
}

func (s *Store) DeleteCommunity(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.communities[id]; !ok {
		return fmt.Errorf("community %s: %w", id, domain.ErrNotFound)
	}
	delete(s.communities, id)
	delete(s.members, id)
	delete(s.memberOrder, id)
	for i, cid := range s.communityOrder {
		if cid == id {
			s.communityOrder = append(s.communityOrder[:i], s.communityOrder[i+1:]...)
			break
		}
	}
	for invID, inv := range s.invitations {
		if inv.CommunityID == id {
			delete(s.invitations, invID)
		}
	}
	return nil
}

func (s *Store) ListCommunities(_ context.Context, userID string, page storage.Page) ([]community.Community, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []community.Community
	for i := len(s.communityOrder) - 1; i >= 0; i-- {
		c := s.communities[s.communityOrder[i]]
		if c.Privacy == community.PrivacyPublic {
			out = append(out, c)
			continue
		}
		if _, member := s.members[c.ID][userID]; member {
			out = append(out, c)
		}
	}
	lo, hi := bounds(page, len(out))
	return out[lo:hi], nil
}

func (s *Store) AddMember(_ context.Context, m community.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.communities[m.CommunityID]
	if !ok {
		return fmt.Errorf("community %s: %w", m.CommunityID, domain.ErrNotFound)
	}
	if _, exists := s.members[m.CommunityID][m.UserID]; exists {
		return fmt.Errorf("membership: %w", domain.ErrConflict)
	}
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now().UTC()
	}
	if s.members[m.CommunityID] == nil {
		s.members[m.CommunityID] = make(map[string]community.Member)
	}
	s.members[m.CommunityID][m.UserID] = m
	s.memberOrder[m.CommunityID] = append(s.memberOrder[m.CommunityID], m.UserID)
	c.MemberCount++
	s.communities[c.ID] = c
	return nil
}

func (s *Store) RemoveMember(_ context.Context, communityID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.communities[communityID]
	if !ok {
		return fmt.Errorf("community %s: %w", communityID, domain.ErrNotFound)
	}
	if _, exists := s.members[communityID][userID]; !exists {
		return fmt.Errorf("membership: %w", domain.ErrNotFound)
	}
	delete(s.members[communityID], userID)
	order := s.memberOrder[communityID]
	for i, uid := range order {
		if uid == userID {
			s.memberOrder[communityID] = append(order[:i], order[i+1:]...)
			break
		}
	}
	c.MemberCount--
	s.communities[c.ID] = c
	return nil
}

func (s *Store) GetMember(_ context.Context, communityID, userID string) (community.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.members[communityID][userID]
	if !ok {
		return community.Member{}, fmt.Errorf("membership: %w", domain.ErrNotFound)
	}
	return m, nil
}

func (s *Store) UpdateMemberRole(_ context.Context, communityID, userID string, role community.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.members[communityID][userID]
	if !ok {
		return fmt.Errorf("membership: %w", domain.ErrNotFound)
	}
	m.Role = role
	s.members[communityID][userID] = m
	return nil
}

func (s *Store) TransferOwnership(_ context.Context, communityID, fromUserID, toUserID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	from, ok := s.members[communityID][fromUserID]
	if !ok || from.Role != community.RoleOwner {
		return fmt.Errorf("ownership: %w", domain.ErrNotFound)
	}
	to, ok := s.members[communityID][toUserID]
	if !ok {
		return fmt.Errorf("membership: %w", domain.ErrNotFound)
	}
	from.Role = community.RoleModerator
	to.Role = community.RoleOwner
	s.members[communityID][fromUserID] = from
	s.members[communityID][toUserID] = to
	return nil
}

func (s *Store) ListMembers(_ context.Context, communityID string, page storage.Page) ([]community.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []community.Member
	for _, uid := range s.memberOrder[communityID] {
		out = append(out, s.members[communityID][uid])
	}
	lo, hi := bounds(page, len(out))
	return out[lo:hi], nil
}

func (s *Store) CreateInvitation(_ context.Context, inv community.Invitation) (community.Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.communities[inv.CommunityID]; !ok {
		return community.Invitation{}, fmt.Errorf("community %s: %w", inv.CommunityID, domain.ErrNotFound)
	}
	for _, existing := range s.invitations {
		if existing.CommunityID == inv.CommunityID && existing.InviteeID == inv.InviteeID &&
			existing.Status == community.InvitationPending {
			return community.Invitation{}, fmt.Errorf("invitation: %w", domain.ErrConflict)
		}
	}
	if inv.ID == "" {
		inv.ID = newID()
	}
	now := time.Now().UTC()
	inv.Status = community.InvitationPending
	inv.CreatedAt = now
	inv.UpdatedAt = now
	s.invitations[inv.ID] = inv
	s.inviteOrder = append(s.inviteOrder, inv.ID)
	return inv, nil
}

func (s *Store) GetInvitation(_ context.Context, id string) (community.Invitation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inv, ok := s.invitations[id]
	if !ok {
		return community.Invitation{}, fmt.Errorf("invitation %s: %w", id, domain.ErrNotFound)
	}
	return inv, nil
}

func (s *Store) UpdateInvitation(_ context.Context, inv community.Invitation) (community.Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.invitations[inv.ID]
	if !ok {
		return community.Invitation{}, fmt.Errorf("invitation %s: %w", inv.ID, domain.ErrNotFound)
	}
	existing.Status = inv.Status
	existing.UpdatedAt = time.Now().UTC()
	s.invitations[inv.ID] = existing
	return existing, nil
}

func (s *Store) ListInvitations(_ context.Context, inviteeID string) ([]community.Invitation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []community.Invitation
	for i := len(s.inviteOrder) - 1; i >= 0; i-- {
		inv, ok := s.invitations[s.inviteOrder[i]]
		if ok && inv.InviteeID == inviteeID {
			out = append(out, inv)
		}
	}
	return out, nil
}
