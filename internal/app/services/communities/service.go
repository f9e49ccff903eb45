// Package communities implements community membership, roles and invitations.
package communities

import (
	"context"
	"fmt"
	"strings"

	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain/community"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain/notification"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/storage"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/pkg/logger"
)

// Service manages communities.
type Service struct {
	store         storage.CommunityStore
	users         storage.UserStore
	notifications storage.NotificationStore
	log           *logger.Logger
}

// New constructs a communities service.
func New(store storage.CommunityStore, users storage.UserStore, notifications storage.NotificationStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("communities")
	}
	return &Service{store: store, users: users, notifications: notifications, log: log}
}

// Create inserts the community and its owner membership atomically.
func (s *Service) Create(ctx context.Context, creatorID string, c community.Community) (community.Community, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return community.Community{}, fmt.Errorf("%w: name is required", domain.ErrInvalid)
	}
	if c.Privacy == "" {
		c.Privacy = community.PrivacyPublic
	}
	switch c.Privacy {
	case community.PrivacyPublic, community.PrivacyPrivate:
	default:
		return community.Community{}, fmt.Errorf("%w: unknown privacy %q", domain.ErrInvalid, c.Privacy)
	}
	c.CreatorID = creatorID

	created, err := s.store.CreateCommunity(ctx, c, community.Member{UserID: creatorID})
	if err != nil {
		return community.Community{}, err
	}
	s.log.WithField("community_id", created.ID).
		WithField("creator_id", creatorID).
		Info("community created")
	return created, nil
}

// Update changes description or privacy. Owner and moderators only.
func (s *Service) Update(ctx context.Context, callerID string, c community.Community) (community.Community, error) {
	existing, err := s.store.GetCommunity(ctx, c.ID)
	if err != nil {
		return community.Community{}, err
	}
	if err := s.requireRole(ctx, c.ID, callerID, community.RoleModerator); err != nil {
		return community.Community{}, err
	}
	existing.Description = c.Description
	if c.Privacy != "" {
		switch c.Privacy {
		case community.PrivacyPublic, community.PrivacyPrivate:
			existing.Privacy = c.Privacy
		default:
			return community.Community{}, fmt.Errorf("%w: unknown privacy %q", domain.ErrInvalid, c.Privacy)
		}
	}
	return s.store.UpdateCommunity(ctx, existing)
}

// Get returns a community.
func (s *Service) Get(ctx context.Context, id string) (community.Community, error) {
	return s.store.GetCommunity(ctx, id)
}

// Delete removes a community. Owner only.
func (s *Service) Delete(ctx context.Context, callerID, id string) error {
	if err := s.requireRole(ctx, id, callerID, community.RoleOwner); err != nil {
		return err
	}
	return s.store.DeleteCommunity(ctx, id)
}

// List returns public communities plus those the caller belongs to.
func (s *Service) List(ctx context.Context, callerID string, page storage.Page) ([]community.Community, error) {
	return s.store.ListCommunities(ctx, callerID, page)
}

// Join adds the caller as a member. Private communities require a pending
// invitation (accepted through the invitation endpoints instead).
func (s *Service) Join(ctx context.Context, callerID, communityID string) error {
	c, err := s.store.GetCommunity(ctx, communityID)
	if err != nil {
		return err
	}
	if c.Privacy != community.PrivacyPublic {
		return fmt.Errorf("%w: private community requires an invitation", domain.ErrForbidden)
	}
	if err := s.store.AddMember(ctx, community.Member{
		CommunityID: communityID,
		UserID:      callerID,
		Role:        community.RoleMember,
	}); err != nil {
		return err
	}
	s.log.WithField("community_id", communityID).
		WithField("user_id", callerID).
		Info("member joined")
	return nil
}

// Leave removes the caller's membership. The owner must transfer ownership
// before leaving a community that still has other members.
func (s *Service) Leave(ctx context.Context, callerID, communityID string) error {
	member, err := s.store.GetMember(ctx, communityID, callerID)
	if err != nil {
		return err
	}
	if member.Role == community.RoleOwner {
		c, err := s.store.GetCommunity(ctx, communityID)
		if err != nil {
			return err
		}
		if c.MemberCount > 1 {
			return fmt.Errorf("%w: transfer ownership before leaving", domain.ErrConflict)
		}
		// Last member out; the community goes with them.
		return s.store.DeleteCommunity(ctx, communityID)
	}
	return s.store.RemoveMember(ctx, communityID, callerID)
}

// Members lists a community's members.
func (s *Service) Members(ctx context.Context, callerID, communityID string, page storage.Page) ([]community.Member, error) {
	c, err := s.store.GetCommunity(ctx, communityID)
	if err != nil {
		return nil, err
	}
	if c.Privacy == community.PrivacyPrivate {
		if _, err := s.store.GetMember(ctx, communityID, callerID); err != nil {
			return nil, fmt.Errorf("%w: members only", domain.ErrForbidden)
		}
	}
	return s.store.ListMembers(ctx, communityID, page)
}

// SetRole promotes or demotes a member between member and moderator, or
// transfers ownership. Owner only. Ownership transfer demotes the previous
// owner to moderator in the same transaction.
func (s *Service) SetRole(ctx context.Context, callerID, communityID, userID string, role community.Role) error {
	if err := s.requireRole(ctx, communityID, callerID, community.RoleOwner); err != nil {
		return err
	}
	if userID == callerID {
		return fmt.Errorf("%w: cannot change your own role", domain.ErrInvalid)
	}
	if _, err := s.store.GetMember(ctx, communityID, userID); err != nil {
		return err
	}

	switch role {
	case community.RoleOwner:
		if err := s.store.TransferOwnership(ctx, communityID, callerID, userID); err != nil {
			return err
		}
		s.log.WithField("community_id", communityID).
			WithField("from", callerID).
			WithField("to", userID).
			Info("ownership transferred")
		return nil
	case community.RoleModerator, community.RoleMember:
		return s.store.UpdateMemberRole(ctx, communityID, userID, role)
	default:
		return fmt.Errorf("%w: unknown role %q", domain.ErrInvalid, role)
	}
}

// RemoveMember kicks a member. Moderators may remove plain members; the
// owner may remove anyone but themselves; nobody removes the owner.
func (s *Service) RemoveMember(ctx context.Context, callerID, communityID, userID string) error {
	caller, err := s.store.GetMember(ctx, communityID, callerID)
	if err != nil {
		return err
	}
	target, err := s.store.GetMember(ctx, communityID, userID)
	if err != nil {
		return err
	}
	if target.Role == community.RoleOwner {
		return fmt.Errorf("%w: cannot remove the owner", domain.ErrForbidden)
	}
	switch caller.Role {
	case community.RoleOwner:
	case community.RoleModerator:
		if target.Role != community.RoleMember {
			return fmt.Errorf("%w: moderators may only remove members", domain.ErrForbidden)
		}
	default:
		return fmt.Errorf("%w: insufficient role", domain.ErrForbidden)
	}
	return s.store.RemoveMember(ctx, communityID, userID)
}

// Invite creates a pending invitation. Owner and moderators only.
func (s *Service) Invite(ctx context.Context, callerID, communityID, inviteeID string) (community.Invitation, error) {
	if err := s.requireRole(ctx, communityID, callerID, community.RoleModerator); err != nil {
		return community.Invitation{}, err
	}
	if _, err := s.users.GetUser(ctx, inviteeID); err != nil {
		return community.Invitation{}, err
	}
	if _, err := s.store.GetMember(ctx, communityID, inviteeID); err == nil {
		return community.Invitation{}, fmt.Errorf("%w: already a member", domain.ErrConflict)
	}

	inv, err := s.store.CreateInvitation(ctx, community.Invitation{
		CommunityID: communityID,
		InviterID:   callerID,
		InviteeID:   inviteeID,
	})
	if err != nil {
		return community.Invitation{}, err
	}
	if s.notifications != nil {
		if _, err := s.notifications.CreateNotification(ctx, notification.Notification{
			RecipientID: inviteeID,
			ActorID:     callerID,
			Kind:        notification.KindInvite,
			SubjectID:   inv.ID,
		}); err != nil {
			s.log.WithError(err).Warn("invite notification")
		}
	}
	return inv, nil
}

// Invitations lists the caller's invitations.
func (s *Service) Invitations(ctx context.Context, callerID string) ([]community.Invitation, error) {
	return s.store.ListInvitations(ctx, callerID)
}

// Accept turns a pending invitation into a membership.
func (s *Service) Accept(ctx context.Context, callerID, invitationID string) error {
	inv, err := s.store.GetInvitation(ctx, invitationID)
	if err != nil {
		return err
	}
	if inv.InviteeID != callerID {
		return fmt.Errorf("%w: not your invitation", domain.ErrForbidden)
	}
	if inv.Status != community.InvitationPending {
		return fmt.Errorf("%w: invitation already %s", domain.ErrConflict, inv.Status)
	}
	if _, err := s.store.GetMember(ctx, inv.CommunityID, callerID); err == nil {
		return fmt.Errorf("%w: already a member", domain.ErrConflict)
	}

	if err := s.store.AddMember(ctx, community.Member{
		CommunityID: inv.CommunityID,
		UserID:      callerID,
		Role:        community.RoleMember,
	}); err != nil {
		return err
	}
	inv.Status = community.InvitationAccepted
	_, err = s.store.UpdateInvitation(ctx, inv)
	return err
}

// Decline marks a pending invitation declined.
func (s *Service) Decline(ctx context.Context, callerID, invitationID string) error {
	inv, err := s.store.GetInvitation(ctx, invitationID)
	if err != nil {
		return err
	}
	if inv.InviteeID != callerID {
		return fmt.Errorf("%w: not your invitation", domain.ErrForbidden)
	}
	if inv.Status != community.InvitationPending {
		return fmt.Errorf("%w: invitation already %s", domain.ErrConflict, inv.Status)
	}
	inv.Status = community.InvitationDeclined
	_, err = s.store.UpdateInvitation(ctx, inv)
	return err
}

// requireRole checks the caller holds at least the given role.
func (s *Service) requireRole(ctx context.Context, communityID, userID string, min community.Role) error {
	member, err := s.store.GetMember(ctx, communityID, userID)
	if err != nil {
		return fmt.Errorf("%w: not a member", domain.ErrForbidden)
	}
	if rank(member.Role) < rank(min) {
		return fmt.Errorf("%w: requires %s role", domain.ErrForbidden, min)
	}
	return nil
}

func rank(r community.Role) int {
	switch r {
	case community.RoleOwner:
		return 3
	case community.RoleModerator:
		return 2
	case community.RoleMember:
		return 1
	default:
		return 0
	}
}
