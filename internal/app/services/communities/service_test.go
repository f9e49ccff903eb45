package communities

import (
	"context"
	"errors"
	"testing"

	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain/community"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain/user"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/storage/memory"
)

func seedUser(t *testing.T, store *memory.Store, username string) user.User {
	t.Helper()
	u, err := store.CreateUser(context.Background(), user.User{
		Username: username,
		Email:    username + "@example.com",
	})
	if err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return u
}

func TestCreateMakesCreatorOwner(t *testing.T) {
	store := memory.New()
	svc := New(store, store, store, nil)
	ctx := context.Background()
	owner := seedUser(t, store, "owner")

	created, err := svc.Create(ctx, owner.ID, community.Community{Name: "Squirrel Watchers"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.MemberCount != 1 {
		t.Fatalf("expected member count 1, got %d", created.MemberCount)
	}
	m, err := store.GetMember(ctx, created.ID, owner.ID)
	if err != nil {
		t.Fatalf("get member: %v", err)
	}
	if m.Role != community.RoleOwner {
		t.Fatalf("expected owner role, got %s", m.Role)
	}
}

func TestJoinRules(t *testing.T) {
	store := memory.New()
	svc := New(store, store, store, nil)
	ctx := context.Background()
	owner := seedUser(t, store, "owner")
	joiner := seedUser(t, store, "joiner")

	public, _ := svc.Create(ctx, owner.ID, community.Community{Name: "Public"})
	private, _ := svc.Create(ctx, owner.ID, community.Community{Name: "Private", Privacy: community.PrivacyPrivate})

	if err := svc.Join(ctx, joiner.ID, public.ID); err != nil {
		t.Fatalf("join public: %v", err)
	}
	if err := svc.Join(ctx, joiner.ID, public.ID); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected duplicate join conflict, got %v", err)
	}
	if err := svc.Join(ctx, joiner.ID, private.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected private join forbidden, got %v", err)
	}
}

func TestOwnerCannotLeaveWithMembers(t *testing.T) {
	store := memory.New()
	svc := New(store, store, store, nil)
	ctx := context.Background()
	owner := seedUser(t, store, "owner")
	member := seedUser(t, store, "member")

	c, _ := svc.Create(ctx, owner.ID, community.Community{Name: "Club"})
	if err := svc.Join(ctx, member.ID, c.ID); err != nil {
		t.Fatalf("join: %v", err)
	}

	if err := svc.Leave(ctx, owner.ID, c.ID); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected owner leave conflict, got %v", err)
	}

	// After transferring ownership the former owner may leave.
	if err := svc.SetRole(ctx, owner.ID, c.ID, member.ID, community.RoleOwner); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	former, err := store.GetMember(ctx, c.ID, owner.ID)
	if err != nil {
		t.Fatalf("get member: %v", err)
	}
	if former.Role != community.RoleModerator {
		t.Fatalf("expected previous owner demoted to moderator, got %s", former.Role)
	}
	if err := svc.Leave(ctx, owner.ID, c.ID); err != nil {
		t.Fatalf("leave after transfer: %v", err)
	}
}

func TestLastOwnerLeavingDeletesCommunity(t *testing.T) {
	store := memory.New()
	svc := New(store, store, store, nil)
	ctx := context.Background()
	owner := seedUser(t, store, "owner")

	c, _ := svc.Create(ctx, owner.ID, community.Community{Name: "Solo"})
	if err := svc.Leave(ctx, owner.ID, c.ID); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if _, err := store.GetCommunity(ctx, c.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected community deleted, got %v", err)
	}
}

func TestRemoveMemberPermissions(t *testing.T) {
	store := memory.New()
	svc := New(store, store, store, nil)
	ctx := context.Background()
	owner := seedUser(t, store, "owner")
	mod := seedUser(t, store, "moder")
	member := seedUser(t, store, "member")

	c, _ := svc.Create(ctx, owner.ID, community.Community{Name: "Club"})
	_ = svc.Join(ctx, mod.ID, c.ID)
	_ = svc.Join(ctx, member.ID, c.ID)
	if err := svc.SetRole(ctx, owner.ID, c.ID, mod.ID, community.RoleModerator); err != nil {
		t.Fatalf("promote: %v", err)
	}

	if err := svc.RemoveMember(ctx, member.ID, c.ID, mod.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected member removal forbidden, got %v", err)
	}
	if err := svc.RemoveMember(ctx, mod.ID, c.ID, owner.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected owner removal forbidden, got %v", err)
	}
	if err := svc.RemoveMember(ctx, mod.ID, c.ID, member.ID); err != nil {
		t.Fatalf("moderator removes member: %v", err)
	}

	got, err := store.GetCommunity(ctx, c.ID)
	if err != nil {
		t.Fatalf("get community: %v", err)
	}
	if got.MemberCount != 2 {
		t.Fatalf("expected member count 2, got %d", got.MemberCount)
	}
}

func TestInvitationLifecycle(t *testing.T) {
	store := memory.New()
	svc := New(store, store, store, nil)
	ctx := context.Background()
	owner := seedUser(t, store, "owner")
	invitee := seedUser(t, store, "invitee")

	c, _ := svc.Create(ctx, owner.ID, community.Community{Name: "Private", Privacy: community.PrivacyPrivate})

	inv, err := svc.Invite(ctx, owner.ID, c.ID, invitee.ID)
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	if _, err := svc.Invite(ctx, owner.ID, c.ID, invitee.ID); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected duplicate pending invite conflict, got %v", err)
	}

	if err := svc.Accept(ctx, owner.ID, inv.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected foreign accept forbidden, got %v", err)
	}
	if err := svc.Accept(ctx, invitee.ID, inv.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if err := svc.Accept(ctx, invitee.ID, inv.ID); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected re-accept conflict, got %v", err)
	}

	if _, err := store.GetMember(ctx, c.ID, invitee.ID); err != nil {
		t.Fatalf("expected membership after accept: %v", err)
	}
}
