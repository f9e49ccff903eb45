package users

import (
	"context"
	"errors"
	"testing"

	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/storage"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/storage/memory"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	store := memory.New()
	svc := New(store, store, nil)
	ctx := context.Background()

	u, err := svc.Register(ctx, "alice", "alice@example.com", "correct horse")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.ID == "" {
		t.Fatal("expected id to be generated")
	}
	if len(u.PasswordHash) == 0 {
		t.Fatal("expected password hash")
	}

	if _, err := svc.Authenticate(ctx, "alice", "correct horse"); err != nil {
		t.Fatalf("authenticate by username: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "alice@example.com", "correct horse"); err != nil {
		t.Fatalf("authenticate by email: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "alice", "wrong"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := New(memory.New(), nil, nil)
	ctx := context.Background()

	cases := []struct {
		name     string
		username string
		email    string
		password string
	}{
		{"short username", "ab", "a@example.com", "password1"},
		{"bad email", "charlie", "not-an-email", "password1"},
		{"short password", "charlie", "c@example.com", "short"},
	}
	for _, tc := range cases {
		if _, err := svc.Register(ctx, tc.username, tc.email, tc.password); !errors.Is(err, domain.ErrInvalid) {
			t.Fatalf("%s: expected ErrInvalid, got %v", tc.name, err)
		}
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := New(memory.New(), nil, nil)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "dave", "dave@example.com", "password1"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register(ctx, "Dave", "dave2@example.com", "password1"); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestFollowRules(t *testing.T) {
	store := memory.New()
	svc := New(store, store, nil)
	ctx := context.Background()

	alice, _ := svc.Register(ctx, "alice", "alice@example.com", "password1")
	bob, _ := svc.Register(ctx, "bobby", "bob@example.com", "password1")

	if err := svc.Follow(ctx, alice.ID, alice.ID); !errors.Is(err, domain.ErrInvalid) {
		t.Fatalf("expected self-follow rejection, got %v", err)
	}
	if err := svc.Follow(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("follow: %v", err)
	}
	if err := svc.Follow(ctx, alice.ID, bob.ID); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected duplicate follow conflict, got %v", err)
	}

	notifs, err := store.ListNotifications(ctx, bob.ID, false, storage.Page{})
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	if len(notifs) != 1 {
		t.Fatalf("expected 1 follow notification, got %d", len(notifs))
	}
}

func TestBlockRemovesFollowsAndPreventsNewOnes(t *testing.T) {
	store := memory.New()
	svc := New(store, store, nil)
	ctx := context.Background()

	alice, _ := svc.Register(ctx, "alice", "alice@example.com", "password1")
	bob, _ := svc.Register(ctx, "bobby", "bob@example.com", "password1")

	if err := svc.Follow(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("follow: %v", err)
	}
	if err := svc.Follow(ctx, bob.ID, alice.ID); err != nil {
		t.Fatalf("follow back: %v", err)
	}

	if err := svc.Block(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("block: %v", err)
	}

	for _, pair := range [][2]string{{alice.ID, bob.ID}, {bob.ID, alice.ID}} {
		exists, err := store.FollowExists(ctx, pair[0], pair[1])
		if err != nil {
			t.Fatalf("follow exists: %v", err)
		}
		if exists {
			t.Fatal("expected follow edges removed by block")
		}
	}

	// The block also stops the blocked user from re-following.
	if err := svc.Follow(ctx, bob.ID, alice.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestPrivateProfileHidesDetails(t *testing.T) {
	store := memory.New()
	svc := New(store, store, nil)
	ctx := context.Background()

	alice, _ := svc.Register(ctx, "alice", "alice@example.com", "password1")
	bob, _ := svc.Register(ctx, "bobby", "bob@example.com", "password1")

	bio := "collector of acorns"
	private := true
	if _, err := svc.UpdateProfile(ctx, alice.ID, nil, &bio, nil, &private); err != nil {
		t.Fatalf("update profile: %v", err)
	}

	seen, err := svc.GetProfile(ctx, bob.ID, alice.ID)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if seen.Bio != "" {
		t.Fatal("expected bio hidden from stranger")
	}
	if _, err := svc.Followers(ctx, bob.ID, alice.ID, storage.Page{}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected followers list forbidden, got %v", err)
	}

	if err := svc.Follow(ctx, bob.ID, alice.ID); err != nil {
		t.Fatalf("follow: %v", err)
	}
	seen, err = svc.GetProfile(ctx, bob.ID, alice.ID)
	if err != nil {
		t.Fatalf("get profile as follower: %v", err)
	}
	if seen.Bio != bio {
		t.Fatal("expected bio visible to follower")
	}
}
