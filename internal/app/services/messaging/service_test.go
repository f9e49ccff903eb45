package messaging

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain/user"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/storage"
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

func TestStartReusesConversation(t *testing.T) {
	store := memory.New()
	svc := New(store, store, store, nil)
	ctx := context.Background()
	alice := seedUser(t, store, "alice")
	bob := seedUser(t, store, "bobby")

	first, err := svc.Start(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	second, err := svc.Start(ctx, bob.ID, alice.ID)
	if err != nil {
		t.Fatalf("start reversed: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected one conversation per pair, got %s and %s", first.ID, second.ID)
	}
}

func TestBlockedPairCannotConverse(t *testing.T) {
	store := memory.New()
	svc := New(store, store, store, nil)
	ctx := context.Background()
	alice := seedUser(t, store, "alice")
	bob := seedUser(t, store, "bobby")

	conv, err := svc.Start(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := store.CreateBlock(ctx, user.Block{BlockerID: bob.ID, BlockedID: alice.ID}); err != nil {
		t.Fatalf("block: %v", err)
	}

	if _, err := svc.Start(ctx, alice.ID, bob.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected start forbidden, got %v", err)
	}
	if _, err := svc.Send(ctx, alice.ID, conv.ID, "hello?"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected send forbidden, got %v", err)
	}
}

func TestSendNotifiesPeerAndOutsidersSeeNothing(t *testing.T) {
	store := memory.New()
	svc := New(store, store, store, nil)
	ctx := context.Background()
	alice := seedUser(t, store, "alice")
	bob := seedUser(t, store, "bobby")
	eve := seedUser(t, store, "evil1")

	conv, _ := svc.Start(ctx, alice.ID, bob.ID)
	if _, err := svc.Send(ctx, alice.ID, conv.ID, "hi bob"); err != nil {
		t.Fatalf("send: %v", err)
	}

	notifs, err := store.ListNotifications(ctx, bob.ID, true, storage.Page{})
	if err != nil {
		t.Fatalf("notifications: %v", err)
	}
	if len(notifs) != 1 {
		t.Fatalf("expected 1 message notification, got %d", len(notifs))
	}

	if _, err := svc.Messages(ctx, eve.ID, conv.ID, storage.Page{}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected outsider to get not-found, got %v", err)
	}
}

func TestMessagesSinceIsStrict(t *testing.T) {
	store := memory.New()
	svc := New(store, store, store, nil)
	ctx := context.Background()
	alice := seedUser(t, store, "alice")
	bob := seedUser(t, store, "bobby")

	conv, _ := svc.Start(ctx, alice.ID, bob.ID)
	first, err := svc.Send(ctx, alice.ID, conv.ID, "one")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	second, err := svc.Send(ctx, bob.ID, conv.ID, "two")
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	got, err := svc.MessagesSince(ctx, alice.ID, conv.ID, first.CreatedAt)
	if err != nil {
		t.Fatalf("since: %v", err)
	}
	if len(got) != 1 || got[0].ID != second.ID {
		t.Fatalf("expected only the second message, got %d", len(got))
	}
}

func TestMarkReadTouchesPeerMessagesOnly(t *testing.T) {
	store := memory.New()
	svc := New(store, store, store, nil)
	ctx := context.Background()
	alice := seedUser(t, store, "alice")
	bob := seedUser(t, store, "bobby")

	conv, _ := svc.Start(ctx, alice.ID, bob.ID)
	if _, err := svc.Send(ctx, alice.ID, conv.ID, "from alice"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := svc.Send(ctx, bob.ID, conv.ID, "from bob"); err != nil {
		t.Fatalf("send: %v", err)
	}

	if err := svc.MarkRead(ctx, alice.ID, conv.ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	msgs, err := svc.Messages(ctx, alice.ID, conv.ID, storage.Page{})
	if err != nil {
		t.Fatalf("messages: %v", err)
	}
	for _, m := range msgs {
		if m.SenderID == bob.ID && m.ReadAt.IsZero() {
			t.Fatal("expected peer message marked read")
		}
		if m.SenderID == alice.ID && !m.ReadAt.IsZero() {
			t.Fatal("own messages must stay unread")
		}
	}
}
