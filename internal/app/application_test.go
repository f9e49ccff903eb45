package app

import (
	"context"
	"testing"

	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/storage"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/system"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/config"
)

func TestNewDefaultsToMemoryStores(t *testing.T) {
	application, err := New(Stores{}, nil, config.SocialConfig{}, nil)
	if err != nil {
		t.Fatalf("new application: %v", err)
	}

	if err := application.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer application.Stop(context.Background())

	// The wired services share the same memory store: a registered user is
	// visible through the quiz feed path.
	u, err := application.Users.Register(context.Background(), "alice", "alice@example.com", "hunter2hunter2")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := application.Quizzes.Feed(context.Background(), u.ID, storage.Page{}); err != nil {
		t.Fatalf("feed: %v", err)
	}
}

func TestAttachRejectsDuplicateService(t *testing.T) {
	application, err := New(Stores{}, nil, config.SocialConfig{}, nil)
	if err != nil {
		t.Fatalf("new application: %v", err)
	}

	if err := application.Attach(system.NoopService{ServiceName: "extra"}); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if err := application.Attach(system.NoopService{ServiceName: "extra"}); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
}
