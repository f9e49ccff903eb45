package taxonomy

import (
	"context"
	"testing"
	"time"

	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain/quiz"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain/user"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/storage/memory"
)

func publish(t *testing.T, store *memory.Store, authorID, category string, tags []string) {
	t.Helper()
	ctx := context.Background()
	created, err := store.CreateQuiz(ctx, quiz.Quiz{
		AuthorID: authorID,
		Title:    "t",
		Category: category,
		Tags:     tags,
	})
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	if _, err := store.SetQuizPublished(ctx, created.ID, true); err != nil {
		t.Fatalf("publish: %v", err)
	}
}

func TestCategoriesMemoizedUntilTTL(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	author, err := store.CreateUser(ctx, user.User{Username: "a", Email: "a@example.com"})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	publish(t, store, author.ID, "nature", []string{"trees"})

	svc := New(store, nil, nil)
	current := time.Now()
	svc.now = func() time.Time { return current }

	got, err := svc.Categories(ctx)
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if len(got) != 1 || got[0] != "nature" {
		t.Fatalf("unexpected categories %v", got)
	}

	// New data inside the TTL window is not visible yet.
	publish(t, store, author.ID, "history", nil)
	got, err = svc.Categories(ctx)
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected memoized result, got %v", got)
	}

	// After the TTL the memo recomputes.
	current = current.Add(DefaultTTL + time.Second)
	got, err = svc.Categories(ctx)
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected recomputed categories, got %v", got)
	}
}

func TestInvalidateDropsMemo(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	author, err := store.CreateUser(ctx, user.User{Username: "a", Email: "a@example.com"})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	publish(t, store, author.ID, "nature", []string{"trees"})

	svc := New(store, nil, nil)
	if _, err := svc.Tags(ctx); err != nil {
		t.Fatalf("tags: %v", err)
	}

	publish(t, store, author.ID, "nature", []string{"acorns"})
	svc.Invalidate()

	got, err := svc.Tags(ctx)
	if err != nil {
		t.Fatalf("tags after invalidate: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 tags, got %v", got)
	}
}
