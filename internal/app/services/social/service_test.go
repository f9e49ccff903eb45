package social

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain/quiz"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain/social"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain/user"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/storage"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/storage/memory"
)

type stubPublisher struct {
	postID string
	err    error
	calls  int
}

func (p *stubPublisher) Publish(ctx context.Context, conn social.Connection, q quiz.Quiz) (string, error) {
	p.calls++
	if p.err != nil {
		return "", p.err
	}
	return p.postID, nil
}

func seedPublishedQuiz(t *testing.T, store *memory.Store) (user.User, quiz.Quiz) {
	t.Helper()
	ctx := context.Background()
	author, err := store.CreateUser(ctx, user.User{Username: "author", Email: "author@example.com"})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	q, err := store.CreateQuiz(ctx, quiz.Quiz{AuthorID: author.ID, Title: "Acorns 101"})
	if err != nil {
		t.Fatalf("seed quiz: %v", err)
	}
	q, err = store.SetQuizPublished(ctx, q.ID, true)
	if err != nil {
		t.Fatalf("publish quiz: %v", err)
	}
	return author, q
}

func TestConnectReplacesExisting(t *testing.T) {
	store := memory.New()
	svc := New(store, store, nil)
	ctx := context.Background()
	author, _ := seedPublishedQuiz(t, store)

	first, err := svc.Connect(ctx, author.ID, social.Connection{
		Provider:        social.ProviderTumblr,
		ProviderAccount: "squirrelblog",
		AccessToken:     "token-1",
	})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	second, err := svc.Connect(ctx, author.ID, social.Connection{
		Provider:        social.ProviderTumblr,
		ProviderAccount: "squirrelblog",
		AccessToken:     "token-2",
	})
	if err != nil {
		t.Fatalf("reconnect: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected reconnect to replace, got new id %s", second.ID)
	}
	if second.AccessToken != "token-2" {
		t.Fatal("expected token replaced")
	}

	conns, err := svc.Connections(ctx, author.ID)
	if err != nil {
		t.Fatalf("connections: %v", err)
	}
	if len(conns) != 1 {
		t.Fatalf("expected 1 connection, got %d", len(conns))
	}
}

func TestCrossPostNow(t *testing.T) {
	store := memory.New()
	svc := New(store, store, nil)
	pub := &stubPublisher{postID: "tumblr-123"}
	svc.AttachPublisher(social.ProviderTumblr, pub)
	ctx := context.Background()
	author, q := seedPublishedQuiz(t, store)

	if _, err := svc.CrossPost(ctx, author.ID, q.ID, social.ProviderTumblr, time.Time{}); !errors.Is(err, domain.ErrInvalid) {
		t.Fatalf("expected ErrInvalid without connection, got %v", err)
	}

	if _, err := svc.Connect(ctx, author.ID, social.Connection{
		Provider:        social.ProviderTumblr,
		ProviderAccount: "squirrelblog",
		AccessToken:     "token",
	}); err != nil {
		t.Fatalf("connect: %v", err)
	}

	post, err := svc.CrossPost(ctx, author.ID, q.ID, social.ProviderTumblr, time.Time{})
	if err != nil {
		t.Fatalf("cross-post: %v", err)
	}
	if post.Status != social.PostPublished {
		t.Fatalf("expected published, got %s (%s)", post.Status, post.Error)
	}
	if post.ProviderPostID != "tumblr-123" {
		t.Fatalf("expected provider post id recorded, got %q", post.ProviderPostID)
	}
	if pub.calls != 1 {
		t.Fatalf("expected 1 publish call, got %d", pub.calls)
	}
}

func TestCrossPostFailureRecorded(t *testing.T) {
	store := memory.New()
	svc := New(store, store, nil)
	svc.AttachPublisher(social.ProviderFacebook, &stubPublisher{err: fmt.Errorf("rate limited")})
	ctx := context.Background()
	author, q := seedPublishedQuiz(t, store)

	if _, err := svc.Connect(ctx, author.ID, social.Connection{
		Provider:    social.ProviderFacebook,
		AccessToken: "token",
	}); err != nil {
		t.Fatalf("connect: %v", err)
	}

	post, err := svc.CrossPost(ctx, author.ID, q.ID, social.ProviderFacebook, time.Time{})
	if err != nil {
		t.Fatalf("cross-post: %v", err)
	}
	if post.Status != social.PostFailed {
		t.Fatalf("expected failed, got %s", post.Status)
	}
	if post.Error == "" {
		t.Fatal("expected error recorded on post")
	}
}

func TestScheduledPostWaitsForPublishDue(t *testing.T) {
	store := memory.New()
	svc := New(store, store, nil)
	pub := &stubPublisher{postID: "fb-9"}
	svc.AttachPublisher(social.ProviderFacebook, pub)
	ctx := context.Background()
	author, q := seedPublishedQuiz(t, store)

	if _, err := svc.Connect(ctx, author.ID, social.Connection{
		Provider:    social.ProviderFacebook,
		AccessToken: "token",
	}); err != nil {
		t.Fatalf("connect: %v", err)
	}

	future := time.Now().Add(time.Hour)
	post, err := svc.CrossPost(ctx, author.ID, q.ID, social.ProviderFacebook, future)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if post.Status != social.PostPending {
		t.Fatalf("expected pending, got %s", post.Status)
	}
	if pub.calls != 0 {
		t.Fatal("scheduled post must not publish immediately")
	}

	// Before the scheduled time nothing is due.
	n, err := svc.PublishDue(ctx, time.Now())
	if err != nil {
		t.Fatalf("publish due: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected 0 due posts, got %d", n)
	}

	n, err = svc.PublishDue(ctx, future.Add(time.Minute))
	if err != nil {
		t.Fatalf("publish due: %v", err)
	}
	if n != 1 || pub.calls != 1 {
		t.Fatalf("expected 1 post published, got n=%d calls=%d", n, pub.calls)
	}

	posts, err := svc.Posts(ctx, author.ID, storage.Page{})
	if err != nil {
		t.Fatalf("posts: %v", err)
	}
	if len(posts) != 1 || posts[0].Status != social.PostPublished {
		t.Fatalf("expected published post, got %+v", posts)
	}
}

func TestCrossPostRequiresOwnPublishedQuiz(t *testing.T) {
	store := memory.New()
	svc := New(store, store, nil)
	ctx := context.Background()
	author, q := seedPublishedQuiz(t, store)
	other, err := store.CreateUser(ctx, user.User{Username: "other", Email: "other@example.com"})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}

	if _, err := svc.CrossPost(ctx, other.ID, q.ID, social.ProviderTumblr, time.Time{}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-author, got %v", err)
	}

	draft, err := store.CreateQuiz(ctx, quiz.Quiz{AuthorID: author.ID, Title: "Draft"})
	if err != nil {
		t.Fatalf("seed draft: %v", err)
	}
	if _, err := svc.CrossPost(ctx, author.ID, draft.ID, social.ProviderTumblr, time.Time{}); !errors.Is(err, domain.ErrInvalid) {
		t.Fatalf("expected ErrInvalid for draft, got %v", err)
	}
}
