package quizzes

import (
	"context"
	"errors"
	"testing"

	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain/quiz"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain/user"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/storage"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/storage/memory"
)

func seedUser(t *testing.T, store *memory.Store, username string) user.User {
	t.Helper()
	u, err := store.CreateUser(context.Background(), user.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: []byte("x"),
	})
	if err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return u
}

func twoQuestionQuiz() quiz.Quiz {
	return quiz.Quiz{
		Title:    "Tree Facts",
		Category: "Nature",
		Tags:     []string{"Trees", " "},
		Questions: []quiz.Question{
			{
				Text: "Which of these are conifers?",
				Type: quiz.QuestionMultiple,
				Options: []quiz.Option{
					{Text: "Pine", Correct: true},
					{Text: "Oak"},
					{Text: "Spruce", Correct: true},
				},
			},
			{
				Text: "What do squirrels cache?",
				Type: quiz.QuestionSingle,
				Options: []quiz.Option{
					{Text: "Acorns", Correct: true},
					{Text: "Pebbles"},
				},
			},
		},
	}
}

func TestCreateValidatesQuestions(t *testing.T) {
	store := memory.New()
	svc := New(store, store, store, nil)
	ctx := context.Background()
	author := seedUser(t, store, "author")

	bad := twoQuestionQuiz()
	bad.Questions[0].Options = bad.Questions[0].Options[:1]
	if _, err := svc.Create(ctx, author.ID, bad); !errors.Is(err, domain.ErrInvalid) {
		t.Fatalf("expected ErrInvalid for one-option question, got %v", err)
	}

	bad = twoQuestionQuiz()
	bad.Questions[1].Options[1].Correct = true
	if _, err := svc.Create(ctx, author.ID, bad); !errors.Is(err, domain.ErrInvalid) {
		t.Fatalf("expected ErrInvalid for multi-correct single question, got %v", err)
	}

	created, err := svc.Create(ctx, author.ID, twoQuestionQuiz())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Published {
		t.Fatal("new quizzes must start unpublished")
	}
	if created.Tags[0] != "trees" || len(created.Tags) != 1 {
		t.Fatalf("expected normalized tags, got %v", created.Tags)
	}
}

func TestVisibilityRules(t *testing.T) {
	store := memory.New()
	svc := New(store, store, store, nil)
	ctx := context.Background()
	author := seedUser(t, store, "author")
	follower := seedUser(t, store, "follower")
	stranger := seedUser(t, store, "stranger")

	q := twoQuestionQuiz()
	q.Visibility = quiz.VisibilityFollowers
	created, err := svc.Create(ctx, author.ID, q)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Unpublished: only the author sees it.
	if _, err := svc.Get(ctx, follower.ID, created.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected unpublished quiz hidden, got %v", err)
	}

	if _, err := svc.Publish(ctx, author.ID, created.ID); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := store.CreateFollow(ctx, user.Follow{FollowerID: follower.ID, FolloweeID: author.ID}); err != nil {
		t.Fatalf("follow: %v", err)
	}

	got, err := svc.Get(ctx, follower.ID, created.ID)
	if err != nil {
		t.Fatalf("get as follower: %v", err)
	}
	for _, question := range got.Questions {
		for _, opt := range question.Options {
			if opt.Correct {
				t.Fatal("correct flags must be redacted for non-authors")
			}
		}
	}

	if _, err := svc.Get(ctx, stranger.ID, created.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected followers-only quiz forbidden to stranger, got %v", err)
	}
}

func TestPublishRequiresQuestions(t *testing.T) {
	store := memory.New()
	svc := New(store, store, store, nil)
	ctx := context.Background()
	author := seedUser(t, store, "author")

	created, err := svc.Create(ctx, author.ID, quiz.Quiz{Title: "Empty"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Publish(ctx, author.ID, created.ID); !errors.Is(err, domain.ErrInvalid) {
		t.Fatalf("expected ErrInvalid publishing empty quiz, got %v", err)
	}
}

func TestScoreFullSetMatch(t *testing.T) {
	store := memory.New()
	svc := New(store, store, store, nil)
	ctx := context.Background()
	author := seedUser(t, store, "author")
	taker := seedUser(t, store, "taker")

	created, err := svc.Create(ctx, author.ID, twoQuestionQuiz())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Publish(ctx, author.ID, created.ID); err != nil {
		t.Fatalf("publish: %v", err)
	}
	published, err := svc.Get(ctx, author.ID, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	multi := published.Questions[0]
	single := published.Questions[1]

	// Partial selection on the multiple-choice question earns nothing.
	resp, err := svc.SubmitResponse(ctx, taker.ID, created.ID, []quiz.Answer{
		{QuestionID: multi.ID, OptionIDs: []string{multi.Options[0].ID}},
		{QuestionID: single.ID, OptionIDs: []string{single.Options[0].ID}},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if resp.Score != 50 {
		t.Fatalf("expected 50, got %d", resp.Score)
	}

	// Resubmitting replaces the response and the counter stays at one.
	resp, err = svc.SubmitResponse(ctx, taker.ID, created.ID, []quiz.Answer{
		{QuestionID: multi.ID, OptionIDs: []string{multi.Options[2].ID, multi.Options[0].ID}},
		{QuestionID: single.ID, OptionIDs: []string{single.Options[0].ID}},
	})
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if resp.Score != 100 {
		t.Fatalf("expected 100, got %d", resp.Score)
	}
	refreshed, err := store.GetQuiz(ctx, created.ID)
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if refreshed.ResponseCount != 1 {
		t.Fatalf("expected response count 1, got %d", refreshed.ResponseCount)
	}
}

func TestViewerGetKeepsStoredAnswerKey(t *testing.T) {
	store := memory.New()
	svc := New(store, store, store, nil)
	ctx := context.Background()
	author := seedUser(t, store, "author")
	taker := seedUser(t, store, "taker")

	created, err := svc.Create(ctx, author.ID, twoQuestionQuiz())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Publish(ctx, author.ID, created.ID); err != nil {
		t.Fatalf("publish: %v", err)
	}

	// A non-author view redacts the returned copy only; the stored correct
	// flags must survive for scoring.
	if _, err := svc.Get(ctx, taker.ID, created.ID); err != nil {
		t.Fatalf("get as taker: %v", err)
	}

	multi := created.Questions[0]
	single := created.Questions[1]
	resp, err := svc.SubmitResponse(ctx, taker.ID, created.ID, []quiz.Answer{
		{QuestionID: multi.ID, OptionIDs: []string{multi.Options[0].ID, multi.Options[2].ID}},
		{QuestionID: single.ID, OptionIDs: []string{single.Options[0].ID}},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if resp.Score != 100 {
		t.Fatalf("expected 100 after a prior non-author view, got %d", resp.Score)
	}
}

func TestListingsOmitQuestions(t *testing.T) {
	store := memory.New()
	svc := New(store, store, store, nil)
	ctx := context.Background()
	author := seedUser(t, store, "author")

	created, err := svc.Create(ctx, author.ID, twoQuestionQuiz())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Publish(ctx, author.ID, created.ID); err != nil {
		t.Fatalf("publish: %v", err)
	}

	list, err := svc.List(ctx, storage.QuizFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || len(list[0].Questions) != 0 {
		t.Fatalf("expected one question-less row, got %+v", list)
	}

	own, err := svc.ListOwn(ctx, author.ID, storage.Page{})
	if err != nil {
		t.Fatalf("list own: %v", err)
	}
	if len(own) != 1 || len(own[0].Questions) != 0 {
		t.Fatalf("expected one question-less row, got %+v", own)
	}
}

func TestResponsesRequirePublishedQuiz(t *testing.T) {
	store := memory.New()
	svc := New(store, store, store, nil)
	ctx := context.Background()
	author := seedUser(t, store, "author")

	created, err := svc.Create(ctx, author.ID, twoQuestionQuiz())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.SubmitResponse(ctx, author.ID, created.ID, nil); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden on draft quiz, got %v", err)
	}
}

func TestCommentsThreadOneLevel(t *testing.T) {
	store := memory.New()
	svc := New(store, store, store, nil)
	ctx := context.Background()
	author := seedUser(t, store, "author")
	reader := seedUser(t, store, "reader")

	created, _ := svc.Create(ctx, author.ID, twoQuestionQuiz())
	if _, err := svc.Publish(ctx, author.ID, created.ID); err != nil {
		t.Fatalf("publish: %v", err)
	}

	top, err := svc.Comment(ctx, reader.ID, created.ID, "", "nice quiz")
	if err != nil {
		t.Fatalf("comment: %v", err)
	}
	reply, err := svc.Comment(ctx, author.ID, created.ID, top.ID, "thanks")
	if err != nil {
		t.Fatalf("reply: %v", err)
	}
	// Replying to a reply flattens onto the original comment.
	deep, err := svc.Comment(ctx, reader.ID, created.ID, reply.ID, "welcome")
	if err != nil {
		t.Fatalf("deep reply: %v", err)
	}
	if deep.ParentID != top.ID {
		t.Fatalf("expected reply to flatten to %s, got %s", top.ID, deep.ParentID)
	}

	// Quiz author may delete any comment; strangers may not.
	if err := svc.DeleteComment(ctx, reader.ID, created.ID, reply.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := svc.DeleteComment(ctx, author.ID, created.ID, top.ID); err != nil {
		t.Fatalf("author delete: %v", err)
	}

	notifs, err := store.ListNotifications(ctx, author.ID, false, storage.Page{})
	if err != nil {
		t.Fatalf("notifications: %v", err)
	}
	if len(notifs) == 0 {
		t.Fatal("expected comment notification for quiz author")
	}
}

func TestLikeUnlikeMaintainsCounter(t *testing.T) {
	store := memory.New()
	svc := New(store, store, store, nil)
	ctx := context.Background()
	author := seedUser(t, store, "author")
	fan := seedUser(t, store, "fan")

	created, _ := svc.Create(ctx, author.ID, twoQuestionQuiz())
	if _, err := svc.Publish(ctx, author.ID, created.ID); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if err := svc.Like(ctx, fan.ID, created.ID); err != nil {
		t.Fatalf("like: %v", err)
	}
	if err := svc.Like(ctx, fan.ID, created.ID); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected duplicate like conflict, got %v", err)
	}
	q, _ := store.GetQuiz(ctx, created.ID)
	if q.LikeCount != 1 {
		t.Fatalf("expected like count 1, got %d", q.LikeCount)
	}

	if err := svc.Unlike(ctx, fan.ID, created.ID); err != nil {
		t.Fatalf("unlike: %v", err)
	}
	q, _ = store.GetQuiz(ctx, created.ID)
	if q.LikeCount != 0 {
		t.Fatalf("expected like count 0, got %d", q.LikeCount)
	}
}

func TestFeedShowsFollowedAuthorsOnly(t *testing.T) {
	store := memory.New()
	svc := New(store, store, store, nil)
	ctx := context.Background()
	author := seedUser(t, store, "author")
	other := seedUser(t, store, "other")
	reader := seedUser(t, store, "reader")

	for _, a := range []user.User{author, other} {
		created, _ := svc.Create(ctx, a.ID, twoQuestionQuiz())
		if _, err := svc.Publish(ctx, a.ID, created.ID); err != nil {
			t.Fatalf("publish: %v", err)
		}
	}
	if err := store.CreateFollow(ctx, user.Follow{FollowerID: reader.ID, FolloweeID: author.ID}); err != nil {
		t.Fatalf("follow: %v", err)
	}

	feed, err := svc.Feed(ctx, reader.ID, storage.Page{})
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	if len(feed) != 1 || feed[0].AuthorID != author.ID {
		t.Fatalf("expected one quiz from followed author, got %d", len(feed))
	}
}
