// Package quizzes implements quiz authoring, visibility, scoring, comments
// and likes.
package quizzes

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain/notification"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain/quiz"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/metrics"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/storage"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/pkg/logger"
)

const (
	maxQuestions = 100
	maxOptions   = 20
)

// Service manages quizzes and everything attached to them.
type Service struct {
	store         storage.QuizStore
	users         storage.UserStore
	notifications storage.NotificationStore
	log           *logger.Logger
}

// New constructs a quizzes service.
func New(store storage.QuizStore, users storage.UserStore, notifications storage.NotificationStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("quizzes")
	}
	return &Service{store: store, users: users, notifications: notifications, log: log}
}

// Create validates and stores a new quiz owned by authorID.
func (s *Service) Create(ctx context.Context, authorID string, q quiz.Quiz) (quiz.Quiz, error) {
	q.AuthorID = authorID
	q.Published = false
	if err := validate(&q); err != nil {
		return quiz.Quiz{}, err
	}
	created, err := s.store.CreateQuiz(ctx, q)
	if err != nil {
		return quiz.Quiz{}, err
	}
	s.log.WithField("quiz_id", created.ID).
		WithField("author_id", authorID).
		Info("quiz created")
	return created, nil
}

// Update replaces a quiz's fields and nested questions. Author only.
func (s *Service) Update(ctx context.Context, callerID string, q quiz.Quiz) (quiz.Quiz, error) {
	existing, err := s.store.GetQuiz(ctx, q.ID)
	if err != nil {
		return quiz.Quiz{}, err
	}
	if existing.AuthorID != callerID {
		return quiz.Quiz{}, fmt.Errorf("%w: not the quiz author", domain.ErrForbidden)
	}
	q.AuthorID = existing.AuthorID
	if err := validate(&q); err != nil {
		return quiz.Quiz{}, err
	}
	return s.store.UpdateQuiz(ctx, q)
}

// Delete removes a quiz and everything attached to it. Author only.
func (s *Service) Delete(ctx context.Context, callerID, quizID string) error {
	existing, err := s.store.GetQuiz(ctx, quizID)
	if err != nil {
		return err
	}
	if existing.AuthorID != callerID {
		return fmt.Errorf("%w: not the quiz author", domain.ErrForbidden)
	}
	return s.store.DeleteQuiz(ctx, quizID)
}

// Publish makes a quiz visible per its visibility setting. Author only. A
// quiz needs at least one question to be publishable.
func (s *Service) Publish(ctx context.Context, callerID, quizID string) (quiz.Quiz, error) {
	existing, err := s.store.GetQuiz(ctx, quizID)
	if err != nil {
		return quiz.Quiz{}, err
	}
	if existing.AuthorID != callerID {
		return quiz.Quiz{}, fmt.Errorf("%w: not the quiz author", domain.ErrForbidden)
	}
	if len(existing.Questions) == 0 {
		return quiz.Quiz{}, fmt.Errorf("%w: quiz has no questions", domain.ErrInvalid)
	}
	published, err := s.store.SetQuizPublished(ctx, quizID, true)
	if err != nil {
		return quiz.Quiz{}, err
	}
	s.log.WithField("quiz_id", quizID).Info("quiz published")
	return published, nil
}

// Get returns a quiz if the viewer may see it. Correct-option flags are
// stripped for everyone but the author.
func (s *Service) Get(ctx context.Context, viewerID, quizID string) (quiz.Quiz, error) {
	q, err := s.store.GetQuiz(ctx, quizID)
	if err != nil {
		return quiz.Quiz{}, err
	}
	if err := s.requireVisible(ctx, viewerID, q); err != nil {
		return quiz.Quiz{}, err
	}
	if q.AuthorID != viewerID {
		redactCorrect(&q)
	}
	return q, nil
}

// List returns published quizzes matching the filter. Listings are quiz rows
// without nested questions; Get returns the full quiz.
func (s *Service) List(ctx context.Context, filter storage.QuizFilter) ([]quiz.Quiz, error) {
	filter.PublishedOnly = true
	return s.store.ListQuizzes(ctx, filter)
}

// ListOwn returns the caller's quizzes, drafts included.
func (s *Service) ListOwn(ctx context.Context, callerID string, page storage.Page) ([]quiz.Quiz, error) {
	return s.store.ListQuizzes(ctx, storage.QuizFilter{AuthorID: callerID, Page: page})
}

// Feed returns published quizzes from authors the caller follows.
func (s *Service) Feed(ctx context.Context, callerID string, page storage.Page) ([]quiz.Quiz, error) {
	authorIDs, err := s.users.ListFollowingIDs(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if len(authorIDs) == 0 {
		return nil, nil
	}
	return s.store.ListQuizzes(ctx, storage.QuizFilter{
		AuthorIDs:     authorIDs,
		PublishedOnly: true,
		Page:          page,
	})
}

// SubmitResponse scores the answers against the correct option sets and
// stores the result. One point per fully-correct question, expressed as a
// percentage. Resubmitting replaces the previous response.
func (s *Service) SubmitResponse(ctx context.Context, callerID, quizID string, answers []quiz.Answer) (quiz.Response, error) {
	q, err := s.store.GetQuiz(ctx, quizID)
	if err != nil {
		return quiz.Response{}, err
	}
	if !q.Published {
		return quiz.Response{}, fmt.Errorf("%w: quiz not published", domain.ErrForbidden)
	}
	if err := s.requireVisible(ctx, callerID, q); err != nil {
		return quiz.Response{}, err
	}

	score := Score(q, answers)
	resp, err := s.store.UpsertResponse(ctx, quiz.Response{
		QuizID:  quizID,
		UserID:  callerID,
		Answers: answers,
		Score:   score,
	})
	if err != nil {
		return quiz.Response{}, err
	}
	metrics.RecordResponseScored(score)
	s.log.WithField("quiz_id", quizID).
		WithField("user_id", callerID).
		WithField("score", score).
		Info("response scored")
	return resp, nil
}

// GetOwnResponse returns the caller's response to a quiz.
func (s *Service) GetOwnResponse(ctx context.Context, callerID, quizID string) (quiz.Response, error) {
	return s.store.GetResponse(ctx, quizID, callerID)
}

// ListResponses returns all responses to a quiz. Author only.
func (s *Service) ListResponses(ctx context.Context, callerID, quizID string, page storage.Page) ([]quiz.Response, error) {
	q, err := s.store.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if q.AuthorID != callerID {
		return nil, fmt.Errorf("%w: not the quiz author", domain.ErrForbidden)
	}
	return s.store.ListResponses(ctx, quizID, page)
}

// Score computes the percentage score for a set of answers. A question counts
// when the selected option set matches the correct option set exactly.
func Score(q quiz.Quiz, answers []quiz.Answer) int {
	if len(q.Questions) == 0 {
		return 0
	}
	selected := make(map[string][]string, len(answers))
	for _, a := range answers {
		selected[a.QuestionID] = a.OptionIDs
	}

	points := 0
	for _, question := range q.Questions {
		var correct []string
		for _, opt := range question.Options {
			if opt.Correct {
				correct = append(correct, opt.ID)
			}
		}
		if sameSet(correct, selected[question.ID]) && len(correct) > 0 {
			points++
		}
	}
	return points * 100 / len(q.Questions)
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

// Comment attaches a comment to a quiz, optionally threaded one level.
func (s *Service) Comment(ctx context.Context, callerID, quizID, parentID, body string) (quiz.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return quiz.Comment{}, fmt.Errorf("%w: comment body is required", domain.ErrInvalid)
	}
	q, err := s.store.GetQuiz(ctx, quizID)
	if err != nil {
		return quiz.Comment{}, err
	}
	if err := s.requireVisible(ctx, callerID, q); err != nil {
		return quiz.Comment{}, err
	}
	if parentID != "" {
		parent, err := s.store.GetComment(ctx, parentID)
		if err != nil {
			return quiz.Comment{}, err
		}
		if parent.QuizID != quizID {
			return quiz.Comment{}, fmt.Errorf("%w: parent comment belongs to another quiz", domain.ErrInvalid)
		}
		if parent.ParentID != "" {
			// Threads are one level deep; replying to a reply attaches to
			// the original comment.
			parentID = parent.ParentID
		}
	}

	created, err := s.store.CreateComment(ctx, quiz.Comment{
		QuizID:   quizID,
		AuthorID: callerID,
		ParentID: parentID,
		Body:     body,
	})
	if err != nil {
		return quiz.Comment{}, err
	}
	if s.notifications != nil && q.AuthorID != callerID {
		if _, err := s.notifications.CreateNotification(ctx, notification.Notification{
			RecipientID: q.AuthorID,
			ActorID:     callerID,
			Kind:        notification.KindComment,
			SubjectID:   quizID,
		}); err != nil {
			s.log.WithError(err).Warn("comment notification")
		}
	}
	return created, nil
}

// ListComments returns a quiz's comments, oldest first.
func (s *Service) ListComments(ctx context.Context, callerID, quizID string, page storage.Page) ([]quiz.Comment, error) {
	q, err := s.store.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if err := s.requireVisible(ctx, callerID, q); err != nil {
		return nil, err
	}
	return s.store.ListComments(ctx, quizID, page)
}

// DeleteComment removes a comment. Allowed for the comment author and the
// quiz author.
func (s *Service) DeleteComment(ctx context.Context, callerID, quizID, commentID string) error {
	c, err := s.store.GetComment(ctx, commentID)
	if err != nil {
		return err
	}
	if c.QuizID != quizID {
		return fmt.Errorf("%w: comment not on this quiz", domain.ErrNotFound)
	}
	if c.AuthorID != callerID {
		q, err := s.store.GetQuiz(ctx, quizID)
		if err != nil {
			return err
		}
		if q.AuthorID != callerID {
			return fmt.Errorf("%w: not the comment or quiz author", domain.ErrForbidden)
		}
	}
	return s.store.DeleteComment(ctx, commentID)
}

// Like records a like and notifies the quiz author.
func (s *Service) Like(ctx context.Context, callerID, quizID string) error {
	q, err := s.store.GetQuiz(ctx, quizID)
	if err != nil {
		return err
	}
	if err := s.requireVisible(ctx, callerID, q); err != nil {
		return err
	}
	if err := s.store.CreateLike(ctx, quiz.Like{QuizID: quizID, UserID: callerID}); err != nil {
		return err
	}
	if s.notifications != nil && q.AuthorID != callerID {
		if _, err := s.notifications.CreateNotification(ctx, notification.Notification{
			RecipientID: q.AuthorID,
			ActorID:     callerID,
			Kind:        notification.KindLike,
			SubjectID:   quizID,
		}); err != nil {
			s.log.WithError(err).Warn("like notification")
		}
	}
	return nil
}

// Unlike removes a like.
func (s *Service) Unlike(ctx context.Context, callerID, quizID string) error {
	return s.store.DeleteLike(ctx, quizID, callerID)
}

// requireVisible enforces publish state and visibility against the viewer.
func (s *Service) requireVisible(ctx context.Context, viewerID string, q quiz.Quiz) error {
	if q.AuthorID == viewerID {
		return nil
	}
	if !q.Published {
		return fmt.Errorf("%w: quiz not published", domain.ErrNotFound)
	}
	switch q.Visibility {
	case quiz.VisibilityPublic:
		return nil
	case quiz.VisibilityFollowers:
		follows, err := s.users.FollowExists(ctx, viewerID, q.AuthorID)
		if err != nil {
			return err
		}
		if !follows {
			return fmt.Errorf("%w: followers only", domain.ErrForbidden)
		}
		return nil
	default:
		return fmt.Errorf("%w: private quiz", domain.ErrForbidden)
	}
}

func redactCorrect(q *quiz.Quiz) {
	for i := range q.Questions {
		for j := range q.Questions[i].Options {
			q.Questions[i].Options[j].Correct = false
		}
	}
}

func validate(q *quiz.Quiz) error {
	q.Title = strings.TrimSpace(q.Title)
	if q.Title == "" {
		return fmt.Errorf("%w: title is required", domain.ErrInvalid)
	}
	if q.Visibility == "" {
		q.Visibility = quiz.VisibilityPublic
	}
	switch q.Visibility {
	case quiz.VisibilityPublic, quiz.VisibilityFollowers, quiz.VisibilityPrivate:
	default:
		return fmt.Errorf("%w: unknown visibility %q", domain.ErrInvalid, q.Visibility)
	}
	if len(q.Questions) > maxQuestions {
		return fmt.Errorf("%w: at most %d questions", domain.ErrInvalid, maxQuestions)
	}

	tags := q.Tags[:0]
	for _, tag := range q.Tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	q.Tags = tags
	q.Category = strings.ToLower(strings.TrimSpace(q.Category))

	for i := range q.Questions {
		question := &q.Questions[i]
		question.Text = strings.TrimSpace(question.Text)
		if question.Text == "" {
			return fmt.Errorf("%w: question %d has no text", domain.ErrInvalid, i+1)
		}
		if question.Type == "" {
			question.Type = quiz.QuestionSingle
		}
		switch question.Type {
		case quiz.QuestionSingle, quiz.QuestionMultiple:
		default:
			return fmt.Errorf("%w: unknown question type %q", domain.ErrInvalid, question.Type)
		}
		if len(question.Options) < 2 || len(question.Options) > maxOptions {
			return fmt.Errorf("%w: question %d needs 2-%d options", domain.ErrInvalid, i+1, maxOptions)
		}
		correct := 0
		for j := range question.Options {
			opt := &question.Options[j]
			opt.Text = strings.TrimSpace(opt.Text)
			if opt.Text == "" {
				return fmt.Errorf("%w: question %d option %d has no text", domain.ErrInvalid, i+1, j+1)
			}
			if opt.Correct {
				correct++
			}
		}
		if correct == 0 {
			return fmt.Errorf("%w: question %d has no correct option", domain.ErrInvalid, i+1)
		}
		if question.Type == quiz.QuestionSingle && correct > 1 {
			return fmt.Errorf("%w: question %d allows one correct option", domain.ErrInvalid, i+1)
		}
	}
	return nil
}
