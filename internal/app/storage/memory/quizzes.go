package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain/quiz"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/storage"
)

// QuizStore implementation ----------------------------------------------------

func (s *Store) CreateQuiz(_ context.Context, q quiz.Quiz) (quiz.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if q.ID == "" {
		q.ID = newID()
	}
	now := time.Now().UTC()
	q.CreatedAt = now
	q.UpdatedAt = now
	assignQuestionIDs(&q)

	s.quizzes[q.ID] = cloneQuiz(q)
	s.quizOrder = append(s.quizOrder, q.ID)
	return q, nil
}

func (s *Store) UpdateQuiz(_ context.Context, q quiz.Quiz) (quiz.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.quizzes[q.ID]
	if !ok {
		return quiz.Quiz{}, fmt.Errorf("quiz %s: %w", q.ID, domain.ErrNotFound)
	}
	q.AuthorID = existing.AuthorID
	q.LikeCount = existing.LikeCount
	q.ResponseCount = existing.ResponseCount
	q.CreatedAt = existing.CreatedAt
	q.UpdatedAt = time.Now().UTC()
	assignQuestionIDs(&q)

	s.quizzes[q.ID] = cloneQuiz(q)
	return q, nil
}

func (s *Store) GetQuiz(_ context.Context, id string) (quiz.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, ok := s.quizzes[id]
	if !ok {
		return quiz.Quiz{}, fmt.Errorf("quiz %s: %w", id, domain.ErrNotFound)
	}
	// Callers mutate what they get back (redaction); hand out a deep copy so
	// the stored answer key survives.
	return cloneQuiz(q), nil
}

func (s *Store) DeleteQuiz(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.quizzes[id]; !ok {
		return fmt.Errorf("quiz %s: %w", id, domain.ErrNotFound)
	}
	delete(s.quizzes, id)
	for i, qid := range s.quizOrder {
		if qid == id {
			s.quizOrder = append(s.quizOrder[:i], s.quizOrder[i+1:]...)
			break
		}
	}
	delete(s.responses, id)
	delete(s.responseOrder, id)
	delete(s.likes, id)
	for _, cid := range s.commentsByQuiz[id] {
		delete(s.comments, cid)
	}
	delete(s.commentsByQuiz, id)
	return nil
}

func (s *Store) SetQuizPublished(_ context.Context, id string, published bool) (quiz.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.quizzes[id]
	if !ok {
		return quiz.Quiz{}, fmt.Errorf("quiz %s: %w", id, domain.ErrNotFound)
	}
	q.Published = published
	q.UpdatedAt = time.Now().UTC()
	s.quizzes[id] = q
	return cloneQuiz(q), nil
}

func (s *Store) ListQuizzes(_ context.Context, filter storage.QuizFilter) ([]quiz.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	authorSet := map[string]bool{}
	for _, id := range filter.AuthorIDs {
		authorSet[id] = true
	}

	var out []quiz.Quiz
	// Newest first: walk creation order backwards.
	for i := len(s.quizOrder) - 1; i >= 0; i-- {
		q := s.quizzes[s.quizOrder[i]]
		if filter.PublishedOnly && !q.Published {
			continue
		}
		if filter.AuthorID != "" && q.AuthorID != filter.AuthorID {
			continue
		}
		if len(authorSet) > 0 && !authorSet[q.AuthorID] {
			continue
		}
		if filter.Category != "" && q.Category != filter.Category {
			continue
		}
		if filter.Tag != "" && !hasTag(q.Tags, filter.Tag) {
			continue
		}
		// Listings are quiz rows without nested questions, like the
		// relational store; callers fetch questions through GetQuiz.
		q.Questions = nil
		q.Tags = append([]string(nil), q.Tags...)
		out = append(out, q)
	}
	lo, hi := bounds(filter.Page, len(out))
	return out[lo:hi], nil
}

func (s *Store) UpsertResponse(_ context.Context, r quiz.Response) (quiz.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.quizzes[r.QuizID]
	if !ok {
		return quiz.Response{}, fmt.Errorf("quiz %s: %w", r.QuizID, domain.ErrNotFound)
	}
	byUser, ok := s.responses[r.QuizID]
	if !ok {
		byUser = make(map[string]quiz.Response)
		s.responses[r.QuizID] = byUser
	}
	prev, replaced := byUser[r.UserID]
	if replaced {
		r.ID = prev.ID
	} else {
		if r.ID == "" {
			r.ID = newID()
		}
		s.responseOrder[r.QuizID] = append(s.responseOrder[r.QuizID], r.UserID)
		q.ResponseCount++
		s.quizzes[r.QuizID] = q
	}
	if r.CompletedAt.IsZero() {
		r.CompletedAt = time.Now().UTC()
	}
	byUser[r.UserID] = r
	return r, nil
}

func (s *Store) GetResponse(_ context.Context, quizID, userID string) (quiz.Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.responses[quizID][userID]
	if !ok {
		return quiz.Response{}, fmt.Errorf("response: %w", domain.ErrNotFound)
	}
	return r, nil
}

func (s *Store) ListResponses(_ context.Context, quizID string, page storage.Page) ([]quiz.Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []quiz.Response
	for _, userID := range s.responseOrder[quizID] {
		out = append(out, s.responses[quizID][userID])
	}
	lo, hi := bounds(page, len(out))
	return out[lo:hi], nil
}

func (s *Store) CreateComment(_ context.Context, c quiz.Comment) (quiz.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.quizzes[c.QuizID]; !ok {
		return quiz.Comment{}, fmt.Errorf("quiz %s: %w", c.QuizID, domain.ErrNotFound)
	}
	if c.ID == "" {
		c.ID = newID()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	s.comments[c.ID] = c
	s.commentsByQuiz[c.QuizID] = append(s.commentsByQuiz[c.QuizID], c.ID)
	return c, nil
}

func (s *Store) GetComment(_ context.Context, id string) (quiz.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.comments[id]
	if !ok {
		return quiz.Comment{}, fmt.Errorf("comment %s: %w", id, domain.ErrNotFound)
	}
	return c, nil
}

func (s *Store) DeleteComment(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comments[id]
	if !ok {
		return fmt.Errorf("comment %s: %w", id, domain.ErrNotFound)
	}
	delete(s.comments, id)
	ids := s.commentsByQuiz[c.QuizID]
	for i, cid := range ids {
		if cid == id {
			s.commentsByQuiz[c.QuizID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) ListComments(_ context.Context, quizID string, page storage.Page) ([]quiz.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []quiz.Comment
	for _, cid := range s.commentsByQuiz[quizID] {
		out = append(out, s.comments[cid])
	}
	lo, hi := bounds(page, len(out))
	return out[lo:hi], nil
}

func (s *Store) CreateLike(_ context.Context, l quiz.Like) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.quizzes[l.QuizID]
	if !ok {
		return fmt.Errorf("quiz %s: %w", l.QuizID, domain.ErrNotFound)
	}
	byUser, ok := s.likes[l.QuizID]
	if !ok {
		byUser = make(map[string]quiz.Like)
		s.likes[l.QuizID] = byUser
	}
	if _, exists := byUser[l.UserID]; exists {
		return fmt.Errorf("like: %w", domain.ErrConflict)
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
	byUser[l.UserID] = l
	q.LikeCount++
	s.quizzes[l.QuizID] = q
	return nil
}

func (s *Store) DeleteLike(_ context.Context, quizID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.quizzes[quizID]
	if !ok {
		return fmt.Errorf("quiz %s: %w", quizID, domain.ErrNotFound)
	}
	if _, exists := s.likes[quizID][userID]; !exists {
		return fmt.Errorf("like: %w", domain.ErrNotFound)
	}
	delete(s.likes[quizID], userID)
	q.LikeCount--
	s.quizzes[quizID] = q
	return nil
}

func (s *Store) ListCategories(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := map[string]bool{}
	for _, q := range s.quizzes {
		if q.Published && q.Category != "" {
			seen[q.Category] = true
		}
	}
	return sortedKeys(seen), nil
}

func (s *Store) ListTags(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := map[string]bool{}
	for _, q := range s.quizzes {
		if !q.Published {
			continue
		}
		for _, tag := range q.Tags {
			seen[tag] = true
		}
	}
	return sortedKeys(seen), nil
}

func assignQuestionIDs(q *quiz.Quiz) {
	for i := range q.Questions {
		if q.Questions[i].ID == "" {
			q.Questions[i].ID = newID()
		}
		q.Questions[i].QuizID = q.ID
		for j := range q.Questions[i].Options {
			if q.Questions[i].Options[j].ID == "" {
				q.Questions[i].Options[j].ID = newID()
			}
			q.Questions[i].Options[j].QuestionID = q.Questions[i].ID
		}
	}
}

func cloneQuiz(q quiz.Quiz) quiz.Quiz {
	q.Tags = append([]string(nil), q.Tags...)
	questions := make([]quiz.Question, len(q.Questions))
	copy(questions, q.Questions)
	for i := range questions {
		options := make([]quiz.Option, len(questions[i].Options))
		copy(options, questions[i].Options)
		questions[i].Options = options
	}
	q.Questions = questions
	return q
}

func hasTag(tags []string, want string) bool {
	for _, tag := range tags {
		if tag == want {
			return true
		}
	}
	return false
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
