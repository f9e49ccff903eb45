// Package social manages linked social-media accounts and cross-posting of
// published quizzes.
package social

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain/social"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/metrics"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/storage"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/pkg/logger"
)

// Service manages social connections and posts.
type Service struct {
	store      storage.SocialStore
	quizzes    storage.QuizStore
	publishers map[social.Provider]Publisher
	log        *logger.Logger
}

// New constructs a social service. Publishers are attached per provider via
// AttachPublisher.
func New(store storage.SocialStore, quizzes storage.QuizStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("social")
	}
	return &Service{
		store:      store,
		quizzes:    quizzes,
		publishers: make(map[social.Provider]Publisher),
		log:        log,
	}
}

// AttachPublisher wires the outbound publisher for a provider.
func (s *Service) AttachPublisher(provider social.Provider, p Publisher) {
	s.publishers[provider] = p
}

// Connect stores (or replaces) the caller's connection for a provider.
func (s *Service) Connect(ctx context.Context, callerID string, c social.Connection) (social.Connection, error) {
	if !c.Provider.Valid() {
		return social.Connection{}, fmt.Errorf("%w: unknown provider %q", domain.ErrInvalid, c.Provider)
	}
	if strings.TrimSpace(c.AccessToken) == "" {
		return social.Connection{}, fmt.Errorf("%w: access token is required", domain.ErrInvalid)
	}
	c.UserID = callerID
	conn, err := s.store.UpsertConnection(ctx, c)
	if err != nil {
		return social.Connection{}, err
	}
	s.log.WithField("user_id", callerID).
		WithField("provider", c.Provider).
		Info("social account connected")
	return conn, nil
}

// Disconnect removes the caller's connection for a provider.
func (s *Service) Disconnect(ctx context.Context, callerID string, provider social.Provider) error {
	if !provider.Valid() {
		return fmt.Errorf("%w: unknown provider %q", domain.ErrInvalid, provider)
	}
	return s.store.DeleteConnection(ctx, callerID, provider)
}

// Connections lists the caller's connections. Tokens are redacted by the
// handler layer via struct tags.
func (s *Service) Connections(ctx context.Context, callerID string) ([]social.Connection, error) {
	return s.store.ListConnections(ctx, callerID)
}

// CrossPost shares a published quiz to a provider, immediately or at
// scheduledFor when it is set in the future.
func (s *Service) CrossPost(ctx context.Context, callerID, quizID string, provider social.Provider, scheduledFor time.Time) (social.Post, error) {
	if !provider.Valid() {
		return social.Post{}, fmt.Errorf("%w: unknown provider %q", domain.ErrInvalid, provider)
	}
	q, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return social.Post{}, err
	}
	if q.AuthorID != callerID {
		return social.Post{}, fmt.Errorf("%w: not the quiz author", domain.ErrForbidden)
	}
	if !q.Published {
		return social.Post{}, fmt.Errorf("%w: quiz not published", domain.ErrInvalid)
	}
	if _, err := s.store.GetConnection(ctx, callerID, provider); err != nil {
		return social.Post{}, fmt.Errorf("%w: no %s connection", domain.ErrInvalid, provider)
	}

	post := social.Post{
		UserID:   callerID,
		QuizID:   quizID,
		Provider: provider,
		Status:   social.PostPending,
	}
	if scheduledFor.After(time.Now()) {
		post.ScheduledFor = scheduledFor.UTC()
	}
	created, err := s.store.CreateSocialPost(ctx, post)
	if err != nil {
		return social.Post{}, err
	}
	if created.ScheduledFor.IsZero() {
		return s.publish(ctx, created)
	}
	return created, nil
}

// Posts lists the caller's cross-posts, newest first.
func (s *Service) Posts(ctx context.Context, callerID string, page storage.Page) ([]social.Post, error) {
	return s.store.ListSocialPosts(ctx, callerID, page)
}

// PublishDue publishes every pending post whose schedule has arrived. It is
// called by the scheduler and returns the number of posts attempted.
func (s *Service) PublishDue(ctx context.Context, now time.Time) (int, error) {
	due, err := s.store.ListDuePosts(ctx, now)
	if err != nil {
		return 0, err
	}
	for _, post := range due {
		if _, err := s.publish(ctx, post); err != nil {
			s.log.WithError(err).
				WithField("post_id", post.ID).
				Warn("scheduled cross-post failed")
		}
	}
	return len(due), nil
}

// publish runs a post through its provider publisher and records the result.
func (s *Service) publish(ctx context.Context, post social.Post) (social.Post, error) {
	publisher, ok := s.publishers[post.Provider]
	if !ok {
		post.Status = social.PostFailed
		post.Error = fmt.Sprintf("no publisher configured for %s", post.Provider)
		metrics.RecordCrossPost(string(post.Provider), string(social.PostFailed))
		return s.store.UpdateSocialPost(ctx, post)
	}

	conn, err := s.store.GetConnection(ctx, post.UserID, post.Provider)
	if err != nil {
		post.Status = social.PostFailed
		post.Error = "connection missing"
		metrics.RecordCrossPost(string(post.Provider), string(social.PostFailed))
		return s.store.UpdateSocialPost(ctx, post)
	}
	q, err := s.quizzes.GetQuiz(ctx, post.QuizID)
	if err != nil {
		post.Status = social.PostFailed
		post.Error = "quiz missing"
		metrics.RecordCrossPost(string(post.Provider), string(social.PostFailed))
		return s.store.UpdateSocialPost(ctx, post)
	}

	providerPostID, err := publisher.Publish(ctx, conn, q)
	if err != nil {
		post.Status = social.PostFailed
		post.Error = err.Error()
		metrics.RecordCrossPost(string(post.Provider), string(social.PostFailed))
		updated, uerr := s.store.UpdateSocialPost(ctx, post)
		if uerr != nil {
			return social.Post{}, uerr
		}
		return updated, nil
	}

	post.Status = social.PostPublished
	post.ProviderPostID = providerPostID
	post.PublishedAt = time.Now().UTC()
	post.Error = ""
	metrics.RecordCrossPost(string(post.Provider), string(social.PostPublished))
	s.log.WithField("post_id", post.ID).
		WithField("provider", post.Provider).
		Info("quiz cross-posted")
	return s.store.UpdateSocialPost(ctx, post)
}
