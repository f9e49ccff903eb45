// Package taxonomy serves the category and tag lists computed from published
// quizzes, memoized with a fixed TTL. When a Redis client is attached the
// memo is written through so instances share it.
package taxonomy

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/storage"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/pkg/logger"
)

// DefaultTTL is how long a computed taxonomy is served before recomputing.
const DefaultTTL = 5 * time.Minute

const (
	redisKeyCategories = "taxonomy:categories"
	redisKeyTags       = "taxonomy:tags"
)

// Service caches the quiz taxonomy.
type Service struct {
	store storage.QuizStore
	redis *redis.Client
	ttl   time.Duration
	log   *logger.Logger
	now   func() time.Time

	mu         sync.RWMutex
	categories memo
	tags       memo
}

type memo struct {
	values    []string
	fetchedAt time.Time
}

// New constructs a taxonomy service. The redis client is optional.
func New(store storage.QuizStore, rdb *redis.Client, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("taxonomy")
	}
	return &Service{store: store, redis: rdb, ttl: DefaultTTL, log: log, now: time.Now}
}

// WithTTL overrides the memo TTL. Used by tests.
func (s *Service) WithTTL(ttl time.Duration) *Service {
	s.ttl = ttl
	return s
}

// Categories returns the distinct categories of published quizzes.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	return s.cached(ctx, &s.categories, redisKeyCategories, s.store.ListCategories)
}

// Tags returns the distinct tags of published quizzes.
func (s *Service) Tags(ctx context.Context) ([]string, error) {
	return s.cached(ctx, &s.tags, redisKeyTags, s.store.ListTags)
}

// Invalidate drops both memos so the next read recomputes.
func (s *Service) Invalidate() {
	s.mu.Lock()
	s.categories = memo{}
	s.tags = memo{}
	s.mu.Unlock()
}

func (s *Service) cached(ctx context.Context, m *memo, redisKey string, compute func(context.Context) ([]string, error)) ([]string, error) {
	s.mu.RLock()
	if m.values != nil && s.now().Sub(m.fetchedAt) < s.ttl {
		values := m.values
		s.mu.RUnlock()
		return values, nil
	}
	s.mu.RUnlock()

	if values, ok := s.fromRedis(ctx, redisKey); ok {
		s.mu.Lock()
		*m = memo{values: values, fetchedAt: s.now()}
		s.mu.Unlock()
		return values, nil
	}

	values, err := compute(ctx)
	if err != nil {
		return nil, err
	}
	if values == nil {
		values = []string{}
	}

	s.mu.Lock()
	*m = memo{values: values, fetchedAt: s.now()}
	s.mu.Unlock()
	s.toRedis(ctx, redisKey, values)
	return values, nil
}

func (s *Service) fromRedis(ctx context.Context, key string) ([]string, bool) {
	if s.redis == nil {
		return nil, false
	}
	raw, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.log.WithError(err).Debug("taxonomy redis read")
		}
		return nil, false
	}
	var values []string
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, false
	}
	return values, true
}

func (s *Service) toRedis(ctx context.Context, key string, values []string) {
	if s.redis == nil {
		return
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		s.log.WithError(err).Debug("taxonomy redis write")
	}
}
