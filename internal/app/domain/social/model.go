package social

import "time"

// Provider is a supported social-media platform.
type Provider string

const (
	ProviderTumblr   Provider = "tumblr"
	ProviderFacebook Provider = "facebook"
)

// Valid reports whether the provider is supported.
func (p Provider) Valid() bool {
	return p == ProviderTumblr || p == ProviderFacebook
}

// Connection stores OAuth credentials for a user's linked account. One
// connection per (user, provider); reconnecting replaces it. Tokens are
// never serialized in API responses.
type Connection struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	Provider        Provider  `json:"provider"`
	ProviderAccount string    `json:"provider_account"`
	AccessToken     string    `json:"-"`
	RefreshToken    string    `json:"-"`
	ExpiresAt       time.Time `json:"expires_at"`
	CreatedAt       time.Time `json:"created_at"`
}

// PostStatus tracks a cross-post through its lifecycle.
type PostStatus string

const (
	PostPending   PostStatus = "pending"
	PostPublished PostStatus = "published"
	PostFailed    PostStatus = "failed"
)

// Post records a quiz cross-posted (or scheduled for cross-posting) to a
// provider.
type Post struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	QuizID         string     `json:"quiz_id"`
	Provider       Provider   `json:"provider"`
	Status         PostStatus `json:"status"`
	ProviderPostID string     `json:"provider_post_id,omitempty"`
	Error          string     `json:"error,omitempty"`
	ScheduledFor   time.Time  `json:"scheduled_for"`
	PublishedAt    time.Time  `json:"published_at"`
	CreatedAt      time.Time  `json:"created_at"`
}
