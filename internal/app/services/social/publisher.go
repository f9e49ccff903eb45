package social

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain/quiz"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain/social"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/pkg/logger"
)

// Publisher posts a quiz to a provider on behalf of a connected account and
// returns the provider's post ID.
type Publisher interface {
	Publish(ctx context.Context, conn social.Connection, q quiz.Quiz) (string, error)
}

const maxResponseBytes = 1 << 20

// TumblrPublisher posts to the Tumblr API.
type TumblrPublisher struct {
	client   *http.Client
	endpoint *url.URL
	baseURL  string
	log      *logger.Logger
}

// NewTumblrPublisher constructs a Tumblr publisher. endpoint is the API base
// (live or a test double); quizBaseURL is where published quizzes are linked.
func NewTumblrPublisher(client *http.Client, endpoint, quizBaseURL string, log *logger.Logger) (*TumblrPublisher, error) {
	parsed, err := parseEndpoint(endpoint)
	if err != nil {
		return nil, err
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if log == nil {
		log = logger.NewDefault("tumblr-publisher")
	}
	return &TumblrPublisher{
		client:   client,
		endpoint: parsed,
		baseURL:  strings.TrimRight(quizBaseURL, "/"),
		log:      log,
	}, nil
}

func (p *TumblrPublisher) Publish(ctx context.Context, conn social.Connection, q quiz.Quiz) (string, error) {
	form := url.Values{}
	form.Set("type", "link")
	form.Set("title", q.Title)
	form.Set("url", p.baseURL+"/quizzes/"+q.ID)
	form.Set("description", q.Description)

	postURL := *p.endpoint
	postURL.Path = strings.TrimRight(postURL.Path, "/") + "/blog/" + conn.ProviderAccount + "/post"

	body, err := doProviderRequest(ctx, p.client, postURL.String(), conn.AccessToken, form)
	if err != nil {
		return "", fmt.Errorf("tumblr: %w", err)
	}

	// Tumblr wraps payloads in a response envelope.
	id := gjson.GetBytes(body, "response.id_string")
	if !id.Exists() {
		id = gjson.GetBytes(body, "response.id")
	}
	if !id.Exists() {
		return "", fmt.Errorf("tumblr: response missing post id")
	}
	return id.String(), nil
}

// FacebookPublisher posts to the Facebook Graph API.
type FacebookPublisher struct {
	client   *http.Client
	endpoint *url.URL
	baseURL  string
	log      *logger.Logger
}

// NewFacebookPublisher constructs a Facebook publisher.
func NewFacebookPublisher(client *http.Client, endpoint, quizBaseURL string, log *logger.Logger) (*FacebookPublisher, error) {
	parsed, err := parseEndpoint(endpoint)
	if err != nil {
		return nil, err
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if log == nil {
		log = logger.NewDefault("facebook-publisher")
	}
	return &FacebookPublisher{
		client:   client,
		endpoint: parsed,
		baseURL:  strings.TrimRight(quizBaseURL, "/"),
		log:      log,
	}, nil
}

func (p *FacebookPublisher) Publish(ctx context.Context, conn social.Connection, q quiz.Quiz) (string, error) {
	form := url.Values{}
	form.Set("message", q.Title)
	form.Set("link", p.baseURL+"/quizzes/"+q.ID)

	postURL := *p.endpoint
	postURL.Path = strings.TrimRight(postURL.Path, "/") + "/" + conn.ProviderAccount + "/feed"

	body, err := doProviderRequest(ctx, p.client, postURL.String(), conn.AccessToken, form)
	if err != nil {
		return "", fmt.Errorf("facebook: %w", err)
	}

	id := gjson.GetBytes(body, "id")
	if !id.Exists() {
		if msg := gjson.GetBytes(body, "error.message"); msg.Exists() {
			return "", fmt.Errorf("facebook: %s", msg.String())
		}
		return "", fmt.Errorf("facebook: response missing post id")
	}
	return id.String(), nil
}

func parseEndpoint(endpoint string) (*url.URL, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("publisher endpoint required")
	}
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse publisher endpoint: %w", err)
	}
	return parsed, nil
}

func doProviderRequest(ctx context.Context, client *http.Client, postURL, token string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, postURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("provider request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read provider response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return body, fmt.Errorf("provider status %d", resp.StatusCode)
	}
	return body, nil
}
