package social

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain/quiz"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain/social"
)

func TestTumblrPublisherParsesPostID(t *testing.T) {
	var gotPath, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"meta":{"status":201},"response":{"id":123,"id_string":"123"}}`))
	}))
	defer server.Close()

	pub, err := NewTumblrPublisher(server.Client(), server.URL, "https://quizsquirrel.example", nil)
	if err != nil {
		t.Fatalf("new publisher: %v", err)
	}

	id, err := pub.Publish(context.Background(), social.Connection{
		ProviderAccount: "squirrelblog",
		AccessToken:     "secret-token",
	}, quiz.Quiz{ID: "q1", Title: "Acorns 101"})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if id != "123" {
		t.Fatalf("expected post id 123, got %q", id)
	}
	if !strings.Contains(gotPath, "/blog/squirrelblog/post") {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotAuth != "Bearer secret-token" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
}

func TestFacebookPublisherSurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"error":{"message":"token expired","code":190}}`))
	}))
	defer server.Close()

	pub, err := NewFacebookPublisher(server.Client(), server.URL, "https://quizsquirrel.example", nil)
	if err != nil {
		t.Fatalf("new publisher: %v", err)
	}

	_, err = pub.Publish(context.Background(), social.Connection{
		ProviderAccount: "page-1",
		AccessToken:     "stale",
	}, quiz.Quiz{ID: "q1", Title: "Acorns 101"})
	if err == nil || !strings.Contains(err.Error(), "token expired") {
		t.Fatalf("expected API error surfaced, got %v", err)
	}
}

func TestFacebookPublisherParsesPostID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"page-1_789"}`))
	}))
	defer server.Close()

	pub, err := NewFacebookPublisher(server.Client(), server.URL, "https://quizsquirrel.example", nil)
	if err != nil {
		t.Fatalf("new publisher: %v", err)
	}

	id, err := pub.Publish(context.Background(), social.Connection{
		ProviderAccount: "page-1",
		AccessToken:     "token",
	}, quiz.Quiz{ID: "q1", Title: "Acorns 101"})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if id != "page-1_789" {
		t.Fatalf("expected post id, got %q", id)
	}
}

func TestPublisherRejectsNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer server.Close()

	pub, err := NewTumblrPublisher(server.Client(), server.URL, "https://quizsquirrel.example", nil)
	if err != nil {
		t.Fatalf("new publisher: %v", err)
	}
	if _, err := pub.Publish(context.Background(), social.Connection{ProviderAccount: "b"}, quiz.Quiz{ID: "q"}); err == nil {
		t.Fatal("expected error for 401 response")
	}
}
