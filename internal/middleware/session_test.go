package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alexedwards/scs/v2"
)

func TestSessionAuthResolvesUserID(t *testing.T) {
	sessions := scs.New()
	auth := NewSessionAuth(sessions)

	var seen string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetUserID(r.Context())
	})
	handler := sessions.LoadAndSave(auth.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessions.Put(r.Context(), SessionUserKey, "u-1")
		inner.ServeHTTP(w, r)
	})))

	// First request establishes the session but runs before the put.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if seen != "" {
		t.Fatalf("expected anonymous first request, got %q", seen)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected session cookie")
	}

	// Second request carries the cookie and resolves the user.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if seen != "u-1" {
		t.Fatalf("expected user resolved from session, got %q", seen)
	}
}

func TestGetUserIDAnonymous(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if id := GetUserID(req.Context()); id != "" {
		t.Fatalf("expected empty user id, got %q", id)
	}
}
