// Package middleware provides HTTP middleware for the API server.
package middleware

import (
	"context"
	"net/http"

	"github.com/alexedwards/scs/v2"
)

// SessionUserKey is the session key holding the authenticated user's ID.
const SessionUserKey = "user_id"

type contextKey string

const userIDKey contextKey = "user_id"

// SessionAuth resolves the session cookie into a user ID on the request
// context. It never rejects: handlers decide whether a route requires an
// authenticated caller. Must run inside the manager's LoadAndSave wrapper.
type SessionAuth struct {
	sessions *scs.SessionManager
}

// NewSessionAuth creates session-resolution middleware over the manager.
func NewSessionAuth(sessions *scs.SessionManager) *SessionAuth {
	return &SessionAuth{sessions: sessions}
}

// Handler returns the middleware handler.
func (m *SessionAuth) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userID := m.sessions.GetString(r.Context(), SessionUserKey); userID != "" {
			r = r.WithContext(WithUserID(r.Context(), userID))
		}
		next.ServeHTTP(w, r)
	})
}

// WithUserID returns a context carrying the authenticated user's ID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserID extracts the authenticated user's ID from the context. Empty
// means the request is anonymous.
func GetUserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}
