// Package httpapi exposes the application services over a REST API with
// cookie-session authentication.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/alexedwards/scs/v2"

	app "github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/storage"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/middleware"
)

const maxPageSize = 100

// handler bundles HTTP endpoints for the application services.
type handler struct {
	app      *app.Application
	sessions *scs.SessionManager
}

// NewHandler returns a mux exposing the core REST API. The mux must be served
// inside the session manager's LoadAndSave wrapper.
func NewHandler(application *app.Application, sessions *scs.SessionManager) http.Handler {
	h := &handler{app: application, sessions: sessions}
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/", h.auth)
	mux.HandleFunc("/users/", h.userResources)
	mux.HandleFunc("/quizzes", h.quizzes)
	mux.HandleFunc("/quizzes/", h.quizResources)
	mux.HandleFunc("/feed", h.feed)
	mux.HandleFunc("/categories", h.categories)
	mux.HandleFunc("/tags", h.tags)
	mux.HandleFunc("/communities", h.communities)
	mux.HandleFunc("/communities/", h.communityResources)
	mux.HandleFunc("/invitations", h.invitations)
	mux.HandleFunc("/invitations/", h.invitationResources)
	mux.HandleFunc("/conversations", h.conversations)
	mux.HandleFunc("/conversations/", h.conversationResources)
	mux.HandleFunc("/notifications", h.notifications)
	mux.HandleFunc("/notifications/", h.notificationResources)
	mux.HandleFunc("/social/", h.socialResources)
	mux.HandleFunc("/healthz", h.healthz)
	return mux
}

func (h *handler) healthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requireUser resolves the authenticated caller or writes a 401.
func (h *handler) requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, errors.New("authentication required"))
		return "", false
	}
	return userID, true
}

// segments splits the path below a prefix into its non-empty parts.
func segments(path, prefix string) []string {
	trimmed := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// pageParams reads skip/take query parameters. Take is capped at 100 and
// defaults to 20 in the stores.
func pageParams(r *http.Request) storage.Page {
	var p storage.Page
	if skip, err := strconv.Atoi(r.URL.Query().Get("skip")); err == nil && skip > 0 {
		p.Skip = skip
	}
	if take, err := strconv.Atoi(r.URL.Query().Get("take")); err == nil && take > 0 {
		if take > maxPageSize {
			take = maxPageSize
		}
		p.Take = take
	}
	return p
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrInvalid):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(body io.ReadCloser, dst interface{}) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
