package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain/social"
)

func (h *handler) socialResources(w http.ResponseWriter, r *http.Request) {
	parts := segments(r.URL.Path, "/social")
	if len(parts) == 0 {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	callerID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	switch parts[0] {
	case "connections":
		h.socialConnections(w, r, callerID, parts[1:])
	case "posts":
		if len(parts) != 1 {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.socialPosts(w, r, callerID)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *handler) socialConnections(w http.ResponseWriter, r *http.Request, callerID string, rest []string) {
	if len(rest) == 1 {
		if r.Method != http.MethodDelete {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if err := h.app.Social.Disconnect(r.Context(), callerID, social.Provider(rest[0])); err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if len(rest) != 0 {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodPost:
		var payload struct {
			Provider        string `json:"provider"`
			ProviderAccount string `json:"provider_account"`
			AccessToken     string `json:"access_token"`
			RefreshToken    string `json:"refresh_token"`
			ExpiresAt       string `json:"expires_at"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		conn := social.Connection{
			Provider:        social.Provider(payload.Provider),
			ProviderAccount: payload.ProviderAccount,
			AccessToken:     payload.AccessToken,
			RefreshToken:    payload.RefreshToken,
		}
		if payload.ExpiresAt != "" {
			expires, err := time.Parse(time.RFC3339, payload.ExpiresAt)
			if err != nil {
				writeError(w, http.StatusBadRequest, fmt.Errorf("expires_at must be an RFC3339 timestamp"))
				return
			}
			conn.ExpiresAt = expires
		}

		created, err := h.app.Social.Connect(r.Context(), callerID, conn)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusCreated, created)

	case http.MethodGet:
		conns, err := h.app.Social.Connections(r.Context(), callerID)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, conns)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) socialPosts(w http.ResponseWriter, r *http.Request, callerID string) {
	switch r.Method {
	case http.MethodPost:
		var payload struct {
			QuizID       string `json:"quiz_id"`
			Provider     string `json:"provider"`
			ScheduledFor string `json:"scheduled_for"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		var scheduledFor time.Time
		if payload.ScheduledFor != "" {
			parsed, err := time.Parse(time.RFC3339, payload.ScheduledFor)
			if err != nil {
				writeError(w, http.StatusBadRequest, fmt.Errorf("scheduled_for must be an RFC3339 timestamp"))
				return
			}
			scheduledFor = parsed
		}

		post, err := h.app.Social.CrossPost(r.Context(), callerID, payload.QuizID, social.Provider(payload.Provider), scheduledFor)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusCreated, post)

	case http.MethodGet:
		posts, err := h.app.Social.Posts(r.Context(), callerID, pageParams(r))
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, posts)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
