package httpapi

import (
	"errors"
	"net/http"

	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/middleware"
)

func (h *handler) userResources(w http.ResponseWriter, r *http.Request) {
	parts := segments(r.URL.Path, "/users")
	if len(parts) == 0 {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	userID := parts[0]

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			viewerID := middleware.GetUserID(r.Context())
			u, err := h.app.Users.GetProfile(r.Context(), viewerID, userID)
			if err != nil {
				writeError(w, statusFor(err), err)
				return
			}
			writeJSON(w, http.StatusOK, u)
		case http.MethodPatch:
			h.updateProfile(w, r, userID)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	if len(parts) != 2 {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	switch parts[1] {
	case "follow":
		h.userFollow(w, r, userID)
	case "followers":
		h.userFollowers(w, r, userID, true)
	case "following":
		h.userFollowers(w, r, userID, false)
	case "block":
		h.userBlock(w, r, userID)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *handler) updateProfile(w http.ResponseWriter, r *http.Request, userID string) {
	callerID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	if callerID != userID {
		writeError(w, http.StatusForbidden, errors.New("cannot edit another user's profile"))
		return
	}

	var payload struct {
		DisplayName *string `json:"display_name"`
		Bio         *string `json:"bio"`
		AvatarURL   *string `json:"avatar_url"`
		Private     *bool   `json:"private"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	u, err := h.app.Users.UpdateProfile(r.Context(), callerID, payload.DisplayName, payload.Bio, payload.AvatarURL, payload.Private)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *handler) userFollow(w http.ResponseWriter, r *http.Request, userID string) {
	callerID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	var err error
	switch r.Method {
	case http.MethodPost:
		err = h.app.Users.Follow(r.Context(), callerID, userID)
	case http.MethodDelete:
		err = h.app.Users.Unfollow(r.Context(), callerID, userID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) userFollowers(w http.ResponseWriter, r *http.Request, userID string, followers bool) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	viewerID := middleware.GetUserID(r.Context())
	page := pageParams(r)

	var err error
	var users interface{}
	if followers {
		users, err = h.app.Users.Followers(r.Context(), viewerID, userID, page)
	} else {
		users, err = h.app.Users.Following(r.Context(), viewerID, userID, page)
	}
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *handler) userBlock(w http.ResponseWriter, r *http.Request, userID string) {
	callerID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	var err error
	switch r.Method {
	case http.MethodPost:
		err = h.app.Users.Block(r.Context(), callerID, userID)
	case http.MethodDelete:
		err = h.app.Users.Unblock(r.Context(), callerID, userID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
