package httpapi

import (
	"net/http"

	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/middleware"
)

func (h *handler) auth(w http.ResponseWriter, r *http.Request) {
	parts := segments(r.URL.Path, "/auth")
	if len(parts) != 1 {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	switch parts[0] {
	case "register":
		h.authRegister(w, r)
	case "login":
		h.authLogin(w, r)
	case "logout":
		h.authLogout(w, r)
	case "me":
		h.authMe(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *handler) authRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var payload struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	u, err := h.app.Users.Register(r.Context(), payload.Username, payload.Email, payload.Password)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	if err := h.sessions.RenewToken(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	h.sessions.Put(r.Context(), middleware.SessionUserKey, u.ID)
	writeJSON(w, http.StatusCreated, u)
}

func (h *handler) authLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var payload struct {
		Login    string `json:"login"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	u, err := h.app.Users.Authenticate(r.Context(), payload.Login, payload.Password)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	// New token on privilege change guards against session fixation.
	if err := h.sessions.RenewToken(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	h.sessions.Put(r.Context(), middleware.SessionUserKey, u.ID)
	writeJSON(w, http.StatusOK, u)
}

func (h *handler) authLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := h.sessions.Destroy(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) authMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	u, err := h.app.Users.Get(r.Context(), userID)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
