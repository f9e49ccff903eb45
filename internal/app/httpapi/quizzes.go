package httpapi

import (
	"net/http"

	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain/quiz"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/storage"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/middleware"
)

func (h *handler) quizzes(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		callerID, ok := h.requireUser(w, r)
		if !ok {
			return
		}
		var payload quiz.Quiz
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		created, err := h.app.Quizzes.Create(r.Context(), callerID, payload)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusCreated, created)

	case http.MethodGet:
		// Either the public catalogue or, with mine=true, the caller's own
		// quizzes including drafts.
		if truthy(r.URL.Query().Get("mine")) {
			callerID, ok := h.requireUser(w, r)
			if !ok {
				return
			}
			quizzes, err := h.app.Quizzes.ListOwn(r.Context(), callerID, pageParams(r))
			if err != nil {
				writeError(w, statusFor(err), err)
				return
			}
			writeJSON(w, http.StatusOK, quizzes)
			return
		}

		filter := storage.QuizFilter{
			AuthorID: r.URL.Query().Get("author"),
			Category: r.URL.Query().Get("category"),
			Tag:      r.URL.Query().Get("tag"),
			Page:     pageParams(r),
		}
		quizzes, err := h.app.Quizzes.List(r.Context(), filter)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, quizzes)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) quizResources(w http.ResponseWriter, r *http.Request) {
	parts := segments(r.URL.Path, "/quizzes")
	if len(parts) == 0 {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	quizID := parts[0]

	if len(parts) == 1 {
		h.quizByID(w, r, quizID)
		return
	}

	switch parts[1] {
	case "publish":
		h.quizPublish(w, r, quizID)
	case "responses":
		h.quizResponses(w, r, quizID)
	case "comments":
		h.quizComments(w, r, quizID, parts[2:])
	case "like":
		h.quizLike(w, r, quizID)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *handler) quizByID(w http.ResponseWriter, r *http.Request, quizID string) {
	switch r.Method {
	case http.MethodGet:
		viewerID := middleware.GetUserID(r.Context())
		q, err := h.app.Quizzes.Get(r.Context(), viewerID, quizID)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, q)

	case http.MethodPut:
		callerID, ok := h.requireUser(w, r)
		if !ok {
			return
		}
		var payload quiz.Quiz
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		payload.ID = quizID
		updated, err := h.app.Quizzes.Update(r.Context(), callerID, payload)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, updated)

	case http.MethodDelete:
		callerID, ok := h.requireUser(w, r)
		if !ok {
			return
		}
		if err := h.app.Quizzes.Delete(r.Context(), callerID, quizID); err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) quizPublish(w http.ResponseWriter, r *http.Request, quizID string) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	callerID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	q, err := h.app.Quizzes.Publish(r.Context(), callerID, quizID)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *handler) quizResponses(w http.ResponseWriter, r *http.Request, quizID string) {
	callerID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodPost:
		var payload struct {
			Answers []quiz.Answer `json:"answers"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		resp, err := h.app.Quizzes.SubmitResponse(r.Context(), callerID, quizID, payload.Answers)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusCreated, resp)

	case http.MethodGet:
		if truthy(r.URL.Query().Get("mine")) {
			resp, err := h.app.Quizzes.GetOwnResponse(r.Context(), callerID, quizID)
			if err != nil {
				writeError(w, statusFor(err), err)
				return
			}
			writeJSON(w, http.StatusOK, resp)
			return
		}
		resps, err := h.app.Quizzes.ListResponses(r.Context(), callerID, quizID, pageParams(r))
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, resps)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) quizComments(w http.ResponseWriter, r *http.Request, quizID string, rest []string) {
	if len(rest) == 1 {
		if r.Method != http.MethodDelete {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		callerID, ok := h.requireUser(w, r)
		if !ok {
			return
		}
		if err := h.app.Quizzes.DeleteComment(r.Context(), callerID, quizID, rest[0]); err != nil {
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
		callerID, ok := h.requireUser(w, r)
		if !ok {
			return
		}
		var payload struct {
			Body     string `json:"body"`
			ParentID string `json:"parent_id"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		c, err := h.app.Quizzes.Comment(r.Context(), callerID, quizID, payload.ParentID, payload.Body)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusCreated, c)

	case http.MethodGet:
		viewerID := middleware.GetUserID(r.Context())
		comments, err := h.app.Quizzes.ListComments(r.Context(), viewerID, quizID, pageParams(r))
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, comments)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) quizLike(w http.ResponseWriter, r *http.Request, quizID string) {
	callerID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	var err error
	switch r.Method {
	case http.MethodPost:
		err = h.app.Quizzes.Like(r.Context(), callerID, quizID)
	case http.MethodDelete:
		err = h.app.Quizzes.Unlike(r.Context(), callerID, quizID)
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

func (h *handler) feed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	callerID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	quizzes, err := h.app.Quizzes.Feed(r.Context(), callerID, pageParams(r))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, quizzes)
}

func (h *handler) categories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	values, err := h.app.Taxonomy.Categories(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, values)
}

func (h *handler) tags(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	values, err := h.app.Taxonomy.Tags(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, values)
}

func truthy(v string) bool {
	return v == "1" || v == "true"
}
