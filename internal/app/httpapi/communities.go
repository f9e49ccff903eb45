package httpapi

import (
	"net/http"

	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/domain/community"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/middleware"
)

func (h *handler) communities(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		callerID, ok := h.requireUser(w, r)
		if !ok {
			return
		}
		var payload community.Community
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		created, err := h.app.Communities.Create(r.Context(), callerID, payload)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusCreated, created)

	case http.MethodGet:
		callerID := middleware.GetUserID(r.Context())
		list, err := h.app.Communities.List(r.Context(), callerID, pageParams(r))
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, list)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) communityResources(w http.ResponseWriter, r *http.Request) {
	parts := segments(r.URL.Path, "/communities")
	if len(parts) == 0 {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	communityID := parts[0]

	if len(parts) == 1 {
		h.communityByID(w, r, communityID)
		return
	}

	switch parts[1] {
	case "join":
		h.communityMembership(w, r, communityID, true)
	case "leave":
		h.communityMembership(w, r, communityID, false)
	case "members":
		h.communityMembers(w, r, communityID, parts[2:])
	case "invitations":
		h.communityInvite(w, r, communityID)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *handler) communityByID(w http.ResponseWriter, r *http.Request, communityID string) {
	switch r.Method {
	case http.MethodGet:
		c, err := h.app.Communities.Get(r.Context(), communityID)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, c)

	case http.MethodPatch:
		callerID, ok := h.requireUser(w, r)
		if !ok {
			return
		}
		var payload community.Community
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		payload.ID = communityID
		updated, err := h.app.Communities.Update(r.Context(), callerID, payload)
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
		if err := h.app.Communities.Delete(r.Context(), callerID, communityID); err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) communityMembership(w http.ResponseWriter, r *http.Request, communityID string, join bool) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	callerID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	var err error
	if join {
		err = h.app.Communities.Join(r.Context(), callerID, communityID)
	} else {
		err = h.app.Communities.Leave(r.Context(), callerID, communityID)
	}
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) communityMembers(w http.ResponseWriter, r *http.Request, communityID string, rest []string) {
	callerID := middleware.GetUserID(r.Context())

	if len(rest) == 0 {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		members, err := h.app.Communities.Members(r.Context(), callerID, communityID, pageParams(r))
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, members)
		return
	}
	if len(rest) != 1 {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	memberID := rest[0]

	caller, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodPatch:
		var payload struct {
			Role community.Role `json:"role"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := h.app.Communities.SetRole(r.Context(), caller, communityID, memberID, payload.Role); err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	case http.MethodDelete:
		if err := h.app.Communities.RemoveMember(r.Context(), caller, communityID, memberID); err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) communityInvite(w http.ResponseWriter, r *http.Request, communityID string) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	callerID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	var payload struct {
		InviteeID string `json:"invitee_id"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	inv, err := h.app.Communities.Invite(r.Context(), callerID, communityID, payload.InviteeID)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, inv)
}

func (h *handler) invitations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	callerID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	invs, err := h.app.Communities.Invitations(r.Context(), callerID)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, invs)
}

func (h *handler) invitationResources(w http.ResponseWriter, r *http.Request) {
	parts := segments(r.URL.Path, "/invitations")
	if len(parts) != 2 {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	callerID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	var err error
	switch parts[1] {
	case "accept":
		err = h.app.Communities.Accept(r.Context(), callerID, parts[0])
	case "decline":
		err = h.app.Communities.Decline(r.Context(), callerID, parts[0])
	default:
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
