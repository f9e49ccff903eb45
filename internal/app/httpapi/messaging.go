package httpapi

import (
	"fmt"
	"net/http"
	"time"
)

func (h *handler) conversations(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodPost:
		var payload struct {
			PeerID string `json:"peer_id"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		conv, err := h.app.Messaging.Start(r.Context(), callerID, payload.PeerID)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusCreated, conv)

	case http.MethodGet:
		convs, err := h.app.Messaging.Conversations(r.Context(), callerID, pageParams(r))
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, convs)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) conversationResources(w http.ResponseWriter, r *http.Request) {
	parts := segments(r.URL.Path, "/conversations")
	if len(parts) != 2 {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	callerID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	conversationID := parts[0]

	switch parts[1] {
	case "messages":
		h.conversationMessages(w, r, callerID, conversationID)
	case "read":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if err := h.app.Messaging.MarkRead(r.Context(), callerID, conversationID); err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *handler) conversationMessages(w http.ResponseWriter, r *http.Request, callerID, conversationID string) {
	switch r.Method {
	case http.MethodPost:
		var payload struct {
			Body string `json:"body"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		msg, err := h.app.Messaging.Send(r.Context(), callerID, conversationID, payload.Body)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusCreated, msg)

	case http.MethodGet:
		// since= polls for messages newer than a known timestamp; otherwise
		// the history is paginated oldest-first.
		if raw := r.URL.Query().Get("since"); raw != "" {
			since, err := time.Parse(time.RFC3339Nano, raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, fmt.Errorf("since must be an RFC3339 timestamp"))
				return
			}
			msgs, err := h.app.Messaging.MessagesSince(r.Context(), callerID, conversationID, since)
			if err != nil {
				writeError(w, statusFor(err), err)
				return
			}
			writeJSON(w, http.StatusOK, msgs)
			return
		}

		msgs, err := h.app.Messaging.Messages(r.Context(), callerID, conversationID, pageParams(r))
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, msgs)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
