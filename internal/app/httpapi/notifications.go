package httpapi

import "net/http"

func (h *handler) notifications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	callerID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	unreadOnly := truthy(r.URL.Query().Get("unread"))
	list, err := h.app.Notifications.List(r.Context(), callerID, unreadOnly, pageParams(r))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *handler) notificationResources(w http.ResponseWriter, r *http.Request) {
	parts := segments(r.URL.Path, "/notifications")
	callerID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	switch {
	case len(parts) == 1 && parts[0] == "read-all":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if err := h.app.Notifications.MarkAllRead(r.Context(), callerID); err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	case len(parts) == 1 && parts[0] == "unread-count":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		count, err := h.app.Notifications.UnreadCount(r.Context(), callerID)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"count": count})

	case len(parts) == 2 && parts[1] == "read":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if err := h.app.Notifications.MarkRead(r.Context(), callerID, parts[0]); err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}
