package api

import (
	"net/http"

	"github.com/affinity-search/affinity/internal/history"
	"github.com/affinity-search/affinity/internal/log"
)

// preferencesHandler stores and reads per-user preference mappings.
type preferencesHandler struct {
	logger  log.Logger
	history *history.Store
}

type setPreferencesRequest struct {
	UserID      string         `json:"user_id"`
	Preferences map[string]any `json:"preferences"`
}

// set implements POST /preferences: the mapping is overwritten, not merged.
func (h *preferencesHandler) set(w http.ResponseWriter, r *http.Request) {
	var req setPreferencesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}
	if req.UserID == "" {
		req.UserID = anonymousUser
	}
	if req.Preferences == nil {
		req.Preferences = map[string]any{}
	}

	h.history.SetPreferences(req.UserID, req.Preferences)

	writeJSON(w, http.StatusOK, map[string]string{"status": "preferences saved"})
}

// get implements GET /preferences?user_id=... Unknown users read as empty.
func (h *preferencesHandler) get(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		userID = anonymousUser
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"preferences": h.history.Preferences(userID),
	})
}
