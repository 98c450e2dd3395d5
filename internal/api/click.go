package api

import (
	"net/http"
	"time"

	"github.com/affinity-search/affinity/internal/history"
	"github.com/affinity-search/affinity/internal/log"
	"github.com/affinity-search/affinity/internal/profile"
)

// clickHandler records result clicks and refreshes the user's vector from
// the clicked text.
type clickHandler struct {
	logger  log.Logger
	history *history.Store
	vectors Vectors
}

type clickRequest struct {
	UserID      string `json:"user_id"`
	ResultID    string `json:"result_id"`
	ClickedText string `json:"clicked_text"`
}

// handle implements POST /click.
func (h *clickHandler) handle(w http.ResponseWriter, r *http.Request) {
	var req clickRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}
	if req.UserID == "" {
		req.UserID = anonymousUser
	}

	clickedText := req.ClickedText
	if clickedText == "" {
		clickedText = req.ResultID
	}

	timestamp := history.Timestamp(time.Now())

	err := h.vectors.Upsert(r.Context(), req.UserID, []string{clickedText}, profile.Metadata{
		Click:     true,
		Timestamp: timestamp,
	})
	if err != nil {
		h.logger.Warn("click vector upsert failed", "user_id", req.UserID, "error", err)
	}

	h.history.AppendClick(req.UserID, req.ResultID, timestamp)

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
