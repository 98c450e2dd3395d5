package api

import (
	"net/http"

	"github.com/affinity-search/affinity/internal/langcode"
	"github.com/affinity-search/affinity/internal/log"
)

// translateHandler exposes translation directly. Unlike the query
// pipeline, this endpoint surfaces provider failures to the client.
type translateHandler struct {
	logger     log.Logger
	translator Translation
}

type translateRequest struct {
	Text string `json:"text"`
	Dest string `json:"dest"`
}

// translate implements POST /translate. The source language is
// auto-detected by the provider.
func (h *translateHandler) translate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}
	if req.Dest == "" {
		req.Dest = "en"
	}

	translated, err := h.translator.Direct(r.Context(), req.Text, req.Dest)
	if err != nil {
		h.logger.Error("direct translation failed", "dest", req.Dest, "error", err)
		writeError(w, http.StatusInternalServerError, "translation_failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"translated_text": translated})
}

// languages implements GET /translate-langs.
func (h *translateHandler) languages(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]langcode.Language{
		"languages": langcode.Languages(),
	})
}
