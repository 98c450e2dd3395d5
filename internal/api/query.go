package api

import (
	"net/http"
	"time"

	"github.com/affinity-search/affinity/internal/history"
	"github.com/affinity-search/affinity/internal/log"
	"github.com/affinity-search/affinity/internal/personalize"
	"github.com/affinity-search/affinity/internal/profile"
)

// anonymousUser is the fallback identity for requests without a user_id.
const anonymousUser = "anonymous"

// queryHandler runs the core personalization pipeline. Every collaborator
// failure after request decoding degrades the response instead of failing
// it: the pipeline always produces an answer string.
type queryHandler struct {
	logger      log.Logger
	history     *history.Store
	builder     *personalize.Builder
	vectors     Vectors
	translator  Translation
	detector    Detector
	generator   Generator
	synthesizer Synthesizer
	topK        int
}

type queryRequest struct {
	UserID    string `json:"user_id"`
	Query     string `json:"query"`
	SessionID string `json:"session_id"`
	Location  string `json:"location"`
}

type queryResponse struct {
	Answer          string                `json:"answer"`
	OriginalQuery   string                `json:"original_query"`
	TranslatedQuery string                `json:"translated_query"`
	UserHistory     []history.SearchEntry `json:"user_history"`
	AudioBase64     string                `json:"audio_base64,omitempty"`
}

// handle implements POST /query.
func (h *queryHandler) handle(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}
	if req.UserID == "" {
		req.UserID = anonymousUser
	}

	ctx := r.Context()
	timestamp := history.Timestamp(time.Now())

	sourceLang := h.detector.Detect(req.Query)

	translated := h.translator.ToEnglish(ctx, req.Query)
	if translated.Degraded {
		h.logger.Warn("query translation degraded, using raw query",
			"user_id", req.UserID, "reason", translated.Reason)
	}

	// The current query joins the user's history before the prompt is
	// built, so it appears in their own recent window.
	h.history.AppendSearch(req.UserID, req.Query, timestamp, req.Location)

	// History append and vector upsert are independent; a failure here
	// leaves them out of sync, which the data model accepts.
	err := h.vectors.Upsert(ctx, req.UserID, []string{translated.Text}, profile.Metadata{
		Location:  req.Location,
		Timestamp: timestamp,
	})
	if err != nil {
		h.logger.Warn("user vector upsert failed", "user_id", req.UserID, "error", err)
	}

	var similarIDs []string
	neighbors, err := h.vectors.SimilarUsers(ctx, translated.Text, h.topK)
	if err != nil {
		h.logger.Warn("similar-user lookup failed, answering without cross-user context",
			"user_id", req.UserID, "error", err)
	}
	for _, n := range neighbors {
		similarIDs = append(similarIDs, n.UserID)
	}

	prompt := h.builder.Prompt(req.UserID, translated.Text, similarIDs)

	generated := h.generator.Generate(ctx, prompt)
	if generated.Degraded {
		h.logger.Warn("answer generation degraded",
			"user_id", req.UserID, "reason", generated.Reason)
	}

	finalAnswer := generated.Text
	if sourceLang != "en" {
		back := h.translator.ToLanguage(ctx, generated.Text, sourceLang)
		if back.Degraded {
			h.logger.Warn("back-translation degraded, returning untranslated answer",
				"user_id", req.UserID, "target", sourceLang, "reason", back.Reason)
		}
		finalAnswer = back.Text
	}

	resp := queryResponse{
		Answer:          finalAnswer,
		OriginalQuery:   req.Query,
		TranslatedQuery: translated.Text,
		UserHistory:     h.history.Searches(req.UserID),
	}

	if h.synthesizer != nil {
		audio, err := h.synthesizer.SynthesizeBase64(finalAnswer, sourceLang)
		if err != nil {
			h.logger.Warn("speech synthesis failed, omitting audio",
				"user_id", req.UserID, "lang", sourceLang, "error", err)
		} else {
			resp.AudioBase64 = audio
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
