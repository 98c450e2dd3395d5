// Package api provides the HTTP JSON API of the affinity backend.
//
// Endpoints:
//
//	POST /query            personalized query answering (core pipeline)
//	POST /click            click tracking + vector update
//	POST /preferences      overwrite a user's preferences
//	GET  /preferences      read a user's preferences
//	POST /translate        direct translation (sole error-surfacing path)
//	GET  /translate-langs  supported translation languages
//	GET  /                 liveness message
//	GET  /health           liveness probe
//	GET  /ready            readiness probe (pings the model server)
//
// File structure:
//   - server.go: server setup, routes, consumed interfaces
//   - middleware.go: recovery, request ID, logging, CORS
//   - query.go / click.go / preferences.go / translate.go / health.go
//   - response.go: JSON response helpers
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/affinity-search/affinity/internal/answer"
	"github.com/affinity-search/affinity/internal/history"
	"github.com/affinity-search/affinity/internal/log"
	"github.com/affinity-search/affinity/internal/personalize"
	"github.com/affinity-search/affinity/internal/profile"
	"github.com/affinity-search/affinity/internal/translate"
)

// Consumer-side interfaces for the pipeline's collaborators, so handlers
// can be tested against fakes.

// Detector guesses the language of a text.
type Detector interface {
	Detect(text string) string
}

// Translation is the best-effort translation service.
type Translation interface {
	ToEnglish(ctx context.Context, text string) translate.Result
	ToLanguage(ctx context.Context, text, target string) translate.Result
	Direct(ctx context.Context, text, dest string) (string, error)
}

// Generator produces an answer for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) answer.Result
}

// Vectors is the user-vector store.
type Vectors interface {
	Upsert(ctx context.Context, userID string, texts []string, meta profile.Metadata) error
	SimilarUsers(ctx context.Context, text string, topK int) ([]profile.Neighbor, error)
}

// Synthesizer renders an answer to base64 audio.
type Synthesizer interface {
	SynthesizeBase64(text, lang string) (string, error)
}

// Pinger reports whether the model server is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ServerConfig contains the collaborators of the API server.
type ServerConfig struct {
	Logger      log.Logger
	History     *history.Store       // Required
	Builder     *personalize.Builder // Required
	Vectors     Vectors              // Required
	Translator  Translation          // Required
	Detector    Detector             // Required
	Generator   Generator            // Required
	Synthesizer Synthesizer          // Optional: nil disables voice output
	Pinger      Pinger               // Optional: nil makes /ready always succeed
	TopK        int                  // Similar users per query; 0 = default 3
	CORSOrigins []string             // Allowed origins; "*" allows any
}

// Server is the JSON API HTTP server.
type Server struct {
	handler http.Handler
}

// NewServer creates the server with all routes registered and the
// middleware stack applied.
func NewServer(cfg ServerConfig) (*Server, error) {
	switch {
	case cfg.History == nil:
		return nil, errors.New("history store is required")
	case cfg.Builder == nil:
		return nil, errors.New("personalization builder is required")
	case cfg.Vectors == nil:
		return nil, errors.New("vector store is required")
	case cfg.Translator == nil:
		return nil, errors.New("translation service is required")
	case cfg.Detector == nil:
		return nil, errors.New("language detector is required")
	case cfg.Generator == nil:
		return nil, errors.New("answer generator is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNop()
	}

	topK := cfg.TopK
	if topK <= 0 {
		topK = 3
	}

	qh := &queryHandler{
		logger:      logger,
		history:     cfg.History,
		builder:     cfg.Builder,
		vectors:     cfg.Vectors,
		translator:  cfg.Translator,
		detector:    cfg.Detector,
		generator:   cfg.Generator,
		synthesizer: cfg.Synthesizer,
		topK:        topK,
	}
	ch := &clickHandler{logger: logger, history: cfg.History, vectors: cfg.Vectors}
	ph := &preferencesHandler{logger: logger, history: cfg.History}
	th := &translateHandler{logger: logger, translator: cfg.Translator}
	hh := &healthHandler{logger: logger, pinger: cfg.Pinger}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /query", qh.handle)
	mux.HandleFunc("POST /click", ch.handle)
	mux.HandleFunc("POST /preferences", ph.set)
	mux.HandleFunc("GET /preferences", ph.get)
	mux.HandleFunc("POST /translate", th.translate)
	mux.HandleFunc("GET /translate-langs", th.languages)
	mux.HandleFunc("GET /{$}", hh.root)
	mux.HandleFunc("GET /health", hh.liveness)
	mux.HandleFunc("GET /ready", hh.readiness)

	// Middleware stack (outermost first):
	//   Recovery → RequestID → Logging → CORS → Routes
	// RequestID runs before Logging so request_id appears in log lines.
	var handler http.Handler = mux
	handler = corsMiddleware(cfg.CORSOrigins)(handler)
	handler = loggingMiddleware(logger)(handler)
	handler = requestIDMiddleware()(handler)
	handler = recoveryMiddleware(logger)(handler)

	return &Server{handler: handler}, nil
}

// Handler returns the HTTP handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}
