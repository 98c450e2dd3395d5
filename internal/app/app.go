// Package app assembles the application from its components.
//
// App is the container that owns every long-lived component: the history
// store, the persistent user-vector index, the translation service, the
// language detector and the Ollama-backed generator. Setup builds it from
// configuration; Close releases what Setup acquired.
package app

import (
	"github.com/gofrs/flock"

	"github.com/affinity-search/affinity/internal/answer"
	"github.com/affinity-search/affinity/internal/config"
	"github.com/affinity-search/affinity/internal/history"
	"github.com/affinity-search/affinity/internal/langcode"
	"github.com/affinity-search/affinity/internal/log"
	"github.com/affinity-search/affinity/internal/personalize"
	"github.com/affinity-search/affinity/internal/profile"
	"github.com/affinity-search/affinity/internal/speech"
	"github.com/affinity-search/affinity/internal/translate"
)

// App is the application container.
type App struct {
	Config *config.Config
	Logger log.Logger

	// Core services
	History     *history.Store
	Builder     *personalize.Builder
	Vectors     *profile.Store
	Translator  *translate.Service
	Detector    *translate.Detector
	Generator   *answer.Ollama
	Langs       *langcode.Table
	Synthesizer *speech.Synthesizer // nil unless speech.enabled

	// Lifecycle
	dataLock     *flock.Flock
	otelShutdown func()
}

// Close releases all resources acquired during Setup. Safe to call on a
// partially initialized App.
func (a *App) Close() error {
	if a.Logger != nil {
		a.Logger.Info("shutting down application")
	}

	if a.otelShutdown != nil {
		a.otelShutdown()
	}

	if a.dataLock != nil {
		if err := a.dataLock.Unlock(); err != nil {
			return err
		}
	}
	return nil
}
