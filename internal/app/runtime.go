package app

import (
	"context"
	"fmt"

	"github.com/affinity-search/affinity/internal/api"
	"github.com/affinity-search/affinity/internal/config"
	"github.com/affinity-search/affinity/internal/log"
)

// Runtime is a fully initialized application with its HTTP server wired.
// It encapsulates the common initialization shared by entry points.
type Runtime struct {
	App      *App
	Server   *api.Server
	Shutdown func() error
}

// NewRuntime initializes the application and builds the API server over it.
//
// Usage:
//
//	runtime, err := app.NewRuntime(ctx, cfg, logger)
//	if err != nil { ... }
//	defer runtime.Shutdown()
func NewRuntime(ctx context.Context, cfg *config.Config, logger log.Logger) (*Runtime, error) {
	application, err := Setup(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("initializing application: %w", err)
	}

	serverCfg := api.ServerConfig{
		Logger:      logger,
		History:     application.History,
		Builder:     application.Builder,
		Vectors:     application.Vectors,
		Translator:  application.Translator,
		Detector:    application.Detector,
		Generator:   application.Generator,
		Pinger:      application.Generator,
		TopK:        cfg.TopK,
		CORSOrigins: cfg.CORSOrigins,
	}
	if application.Synthesizer != nil {
		serverCfg.Synthesizer = application.Synthesizer
	}

	server, err := api.NewServer(serverCfg)
	if err != nil {
		if closeErr := application.Close(); closeErr != nil {
			logger.Warn("cleanup after server construction failure", "error", closeErr)
		}
		return nil, fmt.Errorf("building API server: %w", err)
	}

	return &Runtime{
		App:      application,
		Server:   server,
		Shutdown: application.Close,
	}, nil
}
