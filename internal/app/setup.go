package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/philippgille/chromem-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/affinity-search/affinity/internal/answer"
	"github.com/affinity-search/affinity/internal/config"
	"github.com/affinity-search/affinity/internal/embed"
	"github.com/affinity-search/affinity/internal/history"
	"github.com/affinity-search/affinity/internal/langcode"
	"github.com/affinity-search/affinity/internal/log"
	"github.com/affinity-search/affinity/internal/personalize"
	"github.com/affinity-search/affinity/internal/profile"
	"github.com/affinity-search/affinity/internal/speech"
	"github.com/affinity-search/affinity/internal/translate"
)

// Setup creates and initializes the application.
// Returns an App with embedded cleanup — call Close() to release.
func Setup(ctx context.Context, cfg *config.Config, logger log.Logger) (_ *App, retErr error) {
	a := &App{Config: cfg, Logger: logger}

	// On error, release everything already acquired
	defer func() {
		if retErr != nil {
			if err := a.Close(); err != nil {
				logger.Warn("cleanup during setup failure", "error", err)
			}
		}
	}()

	a.otelShutdown = provideOtelShutdown(ctx, cfg, logger)

	lock, err := provideDataLock(cfg)
	if err != nil {
		return nil, err
	}
	a.dataLock = lock

	a.History = history.NewStore()
	a.Builder = personalize.NewBuilder(a.History)

	vectors, err := provideVectors(cfg, logger)
	if err != nil {
		return nil, err
	}
	a.Vectors = vectors

	a.Translator = provideTranslation(cfg, logger)
	a.Detector = translate.NewDetector()

	generator, err := answer.NewOllama(cfg.OllamaHost, cfg.ChatModel, cfg.OllamaTimeout, logger)
	if err != nil {
		return nil, fmt.Errorf("creating answer generator: %w", err)
	}
	a.Generator = generator

	langs, err := provideLangTable(cfg)
	if err != nil {
		return nil, err
	}
	a.Langs = langs

	if cfg.Speech.Enabled {
		synth, err := speech.NewSynthesizer(cfg.Speech.Dir, langs, logger)
		if err != nil {
			return nil, fmt.Errorf("creating speech synthesizer: %w", err)
		}
		a.Synthesizer = synth
	}

	return a, nil
}

// provideOtelShutdown sets up OTLP/HTTP trace export when enabled.
// Failure to reach the collector downgrades to a no-op rather than
// failing startup.
func provideOtelShutdown(ctx context.Context, cfg *config.Config, logger log.Logger) func() {
	if !cfg.Otel.Enabled {
		return func() {}
	}

	endpoint := cfg.Otel.Endpoint
	if endpoint == "" {
		endpoint = "localhost:4318"
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(), // local collector doesn't need TLS
	)
	if err != nil {
		logger.Warn("creating trace exporter, tracing disabled", "error", err)
		return func() {}
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", cfg.Otel.ServiceName),
		)),
	)
	otel.SetTracerProvider(tp)

	logger.Debug("tracing enabled", "endpoint", endpoint, "service", cfg.Otel.ServiceName)

	//nolint:contextcheck // Independent context: shutdown runs during teardown when parent is canceled
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutting down tracer provider", "error", err)
		}
	}
}

// provideDataLock creates the data directory and takes an exclusive lock
// on it. The persistent vector index has no internal locking, so a second
// instance over the same directory would corrupt it.
func provideDataLock(cfg *config.Config) (*flock.Flock, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	lock := flock.New(filepath.Join(cfg.DataDir, ".lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("locking data directory: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("data directory %s is locked by another instance", cfg.DataDir)
	}
	return lock, nil
}

// provideVectors opens the persistent user-vector index backed by the
// configured embedding model.
func provideVectors(cfg *config.Config, logger log.Logger) (*profile.Store, error) {
	embedder, err := embed.NewOllamaEmbedder(cfg.OllamaHost, cfg.EmbedModel, cfg.OllamaTimeout)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}

	db, err := chromem.NewPersistentDB(filepath.Join(cfg.DataDir, "vectors"), false)
	if err != nil {
		return nil, fmt.Errorf("opening vector index: %w", err)
	}

	store, err := profile.NewStore(db, embedder, logger)
	if err != nil {
		return nil, fmt.Errorf("creating vector store: %w", err)
	}

	logger.Debug("vector index opened",
		"dir", filepath.Join(cfg.DataDir, "vectors"),
		"profiles", store.Count(),
	)
	return store, nil
}

// provideTranslation builds the best-effort translation service over the
// configured endpoint.
func provideTranslation(cfg *config.Config, logger log.Logger) *translate.Service {
	client := translate.NewGoogleClient(cfg.TranslateEndpoint, cfg.TranslateTimeout)
	return translate.NewService(client, logger)
}

// provideLangTable loads the language-code table from the configured path,
// falling back to the built-in table.
func provideLangTable(cfg *config.Config) (*langcode.Table, error) {
	if cfg.LangTablePath == "" {
		return langcode.Default(), nil
	}
	table, err := langcode.Load(cfg.LangTablePath)
	if err != nil {
		return nil, fmt.Errorf("loading language table: %w", err)
	}
	return table, nil
}
