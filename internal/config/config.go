// Package config provides application configuration with multi-source
// priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (AFFINITY_* — runtime override)
//  2. Config file (./config.yaml or ~/.affinity/config.yaml)
//  3. Default values
//
// Validation is fail-fast: Load returns an error the moment a value is out
// of range, wrapped around a sentinel error for errors.Is checks.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var (
	// ErrInvalidServerAddr indicates the HTTP listen address is malformed.
	ErrInvalidServerAddr = errors.New("invalid server address")

	// ErrInvalidOllamaHost indicates the Ollama host is not a valid URL.
	ErrInvalidOllamaHost = errors.New("invalid Ollama host")

	// ErrInvalidModel indicates a model name is empty.
	ErrInvalidModel = errors.New("invalid model name")

	// ErrInvalidTopK indicates the similar-user top-K is out of range.
	ErrInvalidTopK = errors.New("invalid top_k")

	// ErrInvalidTimeout indicates a timeout is zero or negative.
	ErrInvalidTimeout = errors.New("invalid timeout")

	// ErrInvalidTranslateEndpoint indicates the translation endpoint is
	// not a valid URL.
	ErrInvalidTranslateEndpoint = errors.New("invalid translate endpoint")

	// ErrInvalidDataDir indicates the data directory is empty.
	ErrInvalidDataDir = errors.New("invalid data directory")
)

const (
	// MaxTopK bounds the nearest-neighbor fan-out; anything larger just
	// pads the prompt with noise.
	MaxTopK = 20

	// DefaultChatModel is the local model used for answer generation.
	DefaultChatModel = "mistral"

	// DefaultEmbedModel is the local model used for embeddings.
	DefaultEmbedModel = "nomic-embed-text"
)

// Otel configures optional OTLP/HTTP trace export.
type Otel struct {
	// Enabled turns trace export on. Default: false.
	Enabled bool `mapstructure:"enabled"`

	// Endpoint is the OTLP/HTTP collector address (host:port).
	Endpoint string `mapstructure:"endpoint"`

	// ServiceName is reported as service.name. Default: "affinity".
	ServiceName string `mapstructure:"service_name"`
}

// Speech configures the voice-output path.
type Speech struct {
	// Enabled turns answer synthesis on. Default: false.
	Enabled bool `mapstructure:"enabled"`

	// Dir is the scratch directory for synthesized audio files.
	Dir string `mapstructure:"dir"`
}

// Config is the application configuration.
type Config struct {
	// ServerAddr is the HTTP listen address.
	ServerAddr string `mapstructure:"server_addr"`

	// CORSOrigins lists origins allowed by CORS. "*" allows any origin.
	CORSOrigins []string `mapstructure:"cors_origins"`

	// OllamaHost is the base URL of the local Ollama server.
	OllamaHost string `mapstructure:"ollama_host"`

	// ChatModel is the Ollama model for answer generation.
	ChatModel string `mapstructure:"chat_model"`

	// EmbedModel is the Ollama model for embeddings.
	EmbedModel string `mapstructure:"embed_model"`

	// OllamaTimeout bounds a single generate or embed call.
	OllamaTimeout time.Duration `mapstructure:"ollama_timeout"`

	// DataDir holds the persistent user-vector index and the lock file.
	DataDir string `mapstructure:"data_dir"`

	// TopK is the number of similar users fetched per query.
	TopK int `mapstructure:"top_k"`

	// TranslateEndpoint is the base URL of the translation endpoint.
	TranslateEndpoint string `mapstructure:"translate_endpoint"`

	// TranslateTimeout bounds a single translation call.
	TranslateTimeout time.Duration `mapstructure:"translate_timeout"`

	// LangTablePath optionally points at a YAML language-code table that
	// replaces the built-in one. Empty means use the default table.
	LangTablePath string `mapstructure:"lang_table_path"`

	Speech Speech `mapstructure:"speech"`
	Otel   Otel   `mapstructure:"otel"`
}

// Load reads configuration from defaults, an optional config file, and
// AFFINITY_* environment variables, then validates it.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".affinity"))
	}

	setDefaults(v)

	v.SetEnvPrefix("AFFINITY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults and env apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server_addr", "127.0.0.1:5000")
	v.SetDefault("cors_origins", []string{"*"})
	v.SetDefault("ollama_host", "http://localhost:11434")
	v.SetDefault("chat_model", DefaultChatModel)
	v.SetDefault("embed_model", DefaultEmbedModel)
	v.SetDefault("ollama_timeout", "60s")
	v.SetDefault("data_dir", "data")
	v.SetDefault("top_k", 3)
	v.SetDefault("translate_endpoint", "https://translate.googleapis.com")
	v.SetDefault("translate_timeout", "15s")
	v.SetDefault("lang_table_path", "")
	v.SetDefault("speech.enabled", false)
	v.SetDefault("speech.dir", "")
	v.SetDefault("otel.enabled", false)
	v.SetDefault("otel.endpoint", "localhost:4318")
	v.SetDefault("otel.service_name", "affinity")
}

// Validate checks the configuration and returns the first violation found.
func (c *Config) Validate() error {
	if c.ServerAddr == "" || !strings.Contains(c.ServerAddr, ":") {
		return fmt.Errorf("%w: %q (want host:port)", ErrInvalidServerAddr, c.ServerAddr)
	}
	if err := validateURL(c.OllamaHost); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidOllamaHost, c.OllamaHost)
	}
	if c.ChatModel == "" {
		return fmt.Errorf("%w: chat_model is empty", ErrInvalidModel)
	}
	if c.EmbedModel == "" {
		return fmt.Errorf("%w: embed_model is empty", ErrInvalidModel)
	}
	if c.OllamaTimeout <= 0 {
		return fmt.Errorf("%w: ollama_timeout = %v", ErrInvalidTimeout, c.OllamaTimeout)
	}
	if c.TranslateTimeout <= 0 {
		return fmt.Errorf("%w: translate_timeout = %v", ErrInvalidTimeout, c.TranslateTimeout)
	}
	if c.TopK < 1 || c.TopK > MaxTopK {
		return fmt.Errorf("%w: %d (want 1..%d)", ErrInvalidTopK, c.TopK, MaxTopK)
	}
	if err := validateURL(c.TranslateEndpoint); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidTranslateEndpoint, c.TranslateEndpoint)
	}
	if c.DataDir == "" {
		return ErrInvalidDataDir
	}
	return nil
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	return nil
}
