// Package answer generates answers from a locally hosted language model.
//
// Generation is best-effort by contract: the request handler always needs
// a string to translate and return, so failures produce a sentinel answer
// in a degraded Result instead of an error.
package answer

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	ollama "github.com/ollama/ollama/api"

	"github.com/affinity-search/affinity/internal/log"
)

// Sentinel answers substituted on degraded generation.
const (
	emptyAnswer = "[No response from Ollama]"
	errorAnswer = "[Ollama error: %v]"
)

// Result is the outcome of a generation. Text is always non-empty; when
// Degraded is true it carries a sentinel instead of model output.
type Result struct {
	Text     string
	Degraded bool
	Reason   string
}

// Generator produces an answer for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) Result
}

// Ollama generates answers from a local Ollama server.
type Ollama struct {
	client  *ollama.Client
	model   string
	timeout time.Duration
	logger  log.Logger
}

// NewOllama creates a generator against host using model. Each Generate
// call is bounded by timeout. logger may be nil.
func NewOllama(host, model string, timeout time.Duration, logger log.Logger) (*Ollama, error) {
	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama host %q: %w", host, err)
	}
	if logger == nil {
		logger = log.NewNop()
	}

	return &Ollama{
		client:  ollama.NewClient(u, &http.Client{}),
		model:   model,
		timeout: timeout,
		logger:  logger,
	}, nil
}

// Generate implements Generator. The streamed response fragments are
// accumulated into one answer string.
func (o *Ollama) Generate(ctx context.Context, prompt string) Result {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	var text strings.Builder
	req := &ollama.GenerateRequest{
		Model:  o.model,
		Prompt: prompt,
	}

	err := o.client.Generate(ctx, req, func(gr ollama.GenerateResponse) error {
		if gr.Response != "" {
			text.WriteString(gr.Response)
		}
		return nil
	})
	if err != nil {
		o.logger.Warn("answer generation failed", "model", o.model, "error", err)
		return Result{
			Text:     fmt.Sprintf(errorAnswer, err),
			Degraded: true,
			Reason:   err.Error(),
		}
	}

	if text.Len() == 0 {
		return Result{Text: emptyAnswer, Degraded: true, Reason: "empty model output"}
	}
	return Result{Text: text.String()}
}

// Ping checks that the Ollama server is reachable. Used by the readiness
// probe.
func (o *Ollama) Ping(ctx context.Context) error {
	if _, err := o.client.Version(ctx); err != nil {
		return fmt.Errorf("pinging Ollama: %w", err)
	}
	return nil
}
