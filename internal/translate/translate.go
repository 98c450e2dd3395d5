// Package translate provides the translation service and language
// detection used by the query pipeline.
//
// The pipeline never fails a request because translation failed: ToEnglish
// and ToLanguage return an explicit degraded Result carrying the original
// text instead of an error. Only Direct, backing the translate endpoint,
// surfaces provider errors to the caller.
package translate

import (
	"context"

	"github.com/affinity-search/affinity/internal/log"
)

// Translation is a provider response: the translated text plus the source
// language the provider detected.
type Translation struct {
	Text   string
	Source string
}

// Translator is the external translation provider. source may be "auto".
type Translator interface {
	Translate(ctx context.Context, text, source, target string) (Translation, error)
}

// Result is the outcome of a best-effort translation. When Degraded is
// true, Text carries the untranslated input and Reason says why.
type Result struct {
	Text     string
	Source   string
	Degraded bool
	Reason   string
}

// Service wraps a Translator with the pipeline's degradation policy.
type Service struct {
	translator Translator
	logger     log.Logger
}

// NewService creates a Service. logger may be nil.
func NewService(translator Translator, logger log.Logger) *Service {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Service{translator: translator, logger: logger}
}

// ToEnglish translates text into English with automatic source detection.
// On provider failure the original text is passed through, degraded.
func (s *Service) ToEnglish(ctx context.Context, text string) Result {
	return s.translate(ctx, text, "auto", "en")
}

// ToLanguage translates English text into target. On provider failure the
// untranslated text is passed through, degraded.
func (s *Service) ToLanguage(ctx context.Context, text, target string) Result {
	return s.translate(ctx, text, "en", target)
}

func (s *Service) translate(ctx context.Context, text, source, target string) Result {
	if text == "" {
		return Result{Text: "", Source: source}
	}

	tr, err := s.translator.Translate(ctx, text, source, target)
	if err != nil {
		s.logger.Warn("translation failed, passing text through",
			"source", source, "target", target, "error", err)
		return Result{Text: text, Degraded: true, Reason: err.Error()}
	}
	return Result{Text: tr.Text, Source: tr.Source}
}

// Direct translates text to dest with automatic source detection and
// returns the provider error as-is. Used by the translate endpoint, which
// is the one surface that reports failures to the client.
func (s *Service) Direct(ctx context.Context, text, dest string) (string, error) {
	tr, err := s.translator.Translate(ctx, text, "auto", dest)
	if err != nil {
		return "", err
	}
	return tr.Text, nil
}
