package translate

import (
	"context"
	"errors"
	"testing"

	"github.com/affinity-search/affinity/internal/log"
)

// stubTranslator returns a fixed translation or a fixed error.
type stubTranslator struct {
	translation Translation
	err         error

	lastSource string
	lastTarget string
}

func (s *stubTranslator) Translate(_ context.Context, _, source, target string) (Translation, error) {
	s.lastSource = source
	s.lastTarget = target
	if s.err != nil {
		return Translation{}, s.err
	}
	return s.translation, nil
}

func TestService_ToEnglish(t *testing.T) {
	stub := &stubTranslator{translation: Translation{Text: "hello", Source: "fr"}}
	svc := NewService(stub, log.NewNop())

	got := svc.ToEnglish(context.Background(), "bonjour")

	if got.Degraded {
		t.Fatalf("ToEnglish degraded: %+v", got)
	}
	if got.Text != "hello" || got.Source != "fr" {
		t.Errorf("ToEnglish = %+v, want text=hello source=fr", got)
	}
	if stub.lastSource != "auto" || stub.lastTarget != "en" {
		t.Errorf("Translate called with (%q, %q), want (auto, en)", stub.lastSource, stub.lastTarget)
	}
}

func TestService_ToEnglish_DegradesOnError(t *testing.T) {
	stub := &stubTranslator{err: errors.New("endpoint down")}
	svc := NewService(stub, log.NewNop())

	got := svc.ToEnglish(context.Background(), "bonjour")

	if !got.Degraded {
		t.Fatal("ToEnglish not degraded on provider error")
	}
	if got.Text != "bonjour" {
		t.Errorf("degraded Text = %q, want the original %q", got.Text, "bonjour")
	}
	if got.Reason == "" {
		t.Error("degraded Reason is empty")
	}
}

func TestService_ToEnglish_EmptyText(t *testing.T) {
	stub := &stubTranslator{err: errors.New("must not be called")}
	svc := NewService(stub, log.NewNop())

	got := svc.ToEnglish(context.Background(), "")

	if got.Degraded || got.Text != "" {
		t.Errorf("ToEnglish(\"\") = %+v, want non-degraded empty result", got)
	}
}

func TestService_ToLanguage_DegradesOnError(t *testing.T) {
	stub := &stubTranslator{err: errors.New("endpoint down")}
	svc := NewService(stub, log.NewNop())

	got := svc.ToLanguage(context.Background(), "some answer", "fr")

	if !got.Degraded || got.Text != "some answer" {
		t.Errorf("ToLanguage = %+v, want degraded pass-through", got)
	}
}

func TestService_Direct_SurfacesError(t *testing.T) {
	stub := &stubTranslator{err: errors.New("endpoint down")}
	svc := NewService(stub, log.NewNop())

	if _, err := svc.Direct(context.Background(), "text", "de"); err == nil {
		t.Fatal("Direct() error = nil, want provider error")
	}
}

func TestService_Direct_Success(t *testing.T) {
	stub := &stubTranslator{translation: Translation{Text: "hallo", Source: "en"}}
	svc := NewService(stub, log.NewNop())

	got, err := svc.Direct(context.Background(), "hello", "de")
	if err != nil {
		t.Fatalf("Direct() error = %v", err)
	}
	if got != "hallo" {
		t.Errorf("Direct() = %q, want %q", got, "hallo")
	}
}
