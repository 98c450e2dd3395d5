package api

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/affinity-search/affinity/internal/answer"
	"github.com/affinity-search/affinity/internal/history"
	"github.com/affinity-search/affinity/internal/log"
	"github.com/affinity-search/affinity/internal/personalize"
	"github.com/affinity-search/affinity/internal/profile"
	"github.com/affinity-search/affinity/internal/translate"
)

// upsertCall records one Vectors.Upsert invocation.
type upsertCall struct {
	userID string
	texts  []string
	meta   profile.Metadata
}

// fakeVectors is an in-test Vectors implementation.
type fakeVectors struct {
	upserts   []upsertCall
	neighbors []profile.Neighbor
	upsertErr error
	queryErr  error
}

func (f *fakeVectors) Upsert(_ context.Context, userID string, texts []string, meta profile.Metadata) error {
	f.upserts = append(f.upserts, upsertCall{userID: userID, texts: texts, meta: meta})
	return f.upsertErr
}

func (f *fakeVectors) SimilarUsers(context.Context, string, int) ([]profile.Neighbor, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.neighbors, nil
}

// fakeTranslation translates by lookup table; missing entries pass
// through degraded, directErr fails Direct.
type fakeTranslation struct {
	toEnglish map[string]string
	back      map[string]string
	directErr error
}

func (f *fakeTranslation) ToEnglish(_ context.Context, text string) translate.Result {
	if out, ok := f.toEnglish[text]; ok {
		return translate.Result{Text: out, Source: "fr"}
	}
	return translate.Result{Text: text, Source: "en"}
}

func (f *fakeTranslation) ToLanguage(_ context.Context, text, target string) translate.Result {
	if out, ok := f.back[text]; ok {
		return translate.Result{Text: out, Source: "en"}
	}
	return translate.Result{Text: text, Degraded: true, Reason: "no translation for " + target}
}

func (f *fakeTranslation) Direct(_ context.Context, text, _ string) (string, error) {
	if f.directErr != nil {
		return "", f.directErr
	}
	if out, ok := f.toEnglish[text]; ok {
		return out, nil
	}
	return text, nil
}

// fakeDetector returns a fixed language code.
type fakeDetector struct {
	lang string
}

func (f *fakeDetector) Detect(string) string {
	if f.lang == "" {
		return "en"
	}
	return f.lang
}

// fakeGenerator records the prompt and answers from a canned result.
type fakeGenerator struct {
	result  answer.Result
	prompts []string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) answer.Result {
	f.prompts = append(f.prompts, prompt)
	if f.result.Text == "" {
		return answer.Result{Text: "a generated answer"}
	}
	return f.result
}

// fakeSynthesizer returns canned audio.
type fakeSynthesizer struct {
	audio string
	err   error
	calls int
}

func (f *fakeSynthesizer) SynthesizeBase64(string, string) (string, error) {
	f.calls++
	return f.audio, f.err
}

// fakePinger fails readiness with err when set.
type fakePinger struct {
	err error
}

func (f *fakePinger) Ping(context.Context) error {
	return f.err
}

// testEnv bundles a server with its fakes for assertions.
type testEnv struct {
	server     *Server
	history    *history.Store
	vectors    *fakeVectors
	translator *fakeTranslation
	detector   *fakeDetector
	generator  *fakeGenerator
}

// newTestEnv builds a server over fresh fakes; mutate applies test-specific
// overrides to the config before construction.
func newTestEnv(t *testing.T, mutate func(*ServerConfig)) *testEnv {
	t.Helper()

	env := &testEnv{
		history:    history.NewStore(),
		vectors:    &fakeVectors{},
		translator: &fakeTranslation{},
		detector:   &fakeDetector{},
		generator:  &fakeGenerator{},
	}

	cfg := ServerConfig{
		Logger:      log.NewNop(),
		History:     env.history,
		Builder:     personalize.NewBuilder(env.history),
		Vectors:     env.vectors,
		Translator:  env.translator,
		Detector:    env.detector,
		Generator:   env.generator,
		CORSOrigins: []string{"*"},
	}
	if mutate != nil {
		mutate(&cfg)
	}

	server, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	env.server = server
	return env
}

// do runs one request through the full middleware stack.
func (e *testEnv) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r = httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		r.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(w, r)
	return w
}

// decodeBody unmarshals a recorded JSON response body.
func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decoding response body %q: %v", w.Body.String(), err)
	}
	return out
}
