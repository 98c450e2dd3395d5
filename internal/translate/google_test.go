package translate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGoogleClient_Translate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/translate_a/single" {
			t.Errorf("path = %q, want /translate_a/single", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("client") != "gtx" || q.Get("sl") != "auto" || q.Get("tl") != "en" {
			t.Errorf("query = %v, want client=gtx sl=auto tl=en", q)
		}
		if q.Get("q") != "bonjour le monde" {
			t.Errorf("q = %q, want the input text", q.Get("q"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[[["hello ","bonjour ",null,null,1],["world","le monde",null,null,1]],null,"fr"]`))
	}))
	defer srv.Close()

	client := NewGoogleClient(srv.URL, 5*time.Second)

	got, err := client.Translate(context.Background(), "bonjour le monde", "auto", "en")
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if got.Text != "hello world" {
		t.Errorf("Text = %q, want %q", got.Text, "hello world")
	}
	if got.Source != "fr" {
		t.Errorf("Source = %q, want %q", got.Source, "fr")
	}
}

func TestGoogleClient_TranslateNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewGoogleClient(srv.URL, 5*time.Second)

	if _, err := client.Translate(context.Background(), "text", "auto", "en"); err == nil {
		t.Fatal("Translate() error = nil, want status error")
	}
}

func TestGoogleClient_TranslateMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"not":"an array"}`))
	}))
	defer srv.Close()

	client := NewGoogleClient(srv.URL, 5*time.Second)

	if _, err := client.Translate(context.Background(), "text", "auto", "en"); err == nil {
		t.Fatal("Translate() error = nil, want parse error")
	}
}

func TestParseGoogleResponse_SkipsNonStringChunks(t *testing.T) {
	got, err := parseGoogleResponse([]byte(`[[["ok","x",null,null,1],[null],[42]],null,"es"]`))
	if err != nil {
		t.Fatalf("parseGoogleResponse() error = %v", err)
	}
	if got.Text != "ok" || got.Source != "es" {
		t.Errorf("parseGoogleResponse() = %+v, want text=ok source=es", got)
	}
}
