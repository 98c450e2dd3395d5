package embed

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"
)

func TestMean(t *testing.T) {
	tests := []struct {
		name    string
		vectors [][]float32
		want    []float32
	}{
		{"single", [][]float32{{1, 2, 3}}, []float32{1, 2, 3}},
		{"two", [][]float32{{1, 2}, {3, 4}}, []float32{2, 3}},
		{"skips empty", [][]float32{{2, 4}, nil}, []float32{2, 4}},
		{"skips mismatched dimension", [][]float32{{2, 4}, {1, 1, 1}}, []float32{2, 4}},
		{"empty batch", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Mean(tt.vectors); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Mean(%v) = %v, want %v", tt.vectors, got, tt.want)
			}
		})
	}
}

func TestMean_DoesNotMutateInput(t *testing.T) {
	a := []float32{1, 2}
	b := []float32{3, 4}

	Mean([][]float32{a, b})

	if a[0] != 1 || b[0] != 3 {
		t.Errorf("inputs mutated: a=%v b=%v", a, b)
	}
}

func TestOllamaEmbedder_Embed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			t.Errorf("path = %q, want /api/embed", r.URL.Path)
		}
		var req struct {
			Model string `json:"model"`
			Input any    `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding embed request: %v", err)
		}
		if req.Model != "nomic-embed-text" {
			t.Errorf("model = %q, want nomic-embed-text", req.Model)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"model":      req.Model,
			"embeddings": [][]float32{{0.25, 0.5, 0.75}},
		})
	}))
	defer srv.Close()

	e, err := NewOllamaEmbedder(srv.URL, "nomic-embed-text", 5*time.Second)
	if err != nil {
		t.Fatalf("NewOllamaEmbedder() error = %v", err)
	}

	vec, err := e.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	want := []float32{0.25, 0.5, 0.75}
	for i := range want {
		if math.Abs(float64(vec[i]-want[i])) > 1e-6 {
			t.Fatalf("Embed() = %v, want %v", vec, want)
		}
	}
}

func TestOllamaEmbedder_EmptyEmbedding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"embeddings": [][]float32{}})
	}))
	defer srv.Close()

	e, err := NewOllamaEmbedder(srv.URL, "nomic-embed-text", 5*time.Second)
	if err != nil {
		t.Fatalf("NewOllamaEmbedder() error = %v", err)
	}

	if _, err := e.Embed(context.Background(), "hello"); !errors.Is(err, ErrEmptyEmbedding) {
		t.Fatalf("Embed() error = %v, want ErrEmptyEmbedding", err)
	}
}

func TestOllamaEmbedder_ServerDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	e, err := NewOllamaEmbedder(srv.URL, "nomic-embed-text", time.Second)
	if err != nil {
		t.Fatalf("NewOllamaEmbedder() error = %v", err)
	}

	if _, err := e.Embed(context.Background(), "hello"); err == nil {
		t.Fatal("Embed() error = nil, want transport error")
	}
}
