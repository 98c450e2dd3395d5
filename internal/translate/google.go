package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxResponseBytes bounds the translation response body read into memory.
const maxResponseBytes = 1 << 20

// GoogleClient talks to the unauthenticated Google translate endpoint
// (the same wire protocol the gtx web client uses). The base URL is
// injectable so tests can point it at a local server.
type GoogleClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewGoogleClient creates a client against baseURL,
// e.g. "https://translate.googleapis.com".
func NewGoogleClient(baseURL string, timeout time.Duration) *GoogleClient {
	return &GoogleClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Translate implements Translator.
func (c *GoogleClient) Translate(ctx context.Context, text, source, target string) (Translation, error) {
	if source == "" {
		source = "auto"
	}

	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", source)
	q.Set("tl", target)
	q.Set("dt", "t")
	q.Set("q", text)

	endpoint := c.baseURL + "/translate_a/single?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Translation{}, fmt.Errorf("building translate request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Translation{}, fmt.Errorf("calling translate endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Translation{}, fmt.Errorf("translate endpoint returned %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Translation{}, fmt.Errorf("reading translate response: %w", err)
	}

	return parseGoogleResponse(body)
}

// parseGoogleResponse decodes the endpoint's nested-array payload:
// element 0 is a list of sentence chunks whose first field is the
// translated text, element 2 is the detected source language.
func parseGoogleResponse(body []byte) (Translation, error) {
	var raw []any
	if err := json.Unmarshal(body, &raw); err != nil {
		return Translation{}, fmt.Errorf("decoding translate response: %w", err)
	}
	if len(raw) == 0 {
		return Translation{}, fmt.Errorf("empty translate response")
	}

	chunks, ok := raw[0].([]any)
	if !ok {
		return Translation{}, fmt.Errorf("unexpected translate response shape")
	}

	var b strings.Builder
	for _, chunk := range chunks {
		parts, ok := chunk.([]any)
		if !ok || len(parts) == 0 {
			continue
		}
		if s, ok := parts[0].(string); ok {
			b.WriteString(s)
		}
	}

	var detected string
	if len(raw) > 2 {
		if s, ok := raw[2].(string); ok {
			detected = s
		}
	}

	return Translation{Text: b.String(), Source: detected}, nil
}
