package api

import (
	"net/http"
	"testing"
)

func TestPreferences_RoundTrip(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodPost, "/preferences", `{"user_id":"u1","preferences":{"x":1}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("set status = %d, want 200", w.Code)
	}
	if body := decodeBody[map[string]string](t, w); body["status"] != "preferences saved" {
		t.Errorf("status field = %q, want %q", body["status"], "preferences saved")
	}

	w = env.do(t, http.MethodGet, "/preferences?user_id=u1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d, want 200", w.Code)
	}
	got := decodeBody[map[string]map[string]any](t, w)
	if got["preferences"]["x"] != float64(1) {
		t.Errorf("preferences = %v, want x=1", got["preferences"])
	}
}

func TestPreferences_OverwriteNotMerge(t *testing.T) {
	env := newTestEnv(t, nil)

	env.do(t, http.MethodPost, "/preferences", `{"user_id":"u1","preferences":{"x":1}}`)
	env.do(t, http.MethodPost, "/preferences", `{"user_id":"u1","preferences":{"y":2}}`)

	w := env.do(t, http.MethodGet, "/preferences?user_id=u1", "")
	got := decodeBody[map[string]map[string]any](t, w)
	if _, ok := got["preferences"]["x"]; ok {
		t.Errorf("preferences = %v, want x gone after overwrite", got["preferences"])
	}
}

func TestPreferences_UnknownUserReadsEmpty(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodGet, "/preferences?user_id=stranger", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	got := decodeBody[map[string]map[string]any](t, w)
	if got["preferences"] == nil || len(got["preferences"]) != 0 {
		t.Errorf("preferences = %v, want empty non-null mapping", got["preferences"])
	}
}

func TestPreferences_MissingUserIDDefaultsToAnonymous(t *testing.T) {
	env := newTestEnv(t, nil)

	env.do(t, http.MethodPost, "/preferences", `{"preferences":{"theme":"dark"}}`)

	if got := env.history.Preferences("anonymous"); got["theme"] != "dark" {
		t.Errorf("Preferences(anonymous) = %v, want theme=dark", got)
	}
}

func TestPreferences_InvalidBody(t *testing.T) {
	env := newTestEnv(t, nil)

	if w := env.do(t, http.MethodPost, "/preferences", `[`); w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}
