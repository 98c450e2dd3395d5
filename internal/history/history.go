// Package history implements the in-process user history store.
//
// The store maps a user ID to that user's search history, click history,
// and preferences. Records are created lazily on first touch and live for
// the process lifetime; nothing here is durable across restarts. The
// matching user vectors live in the profile package, and the two are
// deliberately not transactional with each other.
package history

import (
	"sync"
	"time"
)

// SearchEntry is one recorded query. Immutable once appended.
type SearchEntry struct {
	Query     string `json:"query"`
	Timestamp string `json:"timestamp"`
	Location  string `json:"location,omitempty"`
}

// ClickEntry is one recorded result click. Immutable once appended.
type ClickEntry struct {
	ResultID  string `json:"result_id"`
	Timestamp string `json:"timestamp"`
}

// record is the per-user state. Guarded by Store.mu.
type record struct {
	searches    []SearchEntry
	clicks      []ClickEntry
	preferences map[string]any
}

// Store is a process-wide mapping from user ID to history and preferences.
// It is safe for concurrent use: every operation holds the store mutex, so
// individual appends and reads are serialized. Sequences of operations
// from concurrent requests may still interleave.
type Store struct {
	mu    sync.RWMutex
	users map[string]*record
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{users: make(map[string]*record)}
}

// Timestamp formats t the way history entries record time.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// touch returns the record for userID, creating it if needed.
// Callers must hold mu for writing.
func (s *Store) touch(userID string) *record {
	r, ok := s.users[userID]
	if !ok {
		r = &record{}
		s.users[userID] = r
	}
	return r
}

// AppendSearch records a query for userID. Unknown users are created.
func (s *Store) AppendSearch(userID, query, timestamp, location string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.touch(userID)
	r.searches = append(r.searches, SearchEntry{
		Query:     query,
		Timestamp: timestamp,
		Location:  location,
	})
}

// AppendClick records a result click for userID. Unknown users are created.
func (s *Store) AppendClick(userID, resultID, timestamp string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.touch(userID)
	r.clicks = append(r.clicks, ClickEntry{ResultID: resultID, Timestamp: timestamp})
}

// SetPreferences replaces the preferences mapping for userID.
func (s *Store) SetPreferences(userID string, prefs map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.touch(userID)
	r.preferences = prefs
}

// Preferences returns a copy of the preferences for userID. Unknown users
// read as an empty, non-nil mapping.
func (s *Store) Preferences(userID string) map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.users[userID]
	if !ok || r.preferences == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(r.preferences))
	for k, v := range r.preferences {
		out[k] = v
	}
	return out
}

// Searches returns a copy of the search history for userID in append
// order. Unknown users read as an empty, non-nil slice.
func (s *Store) Searches(userID string) []SearchEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.users[userID]
	if !ok {
		return []SearchEntry{}
	}
	out := make([]SearchEntry, len(r.searches))
	copy(out, r.searches)
	return out
}

// Clicks returns a copy of the click history for userID in append order.
func (s *Store) Clicks(userID string) []ClickEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.users[userID]
	if !ok {
		return []ClickEntry{}
	}
	out := make([]ClickEntry, len(r.clicks))
	copy(out, r.clicks)
	return out
}

// RecentQueries returns the query strings of the last n search entries for
// userID, oldest first. Fewer are returned when the history is shorter.
func (s *Store) RecentQueries(userID string, n int) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.users[userID]
	if !ok || n <= 0 {
		return nil
	}
	entries := r.searches
	if len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Query
	}
	return out
}
