// Package personalize assembles the prompt sent to the answer generator.
//
// The prompt is built from the requesting user's own recent queries plus
// the recent queries of users whose vectors are nearest to the current
// query. The builder is a pure read over the history store: the handler
// appends the current query to the user's history before this runs, so
// the query itself already appears in the user's recent window.
package personalize

import (
	"strconv"
	"strings"

	"github.com/affinity-search/affinity/internal/history"
)

// Window defaults, matching the original pipeline.
const (
	// DefaultOwnWindow is how many of the user's own queries are quoted.
	DefaultOwnWindow = 3

	// DefaultSimilarWindow is how many queries each similar user
	// contributes.
	DefaultSimilarWindow = 2
)

// Builder constructs prompts from history. Deterministic: identical store
// contents and identical neighbor lists produce identical prompts.
type Builder struct {
	store         *history.Store
	ownWindow     int
	similarWindow int
}

// NewBuilder creates a Builder over store with the default windows.
func NewBuilder(store *history.Store) *Builder {
	return &Builder{
		store:         store,
		ownWindow:     DefaultOwnWindow,
		similarWindow: DefaultSimilarWindow,
	}
}

// SimilarQueries flattens the recent queries of the given users, in the
// order the user IDs were handed in. Users with no history contribute
// nothing; the requesting user is not excluded if present.
func (b *Builder) SimilarQueries(similarUserIDs []string) []string {
	var queries []string
	for _, id := range similarUserIDs {
		queries = append(queries, b.store.RecentQueries(id, b.similarWindow)...)
	}
	return queries
}

// Prompt builds the generation prompt for userID asking translatedQuery,
// given the neighbor user IDs from the vector store. When no similar
// queries exist, the cross-user clause is omitted entirely.
func (b *Builder) Prompt(userID, translatedQuery string, similarUserIDs []string) string {
	var sb strings.Builder

	sb.WriteString("User's recent queries: ")
	sb.WriteString(renderList(b.store.RecentQueries(userID, b.ownWindow)))
	sb.WriteString(". ")

	if similar := b.SimilarQueries(similarUserIDs); len(similar) > 0 {
		sb.WriteString("Other relevant recent queries: ")
		sb.WriteString(renderList(similar))
		sb.WriteString(". ")
	}

	sb.WriteString("User: ")
	sb.WriteString(translatedQuery)
	sb.WriteString("\nAI:")

	return sb.String()
}

// renderList renders queries as a bracketed, double-quoted list,
// e.g. ["a", "b"].
func renderList(items []string) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, item := range items {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(strconv.Quote(item))
	}
	sb.WriteByte(']')
	return sb.String()
}
