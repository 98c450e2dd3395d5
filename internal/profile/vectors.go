// Package profile maintains the per-user similarity vectors.
//
// Each user has exactly one vector: the mean embedding of the texts from
// their most recent activity. Upserting overwrites the previous vector, so
// similarity to a user always means similarity to their latest embedded
// text, not a cumulative profile. Vectors persist in a chromem-go
// collection; the history store does not, and the two are not
// transactional with each other.
package profile

import (
	"context"
	"fmt"

	chromem "github.com/philippgille/chromem-go"

	"github.com/affinity-search/affinity/internal/embed"
	"github.com/affinity-search/affinity/internal/log"
)

// collectionName is the chromem collection holding user vectors.
const collectionName = "user_vectors"

// Metadata is the last-write metadata stored with a user vector.
type Metadata struct {
	Location  string
	Timestamp string
	Click     bool
}

// Neighbor is one nearest-neighbor result.
type Neighbor struct {
	UserID     string
	Similarity float32
}

// Store wraps a chromem collection with embedding-aware upsert and
// nearest-neighbor lookup. Safe for concurrent use.
type Store struct {
	collection *chromem.Collection
	embedder   embed.Embedder
	logger     log.Logger
}

// NewStore creates a Store backed by db. embedder generates the vectors;
// logger may be nil.
func NewStore(db *chromem.DB, embedder embed.Embedder, logger log.Logger) (*Store, error) {
	if logger == nil {
		logger = log.NewNop()
	}

	// The embedding func is only consulted for text-based operations;
	// this store always supplies vectors explicitly, but wiring it keeps
	// the collection usable with chromem's own query helpers.
	collection, err := db.GetOrCreateCollection(collectionName, nil, embeddingFunc(embedder))
	if err != nil {
		return nil, fmt.Errorf("opening collection %s: %w", collectionName, err)
	}

	return &Store{collection: collection, embedder: embedder, logger: logger}, nil
}

// embeddingFunc bridges an embed.Embedder to chromem's EmbeddingFunc.
func embeddingFunc(embedder embed.Embedder) chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		return embedder.Embed(ctx, text)
	}
}

// Upsert replaces the stored vector for userID with the mean embedding of
// texts. Empty texts are ignored; an all-empty batch is an error.
func (s *Store) Upsert(ctx context.Context, userID string, texts []string, meta Metadata) error {
	vectors := make([][]float32, 0, len(texts))
	var content string
	for _, t := range texts {
		if t == "" {
			continue
		}
		v, err := s.embedder.Embed(ctx, t)
		if err != nil {
			return fmt.Errorf("embedding text for user %s: %w", userID, err)
		}
		vectors = append(vectors, v)
		if content != "" {
			content += "\n"
		}
		content += t
	}

	vector := embed.Mean(vectors)
	if vector == nil {
		return fmt.Errorf("no embeddable text for user %s", userID)
	}

	metadata := map[string]string{"timestamp": meta.Timestamp}
	if meta.Location != "" {
		metadata["location"] = meta.Location
	}
	if meta.Click {
		metadata["click"] = "true"
	}

	err := s.collection.AddDocument(ctx, chromem.Document{
		ID:        userID,
		Metadata:  metadata,
		Embedding: vector,
		Content:   content,
	})
	if err != nil {
		return fmt.Errorf("upserting vector for user %s: %w", userID, err)
	}

	s.logger.Debug("upserted user vector", "user_id", userID, "texts", len(vectors))
	return nil
}

// SimilarUsers returns up to topK user IDs whose vectors are nearest to
// the embedding of text, most similar first. The requesting user's own
// vector is not excluded. An empty collection returns no neighbors.
func (s *Store) SimilarUsers(ctx context.Context, text string, topK int) ([]Neighbor, error) {
	if topK <= 0 {
		return nil, nil
	}

	// chromem rejects queries asking for more results than stored docs.
	if count := s.collection.Count(); count < topK {
		if count == 0 {
			return nil, nil
		}
		topK = count
	}

	vector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	results, err := s.collection.QueryEmbedding(ctx, vector, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("querying similar users: %w", err)
	}

	neighbors := make([]Neighbor, len(results))
	for i, r := range results {
		neighbors[i] = Neighbor{UserID: r.ID, Similarity: r.Similarity}
	}
	return neighbors, nil
}

// Count returns the number of stored user vectors.
func (s *Store) Count() int {
	return s.collection.Count()
}
