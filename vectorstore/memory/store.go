// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package memory

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"

	"github.com/Pradeep-Chandra-G/Spectron/ai"
	"github.com/Pradeep-Chandra-G/Spectron/core"
	"github.com/Pradeep-Chandra-G/Spectron/vectorstore"
)

// Store is an in-process vector store backed by a map. It is intended for
// tests and single-node deployments without a Milvus instance.
type Store struct {
	mu       sync.RWMutex
	entries  map[string]entry // keyed by chunk identifier
	embedder ai.Embedder
	logger   *slog.Logger
}

type entry struct {
	chunk  core.Chunk
	vector []float32
}

var _ vectorstore.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used by the store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger.With("component", "vectorstore.memory")
		}
	}
}

// New creates an in-memory store that embeds content with the given
// embedder.
func New(embedder ai.Embedder, opts ...Option) (*Store, error) {
	if embedder == nil {
		return nil, fmt.Errorf("memory store: embedder must not be nil")
	}
	s := &Store{
		entries:  make(map[string]entry),
		embedder: embedder,
		logger:   slog.Default().With("component", "vectorstore.memory"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Add embeds the chunks and stores them, replacing any chunk with the same
// identifier.
func (s *Store) Add(ctx context.Context, chunks []core.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	vectors, err := s.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return fmt.Errorf("%w: embedding chunks: %v", vectorstore.ErrStoreWrite, err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("%w: embedder returned %d vectors for %d chunks",
			vectorstore.ErrStoreWrite, len(vectors), len(chunks))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range chunks {
		s.entries[c.ChunkID] = entry{chunk: c, vector: vectors[i]}
	}
	s.logger.Debug("chunks stored", "count", len(chunks))
	return nil
}

// Query embeds the text and returns the topK closest chunks by cosine
// distance, most similar first.
func (s *Store) Query(ctx context.Context, text string, topK int) ([]vectorstore.Match, error) {
	if topK <= 0 {
		return nil, vectorstore.ErrInvalidTopK
	}

	qv, err := s.embedder.EmbedText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding query: %v", vectorstore.ErrStoreQuery, err)
	}

	s.mu.RLock()
	matches := make([]vectorstore.Match, 0, len(s.entries))
	for _, e := range s.entries {
		matches = append(matches, vectorstore.Match{
			Chunk:       e.chunk,
			Distance:    cosineDistance(qv, e.vector),
			HasDistance: true,
		})
	}
	s.mu.RUnlock()

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Distance != matches[j].Distance {
			return matches[i].Distance < matches[j].Distance
		}
		// Stable tiebreak so query results are deterministic.
		return matches[i].Chunk.ChunkID < matches[j].Chunk.ChunkID
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// DeleteByDocument removes every stored chunk of the document.
func (s *Store) DeleteByDocument(_ context.Context, docID core.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, e := range s.entries {
		if e.chunk.DocumentID == docID {
			delete(s.entries, id)
			removed++
		}
	}
	s.logger.Debug("document chunks removed", "documentId", docID, "count", removed)
	return nil
}

// Close releases nothing for the in-memory store.
func (s *Store) Close(_ context.Context) error {
	return nil
}

// Len returns the number of stored chunks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// cosineDistance returns 1 minus the cosine similarity of a and b. Mismatched
// or zero vectors score 1, the mid-point of the range.
func cosineDistance(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 1
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return float32(1 - dot/(math.Sqrt(na)*math.Sqrt(nb)))
}
