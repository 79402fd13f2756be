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


package chat

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Pradeep-Chandra-G/Spectron/vectorstore"
)

const (
	// DefaultTopK is the number of chunks retrieved per question.
	DefaultTopK = 5

	// DefaultThreshold is the distance cutoff for relevance filtering.
	// Matches farther than this are dropped before prompt assembly.
	DefaultThreshold = 0.7
)

// Retriever fetches the chunks most similar to a question and filters them
// by relevance.
type Retriever struct {
	store     vectorstore.Store
	topK      int
	threshold float32
	logger    *slog.Logger
}

// RetrieverOption configures a Retriever.
type RetrieverOption func(*Retriever)

// WithTopK sets how many chunks are fetched per question.
func WithTopK(topK int) RetrieverOption {
	return func(r *Retriever) {
		if topK > 0 {
			r.topK = topK
		}
	}
}

// WithThreshold sets the distance cutoff for relevance filtering.
func WithThreshold(threshold float32) RetrieverOption {
	return func(r *Retriever) {
		r.threshold = threshold
	}
}

// WithRetrieverLogger sets the logger used by the retriever.
func WithRetrieverLogger(logger *slog.Logger) RetrieverOption {
	return func(r *Retriever) {
		if logger != nil {
			r.logger = logger.With("component", "retriever")
		}
	}
}

// NewRetriever creates a retriever over the given store.
func NewRetriever(store vectorstore.Store, opts ...RetrieverOption) (*Retriever, error) {
	if store == nil {
		return nil, ErrVectorStoreRequired
	}
	r := &Retriever{
		store:     store,
		topK:      DefaultTopK,
		threshold: DefaultThreshold,
		logger:    slog.Default().With("component", "retriever"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Retrieve returns the relevant chunks for the question, most similar
// first. Matches beyond the distance threshold are dropped; matches the
// backend returned without a score are kept, since dropping them would
// silently hide stored content on backends that don't report distances.
func (r *Retriever) Retrieve(ctx context.Context, question string) ([]vectorstore.Match, error) {
	matches, err := r.store.Query(ctx, question, r.topK)
	if err != nil {
		return nil, fmt.Errorf("retrieving chunks: %w", err)
	}

	kept := matches[:0]
	for _, m := range matches {
		if !m.HasDistance || m.Distance <= r.threshold {
			kept = append(kept, m)
		}
	}

	r.logger.Debug("chunks retrieved", "fetched", len(matches), "kept", len(kept))
	return kept, nil
}
