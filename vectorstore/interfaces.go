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


package vectorstore

import (
	"context"

	"github.com/Pradeep-Chandra-G/Spectron/core"
)

// Match is one retrieval result. Distance is a distance-style score: lower
// means more similar. HasDistance is false when the backend returned no
// score for the match, in which case the caller decides how to treat it.
type Match struct {
	Chunk       core.Chunk
	Distance    float32
	HasDistance bool
}

// Store persists chunk embeddings and answers similarity queries.
// Implementations embed chunk content themselves, so callers only ever deal
// in text.
type Store interface {
	// Add embeds and stores the given chunks. Re-adding a chunk with an
	// existing identifier replaces the previous record.
	Add(ctx context.Context, chunks []core.Chunk) error

	// Query embeds the text and returns up to topK matches ordered most
	// similar first.
	Query(ctx context.Context, text string, topK int) ([]Match, error)

	// DeleteByDocument removes every chunk belonging to the document.
	// Deleting a document with no stored chunks is not an error.
	DeleteByDocument(ctx context.Context, docID core.ID) error

	// Close releases backend resources.
	Close(ctx context.Context) error
}
