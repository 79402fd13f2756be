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


package ingest

import (
	"path/filepath"
	"strings"

	"github.com/Pradeep-Chandra-G/Spectron/chunker"
	"github.com/Pradeep-Chandra-G/Spectron/core"
)

// Tag turns splitter output into fully tagged chunks for the document.
// Chunk identifiers are derived from the document ID and the piece position,
// so re-running the same split yields the same identifiers. Panics if doc is
// nil; the caller owns the document at this point in the pipeline.
func Tag(doc *core.Document, pieces []chunker.Piece) []core.Chunk {
	if doc == nil {
		panic("ingest: Tag called with nil document")
	}

	fileType := strings.ToLower(strings.TrimPrefix(filepath.Ext(doc.OriginalName), "."))
	chunks := make([]core.Chunk, len(pieces))
	for i, p := range pieces {
		chunks[i] = core.Chunk{
			ChunkID:     core.MakeChunkID(doc.Id, i),
			DocumentID:  doc.Id,
			Index:       i,
			TotalChunks: len(pieces),
			Content:     p.Content,
			FileType:    fileType,
			UploadedAt:  doc.UploadedAt,
		}
	}
	return chunks
}
