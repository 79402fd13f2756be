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


package milvus

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/milvus-io/milvus/client/v2/column"
	"github.com/milvus-io/milvus/client/v2/entity"
	"github.com/milvus-io/milvus/client/v2/index"
	"github.com/milvus-io/milvus/client/v2/milvusclient"

	"github.com/Pradeep-Chandra-G/Spectron/ai"
	"github.com/Pradeep-Chandra-G/Spectron/core"
	"github.com/Pradeep-Chandra-G/Spectron/vectorstore"
)

const (
	fieldChunkID     = "chunk_id"
	fieldDocumentID  = "document_id"
	fieldChunkIndex  = "chunk_index"
	fieldTotalChunks = "total_chunks"
	fieldContent     = "content"
	fieldFileType    = "file_type"
	fieldUploadDate  = "upload_date"
	fieldEmbedding   = "embedding"

	maxChunkIDLen = 256
	maxContentLen = 65535
	maxTypeLen    = 32
	maxDateLen    = 64

	nprobe = "16"
)

// Config holds the connection settings for a Milvus-backed store.
type Config struct {
	// Address is the Milvus endpoint, host:port.
	Address string
	// Collection is the collection name. Created on first use if absent.
	Collection string
	// Dimension is the embedding vector dimension. It must match the
	// embedding model.
	Dimension int
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Address) == "" {
		return fmt.Errorf("milvus config: Address must not be empty")
	}
	if strings.TrimSpace(c.Collection) == "" {
		return fmt.Errorf("milvus config: Collection must not be empty")
	}
	if c.Dimension <= 0 {
		return fmt.Errorf("milvus config: Dimension must be positive, got %d", c.Dimension)
	}
	return nil
}

// Store persists chunk embeddings in a Milvus collection.
type Store struct {
	client   *milvusclient.Client
	cfg      Config
	embedder ai.Embedder
	logger   *slog.Logger
}

var _ vectorstore.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used by the store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger.With("component", "vectorstore.milvus")
		}
	}
}

// New connects to Milvus, creates the collection and index if missing, and
// loads the collection for search.
func New(ctx context.Context, cfg Config, embedder ai.Embedder, opts ...Option) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if embedder == nil {
		return nil, fmt.Errorf("milvus store: embedder must not be nil")
	}

	client, err := milvusclient.New(ctx, &milvusclient.ClientConfig{Address: cfg.Address})
	if err != nil {
		return nil, fmt.Errorf("connecting to milvus at %s: %w", cfg.Address, err)
	}

	s := &Store{
		client:   client,
		cfg:      cfg,
		embedder: embedder,
		logger:   slog.Default().With("component", "vectorstore.milvus"),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.ensureCollection(ctx); err != nil {
		client.Close(ctx)
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureCollection(ctx context.Context) error {
	has, err := s.client.HasCollection(ctx, milvusclient.NewHasCollectionOption(s.cfg.Collection))
	if err != nil {
		return fmt.Errorf("checking collection %q: %w", s.cfg.Collection, err)
	}

	if !has {
		schema := entity.NewSchema().
			WithName(s.cfg.Collection).
			WithDescription("document chunks with embeddings").
			WithField(entity.NewField().
				WithName(fieldChunkID).
				WithDataType(entity.FieldTypeVarChar).
				WithMaxLength(maxChunkIDLen).
				WithIsPrimaryKey(true)).
			WithField(entity.NewField().
				WithName(fieldDocumentID).
				WithDataType(entity.FieldTypeInt64)).
			WithField(entity.NewField().
				WithName(fieldChunkIndex).
				WithDataType(entity.FieldTypeInt64)).
			WithField(entity.NewField().
				WithName(fieldTotalChunks).
				WithDataType(entity.FieldTypeInt64)).
			WithField(entity.NewField().
				WithName(fieldContent).
				WithDataType(entity.FieldTypeVarChar).
				WithMaxLength(maxContentLen)).
			WithField(entity.NewField().
				WithName(fieldFileType).
				WithDataType(entity.FieldTypeVarChar).
				WithMaxLength(maxTypeLen)).
			WithField(entity.NewField().
				WithName(fieldUploadDate).
				WithDataType(entity.FieldTypeVarChar).
				WithMaxLength(maxDateLen)).
			WithField(entity.NewField().
				WithName(fieldEmbedding).
				WithDataType(entity.FieldTypeFloatVector).
				WithDim(int64(s.cfg.Dimension)))

		if err := s.client.CreateCollection(ctx,
			milvusclient.NewCreateCollectionOption(s.cfg.Collection, schema)); err != nil {
			return fmt.Errorf("creating collection %q: %w", s.cfg.Collection, err)
		}

		idx := index.NewIvfFlatIndex(entity.L2, 128)
		task, err := s.client.CreateIndex(ctx,
			milvusclient.NewCreateIndexOption(s.cfg.Collection, fieldEmbedding, idx))
		if err != nil {
			return fmt.Errorf("creating index on %q: %w", s.cfg.Collection, err)
		}
		if err := task.Await(ctx); err != nil {
			return fmt.Errorf("waiting for index on %q: %w", s.cfg.Collection, err)
		}
		s.logger.Info("collection created", "collection", s.cfg.Collection, "dimension", s.cfg.Dimension)
	}

	loadTask, err := s.client.LoadCollection(ctx,
		milvusclient.NewLoadCollectionOption(s.cfg.Collection))
	if err != nil {
		return fmt.Errorf("loading collection %q: %w", s.cfg.Collection, err)
	}
	if err := loadTask.Await(ctx); err != nil {
		return fmt.Errorf("waiting for collection %q load: %w", s.cfg.Collection, err)
	}
	return nil
}

// Add embeds the chunks and writes them to the collection. Chunks whose
// identifiers already exist are replaced.
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

	chunkIDs := make([]string, len(chunks))
	docIDs := make([]int64, len(chunks))
	indexes := make([]int64, len(chunks))
	totals := make([]int64, len(chunks))
	contents := make([]string, len(chunks))
	fileTypes := make([]string, len(chunks))
	dates := make([]string, len(chunks))
	for i, c := range chunks {
		chunkIDs[i] = c.ChunkID
		docIDs[i] = int64(c.DocumentID)
		indexes[i] = int64(c.Index)
		totals[i] = int64(c.TotalChunks)
		contents[i] = truncate(c.Content, maxContentLen)
		fileTypes[i] = c.FileType
		dates[i] = c.UploadedAt.UTC().Format(time.RFC3339)
	}

	// Drop any prior rows for these identifiers so re-ingestion stays
	// idempotent.
	if err := s.deleteByExpr(ctx, chunkIDExpr(chunkIDs)); err != nil {
		return err
	}

	_, err = s.client.Insert(ctx, milvusclient.NewColumnBasedInsertOption(s.cfg.Collection,
		column.NewColumnVarChar(fieldChunkID, chunkIDs),
		column.NewColumnInt64(fieldDocumentID, docIDs),
		column.NewColumnInt64(fieldChunkIndex, indexes),
		column.NewColumnInt64(fieldTotalChunks, totals),
		column.NewColumnVarChar(fieldContent, contents),
		column.NewColumnVarChar(fieldFileType, fileTypes),
		column.NewColumnVarChar(fieldUploadDate, dates),
		column.NewColumnFloatVector(fieldEmbedding, s.cfg.Dimension, vectors),
	))
	if err != nil {
		return fmt.Errorf("%w: inserting %d chunks: %v", vectorstore.ErrStoreWrite, len(chunks), err)
	}

	flushTask, err := s.client.Flush(ctx, milvusclient.NewFlushOption(s.cfg.Collection))
	if err != nil {
		return fmt.Errorf("%w: flushing collection: %v", vectorstore.ErrStoreWrite, err)
	}
	if err := flushTask.Await(ctx); err != nil {
		return fmt.Errorf("%w: waiting for flush: %v", vectorstore.ErrStoreWrite, err)
	}

	s.logger.Debug("chunks stored", "count", len(chunks), "collection", s.cfg.Collection)
	return nil
}

// Query embeds the text and runs an ANN search, returning matches most
// similar first. With an L2 metric the returned scores are distances, so
// every match carries one.
func (s *Store) Query(ctx context.Context, text string, topK int) ([]vectorstore.Match, error) {
	if topK <= 0 {
		return nil, vectorstore.ErrInvalidTopK
	}

	qv, err := s.embedder.EmbedText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding query: %v", vectorstore.ErrStoreQuery, err)
	}

	results, err := s.client.Search(ctx, milvusclient.
		NewSearchOption(s.cfg.Collection, topK, []entity.Vector{entity.FloatVector(qv)}).
		WithANNSField(fieldEmbedding).
		WithSearchParam("nprobe", nprobe).
		WithOutputFields(fieldChunkID, fieldDocumentID, fieldChunkIndex,
			fieldTotalChunks, fieldContent, fieldFileType, fieldUploadDate))
	if err != nil {
		return nil, fmt.Errorf("%w: searching: %v", vectorstore.ErrStoreQuery, err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	res := results[0]
	matches := make([]vectorstore.Match, 0, res.ResultCount)
	for i := 0; i < res.ResultCount; i++ {
		chunk, err := chunkFromResult(res, i)
		if err != nil {
			return nil, fmt.Errorf("%w: decoding result %d: %v", vectorstore.ErrStoreQuery, i, err)
		}
		m := vectorstore.Match{Chunk: chunk}
		if i < len(res.Scores) {
			m.Distance = res.Scores[i]
			m.HasDistance = true
		}
		matches = append(matches, m)
	}
	return matches, nil
}

// DeleteByDocument removes every chunk row of the document.
func (s *Store) DeleteByDocument(ctx context.Context, docID core.ID) error {
	return s.deleteByExpr(ctx, fmt.Sprintf("%s == %d", fieldDocumentID, docID))
}

func (s *Store) deleteByExpr(ctx context.Context, expr string) error {
	_, err := s.client.Delete(ctx, milvusclient.
		NewDeleteOption(s.cfg.Collection).
		WithExpr(expr))
	if err != nil {
		return fmt.Errorf("%w: deleting by %q: %v", vectorstore.ErrStoreWrite, expr, err)
	}
	return nil
}

// Close closes the Milvus connection.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Close(ctx)
}

func chunkFromResult(res milvusclient.ResultSet, i int) (core.Chunk, error) {
	var chunk core.Chunk
	for _, f := range res.Fields {
		switch f.Name() {
		case fieldChunkID:
			v, err := f.GetAsString(i)
			if err != nil {
				return chunk, err
			}
			chunk.ChunkID = v
		case fieldDocumentID:
			v, err := f.GetAsInt64(i)
			if err != nil {
				return chunk, err
			}
			chunk.DocumentID = core.ID(v)
		case fieldChunkIndex:
			v, err := f.GetAsInt64(i)
			if err != nil {
				return chunk, err
			}
			chunk.Index = int(v)
		case fieldTotalChunks:
			v, err := f.GetAsInt64(i)
			if err != nil {
				return chunk, err
			}
			chunk.TotalChunks = int(v)
		case fieldContent:
			v, err := f.GetAsString(i)
			if err != nil {
				return chunk, err
			}
			chunk.Content = v
		case fieldFileType:
			v, err := f.GetAsString(i)
			if err != nil {
				return chunk, err
			}
			chunk.FileType = v
		case fieldUploadDate:
			v, err := f.GetAsString(i)
			if err != nil {
				return chunk, err
			}
			if ts, perr := time.Parse(time.RFC3339, v); perr == nil {
				chunk.UploadedAt = ts
			}
		}
	}
	return chunk, nil
}

func chunkIDExpr(ids []string) string {
	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = fmt.Sprintf("%q", id)
	}
	return fmt.Sprintf("%s in [%s]", fieldChunkID, strings.Join(quoted, ", "))
}

// truncate bounds s to max bytes without splitting a multi-byte rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
