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


package spectron

import (
	"context"
	"log/slog"
	"time"

	"github.com/Pradeep-Chandra-G/Spectron/ai"
	"github.com/Pradeep-Chandra-G/Spectron/ai/openai"
	"github.com/Pradeep-Chandra-G/Spectron/chat"
	"github.com/Pradeep-Chandra-G/Spectron/chunker"
	"github.com/Pradeep-Chandra-G/Spectron/config"
	"github.com/Pradeep-Chandra-G/Spectron/extract"
	"github.com/Pradeep-Chandra-G/Spectron/ingest"
	"github.com/Pradeep-Chandra-G/Spectron/storage"
	"github.com/Pradeep-Chandra-G/Spectron/storage/badger"
	"github.com/Pradeep-Chandra-G/Spectron/vectorstore"
	"github.com/Pradeep-Chandra-G/Spectron/vectorstore/memory"
	"github.com/Pradeep-Chandra-G/Spectron/vectorstore/milvus"
)

// Engine wires the full pipeline together from configuration: storage,
// file store, AI provider, vector store, and the ingestion and chat
// services.
type Engine struct {
	cfg       *config.Config
	backend   *badger.Backend
	docRepo   storage.DocumentRepository
	chatRepo  storage.ChatMessageRepository
	files     storage.FileStore
	provider  ai.Provider
	store     vectorstore.Store
	ingestSvc *ingest.Service
	chatSvc   *chat.Service
	logger    *slog.Logger
}

// NewEngine builds an engine from the given configuration. The context
// bounds backend connections made during startup.
func NewEngine(ctx context.Context, cfg *config.Config) (*Engine, error) {
	logger := slog.Default()

	backend, err := badger.OpenBackend(cfg.DataDir, false)
	if err != nil {
		return nil, err
	}

	docRepo, err := badger.NewDocumentRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	chatRepo, err := badger.NewChatMessageRepository(backend)
	if err != nil {
		docRepo.Close()
		backend.Close()
		return nil, err
	}

	files, err := storage.NewLocalFileStore(cfg.UploadDir, storage.WithLogger(logger))
	if err != nil {
		chatRepo.Close()
		docRepo.Close()
		backend.Close()
		return nil, err
	}

	provider, err := openai.NewProvider(ai.NewConfig(
		ai.WithEmbeddingHost(cfg.AI.EmbeddingHost),
		ai.WithChatHost(cfg.AI.ChatHost),
		ai.WithEmbeddingModel(cfg.AI.EmbeddingModel),
		ai.WithChatModel(cfg.AI.ChatModel),
		ai.WithTimeout(time.Duration(cfg.AI.TimeoutSecs)*time.Second),
	))
	if err != nil {
		chatRepo.Close()
		docRepo.Close()
		backend.Close()
		return nil, err
	}

	e := &Engine{
		cfg:      cfg,
		backend:  backend,
		docRepo:  docRepo,
		chatRepo: chatRepo,
		files:    files,
		provider: provider,
		logger:   logger,
	}

	e.store, err = e.newVectorStore(ctx)
	if err != nil {
		e.Close()
		return nil, err
	}

	splitter, err := chunker.New(chunker.Config{
		ChunkSize:     cfg.Chunker.ChunkSize,
		Overlap:       cfg.Chunker.Overlap,
		MinChunkSize:  cfg.Chunker.MinChunkSize,
		MaxChunkSize:  cfg.Chunker.MaxChunkSize,
		KeepSeparator: cfg.Chunker.KeepSeparatorOrDefault(),
	})
	if err != nil {
		e.Close()
		return nil, err
	}

	ingestOpts := []ingest.Option{ingest.WithLogger(logger)}
	if cfg.Workers > 0 {
		ingestOpts = append(ingestOpts, ingest.WithWorkers(cfg.Workers))
	}
	e.ingestSvc, err = ingest.NewService(docRepo, files, e.store,
		extract.New(extract.WithLogger(logger)), splitter, ingestOpts...)
	if err != nil {
		e.Close()
		return nil, err
	}

	retriever, err := chat.NewRetriever(e.store,
		chat.WithTopK(cfg.Retrieval.TopK),
		chat.WithThreshold(cfg.Retrieval.Threshold),
		chat.WithRetrieverLogger(logger))
	if err != nil {
		e.Close()
		return nil, err
	}

	e.chatSvc, err = chat.NewService(retriever, provider.Generator(), chatRepo,
		chat.WithLogger(logger))
	if err != nil {
		e.Close()
		return nil, err
	}

	return e, nil
}

// newVectorStore picks the configured backend: Milvus when enabled,
// otherwise the in-process store.
func (e *Engine) newVectorStore(ctx context.Context) (vectorstore.Store, error) {
	if e.cfg.Milvus.Enabled {
		return milvus.New(ctx, milvus.Config{
			Address:    e.cfg.Milvus.Address,
			Collection: e.cfg.Milvus.Collection,
			Dimension:  e.cfg.Milvus.Dimension,
		}, e.provider.Embedder(), milvus.WithLogger(e.logger))
	}
	return memory.New(e.provider.Embedder(), memory.WithLogger(e.logger))
}

// Close shuts the engine down. Safe to call after a partial startup.
func (e *Engine) Close() error {
	if e.ingestSvc != nil {
		e.ingestSvc.Release()
	}
	if e.store != nil {
		if err := e.store.Close(context.Background()); err != nil {
			e.logger.Error("error closing vector store", "err", err)
		}
	}
	if e.provider != nil {
		if err := e.provider.Close(); err != nil {
			e.logger.Error("error closing AI provider", "err", err)
		}
	}
	if err := e.chatRepo.Close(); err != nil {
		e.logger.Error("error closing chat repository", "err", err)
		return err
	}
	if err := e.docRepo.Close(); err != nil {
		e.logger.Error("error closing document repository", "err", err)
		return err
	}
	if err := e.backend.Close(); err != nil {
		e.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// Ingest returns the ingestion service.
func (e *Engine) Ingest() *ingest.Service {
	return e.ingestSvc
}

// Chat returns the chat service.
func (e *Engine) Chat() *chat.Service {
	return e.chatSvc
}

// Documents returns the document repository.
func (e *Engine) Documents() storage.DocumentRepository {
	return e.docRepo
}
