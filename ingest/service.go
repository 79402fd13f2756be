package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"

	"github.com/panjf2000/ants/v2"

	"github.com/Pradeep-Chandra-G/Spectron/chunker"
	"github.com/Pradeep-Chandra-G/Spectron/core"
	"github.com/Pradeep-Chandra-G/Spectron/extract"
	"github.com/Pradeep-Chandra-G/Spectron/storage"
	"github.com/Pradeep-Chandra-G/Spectron/vectorstore"
)

// Service orchestrates the document ingestion pipeline: store the file,
// create a pending record, then extract, chunk, tag, and embed
// asynchronously on a worker pool.
type Service struct {
	docs      storage.DocumentRepository
	files     storage.FileStore
	store     vectorstore.Store
	extractor *extract.Extractor
	splitter  *chunker.Splitter
	pool      *ants.Pool
	logger    *slog.Logger
}

// Option configures a Service.
type Option func(*Service) error

// WithWorkers sets the worker pool size for asynchronous processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithWorkers(size int) Option {
	return func(s *Service) error {
		if size < 1 {
			size = 1
		}
		if s.pool != nil {
			s.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		s.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger.With("component", "ingest")
		return nil
	}
}

// NewService creates an ingestion service.
func NewService(
	docs storage.DocumentRepository,
	files storage.FileStore,
	store vectorstore.Store,
	extractor *extract.Extractor,
	splitter *chunker.Splitter,
	opts ...Option,
) (*Service, error) {
	if docs == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if files == nil {
		return nil, ErrFileStoreRequired
	}
	if store == nil {
		return nil, ErrVectorStoreRequired
	}
	if extractor == nil {
		return nil, ErrExtractorRequired
	}
	if splitter == nil {
		return nil, ErrSplitterRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	s := &Service{
		docs:      docs,
		files:     files,
		store:     store,
		extractor: extractor,
		splitter:  splitter,
		pool:      pool,
		logger:    slog.Default().With("component", "ingest"),
	}

	for _, opt := range opts {
		if optErr := opt(s); optErr != nil {
			s.Release()
			return nil, optErr
		}
	}

	return s, nil
}

// Upload stores the file, creates a pending document record, and schedules
// asynchronous processing. Validation failures surface immediately; anything
// that happens after this call is reflected in the document's status.
func (s *Service) Upload(ctx context.Context, originalName, contentType string, r io.Reader) (*core.Document, error) {
	if !extract.SupportedExtension(originalName) {
		return nil, fmt.Errorf("%w: %s", extract.ErrUnsupportedFormat, originalName)
	}

	storedName, path, size, err := s.files.Write(originalName, r)
	if err != nil {
		return nil, err
	}
	if size == 0 {
		s.files.Delete(storedName)
		return nil, fmt.Errorf("%w: %s", ErrEmptyUpload, originalName)
	}

	doc, err := s.docs.AddDocument(ctx, &core.Document{
		Filename:     storedName,
		OriginalName: originalName,
		ContentType:  contentType,
		FileSize:     size,
		FilePath:     path,
		Status:       core.StatusPending,
	})
	if err != nil {
		s.files.Delete(storedName)
		return nil, err
	}

	s.logger.Info("document uploaded", "documentId", doc.Id, "name", originalName, "bytes", size)

	id := doc.Id
	if err := s.pool.Submit(func() {
		s.process(context.Background(), id)
	}); err != nil {
		s.logger.Error("error scheduling document processing", "documentId", id, "err", err)
	}

	return doc, nil
}

// process runs the extract, chunk, tag, and embed stages for one document.
// Failures land the document in the failed state with the cause recorded.
func (s *Service) process(ctx context.Context, id core.ID) {
	doc, err := s.docs.UpdateStatus(ctx, id, core.StatusProcessing)
	if err != nil {
		s.logger.Error("error marking document processing", "documentId", id, "err", err)
		return
	}

	segments, err := s.extractor.Extract(ctx, doc.FilePath, doc.OriginalName)
	if err != nil {
		s.fail(ctx, id, fmt.Errorf("extracting text: %w", err))
		return
	}

	pieces, err := s.splitter.Split(segments)
	if err != nil {
		s.fail(ctx, id, fmt.Errorf("chunking text: %w", err))
		return
	}

	chunks := Tag(doc, pieces)
	if err := s.store.Add(ctx, chunks); err != nil {
		// Undo any partial write so a retry starts clean.
		if delErr := s.store.DeleteByDocument(ctx, id); delErr != nil {
			s.logger.Warn("error cleaning up partial chunks", "documentId", id, "err", delErr)
		}
		s.fail(ctx, id, fmt.Errorf("storing chunks: %w", err))
		return
	}

	if _, err := s.docs.SetCompleted(ctx, id, len(chunks)); err != nil {
		s.logger.Error("error marking document completed", "documentId", id, "err", err)
		return
	}
	s.logger.Info("document processed", "documentId", id, "chunks", len(chunks))
}

// fail records a processing failure on the document.
func (s *Service) fail(ctx context.Context, id core.ID, cause error) {
	s.logger.Error("document processing failed", "documentId", id, "err", cause)
	if _, err := s.docs.SetFailed(ctx, id, cause.Error()); err != nil {
		s.logger.Error("error marking document failed", "documentId", id, "err", err)
	}
}

// Delete removes a document: its chunks first, then the stored file, then
// the record. Deleting an unknown document is a no-op. Returns ErrProcessing
// while the ingestion pipeline still owns the document.
func (s *Service) Delete(ctx context.Context, id core.ID) error {
	doc, err := s.docs.GetDocument(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return err
	}

	if doc.Status == core.StatusProcessing {
		return fmt.Errorf("%w: document %d", ErrProcessing, id)
	}

	// Chunks go first: a record without chunks is harmless, orphaned chunks
	// would keep surfacing in retrieval.
	if err := s.store.DeleteByDocument(ctx, id); err != nil {
		return err
	}

	if err := s.files.Delete(doc.Filename); err != nil {
		return err
	}

	if err := s.docs.DeleteDocument(ctx, id); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	s.logger.Info("document deleted", "documentId", id)
	return nil
}

// Document retrieves a single document record.
func (s *Service) Document(ctx context.Context, id core.ID) (*core.Document, error) {
	return s.docs.GetDocument(ctx, id)
}

// Documents retrieves all document records, newest first.
func (s *Service) Documents(ctx context.Context) ([]*core.Document, error) {
	return s.docs.ListDocuments(ctx)
}

// Release releases the worker pool. The service should not be used after
// calling Release.
func (s *Service) Release() {
	if s.pool != nil {
		s.pool.Release()
	}
}
