package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/Pradeep-Chandra-G/Spectron/core"
	"github.com/Pradeep-Chandra-G/Spectron/storage"
)

// DocumentRepository implements storage.DocumentRepository for BadgerDB.
type DocumentRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.DocumentRepository = (*DocumentRepository)(nil)

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository(backend *Backend) (*DocumentRepository, error) {
	idSeq, err := backend.GetSequence(documentIDSeq)
	if err != nil {
		return nil, err
	}

	return &DocumentRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *DocumentRepository) Close() error {
	return r.idSeq.Release()
}

// AddDocument stores a new document record.
func (r *DocumentRepository) AddDocument(ctx context.Context, doc *core.Document) (*core.Document, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		nextID, err := r.idSeq.Next()
		if err != nil {
			return err
		}
		// BadgerDB sequences can return 0 on first call, so we skip it
		if nextID == 0 {
			nextID, err = r.idSeq.Next()
			if err != nil {
				return err
			}
		}
		doc.Id = core.ID(nextID)

		if doc.UploadedAt.IsZero() {
			doc.UploadedAt = time.Now().UTC()
		}
		if doc.Status == "" {
			doc.Status = core.StatusPending
		}
		if err := core.ValidateDocument(doc); err != nil {
			return err
		}

		value, err := storage.MarshalDocument(doc)
		if err != nil {
			return err
		}
		if err := tx.Set(makeDocumentKey(doc.Id), value); err != nil {
			return err
		}

		dateKey := makeDocumentDateKey(doc.UploadedAt, doc.Id)
		if err := tx.Set(dateKey, storage.MarshalID(doc.Id)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	return doc, err
}

// GetDocument retrieves a single document by ID.
func (r *DocumentRepository) GetDocument(ctx context.Context, id core.ID) (*core.Document, error) {
	var result *core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readDocument(tx, makeDocumentKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// ListDocuments retrieves all documents ordered by upload time, newest first.
func (r *DocumentRepository) ListDocuments(ctx context.Context) ([]*core.Document, error) {
	var results []*core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true

		iter := tx.NewIterator(opts)
		defer iter.Close()

		prefix := []byte(documentDatePrefix + ":")
		for iter.Seek(maxDateSeekKey(documentDatePrefix)); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if len(key) < len(prefix) || slices.Compare(key[:len(prefix)], prefix) != 0 {
				break
			}

			var docID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				docID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			doc, err := readDocument(tx, makeDocumentKey(docID))
			if err != nil {
				return err
			}
			if doc != nil {
				results = append(results, doc)
			}
		}
		return nil
	}, false)

	return results, err
}

// UpdateStatus transitions a document to the given status.
func (r *DocumentRepository) UpdateStatus(ctx context.Context, id core.ID, status core.ProcessingStatus) (*core.Document, error) {
	return r.mutate(id, func(doc *core.Document) error {
		if err := transition(doc, status); err != nil {
			return err
		}
		return nil
	})
}

// SetCompleted transitions a document to completed and records its chunk
// count.
func (r *DocumentRepository) SetCompleted(ctx context.Context, id core.ID, chunkCount int) (*core.Document, error) {
	return r.mutate(id, func(doc *core.Document) error {
		if err := transition(doc, core.StatusCompleted); err != nil {
			return err
		}
		doc.ChunkCount = chunkCount
		return nil
	})
}

// SetFailed transitions a document to failed and records the truncated
// error message.
func (r *DocumentRepository) SetFailed(ctx context.Context, id core.ID, message string) (*core.Document, error) {
	return r.mutate(id, func(doc *core.Document) error {
		if err := transition(doc, core.StatusFailed); err != nil {
			return err
		}
		doc.ErrorMessage = core.TruncateError(message)
		return nil
	})
}

// DeleteDocument removes a document record and its date index entry.
func (r *DocumentRepository) DeleteDocument(ctx context.Context, id core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeDocumentKey(id)
		doc, err := readDocument(tx, key)
		if err != nil {
			return err
		}
		if doc == nil {
			return storage.ErrNotFound
		}

		if err := tx.Delete(makeDocumentDateKey(doc.UploadedAt, doc.Id)); err != nil {
			return err
		}
		if err := tx.Delete(key); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// mutate applies fn to a stored document and writes the result back.
func (r *DocumentRepository) mutate(id core.ID, fn func(*core.Document) error) (*core.Document, error) {
	var result *core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeDocumentKey(id)
		doc, err := readDocument(tx, key)
		if err != nil {
			return err
		}
		if doc == nil {
			return storage.ErrNotFound
		}

		if err := fn(doc); err != nil {
			return err
		}

		value, err := storage.MarshalDocument(doc)
		if err != nil {
			return err
		}
		if err := tx.Set(key, value); err != nil {
			return err
		}
		result = doc
		return tx.Commit()
	}, true)
	return result, err
}

// transition moves a document to the target status, enforcing the state
// machine, and clears fields that only apply to the state being left.
func transition(doc *core.Document, status core.ProcessingStatus) error {
	if !doc.Status.CanTransitionTo(status) {
		return core.ErrInvalidTransition
	}
	doc.Status = status
	if status != core.StatusFailed {
		doc.ErrorMessage = ""
	}
	if status != core.StatusCompleted {
		doc.ChunkCount = 0
	}
	return nil
}

// readDocument reads a document from the transaction. Returns nil, nil when
// the key is absent.
func readDocument(tx *badger.Txn, key []byte) (*core.Document, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var doc *core.Document
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		doc, unmarshalErr = storage.UnmarshalDocument(val)
		return unmarshalErr
	})
	return doc, err
}
