package storage

import (
	"context"
	"io"

	"github.com/Pradeep-Chandra-G/Spectron/core"
)

// DocumentRepository provides operations for managing document records.
// Implementations must be thread-safe and support concurrent access.
type DocumentRepository interface {
	// AddDocument stores a new document record. Generates an ID from
	// sequence and sets UploadedAt if unset. Returns the document with the
	// generated ID populated.
	AddDocument(ctx context.Context, doc *core.Document) (*core.Document, error)

	// GetDocument retrieves a single document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id core.ID) (*core.Document, error)

	// ListDocuments retrieves all documents ordered by upload time,
	// newest first.
	ListDocuments(ctx context.Context) ([]*core.Document, error)

	// UpdateStatus transitions a document to the given status. Returns
	// core.ErrInvalidTransition if the state machine forbids the move and
	// ErrNotFound if the document doesn't exist.
	UpdateStatus(ctx context.Context, id core.ID, status core.ProcessingStatus) (*core.Document, error)

	// SetCompleted transitions a document to completed and records its
	// chunk count.
	SetCompleted(ctx context.Context, id core.ID, chunkCount int) (*core.Document, error)

	// SetFailed transitions a document to failed and records the error
	// message, truncated to the storage limit.
	SetFailed(ctx context.Context, id core.ID, message string) (*core.Document, error)

	// DeleteDocument removes a document record and its indices.
	// Returns ErrNotFound if the document doesn't exist.
	DeleteDocument(ctx context.Context, id core.ID) error

	// Close releases repository resources.
	Close() error
}

// ChatMessageRepository provides operations for managing chat history.
type ChatMessageRepository interface {
	// AddMessage stores a question/answer exchange. Generates an ID from
	// sequence and sets Timestamp if unset. Returns the message with the
	// generated ID populated.
	AddMessage(ctx context.Context, msg *core.ChatMessage) (*core.ChatMessage, error)

	// RecentMessages retrieves up to limit messages ordered by timestamp,
	// newest first.
	RecentMessages(ctx context.Context, limit int) ([]*core.ChatMessage, error)

	// Close releases repository resources.
	Close() error
}

// FileStore persists uploaded files on behalf of the ingestion pipeline.
type FileStore interface {
	// Write stores the content under a collision-free name derived from
	// originalName. Returns the stored name, the absolute path, and the
	// byte count written.
	Write(originalName string, r io.Reader) (storedName, path string, size int64, err error)

	// Open opens a stored file for reading.
	Open(storedName string) (io.ReadCloser, error)

	// Exists reports whether the stored file is present.
	Exists(storedName string) bool

	// Delete removes a stored file. Deleting an absent file is not an
	// error.
	Delete(storedName string) error
}
