package core

import (
	"fmt"
	"time"
)

// ID is a unique identifier for domain entities.
// It is generated from database sequences.
type ID uint64

// ProcessingStatus tracks a document through the ingestion pipeline.
// Transitions only move forward: Pending -> Processing -> Completed | Failed.
type ProcessingStatus string

const (
	StatusPending    ProcessingStatus = "PENDING"
	StatusProcessing ProcessingStatus = "PROCESSING"
	StatusCompleted  ProcessingStatus = "COMPLETED"
	StatusFailed     ProcessingStatus = "FAILED"
)

// CanTransitionTo reports whether moving from s to next is a legal
// forward transition. Terminal states admit no transitions.
func (s ProcessingStatus) CanTransitionTo(next ProcessingStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusProcessing
	case StatusProcessing:
		return next == StatusCompleted || next == StatusFailed
	default:
		return false
	}
}

// Terminal reports whether s is a terminal state.
func (s ProcessingStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Document represents one uploaded file and its ingestion state.
// A Document is created in StatusPending at upload time and mutated
// only by the ingestion service that owns its identifier.
type Document struct {
	Id           ID               `json:"id"`
	Filename     string           `json:"filename"` // stored filename, uuid-prefixed
	OriginalName string           `json:"originalName"`
	ContentType  string           `json:"contentType"`
	FileSize     int64            `json:"fileSize"`
	FilePath     string           `json:"filePath"` // immutable once assigned
	UploadedAt   time.Time        `json:"uploadedAt"`
	Status       ProcessingStatus `json:"status"`
	ErrorMessage string           `json:"errorMessage,omitempty"` // set only on StatusFailed
	ChunkCount   int              `json:"chunkCount,omitempty"`   // set only on StatusCompleted
}

// Chunk is a bounded text fragment derived from a Document, the unit
// stored in and retrieved from the vector store.
type Chunk struct {
	ChunkID     string    `json:"chunkId"` // deterministic, see MakeChunkID
	DocumentID  ID        `json:"documentId"`
	Index       int       `json:"chunkIndex"` // 0-based, contiguous per document
	TotalChunks int       `json:"totalChunks"`
	Content     string    `json:"content"`
	FileType    string    `json:"fileType"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

// MakeChunkID derives the stable chunk identifier from the owning
// document and the chunk index. Identical inputs always produce the
// same identifier, which makes re-ingestion an idempotent upsert.
// A negative index is a programming error and panics.
func MakeChunkID(docID ID, index int) string {
	if index < 0 {
		panic(fmt.Sprintf("core: negative chunk index %d for document %d", index, docID))
	}
	return fmt.Sprintf("%d_chunk_%d", docID, index)
}

// ChatMessage is one question/answer exchange. Records are append-only;
// they are never mutated or deleted once persisted.
type ChatMessage struct {
	Id        ID        `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Context   string    `json:"context,omitempty"` // assembled context used for the answer, may be empty
	Timestamp time.Time `json:"timestamp"`
}
