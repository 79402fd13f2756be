package vectorstore

import "errors"

var (
	// ErrStoreWrite indicates the backend rejected or failed a write.
	ErrStoreWrite = errors.New("vector store write failed")

	// ErrStoreQuery indicates a similarity query failed.
	ErrStoreQuery = errors.New("vector store query failed")

	// ErrInvalidTopK indicates a query asked for a non-positive result count.
	ErrInvalidTopK = errors.New("topK must be positive")
)
