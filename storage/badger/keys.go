package badger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/Pradeep-Chandra-G/Spectron/core"
)

// Key prefixes for different data types
const (
	documentPrefix     = "docrec"
	documentDatePrefix = "docrecd"
	documentIDSeq      = "docrecseq"
	chatMessagePrefix  = "chamsg"
	chatMessageDate    = "chamsgd"
	chatMessageIDSeq   = "chamsgseq"
)

// makeDocumentKey generates a key for a document record by ID.
func makeDocumentKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", documentPrefix, id))
}

// makeDocumentDateKey generates a composite key for the document date index.
// Format: prefix:timestamp:id
func makeDocumentDateKey(timestamp time.Time, id core.ID) []byte {
	return makeDateKey(documentDatePrefix, timestamp, id)
}

// makeChatMessageKey generates a key for a chat message by ID.
func makeChatMessageKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", chatMessagePrefix, id))
}

// makeChatMessageDateKey generates a composite key for the message date index.
// Format: prefix:timestamp:id
func makeChatMessageDateKey(timestamp time.Time, id core.ID) []byte {
	return makeDateKey(chatMessageDate, timestamp, id)
}

// makeDateKey builds a composite date-index key.
// Format: prefix:timestamp:id
func makeDateKey(prefix string, timestamp time.Time, id core.ID) []byte {
	prefixBytes := []byte(prefix + ":")
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 16 // 8 bytes for timestamp + 8 bytes for ID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialDateKey generates a partial key for date range scans.
// Format: prefix:timestamp
func makePartialDateKey(prefix string, timestamp time.Time) []byte {
	prefixBytes := []byte(prefix + ":")
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8 // 8 bytes for timestamp
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	return buf
}

// maxDateSeekKey is the upper bound used to start reverse scans over a date
// index.
func maxDateSeekKey(prefix string) []byte {
	return makePartialDateKey(prefix, time.Date(9999, 12, 31, 23, 59, 59, 999999999, time.UTC))
}
