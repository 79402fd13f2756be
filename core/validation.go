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


package core

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// MaxErrorMessageLen bounds the persisted ingestion error message,
// matching the record store's column budget.
const MaxErrorMessageLen = 1000

// TruncateError bounds an error message to MaxErrorMessageLen bytes,
// backing off to a rune boundary so the result stays valid UTF-8.
func TruncateError(msg string) string {
	if len(msg) <= MaxErrorMessageLen {
		return msg
	}
	cut := MaxErrorMessageLen
	for cut > 0 && !utf8.RuneStart(msg[cut]) {
		cut--
	}
	return msg[:cut]
}

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - Filename and OriginalName must not be empty
//   - Status must be a known ProcessingStatus
//   - UploadedAt must not be in the future
//   - ErrorMessage is only allowed on StatusFailed
//   - ChunkCount is only allowed on StatusCompleted
//
// NOT validated (populated by the ingestion service):
//   - ID (0 is valid from database sequences)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.Filename == "" || doc.OriginalName == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyFilename)
	}

	if err := ValidateStatus(doc.Status); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	if !IsValidTimestamp(doc.UploadedAt) {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrInvalidTimestamp)
	}

	if doc.ErrorMessage != "" && doc.Status != StatusFailed {
		return fmt.Errorf("%w: error message set on status %s", ErrInvalidDocument, doc.Status)
	}

	if doc.ChunkCount != 0 && doc.Status != StatusCompleted {
		return fmt.Errorf("%w: chunk count set on status %s", ErrInvalidDocument, doc.Status)
	}

	return nil
}

// ValidateChatMessage validates a ChatMessage according to domain rules.
//
// Validation rules:
//   - Question and Answer must not be empty
//   - Timestamp must not be in the future
//
// Context may legitimately be empty when no chunk passed the relevance
// threshold.
func ValidateChatMessage(msg *ChatMessage) error {
	if msg == nil {
		return fmt.Errorf("%w: message is nil", ErrInvalidChatMessage)
	}

	if msg.Question == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChatMessage, ErrEmptyQuestion)
	}

	if msg.Answer == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChatMessage, ErrEmptyAnswer)
	}

	if !IsValidTimestamp(msg.Timestamp) {
		return fmt.Errorf("%w: %w", ErrInvalidChatMessage, ErrInvalidTimestamp)
	}

	return nil
}

// ValidateStatus validates that a ProcessingStatus has a known value.
func ValidateStatus(status ProcessingStatus) error {
	switch status {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return nil
	default:
		return fmt.Errorf("%w: value %q", ErrInvalidStatus, string(status))
	}
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
