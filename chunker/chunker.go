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


package chunker

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Pradeep-Chandra-G/Spectron/extract"
)

// ErrEmptyInput is returned when the segment sequence holds no text after
// trimming.
var ErrEmptyInput = errors.New("no input text to chunk")

// Config holds the splitting parameters. All sizes are measured in word
// tokens.
type Config struct {
	// ChunkSize is the target token count per chunk.
	ChunkSize int
	// Overlap is the approximate token count shared by consecutive chunks.
	Overlap int
	// MinChunkSize suppresses fragments below this size, except the final
	// chunk of a document.
	MinChunkSize int
	// MaxChunkSize is a hard upper bound; oversized atomic text is
	// force-split to stay under it.
	MaxChunkSize int
	// KeepSeparator prefers sentence boundaries over mid-sentence splits.
	KeepSeparator bool
}

// DefaultConfig mirrors the splitting parameters the ingestion pipeline was
// tuned with.
func DefaultConfig() Config {
	return Config{
		ChunkSize:     600,
		Overlap:       100,
		MinChunkSize:  5,
		MaxChunkSize:  10000,
		KeepSeparator: true,
	}
}

// Validate checks the configuration for internal consistency.
func (c Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunker config: ChunkSize must be positive, got %d", c.ChunkSize)
	}
	if c.Overlap < 0 {
		return fmt.Errorf("chunker config: Overlap must not be negative, got %d", c.Overlap)
	}
	if c.Overlap >= c.ChunkSize {
		return fmt.Errorf("chunker config: Overlap %d must be smaller than ChunkSize %d", c.Overlap, c.ChunkSize)
	}
	if c.MinChunkSize < 0 {
		return fmt.Errorf("chunker config: MinChunkSize must not be negative, got %d", c.MinChunkSize)
	}
	if c.MaxChunkSize < c.ChunkSize {
		return fmt.Errorf("chunker config: MaxChunkSize %d must not be smaller than ChunkSize %d", c.MaxChunkSize, c.ChunkSize)
	}
	return nil
}

// Piece is one chunk of text ready for tagging and embedding.
type Piece struct {
	Content string
	Page    int // page of the source segment, 0 when the format has no pages
}

// Splitter turns extracted segments into bounded, overlapping pieces.
// Splitting is deterministic: identical input and configuration always
// produce an identical piece sequence, which the stable chunk identifier
// scheme depends on.
type Splitter struct {
	cfg Config
}

// New creates a Splitter with the given configuration.
func New(cfg Config) (*Splitter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Splitter{cfg: cfg}, nil
}

var sentencePattern = regexp.MustCompile(`(?s)[^.!?]+(?:[.!?]+|\z)`)

// Split produces the ordered piece sequence for the given segments.
// Segments never share a chunk: each is split independently, the way page
// boundaries behave in the source document. Returns ErrEmptyInput when the
// segments hold no text.
func (s *Splitter) Split(segments []extract.Segment) ([]Piece, error) {
	var pieces []Piece
	for _, seg := range segments {
		s.splitSegment(seg, &pieces)
	}

	if len(pieces) == 0 {
		return nil, ErrEmptyInput
	}

	// Suppress sub-minimum fragments. The final piece is exempt so short
	// documents still produce output.
	kept := pieces[:0]
	for i, p := range pieces {
		if i == len(pieces)-1 || tokenCount(p.Content) >= s.cfg.MinChunkSize {
			kept = append(kept, p)
		}
	}
	return kept, nil
}

// splitSegment appends the segment's pieces to out.
func (s *Splitter) splitSegment(seg extract.Segment, out *[]Piece) {
	var cur []string // accumulated word tokens

	emit := func() {
		*out = append(*out, Piece{Content: strings.Join(cur, " "), Page: seg.Page})
		cur = overlapTail(cur, s.cfg.Overlap)
	}

	for _, atom := range s.atoms(seg.Content) {
		words := strings.Fields(atom)
		for len(words) > 0 {
			space := s.cfg.MaxChunkSize - len(cur)
			if len(words) <= space {
				cur = append(cur, words...)
				words = nil
			} else {
				// Atom does not fit under the hard bound: force-split it.
				cur = append(cur, words[:space]...)
				words = words[space:]
				emit()
				continue
			}
			if len(cur) >= s.cfg.ChunkSize {
				emit()
			}
		}
	}

	// Flush the tail unless it is nothing but carried-over overlap.
	if len(cur) > 0 && !s.onlyOverlap(cur, out) {
		*out = append(*out, Piece{Content: strings.Join(cur, " "), Page: seg.Page})
	}
}

// atoms returns the indivisible text units the accumulator works with:
// sentences when KeepSeparator is set, otherwise the raw text.
func (s *Splitter) atoms(text string) []string {
	if !s.cfg.KeepSeparator {
		return []string{text}
	}
	found := sentencePattern.FindAllString(text, -1)
	if len(found) == 0 {
		return []string{text}
	}
	return found
}

// onlyOverlap reports whether cur holds exactly the overlap tail of the
// piece just emitted, meaning no new content arrived after the last emit.
func (s *Splitter) onlyOverlap(cur []string, out *[]Piece) bool {
	if len(*out) == 0 || len(cur) > s.cfg.Overlap {
		return false
	}
	last := (*out)[len(*out)-1].Content
	return strings.HasSuffix(last, strings.Join(cur, " "))
}

// overlapTail returns the last n tokens of words as the seed of the next
// chunk.
func overlapTail(words []string, n int) []string {
	if n <= 0 || len(words) == 0 {
		return nil
	}
	if n > len(words) {
		n = len(words)
	}
	tail := make([]string, n)
	copy(tail, words[len(words)-n:])
	return tail
}

func tokenCount(text string) int {
	return len(strings.Fields(text))
}
