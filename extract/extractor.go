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


package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/tmc/langchaingo/documentloaders"
)

// Segment is one ordered unit of extracted text with whatever structural
// metadata the source format exposes.
type Segment struct {
	Content string
	Page    int // 1-based page number when the format has pages, 0 otherwise
}

// supportedExtensions lists the upload formats accepted by the pipeline.
var supportedExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".txt":  true,
	".md":   true,
}

// SupportedExtension reports whether the filename carries an extension the
// extractor can handle. Callers use this for upload-time validation before
// anything is written to storage.
func SupportedExtension(name string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(name))]
}

// Extractor turns a stored file into ordered plain-text segments.
type Extractor struct {
	logger *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
	}
}

// New creates a new extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract reads the file at path and produces its text segments. The
// originalName decides the parser: its extension must be one of
// {pdf, doc, docx, txt, md} or ErrUnsupportedFormat is returned. When the
// parser cannot produce any non-empty text, Extract fails with
// ErrExtraction. The input file is only read, never modified.
func (e *Extractor) Extract(ctx context.Context, path, originalName string) ([]Segment, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !supportedExtensions[ext] {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	var (
		segments []Segment
		err      error
	)

	switch ext {
	case ".pdf":
		segments, err = e.extractPDF(ctx, path)
	case ".docx":
		segments, err = e.extractDocx(path)
	case ".doc":
		segments, err = e.extractDoc(path)
	default: // .txt, .md
		segments, err = e.extractText(ctx, path)
	}
	if err != nil {
		return nil, err
	}

	segments = trimSegments(segments)
	if len(segments) == 0 {
		return nil, fmt.Errorf("%w: no text content in %s", ErrExtraction, originalName)
	}

	e.logger.Debug("extracted document", "file", originalName, "segments", len(segments))
	return segments, nil
}

// extractText loads a plain-text or markdown file as a single segment.
func (e *Extractor) extractText(ctx context.Context, path string) ([]Segment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	defer f.Close()

	docs, err := documentloaders.NewText(f).Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	segments := make([]Segment, 0, len(docs))
	for _, doc := range docs {
		segments = append(segments, Segment{Content: doc.PageContent})
	}
	return segments, nil
}

// extractPDF loads a PDF one segment per page, carrying the page number.
func (e *Extractor) extractPDF(ctx context.Context, path string) ([]Segment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	docs, err := documentloaders.NewPDF(f, info.Size()).Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	segments := make([]Segment, 0, len(docs))
	for i, doc := range docs {
		page := i + 1
		if p, ok := doc.Metadata["page"].(int); ok {
			page = p
		}
		segments = append(segments, Segment{Content: doc.PageContent, Page: page})
	}
	return segments, nil
}

// trimSegments drops segments that are empty after whitespace trimming.
func trimSegments(segments []Segment) []Segment {
	out := segments[:0]
	for _, s := range segments {
		s.Content = strings.TrimSpace(s.Content)
		if s.Content != "" {
			out = append(out, s)
		}
	}
	return out
}
