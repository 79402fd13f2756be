package extract

import "errors"

var (
	// ErrUnsupportedFormat is returned when the file extension is not one of
	// the supported document formats.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrExtraction is returned when no text could be extracted from the
	// file (corrupt, encrypted or empty input).
	ErrExtraction = errors.New("text extraction failed")
)
