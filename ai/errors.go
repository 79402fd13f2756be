package ai

import "errors"

var (
	// ErrModelUnavailable indicates the model service could not be reached
	// or refused the request.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrModelTimeout indicates the model did not respond within the
	// configured deadline.
	ErrModelTimeout = errors.New("model timeout")
)
