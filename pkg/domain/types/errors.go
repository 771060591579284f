package types

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors shared across layers. Boundary handlers classify
// failures with errors.Is against these values.
var (
	// ErrValidation indicates a malformed request shape, e.g. a chat
	// history whose last turn is not from the user.
	ErrValidation = goerr.New("validation failed")

	// ErrUnsupportedFormat indicates a file extension outside the
	// parser registry.
	ErrUnsupportedFormat = goerr.New("unsupported file format")

	// ErrModelUnavailable indicates the embedding backend could not be
	// reached or did not return a usable vector.
	ErrModelUnavailable = goerr.New("embedding model unavailable")

	// ErrGenerationBackend indicates the text generation backend is
	// unreachable or returned an error.
	ErrGenerationBackend = goerr.New("generation backend failure")
)
