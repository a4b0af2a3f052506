package extraction

import "errors"

var (
	// ErrUnreadableDocument means the declared format's decoder could not
	// parse the bytes (corrupt, encrypted, empty). Fatal for the request.
	ErrUnreadableDocument = errors.New("unreadable document")

	// ErrUnsupportedMediaType means the declared media type is not on the
	// allow-list (application/pdf or image/*).
	ErrUnsupportedMediaType = errors.New("unsupported media type")

	// ErrNotConfigured means the model-assisted path was selected but no
	// API key is configured. Surfaced before any network call.
	ErrNotConfigured = errors.New("generative model not configured")

	// ErrNoTransactionFound is the image path's "zero results" outcome. It
	// is a legitimate result, distinct from a processing failure.
	ErrNoTransactionFound = errors.New("no transaction found")
)
