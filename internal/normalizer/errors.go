package normalizer

import "errors"

// Errors returned by normalization requests. Upstream embedding
// failures propagate from the embedding package (embedding.ErrTimeout,
// embedding.ErrUnavailable) wrapped with request context.
var (
	// ErrUnknownEntityType indicates a request named an entity type
	// that maps to no configured normalizer. Distinct from a no-match
	// result.
	ErrUnknownEntityType = errors.New("unknown entity type")

	// ErrIndexMismatch indicates a vector index does not align with its
	// catalog (different row counts), a configuration error caught at
	// assembly time.
	ErrIndexMismatch = errors.New("vector index does not match catalog")
)
