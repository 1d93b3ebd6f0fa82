package embedding

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Errors classifying upstream embedding failures. Both are retryable
// from the caller's point of view; the core never retries itself.
var (
	// ErrTimeout indicates the embedding call exceeded its time budget.
	ErrTimeout = errors.New("embedding request timed out")

	// ErrUnavailable indicates the embedding service failed or could
	// not be reached.
	ErrUnavailable = errors.New("embedding service unavailable")
)

// classify wraps a transport error with the matching sentinel so
// callers can test with errors.Is.
func classify(err error, op string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %v", ErrTimeout, op, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %s: %v", ErrTimeout, op, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrUnavailable, op, err)
}
