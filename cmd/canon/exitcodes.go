package main

// Exit codes. A below-threshold match is a normal result and exits 0.
const (
	ExitSuccess     = 0 // Success (including null matches)
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (bad config, missing catalog or index)
	ExitDataError   = 3 // Data error (unknown entity type, malformed input)
	ExitUpstream    = 4 // Embedding service unavailable or timed out (retryable)
)
