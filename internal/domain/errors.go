package domain

import "errors"

var (
	// ErrInvalidInput is returned when a description or request payload is empty or malformed
	ErrInvalidInput = errors.New("invalid input")

	// ErrProviderUnavailable is returned when the embedding provider cannot be reached or initialised
	ErrProviderUnavailable = errors.New("embedding provider unavailable")

	// ErrProviderTimeout is returned when an embedding call exceeds its deadline
	ErrProviderTimeout = errors.New("embedding provider timed out")

	// ErrEmbeddingAPIFailure is returned when the remote embedding API request fails
	ErrEmbeddingAPIFailure = errors.New("embedding API request failed")

	// ErrDimensionMismatch is returned when a provider returns a vector of an unexpected size
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrComputeFailure is returned when a pair or chunk comparison fails
	ErrComputeFailure = errors.New("similarity computation failed")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable is returned when cache service is unavailable
	ErrCacheUnavailable = errors.New("cache service unavailable")
)
