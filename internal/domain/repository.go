package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations.
// Values are opaque bytes; callers own serialization.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// EmbeddingProvider turns text into a fixed-size dense vector.
type EmbeddingProvider interface {
	Name() string
	Dimension() int
	Encode(ctx context.Context, text string) ([]float32, error)
}

// BatchEmbeddingProvider is implemented by providers that can encode several texts in one call.
type BatchEmbeddingProvider interface {
	EmbeddingProvider
	EncodeBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// HealthChecker is implemented by providers that can report availability before use.
type HealthChecker interface {
	Ping(ctx context.Context) error
}
