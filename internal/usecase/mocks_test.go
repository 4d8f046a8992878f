package usecase

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shelfmatch/backend/internal/domain"
)

var testLogger = zerolog.Nop()

// MockCacheRepository is a mock implementation of domain.CacheRepository
type MockCacheRepository struct {
	mu        sync.Mutex
	data      map[string][]byte
	ttls      map[string]time.Duration
	getError  error
	setError  error
	getCalled int
	setCalled int
}

func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{
		data: make(map[string][]byte),
		ttls: make(map[string]time.Duration),
	}
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalled++
	if m.getError != nil {
		return nil, m.getError
	}
	if value, ok := m.data[key]; ok {
		return value, nil
	}
	return nil, domain.ErrCacheMiss
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCalled++
	if m.setError != nil {
		return m.setError
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok, nil
}

func (m *MockCacheRepository) keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	return keys
}

// MockEmbeddingProvider returns a letter-histogram vector for every text
// unless a vector is registered for it.
type MockEmbeddingProvider struct {
	mu      sync.Mutex
	dim     int
	vectors map[string][]float32
	err     error
	pingErr error
	delay   time.Duration
	calls   int
}

func NewMockEmbeddingProvider(dim int) *MockEmbeddingProvider {
	return &MockEmbeddingProvider{dim: dim, vectors: make(map[string][]float32)}
}

func (m *MockEmbeddingProvider) Name() string   { return "mock" }
func (m *MockEmbeddingProvider) Dimension() int { return m.dim }

func (m *MockEmbeddingProvider) Encode(ctx context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.calls++
	delay, err := m.delay, m.err
	vector, ok := m.vectors[text]
	m.mu.Unlock()

	if delay > 0 {
		// Ignores ctx on purpose to exercise the bounded wait.
		time.Sleep(delay)
	}
	if err != nil {
		return nil, err
	}
	if ok {
		return vector, nil
	}
	return histogram(text, m.dim), nil
}

func (m *MockEmbeddingProvider) Ping(ctx context.Context) error {
	return m.pingErr
}

func (m *MockEmbeddingProvider) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockBatchEmbeddingProvider adds EncodeBatch to MockEmbeddingProvider.
type MockBatchEmbeddingProvider struct {
	*MockEmbeddingProvider
	batchCalls int
}

func (m *MockBatchEmbeddingProvider) EncodeBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.batchCalls++
	err := m.err
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = histogram(text, m.dim)
	}
	return vectors, nil
}

func histogram(text string, dim int) []float32 {
	vector := make([]float32, dim)
	for _, r := range text {
		if r == ' ' {
			continue
		}
		vector[int(r)%dim]++
	}

	var norm float64
	for _, v := range vector {
		norm += float64(v * v)
	}
	if norm == 0 {
		return vector
	}
	norm = math.Sqrt(norm)
	for i := range vector {
		vector[i] = float32(float64(vector[i]) / norm)
	}
	return vector
}

func newTestExtractor() *FeatureExtractor {
	return NewFeatureExtractor(NewNormalizer(nil, testLogger), testLogger)
}

func mustExtract(e *FeatureExtractor, description string) *domain.ProductFeatures {
	f, err := e.Extract(description)
	if err != nil {
		panic(err)
	}
	return f
}
