package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/shelfmatch/backend/internal/domain"
)

// DefaultEmbeddingDimension is used for zero vectors when no provider is configured.
const DefaultEmbeddingDimension = 512

// EmbeddingConfig holds configuration for the embedding scorer
type EmbeddingConfig struct {
	CacheTTL        time.Duration
	Timeout         time.Duration
	CosineWeight    float64
	EuclideanWeight float64
	ManhattanWeight float64
	EuclideanCap    float64
	ManhattanCap    float64
}

// DefaultEmbeddingConfig returns the standalone lookup settings.
func DefaultEmbeddingConfig() EmbeddingConfig {
	return EmbeddingConfig{
		CacheTTL:        24 * time.Hour,
		Timeout:         5 * time.Second,
		CosineWeight:    0.6,
		EuclideanWeight: 0.2,
		ManhattanWeight: 0.2,
		EuclideanCap:    2.0,
		ManhattanCap:    4.0,
	}
}

func (c EmbeddingConfig) withDefaults() EmbeddingConfig {
	d := DefaultEmbeddingConfig()
	if c.CacheTTL <= 0 {
		c.CacheTTL = d.CacheTTL
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	if c.CosineWeight == 0 && c.EuclideanWeight == 0 && c.ManhattanWeight == 0 {
		c.CosineWeight, c.EuclideanWeight, c.ManhattanWeight = d.CosineWeight, d.EuclideanWeight, d.ManhattanWeight
	}
	if c.EuclideanCap <= 0 {
		c.EuclideanCap = d.EuclideanCap
	}
	if c.ManhattanCap <= 0 {
		c.ManhattanCap = d.ManhattanCap
	}
	return c
}

// SimilarText is a candidate text ranked by embedding similarity.
type SimilarText struct {
	Index int     `json:"index"`
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// EmbeddingScorer embeds descriptions through a provider, caches the vectors
// and compares them. Provider failures degrade to zero vectors.
type EmbeddingScorer struct {
	provider domain.EmbeddingProvider
	cache    domain.CacheRepository
	config   EmbeddingConfig
	metrics  *Metrics
	logger   zerolog.Logger
}

// NewEmbeddingScorer creates an embedding scorer. provider, cache and metrics may be nil.
func NewEmbeddingScorer(
	provider domain.EmbeddingProvider,
	cache domain.CacheRepository,
	config EmbeddingConfig,
	metrics *Metrics,
	logger zerolog.Logger,
) *EmbeddingScorer {
	return &EmbeddingScorer{
		provider: provider,
		cache:    cache,
		config:   config.withDefaults(),
		metrics:  metrics,
		logger:   logger.With().Str("component", "embedding_scorer").Logger(),
	}
}

// Available reports whether a provider is configured.
func (s *EmbeddingScorer) Available() bool {
	return s.provider != nil
}

// Dimension is the length of every vector the scorer returns.
func (s *EmbeddingScorer) Dimension() int {
	if s.provider == nil || s.provider.Dimension() <= 0 {
		return DefaultEmbeddingDimension
	}
	return s.provider.Dimension()
}

// Embedding returns the vector of text, or a zero vector when text is blank
// or the provider fails.
func (s *EmbeddingScorer) Embedding(ctx context.Context, text string) []float32 {
	if strings.TrimSpace(text) == "" || s.provider == nil {
		return make([]float32, s.Dimension())
	}

	cacheKey := s.cacheKey(text)
	if vector, ok := s.fromCache(ctx, cacheKey); ok {
		return vector
	}

	vector, err := s.encode(ctx, text)
	if err != nil {
		s.logger.Warn().Err(err).Str("text", text).Msg("embedding failed, using zero vector")
		return make([]float32, s.Dimension())
	}

	s.toCache(ctx, cacheKey, vector)
	return vector
}

// Embeddings returns one vector per text, encoding cache misses in a single
// provider call when the provider supports batches.
func (s *EmbeddingScorer) Embeddings(ctx context.Context, texts []string) [][]float32 {
	vectors := make([][]float32, len(texts))
	if s.provider == nil {
		for i := range vectors {
			vectors[i] = make([]float32, s.Dimension())
		}
		return vectors
	}

	var missing []int
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			vectors[i] = make([]float32, s.Dimension())
			continue
		}
		if vector, ok := s.fromCache(ctx, s.cacheKey(text)); ok {
			vectors[i] = vector
			continue
		}
		missing = append(missing, i)
	}

	batcher, ok := s.provider.(domain.BatchEmbeddingProvider)
	if !ok || len(missing) < 2 {
		for _, i := range missing {
			vectors[i] = s.Embedding(ctx, texts[i])
		}
		return vectors
	}

	batch := make([]string, len(missing))
	for j, i := range missing {
		batch[j] = texts[i]
	}

	encoded, err := s.encodeBatch(ctx, batcher, batch)
	for j, i := range missing {
		if err != nil {
			vectors[i] = make([]float32, s.Dimension())
			continue
		}
		vectors[i] = encoded[j]
		s.toCache(ctx, s.cacheKey(texts[i]), encoded[j])
	}
	if err != nil {
		s.logger.Warn().Err(err).Int("count", len(batch)).Msg("batch embedding failed, using zero vectors")
	}

	return vectors
}

// Compare embeds both texts and combines cosine, euclidean and manhattan scores.
func (s *EmbeddingScorer) Compare(ctx context.Context, a, b string) domain.EmbeddingResult {
	return CompareVectors(s.Embedding(ctx, a), s.Embedding(ctx, b), s.config)
}

// FindSimilar ranks candidates against target and keeps at most topK scoring
// at least threshold. A non-positive topK keeps every candidate.
func (s *EmbeddingScorer) FindSimilar(ctx context.Context, target string, candidates []string, topK int, threshold float64) []SimilarText {
	targetVector := s.Embedding(ctx, target)
	candidateVectors := s.Embeddings(ctx, candidates)

	similar := make([]SimilarText, 0)
	for i, vector := range candidateVectors {
		result := CompareVectors(targetVector, vector, s.config)
		if result.FinalScore >= threshold {
			similar = append(similar, SimilarText{Index: i, Text: candidates[i], Score: result.FinalScore})
		}
	}

	sort.SliceStable(similar, func(i, j int) bool {
		return similar[i].Score > similar[j].Score
	})
	if topK > 0 && len(similar) > topK {
		similar = similar[:topK]
	}
	return similar
}

// CompareVectors scores two vectors. Vectors of different length are not comparable.
func CompareVectors(v1, v2 []float32, config EmbeddingConfig) domain.EmbeddingResult {
	config = config.withDefaults()
	if len(v1) != len(v2) {
		return domain.EmbeddingResult{}
	}

	var dot, norm1, norm2, squared, absolute float64
	for i := range v1 {
		a, b := float64(v1[i]), float64(v2[i])
		dot += a * b
		norm1 += a * a
		norm2 += b * b
		diff := a - b
		squared += diff * diff
		absolute += math.Abs(diff)
	}

	result := domain.EmbeddingResult{
		EuclideanDistance: math.Sqrt(squared),
		ManhattanDistance: absolute,
		Computable:        norm1 > 0 && norm2 > 0,
	}

	switch {
	case norm1 == 0 && norm2 == 0:
		result.CosineSimilarity = 1.0
	case norm1 == 0 || norm2 == 0:
		result.CosineSimilarity = 0.0
	default:
		result.CosineSimilarity = dot / (math.Sqrt(norm1) * math.Sqrt(norm2))
	}

	result.NormalizedEuclidean = normalizeDistance(result.EuclideanDistance, config.EuclideanCap)
	result.NormalizedManhattan = normalizeDistance(result.ManhattanDistance, config.ManhattanCap)
	result.FinalScore = config.CosineWeight*result.CosineSimilarity +
		config.EuclideanWeight*result.NormalizedEuclidean +
		config.ManhattanWeight*result.NormalizedManhattan

	return result
}

// normalizeDistance maps [0, limit) onto (0, 1]; anything at or past limit is 0.
func normalizeDistance(distance, limit float64) float64 {
	if distance >= limit {
		return 0.0
	}
	return 1.0 - distance/limit
}

// encode calls the provider and gives up after the configured timeout even if
// the provider ignores its context.
func (s *EmbeddingScorer) encode(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	type encoded struct {
		vector []float32
		err    error
	}
	done := make(chan encoded, 1)
	go func() {
		vector, err := s.provider.Encode(ctx, text)
		done <- encoded{vector: vector, err: err}
	}()

	select {
	case <-ctx.Done():
		s.metrics.recordProviderCall(ctx.Err(), true)
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderTimeout, ctx.Err())
	case out := <-done:
		if out.err != nil {
			timedOut := errors.Is(out.err, context.DeadlineExceeded)
			s.metrics.recordProviderCall(out.err, timedOut)
			if timedOut {
				return nil, fmt.Errorf("%w: %v", domain.ErrProviderTimeout, out.err)
			}
			return nil, out.err
		}
		s.metrics.recordProviderCall(nil, false)
		if err := s.checkDimension(out.vector); err != nil {
			return nil, err
		}
		return out.vector, nil
	}
}

func (s *EmbeddingScorer) encodeBatch(ctx context.Context, batcher domain.BatchEmbeddingProvider, texts []string) ([][]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	type encoded struct {
		vectors [][]float32
		err     error
	}
	done := make(chan encoded, 1)
	go func() {
		vectors, err := batcher.EncodeBatch(ctx, texts)
		done <- encoded{vectors: vectors, err: err}
	}()

	select {
	case <-ctx.Done():
		s.metrics.recordProviderCall(ctx.Err(), true)
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderTimeout, ctx.Err())
	case out := <-done:
		s.metrics.recordProviderCall(out.err, errors.Is(out.err, context.DeadlineExceeded))
		if out.err != nil {
			return nil, out.err
		}
		if len(out.vectors) != len(texts) {
			return nil, fmt.Errorf("%w: got %d vectors for %d texts", domain.ErrDimensionMismatch, len(out.vectors), len(texts))
		}
		for _, vector := range out.vectors {
			if err := s.checkDimension(vector); err != nil {
				return nil, err
			}
		}
		return out.vectors, nil
	}
}

func (s *EmbeddingScorer) checkDimension(vector []float32) error {
	if len(vector) != s.Dimension() {
		return fmt.Errorf("%w: got %d, want %d", domain.ErrDimensionMismatch, len(vector), s.Dimension())
	}
	return nil
}

// cacheKey format: "embedding:{provider}:{sha256(text)}"
func (s *EmbeddingScorer) cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("embedding:%s:%s", s.provider.Name(), hex.EncodeToString(sum[:]))
}

func (s *EmbeddingScorer) fromCache(ctx context.Context, key string) ([]float32, bool) {
	if s.cache == nil {
		return nil, false
	}

	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			s.logger.Warn().Err(err).Str("key", key).Msg("embedding cache read failed")
		}
		s.metrics.recordEmbeddingCache(false)
		return nil, false
	}

	var vector []float32
	if err := json.Unmarshal(data, &vector); err != nil || len(vector) != s.Dimension() {
		s.metrics.recordEmbeddingCache(false)
		return nil, false
	}

	s.metrics.recordEmbeddingCache(true)
	return vector, true
}

func (s *EmbeddingScorer) toCache(ctx context.Context, key string, vector []float32) {
	if s.cache == nil {
		return
	}

	data, err := json.Marshal(vector)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.config.CacheTTL); err != nil {
		// Caching is best effort
		s.logger.Warn().Err(err).Str("key", key).Msg("embedding cache write failed")
	}
}
