package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shelfmatch/backend/internal/lexicon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEngine(t *testing.T) {
	ctx := context.Background()

	t.Run("hybrid with a healthy provider", func(t *testing.T) {
		engine, err := NewEngine(ctx, nil, NewMockEmbeddingProvider(64), NewMockCacheRepository(), DefaultEngineConfig(), testLogger)
		require.NoError(t, err)

		assert.NotNil(t, engine.Hybrid)
		assert.True(t, engine.Calculator.HybridEnabled())
		assert.True(t, engine.Embeddings.Available())
		assert.Equal(t, DefaultSimilarityThreshold, engine.Calculator.Threshold())
	})

	t.Run("missing provider falls back to lexical", func(t *testing.T) {
		engine, err := NewEngine(ctx, nil, nil, nil, DefaultEngineConfig(), testLogger)
		require.NoError(t, err)

		assert.Nil(t, engine.Hybrid)
		assert.False(t, engine.Calculator.HybridEnabled())
	})

	t.Run("failing health check falls back to lexical", func(t *testing.T) {
		provider := NewMockEmbeddingProvider(64)
		provider.pingErr = errors.New("connection refused")

		engine, err := NewEngine(ctx, nil, provider, nil, DefaultEngineConfig(), testLogger)
		require.NoError(t, err)
		assert.Nil(t, engine.Hybrid)
	})

	t.Run("hybrid disabled by config", func(t *testing.T) {
		cfg := DefaultEngineConfig()
		cfg.UseHybrid = false

		engine, err := NewEngine(ctx, lexicon.Default(), NewMockEmbeddingProvider(64), nil, cfg, testLogger)
		require.NoError(t, err)
		assert.Nil(t, engine.Hybrid)
		assert.True(t, engine.Embeddings.Available())
	})

	t.Run("invalid matcher config", func(t *testing.T) {
		cfg := DefaultEngineConfig()
		cfg.Matcher.MinimumThreshold = 0.99

		_, err := NewEngine(ctx, nil, nil, nil, cfg, testLogger)
		assert.Error(t, err)
	})

	t.Run("representative strategy", func(t *testing.T) {
		cfg := DefaultEngineConfig()
		cfg.UseHybrid = false
		cfg.Representative = "shortest"

		engine, err := NewEngine(ctx, nil, nil, nil, cfg, testLogger)
		require.NoError(t, err)

		results, err := engine.Matcher.Analyze(ctx, records("BANANA PRATA KG", "BANANA PRATA"))
		require.NoError(t, err)
		require.Len(t, results.DuplicateGroups, 1)
		assert.Equal(t, "BANANA PRATA", results.DuplicateGroups[0].RepresentativeProduct)
	})
}

func TestEngine_HybridPipeline(t *testing.T) {
	ctx := context.Background()
	cache := NewMockCacheRepository()

	engine, err := NewEngine(ctx, nil, NewMockEmbeddingProvider(64), cache, DefaultEngineConfig(), testLogger)
	require.NoError(t, err)

	results, err := engine.Matcher.Analyze(ctx, records("LEITE INTEGRAL 1L", "LEITE INTEGRAL 1L", "AMACIANTE 2L"))
	require.NoError(t, err)
	require.Len(t, results.DuplicateGroups, 1)
	assert.Equal(t, 2, results.DuplicateGroups[0].Size)

	snap := engine.Metrics.Snapshot()
	assert.Positive(t, snap.ProviderCalls)
	assert.Positive(t, snap.PairsCompared)
	assert.Equal(t, int64(1), snap.Analyses)

	var embeddingKeys int
	for _, key := range cache.keys() {
		if strings.HasPrefix(key, "embedding:mock:") {
			embeddingKeys++
			assert.Equal(t, DefaultEngineConfig().HybridCacheTTL, cache.ttls[key])
		}
	}
	assert.Positive(t, embeddingKeys)
}
