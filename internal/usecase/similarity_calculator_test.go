package usecase

import (
	"context"
	"testing"

	"github.com/shelfmatch/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSimilarityCalculator(t *testing.T) {
	tests := []struct {
		name      string
		threshold float64
		want      float64
	}{
		{"uses provided threshold", 0.8, 0.8},
		{"uses default when zero", 0, DefaultSimilarityThreshold},
		{"uses default when negative", -1, DefaultSimilarityThreshold},
		{"uses default above one", 1.5, DefaultSimilarityThreshold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewSimilarityCalculator(nil, tt.threshold, testLogger)
			if c.Threshold() != tt.want {
				t.Errorf("Threshold() = %v, want %v", c.Threshold(), tt.want)
			}
		})
	}

	assert.Equal(t, StandaloneWeights, NewSimilarityCalculator(nil, 0, testLogger).weights)
	assert.Equal(t, HybridLexicalWeights, NewSimilarityCalculator(newTestHybrid(nil), 0, testLogger).weights)
}

func TestSimilarityCalculator_Calculate(t *testing.T) {
	ctx := context.Background()
	e := newTestExtractor()

	t.Run("rejects nil features", func(t *testing.T) {
		c := NewSimilarityCalculator(nil, 0, testLogger)
		_, err := c.Calculate(ctx, nil, mustExtract(e, "BANANA"))
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("identity scores one", func(t *testing.T) {
		c := NewSimilarityCalculator(nil, 0, testLogger)
		f := mustExtract(e, "QUEIJO MUSSARELA FATIADO")

		result, err := c.Calculate(ctx, f, f)
		require.NoError(t, err)

		assert.Equal(t, 1.0, result.FinalScore)
		assert.True(t, result.IsMatch)
		assert.True(t, result.CategoryMatch)
		assert.Equal(t, 0.5, result.ConfidenceScore)
		assert.Equal(t, "Traditional algorithms only", result.Explanation)
	})

	t.Run("unit suffix does not break a match", func(t *testing.T) {
		c := NewSimilarityCalculator(nil, 0.8, testLogger)

		result, err := c.Calculate(ctx, mustExtract(e, "BANANA PRATA"), mustExtract(e, "BANANA PRATA KG"))
		require.NoError(t, err)
		assert.True(t, result.IsMatch)
		assert.Equal(t, 1.0, result.FinalScore)
	})

	t.Run("shared token alone is not a match", func(t *testing.T) {
		c := NewSimilarityCalculator(nil, 0.8, testLogger)

		result, err := c.Calculate(ctx, mustExtract(e, "PIZZA ESP VM CARNE D"), mustExtract(e, "GRA CARNE DE SOL"))
		require.NoError(t, err)

		assert.Less(t, result.FinalScore, 0.8)
		assert.False(t, result.IsMatch)
		assert.Equal(t, []string{"CARNE"}, result.MatchingTokens)
	})

	t.Run("stacked penalties clamp at zero", func(t *testing.T) {
		c := NewSimilarityCalculator(nil, 0, testLogger)
		f1 := &domain.ProductFeatures{NormalizedDescription: "A", Tokens: []string{"A"}, Category: "x"}
		f2 := &domain.ProductFeatures{NormalizedDescription: "B", Tokens: []string{"B"}, Category: "y"}

		result, err := c.Calculate(ctx, f1, f2)
		require.NoError(t, err)
		assert.Equal(t, 0.0, result.FinalScore)
	})

	t.Run("hybrid blend stays in range", func(t *testing.T) {
		c := NewSimilarityCalculator(newTestHybrid(NewMockEmbeddingProvider(8)), 0, testLogger)
		require.True(t, c.HybridEnabled())

		pairs := [][2]string{
			{"QJO MUS FAT 150G", "QUEIJO MUSSARELA FATIADO 150G"},
			{"REFRI COCA 2L", "DETERGENTE YPE 500ML"},
			{"BANANA PRATA", "BANANA PRATA"},
		}
		for _, p := range pairs {
			result, err := c.Calculate(ctx, mustExtract(e, p[0]), mustExtract(e, p[1]))
			require.NoError(t, err)
			assert.GreaterOrEqual(t, result.FinalScore, 0.0)
			assert.LessOrEqual(t, result.FinalScore, 1.0)
			assert.NotEqual(t, "Traditional algorithms only", result.Explanation)
		}
	})

	t.Run("hybrid identity scores one", func(t *testing.T) {
		c := NewSimilarityCalculator(newTestHybrid(NewMockEmbeddingProvider(8)), 0, testLogger)
		f := mustExtract(e, "LEITE INTEGRAL 1L")

		result, err := c.Calculate(ctx, f, f)
		require.NoError(t, err)
		assert.Equal(t, 1.0, result.FinalScore)
		assert.Equal(t, 1.0, result.QuantitySimilarity)
	})

	t.Run("hybrid failure falls back to traditional score", func(t *testing.T) {
		c := NewSimilarityCalculator(newTestHybrid(NewMockEmbeddingProvider(8)), 0, testLogger)
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		f := mustExtract(e, "BANANA PRATA")
		result, err := c.Calculate(cancelled, f, f)
		require.NoError(t, err)
		assert.Equal(t, "Traditional algorithms only", result.Explanation)
		assert.Equal(t, 1.0, result.FinalScore)
	})
}
