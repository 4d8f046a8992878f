package usecase

import (
	"context"
	"testing"

	"github.com/shelfmatch/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHybrid(provider domain.EmbeddingProvider) *HybridEngine {
	scorer := NewEmbeddingScorer(provider, NewMockCacheRepository(), DefaultEmbeddingConfig(), nil, testLogger)
	return NewHybridEngine(scorer, NewRuleScorer(nil), testLogger)
}

func TestHybridEngine_Calculate(t *testing.T) {
	ctx := context.Background()

	t.Run("identical descriptions", func(t *testing.T) {
		h := newTestHybrid(NewMockEmbeddingProvider(8))

		result, err := h.Calculate(ctx, "LEITE INTEGRAL 1L", "LEITE INTEGRAL 1L")
		require.NoError(t, err)

		assert.InDelta(t, 1.0, result.EmbeddingSimilarity, 1e-6)
		assert.Equal(t, 1.0, result.QuantitySimilarity)
		assert.Equal(t, 1.0, result.BrandSimilarity)
		assert.Equal(t, []string{"1l≈1l"}, result.QuantityMatches)
		assert.Greater(t, result.FinalSimilarity, 0.85)
		assert.LessOrEqual(t, result.FinalSimilarity, 1.0)
		assert.Contains(t, result.Explanation, "High semantic similarity")
		assert.Contains(t, result.Explanation, "Similar quantities: 1l≈1l")
	})

	t.Run("without provider embeddings contribute nothing", func(t *testing.T) {
		h := newTestHybrid(nil)
		assert.False(t, h.Available())

		result, err := h.Calculate(ctx, "BANANA PRATA", "BANANA PRATA")
		require.NoError(t, err)
		assert.Zero(t, result.EmbeddingSimilarity)
		assert.LessOrEqual(t, result.FinalSimilarity, 0.6)
	})

	t.Run("weights sum to the final score", func(t *testing.T) {
		h := newTestHybrid(NewMockEmbeddingProvider(8))

		r, err := h.Calculate(ctx, "QJO MUS FAT 150G", "QUEIJO MUSSARELA FATIADO 150G")
		require.NoError(t, err)

		w := DefaultHybridWeights()
		want := w.Embedding*r.EmbeddingSimilarity + w.TokenRules*r.TokenRuleSimilarity +
			w.Quantity*r.QuantitySimilarity + w.Brand*r.BrandSimilarity
		assert.InDelta(t, want, r.FinalSimilarity, 1e-9)
		assert.NotEmpty(t, r.DomainTokenMatches)
	})

	t.Run("done context", func(t *testing.T) {
		h := newTestHybrid(NewMockEmbeddingProvider(8))
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := h.Calculate(cancelled, "A", "B")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestExplainHybrid(t *testing.T) {
	tests := []struct {
		name   string
		result domain.HybridResult
		want   string
	}{
		{
			name:   "nothing notable",
			result: domain.HybridResult{},
			want:   "Low overall similarity",
		},
		{
			name: "every signal",
			result: domain.HybridResult{
				EmbeddingSimilarity: 0.75,
				TokenRuleSimilarity: 0.6,
				BrandSimilarity:     1,
				MatchingTokens:      []string{"a", "b", "c", "d"},
				DomainTokenMatches:  []string{"x↔y", "p↔q", "m↔n"},
				QuantityMatches:     []string{"1l≈1l"},
			},
			want: "High semantic similarity (0.75); Similar tokens: a, b, c; Domain token patterns: x↔y, p↔q; " +
				"Similar quantities: 1l≈1l; Similar brands (1.00)",
		},
		{
			name:   "moderate semantics only",
			result: domain.HybridResult{EmbeddingSimilarity: 0.5},
			want:   "Moderate semantic similarity (0.50)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, explainHybrid(&tt.result))
		})
	}
}
