package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shelfmatch/backend/internal/domain"
)

// HybridWeights are the component weights of the hybrid score.
type HybridWeights struct {
	Embedding  float64 `json:"embedding"`
	TokenRules float64 `json:"tokenRules"`
	Quantity   float64 `json:"quantity"`
	Brand      float64 `json:"brand"`
}

// DefaultHybridWeights returns the weights the hybrid score is tuned with.
func DefaultHybridWeights() HybridWeights {
	return HybridWeights{Embedding: 0.4, TokenRules: 0.35, Quantity: 0.15, Brand: 0.1}
}

// HybridEngine combines embedding similarity with receipt-specific rules.
type HybridEngine struct {
	embedding *EmbeddingScorer
	rules     *RuleScorer
	weights   HybridWeights
	logger    zerolog.Logger
}

// NewHybridEngine creates a hybrid engine with the default weights.
func NewHybridEngine(embedding *EmbeddingScorer, rules *RuleScorer, logger zerolog.Logger) *HybridEngine {
	if rules == nil {
		rules = NewRuleScorer(nil)
	}
	return &HybridEngine{
		embedding: embedding,
		rules:     rules,
		weights:   DefaultHybridWeights(),
		logger:    logger.With().Str("component", "hybrid_engine").Logger(),
	}
}

// Available reports whether embeddings can contribute to the score.
func (h *HybridEngine) Available() bool {
	return h.embedding != nil && h.embedding.Available()
}

// Calculate compares two raw descriptions. It fails only when ctx is already done.
func (h *HybridEngine) Calculate(ctx context.Context, product1, product2 string) (*domain.HybridResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	norm1 := NormalizeRaw(product1)
	norm2 := NormalizeRaw(product2)

	embeddingScore := h.embeddingSimilarity(ctx, norm1, norm2)
	tokenScore, matchingTokens, ruleMatches := h.rules.TokenRuleSimilarity(norm1, norm2)
	quantityScore, quantityMatches := h.rules.QuantitySimilarity(product1, product2)
	brandScore := h.rules.BrandSimilarity(norm1, norm2)

	final := h.weights.Embedding*embeddingScore +
		h.weights.TokenRules*tokenScore +
		h.weights.Quantity*quantityScore +
		h.weights.Brand*brandScore

	result := &domain.HybridResult{
		EmbeddingSimilarity: embeddingScore,
		TokenRuleSimilarity: tokenScore,
		QuantitySimilarity:  quantityScore,
		BrandSimilarity:     brandScore,
		FinalSimilarity:     clamp01(final),
		ConfidenceScore:     Confidence(embeddingScore, tokenScore, quantityScore, brandScore),
		MatchingTokens:      nonNil(matchingTokens),
		DomainTokenMatches:  nonNil(ruleMatches),
		QuantityMatches:     nonNil(quantityMatches),
	}
	result.Explanation = explainHybrid(result)

	h.logger.Debug().
		Str("product1", product1).
		Str("product2", product2).
		Float64("final", result.FinalSimilarity).
		Msg("hybrid similarity")

	return result, nil
}

func (h *HybridEngine) embeddingSimilarity(ctx context.Context, text1, text2 string) float64 {
	if h.embedding == nil || strings.TrimSpace(text1) == "" || strings.TrimSpace(text2) == "" {
		return 0.0
	}
	result := h.embedding.Compare(ctx, text1, text2)
	if !result.Computable {
		return 0.0
	}
	return clamp01(result.FinalScore)
}

func explainHybrid(r *domain.HybridResult) string {
	var parts []string

	switch {
	case r.EmbeddingSimilarity > 0.7:
		parts = append(parts, fmt.Sprintf("High semantic similarity (%.2f)", r.EmbeddingSimilarity))
	case r.EmbeddingSimilarity > 0.4:
		parts = append(parts, fmt.Sprintf("Moderate semantic similarity (%.2f)", r.EmbeddingSimilarity))
	}

	if r.TokenRuleSimilarity > 0.5 && len(r.MatchingTokens) > 0 {
		parts = append(parts, "Similar tokens: "+strings.Join(firstN(r.MatchingTokens, 3), ", "))
	}
	if len(r.DomainTokenMatches) > 0 {
		parts = append(parts, "Domain token patterns: "+strings.Join(firstN(r.DomainTokenMatches, 2), ", "))
	}
	if len(r.QuantityMatches) > 0 {
		parts = append(parts, "Similar quantities: "+strings.Join(r.QuantityMatches, ", "))
	}
	if r.BrandSimilarity > 0.5 {
		parts = append(parts, fmt.Sprintf("Similar brands (%.2f)", r.BrandSimilarity))
	}

	if len(parts) == 0 {
		return "Low overall similarity"
	}
	return strings.Join(parts, "; ")
}

func firstN(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
