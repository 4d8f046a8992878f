package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shelfmatch/backend/internal/domain"
)

// DefaultSimilarityThreshold is the match threshold when the caller sets none.
const DefaultSimilarityThreshold = 0.60

// LexicalWeights weight the four lexical scores in the traditional score.
type LexicalWeights struct {
	Jaccard      float64 `json:"jaccard"`
	Cosine       float64 `json:"cosine"`
	Levenshtein  float64 `json:"levenshtein"`
	TokenOverlap float64 `json:"tokenOverlap"`
}

var (
	// StandaloneWeights apply when no hybrid engine is active.
	StandaloneWeights = LexicalWeights{Jaccard: 0.3, Cosine: 0.25, Levenshtein: 0.2, TokenOverlap: 0.25}
	// HybridLexicalWeights apply when the traditional score is blended with the hybrid score.
	HybridLexicalWeights = LexicalWeights{Jaccard: 0.4, Cosine: 0.3, Levenshtein: 0.15, TokenOverlap: 0.15}
)

const (
	traditionalBlend = 0.3
	hybridBlend      = 0.7

	brandBonus          = 0.05
	categoryBonus       = 0.10
	coreKeyBonus        = 0.15
	highConfidenceBonus = 0.05

	differentCategoryPenalty = 0.20
	noTokenOverlapPenalty    = 0.10
	lowConfidencePenalty     = 0.05

	coreKeyBonusThreshold = 0.7
	highConfidence        = 0.8
	lowConfidence         = 0.4

	traditionalConfidence  = 0.5
	traditionalExplanation = "Traditional algorithms only"
)

// SimilarityCalculator fuses lexical scores with the optional hybrid score.
// It holds no per-call state and is safe for concurrent use.
type SimilarityCalculator struct {
	hybrid    *HybridEngine
	threshold float64
	weights   LexicalWeights
	logger    zerolog.Logger
}

// NewSimilarityCalculator creates a calculator. A nil hybrid engine selects
// the standalone weights. A threshold outside (0, 1] selects the default.
func NewSimilarityCalculator(hybrid *HybridEngine, threshold float64, logger zerolog.Logger) *SimilarityCalculator {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultSimilarityThreshold
	}

	weights := StandaloneWeights
	if hybrid != nil {
		weights = HybridLexicalWeights
	}

	return &SimilarityCalculator{
		hybrid:    hybrid,
		threshold: threshold,
		weights:   weights,
		logger:    logger.With().Str("component", "similarity_calculator").Logger(),
	}
}

// Threshold returns the match threshold.
func (c *SimilarityCalculator) Threshold() float64 {
	return c.threshold
}

// HybridEnabled reports whether the hybrid score takes part in fusion.
func (c *SimilarityCalculator) HybridEnabled() bool {
	return c.hybrid != nil
}

// IsMatch reports whether a fused score reaches the threshold.
func (c *SimilarityCalculator) IsMatch(score float64) bool {
	return score >= c.threshold
}

// Calculate compares two feature records.
func (c *SimilarityCalculator) Calculate(ctx context.Context, f1, f2 *domain.ProductFeatures) (*domain.SimilarityResult, error) {
	if f1 == nil || f2 == nil {
		return nil, fmt.Errorf("%w: nil product features", domain.ErrInvalidInput)
	}

	result := &domain.SimilarityResult{
		Product1:          f1,
		Product2:          f2,
		JaccardScore:      JaccardSimilarity(f1, f2),
		CosineScore:       CosineSimilarity(f1, f2),
		LevenshteinScore:  LevenshteinSimilarity(f1, f2),
		TokenOverlapScore: TokenOverlapSimilarity(f1, f2),
		MatchingTokens:    MatchingTokens(f1, f2),
		MatchingBigrams:   MatchingBigrams(f1, f2),
		BrandMatch:        f1.Brand != "" && f2.Brand != "" && f1.Brand == f2.Brand,
		CategoryMatch:     f1.Category == f2.Category,

		ConfidenceScore:    traditionalConfidence,
		Explanation:        traditionalExplanation,
		DomainTokenMatches: []string{},
		QuantityMatches:    []string{},
	}

	traditional := c.weights.Jaccard*result.JaccardScore +
		c.weights.Cosine*result.CosineScore +
		c.weights.Levenshtein*result.LevenshteinScore +
		c.weights.TokenOverlap*result.TokenOverlapScore

	score := traditional
	if c.hybrid != nil {
		hybrid, err := c.hybrid.Calculate(ctx, f1.OriginalDescription, f2.OriginalDescription)
		if err != nil {
			c.logger.Error().Err(err).Msg("hybrid similarity failed, using traditional score")
		} else {
			result.EmbeddingSimilarity = hybrid.EmbeddingSimilarity
			result.TokenRuleSimilarity = hybrid.TokenRuleSimilarity
			result.QuantitySimilarity = hybrid.QuantitySimilarity
			result.BrandSimilarity = hybrid.BrandSimilarity
			result.DomainTokenMatches = hybrid.DomainTokenMatches
			result.QuantityMatches = hybrid.QuantityMatches
			result.ConfidenceScore = hybrid.ConfidenceScore
			result.Explanation = hybrid.Explanation
			score = traditionalBlend*traditional + hybridBlend*hybrid.FinalSimilarity
		}
	}

	result.FinalScore = c.adjust(score, result)
	result.IsMatch = c.IsMatch(result.FinalScore)

	c.logger.Debug().
		Str("product1", f1.OriginalDescription).
		Str("product2", f2.OriginalDescription).
		Float64("final", result.FinalScore).
		Float64("confidence", result.ConfidenceScore).
		Msg("similarity calculated")

	return result, nil
}

// adjust applies bonuses then penalties and clamps the result to [0, 1].
func (c *SimilarityCalculator) adjust(score float64, r *domain.SimilarityResult) float64 {
	if r.BrandMatch {
		score += brandBonus
	}
	if r.CategoryMatch {
		score += categoryBonus
	}
	if r.Product1.CoreKey != "" && r.Product2.CoreKey != "" &&
		jaccard(strings.Fields(r.Product1.CoreKey), strings.Fields(r.Product2.CoreKey)) > coreKeyBonusThreshold {
		score += coreKeyBonus
	}
	if r.ConfidenceScore > highConfidence {
		score += highConfidenceBonus
	}

	if !r.CategoryMatch {
		score -= differentCategoryPenalty
	}
	if len(r.MatchingTokens) == 0 {
		score -= noTokenOverlapPenalty
	}
	if r.ConfidenceScore < lowConfidence {
		score -= lowConfidencePenalty
	}

	return clamp01(score)
}
