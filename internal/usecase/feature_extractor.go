package usecase

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/shelfmatch/backend/internal/domain"
)

// Token class patterns
var (
	numericTokenPattern    = regexp.MustCompile(`^\d+$`)
	alphabeticTokenPattern = regexp.MustCompile(`^[A-Za-z]+$`)
	mixedTokenPattern      = regexp.MustCompile(`^.*[A-Za-z].*\d.*$|^.*\d.*[A-Za-z].*$`)
)

// DefaultCoreDuplicateThreshold is the core-key score above which two records
// are reported by FindPotentialDuplicates.
const DefaultCoreDuplicateThreshold = 0.7

// FeatureExtractor turns descriptions into immutable feature records.
type FeatureExtractor struct {
	normalizer *Normalizer
	logger     zerolog.Logger
}

// NewFeatureExtractor creates a feature extractor on top of normalizer.
func NewFeatureExtractor(normalizer *Normalizer, logger zerolog.Logger) *FeatureExtractor {
	return &FeatureExtractor{
		normalizer: normalizer,
		logger:     logger.With().Str("component", "feature_extractor").Logger(),
	}
}

// Extract builds the feature record of one description.
func (e *FeatureExtractor) Extract(description string) (*domain.ProductFeatures, error) {
	if strings.TrimSpace(description) == "" {
		return nil, fmt.Errorf("%w: description cannot be empty", domain.ErrInvalidInput)
	}

	normalized := e.normalizer.Normalize(description)
	tokens := e.extractTokens(normalized)
	basic := e.normalizer.basicFeatures(normalized)

	features := &domain.ProductFeatures{
		OriginalDescription:   description,
		NormalizedDescription: normalized,
		Tokens:                tokens,
		Bigrams:               ngrams(tokens, 2),
		Trigrams:              ngrams(tokens, 3),
		Brand:                 basic.Brand,
		ProductType:           basic.ProductType,
		Category:              basic.Category,
		Variant:               basic.Variant,
		WordCount:             len(tokens),
		CharCount:             utf8.RuneCountInString(normalized),
		NumericTokens:         filterTokens(tokens, numericTokenPattern),
		AlphabeticTokens:      filterTokens(tokens, alphabeticTokenPattern),
		MixedTokens:           filterTokens(tokens, mixedTokenPattern),
		CoreKey:               e.coreKey(tokens),
		VariantKey:            e.variantKey(tokens),
	}
	if len(tokens) > 0 {
		features.FirstWord = tokens[0]
		features.LastWord = tokens[len(tokens)-1]
	}

	e.logger.Debug().Str("description", description).Str("core_key", features.CoreKey).Msg("extracted features")

	return features, nil
}

// ExtractBatch extracts every description, collecting failures instead of stopping.
func (e *FeatureExtractor) ExtractBatch(descriptions []string) *domain.BatchExtraction {
	e.logger.Info().Int("count", len(descriptions)).Msg("extracting features")

	result := &domain.BatchExtraction{
		Features: make([]*domain.ProductFeatures, 0, len(descriptions)),
	}

	for i, desc := range descriptions {
		features, err := e.Extract(desc)
		if err != nil {
			e.logger.Warn().Err(err).Int("index", i).Msg("feature extraction failed")
			result.Failures = append(result.Failures, domain.ExtractionFailure{
				Index:       i,
				Description: desc,
				Error:       err.Error(),
			})
			continue
		}
		result.Features = append(result.Features, features)
	}

	result.Succeeded = len(result.Features)
	result.Failed = len(result.Failures)

	e.logger.Info().Int("succeeded", result.Succeeded).Int("failed", result.Failed).Msg("feature extraction completed")

	return result
}

func (e *FeatureExtractor) extractTokens(normalized string) []string {
	words := strings.Fields(normalized)
	tokens := make([]string, 0, len(words))
	for _, word := range words {
		if e.normalizer.lexicon.IsStopWord(word) {
			continue
		}
		tokens = append(tokens, word)
	}
	return tokens
}

// coreKey joins the sorted core-indicator tokens, falling back to the first
// three tokens when none is present.
func (e *FeatureExtractor) coreKey(tokens []string) string {
	if len(tokens) == 0 {
		return ""
	}

	var core []string
	for _, token := range tokens {
		if e.normalizer.lexicon.IsCoreIndicator(token) {
			core = append(core, token)
		}
	}
	if len(core) == 0 {
		core = append(core, tokens[:min(3, len(tokens))]...)
	}

	sort.Strings(core)
	return strings.Join(core, " ")
}

func (e *FeatureExtractor) variantKey(tokens []string) string {
	var variants []string
	for _, token := range tokens {
		if e.normalizer.lexicon.IsVariantIndicator(token) {
			variants = append(variants, token)
		}
	}
	sort.Strings(variants)
	return strings.Join(variants, " ")
}

func ngrams(tokens []string, n int) []string {
	grams := make([]string, 0)
	for i := 0; i+n <= len(tokens); i++ {
		grams = append(grams, strings.Join(tokens[i:i+n], " "))
	}
	return grams
}

func filterTokens(tokens []string, pattern *regexp.Regexp) []string {
	matched := make([]string, 0)
	for _, token := range tokens {
		if pattern.MatchString(token) {
			matched = append(matched, token)
		}
	}
	return matched
}

// AnalyzeDistribution summarises categories, brands, core keys and sizes of a feature set.
func (e *FeatureExtractor) AnalyzeDistribution(features []*domain.ProductFeatures) domain.FeatureDistribution {
	if len(features) == 0 {
		return domain.FeatureDistribution{}
	}

	categories := make(map[string]int)
	brands := make(map[string]int)
	coreKeys := make(map[string]int)
	stats := domain.WordCountStats{Min: features[0].WordCount, Max: features[0].WordCount}
	totalWords := 0

	for _, f := range features {
		categories[f.Category]++
		if f.Brand != "" {
			brands[f.Brand]++
		}
		if f.CoreKey != "" {
			coreKeys[f.CoreKey]++
		}
		stats.Min = min(stats.Min, f.WordCount)
		stats.Max = max(stats.Max, f.WordCount)
		totalWords += f.WordCount
	}
	stats.Avg = float64(totalWords) / float64(len(features))

	return domain.FeatureDistribution{
		TotalProducts:        len(features),
		CategoryDistribution: frequencies(categories),
		BrandDistribution:    frequencies(brands),
		CoreKeyDistribution:  frequencies(coreKeys),
		WordCount:            stats,
		UniqueCategories:     len(categories),
		UniqueBrands:         len(brands),
		UniqueCoreKeys:       len(coreKeys),
	}
}

// frequencies orders counts by count descending, then value.
func frequencies(counts map[string]int) []domain.Frequency {
	out := make([]domain.Frequency, 0, len(counts))
	for value, count := range counts {
		out = append(out, domain.Frequency{Value: value, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	return out
}

// CoreSimilarity scores two records on core key, tokens and brand only.
// Records from different categories score 0.1.
func CoreSimilarity(f1, f2 *domain.ProductFeatures) float64 {
	if f1.Category != f2.Category {
		return 0.1
	}

	core := jaccard(strings.Fields(f1.CoreKey), strings.Fields(f2.CoreKey))
	tokens := jaccard(f1.Tokens, f2.Tokens)

	brandBonus := 0.0
	if f1.Brand != "" && f1.Brand == f2.Brand {
		brandBonus = 0.1
	}

	return min(core*0.6+tokens*0.3+brandBonus, 1.0)
}

// FindPotentialDuplicates returns every pair whose CoreSimilarity exceeds
// threshold, best first. A non-positive threshold selects the default.
func (e *FeatureExtractor) FindPotentialDuplicates(features []*domain.ProductFeatures, threshold float64) []domain.CorePair {
	if threshold <= 0 {
		threshold = DefaultCoreDuplicateThreshold
	}

	pairs := make([]domain.CorePair, 0)
	for i := 0; i < len(features); i++ {
		for j := i + 1; j < len(features); j++ {
			score := CoreSimilarity(features[i], features[j])
			if score > threshold {
				pairs = append(pairs, domain.CorePair{Product1: features[i], Product2: features[j], Score: score})
			}
		}
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].Score > pairs[j].Score
	})

	e.logger.Info().Int("products", len(features)).Int("pairs", len(pairs)).Msg("core-key duplicate scan completed")

	return pairs
}
