package usecase

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shelfmatch/backend/internal/domain"
	"github.com/shelfmatch/backend/internal/lexicon"
)

// Compiled regex patterns for description cleaning
var (
	// Anything that is not a letter, digit, underscore, whitespace or hyphen
	specialCharsPattern = regexp.MustCompile(`[^\p{L}\p{N}_\s-]`)

	// Multiple spaces cleanup
	multiSpacePattern = regexp.MustCompile(`\s+`)
)

// Normalizer canonicalizes raw receipt descriptions so that textual variants
// of the same product converge. It is safe for concurrent use.
type Normalizer struct {
	lexicon *lexicon.Lexicon
	logger  zerolog.Logger
}

// NewNormalizer creates a normalizer backed by lex. A nil lexicon selects the built-in tables.
func NewNormalizer(lex *lexicon.Lexicon, logger zerolog.Logger) *Normalizer {
	if lex == nil {
		lex = lexicon.Default()
	}
	return &Normalizer{
		lexicon: lex,
		logger:  logger.With().Str("component", "normalizer").Logger(),
	}
}

// Lexicon returns the tables the normalizer was built with.
func (n *Normalizer) Lexicon() *lexicon.Lexicon {
	return n.lexicon
}

// Normalize canonicalizes a description with brand standardization enabled.
func (n *Normalizer) Normalize(description string) string {
	return n.NormalizeWithOptions(description, true)
}

// NormalizeWithOptions canonicalizes a description. Each stage runs over the
// whole text before the next one starts.
func (n *Normalizer) NormalizeWithOptions(description string, preserveBrand bool) string {
	if strings.TrimSpace(description) == "" {
		return ""
	}

	// Step 1: Upper case, strip diacritics and special characters
	normalized := cleanText(description)

	// Step 2: Remove units, quantities and bare numbers
	normalized = n.lexicon.StripUnits(normalized)

	// Step 3: Expand abbreviations token by token
	normalized = n.expandAbbreviations(normalized)

	// Step 4: Canonicalize brand variants
	if preserveBrand {
		normalized = n.lexicon.CanonicalizeBrands(normalized)
	}

	// Step 5: Final whitespace cleanup
	normalized = strings.Join(strings.Fields(normalized), " ")

	n.logger.Debug().Str("input", description).Str("output", normalized).Msg("normalized description")

	return normalized
}

// cleanText upper-cases, removes combining marks and replaces punctuation with spaces.
func cleanText(text string) string {
	text = lexicon.StripDiacritics(strings.ToUpper(text))
	text = specialCharsPattern.ReplaceAllString(text, " ")
	text = multiSpacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

func (n *Normalizer) expandAbbreviations(text string) string {
	words := strings.Fields(text)
	for i, word := range words {
		words[i] = n.lexicon.Expand(word)
	}
	return strings.Join(words, " ")
}

// ExtractBasicFeatures derives brand, product type, category and variant from a description.
func (n *Normalizer) ExtractBasicFeatures(description string) domain.BasicFeatures {
	normalized := n.Normalize(description)
	return n.basicFeatures(normalized)
}

func (n *Normalizer) basicFeatures(normalized string) domain.BasicFeatures {
	words := strings.Fields(normalized)

	features := domain.BasicFeatures{
		Brand:          n.extractBrand(words),
		ProductType:    n.extractProductType(words),
		Category:       n.lexicon.CategoryOf(normalized),
		Variant:        extractVariant(words),
		NormalizedText: normalized,
		WordCount:      len(words),
	}
	if len(words) > 0 {
		features.FirstWord = words[0]
		features.LastWord = words[len(words)-1]
	}
	return features
}

// extractBrand returns the first recognized brand, or the leading word when
// the description has more than one word.
func (n *Normalizer) extractBrand(words []string) string {
	if len(words) == 0 {
		return ""
	}
	if brand := n.lexicon.BrandOf(words); brand != "" {
		return brand
	}
	if len(words) > 1 {
		return words[0]
	}
	return ""
}

// extractProductType returns the first category keyword after the brand position.
func (n *Normalizer) extractProductType(words []string) string {
	if len(words) == 0 {
		return ""
	}
	if len(words) < 2 {
		return words[0]
	}
	for _, word := range words[1:] {
		if n.lexicon.IsCategoryKeyword(word) {
			return word
		}
	}
	return words[1]
}

func extractVariant(words []string) string {
	if len(words) <= 2 {
		return ""
	}
	return strings.Join(words[2:], " ")
}

// SimpleSimilarity is the word-set Jaccard of two descriptions after normalization.
func (n *Normalizer) SimpleSimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0.0
	}

	norm1 := n.Normalize(a)
	norm2 := n.Normalize(b)
	if norm1 == norm2 {
		return 1.0
	}

	words1 := strings.Fields(norm1)
	words2 := strings.Fields(norm2)
	if len(words1) == 0 || len(words2) == 0 {
		return 0.0
	}
	return jaccard(words1, words2)
}

// Stats reports how much a batch of descriptions collapses after normalization.
func (n *Normalizer) Stats(descriptions []string) domain.NormalizationStats {
	if len(descriptions) == 0 {
		return domain.NormalizationStats{}
	}

	originals := make(map[string]struct{}, len(descriptions))
	normalized := make(map[string]struct{}, len(descriptions))
	brands := make(map[string]struct{})
	categories := make(map[string]struct{})
	totalWords := 0

	for _, desc := range descriptions {
		originals[desc] = struct{}{}

		features := n.ExtractBasicFeatures(desc)
		normalized[features.NormalizedText] = struct{}{}
		if features.Brand != "" {
			brands[features.Brand] = struct{}{}
		}
		if features.Category != "" {
			categories[features.Category] = struct{}{}
		}
		totalWords += features.WordCount
	}

	stats := domain.NormalizationStats{
		TotalDescriptions: len(descriptions),
		OriginalUnique:    len(originals),
		NormalizedUnique:  len(normalized),
		UniqueBrands:      len(brands),
		UniqueCategories:  len(categories),
		AvgWordCount:      float64(totalWords) / float64(len(descriptions)),
	}
	if stats.OriginalUnique > 0 {
		stats.ReductionRatio = float64(stats.OriginalUnique-stats.NormalizedUnique) / float64(stats.OriginalUnique)
	}
	return stats
}
