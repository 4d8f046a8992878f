package usecase

import (
	"math"
	"sort"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/shelfmatch/backend/internal/domain"
)

// JaccardSimilarity is |A∩B| / |A∪B| over the token sets of two records.
// Two empty records are identical; one empty record matches nothing.
func JaccardSimilarity(f1, f2 *domain.ProductFeatures) float64 {
	return jaccard(f1.Tokens, f2.Tokens)
}

// CosineSimilarity compares the term-frequency vectors of two records.
func CosineSimilarity(f1, f2 *domain.ProductFeatures) float64 {
	counts1 := termFrequencies(f1.Tokens)
	counts2 := termFrequencies(f2.Tokens)

	if len(counts1) == 0 && len(counts2) == 0 {
		return 1.0
	}

	var dot, mag1, mag2 float64
	for token, c1 := range counts1 {
		dot += float64(c1 * counts2[token])
		mag1 += float64(c1 * c1)
	}
	for _, c2 := range counts2 {
		mag2 += float64(c2 * c2)
	}

	if mag1 == 0 || mag2 == 0 {
		return 0.0
	}
	return clamp01(dot / (math.Sqrt(mag1) * math.Sqrt(mag2)))
}

// LevenshteinSimilarity is 1 - distance/maxLength over normalized descriptions.
func LevenshteinSimilarity(f1, f2 *domain.ProductFeatures) float64 {
	return levenshteinSimilarity(f1.NormalizedDescription, f2.NormalizedDescription)
}

func levenshteinSimilarity(s1, s2 string) float64 {
	if s1 == s2 {
		return 1.0
	}
	if s1 == "" || s2 == "" {
		return 0.0
	}

	distance := levenshtein.ComputeDistance(s1, s2)
	maxLength := max(utf8.RuneCountInString(s1), utf8.RuneCountInString(s2))

	return clamp01(1.0 - float64(distance)/float64(maxLength))
}

// TokenOverlapSimilarity counts the distinct tokens of the first record that
// also occur in the second, relative to the size of the combined vocabulary.
func TokenOverlapSimilarity(f1, f2 *domain.ProductFeatures) float64 {
	if len(f1.Tokens) == 0 && len(f2.Tokens) == 0 {
		return 1.0
	}
	if len(f1.Tokens) == 0 || len(f2.Tokens) == 0 {
		return 0.0
	}

	set1 := toSet(f1.Tokens)
	set2 := toSet(f2.Tokens)

	overlap := 0
	for token := range set1 {
		if _, ok := set2[token]; ok {
			overlap++
		}
	}
	return float64(overlap) / float64(unionSize(set1, set2))
}

// MatchingTokens returns the sorted tokens shared by both records.
func MatchingTokens(f1, f2 *domain.ProductFeatures) []string {
	return intersection(f1.Tokens, f2.Tokens)
}

// MatchingBigrams returns the sorted bigrams shared by both records.
func MatchingBigrams(f1, f2 *domain.ProductFeatures) []string {
	return intersection(f1.Bigrams, f2.Bigrams)
}

func jaccard(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	set1 := toSet(a)
	set2 := toSet(b)

	shared := 0
	for token := range set1 {
		if _, ok := set2[token]; ok {
			shared++
		}
	}
	return float64(shared) / float64(unionSize(set1, set2))
}

func intersection(a, b []string) []string {
	set2 := toSet(b)
	seen := make(map[string]struct{}, len(a))
	shared := make([]string, 0)

	for _, token := range a {
		if _, ok := set2[token]; !ok {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		shared = append(shared, token)
	}

	sort.Strings(shared)
	return shared
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}

func unionSize(set1, set2 map[string]struct{}) int {
	size := len(set1)
	for item := range set2 {
		if _, ok := set1[item]; !ok {
			size++
		}
	}
	return size
}

func termFrequencies(tokens []string) map[string]int {
	counts := make(map[string]int, len(tokens))
	for _, token := range tokens {
		counts[token]++
	}
	return counts
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0.0
	}
	return math.Max(0.0, math.Min(1.0, v))
}
