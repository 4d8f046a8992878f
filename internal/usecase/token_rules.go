package usecase

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/shelfmatch/backend/internal/lexicon"
)

var (
	hybridDisallowedPattern = regexp.MustCompile(`[^\p{L}\p{N}_\s'"/\\.-]`)
	quantityPartsPattern    = regexp.MustCompile(`^(\d+)\s*([a-z']+)`)
)

// maxQuantityDelta is the largest numeric difference between two quantities
// of the same unit that still counts as a match.
const maxQuantityDelta = 2

// RuleScorer compares raw descriptions with receipt abbreviation rules,
// quantities and known brand fragments.
type RuleScorer struct {
	lexicon *lexicon.Lexicon
}

// NewRuleScorer creates a rule scorer. A nil lexicon selects the built-in tables.
func NewRuleScorer(lex *lexicon.Lexicon) *RuleScorer {
	if lex == nil {
		lex = lexicon.Default()
	}
	return &RuleScorer{lexicon: lex}
}

// NormalizeRaw lower-cases text, strips accents and replaces everything but
// letters, digits and quantity punctuation with spaces.
func NormalizeRaw(text string) string {
	text = strings.Join(strings.Fields(strings.ToLower(text)), " ")
	text = lexicon.StripDiacritics(text)
	return hybridDisallowedPattern.ReplaceAllString(text, " ")
}

// TokenRuleSimilarity blends token Jaccard with abbreviation rule hits. It
// returns the score, the shared tokens and the rule matches as "a↔b".
func (r *RuleScorer) TokenRuleSimilarity(text1, text2 string) (float64, []string, []string) {
	tokens1 := sortedSet(strings.Fields(text1))
	tokens2 := sortedSet(strings.Fields(text2))
	if len(tokens1) == 0 || len(tokens2) == 0 {
		return 0.0, nil, nil
	}

	common := intersection(tokens1, tokens2)
	union := unionSize(toSet(tokens1), toSet(tokens2))
	jaccardScore := 1.0
	if union > 0 {
		jaccardScore = float64(len(common)) / float64(union)
	}

	var ruleMatches []string
	comparisons := 0
	for _, t1 := range tokens1 {
		for _, t2 := range tokens2 {
			comparisons++
			if r.ruleMatch(t1, t2) {
				ruleMatches = append(ruleMatches, t1+"↔"+t2)
				break
			}
		}
	}

	ruleScore := 0.0
	if comparisons > 0 {
		ruleScore = float64(len(ruleMatches)) / float64(comparisons)
	}

	return clamp01(0.6*jaccardScore + 0.4*ruleScore), common, ruleMatches
}

// ruleMatch is true when some rule links the tokens directly or both tokens
// contain one of the rule's forms.
func (r *RuleScorer) ruleMatch(t1, t2 string) bool {
	for _, rule := range r.lexicon.DomainRules() {
		in1 := containsForm(t1, rule.Forms)
		in2 := containsForm(t2, rule.Forms)
		if (t1 == rule.Key && in2) || (t2 == rule.Key && in1) || (in1 && in2) {
			return true
		}
	}
	return false
}

func containsForm(token string, forms []string) bool {
	for _, form := range forms {
		if strings.Contains(token, form) {
			return true
		}
	}
	return false
}

// QuantitySimilarity compares the quantity expressions found in two raw
// descriptions. Two descriptions without quantities are fully similar.
func (r *RuleScorer) QuantitySimilarity(raw1, raw2 string) (float64, []string) {
	q1 := sortedSet(r.lexicon.Quantities(strings.ToLower(raw1)))
	q2 := sortedSet(r.lexicon.Quantities(strings.ToLower(raw2)))

	if len(q1) == 0 && len(q2) == 0 {
		return 1.0, nil
	}
	if len(q1) == 0 || len(q2) == 0 {
		return 0.0, nil
	}

	var matches []string
	for _, a := range q1 {
		for _, b := range q2 {
			if quantitiesMatch(a, b) {
				matches = append(matches, a+"≈"+b)
			}
		}
	}

	total := unionSize(toSet(q1), toSet(q2))
	return clamp01(float64(len(matches)) / float64(total)), matches
}

func quantitiesMatch(q1, q2 string) bool {
	a := strings.Join(strings.Fields(q1), "")
	b := strings.Join(strings.Fields(q2), "")
	if a == b {
		return true
	}

	m1 := quantityPartsPattern.FindStringSubmatch(q1)
	m2 := quantityPartsPattern.FindStringSubmatch(q2)
	if m1 == nil || m2 == nil || m1[2] != m2[2] {
		return false
	}

	n1, err1 := strconv.Atoi(m1[1])
	n2, err2 := strconv.Atoi(m2[1])
	if err1 != nil || err2 != nil {
		return false
	}
	return math.Abs(float64(n1-n2)) <= maxQuantityDelta
}

// BrandSimilarity is the Jaccard index of the known brand fragments in two
// normalized texts. Texts with no brand fragment are fully similar.
func (r *RuleScorer) BrandSimilarity(text1, text2 string) float64 {
	b1 := sortedSet(r.lexicon.KnownBrandsIn(text1))
	b2 := sortedSet(r.lexicon.KnownBrandsIn(text2))

	if len(b1) == 0 && len(b2) == 0 {
		return 1.0
	}
	if len(b1) == 0 || len(b2) == 0 {
		return 0.0
	}
	return jaccard(b1, b2)
}

// Confidence is high when the scores are high and agree with each other.
func Confidence(scores ...float64) float64 {
	if len(scores) == 0 {
		return 0.0
	}

	mean := 0.0
	for _, s := range scores {
		mean += s
	}
	mean /= float64(len(scores))

	variance := 0.0
	for _, s := range scores {
		variance += (s - mean) * (s - mean)
	}
	stddev := math.Sqrt(variance / float64(len(scores)))

	return clamp01(mean * (1 - stddev))
}

func sortedSet(items []string) []string {
	set := toSet(items)
	out := make([]string, 0, len(set))
	for item := range set {
		out = append(out, item)
	}
	sort.Strings(out)
	return out
}
