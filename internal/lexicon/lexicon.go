// Package lexicon holds the vocabulary tables used to normalize and compare
// retail product descriptions. A Lexicon is built once and is read-only
// afterwards, so one value can be shared by every scorer and worker.
package lexicon

import (
	"regexp"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Brand maps spelling variants onto one canonical brand token.
type Brand struct {
	Canonical string   `yaml:"canonical"`
	Variants  []string `yaml:"variants"`
}

// Category is a named keyword list. Keywords may span several words.
type Category struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// DomainRule links a receipt abbreviation to the forms it stands for.
type DomainRule struct {
	Key   string   `yaml:"key"`
	Forms []string `yaml:"forms"`
}

// Tables is the raw, unfolded form of a Lexicon. It is also the YAML schema
// accepted by LoadFile.
type Tables struct {
	StopWords         []string            `yaml:"stop_words"`
	CoreIndicators    []string            `yaml:"core_indicators"`
	VariantIndicators []string            `yaml:"variant_indicators"`
	Abbreviations     map[string]string   `yaml:"abbreviations"`
	Brands            []Brand             `yaml:"brands"`
	Categories        []Category          `yaml:"categories"`
	DomainRules       []DomainRule        `yaml:"domain_rules"`
	KnownBrands       []string            `yaml:"known_brands"`
	RelatedCategories map[string][]string `yaml:"related_categories"`
}

type brandPattern struct {
	canonical string
	re        *regexp.Regexp
}

// Lexicon is the folded, indexed form of Tables.
type Lexicon struct {
	stopWords         map[string]struct{}
	coreIndicators    map[string]struct{}
	variantIndicators map[string]struct{}
	categoryWords     map[string]struct{}
	abbreviations     map[string]string
	brands            []Brand
	brandPatterns     []brandPattern
	categories        []Category
	domainRules       []DomainRule
	knownBrands       []string
	relatedCategories map[string][]string
	unitPatterns      []*regexp.Regexp
	quantityPatterns  []*regexp.Regexp
}

var (
	bareNumberRegex = regexp.MustCompile(`\b\d+[.,]?\d*\b`)
	spacesRegex     = regexp.MustCompile(`\s+`)

	defaultOnce    sync.Once
	defaultLexicon *Lexicon
)

// Default returns the built-in lexicon. It is constructed on first use.
func Default() *Lexicon {
	defaultOnce.Do(func() {
		defaultLexicon = New(DefaultTables())
	})
	return defaultLexicon
}

// DefaultTables returns a copy of the built-in tables.
func DefaultTables() Tables {
	t := Tables{
		StopWords:         append([]string(nil), defaultStopWords...),
		CoreIndicators:    append([]string(nil), defaultCoreIndicators...),
		VariantIndicators: append([]string(nil), defaultVariantIndicators...),
		Abbreviations:     make(map[string]string, len(defaultAbbreviations)),
		KnownBrands:       append([]string(nil), defaultKnownBrands...),
		RelatedCategories: make(map[string][]string, len(defaultRelatedCategories)),
	}
	for k, v := range defaultAbbreviations {
		t.Abbreviations[k] = v
	}
	for _, b := range defaultBrands {
		t.Brands = append(t.Brands, Brand{Canonical: b.Canonical, Variants: append([]string(nil), b.Variants...)})
	}
	for _, c := range defaultCategories {
		t.Categories = append(t.Categories, Category{Name: c.Name, Keywords: append([]string(nil), c.Keywords...)})
	}
	for _, r := range defaultDomainRules {
		t.DomainRules = append(t.DomainRules, DomainRule{Key: r.Key, Forms: append([]string(nil), r.Forms...)})
	}
	for k, v := range defaultRelatedCategories {
		t.RelatedCategories[k] = append([]string(nil), v...)
	}
	return t
}

// Extend returns t with the entries of other added. Map entries in other win;
// brands, categories and rules with an existing name are merged into it.
func (t Tables) Extend(other Tables) Tables {
	t.StopWords = append(t.StopWords, other.StopWords...)
	t.CoreIndicators = append(t.CoreIndicators, other.CoreIndicators...)
	t.VariantIndicators = append(t.VariantIndicators, other.VariantIndicators...)
	t.KnownBrands = append(t.KnownBrands, other.KnownBrands...)

	if t.Abbreviations == nil {
		t.Abbreviations = make(map[string]string)
	}
	for k, v := range other.Abbreviations {
		t.Abbreviations[k] = v
	}
	if t.RelatedCategories == nil {
		t.RelatedCategories = make(map[string][]string)
	}
	for k, v := range other.RelatedCategories {
		t.RelatedCategories[k] = append(t.RelatedCategories[k], v...)
	}

	for _, b := range other.Brands {
		merged := false
		for i := range t.Brands {
			if strings.EqualFold(t.Brands[i].Canonical, b.Canonical) {
				t.Brands[i].Variants = append(t.Brands[i].Variants, b.Variants...)
				merged = true
				break
			}
		}
		if !merged {
			t.Brands = append(t.Brands, b)
		}
	}

	for _, c := range other.Categories {
		merged := false
		for i := range t.Categories {
			if strings.EqualFold(t.Categories[i].Name, c.Name) {
				t.Categories[i].Keywords = append(t.Categories[i].Keywords, c.Keywords...)
				merged = true
				break
			}
		}
		if !merged {
			t.Categories = append(t.Categories, c)
		}
	}

	for _, r := range other.DomainRules {
		replaced := false
		for i := range t.DomainRules {
			if strings.EqualFold(t.DomainRules[i].Key, r.Key) {
				t.DomainRules[i].Forms = r.Forms
				replaced = true
				break
			}
		}
		if !replaced {
			t.DomainRules = append(t.DomainRules, r)
		}
	}

	return t
}

// New folds and indexes t. Normalizer tables are folded to upper case, rule
// and brand fragment tables to lower case; diacritics are removed from both.
func New(t Tables) *Lexicon {
	l := &Lexicon{
		stopWords:         toSet(t.StopWords, foldUpper),
		coreIndicators:    toSet(t.CoreIndicators, foldUpper),
		variantIndicators: toSet(t.VariantIndicators, foldUpper),
		categoryWords:     make(map[string]struct{}),
		abbreviations:     make(map[string]string, len(t.Abbreviations)),
		relatedCategories: make(map[string][]string, len(t.RelatedCategories)),
	}

	for k, v := range t.Abbreviations {
		l.abbreviations[foldUpper(k)] = foldUpper(v)
	}

	for _, b := range t.Brands {
		canonical := foldUpper(b.Canonical)
		if canonical == "" {
			continue
		}
		variants := dedupe(append([]string{canonical}, foldAll(b.Variants, foldUpper)...))
		l.brands = append(l.brands, Brand{Canonical: canonical, Variants: variants})
		for _, v := range variants {
			l.brandPatterns = append(l.brandPatterns, brandPattern{
				canonical: canonical,
				re:        regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(v) + `\b`),
			})
		}
	}

	for _, c := range t.Categories {
		keywords := dedupe(foldAll(c.Keywords, foldUpper))
		l.categories = append(l.categories, Category{Name: strings.ToLower(strings.TrimSpace(c.Name)), Keywords: keywords})
		for _, kw := range keywords {
			if !strings.Contains(kw, " ") {
				l.categoryWords[kw] = struct{}{}
			}
		}
	}

	for _, r := range t.DomainRules {
		key := foldLower(r.Key)
		if key == "" {
			continue
		}
		l.domainRules = append(l.domainRules, DomainRule{Key: key, Forms: dedupe(foldAll(r.Forms, foldLower))})
	}

	l.knownBrands = dedupe(foldAll(t.KnownBrands, foldLower))

	for k, v := range t.RelatedCategories {
		l.relatedCategories[foldLower(k)] = foldAll(v, foldLower)
	}

	for _, src := range unitPatternSources {
		l.unitPatterns = append(l.unitPatterns, regexp.MustCompile(src))
	}
	for _, src := range quantityPatternSources {
		l.quantityPatterns = append(l.quantityPatterns, regexp.MustCompile(src))
	}

	return l
}

// StripDiacritics removes combining marks after canonical decomposition.
func StripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// IsStopWord reports whether an upper-case token carries no product meaning.
func (l *Lexicon) IsStopWord(token string) bool {
	_, ok := l.stopWords[token]
	return ok
}

// IsCoreIndicator reports whether token names a product family.
func (l *Lexicon) IsCoreIndicator(token string) bool {
	_, ok := l.coreIndicators[token]
	return ok
}

// IsVariantIndicator reports whether token names a flavour, style, colour or texture.
func (l *Lexicon) IsVariantIndicator(token string) bool {
	_, ok := l.variantIndicators[token]
	return ok
}

// IsCategoryKeyword reports whether word is a single-word keyword of any category.
func (l *Lexicon) IsCategoryKeyword(word string) bool {
	_, ok := l.categoryWords[word]
	return ok
}

// Expand returns the full form of an abbreviated token, or the token itself.
func (l *Lexicon) Expand(token string) string {
	if full, ok := l.abbreviations[token]; ok {
		return full
	}
	return token
}

// CanonicalizeBrands rewrites every known brand variant to its canonical token.
func (l *Lexicon) CanonicalizeBrands(text string) string {
	for _, p := range l.brandPatterns {
		text = p.re.ReplaceAllString(text, p.canonical)
	}
	return text
}

// BrandOf returns the canonical brand of the first table entry with a variant
// among words, or "".
func (l *Lexicon) BrandOf(words []string) string {
	present := make(map[string]struct{}, len(words))
	for _, w := range words {
		present[w] = struct{}{}
	}
	for _, b := range l.brands {
		for _, v := range b.Variants {
			if _, ok := present[v]; ok {
				return b.Canonical
			}
		}
	}
	return ""
}

// CategoryOf returns the first category with a keyword occurring as whole
// words in text, or "other".
func (l *Lexicon) CategoryOf(text string) string {
	padded := " " + text + " "
	for _, c := range l.categories {
		for _, kw := range c.Keywords {
			if strings.Contains(padded, " "+kw+" ") {
				return c.Name
			}
		}
	}
	return "other"
}

// StripUnits removes weight, volume and package quantities and then any bare
// numbers left behind.
func (l *Lexicon) StripUnits(text string) string {
	for _, re := range l.unitPatterns {
		text = re.ReplaceAllString(text, "")
	}
	text = bareNumberRegex.ReplaceAllString(text, "")
	return strings.TrimSpace(spacesRegex.ReplaceAllString(text, " "))
}

// DomainRules returns the abbreviation rules. The slice must not be modified.
func (l *Lexicon) DomainRules() []DomainRule {
	return l.domainRules
}

// Quantities returns every quantity expression in a lower-case description,
// pattern by pattern. The same text may be reported by more than one pattern.
func (l *Lexicon) Quantities(text string) []string {
	var out []string
	for _, re := range l.quantityPatterns {
		out = append(out, re.FindAllString(text, -1)...)
	}
	return out
}

// KnownBrandsIn returns the known brand fragments contained in a lower-case text.
func (l *Lexicon) KnownBrandsIn(text string) []string {
	var out []string
	for _, b := range l.knownBrands {
		if strings.Contains(text, b) {
			out = append(out, b)
		}
	}
	return out
}

// Related reports whether two different categories may still describe the
// same product family.
func (l *Lexicon) Related(cat1, cat2 string) bool {
	c1, c2 := strings.ToLower(cat1), strings.ToLower(cat2)
	return contains(l.relatedCategories[c1], c2) || contains(l.relatedCategories[c2], c1)
}

func foldUpper(s string) string {
	return strings.ToUpper(StripDiacritics(strings.TrimSpace(s)))
}

func foldLower(s string) string {
	return strings.ToLower(StripDiacritics(strings.TrimSpace(s)))
}

func foldAll(in []string, fold func(string) string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if f := fold(s); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func toSet(in []string, fold func(string) string) map[string]struct{} {
	set := make(map[string]struct{}, len(in))
	for _, s := range foldAll(in, fold) {
		set[s] = struct{}{}
	}
	return set
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
