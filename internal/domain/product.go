package domain

// ProductRecord is one input line item. Only Description takes part in matching;
// ID and Attributes travel with the record into groups and singletons.
type ProductRecord struct {
	ID          string            `json:"id,omitempty"`
	Description string            `json:"description"`
	Attributes  map[string]string `json:"attributes,omitempty"`
}

// BasicFeatures is the structured view of a normalized description.
type BasicFeatures struct {
	Brand          string `json:"brand,omitempty"`
	ProductType    string `json:"productType,omitempty"`
	Category       string `json:"category"`
	Variant        string `json:"variant,omitempty"`
	NormalizedText string `json:"normalizedText"`
	WordCount      int    `json:"wordCount"`
	FirstWord      string `json:"firstWord,omitempty"`
	LastWord       string `json:"lastWord,omitempty"`
}

// ProductFeatures is the feature record extracted from one description.
// Values are never mutated after extraction, so they can be shared across goroutines.
type ProductFeatures struct {
	OriginalDescription   string   `json:"originalDescription"`
	NormalizedDescription string   `json:"normalizedDescription"`
	Tokens                []string `json:"tokens"`
	Bigrams               []string `json:"bigrams"`
	Trigrams              []string `json:"trigrams"`

	// Empty string means absent.
	Brand       string `json:"brand,omitempty"`
	ProductType string `json:"productType,omitempty"`
	Category    string `json:"category"`
	Variant     string `json:"variant,omitempty"`

	WordCount int    `json:"wordCount"`
	CharCount int    `json:"charCount"`
	FirstWord string `json:"firstWord,omitempty"`
	LastWord  string `json:"lastWord,omitempty"`

	NumericTokens    []string `json:"numericTokens"`
	AlphabeticTokens []string `json:"alphabeticTokens"`
	MixedTokens      []string `json:"mixedTokens"`

	// CoreKey is empty only when Tokens is empty.
	CoreKey    string `json:"coreKey"`
	VariantKey string `json:"variantKey"`
}

// NormalizationStats summarises how much a batch of descriptions collapses under normalization.
type NormalizationStats struct {
	TotalDescriptions int     `json:"totalDescriptions"`
	OriginalUnique    int     `json:"originalUnique"`
	NormalizedUnique  int     `json:"normalizedUnique"`
	ReductionRatio    float64 `json:"reductionRatio"`
	UniqueBrands      int     `json:"uniqueBrands"`
	UniqueCategories  int     `json:"uniqueCategories"`
	AvgWordCount      float64 `json:"avgWordCount"`
}

// Frequency is one entry of a frequency distribution.
type Frequency struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// WordCountStats holds min/max/avg token counts.
type WordCountStats struct {
	Min int     `json:"min"`
	Max int     `json:"max"`
	Avg float64 `json:"avg"`
}

// FeatureDistribution describes a set of extracted feature records.
type FeatureDistribution struct {
	TotalProducts        int            `json:"totalProducts"`
	CategoryDistribution []Frequency    `json:"categoryDistribution"`
	BrandDistribution    []Frequency    `json:"brandDistribution"`
	CoreKeyDistribution  []Frequency    `json:"coreKeyDistribution"`
	WordCount            WordCountStats `json:"wordCount"`
	UniqueCategories     int            `json:"uniqueCategories"`
	UniqueBrands         int            `json:"uniqueBrands"`
	UniqueCoreKeys       int            `json:"uniqueCoreKeys"`
}

// ExtractionFailure records one description that could not be turned into features.
type ExtractionFailure struct {
	Index       int    `json:"index"`
	Description string `json:"description"`
	Error       string `json:"error"`
}

// BatchExtraction is the outcome of extracting features from many descriptions.
type BatchExtraction struct {
	Features  []*ProductFeatures  `json:"features"`
	Failures  []ExtractionFailure `json:"failures,omitempty"`
	Succeeded int                 `json:"succeeded"`
	Failed    int                 `json:"failed"`
}

// CorePair is a potential duplicate found from core keys alone.
type CorePair struct {
	Product1 *ProductFeatures `json:"product1"`
	Product2 *ProductFeatures `json:"product2"`
	Score    float64          `json:"score"`
}
