package domain

// EmbeddingResult holds the vector-space comparison of two descriptions.
type EmbeddingResult struct {
	CosineSimilarity    float64 `json:"cosineSimilarity"`
	EuclideanDistance   float64 `json:"euclideanDistance"`
	ManhattanDistance   float64 `json:"manhattanDistance"`
	NormalizedEuclidean float64 `json:"normalizedEuclidean"`
	NormalizedManhattan float64 `json:"normalizedManhattan"`
	FinalScore          float64 `json:"finalScore"`
	// Computable is false when either vector is all zeros.
	Computable bool `json:"computable"`
}

// HybridResult is the semantic and rule-based comparison of two raw descriptions.
type HybridResult struct {
	EmbeddingSimilarity float64  `json:"embeddingSimilarity"`
	TokenRuleSimilarity float64  `json:"tokenRuleSimilarity"`
	QuantitySimilarity  float64  `json:"quantitySimilarity"`
	BrandSimilarity     float64  `json:"brandSimilarity"`
	FinalSimilarity     float64  `json:"finalSimilarity"`
	ConfidenceScore     float64  `json:"confidenceScore"`
	MatchingTokens      []string `json:"matchingTokens"`
	DomainTokenMatches  []string `json:"domainTokenMatches"`
	QuantityMatches     []string `json:"quantityMatches"`
	Explanation         string   `json:"explanation"`
}

// SimilarityResult is the fused comparison of two feature records.
type SimilarityResult struct {
	Product1 *ProductFeatures `json:"product1"`
	Product2 *ProductFeatures `json:"product2"`

	JaccardScore      float64 `json:"jaccardScore"`
	CosineScore       float64 `json:"cosineScore"`
	LevenshteinScore  float64 `json:"levenshteinScore"`
	TokenOverlapScore float64 `json:"tokenOverlapScore"`

	EmbeddingSimilarity float64 `json:"embeddingSimilarity"`
	TokenRuleSimilarity float64 `json:"tokenRuleSimilarity"`
	QuantitySimilarity  float64 `json:"quantitySimilarity"`
	BrandSimilarity     float64 `json:"brandSimilarity"`

	FinalScore      float64 `json:"finalScore"`
	ConfidenceScore float64 `json:"confidenceScore"`
	IsMatch         bool    `json:"isMatch"`

	MatchingTokens     []string `json:"matchingTokens"`
	MatchingBigrams    []string `json:"matchingBigrams"`
	DomainTokenMatches []string `json:"domainTokenMatches"`
	QuantityMatches    []string `json:"quantityMatches"`
	BrandMatch         bool     `json:"brandMatch"`
	CategoryMatch      bool     `json:"categoryMatch"`
	Explanation        string   `json:"explanation"`
}

// BatchStats reports what a batch comparison did.
type BatchStats struct {
	InputCount    int    `json:"inputCount"`
	FilteredCount int    `json:"filteredCount"`
	TotalPairs    int    `json:"totalPairs"`
	Compared      int    `json:"compared"`
	Skipped       int    `json:"skipped"`
	Failed        int    `json:"failed"`
	FailedChunks  int    `json:"failedChunks"`
	Duplicates    int    `json:"duplicates"`
	Strategy      string `json:"strategy"`
}

// BatchResult is the list of matching pairs plus counters. Results is never nil.
type BatchResult struct {
	Results []*SimilarityResult `json:"results"`
	Stats   BatchStats          `json:"stats"`
}
