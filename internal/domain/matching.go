package domain

// Group classifications.
const (
	GroupTypeDuplicate = "duplicate"
	GroupTypeSimilar   = "similar"
)

// MatchGroup is one connected component of matching products.
type MatchGroup struct {
	GroupID               string          `json:"groupId"`
	Type                  string          `json:"type"`
	RepresentativeProduct string          `json:"representativeProduct"`
	Products              []ProductRecord `json:"products"`
	SimilarityScores      []float64       `json:"similarityScores"`
	AvgSimilarity         float64         `json:"avgSimilarity"`
	Size                  int             `json:"size"`
}

// MatchingResults partitions a product list into duplicate groups, similar groups and singletons.
type MatchingResults struct {
	TotalProducts      int             `json:"totalProducts"`
	TotalGroups        int             `json:"totalGroups"`
	DuplicateGroups    []MatchGroup    `json:"duplicateGroups"`
	SimilarGroups      []MatchGroup    `json:"similarGroups"`
	SingletonProducts  []ProductRecord `json:"singletonProducts"`
	DeduplicationRatio float64         `json:"deduplicationRatio"`
	AvgGroupSize       float64         `json:"avgGroupSize"`
	LargestGroupSize   int             `json:"largestGroupSize"`
	Source             string          `json:"source,omitempty"`
}

// SimilarProduct is a candidate ranked against a target product.
type SimilarProduct struct {
	Product ProductRecord     `json:"product"`
	Score   float64           `json:"score"`
	Details *SimilarityResult `json:"details"`
}

// RecommendationSummary is the headline of a deduplication report.
type RecommendationSummary struct {
	TotalProducts       int     `json:"totalProducts"`
	PotentialDuplicates int     `json:"potentialDuplicates"`
	EstimatedReduction  float64 `json:"estimatedReduction"`
	ProductsToReview    int     `json:"productsToReview"`
}

// DeduplicationReport prioritises duplicate groups for review.
type DeduplicationReport struct {
	Summary              RecommendationSummary `json:"summary"`
	HighPriorityGroups   []MatchGroup          `json:"highPriorityGroups"`
	MediumPriorityGroups []MatchGroup          `json:"mediumPriorityGroups"`
	Actions              []string              `json:"actions"`
}
