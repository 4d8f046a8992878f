package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/shelfmatch/backend/internal/domain"
)

const (
	defaultSimilarLimit = 10

	highPrioritySimilarity = 0.9
	highPriorityMinSize    = 2
	significantReduction   = 0.1

	SourceCache    = "cache"
	SourceComputed = "computed"
)

// MatcherConfig holds the clustering thresholds.
type MatcherConfig struct {
	DuplicateThreshold float64
	SimilarThreshold   float64
	MinimumThreshold   float64
	UseParallel        bool
	MaxWorkers         int
	CacheTTL           time.Duration
}

// DefaultMatcherConfig returns the default tiers: duplicate 0.85, similar 0.65, minimum 0.30.
func DefaultMatcherConfig() MatcherConfig {
	return MatcherConfig{
		DuplicateThreshold: 0.85,
		SimilarThreshold:   0.65,
		MinimumThreshold:   0.30,
		UseParallel:        true,
		CacheTTL:           time.Hour,
	}
}

// Validate checks that the tiers are ordered and inside (0, 1].
func (c MatcherConfig) Validate() error {
	for name, v := range map[string]float64{
		"duplicate": c.DuplicateThreshold,
		"similar":   c.SimilarThreshold,
		"minimum":   c.MinimumThreshold,
	} {
		if v <= 0 || v > 1 {
			return fmt.Errorf("%w: %s threshold %.2f outside (0, 1]", domain.ErrInvalidInput, name, v)
		}
	}
	if c.DuplicateThreshold < c.SimilarThreshold || c.SimilarThreshold < c.MinimumThreshold {
		return fmt.Errorf("%w: thresholds must satisfy duplicate >= similar >= minimum", domain.ErrInvalidInput)
	}
	return nil
}

// ProductMatcher groups product lists into duplicates, similar products and singletons.
type ProductMatcher struct {
	extractor *FeatureExtractor
	batch     *BatchMatcher
	selector  RepresentativeSelector
	cache     domain.CacheRepository
	config    MatcherConfig
	metrics   *Metrics
	logger    zerolog.Logger
}

// NewProductMatcher creates a product matcher. cache and metrics may be nil;
// a nil selector selects FirstMember.
func NewProductMatcher(
	extractor *FeatureExtractor,
	batch *BatchMatcher,
	cache domain.CacheRepository,
	selector RepresentativeSelector,
	config MatcherConfig,
	metrics *Metrics,
	logger zerolog.Logger,
) (*ProductMatcher, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.CacheTTL <= 0 {
		config.CacheTTL = time.Hour
	}
	if selector == nil {
		selector = FirstMember{}
	}

	return &ProductMatcher{
		extractor: extractor,
		batch:     batch,
		selector:  selector,
		cache:     cache,
		config:    config,
		metrics:   metrics,
		logger:    logger.With().Str("component", "product_matcher").Logger(),
	}, nil
}

// Config returns the thresholds in use.
func (m *ProductMatcher) Config() MatcherConfig {
	return m.config
}

// Analyze partitions products into duplicate groups, similar groups and
// singletons. Every product lands in exactly one of the three.
// Flow: check cache -> extract -> batch compare -> cluster -> cache -> return
func (m *ProductMatcher) Analyze(ctx context.Context, products []domain.ProductRecord) (*domain.MatchingResults, error) {
	if len(products) == 0 {
		return nil, fmt.Errorf("%w: product list cannot be empty", domain.ErrInvalidInput)
	}

	m.logger.Info().Int("products", len(products)).Msg("starting product analysis")

	cacheKey := m.analysisCacheKey(products)
	if cached, err := m.getFromCache(ctx, cacheKey); err == nil {
		cached.Source = SourceCache
		m.metrics.recordAnalysis(true)
		m.logger.Info().Msg("using cached analysis results")
		return cached, nil
	}

	features := m.extract(products)
	batch := m.batch.CalculateBatch(ctx, compact(features), BatchConfig{
		Threshold:   m.config.MinimumThreshold,
		UseParallel: m.config.UseParallel,
		MaxWorkers:  m.config.MaxWorkers,
	})

	results := m.group(products, features, batch.Results)
	results.Source = SourceComputed
	m.metrics.recordAnalysis(false)

	if err := m.setInCache(ctx, cacheKey, results); err != nil {
		// Log but don't fail if caching fails
		m.logger.Warn().Err(err).Msg("failed to cache analysis results")
	}

	m.logger.Info().
		Int("duplicate_groups", len(results.DuplicateGroups)).
		Int("similar_groups", len(results.SimilarGroups)).
		Int("singletons", len(results.SingletonProducts)).
		Msg("analysis complete")

	return results, nil
}

// FindDuplicatesOnly groups products linked by high-confidence duplicate pairs.
func (m *ProductMatcher) FindDuplicatesOnly(ctx context.Context, products []domain.ProductRecord) ([]domain.MatchGroup, error) {
	if len(products) == 0 {
		return nil, fmt.Errorf("%w: product list cannot be empty", domain.ErrInvalidInput)
	}

	features := m.extract(products)
	pairs := m.batch.FindDuplicates(ctx, compact(features), BatchConfig{
		Threshold:   m.config.DuplicateThreshold,
		UseParallel: m.config.UseParallel,
		MaxWorkers:  m.config.MaxWorkers,
	})

	graph := newProductGraph(features)
	graph.link(pairs)

	groups := make([]domain.MatchGroup, 0)
	for _, component := range graph.components() {
		if len(component) < 2 {
			continue
		}
		group := m.newGroup(fmt.Sprintf("duplicate_group_%d", len(groups)), products, component, graph.scoresWithin(component, pairs))
		group.Type = domain.GroupTypeDuplicate
		groups = append(groups, group)
	}

	m.logger.Info().Int("groups", len(groups)).Msg("duplicate groups found")
	return groups, nil
}

// FindSimilarToProduct ranks candidates by similarity to target and returns
// at most limit products scoring above the minimum threshold.
func (m *ProductMatcher) FindSimilarToProduct(ctx context.Context, target domain.ProductRecord, candidates []domain.ProductRecord, limit int) ([]domain.SimilarProduct, error) {
	targetFeatures, err := m.extractor.Extract(target.Description)
	if err != nil {
		return nil, fmt.Errorf("target product: %w", err)
	}
	if limit <= 0 {
		limit = defaultSimilarLimit
	}

	calculator := m.batch.calculator
	similar := make([]domain.SimilarProduct, 0)
	for i, f := range m.extract(candidates) {
		if f == nil {
			continue
		}
		result, err := calculator.Calculate(ctx, targetFeatures, f)
		if err != nil {
			continue
		}
		if result.FinalScore > m.config.MinimumThreshold {
			similar = append(similar, domain.SimilarProduct{Product: candidates[i], Score: result.FinalScore, Details: result})
		}
	}

	sort.SliceStable(similar, func(i, j int) bool {
		return similar[i].Score > similar[j].Score
	})
	if len(similar) > limit {
		similar = similar[:limit]
	}

	m.logger.Info().Str("target", target.Description).Int("found", len(similar)).Msg("similar products found")
	return similar, nil
}

// Recommendations turns an analysis into a prioritised review list.
func (m *ProductMatcher) Recommendations(ctx context.Context, products []domain.ProductRecord) (*domain.DeduplicationReport, error) {
	results, err := m.Analyze(ctx, products)
	if err != nil {
		return nil, err
	}

	report := &domain.DeduplicationReport{
		Summary: domain.RecommendationSummary{
			TotalProducts:       results.TotalProducts,
			PotentialDuplicates: len(results.DuplicateGroups),
			EstimatedReduction:  results.DeduplicationRatio,
		},
		HighPriorityGroups:   []domain.MatchGroup{},
		MediumPriorityGroups: []domain.MatchGroup{},
		Actions:              []string{},
	}

	for _, group := range results.DuplicateGroups {
		report.Summary.ProductsToReview += group.Size
		if group.AvgSimilarity > highPrioritySimilarity && group.Size > highPriorityMinSize {
			report.HighPriorityGroups = append(report.HighPriorityGroups, group)
		} else {
			report.MediumPriorityGroups = append(report.MediumPriorityGroups, group)
		}
	}

	if len(report.HighPriorityGroups) > 0 {
		report.Actions = append(report.Actions, "Review high-priority groups first - these are likely true duplicates")
	}
	if len(report.MediumPriorityGroups) > 0 {
		report.Actions = append(report.Actions, "Medium-priority groups may be variants of the same product")
	}
	if results.DeduplicationRatio > significantReduction {
		report.Actions = append(report.Actions,
			fmt.Sprintf("Significant deduplication opportunity: %.1f%% reduction possible", results.DeduplicationRatio*100))
	}

	return report, nil
}

// extract returns one entry per product; nil marks a product that could not be extracted.
func (m *ProductMatcher) extract(products []domain.ProductRecord) []*domain.ProductFeatures {
	features := make([]*domain.ProductFeatures, len(products))
	failed := 0
	for i, p := range products {
		f, err := m.extractor.Extract(p.Description)
		if err != nil {
			m.logger.Warn().Err(err).Str("id", p.ID).Int("index", i).Msg("skipping product")
			failed++
			continue
		}
		features[i] = f
	}
	if failed > 0 {
		m.logger.Warn().Int("failed", failed).Msg("failed to extract features from some products")
	}
	return features
}

func compact(features []*domain.ProductFeatures) []*domain.ProductFeatures {
	out := make([]*domain.ProductFeatures, 0, len(features))
	for _, f := range features {
		if f != nil {
			out = append(out, f)
		}
	}
	return out
}

func (m *ProductMatcher) group(products []domain.ProductRecord, features []*domain.ProductFeatures, pairs []*domain.SimilarityResult) *domain.MatchingResults {
	graph := newProductGraph(features)
	graph.link(pairs)

	results := &domain.MatchingResults{
		TotalProducts:     len(products),
		DuplicateGroups:   []domain.MatchGroup{},
		SimilarGroups:     []domain.MatchGroup{},
		SingletonProducts: []domain.ProductRecord{},
	}

	for _, component := range graph.components() {
		if len(component) == 1 {
			results.SingletonProducts = append(results.SingletonProducts, products[component[0]])
			continue
		}

		id := fmt.Sprintf("group_%d", len(results.DuplicateGroups)+len(results.SimilarGroups))
		group := m.newGroup(id, products, component, graph.scoresWithin(component, pairs))
		if group.AvgSimilarity >= m.config.DuplicateThreshold {
			group.Type = domain.GroupTypeDuplicate
			results.DuplicateGroups = append(results.DuplicateGroups, group)
		} else {
			group.Type = domain.GroupTypeSimilar
			results.SimilarGroups = append(results.SimilarGroups, group)
		}
	}

	groups := len(results.DuplicateGroups) + len(results.SimilarGroups)
	results.TotalGroups = groups + len(results.SingletonProducts)
	results.DeduplicationRatio = 1 - float64(results.TotalGroups)/float64(len(products))

	results.AvgGroupSize = 1
	results.LargestGroupSize = 1
	if groups > 0 {
		total := 0
		for _, g := range append(append([]domain.MatchGroup{}, results.DuplicateGroups...), results.SimilarGroups...) {
			total += g.Size
			results.LargestGroupSize = max(results.LargestGroupSize, g.Size)
		}
		results.AvgGroupSize = float64(total) / float64(groups)
	}

	return results
}

func (m *ProductMatcher) newGroup(id string, products []domain.ProductRecord, members []int, scores []float64) domain.MatchGroup {
	groupProducts := make([]domain.ProductRecord, len(members))
	for i, idx := range members {
		groupProducts[i] = products[idx]
	}

	avg := 0.0
	if len(scores) > 0 {
		for _, s := range scores {
			avg += s
		}
		avg /= float64(len(scores))
	}

	return domain.MatchGroup{
		GroupID:               id,
		RepresentativeProduct: m.selector.Select(groupProducts, scores),
		Products:              groupProducts,
		SimilarityScores:      scores,
		AvgSimilarity:         avg,
		Size:                  len(groupProducts),
	}
}

// analysisCacheKey format: "analysis:{sha256(records in input order, thresholds, hybrid)}"
// Cached results hold whole records by position, so ids, attributes and order
// are all part of the key.
func (m *ProductMatcher) analysisCacheKey(products []domain.ProductRecord) string {
	h := sha256.New()
	for _, p := range products {
		fmt.Fprintf(h, "%q\x00%q", p.ID, p.Description)

		keys := make([]string, 0, len(p.Attributes))
		for k := range p.Attributes {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(h, "\x00%q=%q", k, p.Attributes[k])
		}
		h.Write([]byte{'\n'})
	}
	fmt.Fprintf(h, "|%.4f|%.4f|%.4f|%t", m.config.DuplicateThreshold, m.config.SimilarThreshold,
		m.config.MinimumThreshold, m.batch.calculator.HybridEnabled())
	return "analysis:" + hex.EncodeToString(h.Sum(nil))
}

func (m *ProductMatcher) getFromCache(ctx context.Context, key string) (*domain.MatchingResults, error) {
	if m.cache == nil {
		return nil, domain.ErrCacheMiss
	}

	data, err := m.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			m.logger.Warn().Err(err).Msg("analysis cache read failed")
		}
		return nil, err
	}

	var results domain.MatchingResults
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, err
	}
	return &results, nil
}

func (m *ProductMatcher) setInCache(ctx context.Context, key string, results *domain.MatchingResults) error {
	if m.cache == nil {
		return nil
	}

	data, err := json.Marshal(results)
	if err != nil {
		return err
	}
	return m.cache.Set(ctx, key, data, m.config.CacheTTL)
}
