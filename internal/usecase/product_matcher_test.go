package usecase

import (
	"context"
	"testing"

	"github.com/shelfmatch/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func records(descriptions ...string) []domain.ProductRecord {
	out := make([]domain.ProductRecord, len(descriptions))
	for i, d := range descriptions {
		out[i] = domain.ProductRecord{ID: string(rune('a' + i)), Description: d}
	}
	return out
}

func descriptionsOf(products []domain.ProductRecord) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.Description
	}
	return out
}

func newTestProductMatcher(t *testing.T, cache domain.CacheRepository, config MatcherConfig) (*ProductMatcher, *Metrics) {
	t.Helper()
	metrics := NewMetrics()
	batch := NewBatchMatcher(NewSimilarityCalculator(nil, 0, testLogger), nil, metrics, testLogger)
	m, err := NewProductMatcher(newTestExtractor(), batch, cache, nil, config, metrics, testLogger)
	require.NoError(t, err)
	return m, metrics
}

var receiptProducts = records(
	"BANANA PRATA KG",
	"ARROZ BRANCO 5KG",
	"BANANA PRATA",
	"DETERGENTE YPE 500ML",
	"   ",
	"ARROZ BRANCO 1KG",
)

func TestMatcherConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*MatcherConfig)
		wantErr bool
	}{
		{"defaults", func(*MatcherConfig) {}, false},
		{"all equal", func(c *MatcherConfig) { c.DuplicateThreshold, c.SimilarThreshold, c.MinimumThreshold = 0.5, 0.5, 0.5 }, false},
		{"zero minimum", func(c *MatcherConfig) { c.MinimumThreshold = 0 }, true},
		{"above one", func(c *MatcherConfig) { c.DuplicateThreshold = 1.2 }, true},
		{"similar above duplicate", func(c *MatcherConfig) { c.SimilarThreshold = 0.9 }, true},
		{"minimum above similar", func(c *MatcherConfig) { c.MinimumThreshold = 0.7 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultMatcherConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewProductMatcher_RejectsInvalidConfig(t *testing.T) {
	cfg := DefaultMatcherConfig()
	cfg.SimilarThreshold = 0.95

	_, err := NewProductMatcher(newTestExtractor(), nil, nil, nil, cfg, nil, testLogger)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProductMatcher_Analyze(t *testing.T) {
	ctx := context.Background()

	t.Run("empty list", func(t *testing.T) {
		m, _ := newTestProductMatcher(t, nil, DefaultMatcherConfig())
		_, err := m.Analyze(ctx, nil)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("partitions every product once", func(t *testing.T) {
		m, _ := newTestProductMatcher(t, nil, DefaultMatcherConfig())

		results, err := m.Analyze(ctx, receiptProducts)
		require.NoError(t, err)

		assert.Equal(t, SourceComputed, results.Source)
		assert.Equal(t, 6, results.TotalProducts)
		require.Len(t, results.DuplicateGroups, 2)
		assert.Empty(t, results.SimilarGroups)

		first := results.DuplicateGroups[0]
		assert.Equal(t, "group_0", first.GroupID)
		assert.Equal(t, domain.GroupTypeDuplicate, first.Type)
		assert.Equal(t, []string{"BANANA PRATA KG", "BANANA PRATA"}, descriptionsOf(first.Products))
		assert.Equal(t, "BANANA PRATA KG", first.RepresentativeProduct)
		assert.Equal(t, 1.0, first.AvgSimilarity)

		second := results.DuplicateGroups[1]
		assert.Equal(t, "group_1", second.GroupID)
		assert.Equal(t, []string{"ARROZ BRANCO 5KG", "ARROZ BRANCO 1KG"}, descriptionsOf(second.Products))

		assert.Equal(t, []string{"DETERGENTE YPE 500ML", "   "}, descriptionsOf(results.SingletonProducts))
		assert.Equal(t, 4, results.TotalGroups)
		assert.InDelta(t, 1.0/3.0, results.DeduplicationRatio, 1e-9)
		assert.Equal(t, 2.0, results.AvgGroupSize)
		assert.Equal(t, 2, results.LargestGroupSize)

		seen := make(map[string]int)
		for _, g := range append(results.DuplicateGroups, results.SimilarGroups...) {
			for _, p := range g.Products {
				seen[p.ID]++
			}
		}
		for _, p := range results.SingletonProducts {
			seen[p.ID]++
		}
		assert.Len(t, seen, 6)
		for id, count := range seen {
			assert.Equal(t, 1, count, "product %s", id)
		}
	})

	t.Run("no matches leaves only singletons", func(t *testing.T) {
		m, _ := newTestProductMatcher(t, nil, DefaultMatcherConfig())

		results, err := m.Analyze(ctx, records("BANANA PRATA", "ARROZ BRANCO", "DETERGENTE YPE"))
		require.NoError(t, err)

		assert.Len(t, results.SingletonProducts, 3)
		assert.Equal(t, 3, results.TotalGroups)
		assert.Zero(t, results.DeduplicationRatio)
		assert.Equal(t, 1.0, results.AvgGroupSize)
		assert.Equal(t, 1, results.LargestGroupSize)
	})

	t.Run("second call is served from cache", func(t *testing.T) {
		cache := NewMockCacheRepository()
		m, metrics := newTestProductMatcher(t, cache, DefaultMatcherConfig())

		first, err := m.Analyze(ctx, receiptProducts)
		require.NoError(t, err)
		second, err := m.Analyze(ctx, receiptProducts)
		require.NoError(t, err)

		assert.Equal(t, SourceComputed, first.Source)
		assert.Equal(t, SourceCache, second.Source)
		assert.Equal(t, len(first.DuplicateGroups), len(second.DuplicateGroups))
		assert.Equal(t, first.SingletonProducts, second.SingletonProducts)

		snap := metrics.Snapshot()
		assert.Equal(t, int64(2), snap.Analyses)
		assert.Equal(t, int64(1), snap.AnalysisCacheHits)

		keys := cache.keys()
		require.Len(t, keys, 1)
		assert.Contains(t, keys[0], "analysis:")
		assert.Equal(t, DefaultMatcherConfig().CacheTTL, cache.ttls[keys[0]])
	})

	t.Run("same descriptions with other records are not served from cache", func(t *testing.T) {
		cache := NewMockCacheRepository()
		m, _ := newTestProductMatcher(t, cache, DefaultMatcherConfig())

		_, err := m.Analyze(ctx, []domain.ProductRecord{
			{ID: "store-A-1", Description: "BANANA PRATA"},
			{ID: "store-A-2", Description: "ARROZ BRANCO"},
		})
		require.NoError(t, err)

		second, err := m.Analyze(ctx, []domain.ProductRecord{
			{ID: "store-B-9", Description: "ARROZ BRANCO"},
			{ID: "store-B-8", Description: "BANANA PRATA"},
		})
		require.NoError(t, err)

		assert.Equal(t, SourceComputed, second.Source)
		ids := make([]string, 0, len(second.SingletonProducts))
		for _, p := range second.SingletonProducts {
			ids = append(ids, p.ID)
		}
		assert.ElementsMatch(t, []string{"store-B-9", "store-B-8"}, ids)
		assert.Len(t, cache.keys(), 2)
	})

	t.Run("cache failure does not fail the analysis", func(t *testing.T) {
		cache := NewMockCacheRepository()
		cache.getError = domain.ErrCacheUnavailable
		cache.setError = domain.ErrCacheUnavailable
		m, _ := newTestProductMatcher(t, cache, DefaultMatcherConfig())

		results, err := m.Analyze(ctx, receiptProducts)
		require.NoError(t, err)
		assert.Equal(t, SourceComputed, results.Source)
	})
}

func TestProductMatcher_AnalysisCacheKey(t *testing.T) {
	m, _ := newTestProductMatcher(t, nil, DefaultMatcherConfig())

	base := records("BANANA PRATA", "ARROZ BRANCO")
	key := m.analysisCacheKey(base)
	assert.Equal(t, key, m.analysisCacheKey(records("BANANA PRATA", "ARROZ BRANCO")))

	withAttrs := func(attrs map[string]string) []domain.ProductRecord {
		out := records("BANANA PRATA", "ARROZ BRANCO")
		out[0].Attributes = attrs
		return out
	}
	assert.Equal(t,
		m.analysisCacheKey(withAttrs(map[string]string{"store": "1", "ean": "789"})),
		m.analysisCacheKey(withAttrs(map[string]string{"ean": "789", "store": "1"})))

	tests := []struct {
		name     string
		products []domain.ProductRecord
	}{
		{"reordered", records("ARROZ BRANCO", "BANANA PRATA")},
		{"different description", records("BANANA PRATA", "BANANA NANICA")},
		{"different ids", []domain.ProductRecord{
			{ID: "x", Description: "BANANA PRATA"},
			{ID: "y", Description: "ARROZ BRANCO"},
		}},
		{"attributes", withAttrs(map[string]string{"store": "1"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, key, m.analysisCacheKey(tt.products))
		})
	}

	cfg := DefaultMatcherConfig()
	cfg.DuplicateThreshold = 0.9
	other, _ := newTestProductMatcher(t, nil, cfg)
	assert.NotEqual(t, key, other.analysisCacheKey(base))
}

func TestProductMatcher_FindDuplicatesOnlyUsesMatcherConfig(t *testing.T) {
	ctx := context.Background()
	products := records(lotDescriptions("BANANA PRATA", "FRANGO ASSADO", "REFRIGERANTE COLA")...)
	broken := NewSimilarityCalculator(&HybridEngine{weights: DefaultHybridWeights()}, 0, testLogger)

	tests := []struct {
		name         string
		useParallel  bool
		maxWorkers   int
		failedChunks int64
	}{
		{"parallel disabled", false, 0, 0},
		{"single worker", true, 1, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultMatcherConfig()
			cfg.UseParallel = tt.useParallel
			cfg.MaxWorkers = tt.maxWorkers

			metrics := NewMetrics()
			m, err := NewProductMatcher(newTestExtractor(), newTestBatchMatcher(broken, metrics), nil, nil, cfg, metrics, testLogger)
			require.NoError(t, err)

			groups, err := m.FindDuplicatesOnly(ctx, products)
			require.NoError(t, err)
			assert.Empty(t, groups)
			assert.Equal(t, tt.failedChunks, metrics.Snapshot().FailedChunks)
		})
	}
}

func TestProductMatcher_Group(t *testing.T) {
	m, _ := newTestProductMatcher(t, nil, DefaultMatcherConfig())
	e := newTestExtractor()

	products := records("LEITE INTEGRAL", "LEITE DESNATADO", "CAFE PILAO")
	features := []*domain.ProductFeatures{
		mustExtract(e, products[0].Description),
		mustExtract(e, products[1].Description),
		mustExtract(e, products[2].Description),
	}
	pairs := []*domain.SimilarityResult{{Product1: features[0], Product2: features[1], FinalScore: 0.7}}

	results := m.group(products, features, pairs)

	assert.Empty(t, results.DuplicateGroups)
	require.Len(t, results.SimilarGroups, 1)
	assert.Equal(t, domain.GroupTypeSimilar, results.SimilarGroups[0].Type)
	assert.Equal(t, []float64{0.7}, results.SimilarGroups[0].SimilarityScores)
	assert.Equal(t, []string{"CAFE PILAO"}, descriptionsOf(results.SingletonProducts))
}

func TestProductMatcher_FindDuplicatesOnly(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestProductMatcher(t, nil, DefaultMatcherConfig())

	groups, err := m.FindDuplicatesOnly(ctx, receiptProducts)
	require.NoError(t, err)

	require.Len(t, groups, 2)
	assert.Equal(t, "duplicate_group_0", groups[0].GroupID)
	assert.Equal(t, "duplicate_group_1", groups[1].GroupID)
	for _, g := range groups {
		assert.Equal(t, domain.GroupTypeDuplicate, g.Type)
		assert.Equal(t, 2, g.Size)
	}

	_, err = m.FindDuplicatesOnly(ctx, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProductMatcher_FindSimilarToProduct(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestProductMatcher(t, nil, DefaultMatcherConfig())
	candidates := records("ARROZ BRANCO", "BANANA NANICA", "BANANA PRATA KG", "")

	similar, err := m.FindSimilarToProduct(ctx, domain.ProductRecord{Description: "BANANA PRATA"}, candidates, 0)
	require.NoError(t, err)

	require.Len(t, similar, 2)
	assert.Equal(t, "BANANA PRATA KG", similar[0].Product.Description)
	assert.Equal(t, 1.0, similar[0].Score)
	assert.Equal(t, "BANANA NANICA", similar[1].Product.Description)
	assert.Greater(t, similar[1].Score, DefaultMatcherConfig().MinimumThreshold)
	assert.NotNil(t, similar[1].Details)

	limited, err := m.FindSimilarToProduct(ctx, domain.ProductRecord{Description: "BANANA PRATA"}, candidates, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "BANANA PRATA KG", limited[0].Product.Description)

	_, err = m.FindSimilarToProduct(ctx, domain.ProductRecord{Description: " "}, candidates, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProductMatcher_Recommendations(t *testing.T) {
	ctx := context.Background()

	t.Run("pairs are medium priority", func(t *testing.T) {
		m, _ := newTestProductMatcher(t, nil, DefaultMatcherConfig())

		report, err := m.Recommendations(ctx, receiptProducts)
		require.NoError(t, err)

		assert.Equal(t, 6, report.Summary.TotalProducts)
		assert.Equal(t, 2, report.Summary.PotentialDuplicates)
		assert.Equal(t, 4, report.Summary.ProductsToReview)
		assert.Empty(t, report.HighPriorityGroups)
		assert.Len(t, report.MediumPriorityGroups, 2)
		assert.Equal(t, []string{
			"Medium-priority groups may be variants of the same product",
			"Significant deduplication opportunity: 33.3% reduction possible",
		}, report.Actions)
	})

	t.Run("large tight group is high priority", func(t *testing.T) {
		m, _ := newTestProductMatcher(t, nil, DefaultMatcherConfig())

		report, err := m.Recommendations(ctx, records("BANANA PRATA", "BANANA PRATA KG", "BANANA PRATA 1KG", "ARROZ BRANCO"))
		require.NoError(t, err)

		require.Len(t, report.HighPriorityGroups, 1)
		assert.Equal(t, 3, report.HighPriorityGroups[0].Size)
		assert.Contains(t, report.Actions, "Review high-priority groups first - these are likely true duplicates")
	})

	t.Run("empty list", func(t *testing.T) {
		m, _ := newTestProductMatcher(t, nil, DefaultMatcherConfig())
		_, err := m.Recommendations(ctx, nil)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestRepresentativeSelectors(t *testing.T) {
	group := records("BANANA PRATA KG", "BANANA PRATA", "BANANA PRAT")

	assert.Equal(t, "BANANA PRATA KG", FirstMember{}.Select(group, nil))
	assert.Equal(t, "BANANA PRAT", ShortestDescription{}.Select(group, nil))
	assert.Equal(t, "AB", ShortestDescription{}.Select(records("AB", "CD"), nil))
	assert.Empty(t, FirstMember{}.Select(nil, nil))

	assert.IsType(t, ShortestDescription{}, SelectorByName("shortest"))
	assert.IsType(t, FirstMember{}, SelectorByName("first"))
	assert.IsType(t, FirstMember{}, SelectorByName("unknown"))
}

func TestProductGraph(t *testing.T) {
	e := newTestExtractor()
	features := []*domain.ProductFeatures{
		mustExtract(e, "BANANA PRATA"),
		nil,
		mustExtract(e, "ARROZ BRANCO"),
		mustExtract(e, "BANANA PRATA KG"),
		mustExtract(e, "BANANA NANICA"),
		mustExtract(e, "ARROZ BRANCO 5KG"),
	}

	g := newProductGraph(features)
	pairs := []*domain.SimilarityResult{
		{Product1: features[0], Product2: features[4], FinalScore: 0.7},
	}
	g.link(pairs)

	components := g.components()
	// Identical descriptions are only linked once a pair touches their bucket.
	assert.Equal(t, [][]int{{0, 3, 4}, {1}, {2}, {5}}, components)
	assert.Equal(t, []float64{0.7}, g.scoresWithin(components[0], pairs))
	assert.Empty(t, g.scoresWithin(components[1], pairs))
}
