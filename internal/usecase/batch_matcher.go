package usecase

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/shelfmatch/backend/internal/domain"
	"github.com/shelfmatch/backend/internal/lexicon"
	"golang.org/x/sync/errgroup"
)

const (
	minNormalizedLength     = 3
	parallelPairThreshold   = 10000
	parallelRecordThreshold = 100
	maxBatchWorkers         = 8
	minChunkSize            = 10
	maxLengthRatio          = 3.0

	duplicateMinConfidence = 0.6
	duplicateMinTokens     = 2
	duplicateMinEmbedding  = 0.7

	StrategyNone       = "none"
	StrategySequential = "sequential"
	StrategyParallel   = "parallel"
)

// BatchConfig controls one batch comparison.
type BatchConfig struct {
	Threshold   float64
	UseParallel bool
	// MaxWorkers <= 0 uses the number of CPUs. The pool never exceeds 8 workers.
	MaxWorkers int
}

// BatchMatcher finds every matching pair in a list of feature records.
type BatchMatcher struct {
	calculator *SimilarityCalculator
	lexicon    *lexicon.Lexicon
	metrics    *Metrics
	logger     zerolog.Logger
}

// NewBatchMatcher creates a batch matcher. The calculator is shared by all workers.
func NewBatchMatcher(calculator *SimilarityCalculator, lex *lexicon.Lexicon, metrics *Metrics, logger zerolog.Logger) *BatchMatcher {
	if lex == nil {
		lex = lexicon.Default()
	}
	return &BatchMatcher{
		calculator: calculator,
		lexicon:    lex,
		metrics:    metrics,
		logger:     logger.With().Str("component", "batch_matcher").Logger(),
	}
}

// chunkOutcome is what one unit of work produced.
type chunkOutcome struct {
	results  []*domain.SimilarityResult
	compared int
	skipped  int
	failed   int
}

func (o *chunkOutcome) add(other chunkOutcome) {
	o.results = append(o.results, other.results...)
	o.compared += other.compared
	o.skipped += other.skipped
	o.failed += other.failed
}

// CalculateBatch compares every candidate pair and returns the pairs scoring
// at least cfg.Threshold, deduplicated and sorted by score then confidence.
// ctx bounds embedding calls only; a started batch always runs to the end.
func (m *BatchMatcher) CalculateBatch(ctx context.Context, features []*domain.ProductFeatures, cfg BatchConfig) *domain.BatchResult {
	threshold := cfg.Threshold
	if threshold <= 0 {
		threshold = m.calculator.Threshold()
	}

	result := &domain.BatchResult{
		Results: []*domain.SimilarityResult{},
		Stats:   domain.BatchStats{InputCount: len(features), Strategy: StrategyNone},
	}
	if len(features) < 2 {
		return result
	}

	filtered := m.FilterCandidates(features)
	n := len(filtered)
	result.Stats.FilteredCount = n
	if n < 2 {
		m.logger.Info().Int("input", len(features)).Int("filtered", n).Msg("nothing to compare after filtering")
		return result
	}

	totalPairs := n * (n - 1) / 2
	result.Stats.TotalPairs = totalPairs

	var outcome chunkOutcome
	if cfg.UseParallel && totalPairs > parallelPairThreshold && n > parallelRecordThreshold {
		workers := workerCount(cfg.MaxWorkers)
		result.Stats.Strategy = StrategyParallel
		var failedChunks int
		outcome, failedChunks = m.calculateParallel(ctx, filtered, threshold, workers)
		result.Stats.FailedChunks = failedChunks
	} else {
		result.Stats.Strategy = StrategySequential
		outcome = m.calculateSequential(ctx, filtered, threshold)
	}

	unique, duplicates := dedupeResults(outcome.results)
	sortResults(unique)

	result.Results = unique
	result.Stats.Compared = outcome.compared
	result.Stats.Skipped = outcome.skipped
	result.Stats.Failed = outcome.failed
	result.Stats.Duplicates = duplicates
	m.metrics.recordPairs(outcome.compared, outcome.skipped, outcome.failed)

	m.logger.Info().
		Str("strategy", result.Stats.Strategy).
		Int("filtered", n).
		Int("total_pairs", totalPairs).
		Int("compared", outcome.compared).
		Int("skipped", outcome.skipped).
		Int("matches", len(unique)).
		Msg("batch similarity completed")

	return result
}

// FindDuplicates returns high-confidence duplicate pairs scoring at least
// cfg.Threshold. When the hybrid score is active a pair must also reach the
// duplicate confidence level.
func (m *BatchMatcher) FindDuplicates(ctx context.Context, features []*domain.ProductFeatures, cfg BatchConfig) []*domain.SimilarityResult {
	threshold := cfg.Threshold
	if threshold <= 0 {
		threshold = m.calculator.Threshold()
	}
	cfg.Threshold = threshold

	batch := m.CalculateBatch(ctx, features, cfg)

	duplicates := make([]*domain.SimilarityResult, 0, len(batch.Results))
	for _, r := range batch.Results {
		if r.FinalScore < threshold {
			continue
		}
		if m.calculator.HybridEnabled() && r.ConfidenceScore < duplicateMinConfidence {
			continue
		}
		if r.CategoryMatch || len(r.MatchingTokens) >= duplicateMinTokens || r.EmbeddingSimilarity >= duplicateMinEmbedding {
			duplicates = append(duplicates, r)
		}
	}

	m.logger.Info().Float64("threshold", threshold).Int("duplicates", len(duplicates)).Msg("duplicate search completed")
	return duplicates
}

// FilterCandidates drops records too short to compare and records whose
// category (or first token) occurs only once. Order of first appearance is kept.
func (m *BatchMatcher) FilterCandidates(features []*domain.ProductFeatures) []*domain.ProductFeatures {
	groups := make(map[string][]*domain.ProductFeatures)
	var order []string

	for _, f := range features {
		if f == nil || utf8.RuneCountInString(f.NormalizedDescription) < minNormalizedLength {
			continue
		}
		key := groupKey(f)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], f)
	}

	filtered := make([]*domain.ProductFeatures, 0, len(features))
	for _, key := range order {
		if len(groups[key]) > 1 {
			filtered = append(filtered, groups[key]...)
		}
	}
	return filtered
}

func groupKey(f *domain.ProductFeatures) string {
	switch {
	case f.Category != "":
		return f.Category
	case len(f.Tokens) > 0:
		return f.Tokens[0]
	default:
		return "unknown"
	}
}

// quickReject reports pairs that cannot match: very different lengths, no
// shared token or unrelated categories.
func (m *BatchMatcher) quickReject(f1, f2 *domain.ProductFeatures) bool {
	len1 := utf8.RuneCountInString(f1.NormalizedDescription)
	len2 := utf8.RuneCountInString(f2.NormalizedDescription)
	shorter := math.Max(float64(min(len1, len2)), 1)
	if float64(max(len1, len2))/shorter > maxLengthRatio {
		return true
	}

	if len(intersection(f1.Tokens, f2.Tokens)) == 0 {
		return true
	}

	if f1.Category != "" && f2.Category != "" && f1.Category != f2.Category {
		return !m.lexicon.Related(f1.Category, f2.Category)
	}
	return false
}

// evaluate scores one pair. A quick-rejected pair is reported as skipped.
func (m *BatchMatcher) evaluate(ctx context.Context, f1, f2 *domain.ProductFeatures, threshold float64, out *chunkOutcome) {
	if m.quickReject(f1, f2) {
		out.skipped++
		return
	}

	result, err := m.calculator.Calculate(ctx, f1, f2)
	if err != nil {
		out.failed++
		m.logger.Warn().Err(err).Msg("pair comparison failed")
		return
	}

	out.compared++
	if result.FinalScore >= threshold {
		out.results = append(out.results, result)
	}
}

func (m *BatchMatcher) calculateSequential(ctx context.Context, features []*domain.ProductFeatures, threshold float64) chunkOutcome {
	var out chunkOutcome
	for i := 0; i < len(features); i++ {
		for j := i + 1; j < len(features); j++ {
			m.safeEvaluate(ctx, features[i], features[j], threshold, &out)
		}
	}
	return out
}

// safeEvaluate isolates a panicking pair so the rest of the batch continues.
func (m *BatchMatcher) safeEvaluate(ctx context.Context, f1, f2 *domain.ProductFeatures, threshold float64, out *chunkOutcome) {
	defer func() {
		if r := recover(); r != nil {
			out.failed++
			m.logger.Error().
				Err(fmt.Errorf("%w: %v", domain.ErrComputeFailure, r)).
				Str("product1", f1.OriginalDescription).
				Str("product2", f2.OriginalDescription).
				Msg("pair comparison panicked")
		}
	}()
	m.evaluate(ctx, f1, f2, threshold, out)
}

// calculateParallel splits the upper triangle of the comparison matrix into
// row chunks. Chunk k compares its rows against every later record. Outcomes
// are merged in chunk order so the emission order matches the sequential path.
func (m *BatchMatcher) calculateParallel(ctx context.Context, features []*domain.ProductFeatures, threshold float64, workers int) (chunkOutcome, int) {
	n := len(features)
	chunkSize := max(minChunkSize, n/(workers*4))
	numChunks := (n + chunkSize - 1) / chunkSize

	m.logger.Info().
		Int("workers", workers).
		Int("chunks", numChunks).
		Int("chunk_size", chunkSize).
		Msg("using parallel processing")

	outcomes := make([]chunkOutcome, numChunks)
	failed := make([]bool, numChunks)

	var g errgroup.Group
	g.SetLimit(workers)
	for k := 0; k < numChunks; k++ {
		start := k * chunkSize
		end := min(start+chunkSize, n)
		g.Go(func() error {
			out, err := m.compareChunk(ctx, features, start, end, threshold)
			if err != nil {
				// The chunk is dropped; other chunks keep running.
				failed[k] = true
				m.metrics.recordFailedChunk()
				m.logger.Error().Err(err).Int("chunk", k).Msg("chunk failed, dropping its results")
				return nil
			}
			outcomes[k] = out
			return nil
		})
	}
	_ = g.Wait()

	var merged chunkOutcome
	failedChunks := 0
	for k := range outcomes {
		if failed[k] {
			failedChunks++
			continue
		}
		merged.add(outcomes[k])
	}
	return merged, failedChunks
}

func (m *BatchMatcher) compareChunk(ctx context.Context, features []*domain.ProductFeatures, start, end int, threshold float64) (out chunkOutcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: rows %d-%d: %v", domain.ErrComputeFailure, start, end-1, r)
		}
	}()

	for i := start; i < end; i++ {
		for j := i + 1; j < len(features); j++ {
			m.evaluate(ctx, features[i], features[j], threshold, &out)
		}
	}
	return out, nil
}

// dedupeResults keeps the first result for each unordered pair of normalized
// descriptions and reports how many were dropped.
func dedupeResults(results []*domain.SimilarityResult) ([]*domain.SimilarityResult, int) {
	seen := make(map[[2]string]struct{}, len(results))
	unique := make([]*domain.SimilarityResult, 0, len(results))

	for _, r := range results {
		key := pairKey(r.Product1.NormalizedDescription, r.Product2.NormalizedDescription)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, r)
	}
	return unique, len(results) - len(unique)
}

func pairKey(a, b string) [2]string {
	if b < a {
		a, b = b, a
	}
	return [2]string{a, b}
}

func sortResults(results []*domain.SimilarityResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].FinalScore != results[j].FinalScore {
			return results[i].FinalScore > results[j].FinalScore
		}
		return results[i].ConfidenceScore > results[j].ConfidenceScore
	})
}

func workerCount(maxWorkers int) int {
	workers := maxWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return max(1, min(workers, maxBatchWorkers))
}
