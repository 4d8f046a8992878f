package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shelfmatch/backend/internal/domain"
	"github.com/shelfmatch/backend/internal/lexicon"
)

// EngineConfig wires every component of the engine.
type EngineConfig struct {
	Threshold      float64
	UseHybrid      bool
	Embedding      EmbeddingConfig
	HybridCacheTTL time.Duration
	Matcher        MatcherConfig
	Representative string
}

// DefaultEngineConfig returns hybrid matching at the default threshold.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Threshold:      DefaultSimilarityThreshold,
		UseHybrid:      true,
		Embedding:      DefaultEmbeddingConfig(),
		HybridCacheTTL: time.Hour,
		Matcher:        DefaultMatcherConfig(),
	}
}

// Engine is the assembled matching pipeline. Hybrid is nil when the engine
// runs on lexical scores only.
type Engine struct {
	Normalizer *Normalizer
	Extractor  *FeatureExtractor
	Embeddings *EmbeddingScorer
	Hybrid     *HybridEngine
	Calculator *SimilarityCalculator
	Batch      *BatchMatcher
	Matcher    *ProductMatcher
	Metrics    *Metrics
}

// NewEngine builds the pipeline. A hybrid request without a usable provider
// is logged once and the engine falls back to lexical scoring.
func NewEngine(
	ctx context.Context,
	lex *lexicon.Lexicon,
	provider domain.EmbeddingProvider,
	cache domain.CacheRepository,
	config EngineConfig,
	logger zerolog.Logger,
) (*Engine, error) {
	if lex == nil {
		lex = lexicon.Default()
	}
	if config.HybridCacheTTL <= 0 {
		config.HybridCacheTTL = time.Hour
	}

	metrics := NewMetrics()
	normalizer := NewNormalizer(lex, logger)
	extractor := NewFeatureExtractor(normalizer, logger)
	embeddings := NewEmbeddingScorer(provider, cache, config.Embedding, metrics, logger)

	var hybrid *HybridEngine
	if config.UseHybrid {
		if err := checkProvider(ctx, provider, config.Embedding.withDefaults().Timeout); err != nil {
			logger.Warn().Err(err).Msg("hybrid similarity disabled, using lexical scores only")
		} else {
			hybridConfig := config.Embedding
			hybridConfig.CacheTTL = config.HybridCacheTTL
			hybridEmbeddings := NewEmbeddingScorer(provider, cache, hybridConfig, metrics, logger)
			hybrid = NewHybridEngine(hybridEmbeddings, NewRuleScorer(lex), logger)
		}
	}

	calculator := NewSimilarityCalculator(hybrid, config.Threshold, logger)
	batch := NewBatchMatcher(calculator, lex, metrics, logger)
	matcher, err := NewProductMatcher(extractor, batch, cache, SelectorByName(config.Representative), config.Matcher, metrics, logger)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Bool("hybrid", hybrid != nil).
		Float64("threshold", calculator.Threshold()).
		Msg("matching engine initialized")

	return &Engine{
		Normalizer: normalizer,
		Extractor:  extractor,
		Embeddings: embeddings,
		Hybrid:     hybrid,
		Calculator: calculator,
		Batch:      batch,
		Matcher:    matcher,
		Metrics:    metrics,
	}, nil
}

func checkProvider(ctx context.Context, provider domain.EmbeddingProvider, timeout time.Duration) error {
	if provider == nil {
		return fmt.Errorf("%w: no embedding provider configured", domain.ErrProviderUnavailable)
	}

	checker, ok := provider.(domain.HealthChecker)
	if !ok {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := checker.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrProviderUnavailable, provider.Name(), err)
	}
	return nil
}
