package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shelfmatch/backend/internal/domain"
	"github.com/shelfmatch/backend/internal/usecase"
)

const serviceVersion = "1.0.0"

// Handler holds dependencies for HTTP handlers
type Handler struct {
	engine *usecase.Engine
	logger zerolog.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(engine *usecase.Engine, logger zerolog.Logger) *Handler {
	return &Handler{
		engine: engine,
		logger: logger.With().Str("component", "http_handler").Logger(),
	}
}

type featuresRequest struct {
	Description string `json:"description" binding:"required"`
}

type statsRequest struct {
	Descriptions []string `json:"descriptions" binding:"required,min=1"`
}

type compareRequest struct {
	A         string   `json:"a" binding:"required"`
	B         string   `json:"b" binding:"required"`
	Threshold *float64 `json:"threshold"`
}

type productsRequest struct {
	Products []domain.ProductRecord `json:"products" binding:"required,min=1"`
}

type similarRequest struct {
	Target   domain.ProductRecord   `json:"target"`
	Products []domain.ProductRecord `json:"products" binding:"required,min=1"`
	Limit    int                    `json:"limit"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "shelfmatch-backend",
		"version": serviceVersion,
		"hybrid":  h.engine.Calculator.HybridEnabled(),
	})
}

// Metrics returns the engine counters.
func (h *Handler) Metrics(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.Metrics.Snapshot())
}

// ExtractFeatures returns the feature record of one description.
func (h *Handler) ExtractFeatures(c *gin.Context) {
	var req featuresRequest
	if !h.bind(c, &req) {
		return
	}

	features, err := h.engine.Extractor.Extract(req.Description)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, features)
}

// ProductStats summarises how a list of descriptions normalizes and distributes.
func (h *Handler) ProductStats(c *gin.Context) {
	var req statsRequest
	if !h.bind(c, &req) {
		return
	}

	batch := h.engine.Extractor.ExtractBatch(req.Descriptions)
	c.JSON(http.StatusOK, gin.H{
		"normalization": h.engine.Normalizer.Stats(req.Descriptions),
		"distribution":  h.engine.Extractor.AnalyzeDistribution(batch.Features),
		"failures":      batch.Failures,
	})
}

// CompareSimilarity scores two descriptions with the configured fusion.
func (h *Handler) CompareSimilarity(c *gin.Context) {
	var req compareRequest
	if !h.bind(c, &req) {
		return
	}

	f1, err := h.engine.Extractor.Extract(req.A)
	if err != nil {
		h.respondError(c, err)
		return
	}
	f2, err := h.engine.Extractor.Extract(req.B)
	if err != nil {
		h.respondError(c, err)
		return
	}

	calculator := h.engine.Calculator
	if req.Threshold != nil {
		if *req.Threshold <= 0 || *req.Threshold > 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "threshold must be in (0, 1]"})
			return
		}
		calculator = usecase.NewSimilarityCalculator(h.engine.Hybrid, *req.Threshold, h.logger)
	}

	result, err := calculator.Calculate(c.Request.Context(), f1, f2)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// CompareEmbedding compares two descriptions in embedding space only.
func (h *Handler) CompareEmbedding(c *gin.Context) {
	var req compareRequest
	if !h.bind(c, &req) {
		return
	}
	if !h.engine.Embeddings.Available() {
		h.respondError(c, domain.ErrProviderUnavailable)
		return
	}

	result := h.engine.Embeddings.Compare(c.Request.Context(), usecase.NormalizeRaw(req.A), usecase.NormalizeRaw(req.B))
	c.JSON(http.StatusOK, result)
}

// AnalyzeProducts groups a product list into duplicates, similar products and singletons.
func (h *Handler) AnalyzeProducts(c *gin.Context) {
	var req productsRequest
	if !h.bind(c, &req) {
		return
	}

	results, err := h.engine.Matcher.Analyze(c.Request.Context(), req.Products)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

// FindDuplicates returns only the high-confidence duplicate groups.
func (h *Handler) FindDuplicates(c *gin.Context) {
	var req productsRequest
	if !h.bind(c, &req) {
		return
	}

	groups, err := h.engine.Matcher.FindDuplicatesOnly(c.Request.Context(), req.Products)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": groups, "count": len(groups)})
}

// FindSimilar ranks products against a target.
func (h *Handler) FindSimilar(c *gin.Context) {
	var req similarRequest
	if !h.bind(c, &req) {
		return
	}

	similar, err := h.engine.Matcher.FindSimilarToProduct(c.Request.Context(), req.Target, req.Products, req.Limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"target": req.Target, "similar": similar, "count": len(similar)})
}

// Recommendations returns a prioritised deduplication report.
func (h *Handler) Recommendations(c *gin.Context) {
	var req productsRequest
	if !h.bind(c, &req) {
		return
	}

	report, err := h.engine.Matcher.Recommendations(c.Request.Context(), req.Products)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return false
	}
	return true
}

// respondError maps domain errors to status codes.
func (h *Handler) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrProviderUnavailable):
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		h.logger.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
