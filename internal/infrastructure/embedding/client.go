package embedding

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/shelfmatch/backend/internal/domain"
	"golang.org/x/time/rate"
)

const (
	maxAttempts        = 3
	defaultDimension   = 512
	defaultTimeout     = 30 * time.Second
	defaultRequestRate = 10
	requestBurst       = 5
)

// Config holds the remote model settings.
type Config struct {
	BaseURL           string
	Model             string
	Dimension         int
	Timeout           time.Duration
	RequestsPerSecond float64
}

// Client encodes text through a remote embedding model over HTTP.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	model       string
	dimension   int
	rateLimiter *rate.Limiter
	backoff     func(attempt int) time.Duration
	logger      zerolog.Logger
}

// NewClient creates a new embedding API client
func NewClient(cfg Config, logger zerolog.Logger) *Client {
	if cfg.Dimension <= 0 {
		cfg.Dimension = defaultDimension
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = defaultRequestRate
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		model:       cfg.Model,
		dimension:   cfg.Dimension,
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), requestBurst),
		backoff:     exponentialBackoff,
		logger:      logger.With().Str("component", "embedding_client").Logger(),
	}
}

// Name identifies the model; it is part of every embedding cache key.
func (c *Client) Name() string {
	if c.model == "" {
		return "http"
	}
	return c.model
}

// Dimension returns the configured vector size.
func (c *Client) Dimension() int {
	return c.dimension
}

// Encode embeds one text.
func (c *Client) Encode(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EncodeBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EncodeBatch embeds texts in one request, retrying transient failures up to 3 times.
func (c *Client) EncodeBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	body, err := json.Marshal(embedRequest{Model: c.model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		payload, retry, err := c.post(ctx, "/embed", body)
		if err == nil {
			var resp embedResponse
			if err := json.Unmarshal(payload, &resp); err != nil {
				return nil, fmt.Errorf("%w: failed to decode response: %v", domain.ErrEmbeddingAPIFailure, err)
			}
			return toVectors(resp, len(texts), c.dimension)
		}

		lastErr = err
		c.logger.Warn().Err(err).Int("attempt", attempt).Int("texts", len(texts)).Msg("embedding request failed")
		if !retry || attempt == maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.backoff(attempt)):
		}
	}

	return nil, lastErr
}

// Ping calls the health endpoint once.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrEmbeddingAPIFailure, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: health status %d", domain.ErrEmbeddingAPIFailure, resp.StatusCode)
	}
	return nil
}

// post sends a JSON body and returns the response payload. retry reports
// whether the failure is transient (transport errors, 429 and 5xx).
func (c *Client) post(ctx context.Context, path string, body []byte) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "ShelfMatch/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, ctx.Err() == nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingAPIFailure, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("%w: failed to read response: %v", domain.ErrEmbeddingAPIFailure, err)
	}

	if resp.StatusCode != http.StatusOK {
		retry := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError
		return nil, retry, fmt.Errorf("%w: status %d, body: %s", domain.ErrEmbeddingAPIFailure, resp.StatusCode, truncate(string(payload), 200))
	}
	return payload, false, nil
}

func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(500*(1<<(attempt-1))) * time.Millisecond
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
