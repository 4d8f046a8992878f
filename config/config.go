package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Matching  MatchingConfig
	Embedding EmbeddingConfig
	Cache     CacheConfig
	Lexicon   LexiconConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// MatchingConfig holds the scoring and clustering settings
type MatchingConfig struct {
	Threshold          float64       `mapstructure:"threshold"`
	UseHybrid          bool          `mapstructure:"use_hybrid"`
	UseParallel        bool          `mapstructure:"use_parallel"`
	MaxWorkers         int           `mapstructure:"max_workers"`
	DuplicateThreshold float64       `mapstructure:"duplicate_threshold"`
	SimilarThreshold   float64       `mapstructure:"similar_threshold"`
	MinimumThreshold   float64       `mapstructure:"minimum_threshold"`
	AnalysisCacheTTL   time.Duration `mapstructure:"analysis_cache_ttl"`
	Representative     string        `mapstructure:"representative"` // "first" or "shortest"
}

// EmbeddingConfig holds embedding provider configuration
type EmbeddingConfig struct {
	Provider          string        `mapstructure:"provider"` // "none", "hashing" or "http"
	BaseURL           string        `mapstructure:"base_url"`
	Model             string        `mapstructure:"model"`
	Dimension         int           `mapstructure:"dimension"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	CacheTTL          time.Duration `mapstructure:"cache_ttl"`
	HybridCacheTTL    time.Duration `mapstructure:"hybrid_cache_ttl"`
	EuclideanCap      float64       `mapstructure:"euclidean_cap"`
	ManhattanCap      float64       `mapstructure:"manhattan_cap"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type     string        `mapstructure:"type"` // "memory" or "redis"
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// LexiconConfig points at an optional YAML file extending the built-in tables
type LexiconConfig struct {
	Path string `mapstructure:"path"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/shelfmatch/")

	// Environment variable settings
	v.SetEnvPrefix("SHELFMATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Matching defaults
	v.SetDefault("matching.threshold", 0.60)
	v.SetDefault("matching.use_hybrid", true)
	v.SetDefault("matching.use_parallel", true)
	v.SetDefault("matching.max_workers", 0)
	v.SetDefault("matching.duplicate_threshold", 0.85)
	v.SetDefault("matching.similar_threshold", 0.65)
	v.SetDefault("matching.minimum_threshold", 0.30)
	v.SetDefault("matching.analysis_cache_ttl", "1h")
	v.SetDefault("matching.representative", "first")

	// Embedding defaults
	v.SetDefault("embedding.provider", "hashing")
	v.SetDefault("embedding.base_url", "")
	v.SetDefault("embedding.model", "")
	v.SetDefault("embedding.dimension", 512)
	v.SetDefault("embedding.timeout", "5s")
	v.SetDefault("embedding.requests_per_second", 10)
	v.SetDefault("embedding.cache_ttl", "24h")
	v.SetDefault("embedding.hybrid_cache_ttl", "1h")
	v.SetDefault("embedding.euclidean_cap", 2.0)
	v.SetDefault("embedding.manhattan_cap", 4.0)

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", "24h")

	v.SetDefault("lexicon.path", "")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)

	v.SetDefault("log.level", "info")
}

// validate validates the configuration
func validate(config *Config) error {
	m := config.Matching
	if m.Threshold < 0 || m.Threshold > 1 {
		return fmt.Errorf("matching threshold must be in [0, 1], got: %.2f", m.Threshold)
	}
	for name, v := range map[string]float64{
		"duplicate_threshold": m.DuplicateThreshold,
		"similar_threshold":   m.SimilarThreshold,
		"minimum_threshold":   m.MinimumThreshold,
	} {
		if v <= 0 || v > 1 {
			return fmt.Errorf("matching %s must be in (0, 1], got: %.2f", name, v)
		}
	}
	if m.DuplicateThreshold < m.SimilarThreshold || m.SimilarThreshold < m.MinimumThreshold {
		return fmt.Errorf("matching thresholds must satisfy duplicate >= similar >= minimum")
	}
	if m.Representative != "first" && m.Representative != "shortest" {
		return fmt.Errorf("matching representative must be 'first' or 'shortest', got: %s", m.Representative)
	}

	switch config.Embedding.Provider {
	case "none", "hashing":
	case "http":
		if config.Embedding.BaseURL == "" {
			return fmt.Errorf("embedding base URL is required when provider is 'http' (set SHELFMATCH_EMBEDDING_BASE_URL)")
		}
	default:
		return fmt.Errorf("embedding provider must be 'none', 'hashing' or 'http', got: %s", config.Embedding.Provider)
	}
	if config.Embedding.Dimension <= 0 {
		return fmt.Errorf("embedding dimension must be positive, got: %d", config.Embedding.Dimension)
	}

	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("Redis URL is required when cache type is 'redis'")
	}

	if config.Log.Level != "" {
		if _, err := zerolog.ParseLevel(config.Log.Level); err != nil {
			return fmt.Errorf("invalid log level: %w", err)
		}
	}

	return nil
}

// loadEnvFile reads KEY=VALUE lines from ./.env into the process environment.
// Variables that are already set win. A missing file is not an error.
func loadEnvFile() error {
	f, err := os.Open(".env")
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		if err := os.Setenv(key, strings.Trim(strings.TrimSpace(value), `"'`)); err != nil {
			return err
		}
	}
	return scanner.Err()
}
