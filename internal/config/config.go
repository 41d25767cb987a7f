// Package config loads and validates the YAML configuration for the
// query pipeline: LLM provider list and circuit-breaker tuning, the
// embedding cache, search fusion weights, and pipeline timeouts.
package config

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	sharederrors "github.com/communityconnect/nlquery/pkg/shared/errors"
)

const (
	defaultRetryCount              = 2
	defaultFailureThreshold        = 5
	defaultCooldownPeriod          = 30 * time.Second
	defaultProviderTimeout         = 5 * time.Second
	defaultProviderTemperature     = 0.2
	defaultProviderMaxTokens       = 400
	defaultCacheCapacity           = 1024
	defaultCacheTTL                = 10 * time.Minute
	defaultSemanticWeight          = 0.6
	defaultKeywordWeight           = 0.3
	defaultFieldBoostWeight        = 0.1
	defaultSearchLimit             = 20
	defaultMaxLimit                = 100
	defaultSoftTimeout             = 3 * time.Second
	defaultHardTimeout             = 10 * time.Second
	defaultRegexConfidenceThreshold = 0.75
	defaultLoggingLevel            = "info"
	defaultLoggingFormat           = "json"

	weightSumTolerance = 1e-6
)

// ProviderConfig configures one LLM provider adapter.
type ProviderConfig struct {
	Name        string        `yaml:"name"`
	Priority    int           `yaml:"priority"`
	Endpoint    string        `yaml:"endpoint"`
	Model       string        `yaml:"model"`
	Timeout     time.Duration `yaml:"timeout"`
	Temperature float32       `yaml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens"`
}

// CircuitBreakerConfig tunes the per-provider breaker.
type CircuitBreakerConfig struct {
	FailureThreshold int           `yaml:"failure_threshold"`
	CooldownPeriod   time.Duration `yaml:"cooldown_period"`
}

// LLMConfig configures the multi-provider gateway.
type LLMConfig struct {
	Providers      []ProviderConfig     `yaml:"providers"`
	RetryCount     int                  `yaml:"retry_count"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuit_breaker"`
}

// CacheConfig configures the embedding cache.
type CacheConfig struct {
	Capacity  int           `yaml:"capacity"`
	TTL       time.Duration `yaml:"ttl"`
	RedisAddr string        `yaml:"redis_addr"`
}

// SearchConfig configures the hybrid search fusion scoring.
type SearchConfig struct {
	SemanticWeight   float64 `yaml:"semantic_weight"`
	KeywordWeight    float64 `yaml:"keyword_weight"`
	FieldBoostWeight float64 `yaml:"field_boost_weight"`
	DefaultLimit     int     `yaml:"default_limit"`
	MaxLimit         int     `yaml:"max_limit"`
}

// PipelineConfig configures orchestrator-level timeouts and thresholds.
type PipelineConfig struct {
	SoftTimeout              time.Duration `yaml:"soft_timeout"`
	HardTimeout              time.Duration `yaml:"hard_timeout"`
	RegexConfidenceThreshold float64       `yaml:"regex_confidence_threshold"`
}

// LoggingConfig configures the logrus output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config is the root configuration document.
type Config struct {
	LLM      LLMConfig      `yaml:"llm"`
	Cache    CacheConfig    `yaml:"cache"`
	Search   SearchConfig   `yaml:"search"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// Load reads, parses, defaults, and validates the configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, sharederrors.FailedTo("read config file", err)
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, sharederrors.FailedTo("parse config file", err)
	}

	applyDefaults(&cfg)

	if err := loadFromEnv(&cfg); err != nil {
		return nil, err
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.LLM.RetryCount == 0 {
		cfg.LLM.RetryCount = defaultRetryCount
	}
	if cfg.LLM.CircuitBreaker.FailureThreshold == 0 {
		cfg.LLM.CircuitBreaker.FailureThreshold = defaultFailureThreshold
	}
	if cfg.LLM.CircuitBreaker.CooldownPeriod == 0 {
		cfg.LLM.CircuitBreaker.CooldownPeriod = defaultCooldownPeriod
	}
	for i := range cfg.LLM.Providers {
		p := &cfg.LLM.Providers[i]
		if p.Priority == 0 {
			p.Priority = i + 1
		}
		if p.Timeout == 0 {
			p.Timeout = defaultProviderTimeout
		}
		if p.Temperature == 0 {
			p.Temperature = defaultProviderTemperature
		}
		if p.MaxTokens == 0 {
			p.MaxTokens = defaultProviderMaxTokens
		}
	}

	if cfg.Cache.Capacity == 0 {
		cfg.Cache.Capacity = defaultCacheCapacity
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = defaultCacheTTL
	}

	if cfg.Search.SemanticWeight == 0 && cfg.Search.KeywordWeight == 0 && cfg.Search.FieldBoostWeight == 0 {
		cfg.Search.SemanticWeight = defaultSemanticWeight
		cfg.Search.KeywordWeight = defaultKeywordWeight
		cfg.Search.FieldBoostWeight = defaultFieldBoostWeight
	}
	if cfg.Search.DefaultLimit == 0 {
		cfg.Search.DefaultLimit = defaultSearchLimit
	}
	if cfg.Search.MaxLimit == 0 {
		cfg.Search.MaxLimit = defaultMaxLimit
	}

	if cfg.Pipeline.SoftTimeout == 0 {
		cfg.Pipeline.SoftTimeout = defaultSoftTimeout
	}
	if cfg.Pipeline.HardTimeout == 0 {
		cfg.Pipeline.HardTimeout = defaultHardTimeout
	}
	if cfg.Pipeline.RegexConfidenceThreshold == 0 {
		cfg.Pipeline.RegexConfidenceThreshold = defaultRegexConfidenceThreshold
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = defaultLoggingLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = defaultLoggingFormat
	}
}

func loadFromEnv(cfg *Config) error {
	if v := os.Getenv("NLQUERY_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("NLQUERY_CACHE_REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
	}
	if v := os.Getenv("NLQUERY_PIPELINE_SOFT_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return sharederrors.ConfigurationError("NLQUERY_PIPELINE_SOFT_TIMEOUT", err.Error())
		}
		cfg.Pipeline.SoftTimeout = d
	}
	return nil
}

func validate(cfg *Config) error {
	if len(cfg.LLM.Providers) == 0 {
		return fmt.Errorf("invalid configuration: at least one LLM provider is required")
	}
	for _, p := range cfg.LLM.Providers {
		if p.Model == "" {
			return fmt.Errorf("invalid configuration: model is required for provider %q", p.Name)
		}
		if p.Endpoint == "" {
			return fmt.Errorf("invalid configuration: endpoint is required for provider %q", p.Name)
		}
	}

	weightSum := cfg.Search.SemanticWeight + cfg.Search.KeywordWeight + cfg.Search.FieldBoostWeight
	if math.Abs(weightSum-1.0) > weightSumTolerance {
		return fmt.Errorf("invalid configuration: search weights must sum to 1.0, got %.4f", weightSum)
	}

	if cfg.Search.MaxLimit < cfg.Search.DefaultLimit {
		return fmt.Errorf("invalid configuration: max result limit must be at least the default limit")
	}

	if cfg.Pipeline.HardTimeout <= cfg.Pipeline.SoftTimeout {
		return fmt.Errorf("invalid configuration: hard timeout must exceed soft timeout")
	}

	if cfg.Pipeline.RegexConfidenceThreshold < 0.0 || cfg.Pipeline.RegexConfidenceThreshold > 1.0 {
		return fmt.Errorf("invalid configuration: regex confidence threshold must be between 0.0 and 1.0")
	}

	return nil
}
