package config

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Config", func() {
	var (
		tempDir    string
		configFile string
	)

	BeforeEach(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "config-test")
		Expect(err).NotTo(HaveOccurred())
		configFile = filepath.Join(tempDir, "config.yaml")
	})

	AfterEach(func() {
		os.RemoveAll(tempDir)
	})

	Describe("Load", func() {
		Context("when config file exists with valid content", func() {
			BeforeEach(func() {
				validConfig := `
llm:
  retry_count: 2
  circuit_breaker:
    failure_threshold: 5
    cooldown_period: "30s"
  providers:
    - name: "anthropic"
      priority: 1
      endpoint: "https://api.anthropic.com"
      model: "claude-3-haiku"
      timeout: "5s"
      temperature: 0.2
      max_tokens: 400
    - name: "bedrock"
      priority: 2
      endpoint: "bedrock-runtime.us-east-1.amazonaws.com"
      model: "anthropic.claude-v2"
      timeout: "8s"
      temperature: 0.2
      max_tokens: 400

cache:
  capacity: 4096
  ttl: "15m"

search:
  semantic_weight: 0.6
  keyword_weight: 0.3
  field_boost_weight: 0.1
  default_limit: 20
  max_limit: 100

pipeline:
  soft_timeout: "3s"
  hard_timeout: "10s"
  regex_confidence_threshold: 0.75

logging:
  level: "info"
  format: "json"
`
				err := os.WriteFile(configFile, []byte(validConfig), 0644)
				Expect(err).NotTo(HaveOccurred())
			})

			It("should load configuration successfully", func() {
				config, err := Load(configFile)
				Expect(err).NotTo(HaveOccurred())
				Expect(config).NotTo(BeNil())

				Expect(config.LLM.RetryCount).To(Equal(2))
				Expect(config.LLM.CircuitBreaker.FailureThreshold).To(Equal(5))
				Expect(config.LLM.CircuitBreaker.CooldownPeriod).To(Equal(30 * time.Second))
				Expect(config.LLM.Providers).To(HaveLen(2))
				Expect(config.LLM.Providers[0].Name).To(Equal("anthropic"))
				Expect(config.LLM.Providers[0].Timeout).To(Equal(5 * time.Second))
				Expect(config.LLM.Providers[0].Temperature).To(Equal(float32(0.2)))
				Expect(config.LLM.Providers[1].Name).To(Equal("bedrock"))

				Expect(config.Cache.Capacity).To(Equal(4096))
				Expect(config.Cache.TTL).To(Equal(15 * time.Minute))

				Expect(config.Search.SemanticWeight).To(Equal(0.6))
				Expect(config.Search.DefaultLimit).To(Equal(20))
				Expect(config.Search.MaxLimit).To(Equal(100))

				Expect(config.Pipeline.SoftTimeout).To(Equal(3 * time.Second))
				Expect(config.Pipeline.HardTimeout).To(Equal(10 * time.Second))
				Expect(config.Pipeline.RegexConfidenceThreshold).To(Equal(0.75))

				Expect(config.Logging.Level).To(Equal("info"))
				Expect(config.Logging.Format).To(Equal("json"))
			})
		})

		Context("when config file has minimal content", func() {
			BeforeEach(func() {
				minimalConfig := `
llm:
  providers:
    - name: "anthropic"
      endpoint: "https://api.anthropic.com"
      model: "claude-3-haiku"
`
				err := os.WriteFile(configFile, []byte(minimalConfig), 0644)
				Expect(err).NotTo(HaveOccurred())
			})

			It("should load with defaults for missing values", func() {
				config, err := Load(configFile)
				Expect(err).NotTo(HaveOccurred())

				Expect(config.LLM.Providers[0].Name).To(Equal("anthropic"))

				Expect(config.Cache.Capacity).To(Equal(defaultCacheCapacity))
				Expect(config.Cache.TTL).To(Equal(defaultCacheTTL))
				Expect(config.Search.DefaultLimit).To(Equal(defaultSearchLimit))
				Expect(config.Pipeline.SoftTimeout).To(Equal(defaultSoftTimeout))
				Expect(config.Pipeline.HardTimeout).To(Equal(defaultHardTimeout))
				Expect(config.Logging.Level).To(Equal("info"))
			})
		})

		Context("when config file does not exist", func() {
			It("should return an error", func() {
				_, err := Load("/nonexistent/config.yaml")
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("failed to read config file"))
			})
		})

		Context("when config file has invalid YAML", func() {
			BeforeEach(func() {
				invalidConfig := `
llm:
  providers: [
cache:
  capacity: 10
`
				err := os.WriteFile(configFile, []byte(invalidConfig), 0644)
				Expect(err).NotTo(HaveOccurred())
			})

			It("should return an error", func() {
				_, err := Load(configFile)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("failed to parse config file"))
			})
		})

		Context("when config has an unknown key", func() {
			BeforeEach(func() {
				unknownKeyConfig := `
llm:
  providers:
    - name: "anthropic"
      endpoint: "https://api.anthropic.com"
      model: "claude-3-haiku"
  bogus_setting: true
`
				err := os.WriteFile(configFile, []byte(unknownKeyConfig), 0644)
				Expect(err).NotTo(HaveOccurred())
			})

			It("should return an error", func() {
				_, err := Load(configFile)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("failed to parse config file"))
			})
		})

		Context("when config has invalid duration formats", func() {
			BeforeEach(func() {
				invalidDurationConfig := `
llm:
  providers:
    - name: "anthropic"
      endpoint: "https://api.anthropic.com"
      model: "claude-3-haiku"
      timeout: "not-a-duration"
`
				err := os.WriteFile(configFile, []byte(invalidDurationConfig), 0644)
				Expect(err).NotTo(HaveOccurred())
			})

			It("should return an error", func() {
				_, err := Load(configFile)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("failed to parse config file"))
			})
		})
	})

	Describe("validate", func() {
		var config *Config

		BeforeEach(func() {
			config = &Config{
				LLM: LLMConfig{
					RetryCount: 2,
					Providers: []ProviderConfig{
						{Name: "anthropic", Priority: 1, Endpoint: "https://api.anthropic.com", Model: "claude-3-haiku", Timeout: 5 * time.Second, Temperature: 0.2, MaxTokens: 400},
					},
					CircuitBreaker: CircuitBreakerConfig{FailureThreshold: 5, CooldownPeriod: 30 * time.Second},
				},
				Cache: CacheConfig{Capacity: 4096, TTL: 15 * time.Minute},
				Search: SearchConfig{
					SemanticWeight:   0.6,
					KeywordWeight:    0.3,
					FieldBoostWeight: 0.1,
					DefaultLimit:     20,
					MaxLimit:         100,
				},
				Pipeline: PipelineConfig{
					SoftTimeout:              3 * time.Second,
					HardTimeout:              10 * time.Second,
					RegexConfidenceThreshold: 0.75,
				},
				Logging: LoggingConfig{Level: "info", Format: "json"},
			}
		})

		Context("when config is valid", func() {
			It("should pass validation", func() {
				Expect(validate(config)).NotTo(HaveOccurred())
			})
		})

		Context("when no LLM providers are configured", func() {
			BeforeEach(func() {
				config.LLM.Providers = nil
			})

			It("should return validation error", func() {
				err := validate(config)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("at least one LLM provider"))
			})
		})

		Context("when a provider is missing a model", func() {
			BeforeEach(func() {
				config.LLM.Providers[0].Model = ""
			})

			It("should return validation error", func() {
				err := validate(config)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("model is required"))
			})
		})

		Context("when search weights do not sum to 1", func() {
			BeforeEach(func() {
				config.Search.SemanticWeight = 0.9
			})

			It("should return validation error", func() {
				err := validate(config)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("search weights must sum to 1.0"))
			})
		})

		Context("when max result limit is below the default", func() {
			BeforeEach(func() {
				config.Search.MaxLimit = 5
			})

			It("should return validation error", func() {
				err := validate(config)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("max result limit must be at least the default limit"))
			})
		})

		Context("when the hard timeout is not greater than the soft timeout", func() {
			BeforeEach(func() {
				config.Pipeline.HardTimeout = config.Pipeline.SoftTimeout
			})

			It("should return validation error", func() {
				err := validate(config)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("hard timeout must exceed soft timeout"))
			})
		})

		Context("when regex confidence threshold is out of range", func() {
			BeforeEach(func() {
				config.Pipeline.RegexConfidenceThreshold = 1.5
			})

			It("should return validation error", func() {
				err := validate(config)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("regex confidence threshold must be between 0.0 and 1.0"))
			})
		})
	})

	Describe("loadFromEnv", func() {
		var config *Config

		BeforeEach(func() {
			config = &Config{}
			os.Clearenv()
		})

		Context("when environment variables are set", func() {
			BeforeEach(func() {
				os.Setenv("NLQUERY_LOG_LEVEL", "debug")
				os.Setenv("NLQUERY_CACHE_REDIS_ADDR", "localhost:6379")
				os.Setenv("NLQUERY_PIPELINE_SOFT_TIMEOUT", "2s")
			})

			AfterEach(func() {
				os.Clearenv()
			})

			It("should load values from environment", func() {
				err := loadFromEnv(config)
				Expect(err).NotTo(HaveOccurred())

				Expect(config.Logging.Level).To(Equal("debug"))
				Expect(config.Cache.RedisAddr).To(Equal("localhost:6379"))
				Expect(config.Pipeline.SoftTimeout).To(Equal(2 * time.Second))
			})
		})

		Context("when no environment variables are set", func() {
			It("should not modify config", func() {
				originalConfig := *config
				err := loadFromEnv(config)
				Expect(err).NotTo(HaveOccurred())
				Expect(*config).To(Equal(originalConfig))
			})
		})
	})
})
