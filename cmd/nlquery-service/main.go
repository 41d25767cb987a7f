// Command nlquery-service hosts the natural-language query pipeline
// behind a small HTTP API: one endpoint accepts a free-text question
// and returns ranked members, a conversational summary, and follow-up
// suggestions, plus /healthz and /metrics for operators.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	nlconfig "github.com/communityconnect/nlquery/internal/config"
	"github.com/communityconnect/nlquery/internal/database"
	apperrors "github.com/communityconnect/nlquery/internal/errors"
	"github.com/communityconnect/nlquery/pkg/metrics"
	"github.com/communityconnect/nlquery/pkg/nlquery/cache"
	"github.com/communityconnect/nlquery/pkg/nlquery/embed"
	"github.com/communityconnect/nlquery/pkg/nlquery/hybrid"
	"github.com/communityconnect/nlquery/pkg/nlquery/llm"
	"github.com/communityconnect/nlquery/pkg/nlquery/pipeline"
	"github.com/communityconnect/nlquery/pkg/nlquery/search"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the pipeline configuration file")
	addr := flag.String("addr", ":8080", "address the query API listens on")
	metricsPort := flag.String("metrics-port", "9090", "port the /metrics and /healthz endpoints listen on")
	flag.Parse()

	log := logrus.New()

	cfg, err := nlconfig.Load(*configPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}
	applyLoggingConfig(log, cfg.Logging)

	dbCfg := database.DefaultConfig()
	dbCfg.LoadFromEnv()

	sqlDB, err := database.Connect(dbCfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to open member store health-check connection")
	}
	defer sqlDB.Close()

	store, err := search.OpenPGStore(dbCfg.ConnectionString())
	if err != nil {
		log.WithError(err).Fatal("failed to open member store")
	}

	embeddingCache := buildEmbeddingCache(cfg.Cache, log)
	embedder := embed.New(embeddingCache, buildEmbeddingProvider(), log)

	weights := search.Weights{
		Semantic:   cfg.Search.SemanticWeight,
		Keyword:    cfg.Search.KeywordWeight,
		FieldBoost: cfg.Search.FieldBoostWeight,
	}
	engine := search.New(store, embedder, weights, log)

	gateway := llm.NewGateway(buildLLMProviders(cfg.LLM, log), cfg.LLM, log)
	extractor := hybrid.New(gateway, cfg.Pipeline.RegexConfidenceThreshold, log)

	orchestrator := pipeline.New(extractor, engine, cfg.Pipeline, log)

	watchLoggingLevel(*configPath, log)

	metricsServer := metrics.NewServer(*metricsPort, log)
	metricsServer.StartAsync()

	router := buildRouter(orchestrator, cfg.Search.DefaultLimit, cfg.Search.MaxLimit, log)
	server := &http.Server{
		Addr:         *addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("addr", *addr).Info("nlquery-service listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("query API server failed")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down nlquery-service")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("query API server shutdown error")
	}
	if err := metricsServer.Stop(shutdownCtx); err != nil {
		log.WithError(err).Error("metrics server shutdown error")
	}
	log.Info("nlquery-service stopped")
}

func applyLoggingConfig(log *logrus.Logger, cfg nlconfig.LoggingConfig) {
	if level, err := logrus.ParseLevel(cfg.Level); err == nil {
		log.SetLevel(level)
	}
	if cfg.Format == "text" {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
}

// watchLoggingLevel re-parses the configuration file's logging level
// whenever it changes on disk and applies it live, without restarting
// the process. Every other setting (provider list, search weights,
// timeouts) is wired at startup only: swapping those live would
// require rebuilding the gateway/engine/orchestrator chain, which is
// out of scope for a log-level tweak.
func watchLoggingLevel(configPath string, log *logrus.Logger) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.WithError(err).Warn("failed to start configuration file watcher, logging level changes require a restart")
		return
	}
	if err := watcher.Add(configPath); err != nil {
		log.WithError(err).Warn("failed to watch configuration file, logging level changes require a restart")
		watcher.Close()
		return
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				reloaded, err := nlconfig.Load(configPath)
				if err != nil {
					log.WithError(err).Warn("configuration file changed but failed to reload, keeping current logging level")
					continue
				}
				if level, err := logrus.ParseLevel(reloaded.Logging.Level); err == nil && level != log.GetLevel() {
					log.SetLevel(level)
					log.WithField("level", level.String()).Info("logging level reloaded from configuration file")
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.WithError(err).Warn("configuration file watcher error")
			}
		}
	}()
}

func buildEmbeddingCache(cfg nlconfig.CacheConfig, log *logrus.Logger) *cache.EmbeddingCache {
	local := cache.NewLocalCache(cfg.Capacity, cfg.TTL)
	if cfg.RedisAddr == "" {
		return cache.New(local, nil, log)
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	remote := cache.NewRedisCache(client, cfg.TTL)
	return cache.New(local, remote, log)
}

// buildEmbeddingProvider wires an embed.HTTPProvider when an endpoint
// is configured, or leaves the engine to degrade to keyword-only
// scoring otherwise.
func buildEmbeddingProvider() embed.Provider {
	endpoint := os.Getenv("NLQUERY_EMBEDDING_ENDPOINT")
	if endpoint == "" {
		return nil
	}
	return embed.NewHTTPProvider(endpoint)
}

// buildLLMProviders constructs one llm.Provider per configured entry,
// dispatching on name: "anthropic" and "bedrock" get their dedicated
// hosted-API adapters, everything else is treated as an OpenAI-
// compatible endpoint (a local model server or a third-party
// lookalike API) via langchaingo.
func buildLLMProviders(cfg nlconfig.LLMConfig, log *logrus.Logger) []llm.Provider {
	var providers []llm.Provider
	for _, p := range cfg.Providers {
		switch p.Name {
		case "anthropic":
			apiKey := os.Getenv("ANTHROPIC_API_KEY")
			if apiKey == "" {
				log.WithField("provider", p.Name).Warn("skipping anthropic provider: ANTHROPIC_API_KEY not set")
				continue
			}
			providers = append(providers, llm.NewAnthropicProvider(apiKey, p.Model))
		case "bedrock":
			awsCfg, err := config.LoadDefaultConfig(context.Background())
			if err != nil {
				log.WithError(err).Warn("skipping bedrock provider: failed to load AWS configuration")
				continue
			}
			providers = append(providers, llm.NewBedrockProvider(bedrockruntime.NewFromConfig(awsCfg), p.Model))
		default:
			apiKey := os.Getenv(fmt.Sprintf("%s_API_KEY", p.Name))
			local, err := llm.NewLocalModelProvider(p.Name, p.Endpoint, p.Model, apiKey)
			if err != nil {
				log.WithError(err).WithField("provider", p.Name).Warn("skipping local/OpenAI-compatible provider")
				continue
			}
			providers = append(providers, local)
		}
	}
	return providers
}

type queryRequest struct {
	Query string `json:"query" validate:"required,min=1,max=500"`
	Limit int    `json:"limit" validate:"omitempty,min=1,max=100"`
}

func buildRouter(orchestrator *pipeline.Orchestrator, defaultLimit, maxLimit int, log *logrus.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Post("/api/v1/query", queryHandler(orchestrator, defaultLimit, maxLimit, log))
	return r
}

func queryHandler(orchestrator *pipeline.Orchestrator, defaultLimit, maxLimit int, log *logrus.Logger) http.HandlerFunc {
	validate := newRequestValidator()

	return func(w http.ResponseWriter, r *http.Request) {
		req, err := decodeQueryRequest(r, validate)
		if err != nil {
			writeError(w, apperrors.NewInputInvalidError(err.Error()))
			return
		}

		limit := req.Limit
		if limit <= 0 {
			limit = defaultLimit
		}
		if limit > maxLimit {
			limit = maxLimit
		}

		requestID := middleware.GetReqID(r.Context())
		if requestID == "" {
			requestID = uuid.NewString()
		}

		result, err := orchestrator.Process(r.Context(), req.Query, limit)
		if err != nil {
			log.WithField("request_id", requestID).WithFields(apperrors.LogFields(err)).
				Warn("query processing failed")
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}
