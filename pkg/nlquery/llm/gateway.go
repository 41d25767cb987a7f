// Package llm is the multi-provider gateway the hybrid extractor
// falls back to when the regex pass isn't confident enough: it tries
// providers in priority order, each one guarded by its own retry
// policy and circuit breaker, and gives up only once every provider
// has refused the request.
package llm

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"github.com/communityconnect/nlquery/internal/config"
	apperrors "github.com/communityconnect/nlquery/internal/errors"
	"github.com/communityconnect/nlquery/pkg/metrics"
	"github.com/communityconnect/nlquery/pkg/nlquery/model"
	"github.com/sirupsen/logrus"
)

// registeredProvider pairs a Provider with the priority it was
// configured at and the circuit breaker guarding calls to it.
type registeredProvider struct {
	provider Provider
	priority int
	breaker  *gobreaker.CircuitBreaker
}

// Gateway routes generation requests across providers in priority
// order, skipping any whose circuit breaker is open.
type Gateway struct {
	mu         sync.RWMutex
	providers  []*registeredProvider
	retryCount int
	log        *logrus.Logger
}

// NewGateway builds a Gateway from already-constructed providers,
// ordering them by cfg.Providers[i].Priority (lower runs first) and
// wrapping each in its own circuit breaker per cfg.CircuitBreaker.
func NewGateway(providers []Provider, cfg config.LLMConfig, logger *logrus.Logger) *Gateway {
	priorityByName := make(map[string]int, len(cfg.Providers))
	for _, p := range cfg.Providers {
		priorityByName[p.Name] = p.Priority
	}

	gw := &Gateway{
		retryCount: cfg.RetryCount,
		log:        logger,
	}

	for _, p := range providers {
		priority := priorityByName[p.Name()]
		breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        p.Name(),
			MaxRequests: 1,
			Interval:    0,
			Timeout:     cfg.CircuitBreaker.CooldownPeriod,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= uint32(cfg.CircuitBreaker.FailureThreshold)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.WithFields(logrus.Fields{"provider": name, "from": from.String(), "to": to.String()}).
					Warn("llm provider circuit breaker state changed")
				metrics.SetCircuitBreakerState(name, breakerStateValue(to))
			},
		})

		gw.providers = append(gw.providers, &registeredProvider{
			provider: p,
			priority: priority,
			breaker:  breaker,
		})
	}

	sort.SliceStable(gw.providers, func(i, j int) bool {
		return gw.providers[i].priority < gw.providers[j].priority
	})

	return gw
}

// breakerStateValue maps gobreaker's state to the 0/1/2 convention
// used by the circuit_breaker_state gauge.
func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateOpen:
		return 1
	case gobreaker.StateHalfOpen:
		return 2
	default:
		return 0
	}
}

// Generate tries each provider in priority order, retrying a failed
// call up to retryCount times before moving to the next provider.
// Every provider error is retried alike: transient and permanent
// errors are not told apart, and only an open circuit or a cancelled
// context ends a provider's retries early. It returns AllProvidersUnavailable only once every
// provider (across all its retries) has failed.
func (g *Gateway) Generate(ctx context.Context, messages []Message, temperature float32, maxTokens int) (Response, error) {
	g.mu.RLock()
	providers := append([]*registeredProvider(nil), g.providers...)
	g.mu.RUnlock()

	for _, rp := range providers {
		resp, err := g.tryProvider(ctx, rp, messages, temperature, maxTokens)
		if err == nil {
			return resp, nil
		}
		g.log.WithFields(logrus.Fields{"provider": rp.provider.Name(), "error": err.Error()}).
			Warn("llm provider failed, trying next")
	}

	return Response{}, apperrors.NewAllProvidersUnavailableError()
}

func (g *Gateway) tryProvider(ctx context.Context, rp *registeredProvider, messages []Message, temperature float32, maxTokens int) (Response, error) {
	var attempts int
	maxAttempts := g.retryCount + 1

	var resp Response
	for attempts < maxAttempts {
		attempts++
		start := time.Now()

		result, err := rp.breaker.Execute(func() (interface{}, error) {
			text, genErr := rp.provider.Generate(ctx, messages, temperature, maxTokens)
			return text, genErr
		})

		latency := time.Since(start)
		metrics.RecordLLMAPICall(rp.provider.Name())

		if err == nil {
			resp = Response{
				Text:     result.(string),
				Provider: rp.provider.Name(),
				Latency:  latency,
			}
			return resp, nil
		}

		metrics.RecordLLMAPIError(rp.provider.Name(), classifyError(err))

		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return Response{}, err
		}

		if ctx.Err() != nil {
			return Response{}, ctx.Err()
		}

		if attempts < maxAttempts {
			time.Sleep(backoff(attempts))
		} else {
			return Response{}, err
		}
	}
	return resp, nil
}

func classifyError(err error) string {
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return "circuit_open"
	}
	return "provider_error"
}

// backoff returns an exponential delay for the given 1-indexed
// attempt number (50ms, 100ms, 200ms, ...), capped at one second so a
// flaky provider never stalls the pipeline's soft timeout budget.
func backoff(attempt int) time.Duration {
	if attempt > 5 {
		return time.Second
	}
	d := 50 * time.Millisecond << uint(attempt-1)
	if d > time.Second {
		return time.Second
	}
	return d
}

// Snapshot returns a point-in-time health summary of every registered
// provider, ordered by priority.
func (g *Gateway) Snapshot() []model.ProviderHealth {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]model.ProviderHealth, 0, len(g.providers))
	for _, rp := range g.providers {
		counts := rp.breaker.Counts()
		out = append(out, model.ProviderHealth{
			Name:              rp.provider.Name(),
			Priority:          rp.priority,
			CircuitState:      rp.breaker.State().String(),
			ConsecutiveErrors: int(counts.ConsecutiveFailures),
		})
	}
	return out
}
