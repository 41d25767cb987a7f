package llm

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"

	"github.com/communityconnect/nlquery/internal/config"
)

// fakeProvider is a deterministic stand-in for a real LLM backend:
// it fails its first failCount calls then succeeds, so tests can
// exercise retry and fallback behavior without a network.
type fakeProvider struct {
	name      string
	failCount int32
	calls     int32
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Generate(ctx context.Context, messages []Message, temperature float32, maxTokens int) (string, error) {
	n := atomic.AddInt32(&f.calls, 1)
	if n <= atomic.LoadInt32(&f.failCount) {
		return "", errors.New("simulated provider failure")
	}
	return "ok from " + f.name, nil
}

func testLLMConfig(providers ...config.ProviderConfig) config.LLMConfig {
	return config.LLMConfig{
		Providers:  providers,
		RetryCount: 1,
		CircuitBreaker: config.CircuitBreakerConfig{
			FailureThreshold: 2,
			CooldownPeriod:   50 * time.Millisecond,
		},
	}
}

var _ = Describe("Gateway", func() {
	var logger *logrus.Logger

	BeforeEach(func() {
		logger = logrus.New()
		logger.SetLevel(logrus.FatalLevel)
	})

	It("returns the first provider's result when it succeeds", func() {
		primary := &fakeProvider{name: "primary"}
		secondary := &fakeProvider{name: "secondary"}

		cfg := testLLMConfig(
			config.ProviderConfig{Name: "primary", Priority: 1},
			config.ProviderConfig{Name: "secondary", Priority: 2},
		)
		gw := NewGateway([]Provider{primary, secondary}, cfg, logger)

		resp, err := gw.Generate(context.Background(), []Message{{Role: "user", Content: "hi"}}, 0.2, 100)
		Expect(err).ToNot(HaveOccurred())
		Expect(resp.Provider).To(Equal("primary"))
		Expect(secondary.calls).To(Equal(int32(0)))
	})

	It("retries a failing provider before moving on", func() {
		flaky := &fakeProvider{name: "flaky", failCount: 1}

		cfg := testLLMConfig(config.ProviderConfig{Name: "flaky", Priority: 1})
		gw := NewGateway([]Provider{flaky}, cfg, logger)

		resp, err := gw.Generate(context.Background(), []Message{{Role: "user", Content: "hi"}}, 0.2, 100)
		Expect(err).ToNot(HaveOccurred())
		Expect(resp.Provider).To(Equal("flaky"))
		Expect(flaky.calls).To(Equal(int32(2)))
	})

	It("falls through to the next provider in priority order", func() {
		broken := &fakeProvider{name: "broken", failCount: 100}
		backup := &fakeProvider{name: "backup"}

		cfg := testLLMConfig(
			config.ProviderConfig{Name: "broken", Priority: 1},
			config.ProviderConfig{Name: "backup", Priority: 2},
		)
		gw := NewGateway([]Provider{broken, backup}, cfg, logger)

		resp, err := gw.Generate(context.Background(), []Message{{Role: "user", Content: "hi"}}, 0.2, 100)
		Expect(err).ToNot(HaveOccurred())
		Expect(resp.Provider).To(Equal("backup"))
	})

	It("returns an AllProvidersUnavailable error when every provider fails", func() {
		broken1 := &fakeProvider{name: "broken1", failCount: 100}
		broken2 := &fakeProvider{name: "broken2", failCount: 100}

		cfg := testLLMConfig(
			config.ProviderConfig{Name: "broken1", Priority: 1},
			config.ProviderConfig{Name: "broken2", Priority: 2},
		)
		gw := NewGateway([]Provider{broken1, broken2}, cfg, logger)

		_, err := gw.Generate(context.Background(), []Message{{Role: "user", Content: "hi"}}, 0.2, 100)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("no LLM provider is currently available"))
	})

	It("orders providers by configured priority regardless of constructor order", func() {
		low := &fakeProvider{name: "low-priority"}
		high := &fakeProvider{name: "high-priority"}

		cfg := testLLMConfig(
			config.ProviderConfig{Name: "low-priority", Priority: 5},
			config.ProviderConfig{Name: "high-priority", Priority: 1},
		)
		gw := NewGateway([]Provider{low, high}, cfg, logger)

		resp, err := gw.Generate(context.Background(), []Message{{Role: "user", Content: "hi"}}, 0.2, 100)
		Expect(err).ToNot(HaveOccurred())
		Expect(resp.Provider).To(Equal("high-priority"))
	})

	It("reports provider health via Snapshot", func() {
		p := &fakeProvider{name: "healthy"}
		cfg := testLLMConfig(config.ProviderConfig{Name: "healthy", Priority: 1})
		gw := NewGateway([]Provider{p}, cfg, logger)

		_, _ = gw.Generate(context.Background(), []Message{{Role: "user", Content: "hi"}}, 0.2, 100)

		snapshot := gw.Snapshot()
		Expect(snapshot).To(HaveLen(1))
		Expect(snapshot[0].Name).To(Equal("healthy"))
		Expect(snapshot[0].CircuitState).To(Equal("closed"))
	})
})
