// Package http builds *http.Client instances for the pipeline's
// outbound calls (LLM providers, the embedding service, metrics
// scraping) with consistent timeout and transport tuning per consumer.
package http

import (
	"crypto/tls"
	"net/http"
	"time"
)

// ClientConfig controls the timeout and transport tuning of a client
// built by NewClient. MaxRetries is carried for callers: NewClient does
// not read it, and the client it returns never retries a request.
type ClientConfig struct {
	Timeout                 time.Duration
	MaxRetries              int
	DisableSSLVerification  bool
	MaxIdleConns            int
	IdleConnTimeout         time.Duration
	TLSHandshakeTimeout     time.Duration
	ResponseHeaderTimeout   time.Duration
}

// DefaultClientConfig returns the baseline tuning used when a consumer
// has no specific requirements.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Timeout:                30 * time.Second,
		MaxRetries:             3,
		DisableSSLVerification: false,
		MaxIdleConns:           10,
		IdleConnTimeout:        90 * time.Second,
		TLSHandshakeTimeout:    10 * time.Second,
		ResponseHeaderTimeout:  10 * time.Second,
	}
}

// NewClient builds an *http.Client from config.
func NewClient(config ClientConfig) *http.Client {
	transport := &http.Transport{
		MaxIdleConns:          config.MaxIdleConns,
		IdleConnTimeout:       config.IdleConnTimeout,
		TLSHandshakeTimeout:   config.TLSHandshakeTimeout,
		ResponseHeaderTimeout: config.ResponseHeaderTimeout,
	}

	if config.DisableSSLVerification {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}

	return &http.Client{
		Timeout:   config.Timeout,
		Transport: transport,
	}
}

// NewClientWithTimeout builds a client with the default tuning but a
// caller-supplied timeout.
func NewClientWithTimeout(timeout time.Duration) *http.Client {
	config := DefaultClientConfig()
	config.Timeout = timeout
	return NewClient(config)
}

// NewDefaultClient builds a client using DefaultClientConfig.
func NewDefaultClient() *http.Client {
	return NewClient(DefaultClientConfig())
}

// EmbeddingAPIClientConfig tunes a client for calls to the external
// embedding-model HTTP service: short timeout, MaxRetries of 2, since a
// slow embedding call should fail fast and fall back to a cache miss
// rather than stall the pipeline's soft timeout budget.
func EmbeddingAPIClientConfig() ClientConfig {
	config := DefaultClientConfig()
	config.Timeout = 10 * time.Second
	config.MaxRetries = 2
	return config
}

// PrometheusClientConfig tunes a client for scraping or pushing metrics,
// with a response-header timeout at half the overall budget so a stuck
// connection is detected well before the overall call times out.
func PrometheusClientConfig(timeout time.Duration) ClientConfig {
	config := DefaultClientConfig()
	config.Timeout = timeout
	config.ResponseHeaderTimeout = timeout / 2
	return config
}

// LLMClientConfig tunes a client for a provider adapter call, with a
// response-header timeout at a third of the overall budget to leave
// room for slow model generation after headers arrive.
func LLMClientConfig(timeout time.Duration) ClientConfig {
	config := DefaultClientConfig()
	config.Timeout = timeout
	config.ResponseHeaderTimeout = timeout / 3
	return config
}
