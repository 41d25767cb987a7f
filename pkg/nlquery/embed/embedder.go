// Package embed computes the query embedding the search engine fuses
// against each candidate's stored vector, checking the embedding cache
// before ever calling out to the embedding provider.
package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/communityconnect/nlquery/pkg/nlquery/cache"
	"github.com/communityconnect/nlquery/pkg/nlquery/model"
	sharedhttp "github.com/communityconnect/nlquery/pkg/shared/http"
)

// Provider computes a single embedding vector for arbitrary text.
// Implementations are expected to fail fast: a slow or unreachable
// provider should never stall the pipeline past its soft timeout
// budget, so Embedder treats any Provider error as "unavailable" and
// degrades rather than propagating it.
type Provider interface {
	Embed(ctx context.Context, text string) (model.EmbeddingVector, error)
}

// Embedder is the cache-first search.Embedder implementation: a hit in
// the embedding cache never reaches the network; a miss calls Provider
// once and, on success, writes the result back for next time.
type Embedder struct {
	cache    *cache.EmbeddingCache
	provider Provider
	log      *logrus.Logger
}

// New builds an Embedder. provider may be nil, in which case every
// call degrades to a cache-only lookup (useful for tests or a
// keyword-only deployment with no embedding service configured).
func New(embeddingCache *cache.EmbeddingCache, provider Provider, logger *logrus.Logger) *Embedder {
	return &Embedder{cache: embeddingCache, provider: provider, log: logger}
}

// Embed satisfies pkg/nlquery/search.Embedder: it returns (vector,
// true) on a cache hit or successful provider call, and (nil, false)
// whenever no usable vector could be produced, so the search engine
// can degrade to keyword-only scoring instead of erroring out.
func (e *Embedder) Embed(ctx context.Context, text string) (model.EmbeddingVector, bool) {
	if v, ok := e.cache.Get(ctx, text); ok {
		return v, true
	}

	if e.provider == nil {
		return nil, false
	}

	v, err := e.provider.Embed(ctx, text)
	if err != nil {
		e.log.WithError(err).Warn("embedding provider call failed, degrading to keyword-only search")
		return nil, false
	}

	e.cache.Set(ctx, text, v)
	return v, true
}

// HTTPProvider calls an external embedding HTTP service that accepts
// {"input": text} and returns {"embedding": [...]}.
type HTTPProvider struct {
	client   *http.Client
	endpoint string
}

// NewHTTPProvider builds an HTTPProvider tuned with
// sharedhttp.EmbeddingAPIClientConfig (short timeout, few retries, so
// a slow embedding call fails fast rather than eating into the
// pipeline's soft timeout budget).
func NewHTTPProvider(endpoint string) *HTTPProvider {
	return &HTTPProvider{
		client:   sharedhttp.NewClient(sharedhttp.EmbeddingAPIClientConfig()),
		endpoint: endpoint,
	}
}

type embedRequest struct {
	Input string `json:"input"`
}

type embedResponse struct {
	Embedding model.EmbeddingVector `json:"embedding"`
}

func (p *HTTPProvider) Embed(ctx context.Context, text string) (model.EmbeddingVector, error) {
	body, err := json.Marshal(embedRequest{Input: text})
	if err != nil {
		return nil, fmt.Errorf("marshal embedding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding provider returned status %d", resp.StatusCode)
	}

	var out embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode embedding response: %w", err)
	}
	return out.Embedding, nil
}
