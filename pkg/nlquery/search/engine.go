package search

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"

	apperrors "github.com/communityconnect/nlquery/internal/errors"
	"github.com/communityconnect/nlquery/pkg/metrics"
	"github.com/communityconnect/nlquery/pkg/nlquery/model"
)

// Embedder computes the query embedding the engine fuses against
// each candidate's stored vector. A nil result (ok=false) degrades
// the search to keyword-and-field-boost only: the semantic weight is
// added to the Keyword weight, and FieldBoost keeps its own weight.
type Embedder interface {
	Embed(ctx context.Context, text string) (model.EmbeddingVector, bool)
}

// Engine runs the hybrid search: fetch candidates (relaxing filters
// on an empty result), score them, and return the top results in
// descending relevance order.
type Engine struct {
	store    MemberStore
	embedder Embedder
	weights  Weights
	log      *logrus.Logger
}

// New builds an Engine. weights should sum to 1.0; the caller
// (cmd/nlquery-service, from config.SearchConfig) is responsible for
// that invariant.
func New(store MemberStore, embedder Embedder, weights Weights, logger *logrus.Logger) *Engine {
	return &Engine{store: store, embedder: embedder, weights: weights, log: logger}
}

// Search fetches candidates for filters, relaxing them in fixed order
// if nothing matches, scores every candidate, and returns up to limit
// results sorted by descending relevance.
func (e *Engine) Search(ctx context.Context, queryText string, filters Filters, limit int) ([]model.ScoredMember, error) {
	candidates, degraded, err := e.fetchWithRelaxation(ctx, filters)
	if err != nil {
		return nil, apperrors.NewSearchUnavailableError("fetch candidates", err)
	}
	if degraded {
		metrics.RecordSearchDegraded()
	}

	weights := e.weights
	embedding, ok := e.embedder.Embed(ctx, queryText)
	if !ok {
		// no usable embedding: fold the semantic weight into keyword
		// scoring rather than silently scoring everyone at 0.
		weights.Keyword += weights.Semantic
		weights.Semantic = 0
	}

	scored := make([]model.ScoredMember, 0, len(candidates))
	for _, m := range candidates {
		scored = append(scored, score(m, filters, embedding, weights))
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].RelevanceScore > scored[j].RelevanceScore
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

// fetchWithRelaxation tries filters as given, then relaxes fields in
// relaxationOrder until candidates are found or every relaxable field
// has been dropped. degraded is true once any relaxation happened,
// signaling the result set no longer matches the user's full intent.
func (e *Engine) fetchWithRelaxation(ctx context.Context, filters Filters) ([]model.MemberRecord, bool, error) {
	candidates, err := e.store.FetchCandidates(ctx, filters, 0)
	if err != nil {
		return nil, false, err
	}
	if len(candidates) > 0 {
		return candidates, false, nil
	}

	degraded := false
	current := filters
	for _, field := range relaxationOrder {
		next, changed := relax(current, field)
		if !changed {
			continue
		}
		current = next
		degraded = true

		candidates, err = e.store.FetchCandidates(ctx, current, 0)
		if err != nil {
			return nil, false, err
		}
		if len(candidates) > 0 {
			e.log.WithField("relaxed_field", field).Info("search relaxed filters to find candidates")
			return candidates, true, nil
		}
	}

	return candidates, degraded, nil
}
