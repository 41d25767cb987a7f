// Package pipeline orchestrates a single natural-language query
// through extraction, search, and response formatting: a small state
// machine (received -> extracting -> searching -> formatting ->
// done/failed) with a soft timeout that drops the LLM fallback and a
// hard timeout that returns whatever was produced so far, flagged
// degraded, rather than failing the request outright.
package pipeline

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/communityconnect/nlquery/internal/config"
	apperrors "github.com/communityconnect/nlquery/internal/errors"
	"github.com/communityconnect/nlquery/pkg/metrics"
	"github.com/communityconnect/nlquery/pkg/nlquery/cache"
	"github.com/communityconnect/nlquery/pkg/nlquery/model"
	"github.com/communityconnect/nlquery/pkg/nlquery/response"
	"github.com/communityconnect/nlquery/pkg/nlquery/search"
	"github.com/communityconnect/nlquery/pkg/nlquery/suggest"
)

var tracer = otel.Tracer("github.com/communityconnect/nlquery/pkg/nlquery/pipeline")

// Extractor is the subset of hybrid.Extractor the orchestrator
// depends on, kept narrow so tests can supply a fake.
type Extractor interface {
	Extract(ctx context.Context, query string) model.HybridExtractionResult
}

// Engine is the subset of search.Engine the orchestrator depends on.
type Engine interface {
	Search(ctx context.Context, queryText string, filters search.Filters, limit int) ([]model.ScoredMember, error)
}

// Orchestrator wires extraction, search, and response assembly into a
// single Process call and enforces the pipeline's soft/hard timeout
// budget around it.
type Orchestrator struct {
	extractor Extractor
	engine    Engine
	cfg       config.PipelineConfig
	log       *logrus.Logger
}

// New builds an Orchestrator.
func New(extractor Extractor, engine Engine, cfg config.PipelineConfig, logger *logrus.Logger) *Orchestrator {
	return &Orchestrator{extractor: extractor, engine: engine, cfg: cfg, log: logger}
}

// Process runs query through the full pipeline and returns the
// caller-facing Result. It never returns a timeout as an error: a hard
// timeout produces a Result with Degraded=true and whatever partial
// data the pipeline had assembled at that point. Only input validation
// and a hard (non-timeout) search failure are reported as errors.
func (o *Orchestrator) Process(ctx context.Context, queryText string, limit int) (model.Result, error) {
	metrics.IncrementConcurrentRequests()
	defer metrics.DecrementConcurrentRequests()
	defer metrics.RecordQueryProcessed()

	total := metrics.NewTimer()
	queryID := uuid.NewString()

	ctx, span := tracer.Start(ctx, "pipeline.process", trace.WithAttributes(
		attribute.String("query.id", queryID),
	))
	defer span.End()

	result := model.Result{
		QueryID:         queryID,
		NormalizedQuery: cache.Key(queryText),
		Stage:           model.StageReceived,
	}

	if strings.TrimSpace(queryText) == "" {
		result.Stage = model.StageFailed
		return result, apperrors.NewInputInvalidError("query text must not be empty")
	}

	hardCtx, cancel := context.WithTimeout(ctx, o.cfg.HardTimeout)
	defer cancel()

	if limit <= 0 {
		limit = defaultLimit
	}

	result = o.extract(hardCtx, result, queryText)
	if done, r := o.checkBudget(hardCtx, result); done {
		r.Duration = total.Elapsed()
		return r, nil
	}

	if result.Entities.IsEmpty() && result.Intent.Primary == model.IntentUnknown {
		result = o.formatNoSignal(result, queryText)
		result.Stage = model.StageDone
		result.Duration = total.Elapsed()
		return result, nil
	}

	result, err := o.search(hardCtx, result, queryText, limit)
	if done, r := o.checkBudget(hardCtx, result); done {
		r.Duration = total.Elapsed()
		return r, nil
	}
	if err != nil {
		result.Stage = model.StageFailed
		result.Duration = total.Elapsed()
		return result, err
	}

	result = o.format(result, queryText)

	result.Stage = model.StageDone
	result.Duration = total.Elapsed()
	return result, nil
}

const defaultLimit = 20

// checkBudget reports whether the hard timeout has already fired; if
// so it finishes result into a degraded, best-effort Done state
// (filling Summary/Suggestions with generic fallbacks if those stages
// never ran) rather than letting the caller see a raw deadline error.
func (o *Orchestrator) checkBudget(ctx context.Context, result model.Result) (bool, model.Result) {
	if ctx.Err() == nil {
		return false, result
	}

	o.log.WithField("query_id", result.QueryID).WithField("stage", result.Stage).
		Warn("pipeline hard timeout reached, returning best-effort partial result")

	result.Degraded = true
	if result.Summary == "" {
		result.Summary = "This is taking longer than expected. Here's what we found so far."
	}
	if len(result.Suggestions) == 0 {
		result.Suggestions = suggest.Generate(result.Intent.Primary, result.Entities, len(result.Members))
	}
	result.Stage = model.StageDone
	return true, result
}

// extract runs the extraction stage with its own soft-timeout-bounded
// context: a slow LLM fallback call is cancelled at the soft deadline,
// not the hard one, so the pipeline still has time left to search and
// format a regex-only result.
func (o *Orchestrator) extract(ctx context.Context, result model.Result, queryText string) model.Result {
	result.Stage = model.StageExtracting
	ctx, span := tracer.Start(ctx, "pipeline.extract")
	defer span.End()

	softCtx, softCancel := context.WithTimeout(ctx, o.cfg.SoftTimeout)
	defer softCancel()

	timer := metrics.NewTimer()
	extraction := o.extractor.Extract(softCtx, queryText)
	elapsed := timer.Elapsed()

	metrics.RecordStageDuration(string(model.StageExtracting), elapsed)
	metrics.RecordExtractionMethod(string(extraction.Method))

	result.Entities = extraction.Entities
	result.Intent = extraction.Intent
	result.Performance.ExtractionMethod = extraction.Method
	result.Performance.ExtractionTime = elapsed
	result.Performance.LLMUsed = extraction.Method == model.ExtractionMethodLLM || extraction.Method == model.ExtractionMethodHybrid
	if extraction.FallbackReason != "" {
		result.Degraded = true
	}
	return result
}

// search runs the search stage and builds the single-page Pagination
// the response contract always reports today.
func (o *Orchestrator) search(ctx context.Context, result model.Result, queryText string, limit int) (model.Result, error) {
	result.Stage = model.StageSearching
	ctx, span := tracer.Start(ctx, "pipeline.search")
	defer span.End()

	filters := search.FromEntities(result.Entities)

	timer := metrics.NewTimer()
	members, err := o.engine.Search(ctx, queryText, filters, limit)
	elapsed := timer.Elapsed()

	metrics.RecordStageDuration(string(model.StageSearching), elapsed)
	result.Performance.SearchTime = elapsed

	if err != nil {
		if ctx.Err() != nil {
			// the hard-timeout check after this call will turn this
			// into a degraded partial result; a bare timeout is not a
			// failure worth surfacing as an AppError.
			return result, nil
		}
		return result, apperrors.NewSearchUnavailableError("search", err)
	}

	result.Members = members
	result.Pagination = buildPagination(len(members), limit)
	return result, nil
}

func buildPagination(total, perPage int) model.Pagination {
	if perPage <= 0 {
		perPage = defaultLimit
	}
	totalPages := 1
	if total > 0 {
		totalPages = (total + perPage - 1) / perPage
	}
	return model.Pagination{
		CurrentPage:     1,
		TotalPages:      totalPages,
		TotalResults:    total,
		ResultsPerPage:  perPage,
		HasNextPage:     totalPages > 1,
		HasPreviousPage: false,
	}
}

// formatNoSignal short-circuits the search stage when extraction came
// back with neither a usable entity nor a scored intent: running a
// full keyword/semantic search against an unconstrained filter set
// would just return noise, so the pipeline reports an empty result
// (and still generates suggestions) without ever calling the engine.
func (o *Orchestrator) formatNoSignal(result model.Result, queryText string) model.Result {
	timer := metrics.NewTimer()
	result.Members = nil
	result.Pagination = buildPagination(0, defaultLimit)
	result.Summary = response.Format(nil, queryText, result.Intent.Primary, result.Entities)
	result.Suggestions = suggest.Generate(result.Intent.Primary, result.Entities, 0)
	elapsed := timer.Elapsed()

	metrics.RecordStageDuration(string(model.StageFormatting), elapsed)
	result.Performance.FormatTime = elapsed
	return result
}

// format runs the final stage: conversational summary and follow-up
// suggestions, both pure text assembly with no further I/O.
func (o *Orchestrator) format(result model.Result, queryText string) model.Result {
	timer := metrics.NewTimer()
	result.Summary = response.Format(result.Members, queryText, result.Intent.Primary, result.Entities)
	result.Suggestions = suggest.Generate(result.Intent.Primary, result.Entities, len(result.Members))
	elapsed := timer.Elapsed()

	metrics.RecordStageDuration(string(model.StageFormatting), elapsed)
	result.Performance.FormatTime = elapsed
	return result
}
