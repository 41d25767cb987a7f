// Package hybrid arbitrates between the regex extractor and the LLM
// gateway: it trusts the regex pass when it's confident, falls back
// to the LLM when it isn't, and merges the two when the LLM fills in
// fields the regex pass missed.
package hybrid

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/communityconnect/nlquery/pkg/nlquery/intent"
	"github.com/communityconnect/nlquery/pkg/nlquery/llm"
	"github.com/communityconnect/nlquery/pkg/nlquery/model"
	"github.com/communityconnect/nlquery/pkg/nlquery/regexextract"
)

const systemPrompt = `You are an entity extraction tool for a community directory search system.
Extract structured fields from the user's natural-language question.

Respond with ONLY a valid JSON object using this schema, omitting any field you cannot determine:
{
  "name": "string, a specific person's full name",
  "city": "string, a city name",
  "branch": "string, an engineering branch/field of study",
  "degree": "string, a degree abbreviation or name",
  "graduation_year": integer, a four-digit year,
  "skills": ["string", ...],
  "services": ["string", ...],
  "turnover_tier": "string, one of small, medium, large",
  "organization": "string, a company or organization name"
}

Never invent a value that isn't present or strongly implied by the input.`

const strictRetrySuffix = "\n\nYour previous response was not valid JSON. Respond with ONLY the JSON object, no markdown fences, no commentary."

// llmEntities mirrors model.ExtractedEntities' JSON shape for
// decoding the gateway's response; the safety firewall is
// json.Unmarshal itself; any hallucinated extra field is dropped
// because it has no matching struct field.
type llmEntities struct {
	Name           string   `json:"name"`
	City           string   `json:"city"`
	Branch         string   `json:"branch"`
	Degree         string   `json:"degree"`
	GraduationYear int      `json:"graduation_year"`
	Skills         []string `json:"skills"`
	Services       []string `json:"services"`
	TurnoverTier   string   `json:"turnover_tier"`
	Organization   string   `json:"organization"`
}

func (e llmEntities) toModel() model.ExtractedEntities {
	out := model.ExtractedEntities{
		Name:         e.Name,
		City:         e.City,
		Degree:       e.Degree,
		Skills:       e.Skills,
		Services:     e.Services,
		TurnoverTier: e.TurnoverTier,
		Organization: e.Organization,
	}
	if e.Branch != "" {
		out.Branch = model.NewBranchSet(e.Branch)
	}
	if e.GraduationYear != 0 {
		out.GraduationYear = model.NewYearSet(e.GraduationYear)
	}
	return out
}

// Gateway is the subset of llm.Gateway the extractor depends on, kept
// narrow so tests can supply a fake.
type Gateway interface {
	Generate(ctx context.Context, messages []llm.Message, temperature float32, maxTokens int) (llm.Response, error)
}

// Extractor runs the regex-first, LLM-fallback extraction pipeline.
type Extractor struct {
	gateway              Gateway
	confidenceThreshold  float64
	log                  *logrus.Logger
}

// New builds an Extractor. confidenceThreshold is the regex
// confidence below which an LLM pass is attempted.
func New(gateway Gateway, confidenceThreshold float64, logger *logrus.Logger) *Extractor {
	return &Extractor{
		gateway:             gateway,
		confidenceThreshold: confidenceThreshold,
		log:                 logger,
	}
}

// Extract runs the regex pass and, if it isn't confident enough,
// consults the LLM gateway and merges the two results. It never
// returns an error for an unavailable or malformed LLM response:
// that's reported via FallbackReason so the caller can decide whether
// to degrade gracefully or surface it.
func (e *Extractor) Extract(ctx context.Context, query string) model.HybridExtractionResult {
	regexResult := regexextract.Extract(query)
	intentResult := intent.Classify(query, regexResult.Entities)

	if !regexResult.NeedsLLM(e.confidenceThreshold) {
		return model.HybridExtractionResult{
			Entities:        regexResult.Entities,
			Intent:          intentResult,
			Method:          model.ExtractionMethodRegex,
			Confidence:      regexResult.Confidence,
			MatchedPatterns: regexResult.MatchedPatterns,
		}
	}

	llmEntities, fallbackReason, err := e.extractViaLLM(ctx, query)
	if err != nil {
		e.log.WithError(err).Warn("llm extraction fallback failed, using regex-only result")
		return model.HybridExtractionResult{
			Entities:        regexResult.Entities,
			Intent:          intentResult,
			Method:          model.ExtractionMethodRegex,
			Confidence:      regexResult.Confidence,
			FallbackReason:  "llm_unavailable",
			MatchedPatterns: regexResult.MatchedPatterns,
		}
	}

	merged := merge(regexResult.Entities, llmEntities)
	intentResult = intent.Classify(query, merged)

	method := model.ExtractionMethodLLM
	if !regexResult.Entities.IsEmpty() {
		method = model.ExtractionMethodHybrid
	}

	return model.HybridExtractionResult{
		Entities:        merged,
		Intent:          intentResult,
		Method:          method,
		Confidence:      1.0,
		FallbackReason:  fallbackReason,
		MatchedPatterns: regexResult.MatchedPatterns,
	}
}

// merge lets the regex extraction win field-by-field: it's grounded
// in literal pattern matches, so an LLM guess only fills in what the
// regex pass left blank.
func merge(regex, fromLLM model.ExtractedEntities) model.ExtractedEntities {
	out := regex
	if out.Name == "" {
		out.Name = fromLLM.Name
	}
	if out.City == "" {
		out.City = fromLLM.City
	}
	if len(out.Branch) == 0 {
		out.Branch = fromLLM.Branch
	}
	if out.Degree == "" {
		out.Degree = fromLLM.Degree
	}
	if len(out.GraduationYear) == 0 {
		out.GraduationYear = fromLLM.GraduationYear
	}
	if len(out.Skills) == 0 {
		out.Skills = fromLLM.Skills
	}
	if len(out.Services) == 0 {
		out.Services = fromLLM.Services
	}
	if out.TurnoverTier == "" {
		out.TurnoverTier = fromLLM.TurnoverTier
	}
	if out.Organization == "" {
		out.Organization = fromLLM.Organization
	}
	return out
}

// extractViaLLM calls the gateway once, and a second time with a
// stricter prompt if the first response isn't valid JSON.
func (e *Extractor) extractViaLLM(ctx context.Context, query string) (model.ExtractedEntities, string, error) {
	reason := "low_confidence"

	entities, err := e.callAndParse(ctx, query, systemPrompt)
	if err == nil {
		return entities, reason, nil
	}

	entities, retryErr := e.callAndParse(ctx, query, systemPrompt+strictRetrySuffix)
	if retryErr == nil {
		return entities, reason, nil
	}

	return model.ExtractedEntities{}, reason, fmt.Errorf("llm extraction failed after retry: %w", retryErr)
}

func (e *Extractor) callAndParse(ctx context.Context, query, system string) (model.ExtractedEntities, error) {
	resp, err := e.gateway.Generate(ctx, []llm.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: query},
	}, 0.0, 500)
	if err != nil {
		return model.ExtractedEntities{}, fmt.Errorf("llm call failed: %w", err)
	}

	raw := strings.TrimSpace(resp.Text)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	var parsed llmEntities
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return model.ExtractedEntities{}, fmt.Errorf("invalid JSON from llm: %w (raw: %q)", err, raw)
	}
	return parsed.toModel(), nil
}
