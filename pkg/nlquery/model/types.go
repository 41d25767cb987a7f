// Package model holds the data shapes shared by every stage of the
// natural-language query pipeline: the raw query, the entities pulled
// out of it, the members matched against those entities, and the
// ranked, narrated result handed back to the caller.
package model

import (
	"fmt"
	"sort"
	"time"
)

// Query is a single natural-language question submitted to the
// pipeline, plus the bookkeeping needed to trace it through the
// stages and attribute metrics/logs to it.
type Query struct {
	ID        string
	Text      string
	Limit     int
	ReceivedAt time.Time
}

// IntentType names the four recognized query intents, plus
// IntentUnknown. An ambiguous query still gets a best-guess IntentType
// plus a lower Confidence and a non-empty Secondary; a query that
// matches no rule gets IntentUnknown, zero Confidence and no Secondary.
type IntentType string

const (
	IntentFindBusiness       IntentType = "find_business"
	IntentFindPeers          IntentType = "find_peers"
	IntentFindSpecificPerson IntentType = "find_specific_person"
	IntentFindAlumniBusiness IntentType = "find_alumni_business"
	IntentUnknown            IntentType = "unknown"
)

// IntentResult is the output of the intent classifier: a primary
// guess, an optional secondary guess for ambiguous phrasing, and the
// confidence behind the primary pick.
type IntentResult struct {
	Primary    IntentType
	Secondary  IntentType
	Confidence float64
	Ambiguous  bool
}

// ExtractedEntities is the structured content pulled from a query's
// free text: who, where, what field, and what the asker is looking
// for, however partially.
//
// Branch and GraduationYear are sets rather than scalars: a query can
// legitimately name more than one branch ("IT companies ... mechanical
// batch") or, once merged with an LLM guess, more than one candidate
// year, and normalizeBranch itself contributes both a canonical name
// and a short tag for a single match.
type ExtractedEntities struct {
	Name           string
	City           string
	Branch         map[string]struct{}
	Degree         string
	GraduationYear map[int]struct{}
	Skills         []string
	Services       []string
	TurnoverTier   string
	Organization   string
}

// NewBranchSet builds a Branch set from zero or more canonical names
// or tags.
func NewBranchSet(names ...string) map[string]struct{} {
	if len(names) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

// NewYearSet builds a GraduationYear set from zero or more years.
func NewYearSet(years ...int) map[int]struct{} {
	if len(years) == 0 {
		return nil
	}
	set := make(map[int]struct{}, len(years))
	for _, y := range years {
		set[y] = struct{}{}
	}
	return set
}

// BranchNames returns the Branch set's members in sorted order, for
// callers (templates, suggestions, SQL parameter lists) that need a
// deterministic slice rather than a map.
func (e ExtractedEntities) BranchNames() []string {
	out := make([]string, 0, len(e.Branch))
	for name := range e.Branch {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Years returns the GraduationYear set's members in sorted order.
func (e ExtractedEntities) Years() []int {
	out := make([]int, 0, len(e.GraduationYear))
	for y := range e.GraduationYear {
		out = append(out, y)
	}
	sort.Ints(out)
	return out
}

// IsEmpty reports whether no field carries a usable value, the
// signal the hybrid extractor uses to decide an LLM pass is needed.
func (e ExtractedEntities) IsEmpty() bool {
	return e.Name == "" && e.City == "" && len(e.Branch) == 0 && e.Degree == "" &&
		len(e.GraduationYear) == 0 && len(e.Skills) == 0 && len(e.Services) == 0 &&
		e.TurnoverTier == "" && e.Organization == ""
}

// ExtractionMethod records which path produced the final entity set.
type ExtractionMethod string

const (
	ExtractionMethodRegex  ExtractionMethod = "regex"
	ExtractionMethodLLM    ExtractionMethod = "llm"
	ExtractionMethodHybrid ExtractionMethod = "hybrid"
	ExtractionMethodCached ExtractionMethod = "cached"
)

// HybridExtractionResult is the arbitrated output of the extraction
// stage: the merged entities, which method won, and why the LLM was
// or wasn't consulted.
type HybridExtractionResult struct {
	Entities      ExtractedEntities
	Intent        IntentResult
	Method        ExtractionMethod
	Confidence    float64
	FallbackReason string
	MatchedPatterns []string
}

// MemberRecord is a row from the member/embedding projection: the
// directory fact about one person plus the embedding vector used for
// semantic search.
type MemberRecord struct {
	ID              string
	Name            string
	City            string
	Branch          string
	Degree          string
	GraduationYear  int
	Designation     string
	Organization    string
	Skills          []string
	Services        []string
	TurnoverTier    string
	TurnoverAmount  float64 // annual turnover in INR, for humanized display
	ContactPhone    string
	ContactEmail    string
	IsActive        bool
	Bio             string
	Embedding       EmbeddingVector
}

// ShortYear renders GraduationYear the way the peer/alumni templates
// show it: the last two digits prefixed with an apostrophe ('95).
func (m MemberRecord) ShortYear() string {
	y := m.GraduationYear % 100
	return fmt.Sprintf("'%02d", y)
}

// EmbeddingVector is a dense semantic embedding, produced by whatever
// provider backs the embedding API and cached by query text.
type EmbeddingVector []float64

// ScoredMember pairs a member with the fused relevance score and its
// components, so the response formatter can explain a ranking without
// recomputing it.
type ScoredMember struct {
	Member         MemberRecord
	SemanticScore  float64
	KeywordScore   float64
	FieldBoost     float64
	RelevanceScore float64
	MatchedFields  []string
}

// EmbeddingCacheEntry is one slot in the embedding cache: the vector
// plus the bookkeeping needed for LRU eviction and TTL expiry.
type EmbeddingCacheEntry struct {
	Key       string
	Vector    EmbeddingVector
	CreatedAt time.Time
	ExpiresAt time.Time
}

// ProviderHealth is a point-in-time snapshot of one LLM provider's
// circuit breaker state, exposed via the gateway's Snapshot method.
type ProviderHealth struct {
	Name           string
	Priority       int
	CircuitState   string
	ConsecutiveErrors int
	LastError      string
	LastSuccessAt  time.Time
}

// PipelineStage names a step in the orchestrator's state machine, used
// both for logging/metrics labels and for the Result's Stage field on
// failure.
type PipelineStage string

const (
	StageReceived   PipelineStage = "received"
	StageExtracting PipelineStage = "extracting"
	StageSearching  PipelineStage = "searching"
	StageFormatting PipelineStage = "formatting"
	StageDone       PipelineStage = "done"
	StageFailed     PipelineStage = "failed"
)

// Pagination describes the result page returned to the caller. The
// pipeline always returns a single page today (no cursor/offset input
// yet), but the shape is part of the documented response contract.
type Pagination struct {
	CurrentPage     int
	TotalPages      int
	TotalResults    int
	ResultsPerPage  int
	HasNextPage     bool
	HasPreviousPage bool
}

// Performance is the per-request timing/method breakdown surfaced
// alongside the result, so a caller (or the orchestrator's own
// Prometheus export) can see where time went without re-deriving it
// from logs.
type Performance struct {
	ExtractionMethod ExtractionMethod
	ExtractionTime   time.Duration
	SearchTime       time.Duration
	FormatTime       time.Duration
	LLMUsed          bool
}

// Result is the pipeline's final answer to a Query: the ranked
// members, a conversational summary, and follow-up suggestions.
type Result struct {
	QueryID        string
	NormalizedQuery string
	Intent         IntentResult
	Entities       ExtractedEntities
	Members        []ScoredMember
	Pagination     Pagination
	Summary        string
	Suggestions    []string
	Degraded       bool
	Stage          PipelineStage
	Duration       time.Duration
	Performance    Performance
}
