package search

import (
	"strings"

	"github.com/communityconnect/nlquery/pkg/nlquery/model"
	sharedmath "github.com/communityconnect/nlquery/pkg/shared/math"
)

// Weights controls how the three scoring components combine into a
// single relevance score. The caller (the pipeline, from
// config.SearchConfig) is responsible for ensuring they sum to 1.0.
type Weights struct {
	Semantic   float64
	Keyword    float64
	FieldBoost float64
}

// score computes a ScoredMember's component scores and fused
// relevance for one candidate against filters and queryEmbedding.
func score(member model.MemberRecord, filters Filters, queryEmbedding model.EmbeddingVector, weights Weights) model.ScoredMember {
	semantic := sharedmath.CosineSimilarity([]float64(queryEmbedding), []float64(member.Embedding))

	keyword, matchedFields := keywordScore(member, filters)
	fieldBoost := fieldBoostScore(member, filters, matchedFields)

	relevance := weights.Semantic*semantic + weights.Keyword*keyword + weights.FieldBoost*fieldBoost

	return model.ScoredMember{
		Member:         member,
		SemanticScore:  semantic,
		KeywordScore:   keyword,
		FieldBoost:     fieldBoost,
		RelevanceScore: relevance,
		MatchedFields:  matchedFields,
	}
}

// keywordScore is the fraction of the filters' populated fields that
// this member actually matches, plus the matched field names for
// explainability.
func keywordScore(member model.MemberRecord, filters Filters) (float64, []string) {
	var total, matched int
	var fields []string

	check := func(name string, ok bool, present bool) {
		if !present {
			return
		}
		total++
		if ok {
			matched++
			fields = append(fields, name)
		}
	}

	check("city", strings.EqualFold(member.City, filters.City), filters.City != "")
	check("branch", branchMatches(member.Branch, filters.Branch), len(filters.Branch) > 0)
	check("degree", strings.EqualFold(member.Degree, filters.Degree), filters.Degree != "")
	check("graduation_year", yearMatches(member.GraduationYear, filters.GraduationYear), len(filters.GraduationYear) > 0)
	check("organization", strings.EqualFold(member.Organization, filters.Organization), filters.Organization != "")
	check("turnover_tier", strings.EqualFold(member.TurnoverTier, filters.TurnoverTier), filters.TurnoverTier != "")
	check("name", strings.EqualFold(member.Name, filters.Name), filters.Name != "")

	if len(filters.Skills) > 0 {
		total++
		if overlaps(member.Skills, filters.Skills) {
			matched++
			fields = append(fields, "skills")
		}
	}
	if len(filters.Services) > 0 {
		total++
		if overlaps(member.Services, filters.Services) {
			matched++
			fields = append(fields, "services")
		}
	}

	if total == 0 {
		return 0, fields
	}
	return float64(matched) / float64(total), fields
}

// fieldBoostScore rewards a handful of exact matches considered
// especially strong signals of relevance: an exact named-person hit,
// or an exact city+branch combination (the classic "peers" query
// shape).
func fieldBoostScore(member model.MemberRecord, filters Filters, matchedFields []string) float64 {
	var boost float64
	if filters.Name != "" && contains(matchedFields, "name") {
		boost += 0.6
	}
	if filters.City != "" && len(filters.Branch) > 0 && contains(matchedFields, "city") && contains(matchedFields, "branch") {
		boost += 0.4
	}
	if boost > 1.0 {
		boost = 1.0
	}
	return boost
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// branchMatches reports whether member's branch is a member of the
// filter's branch set, case-insensitively.
func branchMatches(memberBranch string, want map[string]struct{}) bool {
	for w := range want {
		if strings.EqualFold(memberBranch, w) {
			return true
		}
	}
	return false
}

// yearMatches reports whether member's graduation year is a member of
// the filter's year set.
func yearMatches(memberYear int, want map[int]struct{}) bool {
	_, ok := want[memberYear]
	return ok
}

func overlaps(have, want []string) bool {
	set := make(map[string]struct{}, len(have))
	for _, h := range have {
		set[strings.ToLower(h)] = struct{}{}
	}
	for _, w := range want {
		if _, ok := set[strings.ToLower(w)]; ok {
			return true
		}
	}
	return false
}
