// Package regexextract is the first-pass entity extractor: a set of
// regular expressions and lookup tables that handle the common,
// well-phrased slice of queries without ever calling out to an LLM.
// It never errors — an unmatched query simply comes back with empty
// entities and low confidence, leaving the decision to fall back to
// the LLM to its caller.
package regexextract

import (
	"strings"

	"github.com/communityconnect/nlquery/pkg/nlquery/model"
	"github.com/communityconnect/nlquery/pkg/normalize"
)

// fieldWeight is the confidence contribution of one matched field
// category, regardless of how many distinct values that category
// matched (three branch synonyms in one query still count once).
// Year and branch are weighted heaviest since they come from narrow,
// low-false-positive patterns; a query that nails both (e.g. "Find
// 1995 mechanical engineers") should clear the default regex
// confidence threshold on its own, without needing a third field to
// fire.
const (
	yearFieldWeight         = 0.4
	branchFieldWeight       = 0.4
	degreeFieldWeight       = 0.3
	locationFieldWeight     = 0.3
	turnoverFieldWeight     = 0.25
	organizationFieldWeight = 0.25
	skillsFieldWeight       = 0.25
	servicesFieldWeight     = 0.25
	nameFieldWeight         = 0.35
)

// Result is what the regex pass produces: the entities it found, an
// empirical confidence score, and a human-readable trace of which
// patterns fired (surfaced in logs and, optionally, API responses for
// debugging).
type Result struct {
	Entities        model.ExtractedEntities
	Confidence      float64
	MatchedPatterns []string
}

// Extract runs every pattern against query and normalizes whatever it
// finds. It is pure: no shared state, same input always produces the
// same output.
func Extract(query string) Result {
	var entities model.ExtractedEntities
	var matched []string
	var confidence float64

	if m := yearPattern.FindStringSubmatch(query); m != nil {
		if year, ok := normalize.Year(firstNonEmpty(m[1], m[2], m[3])); ok {
			entities.GraduationYear = model.NewYearSet(year)
			matched = append(matched, "year")
			confidence += yearFieldWeight
		}
	}

	if m := locationPattern.FindStringSubmatch(query); m != nil {
		if city, ok := normalize.City(strings.TrimSpace(m[1])); ok {
			entities.City = city
			matched = append(matched, "location")
			confidence += locationFieldWeight
		}
	}

	branches := make(map[string]struct{})
	for _, word := range tokenize(query) {
		if name, tag, ok := normalize.Branch(word); ok {
			branches[name] = struct{}{}
			branches[tag] = struct{}{}
		}
		if entities.Degree == "" {
			if name, ok := normalize.Degree(word); ok {
				entities.Degree = name
				matched = append(matched, "degree")
				confidence += degreeFieldWeight
			}
		}
	}
	if len(branches) > 0 {
		entities.Branch = branches
		matched = append(matched, "branch")
		confidence += branchFieldWeight
	}

	if m := turnoverPattern.FindStringSubmatch(query); m != nil {
		entities.TurnoverTier = normalizeTurnoverTier(m[1])
		matched = append(matched, "turnover")
		confidence += turnoverFieldWeight
	}

	if m := organizationPattern.FindStringSubmatch(query); m != nil {
		entities.Organization = strings.TrimSpace(m[1])
		matched = append(matched, "organization")
		confidence += organizationFieldWeight
	}

	if m := skillsPattern.FindStringSubmatch(query); m != nil {
		entities.Skills = splitList(m[1])
		matched = append(matched, "skills")
		confidence += skillsFieldWeight
	}

	if m := servicesPattern.FindStringSubmatch(query); m != nil {
		entities.Services = splitList(m[1])
		matched = append(matched, "services")
		confidence += servicesFieldWeight
	}

	if m := namePattern.FindStringSubmatch(query); m != nil {
		entities.Name = strings.TrimSpace(m[1])
		matched = append(matched, "name")
		confidence += nameFieldWeight
	}

	if confidence > 1.0 {
		confidence = 1.0
	}

	return Result{
		Entities:        entities,
		Confidence:      confidence,
		MatchedPatterns: matched,
	}
}

// firstNonEmpty returns the first non-empty string among values,
// matching whichever alternative of a multi-group regex fired.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// NeedsLLM reports whether the regex result is weak enough to warrant
// an LLM extraction pass, given the configured confidence threshold.
func (r Result) NeedsLLM(threshold float64) bool {
	return r.Entities.IsEmpty() || r.Confidence < threshold
}

// normalizeTurnoverTier maps the free-text phrases turnoverPattern
// captures onto the canonical three-tier scale (low/med/high) the rest
// of the pipeline filters and humanizes against.
func normalizeTurnoverTier(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "small", "low":
		return "low"
	case "mid", "mid-size", "mid-sized", "medium", "moderate":
		return "med"
	case "large", "enterprise", "big", "high", "successful":
		return "high"
	default:
		return strings.ToLower(raw)
	}
}

func splitList(raw string) []string {
	parts := skillServiceSeparators.Split(strings.TrimSpace(raw), -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// tokenize splits query into simple lowercase word/phrase candidates
// for the alias lookups that operate a word (or short phrase) at a
// time, such as branch and degree normalization.
func tokenize(query string) []string {
	fields := strings.FieldsFunc(query, func(r rune) bool {
		switch r {
		case ' ', ',', '.', '!', '?', ';', ':', '(', ')':
			return true
		default:
			return false
		}
	})

	// also try adjacent two-word phrases ("comp sci") since some
	// aliases are multi-word
	out := make([]string, 0, len(fields)*2)
	out = append(out, fields...)
	for i := 0; i+1 < len(fields); i++ {
		out = append(out, fields[i]+" "+fields[i+1])
	}
	return out
}
