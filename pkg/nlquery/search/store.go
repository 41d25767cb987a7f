// Package search is the hybrid keyword+vector search engine: it asks
// a MemberStore for candidates matching the extracted filters,
// relaxing them in a fixed order when nothing matches, then fuses
// keyword overlap, semantic similarity, and field-match boosts into a
// single relevance score per candidate.
package search

import (
	"context"

	"github.com/communityconnect/nlquery/pkg/nlquery/model"
)

// Filters narrows a candidate search to members matching some subset
// of the extracted entities. A zero value (or empty set) on any field
// means "no constraint on this field". Branch and GraduationYear are
// sets: a member matching any one value in the set satisfies the
// filter.
type Filters struct {
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

// FromEntities builds a Filters from a fully- or partially-populated
// ExtractedEntities.
func FromEntities(e model.ExtractedEntities) Filters {
	return Filters{
		Name:           e.Name,
		City:           e.City,
		Branch:         e.Branch,
		Degree:         e.Degree,
		GraduationYear: e.GraduationYear,
		Skills:         e.Skills,
		Services:       e.Services,
		TurnoverTier:   e.TurnoverTier,
		Organization:   e.Organization,
	}
}

// MemberStore is the read-only member/embedding projection the
// search engine queries. Implementations apply Filters at the storage
// layer; they need not compute relevance scoring themselves.
type MemberStore interface {
	FetchCandidates(ctx context.Context, filters Filters, limit int) ([]model.MemberRecord, error)
}

// relaxationOrder is the fixed sequence the engine drops filter
// fields in when a search returns no candidates: services first (the
// loosest, most business-specific signal), then skills, then city,
// then turnover tier. GraduationYear and Name are never relaxed: a
// wrong year or the wrong named person is a wrong answer, not merely
// an incomplete one.
var relaxationOrder = []string{"services", "skills", "city", "turnover"}

// relax drops the named field from filters, returning the narrowed
// copy and whether anything was actually cleared.
func relax(filters Filters, field string) (Filters, bool) {
	switch field {
	case "services":
		if len(filters.Services) == 0 {
			return filters, false
		}
		filters.Services = nil
		return filters, true
	case "skills":
		if len(filters.Skills) == 0 {
			return filters, false
		}
		filters.Skills = nil
		return filters, true
	case "city":
		if filters.City == "" {
			return filters, false
		}
		filters.City = ""
		return filters, true
	case "turnover":
		if filters.TurnoverTier == "" {
			return filters, false
		}
		filters.TurnoverTier = ""
		return filters, true
	default:
		return filters, false
	}
}
