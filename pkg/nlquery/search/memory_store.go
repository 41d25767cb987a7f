package search

import (
	"context"
	"strings"

	"github.com/communityconnect/nlquery/pkg/nlquery/model"
)

// MemoryStore is an in-process MemberStore over a fixed slice of
// records, applying Filters the same way the SQL store would. It
// backs engine tests and can seed a small demo deployment without a
// Postgres instance.
type MemoryStore struct {
	members []model.MemberRecord
}

// NewMemoryStore wraps members for in-process filtering.
func NewMemoryStore(members []model.MemberRecord) *MemoryStore {
	return &MemoryStore{members: members}
}

// FetchCandidates returns every member matching all populated fields
// in filters. limit of 0 means unbounded; the engine applies the
// final limit after scoring, so this store only needs to avoid
// returning obviously-excluded rows.
func (m *MemoryStore) FetchCandidates(ctx context.Context, filters Filters, limit int) ([]model.MemberRecord, error) {
	var out []model.MemberRecord
	for _, member := range m.members {
		if matches(member, filters) {
			out = append(out, member)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func matches(member model.MemberRecord, filters Filters) bool {
	if filters.City != "" && !strings.EqualFold(member.City, filters.City) {
		return false
	}
	if len(filters.Branch) > 0 && !branchMatches(member.Branch, filters.Branch) {
		return false
	}
	if filters.Degree != "" && !strings.EqualFold(member.Degree, filters.Degree) {
		return false
	}
	if len(filters.GraduationYear) > 0 && !yearMatches(member.GraduationYear, filters.GraduationYear) {
		return false
	}
	if filters.Organization != "" && !strings.EqualFold(member.Organization, filters.Organization) {
		return false
	}
	if filters.TurnoverTier != "" && !strings.EqualFold(member.TurnoverTier, filters.TurnoverTier) {
		return false
	}
	if filters.Name != "" && !strings.EqualFold(member.Name, filters.Name) {
		return false
	}
	if len(filters.Skills) > 0 && !overlaps(member.Skills, filters.Skills) {
		return false
	}
	if len(filters.Services) > 0 && !overlaps(member.Services, filters.Services) {
		return false
	}
	return true
}
