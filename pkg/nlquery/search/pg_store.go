package search

import (
	"context"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/communityconnect/nlquery/pkg/nlquery/model"
)

// PGStore is the production MemberStore: the member/embedding
// projection table, queried through a pgx stdlib-backed sqlx.DB so
// the dynamic filter clauses can use sqlx's placeholder rebinding and
// struct scanning instead of manual column-by-column Scan calls.
type PGStore struct {
	db *sqlx.DB
}

// NewPGStore wraps an already-opened *sqlx.DB.
func NewPGStore(db *sqlx.DB) *PGStore {
	return &PGStore{db: db}
}

// OpenPGStore opens a pooled connection to the member/embedding
// projection via the pgx stdlib driver and wraps it in a PGStore. The
// dsn is a standard libpq connection string.
func OpenPGStore(dsn string) (*PGStore, error) {
	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open member store connection: %w", err)
	}
	return NewPGStore(db), nil
}

// memberRow mirrors the members_view projection columns sqlx scans
// into before conversion to model.MemberRecord.
type memberRow struct {
	ID             string          `db:"id"`
	Name           string          `db:"name"`
	City           string          `db:"city"`
	Branch         string          `db:"branch"`
	Degree         string          `db:"degree"`
	GraduationYear int             `db:"graduation_year"`
	Designation    string          `db:"designation"`
	Organization   string          `db:"organization"`
	Skills         pq.StringArray  `db:"skills"`
	Services       pq.StringArray  `db:"services"`
	TurnoverTier   string          `db:"turnover_tier"`
	TurnoverAmount float64         `db:"turnover_amount"`
	ContactPhone   string          `db:"contact_phone"`
	ContactEmail   string          `db:"contact_email"`
	IsActive       bool            `db:"is_active"`
	Bio            string          `db:"bio"`
	Embedding      pq.Float64Array `db:"embedding"`
}

// FetchCandidates builds a WHERE clause from the populated fields in
// filters and runs it against the members_view projection.
func (s *PGStore) FetchCandidates(ctx context.Context, filters Filters, limit int) ([]model.MemberRecord, error) {
	query, args := buildCandidateQuery(filters, limit)

	var rows []memberRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("member candidate query failed: %w", err)
	}

	out := make([]model.MemberRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, toMemberRecord(row))
	}
	return out, nil
}

func toMemberRecord(row memberRow) model.MemberRecord {
	return model.MemberRecord{
		ID:             row.ID,
		Name:           row.Name,
		City:           row.City,
		Branch:         row.Branch,
		Degree:         row.Degree,
		GraduationYear: row.GraduationYear,
		Designation:    row.Designation,
		Organization:   row.Organization,
		Skills:         []string(row.Skills),
		Services:       []string(row.Services),
		TurnoverTier:   row.TurnoverTier,
		TurnoverAmount: row.TurnoverAmount,
		ContactPhone:   row.ContactPhone,
		ContactEmail:   row.ContactEmail,
		IsActive:       row.IsActive,
		Bio:            row.Bio,
		Embedding:      model.EmbeddingVector(row.Embedding),
	}
}

// buildCandidateQuery constructs a "?"-placeholder SQL query (sqlx
// rebinds to the driver's native placeholder style) against
// members_view from whichever fields of filters are populated.
// Array-typed filters (skills, services) use the overlap operator so
// any matching element qualifies a row.
func buildCandidateQuery(filters Filters, limit int) (string, []interface{}) {
	clauses := []string{"is_active = true"}
	var args []interface{}

	if filters.City != "" {
		clauses = append(clauses, "lower(city) = lower(?)")
		args = append(args, filters.City)
	}
	if len(filters.Branch) > 0 {
		clauses = append(clauses, "lower(branch) = ANY(?::text[])")
		args = append(args, pq.Array(lowerAll(branchNames(filters.Branch))))
	}
	if filters.Degree != "" {
		clauses = append(clauses, "lower(degree) = lower(?)")
		args = append(args, filters.Degree)
	}
	if len(filters.GraduationYear) > 0 {
		clauses = append(clauses, "graduation_year = ANY(?::int[])")
		args = append(args, pq.Array(years(filters.GraduationYear)))
	}
	if filters.Organization != "" {
		clauses = append(clauses, "lower(organization) = lower(?)")
		args = append(args, filters.Organization)
	}
	if filters.TurnoverTier != "" {
		clauses = append(clauses, "lower(turnover_tier) = lower(?)")
		args = append(args, filters.TurnoverTier)
	}
	if filters.Name != "" {
		clauses = append(clauses, "lower(name) = lower(?)")
		args = append(args, filters.Name)
	}
	if len(filters.Skills) > 0 {
		clauses = append(clauses, "skills && ?::text[]")
		args = append(args, pq.Array(filters.Skills))
	}
	if len(filters.Services) > 0 {
		clauses = append(clauses, "services && ?::text[]")
		args = append(args, pq.Array(filters.Services))
	}

	query := "SELECT id, name, city, branch, degree, graduation_year, designation, organization, " +
		"skills, services, turnover_tier, turnover_amount, contact_phone, contact_email, is_active, bio, embedding " +
		"FROM members_view WHERE " + strings.Join(clauses, " AND ")
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return query, args
}

// branchNames and years flatten the Filters set fields into slices
// pq.Array can bind as a Postgres array literal.
func branchNames(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	return out
}

func years(set map[int]struct{}) []int {
	out := make([]int, 0, len(set))
	for y := range set {
		out = append(out, y)
	}
	return out
}

func lowerAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(v)
	}
	return out
}
