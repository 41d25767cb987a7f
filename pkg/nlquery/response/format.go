// Package response turns a ranked set of members into the
// conversational text shown to the asker. Each intent gets its own
// template; the formatter never does a second database lookup or any
// other I/O — it is pure text assembly over whatever the search stage
// already produced.
package response

import (
	"fmt"
	"strings"

	"github.com/communityconnect/nlquery/pkg/nlquery/model"
)

const (
	maxBusinessRows       = 10
	maxPeerRows           = 10
	maxSpecificPersonRows = 5
	maxAlumniBusinessRows = 10
)

// Format routes to the template matching intent and renders members
// (already ranked by the search stage) into conversational text. An
// empty members slice always renders the "no results" template
// regardless of intent.
func Format(members []model.ScoredMember, queryText string, intent model.IntentType, entities model.ExtractedEntities) string {
	if len(members) == 0 {
		return formatEmpty(queryText, entities)
	}

	switch intent {
	case model.IntentFindBusiness:
		return formatBusiness(members, entities)
	case model.IntentFindPeers:
		return formatPeers(members, entities)
	case model.IntentFindSpecificPerson:
		return formatSpecificPerson(members, entities)
	case model.IntentFindAlumniBusiness:
		return formatAlumniBusiness(members, entities)
	default:
		return formatBusiness(members, entities)
	}
}

func formatBusiness(members []model.ScoredMember, entities model.ExtractedEntities) string {
	var b strings.Builder
	b.WriteString(businessHeader(entities))
	b.WriteString("\n\n")

	rows := members
	truncated := len(rows) > maxBusinessRows
	if truncated {
		rows = rows[:maxBusinessRows]
	}

	for i, sm := range rows {
		m := sm.Member
		fmt.Fprintf(&b, "%d. %s — %s\n", i+1, m.Organization, m.City)
		if len(m.Services) > 0 {
			fmt.Fprintf(&b, "   Offers: %s\n", strings.Join(m.Services, ", "))
		}
		if contact := contactLine(m); contact != "" {
			fmt.Fprintf(&b, "   Contact: %s\n", contact)
		}
		if m.TurnoverAmount > 0 {
			fmt.Fprintf(&b, "   Turnover: %s\n", humanizeTurnover(m.TurnoverAmount))
		}
		if len(sm.MatchedFields) > 0 {
			fmt.Fprintf(&b, "   (matched: %s)\n", strings.Join(sm.MatchedFields, ", "))
		}
	}

	if truncated {
		fmt.Fprintf(&b, "\nFound %d results, showing the top %d.", len(members), maxBusinessRows)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatPeers(members []model.ScoredMember, entities model.ExtractedEntities) string {
	var b strings.Builder
	b.WriteString(peersHeader(entities))
	b.WriteString("\n\n")

	rows := members
	truncated := len(rows) > maxPeerRows
	if truncated {
		rows = rows[:maxPeerRows]
	}

	for i, sm := range rows {
		m := sm.Member
		fmt.Fprintf(&b, "%d. %s (%s) — %s %s, %s — %s, %s\n",
			i+1, m.Name, m.ShortYear(), m.Degree, m.Branch, m.Designation, m.Organization, m.City)
	}

	if truncated {
		fmt.Fprintf(&b, "\nFound %d results, showing the top %d.", len(members), maxPeerRows)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatSpecificPerson(members []model.ScoredMember, entities model.ExtractedEntities) string {
	var b strings.Builder
	rows := members
	if len(rows) > maxSpecificPersonRows {
		rows = rows[:maxSpecificPersonRows]
	}

	for i, sm := range rows {
		m := sm.Member
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "%s\n", m.Name)
		if m.Designation != "" || m.Organization != "" {
			fmt.Fprintf(&b, "Role: %s at %s\n", m.Designation, m.Organization)
		}
		fmt.Fprintf(&b, "Batch: %s, %s %s\n", m.ShortYear(), m.Degree, m.Branch)
		fmt.Fprintf(&b, "City: %s\n", m.City)
		if len(m.Skills) > 0 {
			fmt.Fprintf(&b, "Skills: %s\n", strings.Join(m.Skills, ", "))
		}
		if len(m.Services) > 0 {
			fmt.Fprintf(&b, "Services: %s\n", strings.Join(m.Services, ", "))
		}
		if contact := contactLine(m); contact != "" {
			fmt.Fprintf(&b, "Contact: %s\n", contact)
		}
		if m.TurnoverAmount > 0 {
			fmt.Fprintf(&b, "Turnover: %s\n", humanizeTurnover(m.TurnoverAmount))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatAlumniBusiness(members []model.ScoredMember, entities model.ExtractedEntities) string {
	var b strings.Builder
	b.WriteString("Alumni-run businesses matching your search:\n\n")

	rows := members
	truncated := len(rows) > maxAlumniBusinessRows
	if truncated {
		rows = rows[:maxAlumniBusinessRows]
	}

	for i, sm := range rows {
		m := sm.Member
		fmt.Fprintf(&b, "%d. %s — %s (%s %s)\n", i+1, m.Name, m.Organization, m.ShortYear(), m.Branch)
		if len(m.Services) > 0 {
			fmt.Fprintf(&b, "   Offers: %s\n", strings.Join(m.Services, ", "))
		}
		fmt.Fprintf(&b, "   %s", m.City)
		if m.TurnoverAmount > 0 {
			fmt.Fprintf(&b, " — %s", humanizeTurnover(m.TurnoverAmount))
		}
		b.WriteString("\n")
	}

	if truncated {
		fmt.Fprintf(&b, "\nFound %d results, showing the top %d.", len(members), maxAlumniBusinessRows)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatEmpty(queryText string, entities model.ExtractedEntities) string {
	var b strings.Builder
	b.WriteString("I couldn't find any members matching ")

	filterNames := activeFilterNames(entities)
	if len(filterNames) > 0 {
		fmt.Fprintf(&b, "%s.", strings.Join(filterNames, ", "))
	} else {
		b.WriteString("that search.")
	}

	b.WriteString(" Try different keywords")
	if len(filterNames) > 0 {
		fmt.Fprintf(&b, ", or search without %s", filterNames[0])
	}
	b.WriteString(".")
	return b.String()
}

func businessHeader(entities model.ExtractedEntities) string {
	var parts []string
	if len(entities.Services) > 0 {
		parts = append(parts, strings.Join(entities.Services, ", "))
	}
	if entities.City != "" {
		parts = append(parts, "in "+entities.City)
	}
	if len(parts) == 0 {
		return "Businesses matching your search:"
	}
	return "Businesses offering " + strings.Join(parts, " ") + ":"
}

func peersHeader(entities model.ExtractedEntities) string {
	var parts []string
	if years := entities.Years(); len(years) > 0 {
		parts = append(parts, fmt.Sprintf("batch of %d", years[0]))
	}
	if branches := entities.BranchNames(); len(branches) > 0 {
		parts = append(parts, strings.Join(branches, "/"))
	}
	if len(parts) == 0 {
		return "Classmates matching your search:"
	}
	return "Classmates from the " + strings.Join(parts, ", ") + ":"
}

func contactLine(m model.MemberRecord) string {
	var parts []string
	if m.ContactPhone != "" {
		parts = append(parts, m.ContactPhone)
	}
	if m.ContactEmail != "" {
		parts = append(parts, m.ContactEmail)
	}
	return strings.Join(parts, " / ")
}

// activeFilterNames lists, in the relaxation order the search engine
// would have dropped them, the filter names that were actually
// populated — used for the empty-result suggestion ("search without
// services").
func activeFilterNames(e model.ExtractedEntities) []string {
	var names []string
	if len(e.Services) > 0 {
		names = append(names, "services")
	}
	if len(e.Skills) > 0 {
		names = append(names, "skills")
	}
	if e.City != "" {
		names = append(names, "location")
	}
	if e.TurnoverTier != "" {
		names = append(names, "turnover")
	}
	return names
}

const (
	crore    = 1e7
	lakh     = 1e5
	thousand = 1e3
)

// humanizeTurnover renders an annual turnover amount in the crore/lakh
// "₹X.X Cr / L / K" notation used throughout the directory.
func humanizeTurnover(amount float64) string {
	switch {
	case amount >= crore:
		return fmt.Sprintf("₹%.1f Cr", amount/crore)
	case amount >= lakh:
		return fmt.Sprintf("₹%.1f L", amount/lakh)
	case amount >= thousand:
		return fmt.Sprintf("₹%.1f K", amount/thousand)
	default:
		return fmt.Sprintf("₹%.0f", amount)
	}
}
