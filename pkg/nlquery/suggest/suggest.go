// Package suggest produces the three follow-up suggestions shown
// alongside every response, win or miss. Suggestions are short,
// templated, and dispatch on intent the same way the response
// formatter does.
package suggest

import (
	"fmt"

	"github.com/communityconnect/nlquery/pkg/nlquery/model"
)

const suggestionCount = 3

// Generate always returns exactly suggestionCount non-empty strings,
// tailored to intent and, when the search came back empty, to
// whichever filter is most likely worth dropping.
func Generate(intent model.IntentType, entities model.ExtractedEntities, resultCount int) []string {
	if resultCount == 0 {
		return padTo(emptyResultSuggestions(entities), suggestionCount)
	}

	switch intent {
	case model.IntentFindBusiness:
		return padTo(businessSuggestions(entities), suggestionCount)
	case model.IntentFindPeers:
		return padTo(peerSuggestions(entities), suggestionCount)
	case model.IntentFindSpecificPerson:
		return padTo(specificPersonSuggestions(entities), suggestionCount)
	case model.IntentFindAlumniBusiness:
		return padTo(alumniBusinessSuggestions(entities), suggestionCount)
	default:
		return padTo(businessSuggestions(entities), suggestionCount)
	}
}

func businessSuggestions(e model.ExtractedEntities) []string {
	var out []string
	if e.City != "" {
		out = append(out, fmt.Sprintf("Search in a different city instead of %s", e.City))
	} else {
		out = append(out, "Add a city to narrow the search")
	}
	if len(e.Services) > 0 {
		out = append(out, fmt.Sprintf("Explore services related to %s", e.Services[0]))
	} else {
		out = append(out, "Specify the kind of service you're looking for")
	}
	out = append(out, "Filter these results by graduation batch")
	return out
}

func peerSuggestions(e model.ExtractedEntities) []string {
	var out []string
	if years := e.Years(); len(years) > 0 {
		year := years[0]
		out = append(out, fmt.Sprintf("Check the %d and %d batches too", year-1, year+1))
	} else {
		out = append(out, "Add a graduation year to narrow the search")
	}
	if branches := e.BranchNames(); len(branches) > 0 {
		out = append(out, fmt.Sprintf("Try a different branch than %s", branches[0]))
	} else {
		out = append(out, "Add a branch to narrow the search")
	}
	out = append(out, "Turn this into a business lookup among these classmates")
	return out
}

func specificPersonSuggestions(e model.ExtractedEntities) []string {
	var out []string
	out = append(out, "Find others from the same batch")
	if e.Organization != "" {
		out = append(out, fmt.Sprintf("Find others working at %s", e.Organization))
	} else {
		out = append(out, "Find others at the same organization")
	}
	out = append(out, "Find others with the same role")
	return out
}

func alumniBusinessSuggestions(e model.ExtractedEntities) []string {
	var out []string
	if years := e.Years(); len(years) > 0 {
		out = append(out, fmt.Sprintf("Look at adjacent batches to %d", years[0]))
	} else {
		out = append(out, "Add a batch year to narrow the search")
	}
	if len(e.Services) > 0 {
		out = append(out, "Try an alternative service category")
	} else {
		out = append(out, "Specify a service category")
	}
	out = append(out, "Broaden the location")
	return out
}

// emptyResultSuggestions is used whenever the search returns no
// candidates, regardless of intent: it favors naming the specific
// filter that most likely caused the miss, in the same order the
// search engine relaxes filters.
func emptyResultSuggestions(e model.ExtractedEntities) []string {
	var out []string
	if len(e.Services) > 0 {
		out = append(out, "Search without the services filter")
	}
	if len(e.Skills) > 0 {
		out = append(out, "Search without the skills filter")
	}
	if e.City != "" {
		out = append(out, "Search without the location filter")
	}
	if e.TurnoverTier != "" {
		out = append(out, "Search without the turnover filter")
	}
	if len(out) == 0 {
		out = append(out, "Broaden your search with different keywords")
	}
	return out
}

// padTo fills out with generic filler suggestions until it has
// exactly n entries, so callers never have to special-case a short
// list.
func padTo(out []string, n int) []string {
	fillers := []string{
		"Try rephrasing your question",
		"Add more detail to your search",
		"Remove one of your filters and search again",
	}
	i := 0
	for len(out) < n {
		out = append(out, fillers[i%len(fillers)])
		i++
	}
	if len(out) > n {
		out = out[:n]
	}
	return out
}
