package normalize

import "strings"

// branchEntry holds the canonical long-form name and the short tag
// (used in compact UI surfaces and log fields) for one engineering
// branch.
type branchEntry struct {
	Name string
	Tag  string
}

// branchAliases maps lowercased, trimmed input (full names and common
// abbreviations) to a canonical branch entry.
var branchAliases = map[string]branchEntry{
	"ece":                              {"Electronics and Communication", "ECE"},
	"electronics and communication":    {"Electronics and Communication", "ECE"},
	"electronics & communication":      {"Electronics and Communication", "ECE"},
	"cse":                              {"Computer Science", "CSE"},
	"computer science":                {"Computer Science", "CSE"},
	"comp sci":                        {"Computer Science", "CSE"},
	"cs":                              {"Computer Science", "CSE"},
	"mech":                            {"Mechanical", "MECH"},
	"mechanical":                      {"Mechanical", "MECH"},
	"eee":                             {"Electrical and Electronics", "EEE"},
	"electrical and electronics":      {"Electrical and Electronics", "EEE"},
	"civil":                           {"Civil", "CIVIL"},
	"it":                              {"Information Technology", "IT"},
	"information technology":         {"Information Technology", "IT"},
	"chem":                            {"Chemical", "CHEM"},
	"chemical":                        {"Chemical", "CHEM"},
}

// Branch expands an engineering branch abbreviation or variant to its
// canonical name and short tag. ok is false when the input doesn't
// match any known branch.
func Branch(s string) (name, tag string, ok bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return "", "", false
	}
	entry, found := branchAliases[key]
	if !found {
		return "", "", false
	}
	return entry.Name, entry.Tag, true
}
