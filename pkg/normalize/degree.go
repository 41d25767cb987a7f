package normalize

import "strings"

// degreeAliases maps lowercased, trimmed input to its canonical
// degree name.
var degreeAliases = map[string]string{
	"mba":   "MBA",
	"be":    "B.E.",
	"b.e":   "B.E.",
	"b.e.":  "B.E.",
	"btech": "B.Tech",
	"b.tech": "B.Tech",
	"mca":   "MCA",
	"mtech": "M.Tech",
	"m.tech": "M.Tech",
	"ms":    "M.S.",
	"m.s":   "M.S.",
	"bsc":   "B.Sc",
	"b.sc":  "B.Sc",
	"msc":   "M.Sc",
	"m.sc":  "M.Sc",
	"phd":   "Ph.D.",
	"ph.d":  "Ph.D.",
	"ph.d.": "Ph.D.",
}

// Degree maps a degree abbreviation or punctuation variant to its
// canonical form. ok is false for unrecognized input.
func Degree(s string) (name string, ok bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return "", false
	}
	canonical, found := degreeAliases[key]
	return canonical, found
}
