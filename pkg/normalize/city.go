// Package normalize maps the messy free-text variants people type for
// cities, engineering branches, degrees, and graduation years onto the
// canonical forms the member store and search engine key off of. Every
// function here is pure and idempotent: normalizing an already-
// canonical value returns it unchanged, and there is no shared,
// process-wide state to reset between calls.
package normalize

import "strings"

// cityAliases maps a lowercased, trimmed input to its canonical,
// title-cased city name. Multiple historical and colloquial names
// resolve to the same canonical form.
var cityAliases = map[string]string{
	"chennai":   "Chennai",
	"madras":    "Chennai",
	"bangalore": "Bangalore",
	"bengaluru": "Bangalore",
	"bombay":    "Mumbai",
	"mumbai":    "Mumbai",
	"calcutta":  "Kolkata",
	"kolkata":   "Kolkata",
	"delhi":     "Delhi",
	"new delhi": "Delhi",
	"hyderabad": "Hyderabad",
	"pune":      "Pune",
	"coimbatore": "Coimbatore",
}

// City maps a free-text city variant to its canonical, title-cased
// name. It returns ok=false for anything it doesn't recognize rather
// than guessing, so callers can decide whether to drop the field or
// fall back to an LLM pass.
func City(s string) (name string, ok bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return "", false
	}
	canonical, found := cityAliases[key]
	return canonical, found
}
