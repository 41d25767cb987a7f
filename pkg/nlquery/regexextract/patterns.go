package regexextract

import "regexp"

// yearPattern has three alternatives, each with its own capture group,
// so a single FindStringSubmatch reports which one fired:
//  1. a connector keyword ("class of", "batch of", "graduated in",
//     "passed out in") followed by 2 or 4 digits ("class of 95");
//  2. a bare 4-digit year standing on its own ("Find 1995 mechanical
//     engineers");
//  3. a bare 2-digit year immediately followed by "passout"/"batch"/
//     "pass out" ("95 passout mechanical").
// Go's RE2 leftmost-match semantics mean the earliest-starting
// alternative in the query wins, so a connector-prefixed year is
// never shadowed by the bare-year alternatives that follow it.
var (
	yearPattern = regexp.MustCompile(`(?i)(?:class of|batch(?: of)?|graduat\w+(?: in)?|passed out(?: in)?)\s+['’]?(\d{2}|\d{4})\b|\b((?:19|20)\d{2})\b|\b(\d{2})\s*(?:passout|batch|pass\s*out)\b`)

	locationPattern = regexp.MustCompile(`(?i)\b(?:in|from|near|based in|located in)\s+([A-Za-z][A-Za-z .]{2,30}?)(?:[.,!?]|\s+(?:who|that|with|and)\b|$)`)

	turnoverPattern = regexp.MustCompile(`(?i)\b(small|mid-?size[d]?|medium|large|enterprise)\b.{0,15}\b(business|compan\w+|firm|turnover|revenue)\b`)

	organizationPattern = regexp.MustCompile(`(?i)\b(?:at|works? at|working at|with|owns?|runs?)\s+([A-Z][A-Za-z0-9&.,' -]{2,40})`)

	// namePattern looks for a capitalized two-to-three word sequence
	// after a query term suggesting a specific-person lookup.
	namePattern = regexp.MustCompile(`\b(?:find|know|is|about)\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+){1,2})\b`)
)

// There are no branch or degree pattern tables here: the extractor
// scans the raw text for any token that the normalize package's alias
// tables recognize, rather than duplicating the alias list.
//
// skillServiceSeparators splits a captured skills or services list on
// commas, semicolons, slashes, " and " and " or ".
var skillServiceSeparators = regexp.MustCompile(`\s*(?:,|;|/| and | or )\s*`)

// skillsPattern captures a comma/and-separated list following a
// "skilled in" / "experience in" style phrase.
var skillsPattern = regexp.MustCompile(`(?i)(?:skilled in|skills? (?:in|include\w*)|experience(?:d)? (?:in|with))\s+([a-zA-Z0-9 ,/&-]{3,80}?)(?:[.!?]|$)`)

// servicesPattern captures a comma/and-separated list following an
// "offers" / "provides" style phrase, used for business lookups.
var servicesPattern = regexp.MustCompile(`(?i)(?:offers?|provides?|specializ\w+ in)\s+([a-zA-Z0-9 ,/&-]{3,80}?)(?:[.!?]|$)`)
