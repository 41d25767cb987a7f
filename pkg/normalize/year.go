package normalize

import (
	"strconv"
	"strings"
	"time"
)

// twoDigitPivot is the fixed cutoff used to re-anchor a two-digit year
// to a century: digits at or above the pivot belong to 19xx, digits
// below it belong to 20xx. Fixed rather than derived from the current
// date, so the same two-digit input always normalizes to the same
// four-digit year regardless of when it's evaluated.
const twoDigitPivot = 50

const minGraduationYear = 1950

// Year normalizes a 2- or 4-digit graduation year string to a
// 4-digit int. Two-digit input is re-anchored against a fixed pivot:
// "70" becomes 1970, "00" becomes 2000. ok is false if the string
// isn't a plausible year (non-numeric, or outside
// [minGraduationYear, currentYear+5]).
func Year(s string) (year int, ok bool) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, false
	}

	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, false
	}

	switch {
	case len(trimmed) == 2:
		if n >= twoDigitPivot {
			n += 1900
		} else {
			n += 2000
		}
	case len(trimmed) == 4:
		// already a four-digit year
	default:
		return 0, false
	}

	maxYear := time.Now().Year() + 5
	if n < minGraduationYear || n > maxYear {
		return 0, false
	}
	return n, true
}
