package ic

import (
	"regexp"
	"strings"
)

// Matcher reports whether a single line is tagged for a profile.
type Matcher func(line string) bool

// MarkerPattern builds the Matcher for a given profile ID.
type MarkerPattern func(profileID string) Matcher

var (
	// Any Unicode space, the BOM included, may precede @import.
	importLineRegex = regexp.MustCompile(`^[\s\v\p{Zs}\x{FEFF}\x{2028}\x{2029}]*@import`)
	lineBreakRegex  = regexp.MustCompile(`\r?\n`)
)

// DefaultMarkerPattern matches, anywhere in the line, a marker of the form
// "critical: a, b, c;" that lists either "all" or profileID.
func DefaultMarkerPattern(profileID string) Matcher {
	re := regexp.MustCompile(`critical: ([a-zA-Z0-9_-]*, )*(all|` + regexp.QuoteMeta(profileID) + `)(,|;|$)`)
	return re.MatchString
}

// Filter returns source with every @import line that is not tagged for
// profileID removed. All other lines are kept verbatim and in order. Lines
// are rejoined with "\n".
func Filter(source string, profileID string, pattern MarkerPattern) string {
	if pattern == nil {
		pattern = DefaultMarkerPattern
	}
	isTagged := pattern(profileID)

	lines := lineBreakRegex.Split(source, -1)
	kept := lines[:0]
	for _, line := range lines {
		if importLineRegex.MatchString(line) && !isTagged(line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
