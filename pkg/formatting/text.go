package formatting

import "strings"

// CollapseWhitespace replaces every run of Unicode whitespace with a single
// space and trims the ends.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate returns at most limit runes of s. A non-positive limit returns s
// unchanged.
func Truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}

	count := 0
	for i := range s {
		if count == limit {
			return s[:i]
		}
		count++
	}
	return s
}
