// Package speech contains the small English-rendering rules shared by the
// spoken responses: duration simplification and pluralization.
package speech

import "strings"

// Duration is a simplified single-unit duration.
type Duration struct {
	Unit  string // "minute" or "second"
	Count int
}

// SimplifyDuration reduces a number of seconds to a single spoken unit.
// Anything over a minute is floored to whole minutes; otherwise the raw
// second count is used.
func SimplifyDuration(seconds float64) Duration {
	if seconds > 60 {
		return Duration{Unit: "minute", Count: int(seconds / 60)}
	}
	return Duration{Unit: "second", Count: int(seconds)}
}

var specialEndings = []string{"ss", "sh", "ch", "s", "x", "z"}

// Pluralize returns the plural form of a word. Words ending in s, ss, sh,
// ch, x or z take "es"; everything else takes "s".
func Pluralize(word string) string {
	for _, ending := range specialEndings {
		if strings.HasSuffix(word, ending) {
			return word + "es"
		}
	}
	return word + "s"
}

// PluralizeByCount pluralizes word unless count is exactly one.
func PluralizeByCount(word string, count int) string {
	if count == 1 {
		return word
	}
	return Pluralize(word)
}

// PluralizeDo returns the verb agreeing with count: "is" for one, else "are".
func PluralizeDo(count int) string {
	if count == 1 {
		return "is"
	}
	return "are"
}
