// Package team normalizes team names into the identifiers used as graph nodes.
package team

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// rankingSuffix matches a poll ranking such as " (3)" anywhere in the name.
var rankingSuffix = regexp.MustCompile(`\s*\(\d+\)`)

// Normalize turns a displayed team name into its identifier:
// "Duke (3)" and "duke" both become "duke", "North Carolina" becomes
// "north-carolina". Empty input yields an empty identifier.
//
// NFKC runs first so non-breaking spaces are plain spaces by the time the
// ranking pattern and the hyphenation look for them.
func Normalize(name string) string {
	name = norm.NFKC.String(name)
	name = strings.TrimSpace(name)
	name = strings.TrimSpace(rankingSuffix.ReplaceAllString(name, ""))
	name = cases.Lower(language.Und).String(name) // a Caser is stateful; never share one
	return strings.ReplaceAll(name, " ", "-")
}

// NormalizeAll normalizes every name and drops the ones that end up empty.
func NormalizeAll(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if id := Normalize(n); id != "" {
			out = append(out, id)
		}
	}
	return out
}
