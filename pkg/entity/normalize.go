package entity

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// legalSuffixes are stripped during canonical-name normalization (spec.md
// §4.1 step 1). Matched case-insensitively at the end of the name, with an
// optional leading comma/period.
var legalSuffixes = []string{"inc", "llc", "corp", "co"}

var whitespaceRun = regexp.MustCompile(`\s+`)

// Normalize applies spec.md §4.1 step 1 exactly: trim, collapse whitespace,
// strip legal suffixes, title-case, NFKC-normalize.
func Normalize(name string) string {
	s := strings.TrimSpace(name)
	s = whitespaceRun.ReplaceAllString(s, " ")
	s = stripLegalSuffix(s)
	s = titleCase(s)
	s = norm.NFKC.String(s)
	return s
}

func stripLegalSuffix(s string) string {
	trimmed := s
	for {
		changed := false
		lower := strings.ToLower(trimmed)
		for _, suf := range legalSuffixes {
			candidates := []string{" " + suf, ", " + suf, "." + suf}
			for _, cand := range candidates {
				if strings.HasSuffix(lower, cand) {
					trimmed = trimmed[:len(trimmed)-len(cand)]
					trimmed = strings.TrimRight(trimmed, ". ,")
					changed = true
					lower = strings.ToLower(trimmed)
					break
				}
			}
		}
		if !changed {
			break
		}
	}
	return strings.TrimSpace(trimmed)
}

// titleCase upper-cases the first letter of each word and lower-cases the
// rest, folding stray punctuation runs along the way (spec.md §4.1: "fold
// punctuation").
func titleCase(s string) string {
	fields := strings.Fields(s)
	for i, f := range fields {
		f = strings.Trim(f, ".,")
		if f == "" {
			continue
		}
		r := []rune(strings.ToLower(f))
		r[0] = unicode.ToUpper(r[0])
		fields[i] = string(r)
	}
	return strings.Join(fields, " ")
}
