// Package labels provides the normalized food-label sets the evaluator
// scores against. All tokens entering the pipeline pass through the same
// normalization: trim, Unicode case fold, drop blanks.
package labels

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

const listSeparator = ","

// Set is a deduplicated collection of normalized label tokens.
type Set map[string]struct{}

// Normalize trims and case-folds a single token. Blank tokens normalize to
// the empty string.
func Normalize(token string) string {
	return cases.Fold().String(strings.TrimSpace(token))
}

// NewSet normalizes the given tokens into a Set, dropping blanks.
func NewSet(tokens ...string) Set {
	s := make(Set, len(tokens))

	for _, token := range tokens {
		normalized := Normalize(token)
		if normalized == "" {
			continue
		}

		s[normalized] = struct{}{}
	}

	return s
}

// Split parses a comma-joined label list into a Set.
func Split(raw string) Set {
	return NewSet(strings.Split(raw, listSeparator)...)
}

// Has reports whether the set contains label. The label is expected to be
// normalized already; entries in a Set always are.
func (s Set) Has(label string) bool {
	_, ok := s[label]

	return ok
}

// Sorted returns the labels in lexicographic order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for label := range s {
		out = append(out, label)
	}

	sort.Strings(out)

	return out
}

// Join renders the set as a comma-joined string in lexicographic order.
func (s Set) Join() string {
	return strings.Join(s.Sorted(), listSeparator)
}
