// Package rules provides the ordered pattern-table combinator shared by the
// assistant's regex classifiers (industry, role, intent, location). Each
// classifier is an ordered list of (pattern, value) pairs where the first
// matching pattern wins.
package rules

import "regexp"

// Rule pairs a compiled pattern with the value it classifies to.
type Rule[T any] struct {
	Pattern *regexp.Regexp
	Value   T
}

// MustRule compiles expr and panics on error. Rule tables are package-level
// constants, so a bad expression is a programming error.
func MustRule[T any](expr string, value T) Rule[T] {
	return Rule[T]{Pattern: regexp.MustCompile(expr), Value: value}
}

// FirstMatch evaluates rules in order and returns the value of the first rule
// whose pattern matches text. The boolean reports whether any rule matched.
func FirstMatch[T any](table []Rule[T], text string) (T, bool) {
	for _, r := range table {
		if r.Pattern.MatchString(text) {
			return r.Value, true
		}
	}
	var zero T
	return zero, false
}

// FirstSubmatch is FirstMatch for rules that also need the capture groups of
// the winning pattern.
func FirstSubmatch[T any](table []Rule[T], text string) (T, []string, bool) {
	for _, r := range table {
		if groups := r.Pattern.FindStringSubmatch(text); groups != nil {
			return r.Value, groups, true
		}
	}
	var zero T
	return zero, nil, false
}
