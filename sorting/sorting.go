// Package sorting orders strings the way people read them: digit runs compare
// by numeric value, so "v2" sorts before "v10".
package sorting

import (
	"slices"
	"strings"

	"facette.io/natsort"
)

// Natural sorts ss in place in natural order.
func Natural(ss []string) {
	natsort.Sort(ss)
}

// NaturalLess reports whether a sorts before b in natural order.
func NaturalLess(a, b string) bool {
	return compare(a, b) < 0
}

// NaturalBy sorts items in place by the natural order of key(item). The sort
// is stable.
func NaturalBy[T any](items []T, key func(T) string) {
	slices.SortStableFunc(items, func(a, b T) int {
		return compare(key(a), key(b))
	})
}

// compare turns natsort's less function into a three-way comparison. Strings
// that tie under natural order but differ in bytes ("a01" and "a1") fall back
// to byte order.
func compare(a, b string) int {
	if a == b {
		return 0
	}

	ab, ba := natsort.Compare(a, b), natsort.Compare(b, a)

	switch {
	case ab && !ba:
		return -1
	case ba && !ab:
		return 1
	default:
		return strings.Compare(a, b)
	}
}
