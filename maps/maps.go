// Package maps provides helpers for merging plain Go maps and listing their
// keys in a stable order.
package maps

import (
	"cmp"
	"maps"
	"slices"

	"facette.io/natsort"
)

// Merge copies every map into a new one. When a key appears more than once
// the value from the later map wins. Nil maps are skipped.
func Merge[K comparable, V any](ms ...map[K]V) map[K]V {
	out := make(map[K]V, sizeHint(ms))

	for _, m := range ms {
		maps.Copy(out, m)
	}

	return out
}

// MergeFunc is like Merge but calls resolve when a key is already present.
// resolve receives the key, the value so far and the incoming value.
func MergeFunc[K comparable, V any](resolve func(key K, current, incoming V) V, ms ...map[K]V) map[K]V {
	out := make(map[K]V, sizeHint(ms))

	for _, m := range ms {
		for k, v := range m {
			if current, ok := out[k]; ok {
				v = resolve(k, current, v)
			}

			out[k] = v
		}
	}

	return out
}

// DeepMerge merges trees of map[string]any. Nested maps present on both sides
// are merged recursively; for anything else the later value wins. The inputs
// are not modified.
func DeepMerge(ms ...map[string]any) map[string]any {
	out := make(map[string]any, sizeHint(ms))

	for _, m := range ms {
		for k, v := range m {
			incoming, incomingIsMap := v.(map[string]any)
			current, currentIsMap := out[k].(map[string]any)

			switch {
			case incomingIsMap && currentIsMap:
				out[k] = DeepMerge(current, incoming)
			case incomingIsMap:
				out[k] = DeepMerge(incoming)
			default:
				out[k] = v
			}
		}
	}

	return out
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	return slices.Sorted(maps.Keys(m))
}

// NaturalKeys returns the keys of m in natural order, so "item2" sorts
// before "item10".
func NaturalKeys[V any](m map[string]V) []string {
	keys := slices.Collect(maps.Keys(m))

	natsort.Sort(keys)

	return keys
}

// Invert swaps keys and values. If several keys share a value, which of them
// survives is unspecified.
func Invert[K, V comparable](m map[K]V) map[V]K {
	out := make(map[V]K, len(m))

	for k, v := range m {
		out[v] = k
	}

	return out
}

func sizeHint[K comparable, V any](ms []map[K]V) int {
	n := 0

	for _, m := range ms {
		n = max(n, len(m))
	}

	return n
}
