// Package compare decides whether two adjacency lists describe the same
// topology.
package compare

import (
	"sort"

	"netgraphx/internal/graph"
)

// Equivalent reports whether a and b have the same key set and, for every
// key, the same neighbors regardless of order. Neighbor lists are compared as
// multisets: a repeated neighbor must be repeated on both sides.
func Equivalent(a, b graph.Adjacency) bool {
	if len(a) != len(b) {
		return false
	}
	for node := range a {
		if _, ok := b[node]; !ok {
			return false
		}
	}

	for node, neighbors := range a {
		if !sameSorted(neighbors, b[node]) {
			return false
		}
	}
	return true
}

// Difference describes why two adjacency lists are not equivalent.
type Difference struct {
	// MissingKeys are present in the expected list only.
	MissingKeys []string `json:"missing_keys,omitempty"`
	// ExtraKeys are present in the actual list only.
	ExtraKeys []string `json:"extra_keys,omitempty"`
	// Neighbors lists shared keys whose neighbor multisets differ.
	Neighbors []NeighborDifference `json:"neighbors,omitempty"`
}

// NeighborDifference is a per-key neighbor mismatch.
type NeighborDifference struct {
	Node     string   `json:"node"`
	Expected []string `json:"expected"`
	Actual   []string `json:"actual"`
}

// Empty reports whether no difference was found.
func (d Difference) Empty() bool {
	return len(d.MissingKeys) == 0 && len(d.ExtraKeys) == 0 && len(d.Neighbors) == 0
}

// Diff explains the mismatch between expected and actual. Diff(a, b).Empty()
// is true exactly when Equivalent(a, b) is.
func Diff(expected, actual graph.Adjacency) Difference {
	var d Difference

	for _, node := range expected.Keys() {
		got, ok := actual[node]
		if !ok {
			d.MissingKeys = append(d.MissingKeys, node)
			continue
		}
		if !sameSorted(expected[node], got) {
			d.Neighbors = append(d.Neighbors, NeighborDifference{
				Node:     node,
				Expected: sortedCopy(expected[node]),
				Actual:   sortedCopy(got),
			})
		}
	}

	for _, node := range actual.Keys() {
		if _, ok := expected[node]; !ok {
			d.ExtraKeys = append(d.ExtraKeys, node)
		}
	}

	return d
}

func sameSorted(x, y []string) bool {
	if len(x) != len(y) {
		return false
	}
	sx, sy := sortedCopy(x), sortedCopy(y)
	for i := range sx {
		if sx[i] != sy[i] {
			return false
		}
	}
	return true
}

func sortedCopy(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	sort.Strings(out)
	return out
}
