package geo

import (
	"sort"

	"github.com/agnivade/levenshtein"
)

// LowestCost returns the item with the smallest cost. Ties keep the first
// item seen; the second return is false for an empty slice.
func LowestCost[T any](items []T, cost func(T) float64) (T, bool) {
	var best T
	if len(items) == 0 {
		return best, false
	}

	best = items[0]
	bestCost := cost(items[0])
	for _, item := range items[1:] {
		if c := cost(item); c < bestCost {
			best = item
			bestCost = c
		}
	}
	return best, true
}

// SortByNameDistance returns the items sorted by ascending edit distance
// between query and each item's name. The sort is stable, so equally close
// names keep their input order. The input slice is not modified.
func SortByNameDistance[T any](items []T, query string, name func(T) string) []T {
	type ranked struct {
		item T
		dist int
	}

	mapped := make([]ranked, len(items))
	for i, item := range items {
		mapped[i] = ranked{item: item, dist: levenshtein.ComputeDistance(query, name(item))}
	}

	sort.SliceStable(mapped, func(i, j int) bool {
		return mapped[i].dist < mapped[j].dist
	})

	out := make([]T, len(mapped))
	for i, r := range mapped {
		out[i] = r.item
	}
	return out
}
