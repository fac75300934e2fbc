// Package derive holds the pure view pipeline over collection items:
// composable filters, single-key sorting, bucketed grouping and aggregate
// statistics. Everything here is a function of its inputs; callers recompute
// on every state change.
package derive

import (
	"github.com/hntran/reelist/internal/domain/media"
	"github.com/hntran/reelist/internal/domain/review"
)

// ReviewLookup resolves the current user's review for an item, if any.
type ReviewLookup map[int]review.Review

// ByKind partitions items into the movie/show views the UI renders.
func ByKind(items []media.Item, kind media.Kind) []media.Item {
	out := make([]media.Item, 0, len(items))
	for _, item := range items {
		if item.Kind == kind {
			out = append(out, item)
		}
	}
	return out
}
