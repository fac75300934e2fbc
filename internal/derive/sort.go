package derive

import (
	"sort"
	"strings"
	"time"

	"github.com/hntran/reelist/internal/domain/media"
)

type SortKey string

const (
	SortAddedDesc   SortKey = "added_desc"
	SortAddedAsc    SortKey = "added_asc"
	SortReleaseDesc SortKey = "release_desc"
	SortReleaseAsc  SortKey = "release_asc"
	SortRatingDesc  SortKey = "rating_desc"
	SortRatingAsc   SortKey = "rating_asc"
	SortRuntimeDesc SortKey = "runtime_desc"
	SortRuntimeAsc  SortKey = "runtime_asc"
	SortTitle       SortKey = "title"
)

// Sort orders items by exactly one key and returns a new slice. Release
// dates compare as strings, which is correct because the catalog emits
// zero-padded ISO YYYY-MM-DD dates; do not swap this for parsed-date
// comparison.
func Sort(items []media.Item, key SortKey) []media.Item {
	out := append([]media.Item(nil), items...)

	less := func(a, b media.Item) bool { return a.ID < b.ID }
	switch key {
	case SortAddedDesc:
		less = func(a, b media.Item) bool { return addedAt(b).Before(addedAt(a)) }
	case SortAddedAsc:
		less = func(a, b media.Item) bool { return addedAt(a).Before(addedAt(b)) }
	case SortReleaseDesc:
		less = func(a, b media.Item) bool { return a.ReleaseDate > b.ReleaseDate }
	case SortReleaseAsc:
		less = func(a, b media.Item) bool { return a.ReleaseDate < b.ReleaseDate }
	case SortRatingDesc:
		less = func(a, b media.Item) bool { return a.VoteAverage > b.VoteAverage }
	case SortRatingAsc:
		less = func(a, b media.Item) bool { return a.VoteAverage < b.VoteAverage }
	case SortRuntimeDesc:
		less = func(a, b media.Item) bool { return a.TotalRuntime() > b.TotalRuntime() }
	case SortRuntimeAsc:
		less = func(a, b media.Item) bool { return a.TotalRuntime() < b.TotalRuntime() }
	case SortTitle:
		less = func(a, b media.Item) bool {
			return strings.ToLower(a.Title) < strings.ToLower(b.Title)
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// addedAt treats items without a stamp as epoch so they sort to the very
// back of added_desc.
func addedAt(item media.Item) time.Time {
	if item.AddedAt == nil {
		return time.Time{}
	}
	return *item.AddedAt
}
