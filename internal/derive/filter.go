package derive

import (
	"strings"

	"github.com/hntran/reelist/internal/domain/media"
)

// FilterOptions are independently composable predicates; zero values switch
// a predicate off.
type FilterOptions struct {
	GenreID   int
	Year      int
	MinRating float64
	// Reviewed keeps only items the user has given a numeric rating.
	Reviewed bool
	// Commented keeps only items with a non-empty review comment.
	Commented bool
}

// Filter applies every active predicate. An item with an unparsable release
// date fails the year predicate but is unaffected by the others.
func Filter(items []media.Item, opts FilterOptions, reviews ReviewLookup) []media.Item {
	out := make([]media.Item, 0, len(items))
	for _, item := range items {
		if opts.GenreID != 0 && !hasGenre(item, opts.GenreID) {
			continue
		}
		if opts.Year != 0 {
			year, ok := item.Year()
			if !ok || year != opts.Year {
				continue
			}
		}
		if opts.MinRating > 0 && item.VoteAverage < opts.MinRating {
			continue
		}
		if opts.Reviewed {
			r, ok := reviews[item.ID]
			if !ok || r.Rating <= 0 {
				continue
			}
		}
		if opts.Commented {
			r, ok := reviews[item.ID]
			if !ok || strings.TrimSpace(r.Comment) == "" {
				continue
			}
		}
		out = append(out, item)
	}
	return out
}

func hasGenre(item media.Item, genreID int) bool {
	for _, id := range item.GenreIDs {
		if id == genreID {
			return true
		}
	}
	for _, g := range item.Genres {
		if g.ID == genreID {
			return true
		}
	}
	return false
}
