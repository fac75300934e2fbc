package derive

import (
	"fmt"

	"github.com/hntran/reelist/internal/domain/media"
)

// topBilledSlots bounds how many cast entries count toward the actor
// histogram per item.
const topBilledSlots = 8

// Stats are the aggregate analytics for one kind-partitioned item set,
// independent of the filter/sort/group pipeline.
type Stats struct {
	ItemCount         int             `json:"itemCount"`
	AverageRating     float64         `json:"averageRating"`
	AverageUserRating float64         `json:"averageUserRating"`
	UserRatingCount   int             `json:"userRatingCount"`
	TotalMinutes      int             `json:"totalMinutes"`
	WatchTimeDays     int             `json:"watchTimeDays"`
	WatchTimeHours    int             `json:"watchTimeHours"`
	GenreCounts       map[string]int  `json:"genreCounts"`
	DecadeCounts      map[int]int     `json:"decadeCounts"`
	CountryCounts     map[string]int  `json:"countryCounts"`
	ActorCounts       map[string]int  `json:"actorCounts"`
	DirectorCounts    map[string]int  `json:"directorCounts"`
}

// ComputeStats aggregates over the full item set. Histograms count full
// representation (every genre, every listed country, every credited
// director/creator), in contrast to the grouping dimensions which use only
// the primary entry.
func ComputeStats(items []media.Item, reviews ReviewLookup) Stats {
	stats := Stats{
		GenreCounts:    map[string]int{},
		DecadeCounts:   map[int]int{},
		CountryCounts:  map[string]int{},
		ActorCounts:    map[string]int{},
		DirectorCounts: map[string]int{},
	}
	stats.ItemCount = len(items)

	var ratingSum float64
	var userRatingSum int
	for _, item := range items {
		ratingSum += item.VoteAverage
		stats.TotalMinutes += item.TotalRuntime()

		if r, ok := reviews[item.ID]; ok && r.Rating > 0 {
			userRatingSum += r.Rating
			stats.UserRatingCount++
		}

		if len(item.Genres) > 0 {
			for _, g := range item.Genres {
				stats.GenreCounts[g.Name]++
			}
		} else {
			for _, id := range item.GenreIDs {
				stats.GenreCounts[fmt.Sprintf("Genre %d", id)]++
			}
		}

		if year, ok := item.Year(); ok {
			stats.DecadeCounts[(year/10)*10]++
		}

		for _, country := range item.ProductionCountries {
			name := country.Name
			if name == "" {
				name = country.ISOCode
			}
			stats.CountryCounts[name]++
		}

		if item.Credits != nil {
			for i, member := range item.Credits.Cast {
				if i >= topBilledSlots {
					break
				}
				stats.ActorCounts[member.Name]++
			}
			for _, member := range item.Credits.Crew {
				if member.Job == "Director" {
					stats.DirectorCounts[member.Name]++
				}
			}
		}
		for _, creator := range item.CreatedBy {
			stats.DirectorCounts[creator.Name]++
		}
	}

	if len(items) > 0 {
		stats.AverageRating = ratingSum / float64(len(items))
	}
	if stats.UserRatingCount > 0 {
		stats.AverageUserRating = float64(userRatingSum) / float64(stats.UserRatingCount)
	}
	stats.WatchTimeDays = stats.TotalMinutes / (60 * 24)
	stats.WatchTimeHours = (stats.TotalMinutes % (60 * 24)) / 60
	return stats
}
