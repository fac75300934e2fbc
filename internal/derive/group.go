package derive

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/hntran/reelist/internal/domain/media"
)

type GroupDimension string

const (
	GroupNone     GroupDimension = "none"
	GroupYear     GroupDimension = "year"
	GroupGenre    GroupDimension = "genre"
	GroupDirector GroupDimension = "director"
	GroupActor    GroupDimension = "actor"
	GroupRuntime  GroupDimension = "runtime"
	GroupRating   GroupDimension = "rating"
)

const unknownBucket = "Unknown"

// Bucket is one named partition of the grouped view. Items keep the order
// they arrived in, so group after sorting.
type Bucket struct {
	Label string       `json:"label"`
	Items []media.Item `json:"items"`
}

var runtimeBucketOrder = []string{
	"Short (<90 min)",
	"Standard (90-120 min)",
	"Long (>120 min)",
	unknownBucket,
}

var ratingTierOrder = []string{
	"Masterpiece (9+)",
	"Great (8-9)",
	"Good (7-8)",
	"Mixed (5-7)",
	"Low (<5)",
}

// Group partitions items into labeled buckets along one dimension. Bucket
// order is dimension specific: years descend, rating tiers and runtime
// buckets use their fixed band order, everything else is alphabetical.
func Group(items []media.Item, dim GroupDimension, kind media.Kind) []Bucket {
	if dim == GroupNone {
		label := "Movies"
		if kind == media.KindTV {
			label = "Shows"
		}
		return []Bucket{{Label: label, Items: items}}
	}

	byLabel := make(map[string][]media.Item)
	for _, item := range items {
		label := groupLabel(item, dim)
		byLabel[label] = append(byLabel[label], item)
	}

	labels := make([]string, 0, len(byLabel))
	for label := range byLabel {
		labels = append(labels, label)
	}

	switch dim {
	case GroupYear:
		labels = yearOrder(labels)
	case GroupRuntime:
		labels = fixedOrder(byLabel, runtimeBucketOrder)
	case GroupRating:
		labels = fixedOrder(byLabel, ratingTierOrder)
	default:
		sort.Strings(labels)
	}

	buckets := make([]Bucket, 0, len(labels))
	for _, label := range labels {
		buckets = append(buckets, Bucket{Label: label, Items: byLabel[label]})
	}
	return buckets
}

// yearOrder sorts year labels newest first, with the unknown bucket always
// last regardless of how "Unknown" compares to the digits.
func yearOrder(labels []string) []string {
	ordered := labels[:0]
	hasUnknown := false
	for _, label := range labels {
		if label == unknownBucket {
			hasUnknown = true
			continue
		}
		ordered = append(ordered, label)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(ordered)))
	if hasUnknown {
		ordered = append(ordered, unknownBucket)
	}
	return ordered
}

func fixedOrder(byLabel map[string][]media.Item, order []string) []string {
	labels := make([]string, 0, len(byLabel))
	for _, label := range order {
		if _, ok := byLabel[label]; ok {
			labels = append(labels, label)
		}
	}
	return labels
}

func groupLabel(item media.Item, dim GroupDimension) string {
	switch dim {
	case GroupYear:
		if year, ok := item.Year(); ok {
			return strconv.Itoa(year)
		}
		return unknownBucket
	case GroupGenre:
		return primaryGenre(item)
	case GroupDirector:
		return primaryDirector(item)
	case GroupActor:
		return primaryActor(item)
	case GroupRuntime:
		return runtimeBucket(item)
	case GroupRating:
		return ratingTier(item.VoteAverage)
	}
	return unknownBucket
}

// primaryGenre uses only the first listed genre: grouping wants exactly one
// bucket per item, unlike the stats histogram which counts every genre.
func primaryGenre(item media.Item) string {
	if len(item.Genres) > 0 {
		return item.Genres[0].Name
	}
	if len(item.GenreIDs) > 0 {
		return fmt.Sprintf("Genre %d", item.GenreIDs[0])
	}
	return unknownBucket
}

// primaryDirector is the first crew member credited as Director, falling
// back to the first show creator.
func primaryDirector(item media.Item) string {
	if item.Credits != nil {
		for _, member := range item.Credits.Crew {
			if member.Job == "Director" {
				return member.Name
			}
		}
	}
	if len(item.CreatedBy) > 0 {
		return item.CreatedBy[0].Name
	}
	return unknownBucket
}

func primaryActor(item media.Item) string {
	if item.Credits != nil && len(item.Credits.Cast) > 0 {
		return item.Credits.Cast[0].Name
	}
	return unknownBucket
}

func runtimeBucket(item media.Item) string {
	runtime := item.TotalRuntime()
	switch {
	case runtime <= 0:
		return unknownBucket
	case runtime < 90:
		return runtimeBucketOrder[0]
	case runtime <= 120:
		return runtimeBucketOrder[1]
	default:
		return runtimeBucketOrder[2]
	}
}

func ratingTier(rating float64) string {
	switch {
	case rating >= 9:
		return ratingTierOrder[0]
	case rating >= 8:
		return ratingTierOrder[1]
	case rating >= 7:
		return ratingTierOrder[2]
	case rating >= 5:
		return ratingTierOrder[3]
	default:
		return ratingTierOrder[4]
	}
}
