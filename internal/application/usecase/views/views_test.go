package views

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hntran/reelist/internal/application/store/collectionstore"
	"github.com/hntran/reelist/internal/application/store/reviewstore"
	"github.com/hntran/reelist/internal/derive"
	"github.com/hntran/reelist/internal/domain/collection"
	"github.com/hntran/reelist/internal/domain/media"
	"github.com/hntran/reelist/internal/domain/review"
	"github.com/hntran/reelist/internal/domain/session"
	"github.com/hntran/reelist/pkg/logger"
)

type stubLocal struct {
	collections []*collection.Collection
	reviews     map[int]review.Review
}

func (s *stubLocal) LoadCollections() []*collection.Collection      { return s.collections }
func (s *stubLocal) SaveCollections([]*collection.Collection) error { return nil }
func (s *stubLocal) LoadReviews() map[int]review.Review             { return s.reviews }
func (s *stubLocal) SaveReviews(map[int]review.Review) error        { return nil }

// newUseCase hydrates guest-backed stores from the stub and returns the
// pipeline over them.
func newUseCase(t *testing.T, local *stubLocal) *DeriveViewUseCase {
	t.Helper()
	collections := collectionstore.New(nil, nil, local, nil, logger.NewNop())
	reviews := reviewstore.New(nil, local, nil, logger.NewNop())
	collections.OnIdentityChange(session.Guest())
	reviews.OnIdentityChange(context.Background(), session.Guest())
	return NewDeriveViewUseCase(collections, reviews)
}

func watchedMovies() []media.Item {
	older := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(24 * time.Hour)
	return []media.Item{
		{ID: 1, Kind: media.KindMovie, Title: "The Shawshank Redemption", ReleaseDate: "1994-09-23", VoteAverage: 9.3, RuntimeMinutes: 142, AddedAt: &older},
		{ID: 2, Kind: media.KindMovie, Title: "Inception", ReleaseDate: "2010-07-16", VoteAverage: 8.8, RuntimeMinutes: 148, AddedAt: &newer},
		{ID: 3, Kind: media.KindTV, Title: "Breaking Bad", ReleaseDate: "2008-01-20", VoteAverage: 8.9, EpisodeRuntimeMinutes: []int{47}, NumberOfEpisodes: 62},
	}
}

func seededUseCase(t *testing.T) *DeriveViewUseCase {
	t.Helper()
	seed := collection.NewDefault()
	seed.Items = watchedMovies()
	return newUseCase(t, &stubLocal{
		collections: []*collection.Collection{seed},
		reviews: map[int]review.Review{
			1: {ItemID: 1, Rating: 10, Comment: "perfect"},
		},
	})
}

func TestExecuteNoActiveCollection(t *testing.T) {
	uc := NewDeriveViewUseCase(
		collectionstore.New(nil, nil, &stubLocal{}, nil, logger.NewNop()),
		reviewstore.New(nil, &stubLocal{}, nil, logger.NewNop()),
	)

	_, err := uc.Execute(DeriveViewInput{Kind: media.KindMovie})
	assert.Error(t, err)
}

func TestExecutePartitionsByKind(t *testing.T) {
	uc := seededUseCase(t)

	out, err := uc.Execute(DeriveViewInput{Kind: media.KindMovie, Sort: derive.SortAddedDesc, Group: derive.GroupNone})
	require.NoError(t, err)

	require.Len(t, out.Buckets, 1)
	assert.Equal(t, "Movies", out.Buckets[0].Label)
	require.Len(t, out.Buckets[0].Items, 2)
	assert.Equal(t, "Inception", out.Buckets[0].Items[0].Title)
	assert.Equal(t, 2, out.Stats.ItemCount)
}

func TestExecuteStatsIgnoreFilters(t *testing.T) {
	uc := seededUseCase(t)

	out, err := uc.Execute(DeriveViewInput{
		Kind:   media.KindMovie,
		Filter: derive.FilterOptions{Year: 2010},
		Sort:   derive.SortAddedDesc,
		Group:  derive.GroupNone,
	})
	require.NoError(t, err)

	// the grouped view shrinks, the stats still cover the whole partition
	require.Len(t, out.Buckets, 1)
	assert.Len(t, out.Buckets[0].Items, 1)
	assert.Equal(t, 2, out.Stats.ItemCount)
	assert.Equal(t, 1, out.Stats.UserRatingCount)
}

func TestExecuteGroupsSortedItems(t *testing.T) {
	uc := seededUseCase(t)

	out, err := uc.Execute(DeriveViewInput{
		Kind:  media.KindMovie,
		Sort:  derive.SortRatingDesc,
		Group: derive.GroupRating,
	})
	require.NoError(t, err)

	require.Len(t, out.Buckets, 2)
	assert.Equal(t, "Masterpiece (9+)", out.Buckets[0].Label)
	assert.Equal(t, "Great (8-9)", out.Buckets[1].Label)
}
