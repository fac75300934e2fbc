package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hntran/reelist/internal/domain/media"
	"github.com/hntran/reelist/pkg/apperror"
	"github.com/hntran/reelist/pkg/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, "test-key", "en-US", logger.NewNop(),
		WithRetryDelay(time.Millisecond))
}

func TestSearchNormalizesMovies(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/movie", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		assert.Equal(t, "matrix", r.URL.Query().Get("query"))
		assert.Equal(t, "false", r.URL.Query().Get("include_adult"))

		w.Write([]byte(`{
			"page": 1, "total_pages": 1, "total_results": 1,
			"results": [{"id": 603, "title": "The Matrix", "release_date": "1999-03-30", "vote_average": 8.2}]
		}`))
	})

	result, err := client.Search(context.Background(), "matrix", 1, media.KindMovie, 0)
	require.NoError(t, err)
	require.Len(t, result.Items, 1)

	item := result.Items[0]
	assert.Equal(t, 603, item.ID)
	assert.Equal(t, media.KindMovie, item.Kind)
	assert.Equal(t, "The Matrix", item.Title)
	assert.Equal(t, "1999-03-30", item.ReleaseDate)
}

func TestSearchNormalizesShows(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/tv", r.URL.Path)
		assert.Equal(t, "2008", r.URL.Query().Get("first_air_date_year"))

		w.Write([]byte(`{
			"page": 1, "total_pages": 1, "total_results": 1,
			"results": [{"id": 1396, "name": "Breaking Bad", "first_air_date": "2008-01-20", "vote_average": 8.9}]
		}`))
	})

	result, err := client.Search(context.Background(), "breaking", 1, media.KindTV, 2008)
	require.NoError(t, err)
	require.Len(t, result.Items, 1)

	item := result.Items[0]
	assert.Equal(t, media.KindTV, item.Kind)
	assert.Equal(t, "Breaking Bad", item.Title)
	assert.Equal(t, "2008-01-20", item.ReleaseDate)
}

func TestDiscoverAppliesVoteFloor(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/discover/movie", r.URL.Path)
		assert.Equal(t, "100", r.URL.Query().Get("vote_count.gte"))
		assert.Equal(t, "28", r.URL.Query().Get("with_genres"))
		w.Write([]byte(`{"page": 1, "results": []}`))
	})

	_, err := client.Discover(context.Background(), 1, DiscoverOptions{GenreID: 28}, media.KindMovie)
	require.NoError(t, err)
}

func TestDetailTrustsRequestedKind(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tv/1396", r.URL.Path)
		assert.Equal(t, "credits", r.URL.Query().Get("append_to_response"))

		// kind-specific detail payloads omit the multi-search discriminator
		w.Write([]byte(`{
			"id": 1396, "name": "Breaking Bad",
			"episode_run_time": [47], "number_of_episodes": 62,
			"credits": {"cast": [{"name": "Bryan Cranston", "order": 0}], "crew": []},
			"production_countries": [{"iso_3166_1": "US", "name": "United States of America"}]
		}`))
	})

	item, err := client.Detail(context.Background(), 1396, media.KindTV)
	require.NoError(t, err)
	assert.Equal(t, media.KindTV, item.Kind)
	assert.Equal(t, "Breaking Bad", item.Title)
	assert.True(t, item.HasFullDetail())
	assert.Equal(t, 47*62, item.TotalRuntime())
}

func TestGetRetriesOnRateLimit(t *testing.T) {
	var hits atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 4 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"page": 1, "results": []}`))
	})

	_, err := client.Search(context.Background(), "x", 1, media.KindMovie, 0)
	require.NoError(t, err)
	assert.Equal(t, int32(4), hits.Load())
}

func TestGetGivesUpAfterThreeRetries(t *testing.T) {
	var hits atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.Search(context.Background(), "x", 1, media.KindMovie, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrRateLimited)
	// the initial request plus three retries
	assert.Equal(t, int32(4), hits.Load())
}

func TestGetDoesNotRetryServerErrors(t *testing.T) {
	var hits atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.Search(context.Background(), "x", 1, media.KindMovie, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrUpstream)
	assert.Equal(t, int32(1), hits.Load())
}

func TestGenres(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/genre/movie/list", r.URL.Path)
		w.Write([]byte(`{"genres": [{"id": 18, "name": "Drama"}, {"id": 28, "name": "Action"}]}`))
	})

	genres, err := client.Genres(context.Background(), media.KindMovie)
	require.NoError(t, err)
	assert.Equal(t, []media.Genre{{ID: 18, Name: "Drama"}, {ID: 28, Name: "Action"}}, genres)
}
