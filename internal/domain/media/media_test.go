package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectKind(t *testing.T) {
	assert.Equal(t, KindMovie, DetectKind("", ""))
	assert.Equal(t, KindTV, DetectKind("Breaking Bad", ""))
	assert.Equal(t, KindTV, DetectKind("", "2008-01-20"))
	assert.Equal(t, KindTV, DetectKind("Breaking Bad", "2008-01-20"))
}

func TestTotalRuntimeMovie(t *testing.T) {
	assert.Equal(t, 142, Item{Kind: KindMovie, RuntimeMinutes: 142}.TotalRuntime())
	assert.Equal(t, 0, Item{Kind: KindMovie}.TotalRuntime())
}

func TestTotalRuntimeShow(t *testing.T) {
	// first episode runtime wins over the flat runtime
	show := Item{Kind: KindTV, EpisodeRuntimeMinutes: []int{47, 60}, RuntimeMinutes: 50, NumberOfEpisodes: 62}
	assert.Equal(t, 47*62, show.TotalRuntime())

	// flat runtime next
	show = Item{Kind: KindTV, RuntimeMinutes: 50, NumberOfEpisodes: 10}
	assert.Equal(t, 500, show.TotalRuntime())

	// default runtime, and a missing episode count means one episode
	show = Item{Kind: KindTV}
	assert.Equal(t, 45, show.TotalRuntime())
}

func TestYear(t *testing.T) {
	year, ok := Item{ReleaseDate: "1994-09-23"}.Year()
	assert.True(t, ok)
	assert.Equal(t, 1994, year)

	_, ok = Item{}.Year()
	assert.False(t, ok)

	_, ok = Item{ReleaseDate: "soon"}.Year()
	assert.False(t, ok)
}

func TestHasFullDetail(t *testing.T) {
	assert.False(t, Item{}.HasFullDetail())
	assert.False(t, Item{Credits: &Credits{}}.HasFullDetail())
	assert.False(t, Item{ProductionCountries: []Country{{ISOCode: "US"}}}.HasFullDetail())
	assert.True(t, Item{
		Credits:             &Credits{},
		ProductionCountries: []Country{{ISOCode: "US"}},
	}.HasFullDetail())
}

func TestCloneIsDeep(t *testing.T) {
	item := Item{
		ID:       1,
		GenreIDs: []int{18},
		Credits:  &Credits{Cast: []CastMember{{Name: "Tim Robbins"}}},
	}

	clone := item.Clone()
	clone.GenreIDs[0] = 99
	clone.Credits.Cast[0].Name = "someone else"

	assert.Equal(t, 18, item.GenreIDs[0])
	assert.Equal(t, "Tim Robbins", item.Credits.Cast[0].Name)
}
