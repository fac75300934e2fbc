package media

import (
	"strconv"
	"time"
)

type Kind string

const (
	KindMovie Kind = "movie"
	KindTV    Kind = "tv"
)

// fallbackEpisodeRuntime is assumed for shows that report no runtime at all.
const fallbackEpisodeRuntime = 45

// DetectKind decides movie vs. show once, at ingestion time. A catalog
// payload that carries a TV-only field (name or first air date) is a show;
// everything else is treated as a movie.
func DetectKind(name, firstAirDate string) Kind {
	if name != "" || firstAirDate != "" {
		return KindTV
	}
	return KindMovie
}

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type CastMember struct {
	Name      string `json:"name"`
	Character string `json:"character,omitempty"`
	Order     int    `json:"order"`
}

type CrewMember struct {
	Name string `json:"name"`
	Job  string `json:"job"`
}

type Credits struct {
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

type Country struct {
	ISOCode string `json:"iso_3166_1"`
	Name    string `json:"name"`
}

type Creator struct {
	Name string `json:"name"`
}

// Item is a catalog title normalized into the shape the rest of the system
// consumes. Kind is an explicit tag decided by DetectKind when the item is
// ingested, never re-derived downstream.
type Item struct {
	ID                    int        `json:"id"`
	Kind                  Kind       `json:"kind"`
	Title                 string     `json:"title"`
	Overview              string     `json:"overview,omitempty"`
	PosterPath            string     `json:"posterPath,omitempty"`
	BackdropPath          string     `json:"backdropPath,omitempty"`
	VoteAverage           float64    `json:"voteAverage"`
	ReleaseDate           string     `json:"releaseDate,omitempty"`
	RuntimeMinutes        int        `json:"runtimeMinutes,omitempty"`
	EpisodeRuntimeMinutes []int      `json:"episodeRuntimeMinutes,omitempty"`
	NumberOfEpisodes      int        `json:"numberOfEpisodes,omitempty"`
	GenreIDs              []int      `json:"genreIds,omitempty"`
	Genres                []Genre    `json:"genres,omitempty"`
	Credits               *Credits   `json:"credits,omitempty"`
	ProductionCountries   []Country  `json:"productionCountries,omitempty"`
	CreatedBy             []Creator  `json:"createdBy,omitempty"`
	AddedAt               *time.Time `json:"addedAt,omitempty"`
}

// TotalRuntime returns the estimated total minutes for the item. Shows use
// the first reported episode runtime (falling back to the flat runtime, then
// to a 45 minute default) multiplied by the episode count; movies use their
// runtime directly.
func (i Item) TotalRuntime() int {
	if i.Kind == KindTV {
		perEpisode := fallbackEpisodeRuntime
		if len(i.EpisodeRuntimeMinutes) > 0 {
			perEpisode = i.EpisodeRuntimeMinutes[0]
		} else if i.RuntimeMinutes > 0 {
			perEpisode = i.RuntimeMinutes
		}
		episodes := i.NumberOfEpisodes
		if episodes == 0 {
			episodes = 1
		}
		return perEpisode * episodes
	}
	return i.RuntimeMinutes
}

// Year parses the leading YYYY of the release date. ok=false covers empty
// and malformed dates.
func (i Item) Year() (int, bool) {
	if len(i.ReleaseDate) < 4 {
		return 0, false
	}
	year, err := strconv.Atoi(i.ReleaseDate[:4])
	if err != nil || year == 0 {
		return 0, false
	}
	return year, true
}

// HasFullDetail reports whether the item already carries the enrichment the
// detail endpoint appends. Items saved before detail backfill existed miss
// both.
func (i Item) HasFullDetail() bool {
	return i.Credits != nil && len(i.ProductionCountries) > 0
}

// Clone returns a deep copy so store snapshots never alias caller state.
func (i Item) Clone() Item {
	out := i
	out.EpisodeRuntimeMinutes = append([]int(nil), i.EpisodeRuntimeMinutes...)
	out.GenreIDs = append([]int(nil), i.GenreIDs...)
	out.Genres = append([]Genre(nil), i.Genres...)
	out.ProductionCountries = append([]Country(nil), i.ProductionCountries...)
	out.CreatedBy = append([]Creator(nil), i.CreatedBy...)
	if i.Credits != nil {
		credits := Credits{
			Cast: append([]CastMember(nil), i.Credits.Cast...),
			Crew: append([]CrewMember(nil), i.Credits.Crew...),
		}
		out.Credits = &credits
	}
	if i.AddedAt != nil {
		addedAt := *i.AddedAt
		out.AddedAt = &addedAt
	}
	return out
}
