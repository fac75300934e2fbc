package catalog

import (
	"github.com/hntran/reelist/internal/domain/media"
)

// PagedResult is one page of search/discover results.
type PagedResult struct {
	Page         int          `json:"page"`
	TotalPages   int          `json:"totalPages"`
	TotalResults int          `json:"totalResults"`
	Items        []media.Item `json:"items"`
}

// DiscoverOptions mirror the catalog's discover query surface.
type DiscoverOptions struct {
	SortBy  string
	GenreID int
	Year    int
}

// itemPayload is the raw catalog shape for both movies and shows. Movie
// titles arrive as "title"/"release_date", show titles as
// "name"/"first_air_date"; the presence of the latter pair is what tags an
// item as TV.
type itemPayload struct {
	ID                  int             `json:"id"`
	Title               string          `json:"title"`
	Name                string          `json:"name"`
	Overview            string          `json:"overview"`
	PosterPath          string          `json:"poster_path"`
	BackdropPath        string          `json:"backdrop_path"`
	VoteAverage         float64         `json:"vote_average"`
	ReleaseDate         string          `json:"release_date"`
	FirstAirDate        string          `json:"first_air_date"`
	Runtime             int             `json:"runtime"`
	EpisodeRunTime      []int           `json:"episode_run_time"`
	NumberOfEpisodes    int             `json:"number_of_episodes"`
	GenreIDs            []int           `json:"genre_ids"`
	Genres              []media.Genre   `json:"genres"`
	Credits             *creditsPayload `json:"credits"`
	ProductionCountries []media.Country `json:"production_countries"`
	CreatedBy           []media.Creator `json:"created_by"`
}

type creditsPayload struct {
	Cast []media.CastMember `json:"cast"`
	Crew []media.CrewMember `json:"crew"`
}

type pagePayload struct {
	Page         int           `json:"page"`
	TotalPages   int           `json:"total_pages"`
	TotalResults int           `json:"total_results"`
	Results      []itemPayload `json:"results"`
}

type genreListPayload struct {
	Genres []media.Genre `json:"genres"`
}

func (p itemPayload) normalize() media.Item {
	item := media.Item{
		ID:                    p.ID,
		Kind:                  media.DetectKind(p.Name, p.FirstAirDate),
		Title:                 p.Title,
		Overview:              p.Overview,
		PosterPath:            p.PosterPath,
		BackdropPath:          p.BackdropPath,
		VoteAverage:           p.VoteAverage,
		ReleaseDate:           p.ReleaseDate,
		RuntimeMinutes:        p.Runtime,
		EpisodeRuntimeMinutes: p.EpisodeRunTime,
		NumberOfEpisodes:      p.NumberOfEpisodes,
		GenreIDs:              p.GenreIDs,
		Genres:                p.Genres,
		ProductionCountries:   p.ProductionCountries,
		CreatedBy:             p.CreatedBy,
	}
	if item.Kind == media.KindTV {
		item.Title = p.Name
		item.ReleaseDate = p.FirstAirDate
	}
	if p.Credits != nil {
		item.Credits = &media.Credits{Cast: p.Credits.Cast, Crew: p.Credits.Crew}
	}
	return item
}
