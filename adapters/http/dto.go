package http

import (
	"github.com/hntran/reelist/internal/derive"
	"github.com/hntran/reelist/internal/domain/media"
)

// Collection DTOs

type CreateCollectionRequest struct {
	Name string `json:"name" binding:"required"`
}

type UpdateSettingsRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	IsPublic    bool   `json:"isPublic"`
}

type FavoriteSlotRequest struct {
	Slot   int        `json:"slot"`
	ItemID *int       `json:"itemId"`
	Kind   media.Kind `json:"kind" binding:"required"`
}

type ToggleItemRequest struct {
	Item media.Item `json:"item" binding:"required"`
}

// Review DTOs

type SaveReviewRequest struct {
	Rating     int    `json:"rating" binding:"required"`
	Comment    string `json:"comment"`
	HasSpoiler bool   `json:"hasSpoiler"`
}

// View DTOs

type ViewQuery struct {
	Kind      string  `form:"kind"`
	GenreID   int     `form:"genre"`
	Year      int     `form:"year"`
	MinRating float64 `form:"minRating"`
	Reviewed  bool    `form:"reviewed"`
	Commented bool    `form:"commented"`
	Sort      string  `form:"sort"`
	Group     string  `form:"group"`
}

func (q ViewQuery) MediaKind() media.Kind {
	if q.Kind == string(media.KindTV) {
		return media.KindTV
	}
	return media.KindMovie
}

func (q ViewQuery) FilterOptions() derive.FilterOptions {
	return derive.FilterOptions{
		GenreID:   q.GenreID,
		Year:      q.Year,
		MinRating: q.MinRating,
		Reviewed:  q.Reviewed,
		Commented: q.Commented,
	}
}

func (q ViewQuery) SortKey() derive.SortKey {
	if q.Sort == "" {
		return derive.SortAddedDesc
	}
	return derive.SortKey(q.Sort)
}

func (q ViewQuery) GroupDimension() derive.GroupDimension {
	if q.Group == "" {
		return derive.GroupNone
	}
	return derive.GroupDimension(q.Group)
}
