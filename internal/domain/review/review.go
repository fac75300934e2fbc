package review

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidRating = errors.New("rating must be between 1 and 10")

// Review is one user's rating and comment for one catalog item. Exactly one
// exists per (user, item) pair; saving again replaces it.
type Review struct {
	UserID     uuid.UUID `json:"userId,omitempty"`
	ItemID     int       `json:"itemId"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment,omitempty"`
	HasSpoiler bool      `json:"hasSpoiler"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (r *Review) Validate() error {
	if r.Rating < 1 || r.Rating > 10 {
		return ErrInvalidRating
	}
	return nil
}

type Repository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Review, error)
	// Upsert creates the (user, item) review or replaces it in place.
	Upsert(ctx context.Context, r Review) error
	Delete(ctx context.Context, userID uuid.UUID, itemID int) error
}
