package collection

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/hntran/reelist/internal/domain/media"
)

// DefaultID is the id of the seed collection every account starts with.
const DefaultID = "default"

// FavoriteSlots is the number of ranked showcase positions per media kind.
const FavoriteSlots = 5

var (
	ErrLastCollection = errors.New("cannot delete the last remaining collection")
	ErrItemNotFound   = errors.New("item not in collection")
	ErrBadSlot        = errors.New("favorite slot index out of range")
)

// Collection is a named, user-owned set of media items plus its sharing
// settings and favorite showcase slots.
type Collection struct {
	ID                string                  `json:"id"`
	OwnerID           uuid.UUID               `json:"ownerId,omitempty"`
	Name              string                  `json:"name"`
	Description       string                  `json:"description,omitempty"`
	IsPublic          bool                    `json:"isPublic"`
	ShareToken        string                  `json:"shareToken,omitempty"`
	Items             []media.Item            `json:"items"`
	TopFavoriteMovies [FavoriteSlots]*int     `json:"topFavoriteMovies"`
	TopFavoriteShows  [FavoriteSlots]*int     `json:"topFavoriteShows"`
	CreatedAt         time.Time               `json:"createdAt"`
	UpdatedAt         time.Time               `json:"updatedAt"`
}

// NewDefault returns the seed collection a fresh account or guest starts
// with.
func NewDefault() *Collection {
	now := time.Now().UTC()
	return &Collection{
		ID:        DefaultID,
		Name:      "My List",
		Items:     []media.Item{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// New returns an empty collection owned by ownerID with a fresh id.
func New(name string, ownerID uuid.UUID) *Collection {
	now := time.Now().UTC()
	return &Collection{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Name:      name,
		Items:     []media.Item{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewShareToken mints a 16 lowercase-hex-character token from crypto/rand.
func NewShareToken() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	return hex.EncodeToString(buf)
}

func (c *Collection) HasItem(itemID int) bool {
	for _, item := range c.Items {
		if item.ID == itemID {
			return true
		}
	}
	return false
}

func (c *Collection) Item(itemID int) (media.Item, bool) {
	for _, item := range c.Items {
		if item.ID == itemID {
			return item, true
		}
	}
	return media.Item{}, false
}

// RemoveItem drops the item and clears it from both favorite arrays.
func (c *Collection) RemoveItem(itemID int) bool {
	for i, item := range c.Items {
		if item.ID == itemID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.ClearFavorite(itemID)
			return true
		}
	}
	return false
}

func (c *Collection) favorites(kind media.Kind) *[FavoriteSlots]*int {
	if kind == media.KindTV {
		return &c.TopFavoriteShows
	}
	return &c.TopFavoriteMovies
}

// SetFavoriteSlot assigns itemID (or nil to clear) to slot. An id may occupy
// at most one slot per array, so assigning it evicts its previous slot.
func (c *Collection) SetFavoriteSlot(kind media.Kind, slot int, itemID *int) error {
	if slot < 0 || slot >= FavoriteSlots {
		return ErrBadSlot
	}
	slots := c.favorites(kind)
	if itemID != nil {
		for i, existing := range slots {
			if i != slot && existing != nil && *existing == *itemID {
				slots[i] = nil
			}
		}
	}
	slots[slot] = itemID
	return nil
}

// ClearFavorite removes itemID from every slot of both favorite arrays.
func (c *Collection) ClearFavorite(itemID int) {
	for _, slots := range []*[FavoriteSlots]*int{&c.TopFavoriteMovies, &c.TopFavoriteShows} {
		for i, existing := range slots {
			if existing != nil && *existing == itemID {
				slots[i] = nil
			}
		}
	}
}

// Clone returns a deep copy sharing no mutable state with the receiver.
func (c *Collection) Clone() *Collection {
	out := *c
	out.Items = make([]media.Item, len(c.Items))
	for i, item := range c.Items {
		out.Items[i] = item.Clone()
	}
	for i, id := range c.TopFavoriteMovies {
		if id != nil {
			v := *id
			out.TopFavoriteMovies[i] = &v
		}
	}
	for i, id := range c.TopFavoriteShows {
		if id != nil {
			v := *id
			out.TopFavoriteShows[i] = &v
		}
	}
	return &out
}

// ArchivedList is a row in the legacy shared_lists archive: a frozen
// snapshot from before live sharing existed. Archive rows carry no owner, so
// resolving one performs no public/private check.
type ArchivedList struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Items     []media.Item `json:"items"`
	CreatedAt time.Time    `json:"createdAt"`
}

type Repository interface {
	// ListByOwner returns every collection owned by ownerID ordered by
	// creation time ascending.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Collection, error)
	// UpsertAll writes every collection in one batch, keyed by collection id.
	UpsertAll(ctx context.Context, ownerID uuid.UUID, collections []*Collection) error
	Delete(ctx context.Context, id string, ownerID uuid.UUID) error
	FindByShareToken(ctx context.Context, token string) (*Collection, error)
	FindArchived(ctx context.Context, id string) (*ArchivedList, error)
}
