package collectionstore

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hntran/reelist/internal/domain/collection"
	"github.com/hntran/reelist/internal/domain/media"
	"github.com/hntran/reelist/internal/domain/session"
	"github.com/hntran/reelist/pkg/apperror"
)

// ToggleItem removes the item from the active collection if present
// (clearing it from both favorite arrays), otherwise enriches it with full
// detail and appends it. A failed detail fetch does not block the add: the
// item goes in as given, with only the AddedAt stamp.
func (s *Store) ToggleItem(ctx context.Context, item media.Item) (added bool, err error) {
	s.mu.Lock()
	if err := s.ensureReadyLocked(); err != nil {
		s.mu.Unlock()
		return false, err
	}
	active := s.findLocked(s.activeID)
	if active == nil {
		s.mu.Unlock()
		return false, apperror.NewNotFound("collection", s.activeID)
	}
	if active.RemoveItem(item.ID) {
		s.markDirty()
		s.mu.Unlock()
		return false, nil
	}
	generation := s.generation
	s.mu.Unlock()

	// detail fetch happens outside the lock; the generation check below
	// drops the result if the session switched meanwhile
	enriched := s.fetchDetail(ctx, item)
	now := time.Now().UTC()
	enriched.AddedAt = &now

	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation {
		return false, apperror.NewAppError(apperror.ErrInternal, "Session changed during add", "", ErrNotReady)
	}
	active = s.findLocked(s.activeID)
	if active == nil {
		return false, apperror.NewNotFound("collection", s.activeID)
	}
	if active.HasItem(item.ID) {
		// a concurrent toggle won the race
		return false, nil
	}
	active.Items = append(active.Items, enriched)
	s.markDirty()
	return true, nil
}

// fetchDetail pulls full credits and countries for the item, keeping the
// caller's payload when the catalog misbehaves.
func (s *Store) fetchDetail(ctx context.Context, item media.Item) media.Item {
	detail, err := s.catalog.Detail(ctx, item.ID, item.Kind)
	if err != nil {
		s.logger.Warn("detail fetch failed, adding item as given",
			zap.Int("item_id", item.ID), zap.Error(err))
		return item.Clone()
	}
	merged := detail.Clone()
	if merged.Title == "" {
		merged.Title = item.Title
	}
	return merged
}

// CreateCollection makes a fresh empty collection and activates it. Guests
// cannot create collections.
func (s *Store) CreateCollection(name string) (*collection.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureReadyLocked(); err != nil {
		return nil, err
	}
	if s.identity.Role == session.RoleGuest {
		return nil, apperror.NewAppError(apperror.ErrUnauthorized, "Sign in to create collections", "", ErrGuestWrite)
	}

	c := collection.New(name, s.identity.UserID)
	s.collections = append(s.collections, c)
	s.activeID = c.ID
	s.markDirty()
	return c.Clone(), nil
}

// DeleteCollection removes a collection, keeping the floor of one. When the
// active collection is deleted, selection moves to a remaining one.
func (s *Store) DeleteCollection(ctx context.Context, id string) error {
	s.mu.Lock()
	if err := s.ensureReadyLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	if len(s.collections) <= 1 {
		s.mu.Unlock()
		return apperror.NewAppError(apperror.ErrInvalidInput, "Cannot delete your only collection", id, collection.ErrLastCollection)
	}
	var removed *collection.Collection
	for i, c := range s.collections {
		if c.ID == id {
			removed = c
			s.collections = append(s.collections[:i], s.collections[i+1:]...)
			break
		}
	}
	if removed == nil {
		s.mu.Unlock()
		return apperror.NewNotFound("collection", id)
	}
	previousActive := s.activeID
	if s.activeID == id {
		s.activeID = s.collections[0].ID
	}
	identity := s.identity
	generation := s.generation
	s.markDirty()
	s.mu.Unlock()

	// the bulk auto-save upserts survivors but never deletes, so cloud rows
	// need an explicit delete
	if identity.Role == session.RoleUser {
		if err := s.cloud.Delete(ctx, id, identity.UserID); err != nil {
			s.logger.Error("cloud collection delete failed", err, zap.String("collection_id", id))
			// put the collection back so the local view matches the cloud
			// row that is still there, otherwise it resurrects on the next
			// hydration anyway
			s.mu.Lock()
			if s.generation == generation {
				s.collections = append(s.collections, removed)
				s.activeID = previousActive
			}
			s.mu.Unlock()
			return err
		}
	}
	return nil
}

// Settings carries the user-editable collection settings.
type Settings struct {
	Name        string
	Description string
	IsPublic    bool
}

// UpdateSettings applies the settings, minting a share token the first time
// a collection is ever published.
func (s *Store) UpdateSettings(id string, settings Settings) (*collection.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureReadyLocked(); err != nil {
		return nil, err
	}
	c := s.findLocked(id)
	if c == nil {
		return nil, apperror.NewNotFound("collection", id)
	}

	if settings.IsPublic && !c.IsPublic && c.ShareToken == "" {
		c.ShareToken = collection.NewShareToken()
	}
	c.Name = settings.Name
	c.Description = settings.Description
	c.IsPublic = settings.IsPublic
	s.markDirty()
	return c.Clone(), nil
}

// RegenerateToken unconditionally replaces the share token; anyone holding
// the old token loses access on their next fetch.
func (s *Store) RegenerateToken(id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureReadyLocked(); err != nil {
		return "", err
	}
	c := s.findLocked(id)
	if c == nil {
		return "", apperror.NewNotFound("collection", id)
	}
	c.ShareToken = collection.NewShareToken()
	s.markDirty()
	return c.ShareToken, nil
}

// UpdateFavoriteSlot assigns itemID (nil clears) to a showcase slot of the
// active collection.
func (s *Store) UpdateFavoriteSlot(slot int, itemID *int, kind media.Kind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureReadyLocked(); err != nil {
		return err
	}
	active := s.findLocked(s.activeID)
	if active == nil {
		return apperror.NewNotFound("collection", s.activeID)
	}
	if err := active.SetFavoriteSlot(kind, slot, itemID); err != nil {
		return apperror.NewInvalidInput("favorite slot", err)
	}
	s.markDirty()
	return nil
}

// RefreshStaleDetail backfills credits and production countries for items
// added before full detail was captured. Items whose kind was guessed wrong
// retry with the opposite kind; items that still fail are left untouched.
func (s *Store) RefreshStaleDetail(ctx context.Context) (refreshed int, err error) {
	s.mu.Lock()
	if err := s.ensureReadyLocked(); err != nil {
		s.mu.Unlock()
		return 0, err
	}
	active := s.findLocked(s.activeID)
	if active == nil {
		s.mu.Unlock()
		return 0, apperror.NewNotFound("collection", s.activeID)
	}
	generation := s.generation
	var stale []media.Item
	for _, item := range active.Items {
		if !item.HasFullDetail() {
			stale = append(stale, item.Clone())
		}
	}
	s.mu.Unlock()

	if len(stale) == 0 {
		return 0, nil
	}

	updates := make(map[int]media.Item, len(stale))
	for _, item := range stale {
		detail, err := s.catalog.Detail(ctx, item.ID, item.Kind)
		if err != nil {
			// the stored kind may be a stale wrong guess
			detail, err = s.catalog.Detail(ctx, item.ID, oppositeKind(item.Kind))
		}
		if err != nil {
			s.logger.Warn("stale detail refresh failed",
				zap.Int("item_id", item.ID), zap.Error(err))
			continue
		}
		merged := detail.Clone()
		merged.AddedAt = item.AddedAt
		updates[item.ID] = merged
	}
	if len(updates) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation {
		return 0, nil
	}
	active = s.findLocked(s.activeID)
	if active == nil {
		return 0, nil
	}
	for i, item := range active.Items {
		if merged, ok := updates[item.ID]; ok {
			active.Items[i] = merged
			refreshed++
		}
	}
	if refreshed > 0 {
		s.markDirty()
	}
	return refreshed, nil
}

func oppositeKind(kind media.Kind) media.Kind {
	if kind == media.KindTV {
		return media.KindMovie
	}
	return media.KindTV
}
