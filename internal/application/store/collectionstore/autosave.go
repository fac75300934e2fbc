package collectionstore

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hntran/reelist/adapters/event"
	"github.com/hntran/reelist/internal/domain/collection"
	"github.com/hntran/reelist/internal/domain/session"
)

// markDirty persists a mutation. Callers hold the lock and have already
// passed the ready gate. Guest and admin sessions mirror synchronously to
// local storage; cloud sessions restart the debounce timer so a burst of
// edits collapses into one write carrying the final state.
func (s *Store) markDirty() {
	if s.identity.Local() {
		if err := s.local.SaveCollections(s.collections); err != nil {
			s.logger.Error("local collections mirror failed", err)
		}
		return
	}

	if s.saveTimer != nil {
		s.saveTimer.Stop()
	}
	generation := s.generation
	s.saveTimer = time.AfterFunc(s.debounce, func() {
		s.flush(generation)
	})
}

// Flush forces a pending debounced save to run now. Used on shutdown.
func (s *Store) Flush() {
	s.mu.Lock()
	if s.saveTimer == nil || !s.saveTimer.Stop() {
		s.mu.Unlock()
		return
	}
	s.saveTimer = nil
	generation := s.generation
	s.mu.Unlock()

	s.flush(generation)
}

func (s *Store) flush(generation uint64) {
	s.mu.Lock()
	if generation != s.generation || s.status != StatusReady || s.identity.Role != session.RoleUser {
		s.mu.Unlock()
		return
	}
	ownerID := s.identity.UserID
	activeID := s.activeID
	snapshot := make([]*collection.Collection, len(s.collections))
	itemCount := 0
	for i, c := range s.collections {
		snapshot[i] = c.Clone()
		itemCount += len(c.Items)
	}
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.cloud.UpsertAll(ctx, ownerID, snapshot); err != nil {
		s.logger.Error("collection auto-save failed", err, zap.String("user_id", ownerID.String()))
		return
	}
	s.logger.Debug("collections auto-saved",
		zap.String("user_id", ownerID.String()), zap.Int("collections", len(snapshot)))

	s.publishListEvent(event.ListEventPayload{
		EventType:    event.ListEventTypeSaved,
		OwnerID:      ownerID.String(),
		CollectionID: activeID,
		ItemCount:    itemCount,
		OccurredAt:   time.Now().UTC(),
	})
}

func (s *Store) publishListEvent(payload event.ListEventPayload) {
	if s.events == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.events.PublishListEvent(ctx, payload); err != nil {
			s.logger.Error("Failed to publish Kafka list event", err,
				zap.String("collection_id", payload.CollectionID))
		}
	}()
}
