// Package reviewstore keeps the current session's reviews in memory, backed
// by local storage for guest/admin sessions and cloud rows for signed-in
// users. Cloud writes are optimistic: in-memory state applies first and is
// never rolled back when the network write fails. That is a deliberate
// last-write-wins policy, not a bug.
package reviewstore

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hntran/reelist/adapters/event"
	"github.com/hntran/reelist/internal/domain/review"
	"github.com/hntran/reelist/internal/domain/session"
	"github.com/hntran/reelist/pkg/apperror"
	"github.com/hntran/reelist/pkg/logger"
)

// LocalStore is the slice of local persistent storage the store needs.
type LocalStore interface {
	LoadReviews() map[int]review.Review
	SaveReviews(map[int]review.Review) error
}

type Store struct {
	cloud  review.Repository
	local  LocalStore
	events *event.KafkaProducerClient
	logger logger.Logger

	mu       sync.Mutex
	identity session.Identity
	reviews  map[int]review.Review
	loaded   bool
	loadErr  error
}

func New(cloud review.Repository, local LocalStore, events *event.KafkaProducerClient, log logger.Logger) *Store {
	return &Store{
		cloud:   cloud,
		local:   local,
		events:  events,
		logger:  log,
		reviews: map[int]review.Review{},
	}
}

// Bind subscribes the store to identity transitions.
func (s *Store) Bind(provider *session.Provider) {
	provider.Subscribe(func(identity session.Identity) {
		s.OnIdentityChange(context.Background(), identity)
	})
}

// OnIdentityChange reloads the mapping for the new identity before any
// write is permitted. The cloud load is a single bulk fetch; later writes
// are independent upserts.
func (s *Store) OnIdentityChange(ctx context.Context, identity session.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = identity
	s.reviews = map[int]review.Review{}
	s.loaded = false
	s.loadErr = nil

	if identity.Local() {
		s.reviews = s.local.LoadReviews()
		if s.reviews == nil {
			s.reviews = map[int]review.Review{}
		}
		s.loaded = true
		return
	}

	rows, err := s.cloud.ListByUser(ctx, identity.UserID)
	if err != nil {
		s.loadErr = err
		s.logger.Error("review load failed", err, zap.String("user_id", identity.UserID.String()))
		return
	}
	for _, r := range rows {
		s.reviews[r.ItemID] = r
	}
	s.loaded = true
}

// All returns a copy of the mapping.
func (s *Store) All() map[int]review.Review {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int]review.Review, len(s.reviews))
	for id, r := range s.reviews {
		out[id] = r
	}
	return out
}

func (s *Store) Get(itemID int) (review.Review, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reviews[itemID]
	return r, ok
}

// Save upserts the review for (current user, item). The first save sets
// CreatedAt; later saves replace rating, comment and spoiler flag in place.
func (s *Store) Save(ctx context.Context, itemID int, rating int, comment string, hasSpoiler bool) (review.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return review.Review{}, apperror.NewInternal("reviews are not loaded", s.loadErr)
	}

	r := review.Review{
		UserID:     s.identity.UserID,
		ItemID:     itemID,
		Rating:     rating,
		Comment:    comment,
		HasSpoiler: hasSpoiler,
		CreatedAt:  time.Now().UTC(),
	}
	if existing, ok := s.reviews[itemID]; ok {
		r.CreatedAt = existing.CreatedAt
	}
	if err := r.Validate(); err != nil {
		return review.Review{}, apperror.NewInvalidInput("review rating", err)
	}

	s.reviews[itemID] = r
	s.persistUpsertLocked(r)
	s.publishReviewEvent(event.ReviewEventTypeUpserted, itemID)
	return r, nil
}

// Delete removes the review for (current user, item).
func (s *Store) Delete(ctx context.Context, itemID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return apperror.NewInternal("reviews are not loaded", s.loadErr)
	}
	if _, ok := s.reviews[itemID]; !ok {
		return apperror.NewNotFound("review", "")
	}
	delete(s.reviews, itemID)
	s.persistDeleteLocked(itemID)
	s.publishReviewEvent(event.ReviewEventTypeDeleted, itemID)
	return nil
}

// persistUpsertLocked mirrors the freshly-applied in-memory state. Local
// sessions rewrite the whole mapping; cloud sessions fire an upsert for the
// one pair and never roll back on failure.
func (s *Store) persistUpsertLocked(r review.Review) {
	if s.identity.Local() {
		if err := s.local.SaveReviews(s.reviews); err != nil {
			s.logger.Error("local reviews mirror failed", err)
		}
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.cloud.Upsert(ctx, r); err != nil {
			s.logger.Error("review upsert failed, keeping optimistic state", err,
				zap.Int("item_id", r.ItemID))
		}
	}()
}

func (s *Store) persistDeleteLocked(itemID int) {
	if s.identity.Local() {
		if err := s.local.SaveReviews(s.reviews); err != nil {
			s.logger.Error("local reviews mirror failed", err)
		}
		return
	}
	userID := s.identity.UserID
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.cloud.Delete(ctx, userID, itemID); err != nil {
			s.logger.Error("review delete failed, keeping optimistic state", err,
				zap.Int("item_id", itemID))
		}
	}()
}

func (s *Store) publishReviewEvent(eventType string, itemID int) {
	if s.events == nil || s.identity.Local() {
		return
	}
	payload := event.ReviewEventPayload{
		EventType:  eventType,
		UserID:     s.identity.UserID.String(),
		ItemID:     itemID,
		OccurredAt: time.Now().UTC(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.events.PublishReviewEvent(ctx, payload); err != nil {
			s.logger.Error("Failed to publish Kafka review event", err, zap.Int("item_id", itemID))
		}
	}()
}
