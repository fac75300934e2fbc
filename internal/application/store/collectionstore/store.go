// Package collectionstore owns the list of named collections for the active
// session: guest/cloud hydration, the debounced auto-save that must never
// run before hydration completes, and every collection mutation.
package collectionstore

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hntran/reelist/adapters/catalog"
	"github.com/hntran/reelist/adapters/event"
	"github.com/hntran/reelist/internal/domain/collection"
	"github.com/hntran/reelist/internal/domain/session"
	"github.com/hntran/reelist/pkg/apperror"
	"github.com/hntran/reelist/pkg/logger"
)

// Status is the hydration state machine. Auto-save is reachable only from
// StatusReady; a failed cloud hydration parks the store in StatusFailed so
// the in-memory default state can never overwrite real cloud rows.
type Status int

const (
	StatusUninitialized Status = iota
	StatusHydrating
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusHydrating:
		return "hydrating"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "uninitialized"
	}
}

const defaultAutosaveDebounce = 2 * time.Second

var (
	ErrNotReady   = errors.New("collection store is not hydrated")
	ErrGuestWrite = errors.New("authentication required")
)

// LocalStore is the slice of local persistent storage the store needs.
type LocalStore interface {
	LoadCollections() []*collection.Collection
	SaveCollections([]*collection.Collection) error
}

type Store struct {
	catalog catalog.Client
	cloud   collection.Repository
	local   LocalStore
	events  *event.KafkaProducerClient
	logger  logger.Logger

	debounce time.Duration

	mu          sync.Mutex
	identity    session.Identity
	generation  uint64
	status      Status
	hydrateErr  error
	collections []*collection.Collection
	activeID    string
	saveTimer   *time.Timer
}

type Option func(*Store)

// WithDebounce overrides the auto-save debounce window (tests).
func WithDebounce(d time.Duration) Option {
	return func(s *Store) { s.debounce = d }
}

func New(catalogClient catalog.Client, cloud collection.Repository, local LocalStore, events *event.KafkaProducerClient, log logger.Logger, opts ...Option) *Store {
	s := &Store{
		catalog:  catalogClient,
		cloud:    cloud,
		local:    local,
		events:   events,
		logger:   log,
		debounce: defaultAutosaveDebounce,
		identity: session.Guest(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Bind subscribes the store to identity transitions.
func (s *Store) Bind(provider *session.Provider) {
	provider.Subscribe(func(identity session.Identity) {
		s.OnIdentityChange(identity)
	})
}

// OnIdentityChange resets the store for a new session identity and starts
// hydration. Any pending auto-save and any in-flight hydration from the
// previous identity become stale: their generation no longer matches so
// their results are discarded on arrival.
func (s *Store) OnIdentityChange(identity session.Identity) {
	s.mu.Lock()
	if s.saveTimer != nil {
		s.saveTimer.Stop()
		s.saveTimer = nil
	}
	s.identity = identity
	s.generation++
	s.status = StatusUninitialized
	s.hydrateErr = nil
	s.collections = nil
	generation := s.generation
	s.mu.Unlock()

	s.startHydration(identity, generation)
}

// Retry re-attempts a failed cloud hydration for the current identity.
func (s *Store) Retry() {
	s.mu.Lock()
	if s.status != StatusFailed {
		s.mu.Unlock()
		return
	}
	identity := s.identity
	generation := s.generation
	s.mu.Unlock()

	s.startHydration(identity, generation)
}

func (s *Store) startHydration(identity session.Identity, generation uint64) {
	s.mu.Lock()
	if generation != s.generation {
		s.mu.Unlock()
		return
	}
	s.status = StatusHydrating
	s.mu.Unlock()

	if identity.Local() {
		s.hydrateLocal(generation)
		return
	}
	go s.hydrateCloud(identity, generation)
}

// hydrateLocal cannot fail in a way that risks data loss, so it marks the
// store ready unconditionally.
func (s *Store) hydrateLocal(generation uint64) {
	collections := s.local.LoadCollections()
	if len(collections) == 0 {
		collections = []*collection.Collection{collection.NewDefault()}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation {
		return
	}
	s.finishHydration(collections)
}

func (s *Store) hydrateCloud(identity session.Identity, generation uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	collections, err := s.cloud.ListByOwner(ctx, identity.UserID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation {
		// a later identity switch superseded this fetch
		return
	}
	if err != nil {
		s.status = StatusFailed
		s.hydrateErr = err
		s.logger.Error("cloud hydration failed, auto-save stays disabled", err,
			zap.String("user_id", identity.UserID.String()))
		return
	}
	if len(collections) == 0 {
		seed := collection.NewDefault()
		seed.OwnerID = identity.UserID
		collections = []*collection.Collection{seed}
	}
	s.finishHydration(collections)
}

// finishHydration runs with the lock held and a verified generation.
func (s *Store) finishHydration(collections []*collection.Collection) {
	s.collections = collections
	if s.findLocked(s.activeID) == nil {
		s.activeID = collections[0].ID
	}
	s.status = StatusReady
	s.hydrateErr = nil
}

func (s *Store) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Store) HydrationErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hydrateErr
}

// Collections returns a deep-copied snapshot.
func (s *Store) Collections() []*collection.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*collection.Collection, len(s.collections))
	for i, c := range s.collections {
		out[i] = c.Clone()
	}
	return out
}

// Active returns a deep copy of the active collection, or nil before
// hydration completes.
func (s *Store) Active() *collection.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c := s.findLocked(s.activeID); c != nil {
		return c.Clone()
	}
	return nil
}

func (s *Store) SetActive(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureReadyLocked(); err != nil {
		return err
	}
	if s.findLocked(id) == nil {
		return apperror.NewNotFound("collection", id)
	}
	s.activeID = id
	return nil
}

func (s *Store) findLocked(id string) *collection.Collection {
	for _, c := range s.collections {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (s *Store) ensureReadyLocked() error {
	if s.status != StatusReady {
		return apperror.NewAppError(apperror.ErrInternal, "Collections are still loading", s.status.String(), ErrNotReady)
	}
	return nil
}
