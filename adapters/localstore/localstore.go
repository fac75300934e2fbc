// Package localstore persists guest and admin session state as JSON files
// under the configured data directory. Reads never fail hard: a missing or
// malformed file yields the zero value so local hydration cannot strand a
// session, and every write replaces the whole stored value.
package localstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/hntran/reelist/internal/domain/collection"
	"github.com/hntran/reelist/internal/domain/review"
	"github.com/hntran/reelist/pkg/logger"
)

const (
	collectionsFile = "collections.json"
	reviewsFile     = "reviews.json"
	adminFile       = "admin.json"
	themeFile       = "theme.json"
)

type Store struct {
	dir    string
	mu     sync.Mutex
	logger logger.Logger
}

func New(dir string, log logger.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create local data dir: %w", err)
	}
	return &Store{dir: dir, logger: log}, nil
}

// LoadCollections returns the stored collections array, or nil when absent
// or unreadable.
func (s *Store) LoadCollections() []*collection.Collection {
	var collections []*collection.Collection
	s.load(collectionsFile, &collections)
	return collections
}

func (s *Store) SaveCollections(collections []*collection.Collection) error {
	return s.save(collectionsFile, collections)
}

func (s *Store) LoadReviews() map[int]review.Review {
	reviews := map[int]review.Review{}
	s.load(reviewsFile, &reviews)
	return reviews
}

// SaveReviews overwrites the entire stored mapping, including when it is
// empty, so deletions are observable in storage.
func (s *Store) SaveReviews(reviews map[int]review.Review) error {
	return s.save(reviewsFile, reviews)
}

func (s *Store) AdminMarker() bool {
	var marker struct {
		Admin bool `json:"admin"`
	}
	s.load(adminFile, &marker)
	return marker.Admin
}

func (s *Store) SetAdminMarker(admin bool) error {
	return s.save(adminFile, struct {
		Admin bool `json:"admin"`
	}{Admin: admin})
}

func (s *Store) Theme() string {
	var theme struct {
		Theme string `json:"theme"`
	}
	s.load(themeFile, &theme)
	return theme.Theme
}

func (s *Store) SaveTheme(theme string) error {
	return s.save(themeFile, struct {
		Theme string `json:"theme"`
	}{Theme: theme})
}

func (s *Store) load(name string, out any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("local store read failed", zap.String("file", name), zap.Error(err))
		}
		return
	}
	if err := json.Unmarshal(raw, out); err != nil {
		s.logger.Warn("local store file malformed, ignoring", zap.String("file", name), zap.Error(err))
	}
}

func (s *Store) save(name string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return os.Rename(tmp, path)
}
