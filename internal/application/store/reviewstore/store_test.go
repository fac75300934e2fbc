package reviewstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hntran/reelist/internal/domain/review"
	"github.com/hntran/reelist/internal/domain/session"
	"github.com/hntran/reelist/pkg/logger"
)

type fakeReviewRepo struct {
	mu      sync.Mutex
	rows    []review.Review
	listErr error
	upserts []review.Review
	deletes []int
}

func (f *fakeReviewRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]review.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]review.Review(nil), f.rows...), nil
}

func (f *fakeReviewRepo) Upsert(ctx context.Context, r review.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts = append(f.upserts, r)
	return nil
}

func (f *fakeReviewRepo) Delete(ctx context.Context, userID uuid.UUID, itemID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, itemID)
	return nil
}

func (f *fakeReviewRepo) upsertCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.upserts)
}

func (f *fakeReviewRepo) deleteCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.deletes)
}

type fakeReviewLocal struct {
	mu        sync.Mutex
	rows      map[int]review.Review
	saveCount int
}

func (f *fakeReviewLocal) LoadReviews() map[int]review.Review {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows
}

func (f *fakeReviewLocal) SaveReviews(reviews map[int]review.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = reviews
	f.saveCount++
	return nil
}

func newTestStore(t *testing.T) (*Store, *fakeReviewRepo, *fakeReviewLocal) {
	t.Helper()
	repo := &fakeReviewRepo{}
	local := &fakeReviewLocal{}
	return New(repo, local, nil, logger.NewNop()), repo, local
}

func TestWritesRejectedBeforeLoad(t *testing.T) {
	store, _, _ := newTestStore(t)

	_, err := store.Save(context.Background(), 603, 9, "", false)
	assert.Error(t, err)
	assert.Error(t, store.Delete(context.Background(), 603))
}

func TestGuestLoadAndSave(t *testing.T) {
	store, _, local := newTestStore(t)
	store.OnIdentityChange(context.Background(), session.Guest())

	saved, err := store.Save(context.Background(), 603, 9, "great", false)
	require.NoError(t, err)
	assert.Equal(t, 9, saved.Rating)
	assert.Equal(t, 1, local.saveCount)

	got, ok := store.Get(603)
	require.True(t, ok)
	assert.Equal(t, "great", got.Comment)
}

func TestCloudLoadBulkFetch(t *testing.T) {
	store, repo, _ := newTestStore(t)
	userID := uuid.New()
	repo.rows = []review.Review{
		{UserID: userID, ItemID: 603, Rating: 9},
		{UserID: userID, ItemID: 604, Rating: 7},
	}

	store.OnIdentityChange(context.Background(), session.User(userID))

	assert.Len(t, store.All(), 2)
	got, ok := store.Get(604)
	require.True(t, ok)
	assert.Equal(t, 7, got.Rating)
}

func TestCloudLoadFailureBlocksWrites(t *testing.T) {
	store, repo, _ := newTestStore(t)
	repo.listErr = errors.New("connection refused")

	store.OnIdentityChange(context.Background(), session.User(uuid.New()))

	_, err := store.Save(context.Background(), 603, 9, "", false)
	assert.Error(t, err)
}

func TestSaveUpsertsInPlace(t *testing.T) {
	store, repo, _ := newTestStore(t)
	userID := uuid.New()
	store.OnIdentityChange(context.Background(), session.User(userID))

	first, err := store.Save(context.Background(), 603, 6, "fine", false)
	require.NoError(t, err)

	second, err := store.Save(context.Background(), 603, 9, "rewatch changed my mind", true)
	require.NoError(t, err)

	// one review per pair, original creation stamp kept
	assert.Len(t, store.All(), 1)
	assert.Equal(t, 9, second.Rating)
	assert.True(t, second.HasSpoiler)
	assert.True(t, second.CreatedAt.Equal(first.CreatedAt))
	assert.Equal(t, userID, second.UserID)

	require.Eventually(t, func() bool {
		return repo.upsertCount() == 2
	}, time.Second, 2*time.Millisecond)
}

func TestSaveValidatesRating(t *testing.T) {
	store, _, _ := newTestStore(t)
	store.OnIdentityChange(context.Background(), session.Guest())

	_, err := store.Save(context.Background(), 603, 0, "", false)
	assert.ErrorIs(t, err, review.ErrInvalidRating)

	_, err = store.Save(context.Background(), 603, 11, "", false)
	assert.ErrorIs(t, err, review.ErrInvalidRating)
}

func TestDeleteRemovesAndPersists(t *testing.T) {
	store, repo, _ := newTestStore(t)
	store.OnIdentityChange(context.Background(), session.User(uuid.New()))

	_, err := store.Save(context.Background(), 603, 9, "", false)
	require.NoError(t, err)

	require.NoError(t, store.Delete(context.Background(), 603))
	_, ok := store.Get(603)
	assert.False(t, ok)

	require.Eventually(t, func() bool {
		return repo.deleteCount() == 1
	}, time.Second, 2*time.Millisecond)
}

func TestDeleteAbsentReview(t *testing.T) {
	store, _, _ := newTestStore(t)
	store.OnIdentityChange(context.Background(), session.Guest())

	assert.Error(t, store.Delete(context.Background(), 42))
}

func TestIdentitySwitchSwapsState(t *testing.T) {
	store, _, local := newTestStore(t)
	local.rows = map[int]review.Review{603: {ItemID: 603, Rating: 8}}

	store.OnIdentityChange(context.Background(), session.Guest())
	require.Len(t, store.All(), 1)

	store.OnIdentityChange(context.Background(), session.User(uuid.New()))
	assert.Empty(t, store.All())
}

func TestAllReturnsCopy(t *testing.T) {
	store, _, _ := newTestStore(t)
	store.OnIdentityChange(context.Background(), session.Guest())

	_, err := store.Save(context.Background(), 603, 9, "", false)
	require.NoError(t, err)

	all := store.All()
	delete(all, 603)
	_, ok := store.Get(603)
	assert.True(t, ok)
}
