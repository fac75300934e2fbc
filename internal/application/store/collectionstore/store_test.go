package collectionstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hntran/reelist/adapters/catalog"
	"github.com/hntran/reelist/internal/domain/collection"
	"github.com/hntran/reelist/internal/domain/media"
	"github.com/hntran/reelist/internal/domain/session"
	"github.com/hntran/reelist/pkg/logger"
)

type fakeCatalog struct {
	mu          sync.Mutex
	detailCalls []int
	detailErr   error
	// detailKindErr rejects lookups for this kind, simulating an id saved
	// under the wrong kind
	detailKindErr media.Kind
}

func (f *fakeCatalog) Search(ctx context.Context, query string, page int, kind media.Kind, year int) (*catalog.PagedResult, error) {
	return &catalog.PagedResult{}, nil
}

func (f *fakeCatalog) Discover(ctx context.Context, page int, opts catalog.DiscoverOptions, kind media.Kind) (*catalog.PagedResult, error) {
	return &catalog.PagedResult{}, nil
}

func (f *fakeCatalog) Genres(ctx context.Context, kind media.Kind) ([]media.Genre, error) {
	return nil, nil
}

func (f *fakeCatalog) Detail(ctx context.Context, id int, kind media.Kind) (*media.Item, error) {
	f.mu.Lock()
	f.detailCalls = append(f.detailCalls, id)
	err := f.detailErr
	if err == nil && kind == f.detailKindErr {
		err = errors.New("not found under this kind")
	}
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return &media.Item{
		ID:                  id,
		Kind:                kind,
		Title:               "Detailed Title",
		VoteAverage:         8.5,
		Credits:             &media.Credits{Cast: []media.CastMember{{Name: "Lead Actor"}}},
		ProductionCountries: []media.Country{{ISOCode: "US", Name: "United States of America"}},
	}, nil
}

func (f *fakeCatalog) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.detailCalls)
}

type fakeCloudRepo struct {
	mu          sync.Mutex
	rows        []*collection.Collection
	listErr     error
	upserts     [][]*collection.Collection
	deletedIDs  []string
	deleteErr   error
	upsertOwner uuid.UUID
}

func (f *fakeCloudRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*collection.Collection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]*collection.Collection, len(f.rows))
	for i, c := range f.rows {
		out[i] = c.Clone()
	}
	return out, nil
}

func (f *fakeCloudRepo) UpsertAll(ctx context.Context, ownerID uuid.UUID, collections []*collection.Collection) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upsertOwner = ownerID
	f.upserts = append(f.upserts, collections)
	return nil
}

func (f *fakeCloudRepo) Delete(ctx context.Context, id string, ownerID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedIDs = append(f.deletedIDs, id)
	return nil
}

func (f *fakeCloudRepo) FindByShareToken(ctx context.Context, token string) (*collection.Collection, error) {
	return nil, collection.ErrItemNotFound
}

func (f *fakeCloudRepo) FindArchived(ctx context.Context, id string) (*collection.ArchivedList, error) {
	return nil, collection.ErrItemNotFound
}

func (f *fakeCloudRepo) upsertCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.upserts)
}

func (f *fakeCloudRepo) lastUpsert() []*collection.Collection {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.upserts) == 0 {
		return nil
	}
	return f.upserts[len(f.upserts)-1]
}

type fakeLocal struct {
	mu        sync.Mutex
	rows      []*collection.Collection
	saveCount int
}

func (f *fakeLocal) LoadCollections() []*collection.Collection {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows
}

func (f *fakeLocal) SaveCollections(collections []*collection.Collection) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = collections
	f.saveCount++
	return nil
}

func (f *fakeLocal) saves() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saveCount
}

func newTestStore(t *testing.T, opts ...Option) (*Store, *fakeCatalog, *fakeCloudRepo, *fakeLocal) {
	t.Helper()
	cat := &fakeCatalog{}
	cloud := &fakeCloudRepo{}
	local := &fakeLocal{}
	store := New(cat, cloud, local, nil, logger.NewNop(), opts...)
	return store, cat, cloud, local
}

func waitReady(t *testing.T, s *Store) {
	t.Helper()
	require.Eventually(t, func() bool {
		return s.Status() == StatusReady
	}, time.Second, 2*time.Millisecond)
}

func TestStoreStartsUninitialized(t *testing.T) {
	store, _, _, _ := newTestStore(t)

	assert.Equal(t, StatusUninitialized, store.Status())
	assert.Nil(t, store.Active())

	_, err := store.ToggleItem(context.Background(), media.Item{ID: 1})
	assert.Error(t, err)
}

func TestGuestHydrationSeedsDefault(t *testing.T) {
	store, _, _, _ := newTestStore(t)

	store.OnIdentityChange(session.Guest())

	assert.Equal(t, StatusReady, store.Status())
	active := store.Active()
	require.NotNil(t, active)
	assert.Equal(t, collection.DefaultID, active.ID)
	assert.Equal(t, "My List", active.Name)
}

func TestGuestHydrationLoadsExisting(t *testing.T) {
	store, _, _, local := newTestStore(t)
	saved := collection.NewDefault()
	saved.Items = []media.Item{{ID: 603, Kind: media.KindMovie}}
	local.rows = []*collection.Collection{saved}

	store.OnIdentityChange(session.Guest())

	active := store.Active()
	require.NotNil(t, active)
	assert.True(t, active.HasItem(603))
}

func TestCloudHydrationSeedsOwnedDefault(t *testing.T) {
	store, _, cloud, _ := newTestStore(t)
	userID := uuid.New()

	store.OnIdentityChange(session.User(userID))
	waitReady(t, store)

	active := store.Active()
	require.NotNil(t, active)
	assert.Equal(t, collection.DefaultID, active.ID)
	assert.Equal(t, userID, active.OwnerID)
	// seeding is in-memory only until the first mutation
	assert.Zero(t, cloud.upsertCount())
}

func TestCloudHydrationFailureParksStore(t *testing.T) {
	store, _, cloud, _ := newTestStore(t)
	cloud.listErr = errors.New("connection refused")

	store.OnIdentityChange(session.User(uuid.New()))
	require.Eventually(t, func() bool {
		return store.Status() == StatusFailed
	}, time.Second, 2*time.Millisecond)

	assert.Error(t, store.HydrationErr())
	_, err := store.ToggleItem(context.Background(), media.Item{ID: 1})
	assert.Error(t, err)

	// retry succeeds once the backend recovers
	cloud.mu.Lock()
	cloud.listErr = nil
	cloud.mu.Unlock()
	store.Retry()
	waitReady(t, store)
	assert.NoError(t, store.HydrationErr())
}

func TestRetryOnlyFromFailed(t *testing.T) {
	store, _, _, _ := newTestStore(t)
	store.OnIdentityChange(session.Guest())

	store.Retry()
	assert.Equal(t, StatusReady, store.Status())
}

func TestToggleItemAddAndRemove(t *testing.T) {
	store, cat, _, _ := newTestStore(t)
	store.OnIdentityChange(session.Guest())

	added, err := store.ToggleItem(context.Background(), media.Item{ID: 603, Kind: media.KindMovie, Title: "The Matrix"})
	require.NoError(t, err)
	assert.True(t, added)

	active := store.Active()
	item, ok := active.Item(603)
	require.True(t, ok)
	assert.True(t, item.HasFullDetail())
	require.NotNil(t, item.AddedAt)
	assert.Equal(t, 1, cat.calls())

	added, err = store.ToggleItem(context.Background(), media.Item{ID: 603, Kind: media.KindMovie})
	require.NoError(t, err)
	assert.False(t, added)
	assert.False(t, store.Active().HasItem(603))
}

func TestToggleItemDetailFailureAddsAsGiven(t *testing.T) {
	store, cat, _, _ := newTestStore(t)
	cat.detailErr = errors.New("upstream down")
	store.OnIdentityChange(session.Guest())

	added, err := store.ToggleItem(context.Background(), media.Item{ID: 603, Kind: media.KindMovie, Title: "The Matrix"})
	require.NoError(t, err)
	assert.True(t, added)

	item, ok := store.Active().Item(603)
	require.True(t, ok)
	assert.Equal(t, "The Matrix", item.Title)
	assert.False(t, item.HasFullDetail())
	assert.NotNil(t, item.AddedAt)
}

func TestToggleItemRemoveClearsFavorites(t *testing.T) {
	store, _, _, _ := newTestStore(t)
	store.OnIdentityChange(session.Guest())

	_, err := store.ToggleItem(context.Background(), media.Item{ID: 603, Kind: media.KindMovie})
	require.NoError(t, err)
	id := 603
	require.NoError(t, store.UpdateFavoriteSlot(0, &id, media.KindMovie))

	_, err = store.ToggleItem(context.Background(), media.Item{ID: 603, Kind: media.KindMovie})
	require.NoError(t, err)

	active := store.Active()
	assert.Nil(t, active.TopFavoriteMovies[0])
}

func TestGuestMutationsMirrorSynchronously(t *testing.T) {
	store, _, _, local := newTestStore(t)
	store.OnIdentityChange(session.Guest())

	_, err := store.ToggleItem(context.Background(), media.Item{ID: 1, Kind: media.KindMovie})
	require.NoError(t, err)
	assert.Equal(t, 1, local.saves())

	_, err = store.ToggleItem(context.Background(), media.Item{ID: 2, Kind: media.KindMovie})
	require.NoError(t, err)
	assert.Equal(t, 2, local.saves())
}

func TestDebounceCollapsesBurst(t *testing.T) {
	store, _, cloud, _ := newTestStore(t, WithDebounce(20*time.Millisecond))
	store.OnIdentityChange(session.User(uuid.New()))
	waitReady(t, store)

	ctx := context.Background()
	for id := 1; id <= 4; id++ {
		_, err := store.ToggleItem(ctx, media.Item{ID: id, Kind: media.KindMovie})
		require.NoError(t, err)
	}

	require.Eventually(t, func() bool {
		return cloud.upsertCount() == 1
	}, time.Second, 2*time.Millisecond)

	// the single write carries the final state
	rows := cloud.lastUpsert()
	require.Len(t, rows, 1)
	assert.Len(t, rows[0].Items, 4)

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 1, cloud.upsertCount())
}

func TestIdentitySwitchCancelsPendingSave(t *testing.T) {
	store, _, cloud, _ := newTestStore(t, WithDebounce(30*time.Millisecond))
	store.OnIdentityChange(session.User(uuid.New()))
	waitReady(t, store)

	_, err := store.ToggleItem(context.Background(), media.Item{ID: 1, Kind: media.KindMovie})
	require.NoError(t, err)

	store.OnIdentityChange(session.Guest())

	time.Sleep(80 * time.Millisecond)
	assert.Zero(t, cloud.upsertCount())
}

func TestFlushForcesPendingSave(t *testing.T) {
	store, _, cloud, _ := newTestStore(t, WithDebounce(time.Hour))
	store.OnIdentityChange(session.User(uuid.New()))
	waitReady(t, store)

	_, err := store.ToggleItem(context.Background(), media.Item{ID: 1, Kind: media.KindMovie})
	require.NoError(t, err)
	require.Zero(t, cloud.upsertCount())

	store.Flush()
	assert.Equal(t, 1, cloud.upsertCount())
}

func TestCreateCollectionGuestRejected(t *testing.T) {
	store, _, _, _ := newTestStore(t)
	store.OnIdentityChange(session.Guest())

	_, err := store.CreateCollection("Horror Night")
	assert.ErrorIs(t, err, ErrGuestWrite)
}

func TestCreateCollectionActivates(t *testing.T) {
	store, _, _, _ := newTestStore(t)
	store.OnIdentityChange(session.User(uuid.New()))
	waitReady(t, store)

	created, err := store.CreateCollection("Horror Night")
	require.NoError(t, err)
	assert.Equal(t, "Horror Night", created.Name)
	assert.NotEqual(t, collection.DefaultID, created.ID)

	active := store.Active()
	require.NotNil(t, active)
	assert.Equal(t, created.ID, active.ID)
	assert.Len(t, store.Collections(), 2)
}

func TestDeleteCollectionKeepsFloorOfOne(t *testing.T) {
	store, _, _, _ := newTestStore(t)
	store.OnIdentityChange(session.Admin())

	err := store.DeleteCollection(context.Background(), collection.DefaultID)
	assert.ErrorIs(t, err, collection.ErrLastCollection)
	assert.Len(t, store.Collections(), 1)
}

func TestDeleteActiveCollectionReassigns(t *testing.T) {
	store, _, cloud, _ := newTestStore(t, WithDebounce(time.Hour))
	store.OnIdentityChange(session.User(uuid.New()))
	waitReady(t, store)

	created, err := store.CreateCollection("Horror Night")
	require.NoError(t, err)
	require.Equal(t, created.ID, store.Active().ID)

	require.NoError(t, store.DeleteCollection(context.Background(), created.ID))

	active := store.Active()
	require.NotNil(t, active)
	assert.Equal(t, collection.DefaultID, active.ID)
	// survivors are upserted but the dead row needs its own delete
	assert.Equal(t, []string{created.ID}, cloud.deletedIDs)
}

func TestDeleteRestoresCollectionWhenCloudDeleteFails(t *testing.T) {
	store, _, cloud, _ := newTestStore(t, WithDebounce(time.Hour))
	store.OnIdentityChange(session.User(uuid.New()))
	waitReady(t, store)

	created, err := store.CreateCollection("Horror Night")
	require.NoError(t, err)
	require.Equal(t, created.ID, store.Active().ID)

	cloud.mu.Lock()
	cloud.deleteErr = errors.New("connection refused")
	cloud.mu.Unlock()

	require.Error(t, store.DeleteCollection(context.Background(), created.ID))

	// the cloud row survived, so the local view keeps it too
	require.Len(t, store.Collections(), 2)
	assert.Equal(t, created.ID, store.Active().ID)

	cloud.mu.Lock()
	cloud.deleteErr = nil
	cloud.mu.Unlock()

	require.NoError(t, store.DeleteCollection(context.Background(), created.ID))
	assert.Len(t, store.Collections(), 1)
}

func TestUpdateSettingsMintsTokenOncePerPublish(t *testing.T) {
	store, _, _, _ := newTestStore(t)
	store.OnIdentityChange(session.Admin())

	c, err := store.UpdateSettings(collection.DefaultID, Settings{Name: "My List", IsPublic: true})
	require.NoError(t, err)
	require.NotEmpty(t, c.ShareToken)
	token := c.ShareToken

	// unpublish and republish keeps the same token
	c, err = store.UpdateSettings(collection.DefaultID, Settings{Name: "My List", IsPublic: false})
	require.NoError(t, err)
	assert.Equal(t, token, c.ShareToken)

	c, err = store.UpdateSettings(collection.DefaultID, Settings{Name: "My List", IsPublic: true})
	require.NoError(t, err)
	assert.Equal(t, token, c.ShareToken)
}

func TestRegenerateTokenReplaces(t *testing.T) {
	store, _, _, _ := newTestStore(t)
	store.OnIdentityChange(session.Admin())

	_, err := store.UpdateSettings(collection.DefaultID, Settings{Name: "My List", IsPublic: true})
	require.NoError(t, err)
	before := store.Active().ShareToken

	after, err := store.RegenerateToken(collection.DefaultID)
	require.NoError(t, err)
	assert.NotEqual(t, before, after)
	assert.Equal(t, after, store.Active().ShareToken)
}

func TestUpdateFavoriteSlotBadIndex(t *testing.T) {
	store, _, _, _ := newTestStore(t)
	store.OnIdentityChange(session.Guest())

	id := 603
	assert.Error(t, store.UpdateFavoriteSlot(collection.FavoriteSlots, &id, media.KindMovie))
}

func TestRefreshStaleDetail(t *testing.T) {
	store, cat, _, local := newTestStore(t)
	addedAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	stale := media.Item{ID: 603, Kind: media.KindMovie, Title: "The Matrix", AddedAt: &addedAt}
	fresh := media.Item{
		ID: 604, Kind: media.KindMovie,
		Credits:             &media.Credits{},
		ProductionCountries: []media.Country{{ISOCode: "US"}},
	}
	seed := collection.NewDefault()
	seed.Items = []media.Item{stale, fresh}
	local.rows = []*collection.Collection{seed}
	store.OnIdentityChange(session.Guest())

	refreshed, err := store.RefreshStaleDetail(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, refreshed)
	// the already-detailed item triggers no fetch
	assert.Equal(t, 1, cat.calls())

	item, ok := store.Active().Item(603)
	require.True(t, ok)
	assert.True(t, item.HasFullDetail())
	require.NotNil(t, item.AddedAt)
	assert.True(t, item.AddedAt.Equal(addedAt))
}

func TestRefreshStaleDetailRetriesOppositeKind(t *testing.T) {
	store, cat, _, local := newTestStore(t)
	cat.detailKindErr = media.KindMovie
	seed := collection.NewDefault()
	seed.Items = []media.Item{{ID: 1396, Kind: media.KindMovie, Title: "Breaking Bad"}}
	local.rows = []*collection.Collection{seed}
	store.OnIdentityChange(session.Guest())

	refreshed, err := store.RefreshStaleDetail(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, refreshed)

	item, ok := store.Active().Item(1396)
	require.True(t, ok)
	assert.Equal(t, media.KindTV, item.Kind)
}

func TestSetActiveUnknownCollection(t *testing.T) {
	store, _, _, _ := newTestStore(t)
	store.OnIdentityChange(session.Guest())

	assert.Error(t, store.SetActive("nope"))
	assert.NoError(t, store.SetActive(collection.DefaultID))
}

func TestSnapshotsDoNotAliasStoreState(t *testing.T) {
	store, _, _, _ := newTestStore(t)
	store.OnIdentityChange(session.Guest())

	_, err := store.ToggleItem(context.Background(), media.Item{ID: 603, Kind: media.KindMovie})
	require.NoError(t, err)

	snapshot := store.Active()
	snapshot.Name = "mutated"
	snapshot.Items[0].Title = "mutated"

	active := store.Active()
	assert.Equal(t, "My List", active.Name)
	assert.NotEqual(t, "mutated", active.Items[0].Title)
}
