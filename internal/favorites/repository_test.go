package favorites

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrjordantanner/trnkt-backend/internal/models"
)

// fakeStore is an in-memory Store that counts writes and can be told to
// fail.
type fakeStore struct {
	mu      sync.Mutex
	items   map[string]map[string]types.AttributeValue
	puts    int
	deletes int
	getErr  error
	putErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{items: map[string]map[string]types.AttributeValue{}}
}

func (s *fakeStore) Get(_ context.Context, userID string) (map[string]types.AttributeValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.items[userID], nil
}

func (s *fakeStore) Put(_ context.Context, item map[string]types.AttributeValue) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return s.putErr
	}
	userID := item["UserId"].(*types.AttributeValueMemberS).Value
	s.items[userID] = item
	s.puts++
	return nil
}

func (s *fakeStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, userID)
	s.deletes++
	return nil
}

func newTestRepo() (*Repository, *fakeStore) {
	store := newFakeStore()
	return NewRepository(store, NewCache(100)), store
}

func seed(t *testing.T, store *fakeStore, doc *models.UserFavorites) {
	t.Helper()
	store.items[doc.UserID] = EncodeUserFavorites(doc)
}

func list(id, name string, nfts ...models.Nft) models.FavoritesList {
	if nfts == nil {
		nfts = []models.Nft{}
	}
	return models.FavoritesList{ListID: id, Name: name, Nfts: nfts}
}

func TestGetFavoritesSynthesizesDefault(t *testing.T) {
	repo, store := newTestRepo()

	doc, err := repo.GetFavorites(context.Background(), "u1")
	require.NoError(t, err)

	require.Len(t, doc.Favorites, 1)
	assert.Equal(t, models.DefaultListID, doc.Favorites[0].ListID)
	assert.Equal(t, models.DefaultListName, doc.Favorites[0].Name)
	assert.Empty(t, doc.Favorites[0].Nfts)
	assert.Zero(t, store.puts, "a read must not write")
}

func TestGetFavoritesPropagatesStoreFault(t *testing.T) {
	repo, store := newTestRepo()
	store.getErr = errors.New("connection reset")

	_, err := repo.GetFavorites(context.Background(), "u1")
	require.Error(t, err)
}

func TestGetFavoritesCorruptDocument(t *testing.T) {
	repo, store := newTestRepo()
	store.items["u1"] = map[string]types.AttributeValue{
		"Favorites": &types.AttributeValueMemberL{},
	}

	_, err := repo.GetFavorites(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrCorruptDocument)
}

func TestUpdateFavoritesNilLists(t *testing.T) {
	repo, store := newTestRepo()

	_, _, err := repo.UpdateFavorites(context.Background(), "u1", nil)
	assert.ErrorIs(t, err, ErrNilLists)
	assert.Zero(t, store.puts)
}

func TestUpdateFavoritesEmptySliceIsNoOp(t *testing.T) {
	repo, store := newTestRepo()

	doc, modified, err := repo.UpdateFavorites(context.Background(), "u1", []models.FavoritesList{})
	require.NoError(t, err)
	assert.False(t, modified)
	assert.Zero(t, store.puts)
	require.Len(t, doc.Favorites, 1)
	assert.Equal(t, models.DefaultListID, doc.Favorites[0].ListID)
}

func TestUpdateFavoritesAppendsNewList(t *testing.T) {
	repo, store := newTestRepo()

	submitted := []models.FavoritesList{list("L1", "Cool", models.Nft{Identifier: "n1"})}
	doc, modified, err := repo.UpdateFavorites(context.Background(), "u2", submitted)
	require.NoError(t, err)
	assert.True(t, modified)
	assert.Equal(t, 1, store.puts)
	require.NotNil(t, doc.FindList("L1"))

	// The default list survives in memory but is filtered from the stored
	// item.
	stored, err := DecodeUserFavorites(store.items["u2"])
	require.NoError(t, err)
	require.Len(t, stored.Favorites, 1)
	assert.Equal(t, "L1", stored.Favorites[0].ListID)
}

func TestUpdateFavoritesIdempotent(t *testing.T) {
	repo, store := newTestRepo()

	submitted := []models.FavoritesList{list("L1", "Cool", models.Nft{Identifier: "n1"})}

	first, modified, err := repo.UpdateFavorites(context.Background(), "u2", submitted)
	require.NoError(t, err)
	assert.True(t, modified)

	second, modified, err := repo.UpdateFavorites(context.Background(), "u2", submitted)
	require.NoError(t, err)
	assert.False(t, modified, "identical resubmission must not report a change")
	assert.Equal(t, 1, store.puts, "identical resubmission must not write")
	assert.Equal(t, first, second)
}

func TestUpdateFavoritesNoChangeForIdenticalState(t *testing.T) {
	repo, store := newTestRepo()
	seed(t, store, &models.UserFavorites{
		UserID:    "u1",
		Favorites: []models.FavoritesList{list("L1", "Cool", models.Nft{Identifier: "n1"}, models.Nft{Identifier: "n2"})},
	})

	// Same id, name and identifier set, different order.
	_, modified, err := repo.UpdateFavorites(context.Background(), "u1",
		[]models.FavoritesList{list("L1", "Cool", models.Nft{Identifier: "n2"}, models.Nft{Identifier: "n1"})})
	require.NoError(t, err)
	assert.False(t, modified)
	assert.Zero(t, store.puts)
}

func TestUpdateFavoritesNameChange(t *testing.T) {
	repo, store := newTestRepo()
	seed(t, store, &models.UserFavorites{
		UserID:    "u1",
		Favorites: []models.FavoritesList{list("L1", "Old", models.Nft{Identifier: "n1"})},
	})

	doc, modified, err := repo.UpdateFavorites(context.Background(), "u1",
		[]models.FavoritesList{list("L1", "New", models.Nft{Identifier: "n1"})})
	require.NoError(t, err)
	assert.True(t, modified)
	assert.Equal(t, 1, store.puts)
	assert.Equal(t, "New", doc.FindList("L1").Name)
}

func TestUpdateFavoritesNftSetChange(t *testing.T) {
	repo, store := newTestRepo()
	seed(t, store, &models.UserFavorites{
		UserID:    "u1",
		Favorites: []models.FavoritesList{list("L1", "Cool", models.Nft{Identifier: "n1"}, models.Nft{Identifier: "n2"})},
	})

	// n2 swapped for n3: same count, different membership.
	doc, modified, err := repo.UpdateFavorites(context.Background(), "u1",
		[]models.FavoritesList{list("L1", "Cool", models.Nft{Identifier: "n1"}, models.Nft{Identifier: "n3"})})
	require.NoError(t, err)
	assert.True(t, modified)

	ids := []string{doc.FindList("L1").Nfts[0].Identifier, doc.FindList("L1").Nfts[1].Identifier}
	assert.ElementsMatch(t, []string{"n1", "n3"}, ids)
}

func TestUpdateFavoritesAttributeOnlyChangeNotDetected(t *testing.T) {
	repo, store := newTestRepo()
	seed(t, store, &models.UserFavorites{
		UserID:    "u1",
		Favorites: []models.FavoritesList{list("L1", "Cool", models.Nft{Identifier: "n1", ImageUrl: "old.png"})},
	})

	// Same identifier set, only ImageUrl differs: comparison is by
	// identifier membership, so no change is reported or persisted.
	_, modified, err := repo.UpdateFavorites(context.Background(), "u1",
		[]models.FavoritesList{list("L1", "Cool", models.Nft{Identifier: "n1", ImageUrl: "new.png"})})
	require.NoError(t, err)
	assert.False(t, modified)
	assert.Zero(t, store.puts)
}

func TestUpdateFavoritesFailedWriteLeavesCacheUntouched(t *testing.T) {
	repo, store := newTestRepo()
	seed(t, store, &models.UserFavorites{
		UserID:    "u1",
		Favorites: []models.FavoritesList{list("L1", "Cool", models.Nft{Identifier: "n1"})},
	})

	// Prime the cache.
	_, err := repo.GetFavorites(context.Background(), "u1")
	require.NoError(t, err)

	store.putErr = errors.New("throughput exceeded")
	_, _, err = repo.UpdateFavorites(context.Background(), "u1",
		[]models.FavoritesList{list("L1", "Renamed", models.Nft{Identifier: "n1"})})
	require.Error(t, err)

	doc, err := repo.GetFavorites(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "Cool", doc.FindList("L1").Name, "failed write must not leak into the cache")
}

func TestDeleteFavorites(t *testing.T) {
	repo, store := newTestRepo()
	seed(t, store, &models.UserFavorites{
		UserID:    "u1",
		Favorites: []models.FavoritesList{list("L1", "Cool", models.Nft{Identifier: "n1"})},
	})

	ok, err := repo.DeleteFavorites(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, store.items)

	// Next read synthesizes the default again.
	doc, err := repo.GetFavorites(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultListID, doc.Favorites[0].ListID)
}

func TestDeleteListNotFound(t *testing.T) {
	repo, store := newTestRepo()
	seed(t, store, &models.UserFavorites{
		UserID:    "u1",
		Favorites: []models.FavoritesList{list("L1", "Cool", models.Nft{Identifier: "n1"})},
	})

	ok, err := repo.DeleteList(context.Background(), "u1", "nope")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, store.puts)

	ok, err = repo.DeleteList(context.Background(), "ghost", "L1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, store.puts)
}

func TestDeleteList(t *testing.T) {
	repo, store := newTestRepo()
	seed(t, store, &models.UserFavorites{
		UserID: "u1",
		Favorites: []models.FavoritesList{
			list("L1", "Cool", models.Nft{Identifier: "n1"}),
			list("L2", "Punks", models.Nft{Identifier: "n2"}),
		},
	})

	ok, err := repo.DeleteList(context.Background(), "u1", "L1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, store.puts)

	stored, err := DecodeUserFavorites(store.items["u1"])
	require.NoError(t, err)
	require.Len(t, stored.Favorites, 1)
	assert.Equal(t, "L2", stored.Favorites[0].ListID)
}

func TestDeleteNftNotFound(t *testing.T) {
	repo, store := newTestRepo()
	seed(t, store, &models.UserFavorites{
		UserID:    "u1",
		Favorites: []models.FavoritesList{list("L1", "Cool", models.Nft{Identifier: "n1"})},
	})

	ok, err := repo.DeleteNft(context.Background(), "u1", "L1", "nope")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, store.puts)
}

func TestDeleteLastNftKeepsEmptyListInMemory(t *testing.T) {
	repo, store := newTestRepo()
	seed(t, store, &models.UserFavorites{
		UserID:    "u1",
		Favorites: []models.FavoritesList{list("L1", "Cool", models.Nft{Identifier: "n1"})},
	})

	ok, err := repo.DeleteNft(context.Background(), "u1", "L1", "n1")
	require.NoError(t, err)
	assert.True(t, ok)

	// The emptied list survives in the cached in-memory document...
	doc, err := repo.GetFavorites(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, doc.FindList("L1"))
	assert.Empty(t, doc.FindList("L1").Nfts)

	// ...but the write filter dropped it from the stored item, so a cold
	// read would not see it.
	stored, err := DecodeUserFavorites(store.items["u1"])
	require.NoError(t, err)
	assert.Empty(t, stored.Favorites)
}

func TestConcurrentUpdatesDoNotLoseLists(t *testing.T) {
	repo, store := newTestRepo()

	const writers = 8
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := string(rune('A' + n))
			_, _, err := repo.UpdateFavorites(context.Background(), "u1",
				[]models.FavoritesList{list("L"+id, "List "+id, models.Nft{Identifier: "n" + id})})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	stored, err := DecodeUserFavorites(store.items["u1"])
	require.NoError(t, err)
	assert.Len(t, stored.Favorites, writers, "serialized writes must not clobber each other")
}
