package favorites

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mrjordantanner/trnkt-backend/internal/models"
)

// ErrNilLists is the validation fault for a reconcile call with no payload
// at all. An empty slice is a valid no-op request; nil is a client error
// and never touches the store.
var ErrNilLists = errors.New("favorites: updated lists must not be nil")

// Repository is the favorites engine: it loads documents through the cache
// with the store as fallback, reconciles client submissions against them,
// and persists whole-document overwrites only when something changed.
//
// Writes for one user are serialized through a per-user mutex, so two
// concurrent updates in this process cannot clobber each other. Across
// processes the store is still last-write-wins.
type Repository struct {
	store Store
	cache *Cache
	locks userLocks
}

func NewRepository(store Store, cache *Cache) *Repository {
	return &Repository{
		store: store,
		cache: cache,
		locks: userLocks{locks: make(map[string]*userLock)},
	}
}

// GetFavorites returns the user's document, synthesizing the default
// single-empty-list document when none is stored. Only documents that
// actually exist in the store are cached; the synthesized default is not,
// so a first write is not mistaken for a no-op against phantom state.
func (r *Repository) GetFavorites(ctx context.Context, userID string) (*models.UserFavorites, error) {
	doc, err := r.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		slog.Info("no favorites found, returning default document", "userId", userID)
		return models.NewDefaultFavorites(userID), nil
	}
	return doc, nil
}

// UpdateFavorites reconciles the submitted lists against the current
// document. Merging is keyed by ListId: a known id whose name or NFT
// identifier set differs gets its Name and Nfts overwritten wholesale, an
// unknown id is appended. The document is written back (and the cache
// updated) only when some list produced a change, which makes repeated
// identical submissions idempotent: one store write, then none.
func (r *Repository) UpdateFavorites(ctx context.Context, userID string, lists []models.FavoritesList) (*models.UserFavorites, bool, error) {
	if lists == nil {
		return nil, false, ErrNilLists
	}

	unlock := r.locks.lock(userID)
	defer unlock()

	doc, err := r.GetFavorites(ctx, userID)
	if err != nil {
		return nil, false, err
	}

	modified := false
	for _, updated := range lists {
		existing := doc.FindList(updated.ListID)
		if existing == nil {
			doc.Favorites = append(doc.Favorites, updated)
			modified = true
			slog.Info("added new favorites list", "userId", userID, "listId", updated.ListID, "name", updated.Name)
			continue
		}
		if existing.Name != updated.Name || nftSetChanged(existing.Nfts, updated.Nfts) {
			existing.Name = updated.Name
			existing.Nfts = updated.Nfts
			modified = true
			slog.Info("updated favorites list", "userId", userID, "listId", updated.ListID, "nfts", len(updated.Nfts))
		}
	}

	if !modified {
		slog.Info("no favorites changes detected", "userId", userID)
		return doc, false, nil
	}

	if err := r.store.Put(ctx, EncodeUserFavorites(doc)); err != nil {
		return nil, false, err
	}
	r.cache.Set(userID, doc)
	return doc, true, nil
}

// nftSetChanged compares by identifier membership only: a count mismatch,
// or any existing NFT whose identifier is absent from the submission,
// counts as a change. Attribute-only edits to a surviving NFT do not — they
// still land via the wholesale overwrite when some other change trips it.
func nftSetChanged(existing, updated []models.Nft) bool {
	if len(existing) != len(updated) {
		return true
	}
	ids := make(map[string]struct{}, len(updated))
	for _, nft := range updated {
		ids[nft.Identifier] = struct{}{}
	}
	for _, nft := range existing {
		if _, ok := ids[nft.Identifier]; !ok {
			return true
		}
	}
	return false
}

// DeleteFavorites removes the whole document. Used when the owning account
// is deleted.
func (r *Repository) DeleteFavorites(ctx context.Context, userID string) (bool, error) {
	unlock := r.locks.lock(userID)
	defer unlock()

	if err := r.store.Delete(ctx, userID); err != nil {
		return false, err
	}
	r.cache.Invalidate(userID)
	slog.Info("deleted favorites document", "userId", userID)
	return true, nil
}

// DeleteList removes one list by id. Returns false with no write when the
// user has no document or no such list.
func (r *Repository) DeleteList(ctx context.Context, userID, listID string) (bool, error) {
	unlock := r.locks.lock(userID)
	defer unlock()

	doc, err := r.load(ctx, userID)
	if err != nil || doc == nil {
		return false, err
	}
	if doc.FindList(listID) == nil {
		slog.Warn("favorites list not found", "userId", userID, "listId", listID)
		return false, nil
	}

	kept := make([]models.FavoritesList, 0, len(doc.Favorites))
	for _, list := range doc.Favorites {
		if list.ListID != listID {
			kept = append(kept, list)
		}
	}
	doc.Favorites = kept

	if err := r.store.Put(ctx, EncodeUserFavorites(doc)); err != nil {
		return false, err
	}
	r.cache.Set(userID, doc)
	slog.Info("deleted favorites list", "userId", userID, "listId", listID)
	return true, nil
}

// DeleteNft removes one NFT by identifier from one list. Returns false with
// no write when the document, list or NFT is absent. A list emptied by the
// removal stays in the returned document; the write filter drops it from
// the stored item, so it will be gone from the next cold read.
func (r *Repository) DeleteNft(ctx context.Context, userID, listID, nftID string) (bool, error) {
	unlock := r.locks.lock(userID)
	defer unlock()

	doc, err := r.load(ctx, userID)
	if err != nil || doc == nil {
		return false, err
	}
	list := doc.FindList(listID)
	if list == nil {
		slog.Warn("favorites list not found", "userId", userID, "listId", listID)
		return false, nil
	}

	kept := make([]models.Nft, 0, len(list.Nfts))
	found := false
	for _, nft := range list.Nfts {
		if nft.Identifier == nftID {
			found = true
			continue
		}
		kept = append(kept, nft)
	}
	if !found {
		slog.Warn("nft not found in favorites list", "userId", userID, "listId", listID, "nftId", nftID)
		return false, nil
	}
	list.Nfts = kept

	if err := r.store.Put(ctx, EncodeUserFavorites(doc)); err != nil {
		return false, err
	}
	r.cache.Set(userID, doc)
	slog.Info("deleted nft from favorites list", "userId", userID, "listId", listID, "nftId", nftID)
	return true, nil
}

// Invalidate drops the user's cache entry.
func (r *Repository) Invalidate(userID string) {
	r.cache.Invalidate(userID)
}

// load returns the cached or stored document, or (nil, nil) when the user
// has none. Store absence and store faults are kept distinct: absence is a
// valid state, a fault propagates.
func (r *Repository) load(ctx context.Context, userID string) (*models.UserFavorites, error) {
	if doc, ok := r.cache.Get(userID); ok {
		return doc, nil
	}

	item, err := r.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, nil
	}

	doc, err := DecodeUserFavorites(item)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", userID, err)
	}
	r.cache.Set(userID, doc)
	return doc, nil
}

// userLocks hands out one mutex per user id, refcounted so idle entries do
// not accumulate.
type userLocks struct {
	mu    sync.Mutex
	locks map[string]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

func (l *userLocks) lock(userID string) (unlock func()) {
	l.mu.Lock()
	entry, ok := l.locks[userID]
	if !ok {
		entry = &userLock{}
		l.locks[userID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, userID)
		}
		l.mu.Unlock()
	}
}
