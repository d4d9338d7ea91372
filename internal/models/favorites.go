package models

// The default list synthesized for users with no stored favorites.
const (
	DefaultListID   = "Default-List"
	DefaultListName = "Favorites 1"
)

// Nft is the slice of OpenSea metadata we keep per favorited token.
// The reconciliation engine treats it as an opaque value identified by
// Identifier; the remaining fields are display data refreshed wholesale
// whenever the owning list changes.
type Nft struct {
	Identifier   string `json:"identifier"`
	Collection   string `json:"collection"`
	Contract     string `json:"contract"`
	Name         string `json:"name"`
	ImageUrl     string `json:"imageUrl"`
	AnimationUrl string `json:"animationUrl"`
	OpenseaUrl   string `json:"openseaUrl"`
}

// FavoritesList is a named collection of NFTs. ListId is the merge key and
// must be unique within a user's favorites.
type FavoritesList struct {
	ListID string `json:"listId"`
	Name   string `json:"name"`
	Nfts   []Nft  `json:"nfts"`
}

// Persistable reports whether the list survives the write filter: only
// lists with an id, a name and at least one NFT are stored.
func (l FavoritesList) Persistable() bool {
	return l.ListID != "" && l.Name != "" && len(l.Nfts) > 0
}

// UserFavorites is the single per-user document holding all favorites
// lists. One item per user in the Favorites table, keyed by UserID.
type UserFavorites struct {
	UserID    string          `json:"userId"`
	Favorites []FavoritesList `json:"favorites"`
}

// NewDefaultFavorites synthesizes the document returned for users who have
// never saved anything: one empty default list.
func NewDefaultFavorites(userID string) *UserFavorites {
	return &UserFavorites{
		UserID: userID,
		Favorites: []FavoritesList{
			{ListID: DefaultListID, Name: DefaultListName, Nfts: []Nft{}},
		},
	}
}

// FindList returns a pointer to the list with the given id, or nil.
func (f *UserFavorites) FindList(listID string) *FavoritesList {
	for i := range f.Favorites {
		if f.Favorites[i].ListID == listID {
			return &f.Favorites[i]
		}
	}
	return nil
}

// Clone deep-copies the document so cached state is never aliased by
// callers that go on to mutate the result.
func (f *UserFavorites) Clone() *UserFavorites {
	if f == nil {
		return nil
	}
	out := &UserFavorites{
		UserID:    f.UserID,
		Favorites: make([]FavoritesList, len(f.Favorites)),
	}
	for i, l := range f.Favorites {
		cl := FavoritesList{ListID: l.ListID, Name: l.Name, Nfts: make([]Nft, len(l.Nfts))}
		copy(cl.Nfts, l.Nfts)
		out.Favorites[i] = cl
	}
	return out
}
