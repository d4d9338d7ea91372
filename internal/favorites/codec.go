// Package favorites holds the per-user favorites document: its DynamoDB
// mapping, the in-process read cache, and the reconciliation and deletion
// engines that the HTTP layer calls into.
package favorites

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/mrjordantanner/trnkt-backend/internal/models"
)

// ErrCorruptDocument marks a stored item missing a required identity field
// (UserId, ListId, Name or Identifier). Decoding never substitutes defaults
// for these: a silently-defaulted id would be re-persisted on the next
// write and lose data.
var ErrCorruptDocument = errors.New("favorites: corrupt stored document")

// EncodeUserFavorites maps the document to its DynamoDB item. The write
// filter applies here: lists without an id, a name or at least one NFT are
// dropped, as are NFTs without an identifier. All other NFT fields are
// written as empty strings when absent — the stored shape has no notion of
// a missing attribute.
func EncodeUserFavorites(f *models.UserFavorites) map[string]types.AttributeValue {
	lists := make([]types.AttributeValue, 0, len(f.Favorites))
	for _, list := range f.Favorites {
		if !list.Persistable() {
			continue
		}
		nfts := make([]types.AttributeValue, 0, len(list.Nfts))
		for _, nft := range list.Nfts {
			if nft.Identifier == "" {
				continue
			}
			nfts = append(nfts, &types.AttributeValueMemberM{Value: map[string]types.AttributeValue{
				"Identifier":   &types.AttributeValueMemberS{Value: nft.Identifier},
				"Collection":   &types.AttributeValueMemberS{Value: nft.Collection},
				"Contract":     &types.AttributeValueMemberS{Value: nft.Contract},
				"Name":         &types.AttributeValueMemberS{Value: nft.Name},
				"ImageUrl":     &types.AttributeValueMemberS{Value: nft.ImageUrl},
				"AnimationUrl": &types.AttributeValueMemberS{Value: nft.AnimationUrl},
				"OpenseaUrl":   &types.AttributeValueMemberS{Value: nft.OpenseaUrl},
			}})
		}
		lists = append(lists, &types.AttributeValueMemberM{Value: map[string]types.AttributeValue{
			"ListId": &types.AttributeValueMemberS{Value: list.ListID},
			"Name":   &types.AttributeValueMemberS{Value: list.Name},
			"Nfts":   &types.AttributeValueMemberL{Value: nfts},
		}})
	}

	return map[string]types.AttributeValue{
		"UserId":    &types.AttributeValueMemberS{Value: f.UserID},
		"Favorites": &types.AttributeValueMemberL{Value: lists},
	}
}

// DecodeUserFavorites maps a stored item back to the document. A missing
// Favorites attribute decodes to an empty slice; missing optional NFT
// fields decode to empty strings. Missing required fields fail with
// ErrCorruptDocument.
func DecodeUserFavorites(item map[string]types.AttributeValue) (*models.UserFavorites, error) {
	userID, ok := stringAttr(item, "UserId")
	if !ok || userID == "" {
		return nil, fmt.Errorf("%w: missing UserId", ErrCorruptDocument)
	}

	doc := &models.UserFavorites{UserID: userID, Favorites: []models.FavoritesList{}}

	for i, lv := range listAttr(item, "Favorites") {
		lm, ok := lv.(*types.AttributeValueMemberM)
		if !ok {
			return nil, fmt.Errorf("%w: Favorites[%d] is not a map", ErrCorruptDocument, i)
		}
		listID, ok := stringAttr(lm.Value, "ListId")
		if !ok || listID == "" {
			return nil, fmt.Errorf("%w: Favorites[%d] missing ListId", ErrCorruptDocument, i)
		}
		name, ok := stringAttr(lm.Value, "Name")
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: list %q missing Name", ErrCorruptDocument, listID)
		}

		list := models.FavoritesList{ListID: listID, Name: name, Nfts: []models.Nft{}}
		for j, nv := range listAttr(lm.Value, "Nfts") {
			nm, ok := nv.(*types.AttributeValueMemberM)
			if !ok {
				return nil, fmt.Errorf("%w: list %q Nfts[%d] is not a map", ErrCorruptDocument, listID, j)
			}
			identifier, ok := stringAttr(nm.Value, "Identifier")
			if !ok || identifier == "" {
				return nil, fmt.Errorf("%w: list %q Nfts[%d] missing Identifier", ErrCorruptDocument, listID, j)
			}
			list.Nfts = append(list.Nfts, models.Nft{
				Identifier:   identifier,
				Collection:   optionalStringAttr(nm.Value, "Collection"),
				Contract:     optionalStringAttr(nm.Value, "Contract"),
				Name:         optionalStringAttr(nm.Value, "Name"),
				ImageUrl:     optionalStringAttr(nm.Value, "ImageUrl"),
				AnimationUrl: optionalStringAttr(nm.Value, "AnimationUrl"),
				OpenseaUrl:   optionalStringAttr(nm.Value, "OpenseaUrl"),
			})
		}
		doc.Favorites = append(doc.Favorites, list)
	}

	return doc, nil
}

func stringAttr(m map[string]types.AttributeValue, key string) (string, bool) {
	s, ok := m[key].(*types.AttributeValueMemberS)
	if !ok {
		return "", false
	}
	return s.Value, true
}

func optionalStringAttr(m map[string]types.AttributeValue, key string) string {
	s, _ := stringAttr(m, key)
	return s
}

func listAttr(m map[string]types.AttributeValue, key string) []types.AttributeValue {
	l, ok := m[key].(*types.AttributeValueMemberL)
	if !ok {
		return nil
	}
	return l.Value
}
