package opensea

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrjordantanner/trnkt-backend/internal/middleware"
)

// Handler exposes the proxy routes the frontend uses to browse NFTs and
// collections.
type Handler struct {
	client *Client
}

func NewHandler(client *Client) *Handler {
	return &Handler{client: client}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	g := r.Group("/api/nft")
	g.Use(middleware.MarketplaceRateLimit())

	g.GET("/fetchNft/:chain/:address/:id", h.GetNft)
	g.GET("/fetchNfts/:collectionSlug", h.GetNftBatch)
	g.GET("/fetchCollections", h.GetCollections)
	g.GET("/fetchCollection/:collectionSlug", h.GetCollection)
}

// GetNft fetches a single NFT by chain, contract address and token id.
// GET /api/nft/fetchNft/:chain/:address/:id
func (h *Handler) GetNft(c *gin.Context) {
	endpoint := fmt.Sprintf("/chain/%s/contract/%s/nfts/%s",
		url.PathEscape(c.Param("chain")),
		url.PathEscape(c.Param("address")),
		url.PathEscape(c.Param("id")))
	h.proxy(c, endpoint)
}

// GetNftBatch fetches a page of NFTs from a collection. The limit is
// clamped to OpenSea's 1..200 range, defaulting to 50; `next` is the
// upstream pagination cursor passed through untouched.
// GET /api/nft/fetchNfts/:collectionSlug?limit=&next=
func (h *Handler) GetNftBatch(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 || limit > 200 {
		limit = 50
	}

	endpoint := fmt.Sprintf("/collection/%s/nfts?limit=%d", url.PathEscape(c.Param("collectionSlug")), limit)
	if next := c.Query("next"); next != "" {
		endpoint += "&next=" + url.QueryEscape(next)
	}
	h.proxy(c, endpoint)
}

// GetCollections fetches a batch of collections.
// GET /api/nft/fetchCollections
func (h *Handler) GetCollections(c *gin.Context) {
	h.proxy(c, "/collections")
}

// GetCollection fetches a single collection's metadata by slug.
// GET /api/nft/fetchCollection/:collectionSlug
func (h *Handler) GetCollection(c *gin.Context) {
	h.proxy(c, "/collections/"+url.PathEscape(c.Param("collectionSlug")))
}

func (h *Handler) proxy(c *gin.Context, endpoint string) {
	body, status, err := h.client.Fetch(c.Request.Context(), endpoint)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error."})
		return
	}
	if status < 200 || status >= 300 {
		slog.Warn("opensea fetch failed", "endpoint", endpoint, "status", status)
		c.Data(status, "application/json", body)
		return
	}
	c.Data(http.StatusOK, "application/json", body)
}
