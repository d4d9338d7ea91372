package favorites

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrjordantanner/trnkt-backend/internal/middleware"
	"github.com/mrjordantanner/trnkt-backend/internal/models"
)

// Handler exposes the favorites engine over HTTP.
type Handler struct {
	repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) RegisterRoutes(r *gin.Engine, auth *middleware.Auth) {
	g := r.Group("/api/favorites")
	g.Use(auth.RequireAuth())

	g.GET("/:userId", h.GetFavorites)
	g.POST("/:userId", h.UpdateFavorites)
	g.DELETE("/:userId", h.DeleteFavorites)
	g.DELETE("/:userId/:listId", h.DeleteList)
	g.DELETE("/:userId/:listId/:nftId", h.DeleteNft)
}

// GetFavorites returns the stored document, or the synthesized default for
// users who have never saved anything.
// GET /api/favorites/:userId
func (h *Handler) GetFavorites(c *gin.Context) {
	doc, err := h.repo.GetFavorites(c.Request.Context(), c.Param("userId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// UpdateFavorites reconciles the submitted lists into the stored document.
// POST /api/favorites/:userId with body = array of FavoritesList
func (h *Handler) UpdateFavorites(c *gin.Context) {
	var lists []models.FavoritesList
	if err := c.ShouldBindJSON(&lists); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request body must be an array of favorites lists."})
		return
	}

	// A JSON `null` body leaves lists nil; the repository rejects that as a
	// validation fault while `[]` stays a valid no-op.
	doc, _, err := h.repo.UpdateFavorites(c.Request.Context(), c.Param("userId"), lists)
	if err != nil {
		if errors.Is(err, ErrNilLists) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// DeleteFavorites removes the whole document.
// DELETE /api/favorites/:userId
func (h *Handler) DeleteFavorites(c *gin.Context) {
	ok, err := h.repo.DeleteFavorites(c.Request.Context(), c.Param("userId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": ok})
}

// DeleteList removes a single list by id.
// DELETE /api/favorites/:userId/:listId
func (h *Handler) DeleteList(c *gin.Context) {
	ok, err := h.repo.DeleteList(c.Request.Context(), c.Param("userId"), c.Param("listId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"deleted": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// DeleteNft removes a single NFT by identifier from one list.
// DELETE /api/favorites/:userId/:listId/:nftId
func (h *Handler) DeleteNft(c *gin.Context) {
	ok, err := h.repo.DeleteNft(c.Request.Context(), c.Param("userId"), c.Param("listId"), c.Param("nftId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"deleted": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	if errors.Is(err, ErrCorruptDocument) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Stored favorites are corrupt."})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error."})
}
