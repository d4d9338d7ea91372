package auth

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mrjordantanner/trnkt-backend/internal/config"
	"github.com/mrjordantanner/trnkt-backend/internal/favorites"
	"github.com/mrjordantanner/trnkt-backend/internal/middleware"
	"github.com/mrjordantanner/trnkt-backend/internal/models"
)

// Handler contains the account route handlers: registration, login and
// profile management. Deleting an account cascades to the user's favorites
// document.
type Handler struct {
	cfg       *config.Config
	users     *UserStore
	favorites *favorites.Repository
}

func NewHandler(cfg *config.Config, users *UserStore, favRepo *favorites.Repository) *Handler {
	return &Handler{cfg: cfg, users: users, favorites: favRepo}
}

func (h *Handler) RegisterRoutes(r *gin.Engine, auth *middleware.Auth) {
	g := r.Group("/api/user")

	g.POST("/users", middleware.AuthRateLimit(), h.CreateUser)
	g.POST("/login", middleware.AuthRateLimit(), h.Login)
	g.GET("/users/:email", h.GetUserByEmail)

	g.POST("/logout", auth.RequireAuth(), h.Logout)
	g.PUT("/users/change-username", auth.RequireAuth(), h.ChangeUserName)
	g.PUT("/users/change-email", auth.RequireAuth(), h.ChangeEmail)
	g.PUT("/users/change-password", auth.RequireAuth(), h.ChangePassword)
	g.DELETE("/users/:email", auth.RequireAuth(), h.DeleteUser)
}

type registrationRequest struct {
	UserName string `json:"userName" binding:"required,min=3"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// CreateUser registers a new account.
// POST /api/user/users
func (h *Handler) CreateUser(c *gin.Context) {
	var req registrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid registration payload."})
		return
	}

	hash, err := models.HashPassword(req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}

	user := &models.User{
		ID:           uuid.NewString(),
		UserName:     req.UserName,
		Email:        req.Email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
	}

	if err := h.users.Create(c.Request.Context(), user); err != nil {
		if err == ErrUserExists {
			c.JSON(http.StatusBadRequest, gin.H{"error": "User already exists."})
			return
		}
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": user.ToProfile()})
}

// GetUserByEmail returns the public profile for an email.
// GET /api/user/users/:email
func (h *Handler) GetUserByEmail(c *gin.Context) {
	user, err := h.users.GetByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": user.ToProfile()})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials, issues a JWT and sets it as a cookie.
// POST /api/user/login
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid login payload."})
		return
	}

	user, err := h.users.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		h.fail(c, err)
		return
	}
	if user == nil || !models.ComparePassword(req.Password, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password."})
		return
	}

	token, err := GenerateToken(h.cfg, user.Email)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.JWTCookieName, token, int(h.cfg.JWTTTL.Seconds()), "/", "", !h.cfg.IsDev(), true)
	c.JSON(http.StatusOK, gin.H{"token": token, "profile": user.ToProfile()})
}

// Logout clears the auth cookie.
// POST /api/user/logout
func (h *Handler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.JWTCookieName, "", -1, "/", "", !h.cfg.IsDev(), true)
	c.JSON(http.StatusOK, gin.H{"message": "User logged out successfully."})
}

type changeUserNameRequest struct {
	Email       string `json:"email" binding:"required"`
	NewUserName string `json:"newUserName" binding:"required,min=3"`
}

// ChangeUserName updates the display name.
// PUT /api/user/users/change-username
func (h *Handler) ChangeUserName(c *gin.Context) {
	var req changeUserNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload."})
		return
	}

	user, err := h.users.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		h.fail(c, err)
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found."})
		return
	}

	if err := h.users.UpdateUserName(c.Request.Context(), req.Email, req.NewUserName); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User name updated successfully."})
}

type changeEmailRequest struct {
	OldEmail string `json:"oldEmail" binding:"required"`
	NewEmail string `json:"newEmail" binding:"required,email"`
}

// ChangeEmail re-keys the account under a new email address.
// PUT /api/user/users/change-email
func (h *Handler) ChangeEmail(c *gin.Context) {
	var req changeEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload."})
		return
	}

	user, err := h.users.GetByEmail(c.Request.Context(), req.OldEmail)
	if err != nil {
		h.fail(c, err)
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found."})
		return
	}

	if err := h.users.ChangeEmail(c.Request.Context(), req.OldEmail, req.NewEmail); err != nil {
		if err == ErrUserExists {
			c.JSON(http.StatusBadRequest, gin.H{"error": "An account with the new email already exists."})
			return
		}
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User email updated successfully."})
}

type changePasswordRequest struct {
	Email       string `json:"email" binding:"required"`
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}

// ChangePassword verifies the old password before storing a new hash.
// PUT /api/user/users/change-password
func (h *Handler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload."})
		return
	}

	user, err := h.users.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		h.fail(c, err)
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found."})
		return
	}
	if !models.ComparePassword(req.OldPassword, user.PasswordHash) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Incorrect old password."})
		return
	}

	hash, err := models.HashPassword(req.NewPassword)
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.users.UpdatePasswordHash(c.Request.Context(), req.Email, hash); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully."})
}

// DeleteUser removes the account and its favorites document.
// DELETE /api/user/users/:email
func (h *Handler) DeleteUser(c *gin.Context) {
	email := c.Param("email")

	user, err := h.users.GetByEmail(c.Request.Context(), email)
	if err != nil {
		h.fail(c, err)
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found."})
		return
	}

	if err := h.users.Delete(c.Request.Context(), email); err != nil {
		h.fail(c, err)
		return
	}
	if _, err := h.favorites.DeleteFavorites(c.Request.Context(), user.ID); err != nil {
		// The account record is gone; an orphaned favorites item is logged
		// rather than failing the whole request.
		_ = c.Error(err)
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully."})
}

func (h *Handler) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error."})
}
