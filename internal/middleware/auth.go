package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/mrjordantanner/trnkt-backend/internal/config"
)

// contextKey is a private type to avoid collisions in context values.
type contextKey string

const emailKey contextKey = "email"

// JWTCookieName is the cookie the login endpoint sets; the middleware
// accepts either the cookie or an Authorization: Bearer header.
const JWTCookieName = "jwt_token"

// Auth validates the signed tokens issued at login.
type Auth struct {
	cfg *config.Config
}

func NewAuth(cfg *config.Config) *Auth {
	return &Auth{cfg: cfg}
}

// RequireAuth aborts with 401 unless the request carries a valid token,
// and attaches the token subject (the user's email) to the context.
func (a *Auth) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized request!"})
			return
		}

		email, err := a.verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized request!"})
			return
		}

		c.Set(string(emailKey), email)
		c.Next()
	}
}

// GetEmail retrieves the authenticated email from Gin context (set by
// RequireAuth).
func GetEmail(c *gin.Context) string {
	v, _ := c.Get(string(emailKey))
	email, _ := v.(string)
	return email
}

func (a *Auth) verify(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(a.cfg.JWTKey), nil
	},
		jwt.WithIssuer(a.cfg.JWTIssuer),
		jwt.WithAudience(a.cfg.JWTAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", err
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("token has no subject")
	}
	return sub, nil
}

func extractToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if parts := strings.SplitN(auth, "Bearer ", 2); len(parts) == 2 {
		return strings.TrimSpace(parts[1])
	}
	if cookie, err := c.Cookie(JWTCookieName); err == nil {
		return cookie
	}
	return ""
}
