package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mrjordantanner/trnkt-backend/internal/config"
)

// GenerateToken issues an HS256 token whose subject is the user's email.
func GenerateToken(cfg *config.Config, email string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   email,
		Issuer:    cfg.JWTIssuer,
		Audience:  jwt.ClaimStrings{cfg.JWTAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(cfg.JWTTTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTKey))
}
