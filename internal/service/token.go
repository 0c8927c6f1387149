package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/maeulhub/maeulhub-api/internal/model"
)

// TokenService issues the two bearer credentials of a session: a short-lived
// access token (client-held) and a long-lived refresh token (cookie-held),
// signed under distinct secrets.
type TokenService struct {
	accessSecret  string
	refreshSecret string
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

func NewTokenService(accessSecret, refreshSecret string, accessExpiry, refreshExpiry time.Duration) *TokenService {
	return &TokenService{
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}
}

func (s *TokenService) IssueAccessToken(user *model.User) (string, error) {
	return s.sign(user, s.accessSecret, s.accessExpiry)
}

func (s *TokenService) IssueRefreshToken(user *model.User) (string, error) {
	return s.sign(user, s.refreshSecret, s.refreshExpiry)
}

func (s *TokenService) RefreshExpiry() time.Duration {
	return s.refreshExpiry
}

// sign builds the claims from stored user fields only. The salt and password
// hash never enter a token payload.
func (s *TokenService) sign(user *model.User, secret string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"iat":     now.Unix(),
		"exp":     now.Add(expiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// Verify parses a token against the given secret and returns its claims.
func Verify(tokenString, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}
