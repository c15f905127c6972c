package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"ham-backend/internal/config"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Service verifies access tokens minted by the marketplace identity provider.
type Service interface {
	ValidateAccessToken(token string) (*Claims, error)
}

type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// CurrentUserID returns the authenticated user id, preferring the user_id claim
// over the registered "sub" claim.
func (c *Claims) CurrentUserID() string {
	if c.UserID != "" {
		return c.UserID
	}
	return c.RegisteredClaims.Subject
}

type service struct {
	cfg *config.Config
}

func NewService(cfg *config.Config) Service {
	return &service{cfg: cfg}
}

func (s *service) ValidateAccessToken(tokenString string) (*Claims, error) {
	if s.cfg.JWTSecret == "" {
		return nil, ErrInvalidToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.CurrentUserID() == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
