package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"

	"github.com/fatflowers/shopdrop/internal/models"
)

var ErrInvalidSessionToken = errors.New("invalid session token")

// SessionClaims is the JWT payload handed to a store at connect time and
// presented back as a bearer token on authenticated endpoints.
type SessionClaims struct {
	StoreID string `json:"store_id"`
	Domain  string `json:"domain"`
	jwt.StandardClaims
}

// IssueSessionToken signs a session token for a connected store.
func (s *Service) IssueSessionToken(st *models.Store) (string, error) {
	now := time.Now()
	ttl := s.cfg.Auth.TokenTTL
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	claims := SessionClaims{
		StoreID: st.ID,
		Domain:  st.Domain,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
			Subject:   st.ID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Auth.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// ParseSessionToken verifies a bearer token and returns its claims.
func (s *Service) ParseSessionToken(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.Auth.JWTSecret), nil
	})
	if err != nil || !token.Valid || claims.StoreID == "" {
		return nil, ErrInvalidSessionToken
	}
	return claims, nil
}
