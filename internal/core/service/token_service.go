package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iwc-recycling/accounts-api/internal/core/domain"
)

const defaultTokenTTL = 30 * 24 * time.Hour

// TokenService issues and verifies HS256-signed session tokens. A token binds
// an account id to a fixed validity window; nothing is stored server-side,
// so validity is purely signature plus expiry.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token for the account, valid from now until now+ttl.
func (s *TokenService) Issue(accountID string) (string, error) {
	return s.issueAt(accountID, time.Now())
}

func (s *TokenService) issueAt(accountID string, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   accountID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

// Verify checks signature and expiry and returns the bound account id.
// Expired tokens fail with domain.ErrTokenExpired; anything else malformed or
// tampered fails with domain.ErrTokenInvalid.
func (s *TokenService) Verify(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", domain.ErrTokenExpired
		}
		return "", domain.ErrTokenInvalid
	}
	if !tkn.Valid || claims.Subject == "" {
		return "", domain.ErrTokenInvalid
	}
	return claims.Subject, nil
}
