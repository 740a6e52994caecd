package services

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/recorre/indie-comments-cloud/internal/types"
)

// TokenService issues and verifies the HS256 session tokens that replaced
// the plaintext localStorage session of the original panel. Tokens are
// stateless; there is no server-side revocation.
type TokenService struct {
	secret   []byte
	validity time.Duration
}

// NewTokenService constructs a TokenService.
func NewTokenService(secret string, validity time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), validity: validity}
}

type sessionClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
}

// Issue mints a token for the given user id.
func (s *TokenService) Issue(userID uint64) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.validity)),
		},
		UserID: strconv.FormatUint(userID, 10),
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// Verify parses and validates a token and returns the user id it carries.
// Any failure, including expiry, surfaces as an auth error.
func (s *TokenService) Verify(tokenString string) (uint64, error) {
	claims := &sessionClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, types.AuthError("Invalid or expired session.")
	}

	userID, err := strconv.ParseUint(claims.UserID, 10, 64)
	if err != nil || userID == 0 {
		return 0, types.AuthError("Invalid or expired session.")
	}
	return userID, nil
}
