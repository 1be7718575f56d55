// Package auth implements token issuance, verification, and ownership
// authorization for the application.
package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Identity is the authenticated caller's resolved user id for the current request.
type Identity struct {
	UserID uint
}

// Verification failure kinds. ErrTokenMalformed covers structural decode and
// signature failures; ErrTokenExpired is reported only for a correctly signed
// token past its expiry.
var (
	ErrTokenMalformed = errors.New("token is malformed or forged")
	ErrTokenExpired   = errors.New("token has expired")
)

const tokenIssuer = "pulse-api"

// TokenService issues and verifies signed, expiring identity assertions.
// It is stateless; the signing secret and TTL are fixed at construction and
// shared read-only across requests.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService returns a TokenService signing with the given secret and
// issuing tokens that expire after ttl.
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl}
}

// Issue creates a signed token embedding the user id, expiring after the
// configured TTL. No state is persisted.
func (s *TokenService) Issue(userID uint) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10), // Subject (user ID as string)
		"iss": tokenIssuer,
		"exp": now.Add(s.ttl).Unix(),
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"jti": uuid.New().String(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks the token's signature and expiry against the current time and
// returns the embedded identity. Malformed and forged tokens take precedence
// over expiry: a token that fails the structure or signature check is never
// reported as merely expired, and vice versa.
func (s *TokenService) Verify(raw string) (Identity, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenMalformed
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) ||
			errors.Is(err, jwt.ErrTokenSignatureInvalid) ||
			errors.Is(err, jwt.ErrTokenUnverifiable) {
			return Identity{}, ErrTokenMalformed
		}
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, ErrTokenExpired
		}
		return Identity{}, ErrTokenMalformed
	}
	if !token.Valid {
		return Identity{}, ErrTokenMalformed
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrTokenMalformed
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return Identity{}, ErrTokenMalformed
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return Identity{}, ErrTokenMalformed
	}

	return Identity{UserID: uint(userID)}, nil
}
