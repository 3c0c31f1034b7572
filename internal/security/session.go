package security

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionClaims is the identity a session token asserts. Only identity is
// trusted from the token; status and permissions are always re-read from
// the store by the caller.
type SessionClaims struct {
	UserID uint
	Role   string
}

type sessionTokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// SessionCodec issues and verifies the signed session token. It is a pure
// function of the token and the signing secret; rotating the secret
// invalidates every outstanding session.
type SessionCodec struct {
	secret []byte
	ttl    time.Duration
}

func NewSessionCodec(secret string, ttl time.Duration) *SessionCodec {
	return &SessionCodec{secret: []byte(secret), ttl: ttl}
}

func (c *SessionCodec) TTL() time.Duration { return c.ttl }

func (c *SessionCodec) Issue(userID uint, roleName string) (string, error) {
	if len(c.secret) == 0 {
		return "", errors.New("session codec: missing signing secret")
	}
	now := time.Now()
	claims := sessionTokenClaims{
		Role: roleName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Verify returns nil on any failure: missing token, malformed token, bad
// signature, or expiry. Callers must treat nil identically regardless of
// cause; there is no distinction between "no session" and "bad session".
func (c *SessionCodec) Verify(token string) *SessionClaims {
	if token == "" {
		return nil
	}
	var claims sessionTokenClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return c.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return nil
	}
	id64, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id64 == 0 {
		return nil
	}
	return &SessionClaims{UserID: uint(id64), Role: claims.Role}
}
