// Package auth issues and verifies the opaque user tokens carried in the
// X-User-Token header (and the SSE path, where headers are unavailable).
package auth

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers expired, malformed and badly signed tokens.
var ErrInvalidToken = errors.New("invalid or expired token")

const tokenIssuer = "sternhalma-server"

// User is the authenticated identity the core consumes.
type User struct {
	ID   int
	Name string
}

// TokenInfo is the JSON response for token creation and refresh.
// CreatedAt is unix milliseconds.
type TokenInfo struct {
	Token     string `json:"token"`
	CreatedAt int64  `json:"created_at"`
	UserID    int    `json:"user_id"`
	UserName  string `json:"user_name"`
}

// Authenticator maps an opaque token to a user identity.
type Authenticator interface {
	Authenticate(token string) (User, error)
}

type claims struct {
	UserID   int    `json:"user_id"`
	UserName string `json:"user_name"`
	jwt.RegisteredClaims
}

// Service mints signed tokens embedding the user identity, so no token
// table survives in memory. User ids come from a process-wide counter.
type Service struct {
	secret []byte
	ttl    time.Duration
	nextID atomic.Int64
}

func NewService(secret string, ttl time.Duration) *Service {
	return &Service{secret: []byte(secret), ttl: ttl}
}

func (s *Service) mint(user User) (TokenInfo, error) {
	now := time.Now()
	c := claims{
		UserID:   user.ID,
		UserName: user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   fmt.Sprintf("user-%d", user.ID),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return TokenInfo{}, err
	}
	return TokenInfo{
		Token:     token,
		CreatedAt: now.UnixMilli(),
		UserID:    user.ID,
		UserName:  user.Name,
	}, nil
}

// Register allocates a fresh user id for the display name and returns
// the first token for it.
func (s *Service) Register(name string) (TokenInfo, error) {
	user := User{ID: int(s.nextID.Add(1)), Name: name}
	return s.mint(user)
}

// Authenticate verifies the token and returns the embedded identity.
func (s *Service) Authenticate(token string) (User, error) {
	parsed, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return User{}, ErrInvalidToken
	}
	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid {
		return User{}, ErrInvalidToken
	}
	return User{ID: c.UserID, Name: c.UserName}, nil
}

// Refresh mints a new token for the identity behind an existing valid
// token.
func (s *Service) Refresh(token string) (TokenInfo, error) {
	user, err := s.Authenticate(token)
	if err != nil {
		return TokenInfo{}, err
	}
	return s.mint(user)
}
