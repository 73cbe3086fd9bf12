package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/nfrund/propdesk/internal/domain"
)

// Issuer is written to and required in every access token.
const Issuer = "propdesk"

// ErrInvalidToken is returned for tokens that are malformed, expired, or signed
// with another key.
var ErrInvalidToken = errors.New("invalid or expired access token")

// Claims carried by an access token.
type Claims struct {
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256 access tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens creates a token issuer. The secret must not be empty.
func NewTokens(secret string, ttl time.Duration) (*Tokens, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("jwt ttl must be positive, got %s", ttl)
	}
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// TTL returns how long issued tokens stay valid.
func (t *Tokens) TTL() time.Duration {
	return t.ttl
}

// Issue signs a token for user and returns it with its expiry.
func (t *Tokens) Issue(user *domain.User) (string, time.Time, error) {
	now := t.now().UTC()
	expires := now.Add(t.ttl)
	claims := Claims{
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expires, nil
}

// Parse verifies a token and returns its claims.
func (t *Tokens) Parse(token string) (*Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return &claims, nil
}
