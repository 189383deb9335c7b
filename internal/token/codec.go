package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token types carried in the "typ" claim. Access tokens authenticate API
// calls; refresh tokens may only be exchanged for a new pair.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims is the payload of a signed token.
type Claims struct {
	// TokenType distinguishes access from refresh tokens. Kept for
	// revocation-readiness together with the jti registered claim.
	TokenType string `json:"typ,omitempty"`
	jwt.RegisteredClaims
}

// UserID returns the subject the token was issued for.
func (c *Claims) UserID() string {
	return c.RegisteredClaims.Subject
}

// Codec signs and verifies HS256 JWTs. It is the process's only token
// authority; handlers and middleware never touch key material directly.
type Codec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration

	// now is override-able in tests.
	now func() time.Time
}

func NewCodec(secret string, accessTTL, refreshTTL time.Duration) *Codec {
	return &Codec{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// SignAccess issues an access token for the given subject.
func (c *Codec) SignAccess(subject string) (string, error) {
	return c.sign(subject, TypeAccess, c.accessTTL)
}

// SignRefresh issues a refresh token for the given subject.
func (c *Codec) SignRefresh(subject string) (string, error) {
	return c.sign(subject, TypeRefresh, c.refreshTTL)
}

func (c *Codec) sign(subject, tokenType string, ttl time.Duration) (string, error) {
	now := c.now()
	claims := Claims{
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token string: signature, structure, and
// expiry against the codec's clock. It does not care about the token type;
// callers that require an access token must check Claims.TokenType.
func (c *Codec) Verify(tokenString string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return c.now() }))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, ErrInvalidToken
	}
	if claims.ExpiresAt == nil || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
