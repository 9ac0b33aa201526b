package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/bookstore-service/internal/domain"
)

// Codec errors. Verification is pure; it never consults the session store.
var (
	ErrTokenExpired      = errors.New("token expired")
	ErrTokenMalformed    = errors.New("token malformed")
	ErrTokenKindMismatch = errors.New("token kind mismatch")
)

// TokenCodec issues and verifies the two signed token classes.
type TokenCodec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenCodec builds a new codec.
func NewTokenCodec(secret string, accessTTL, refreshTTL time.Duration) *TokenCodec {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 24 * time.Hour
	}
	return &TokenCodec{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// Claims describes the JWT payload for both token kinds. Role is only present
// on access tokens; Kind discriminates the two classes at verification time.
type Claims struct {
	Kind domain.TokenKind `json:"kind"`
	Role domain.Role      `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// IssueAccessToken signs a short-lived token carrying subject and role.
func (c *TokenCodec) IssueAccessToken(subject string, role domain.Role) (string, time.Time, error) {
	return c.sign(subject, domain.TokenKindAccess, role, c.accessTTL)
}

// IssueRefreshToken signs a long-lived token carrying only the subject. The
// jti claim makes every issued token distinct, so rotation always produces a
// token unequal to its predecessor.
func (c *TokenCodec) IssueRefreshToken(subject string) (string, time.Time, error) {
	return c.sign(subject, domain.TokenKindRefresh, "", c.refreshTTL)
}

func (c *TokenCodec) sign(subject string, kind domain.TokenKind, role domain.Role, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := &Claims{
		Kind: kind,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// Verify validates signature, expiry and kind, returning the claims.
func (c *TokenCodec) Verify(tokenStr string, expected domain.TokenKind) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, ErrTokenMalformed
		}
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenMalformed
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrTokenMalformed
	}
	if claims.Kind != expected {
		return nil, ErrTokenKindMismatch
	}
	return claims, nil
}
