package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/bookstore-service/internal/domain"
)

const testSecret = "test-secret"

func newTestCodec() *TokenCodec {
	return NewTokenCodec(testSecret, 15*time.Minute, 24*time.Hour)
}

func TestIssueAccessToken_RoundTrip(t *testing.T) {
	codec := newTestCodec()

	token, expiresAt, err := codec.IssueAccessToken("alice", domain.RoleCustomer)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.True(t, expiresAt.After(time.Now()))

	claims, err := codec.Verify(token, domain.TokenKindAccess)
	require.NoError(t, err)
	require.Equal(t, "alice", claims.Subject)
	require.Equal(t, domain.RoleCustomer, claims.Role)
	require.Equal(t, domain.TokenKindAccess, claims.Kind)
}

func TestIssueRefreshToken_Distinct(t *testing.T) {
	codec := newTestCodec()

	first, _, err := codec.IssueRefreshToken("alice")
	require.NoError(t, err)
	second, _, err := codec.IssueRefreshToken("alice")
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	claims, err := codec.Verify(first, domain.TokenKindRefresh)
	require.NoError(t, err)
	require.Equal(t, "alice", claims.Subject)
	require.Empty(t, claims.Role)
}

func TestVerify_KindMismatch(t *testing.T) {
	codec := newTestCodec()

	access, _, err := codec.IssueAccessToken("alice", domain.RoleAdmin)
	require.NoError(t, err)
	refresh, _, err := codec.IssueRefreshToken("alice")
	require.NoError(t, err)

	_, err = codec.Verify(access, domain.TokenKindRefresh)
	require.ErrorIs(t, err, ErrTokenKindMismatch)
	_, err = codec.Verify(refresh, domain.TokenKindAccess)
	require.ErrorIs(t, err, ErrTokenKindMismatch)
}

func TestVerify_Expired(t *testing.T) {
	codec := newTestCodec()

	claims := &Claims{
		Kind: domain.TokenKindRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = codec.Verify(signed, domain.TokenKindRefresh)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerify_Malformed(t *testing.T) {
	codec := newTestCodec()

	_, err := codec.Verify("not-a-token", domain.TokenKindAccess)
	require.ErrorIs(t, err, ErrTokenMalformed)

	// valid token, wrong key
	other := NewTokenCodec("other-secret", time.Minute, time.Hour)
	token, _, err := other.IssueAccessToken("alice", domain.RoleCustomer)
	require.NoError(t, err)
	_, err = codec.Verify(token, domain.TokenKindAccess)
	require.ErrorIs(t, err, ErrTokenMalformed)
}
