package domain

import "time"

// TokenKind distinguishes the two credential classes the codec issues.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// TokenPair bundles the credentials minted on sign-in and refresh. The refresh
// token travels only via the cookie channel, never in a response body.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}
