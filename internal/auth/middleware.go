package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bookstore-service/internal/domain"
	apperrors "github.com/spec-kit/bookstore-service/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller as proven by an access token.
// It is claims-only: access tokens are stateless, so no store lookup happens
// on the request path.
type Principal struct {
	Subject string
	Role    domain.Role
}

// Middleware validates bearer access tokens and stores the principal.
type Middleware struct {
	codec *TokenCodec
}

// NewMiddleware constructs middleware.
func NewMiddleware(codec *TokenCodec) *Middleware {
	return &Middleware{codec: codec}
}

// Handle enforces authentication for protected routes.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.codec.Verify(parts[1], domain.TokenKindAccess)
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	c.Locals(principalKey, &Principal{Subject: claims.Subject, Role: claims.Role})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated caller.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
