package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bookstore-service/internal/api/dto"
	"github.com/spec-kit/bookstore-service/internal/service"
	apperrors "github.com/spec-kit/bookstore-service/pkg/util"
)

// refreshCookieName is the transport channel for refresh tokens. The cookie
// is HttpOnly so scripts can never read it.
const refreshCookieName = "jwt"

// AuthHandler exposes sign-up, sign-in, sign-out and token refresh.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Register handles POST /api/users/create.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	if _, err := h.auth.Register(c.UserContext(), req.Email, req.Password); err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			return apperrors.NewConflict("user registration failed", nil)
		}
		return err
	}

	return c.Status(http.StatusCreated).JSON(dto.MessageResponse{Message: "registration successful"})
}

// SignIn handles POST /api/authentication. On success the refresh token is
// set as an HttpOnly cookie and the access token returned in the body.
func (h *AuthHandler) SignIn(c *fiber.Ctx) error {
	var req dto.SignInRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	user, pair, err := h.auth.SignIn(c.UserContext(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return apperrors.NewAuthenticationFailed()
		}
		return err
	}

	h.setRefreshCookie(c, pair.RefreshToken, pair.RefreshExpiresAt)
	return c.JSON(dto.SignInResponse{
		Message:     "successfully signed in",
		Role:        string(user.Role),
		AccessToken: pair.AccessToken,
	})
}

// Refresh handles GET /api/token/refresh via the refresh cookie. A rotated
// pair replaces the cookie; replayed tokens are rejected identically to
// invalid ones.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	presented := c.Cookies(refreshCookieName)

	role, pair, err := h.auth.Refresh(c.UserContext(), presented)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoToken):
			return apperrors.NewDomainError(apperrors.CodeTokenInvalid, "no refresh token provided", http.StatusUnauthorized, nil)
		case errors.Is(err, service.ErrTokenInvalid), errors.Is(err, service.ErrTokenReuse):
			// reuse must look exactly like any other rejection
			h.clearRefreshCookie(c)
			return apperrors.NewDomainError(apperrors.CodeTokenInvalid, "invalid refresh token", http.StatusUnauthorized, nil)
		default:
			return err
		}
	}

	h.setRefreshCookie(c, pair.RefreshToken, pair.RefreshExpiresAt)
	return c.JSON(dto.RefreshResponse{
		Role:        string(role),
		AccessToken: pair.AccessToken,
	})
}

// SignOut handles GET /api/logout. Session removal is best-effort; the
// cookie is cleared either way.
func (h *AuthHandler) SignOut(c *fiber.Ctx) error {
	presented := c.Cookies(refreshCookieName)
	if presented == "" {
		return apperrors.NewDomainError(apperrors.CodeTokenInvalid, "no refresh token provided", http.StatusUnauthorized, nil)
	}

	err := h.auth.SignOut(c.UserContext(), presented)
	h.clearRefreshCookie(c)
	if err != nil && !errors.Is(err, service.ErrTokenInvalid) {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "successfully signed out"})
}

func (h *AuthHandler) setRefreshCookie(c *fiber.Ctx, token string, expiresAt time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Expires:  expiresAt,
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteNoneMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteNoneMode,
	})
}
