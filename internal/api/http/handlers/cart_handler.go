package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bookstore-service/internal/api/dto"
	"github.com/spec-kit/bookstore-service/internal/auth"
	"github.com/spec-kit/bookstore-service/internal/service"
	apperrors "github.com/spec-kit/bookstore-service/pkg/util"
)

// CartHandler exposes per-subject cart operations. Carts are keyed by the
// authenticated principal.
type CartHandler struct {
	cart *service.CartService
}

// NewCartHandler constructs handler.
func NewCartHandler(cartService *service.CartService) *CartHandler {
	return &CartHandler{cart: cartService}
}

// Get handles GET /api/cart.
func (h *CartHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	items, err := h.cart.Items(c.UserContext(), principal.Subject)
	if err != nil {
		return err
	}
	return c.JSON(dto.CartResponse{Items: items})
}

// Add handles POST /api/cart.
func (h *CartHandler) Add(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.CartAddRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	if _, err := h.cart.AddItem(c.UserContext(), principal.Subject, req.Item); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.MessageResponse{Message: "successfully added item to the cart"})
}

// Update handles PUT /api/cart/:id: an increment by default, or an explicit
// set when the payload says so.
func (h *CartHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	itemID := c.Params("id")

	var req dto.CartUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	if req.Set {
		if err := h.cart.SetQuantity(c.UserContext(), principal.Subject, itemID, req.Quantity); err != nil {
			return err
		}
		return c.JSON(dto.MessageResponse{Message: "successfully set item quantity"})
	}

	if _, err := h.cart.Increment(c.UserContext(), principal.Subject, itemID); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "successfully updated item quantity"})
}

// Remove handles DELETE /api/cart/:id.
func (h *CartHandler) Remove(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	if err := h.cart.RemoveItem(c.UserContext(), principal.Subject, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "successfully removed item from the cart"})
}

// Clear handles DELETE /api/cart.
func (h *CartHandler) Clear(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	if err := h.cart.Clear(c.UserContext(), principal.Subject); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "successfully cleared the cart"})
}
