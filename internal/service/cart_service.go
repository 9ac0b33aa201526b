package service

import (
	"context"
	"strings"

	"github.com/spec-kit/bookstore-service/internal/domain"
	"github.com/spec-kit/bookstore-service/internal/repository"
	apperrors "github.com/spec-kit/bookstore-service/pkg/util"
)

// CartService applies quantity transitions to cart line items. Quantities are
// always non-negative; setting a line to zero removes it.
type CartService struct {
	carts repository.CartRepository
}

// NewCartService constructs the service.
func NewCartService(carts repository.CartRepository) *CartService {
	return &CartService{carts: carts}
}

// Items returns the current cart lines.
func (s *CartService) Items(ctx context.Context, cartID string) ([]domain.CartLine, error) {
	lines, err := s.carts.Items(ctx, cartID)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable("cart", err)
	}
	return lines, nil
}

// AddItem creates the line at quantity 1, or bumps an existing line.
func (s *CartService) AddItem(ctx context.Context, cartID, itemID string) (int64, error) {
	return s.Increment(ctx, cartID, itemID)
}

// Increment raises the line quantity by one, creating the line when absent.
func (s *CartService) Increment(ctx context.Context, cartID, itemID string) (int64, error) {
	if strings.TrimSpace(itemID) == "" {
		return 0, apperrors.NewValidationError("item id required", nil)
	}
	quantity, err := s.carts.Increment(ctx, cartID, itemID)
	if err != nil {
		return 0, apperrors.NewStoreUnavailable("cart", err)
	}
	return quantity, nil
}

// SetQuantity sets the line to an explicit value. Zero removes the line;
// negative input is rejected without touching the stored quantity.
func (s *CartService) SetQuantity(ctx context.Context, cartID, itemID string, quantity int64) error {
	if strings.TrimSpace(itemID) == "" {
		return apperrors.NewValidationError("item id required", nil)
	}
	if quantity < 0 {
		return apperrors.NewInvalidQuantity("quantity must not be negative")
	}
	if err := s.carts.SetQuantity(ctx, cartID, itemID, quantity); err != nil {
		return apperrors.NewStoreUnavailable("cart", err)
	}
	return nil
}

// RemoveItem deletes a line. Removing an absent line is a no-op success.
func (s *CartService) RemoveItem(ctx context.Context, cartID, itemID string) error {
	if err := s.carts.RemoveItem(ctx, cartID, itemID); err != nil {
		return apperrors.NewStoreUnavailable("cart", err)
	}
	return nil
}

// Clear empties the cart.
func (s *CartService) Clear(ctx context.Context, cartID string) error {
	if err := s.carts.Clear(ctx, cartID); err != nil {
		return apperrors.NewStoreUnavailable("cart", err)
	}
	return nil
}
