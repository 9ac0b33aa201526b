package dto

import "github.com/spec-kit/bookstore-service/internal/domain"

// CartAddRequest payload for adding an item.
type CartAddRequest struct {
	Item string `json:"item"`
}

// CartUpdateRequest payload for PUT /api/cart/:id. When Set is false the
// quantity is incremented by one; otherwise it is set to Quantity.
type CartUpdateRequest struct {
	Set      bool  `json:"set"`
	Quantity int64 `json:"quantity"`
}

// CartResponse lists the cart lines.
type CartResponse struct {
	Items []domain.CartLine `json:"items"`
}
