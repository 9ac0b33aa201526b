package dto

import (
	"time"

	"github.com/spec-kit/bookstore-service/internal/domain"
)

// ProductCreateRequest payload for the admin create-product endpoint.
type ProductCreateRequest struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price"`
	Category    string `json:"category"`
	CoverURL    string `json:"coverUrl"`
}

// ProductResponse is the catalog entry as served to clients.
type ProductResponse struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Author            string    `json:"author"`
	Description       string    `json:"description"`
	PriceCents        int64     `json:"price"`
	Category          string    `json:"category"`
	CoverURL          string    `json:"coverUrl"`
	ExternalProductID *string   `json:"productId,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
}

// ProductListResponse wraps a catalog listing.
type ProductListResponse struct {
	Message string            `json:"message"`
	Data    []ProductResponse `json:"data"`
}

// NewProductResponse maps the domain model.
func NewProductResponse(p *domain.Product) ProductResponse {
	return ProductResponse{
		ID:                p.ID,
		Title:             p.Title,
		Author:            p.Author,
		Description:       p.Description,
		PriceCents:        p.PriceCents,
		Category:          p.Category,
		CoverURL:          p.CoverURL,
		ExternalProductID: p.ExternalProductID,
		CreatedAt:         p.CreatedAt,
	}
}

// NewProductListResponse maps a slice of domain models.
func NewProductListResponse(message string, products []domain.Product) ProductListResponse {
	out := make([]ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, NewProductResponse(&products[i]))
	}
	return ProductListResponse{Message: message, Data: out}
}
