package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bookstore-service/internal/api/dto"
	"github.com/spec-kit/bookstore-service/internal/service"
	apperrors "github.com/spec-kit/bookstore-service/pkg/util"
)

// ProductsHandler exposes catalog listing and the admin create-product flow.
type ProductsHandler struct {
	catalog *service.CatalogService
}

// NewProductsHandler constructs handler.
func NewProductsHandler(catalog *service.CatalogService) *ProductsHandler {
	return &ProductsHandler{catalog: catalog}
}

// Create handles POST /api/products. Partial failures surface as a single
// generic rejection; internal state stays resumable either way.
func (h *ProductsHandler) Create(c *fiber.Ctx) error {
	var req dto.ProductCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	product, err := h.catalog.CreateProduct(c.UserContext(), service.ProductCreateInput{
		Title:       req.Title,
		Author:      req.Author,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Category:    req.Category,
		CoverURL:    req.CoverURL,
	})
	if err != nil {
		var orchErr *service.OrchestrationError
		if errors.As(err, &orchErr) {
			return apperrors.NewDomainError(phaseCode(orchErr.Phase), "failed to add product", http.StatusBadGateway, nil)
		}
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message":   "successfully added the product",
		"productId": product.ExternalProductID,
	})
}

// List handles GET /api/books.
func (h *ProductsHandler) List(c *fiber.Ctx) error {
	products, err := h.catalog.List(c.UserContext())
	if err != nil {
		return apperrors.NewStoreUnavailable("catalog", err)
	}
	return c.JSON(dto.NewProductListResponse("successfully retrieved books", products))
}

// ListByCategory handles GET /api/books/:category.
func (h *ProductsHandler) ListByCategory(c *fiber.Ctx) error {
	category := c.Params("category")
	products, err := h.catalog.ListByCategory(c.UserContext(), category)
	if err != nil {
		return apperrors.NewStoreUnavailable("catalog", err)
	}
	return c.JSON(dto.NewProductListResponse("successfully retrieved books", products))
}

func phaseCode(phase service.Phase) string {
	switch phase {
	case service.PhaseCatalogWrite:
		return apperrors.CodeCatalogWriteFailed
	case service.PhaseProcessorWrite:
		return apperrors.CodeProcessorWriteFailed
	default:
		return apperrors.CodeLinkWriteFailed
	}
}
