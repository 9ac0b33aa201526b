package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/bookstore-service/internal/domain"
	"github.com/spec-kit/bookstore-service/internal/events"
	"github.com/spec-kit/bookstore-service/internal/payment"
	"github.com/spec-kit/bookstore-service/internal/repository"
	apperrors "github.com/spec-kit/bookstore-service/pkg/util"
)

// Phase names the step of the product-creation workflow an error came from.
type Phase string

const (
	PhaseCatalogWrite   Phase = "catalog_write"
	PhaseProcessorWrite Phase = "processor_write"
	PhaseLinkWrite      Phase = "link_write"
)

// OrchestrationError reports which phase failed and the catalog id a
// reconciliation pass can resume from. Clients never see these details.
type OrchestrationError struct {
	Phase     Phase
	CatalogID string
	Err       error
}

func (e *OrchestrationError) Error() string {
	if e.CatalogID == "" {
		return fmt.Sprintf("phase %s failed: %v", e.Phase, e.Err)
	}
	return fmt.Sprintf("phase %s failed for catalog id %s: %v", e.Phase, e.CatalogID, e.Err)
}

func (e *OrchestrationError) Unwrap() error {
	return e.Err
}

// ProductCreateInput describes the catalog fields for a new book.
type ProductCreateInput struct {
	Title       string
	Author      string
	Description string
	PriceCents  int64
	Category    string
	CoverURL    string
}

// CatalogService runs the two-phase product creation against the catalog
// store and the payment processor. There is no rollback: every intermediate
// state is durable and resumable, keyed by the catalog id.
type CatalogService struct {
	products   repository.ProductRepository
	processor  payment.Client
	dispatcher events.Dispatcher
	logger     *zap.Logger

	linkRetryBudget int
	linkRetryDelay  time.Duration
}

// CatalogDependencies bundles collaborators for the catalog service.
type CatalogDependencies struct {
	ProductRepo repository.ProductRepository
	Processor   payment.Client
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// NewCatalogService constructs the service.
func NewCatalogService(deps CatalogDependencies, linkRetryBudget int) *CatalogService {
	if linkRetryBudget <= 0 {
		linkRetryBudget = 3
	}
	return &CatalogService{
		products:        deps.ProductRepo,
		processor:       deps.Processor,
		dispatcher:      deps.Dispatcher,
		logger:          deps.Logger,
		linkRetryBudget: linkRetryBudget,
		linkRetryDelay:  200 * time.Millisecond,
	}
}

// CreateProduct inserts the catalog record, registers it with the payment
// processor using the catalog id as correlation key, and links the returned
// external id back. A failure in a later phase leaves the earlier writes in
// place for reconciliation.
func (s *CatalogService) CreateProduct(ctx context.Context, input ProductCreateInput) (*domain.Product, error) {
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Category) == "" {
		return nil, apperrors.NewValidationError("title and category required", nil)
	}
	if input.PriceCents < 0 {
		return nil, apperrors.NewValidationError("price must not be negative", nil)
	}

	product := &domain.Product{
		Title:       input.Title,
		Author:      input.Author,
		Description: input.Description,
		PriceCents:  input.PriceCents,
		Category:    NormalizeCategory(input.Category),
		CoverURL:    input.CoverURL,
	}
	if err := s.products.Insert(ctx, product); err != nil {
		return nil, &OrchestrationError{Phase: PhaseCatalogWrite, Err: err}
	}

	if err := s.Register(ctx, product); err != nil {
		return product, err
	}
	return product, nil
}

// Register drives phases 2 and 3 for an existing catalog record. It is the
// resume path: calling it again for the same product is safe because the
// processor deduplicates on the catalog id.
func (s *CatalogService) Register(ctx context.Context, product *domain.Product) error {
	externalID, err := s.processor.CreateProduct(ctx, payment.ProductFields{
		Title:       product.Title,
		Description: product.Description,
		Category:    product.Category,
		PriceCents:  product.PriceCents,
	}, product.ID)
	if err != nil {
		s.logger.Error("processor registration failed; catalog record orphaned",
			zap.String("catalog_id", product.ID), zap.Error(err))
		s.publishOrphaned(ctx, product.ID, PhaseProcessorWrite)
		return &OrchestrationError{Phase: PhaseProcessorWrite, CatalogID: product.ID, Err: err}
	}

	if err := s.link(ctx, product, externalID); err != nil {
		return err
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventProductLinked,
			Subject:   product.ID,
			Timestamp: time.Now(),
			Payload:   events.ProductLinkedPayload{ProductID: product.ID, ExternalProductID: externalID},
		})
	}
	return nil
}

// link persists the external id, retrying within the budget. An unpersisted
// link is the most dangerous intermediate state: the processor-side record
// exists with no durable pointer from the catalog.
func (s *CatalogService) link(ctx context.Context, product *domain.Product, externalID string) error {
	var lastErr error
	for attempt := 0; attempt < s.linkRetryBudget; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(s.linkRetryDelay):
			}
			if err := ctx.Err(); err != nil {
				lastErr = err
				break
			}
		}
		if err := s.products.SetExternalID(ctx, product.ID, externalID); err != nil {
			lastErr = err
			continue
		}
		product.ExternalProductID = &externalID
		return nil
	}

	s.logger.Error("link write failed after retry budget; manual reconciliation required",
		zap.String("catalog_id", product.ID),
		zap.String("external_product_id", externalID),
		zap.Error(lastErr))
	s.publishOrphaned(ctx, product.ID, PhaseLinkWrite)
	return &OrchestrationError{Phase: PhaseLinkWrite, CatalogID: product.ID, Err: lastErr}
}

func (s *CatalogService) publishOrphaned(ctx context.Context, productID string, phase Phase) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventProductOrphaned,
		Subject:   productID,
		Timestamp: time.Now(),
		Payload:   events.ProductOrphanedPayload{ProductID: productID, Phase: string(phase)},
	})
}

// List returns the whole catalog.
func (s *CatalogService) List(ctx context.Context) ([]domain.Product, error) {
	return s.products.List(ctx)
}

// ListByCategory returns catalog entries for a category, including orphans.
func (s *CatalogService) ListByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	return s.products.ListByCategory(ctx, NormalizeCategory(category))
}

// ListOrphans returns catalog records with no linked external id.
func (s *CatalogService) ListOrphans(ctx context.Context, limit int) ([]domain.Product, error) {
	return s.products.ListOrphans(ctx, limit)
}

// GetByID returns a single catalog record.
func (s *CatalogService) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	return s.products.GetByID(ctx, id)
}

// NormalizeCategory folds route-level aliases onto stored category names.
func NormalizeCategory(category string) string {
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "best-sellers" {
		return "best seller"
	}
	return category
}
