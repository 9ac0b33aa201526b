package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/bookstore-service/internal/domain"
	"github.com/spec-kit/bookstore-service/internal/payment"
)

type memProductRepo struct {
	mu        sync.Mutex
	seq       int
	products  map[string]*domain.Product
	insertErr error
	linkErr   error
	linkTries int
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{products: make(map[string]*domain.Product)}
}

func (r *memProductRepo) Insert(_ context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return r.insertErr
	}
	r.seq++
	product.ID = fmt.Sprintf("prod-%d", r.seq)
	copied := *product
	r.products[product.ID] = &copied
	return nil
}

func (r *memProductRepo) SetExternalID(_ context.Context, id, externalID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.linkTries++
	if r.linkErr != nil {
		return r.linkErr
	}
	r.products[id].ExternalProductID = &externalID
	return nil
}

func (r *memProductRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	product, ok := r.products[id]
	if !ok {
		return nil, errors.New("not found")
	}
	copied := *product
	return &copied, nil
}

func (r *memProductRepo) List(_ context.Context) ([]domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Product, 0, len(r.products))
	for _, product := range r.products {
		out = append(out, *product)
	}
	return out, nil
}

func (r *memProductRepo) ListByCategory(_ context.Context, category string) ([]domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Product, 0)
	for _, product := range r.products {
		if product.Category == category {
			out = append(out, *product)
		}
	}
	return out, nil
}

func (r *memProductRepo) ListOrphans(_ context.Context, limit int) ([]domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Product, 0)
	for _, product := range r.products {
		if product.ExternalProductID == nil && len(out) < limit {
			out = append(out, *product)
		}
	}
	return out, nil
}

// stubProcessor is idempotent on the correlation key, like the real one.
type stubProcessor struct {
	mu    sync.Mutex
	fail  bool
	calls map[string]int
}

func newStubProcessor() *stubProcessor {
	return &stubProcessor{calls: make(map[string]int)}
}

func (p *stubProcessor) CreateProduct(_ context.Context, _ payment.ProductFields, correlationKey string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return "", errors.New("processor unreachable")
	}
	p.calls[correlationKey]++
	return "ext-" + correlationKey, nil
}

func (p *stubProcessor) registrations() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

func newCatalogFixture() (*CatalogService, *memProductRepo, *stubProcessor) {
	repo := newMemProductRepo()
	processor := newStubProcessor()
	svc := NewCatalogService(CatalogDependencies{
		ProductRepo: repo,
		Processor:   processor,
		Logger:      zap.NewNop(),
	}, 3)
	svc.linkRetryDelay = 0
	return svc, repo, processor
}

func fictionInput() ProductCreateInput {
	return ProductCreateInput{Title: "Foo", Author: "Bar", PriceCents: 999, Category: "fiction"}
}

func TestCreateProduct_AllPhasesSucceed(t *testing.T) {
	ctx := context.Background()
	svc, repo, processor := newCatalogFixture()

	product, err := svc.CreateProduct(ctx, fictionInput())
	require.NoError(t, err)
	require.True(t, product.Linked())
	require.Equal(t, "ext-"+product.ID, *product.ExternalProductID)
	require.Equal(t, 1, processor.registrations())

	stored, err := repo.GetByID(ctx, product.ID)
	require.NoError(t, err)
	require.True(t, stored.Linked())
}

func TestCreateProduct_CatalogWriteFails(t *testing.T) {
	ctx := context.Background()
	svc, repo, processor := newCatalogFixture()
	repo.insertErr = errors.New("insert rejected")

	_, err := svc.CreateProduct(ctx, fictionInput())

	var orchErr *OrchestrationError
	require.ErrorAs(t, err, &orchErr)
	require.Equal(t, PhaseCatalogWrite, orchErr.Phase)
	// no later phase ran
	require.Equal(t, 0, processor.registrations())
}

func TestCreateProduct_ProcessorFails_OrphanRemains(t *testing.T) {
	ctx := context.Background()
	svc, _, processor := newCatalogFixture()
	processor.fail = true

	product, err := svc.CreateProduct(ctx, fictionInput())

	var orchErr *OrchestrationError
	require.ErrorAs(t, err, &orchErr)
	require.Equal(t, PhaseProcessorWrite, orchErr.Phase)
	require.Equal(t, product.ID, orchErr.CatalogID)

	// the catalog record survives as an inspectable orphan
	listed, listErr := svc.ListByCategory(ctx, "fiction")
	require.NoError(t, listErr)
	require.Len(t, listed, 1)
	require.Equal(t, "Foo", listed[0].Title)
	require.False(t, listed[0].Linked())
}

func TestRegister_ResumeAfterProcessorFailure(t *testing.T) {
	ctx := context.Background()
	svc, repo, processor := newCatalogFixture()
	processor.fail = true

	product, err := svc.CreateProduct(ctx, fictionInput())
	require.Error(t, err)

	// processor recovers; re-drive phases 2 and 3 with the same catalog id
	processor.fail = false
	orphans, err := svc.ListOrphans(ctx, 10)
	require.NoError(t, err)
	require.Len(t, orphans, 1)

	require.NoError(t, svc.Register(ctx, &orphans[0]))

	// exactly one external record exists and the link is durable
	require.Equal(t, 1, processor.registrations())
	stored, err := repo.GetByID(ctx, product.ID)
	require.NoError(t, err)
	require.Equal(t, "ext-"+product.ID, *stored.ExternalProductID)
}

func TestCreateProduct_LinkWriteExhaustsBudget(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newCatalogFixture()
	repo.linkErr = errors.New("update lost")

	product, err := svc.CreateProduct(ctx, fictionInput())

	var orchErr *OrchestrationError
	require.ErrorAs(t, err, &orchErr)
	require.Equal(t, PhaseLinkWrite, orchErr.Phase)
	require.Equal(t, product.ID, orchErr.CatalogID)
	require.Equal(t, 3, repo.linkTries)
}

func TestCreateProduct_RejectsMissingFields(t *testing.T) {
	ctx := context.Background()
	svc, _, processor := newCatalogFixture()

	_, err := svc.CreateProduct(ctx, ProductCreateInput{Title: "", Category: "fiction"})
	require.Error(t, err)
	_, err = svc.CreateProduct(ctx, ProductCreateInput{Title: "Foo", Category: "fiction", PriceCents: -1})
	require.Error(t, err)
	require.Equal(t, 0, processor.registrations())
}

func TestNormalizeCategory(t *testing.T) {
	require.Equal(t, "best seller", NormalizeCategory("Best-Sellers"))
	require.Equal(t, "fiction", NormalizeCategory(" Fiction "))
}
