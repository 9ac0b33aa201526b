package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/bookstore-service/internal/domain"
)

// ProductRepository encapsulates catalog persistence. SetExternalID is the
// phase 3 link write; ListOrphans feeds the reconciliation worker.
type ProductRepository interface {
	Insert(ctx context.Context, product *domain.Product) error
	SetExternalID(ctx context.Context, id, externalID string) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
	ListByCategory(ctx context.Context, category string) ([]domain.Product, error)
	ListOrphans(ctx context.Context, limit int) ([]domain.Product, error)
}

type productRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a Postgres-backed implementation.
func NewProductRepository(pool *pgxpool.Pool) ProductRepository {
	return &productRepository{pool: pool}
}

func (r *productRepository) Insert(ctx context.Context, product *domain.Product) error {
	const query = `
        INSERT INTO products (title, author, description, price_cents, category, cover_url)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		product.Title,
		product.Author,
		product.Description,
		product.PriceCents,
		product.Category,
		product.CoverURL,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
}

func (r *productRepository) SetExternalID(ctx context.Context, id, externalID string) error {
	const query = `
        UPDATE products SET external_product_id=$1, updated_at=NOW()
        WHERE id=$2`

	cmd, err := r.pool.Exec(ctx, query, externalID, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *productRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	const query = `
        SELECT id, title, author, description, price_cents, category, cover_url, external_product_id, created_at, updated_at
        FROM products WHERE id=$1`

	var product domain.Product
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&product.ID,
		&product.Title,
		&product.Author,
		&product.Description,
		&product.PriceCents,
		&product.Category,
		&product.CoverURL,
		&product.ExternalProductID,
		&product.CreatedAt,
		&product.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) List(ctx context.Context) ([]domain.Product, error) {
	const query = `
        SELECT id, title, author, description, price_cents, category, cover_url, external_product_id, created_at, updated_at
        FROM products ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

func (r *productRepository) ListByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	const query = `
        SELECT id, title, author, description, price_cents, category, cover_url, external_product_id, created_at, updated_at
        FROM products WHERE category=$1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

func (r *productRepository) ListOrphans(ctx context.Context, limit int) ([]domain.Product, error) {
	const query = `
        SELECT id, title, author, description, price_cents, category, cover_url, external_product_id, created_at, updated_at
        FROM products WHERE external_product_id IS NULL ORDER BY created_at ASC LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

func scanProducts(rows pgx.Rows) ([]domain.Product, error) {
	products := make([]domain.Product, 0)
	for rows.Next() {
		var product domain.Product
		if err := rows.Scan(
			&product.ID,
			&product.Title,
			&product.Author,
			&product.Description,
			&product.PriceCents,
			&product.Category,
			&product.CoverURL,
			&product.ExternalProductID,
			&product.CreatedAt,
			&product.UpdatedAt,
		); err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}
