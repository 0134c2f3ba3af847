package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/benx421/ledger/internal/db"
	"github.com/benx421/ledger/internal/models"
	"github.com/google/uuid"
)

// ProductRepository provides the product lookups the ledger depends on
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindBySlug(ctx context.Context, slug string) (*models.Product, error)
}

type productRepository struct {
	db db.DBTX
}

// NewProductRepository creates a new ProductRepository
func NewProductRepository(database db.DBTX) ProductRepository {
	return &productRepository{db: database}
}

const productColumns = `
		SELECT id, name, slug, description, maximum_amount_cents, created_at
		FROM products
`

// Create inserts a product, deriving its slug from the name when unset
func (r *productRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if product.Slug == "" {
		product.Slug = models.Slugify(product.Name)
	}
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO products (id, name, slug, description, maximum_amount_cents, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		product.ID,
		product.Name,
		product.Slug,
		product.Description,
		product.MaximumAmountCents,
		product.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// FindByID retrieves a product by its UUID
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return r.findOne(ctx, productColumns+`WHERE id = $1`, id)
}

// FindBySlug retrieves a product by its slug
func (r *productRepository) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	return r.findOne(ctx, productColumns+`WHERE slug = $1`, slug)
}

func (r *productRepository) findOne(ctx context.Context, query string, arg any) (*models.Product, error) {
	var product models.Product
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&product.ID,
		&product.Name,
		&product.Slug,
		&product.Description,
		&product.MaximumAmountCents,
		&product.CreatedAt,
	)
	if err != nil {
		return nil, wrapProductErr(err)
	}
	return &product, nil
}
