package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/coalmart/coalmart/internal/models"
	"github.com/coalmart/coalmart/internal/repository/postgres"
)

const (
	insertProductQuery = `
						INSERT INTO products (sku, name, price_b2c, price_b2b, currency)
						VALUES ($1, $2, $3, $4, $5)
						RETURNING id, created_at
`
	selectProductByIDQuery = `
						SELECT id, sku, name, price_b2c, price_b2b, currency, created_at
						FROM products
						WHERE id = $1
`
)

// ProductRepository provides access to catalog rows
type ProductRepository struct {
	db *postgres.DB
}

// NewProductRepository creates new ProductRepository instance
func NewProductRepository(db *postgres.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// CreateProduct inserts new product to database
func (pr *ProductRepository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	err := pr.db.QueryRow(ctx, insertProductQuery,
		product.SKU, product.Name, product.PriceB2C, product.PriceB2B, product.Currency,
	).Scan(&product.ID, &product.CreatedAt)
	if err != nil {
		if errCode := pr.db.ErrorCode(err); errCode == pgErrUniqueViolationCode {
			return nil, models.ErrConflictData
		}
		return nil, err
	}

	return product, nil
}

// GetProductByID returns product by id
func (pr *ProductRepository) GetProductByID(ctx context.Context, productID uint64) (*models.Product, error) {
	product := models.Product{}
	err := pr.db.QueryRow(ctx, selectProductByIDQuery, productID).Scan(
		&product.ID, &product.SKU, &product.Name, &product.PriceB2C, &product.PriceB2B,
		&product.Currency, &product.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrDataNotFound
		}
		return nil, err
	}

	return &product, nil
}
