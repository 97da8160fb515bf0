package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cartside/api/internal/models"
)

var ErrProductNotFound = errors.New("product not found")

const productColumns = `
	id, shop_id, name, description, price_cents, stock, category,
	image_key, image_url, created_at, updated_at
`

type ProductRepository struct {
	pool *pgxpool.Pool
}

func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

func (r *ProductRepository) Create(ctx context.Context, product models.Product) error {
	const query = `
		INSERT INTO products (
			id, shop_id, name, description, price_cents, stock, category,
			image_key, image_url, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW()
		)
	`

	_, err := r.pool.Exec(ctx, query,
		product.ID,
		product.ShopID,
		product.Name,
		product.Description,
		product.PriceCents,
		product.Stock,
		product.Category,
		product.ImageKey,
		product.ImageURL,
	)
	return err
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (models.Product, error) {
	const query = `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *ProductRepository) Update(ctx context.Context, product models.Product) error {
	const query = `
		UPDATE products
		SET name = $2, description = $3, price_cents = $4, stock = $5,
		    category = $6, image_key = $7, image_url = $8, updated_at = NOW()
		WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query,
		product.ID,
		product.Name,
		product.Description,
		product.PriceCents,
		product.Stock,
		product.Category,
		product.ImageKey,
		product.ImageURL,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) DeleteByID(ctx context.Context, id string) error {
	const query = `DELETE FROM products WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) ListByShop(ctx context.Context, shopID string, limit int, offset int) ([]models.Product, error) {
	const query = `
		SELECT ` + productColumns + `
		FROM products
		WHERE shop_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, shopID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		product, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

func (r *ProductRepository) scanOne(row pgx.Row) (models.Product, error) {
	var product models.Product
	if err := row.Scan(
		&product.ID,
		&product.ShopID,
		&product.Name,
		&product.Description,
		&product.PriceCents,
		&product.Stock,
		&product.Category,
		&product.ImageKey,
		&product.ImageURL,
		&product.CreatedAt,
		&product.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Product{}, ErrProductNotFound
		}
		return models.Product{}, err
	}
	return product, nil
}
