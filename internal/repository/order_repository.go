package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cartside/api/internal/models"
)

var ErrOrderNotFound = errors.New("order not found")

const orderColumns = `
	id, user_id, product_id, quantity, unit_price_cents, status, created_at, updated_at
`

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func (r *OrderRepository) Create(ctx context.Context, order models.Order) error {
	const query = `
		INSERT INTO orders (
			id, user_id, product_id, quantity, unit_price_cents, status, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, NOW(), NOW()
		)
	`

	_, err := r.pool.Exec(ctx, query,
		order.ID,
		order.UserID,
		order.ProductID,
		order.Quantity,
		order.UnitPriceCents,
		order.Status,
	)
	return err
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (models.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) error {
	const query = `UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id, status)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID string, limit int, offset int) ([]models.Order, error) {
	const query = `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.list(ctx, query, userID, limit, offset)
}

// ListByShop returns orders whose product belongs to the shop.
func (r *OrderRepository) ListByShop(ctx context.Context, shopID string, limit int, offset int) ([]models.Order, error) {
	const query = `
		SELECT o.id, o.user_id, o.product_id, o.quantity, o.unit_price_cents, o.status, o.created_at, o.updated_at
		FROM orders o
		JOIN products p ON p.id = o.product_id
		WHERE p.shop_id = $1
		ORDER BY o.created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.list(ctx, query, shopID, limit, offset)
}

func (r *OrderRepository) list(ctx context.Context, query string, args ...any) ([]models.Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		order, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func (r *OrderRepository) scanOne(row pgx.Row) (models.Order, error) {
	var order models.Order
	if err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.ProductID,
		&order.Quantity,
		&order.UnitPriceCents,
		&order.Status,
		&order.CreatedAt,
		&order.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Order{}, ErrOrderNotFound
		}
		return models.Order{}, err
	}
	return order, nil
}
