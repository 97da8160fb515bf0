package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cartside/api/internal/models"
)

var ErrShopNotFound = errors.New("shop not found")

const shopColumns = `
	id, email, password_hash, name, owner_name, description, verified,
	otp, otp_expires_at, created_at, updated_at
`

type ShopRepository struct {
	pool *pgxpool.Pool
}

func NewShopRepository(pool *pgxpool.Pool) *ShopRepository {
	return &ShopRepository{pool: pool}
}

func (r *ShopRepository) Create(ctx context.Context, shop models.Shop) error {
	const query = `
		INSERT INTO shops (
			id, email, password_hash, name, owner_name, description, verified,
			otp, otp_expires_at, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW()
		)
	`

	_, err := r.pool.Exec(ctx, query,
		shop.ID,
		shop.Email,
		shop.PasswordHash,
		shop.Name,
		shop.OwnerName,
		shop.Description,
		shop.Verified,
		shop.OTP,
		shop.OTPExpiresAt,
	)
	return err
}

func (r *ShopRepository) FindByEmail(ctx context.Context, email string) (models.Shop, error) {
	const query = `SELECT ` + shopColumns + ` FROM shops WHERE email = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, email))
}

func (r *ShopRepository) GetByID(ctx context.Context, id string) (models.Shop, error) {
	const query = `SELECT ` + shopColumns + ` FROM shops WHERE id = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *ShopRepository) Update(ctx context.Context, shop models.Shop) error {
	const query = `
		UPDATE shops
		SET email = $2, password_hash = $3, name = $4, owner_name = $5,
		    description = $6, verified = $7, otp = $8, otp_expires_at = $9,
		    updated_at = NOW()
		WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query,
		shop.ID,
		shop.Email,
		shop.PasswordHash,
		shop.Name,
		shop.OwnerName,
		shop.Description,
		shop.Verified,
		shop.OTP,
		shop.OTPExpiresAt,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrShopNotFound
	}
	return nil
}

func (r *ShopRepository) List(ctx context.Context, limit int, offset int) ([]models.Shop, error) {
	const query = `
		SELECT ` + shopColumns + `
		FROM shops
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shops []models.Shop
	for rows.Next() {
		shop, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		shops = append(shops, shop)
	}
	return shops, rows.Err()
}

func (r *ShopRepository) PurgeUnverified(ctx context.Context, cutoff time.Time) (int64, error) {
	const query = `
		DELETE FROM shops
		WHERE verified = FALSE AND otp_expires_at < $1
	`
	cmd, err := r.pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *ShopRepository) scanOne(row pgx.Row) (models.Shop, error) {
	var shop models.Shop
	if err := row.Scan(
		&shop.ID,
		&shop.Email,
		&shop.PasswordHash,
		&shop.Name,
		&shop.OwnerName,
		&shop.Description,
		&shop.Verified,
		&shop.OTP,
		&shop.OTPExpiresAt,
		&shop.CreatedAt,
		&shop.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Shop{}, ErrShopNotFound
		}
		return models.Shop{}, err
	}
	return shop, nil
}
