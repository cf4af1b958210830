package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gocommerce/commerce-backend/internal/address/domain"
	"github.com/gocommerce/commerce-backend/internal/apperror"
	order "github.com/gocommerce/commerce-backend/internal/order/domain"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) Create(ctx context.Context, a domain.Address) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO addresses (id, user_id, city, district, neighborhood, full_address, postal_code, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		a.ID, a.UserID, a.City, a.District, a.Neighborhood, a.FullAddress, a.PostalCode, a.CreatedAt, a.UpdatedAt)
	return err
}

func (r *Repository) Get(ctx context.Context, id, userID string) (domain.Address, error) {
	var a domain.Address
	err := r.pool.QueryRow(ctx, `SELECT id, user_id, city, district, neighborhood, full_address, postal_code, created_at, updated_at
		FROM addresses WHERE id=$1 AND user_id=$2`, id, userID).
		Scan(&a.ID, &a.UserID, &a.City, &a.District, &a.Neighborhood, &a.FullAddress, &a.PostalCode, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Address{}, apperror.ErrNotFound
	}
	return a, err
}

func (r *Repository) ListByUser(ctx context.Context, userID string) ([]domain.Address, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, user_id, city, district, neighborhood, full_address, postal_code, created_at, updated_at
		FROM addresses WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Address
	for rows.Next() {
		var a domain.Address
		if err := rows.Scan(&a.ID, &a.UserID, &a.City, &a.District, &a.Neighborhood, &a.FullAddress, &a.PostalCode, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *Repository) Update(ctx context.Context, a domain.Address) error {
	ct, err := r.pool.Exec(ctx, `UPDATE addresses SET city=$2, district=$3, neighborhood=$4, full_address=$5, postal_code=$6, updated_at=$7
		WHERE id=$1`, a.ID, a.City, a.District, a.Neighborhood, a.FullAddress, a.PostalCode, a.UpdatedAt)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return apperror.ErrNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM addresses WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return apperror.ErrNotFound
	}
	return nil
}

// Owns reports whether the address exists and belongs to the user. Checkout
// uses it to validate the shipping address before opening a transaction.
func (r *Repository) Owns(ctx context.Context, id, userID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM addresses WHERE id=$1 AND user_id=$2)`,
		id, userID).Scan(&exists)
	return exists, err
}

func (r *Repository) InActiveOrder(ctx context.Context, id string) (bool, error) {
	statuses := make([]string, 0, len(order.ActiveStatuses))
	for _, s := range order.ActiveStatuses {
		statuses = append(statuses, string(s))
	}
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE address_id=$1 AND status = ANY($2))`,
		id, statuses).Scan(&exists)
	return exists, err
}
