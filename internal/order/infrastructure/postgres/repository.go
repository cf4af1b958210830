package postgres

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gocommerce/commerce-backend/internal/apperror"
	"github.com/gocommerce/commerce-backend/internal/order/domain"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) Get(ctx context.Context, id string) (domain.Order, error) {
	var o domain.Order
	err := r.pool.QueryRow(ctx, `SELECT id, user_id, COALESCE(address_id, ''), status, total, created_at, updated_at
		FROM orders WHERE id=$1`, id).
		Scan(&o.ID, &o.UserID, &o.AddressID, &o.Status, &o.Total, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, apperror.ErrNotFound
	}
	if err != nil {
		return domain.Order{}, err
	}

	rows, err := r.pool.Query(ctx, `SELECT product_item_id, quantity, price_at_time
		FROM order_items WHERE order_id=$1 ORDER BY product_item_id`, id)
	if err != nil {
		return domain.Order{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var l domain.OrderLine
		if err := rows.Scan(&l.ItemID, &l.Qty, &l.PriceAtTime); err != nil {
			return domain.Order{}, err
		}
		o.Lines = append(o.Lines, l)
	}
	return o, rows.Err()
}

func (r *Repository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Order, error) {
	return r.list(ctx, `SELECT id, user_id, COALESCE(address_id, ''), status, total, created_at, updated_at
		FROM orders WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, userID, limit, offset)
}

func (r *Repository) ListAll(ctx context.Context, limit, offset int) ([]domain.Order, error) {
	return r.list(ctx, `SELECT id, user_id, COALESCE(address_id, ''), status, total, created_at, updated_at
		FROM orders ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
}

func (r *Repository) list(ctx context.Context, q string, args ...any) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.AddressID, &o.Status, &o.Total, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Listings carry lines too; order counts per user are small.
	for i := range orders {
		lr, err := r.pool.Query(ctx, `SELECT product_item_id, quantity, price_at_time
			FROM order_items WHERE order_id=$1 ORDER BY product_item_id`, orders[i].ID)
		if err != nil {
			return nil, err
		}
		for lr.Next() {
			var l domain.OrderLine
			if err := lr.Scan(&l.ItemID, &l.Qty, &l.PriceAtTime); err != nil {
				lr.Close()
				return nil, err
			}
			orders[i].Lines = append(orders[i].Lines, l)
		}
		lr.Close()
		if err := lr.Err(); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *Repository) SetStatusWithOutbox(ctx context.Context, orderID string, status domain.OrderStatus, payload []byte, traceparent string) (bool, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	// The row lock serializes concurrent status changes so the restocked
	// flag flips false->true at most once per order.
	var restocked bool
	err = tx.QueryRow(ctx, `SELECT restocked FROM orders WHERE id=$1 FOR UPDATE`, orderID).
		Scan(&restocked)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, apperror.ErrNotFound
	}
	if err != nil {
		return false, err
	}
	restock := status == domain.StatusCancelled && !restocked

	_, err = tx.Exec(ctx, `UPDATE orders SET status=$2, updated_at=$3, restocked = restocked OR $4 WHERE id=$1`,
		orderID, status, time.Now().UTC(), restock)
	if err != nil {
		return false, err
	}

	_, err = tx.Exec(ctx, `INSERT INTO outbox (aggregate_type, aggregate_id, type, payload, headers, traceparent, status)
		VALUES ($1,$2,$3,$4,$5,$6,'pending')`,
		"order", orderID, "OrderStatusChanged", payload, map[string]string{"source": "commerce-server"}, traceparent)
	if err != nil {
		return false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return restock, nil
}
