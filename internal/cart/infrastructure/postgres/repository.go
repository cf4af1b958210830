package postgres

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gocommerce/commerce-backend/internal/apperror"
	"github.com/gocommerce/commerce-backend/internal/cart/domain"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) GetOrCreate(ctx context.Context, userID string) (domain.Cart, error) {
	cart, err := r.Get(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return domain.Cart{}, err
	}

	now := time.Now().UTC()
	cart = domain.Cart{ID: uuid.NewString(), UserID: userID, CreatedAt: now, UpdatedAt: now}
	// Concurrent first access races on the unique user_id; the loser reads
	// the winner's row.
	_, err = r.pool.Exec(ctx, `INSERT INTO carts (id, user_id, created_at, updated_at)
		VALUES ($1,$2,$3,$4) ON CONFLICT (user_id) DO NOTHING`,
		cart.ID, cart.UserID, cart.CreatedAt, cart.UpdatedAt)
	if err != nil {
		return domain.Cart{}, err
	}
	return r.Get(ctx, userID)
}

func (r *Repository) Get(ctx context.Context, userID string) (domain.Cart, error) {
	var c domain.Cart
	err := r.pool.QueryRow(ctx, `SELECT id, user_id, created_at, updated_at FROM carts WHERE user_id=$1`, userID).
		Scan(&c.ID, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Cart{}, apperror.ErrNotFound
	}
	if err != nil {
		return domain.Cart{}, err
	}

	rows, err := r.pool.Query(ctx, `SELECT id, cart_id, product_item_id, quantity
		FROM cart_items WHERE cart_id=$1 ORDER BY product_item_id`, c.ID)
	if err != nil {
		return domain.Cart{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var l domain.CartLine
		if err := rows.Scan(&l.ID, &l.CartID, &l.ItemID, &l.Qty); err != nil {
			return domain.Cart{}, err
		}
		c.Lines = append(c.Lines, l)
	}
	return c, rows.Err()
}

func (r *Repository) GetLine(ctx context.Context, lineID, userID string) (domain.CartLine, error) {
	var l domain.CartLine
	err := r.pool.QueryRow(ctx, `SELECT ci.id, ci.cart_id, ci.product_item_id, ci.quantity
		FROM cart_items ci JOIN carts c ON c.id = ci.cart_id
		WHERE ci.id=$1 AND c.user_id=$2`, lineID, userID).
		Scan(&l.ID, &l.CartID, &l.ItemID, &l.Qty)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.CartLine{}, apperror.ErrNotFound
	}
	return l, err
}

func (r *Repository) InsertOrAccumulateLine(ctx context.Context, cartID, itemID string, qty int) (domain.CartLine, error) {
	var l domain.CartLine
	err := r.pool.QueryRow(ctx, `INSERT INTO cart_items (id, cart_id, product_item_id, quantity)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (cart_id, product_item_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
		RETURNING id, cart_id, product_item_id, quantity`,
		uuid.NewString(), cartID, itemID, qty).
		Scan(&l.ID, &l.CartID, &l.ItemID, &l.Qty)
	return l, err
}

func (r *Repository) SetLineQuantity(ctx context.Context, lineID string, qty int) error {
	ct, err := r.pool.Exec(ctx, `UPDATE cart_items SET quantity=$2 WHERE id=$1`, lineID, qty)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return apperror.ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteLine(ctx context.Context, lineID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE id=$1`, lineID)
	return err
}

func (r *Repository) Clear(ctx context.Context, cartID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE cart_id=$1`, cartID)
	return err
}
