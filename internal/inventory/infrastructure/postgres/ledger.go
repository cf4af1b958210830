package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gocommerce/commerce-backend/internal/apperror"
)

// Ledger reserves and releases stock with single conditional updates. The
// row lock taken by UPDATE is the per-item serialization point; the stock
// check and the decrement are one statement, so no window exists for two
// reservations to read the same pre-decrement value.
type Ledger struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewLedger(log *slog.Logger, pool *pgxpool.Pool) *Ledger {
	return &Ledger{log: log, pool: pool}
}

func (l *Ledger) Reserve(ctx context.Context, itemID string, qty int) error {
	if qty <= 0 {
		return apperror.Invalid("quantity must be greater than 0")
	}
	ct, err := l.pool.Exec(ctx, `UPDATE product_items SET stock = stock - $2 WHERE id=$1 AND stock >= $2`, itemID, qty)
	if err != nil {
		return err
	}
	if ct.RowsAffected() > 0 {
		return nil
	}

	var available int
	err = l.pool.QueryRow(ctx, `SELECT stock FROM product_items WHERE id=$1`, itemID).Scan(&available)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperror.ErrNotFound
	}
	if err != nil {
		return err
	}
	return &apperror.InsufficientStockError{ItemID: itemID, Available: available}
}

func (l *Ledger) Release(ctx context.Context, itemID string, qty int) error {
	if qty <= 0 {
		return apperror.Invalid("quantity must be greater than 0")
	}
	ct, err := l.pool.Exec(ctx, `UPDATE product_items SET stock = stock + $2 WHERE id=$1`, itemID, qty)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return apperror.ErrNotFound
	}
	return nil
}
