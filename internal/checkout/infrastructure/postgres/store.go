package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gocommerce/commerce-backend/internal/checkout/application"
	catalog "github.com/gocommerce/commerce-backend/internal/catalog/domain"
	order "github.com/gocommerce/commerce-backend/internal/order/domain"
	"github.com/gocommerce/commerce-backend/pkg/outbox"
)

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Begin(ctx context.Context) (application.Tx, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	return &storeTx{tx: tx}, nil
}

type storeTx struct {
	tx pgx.Tx
}

func (t *storeTx) CartLines(ctx context.Context, userID string) (map[string]int, error) {
	rows, err := t.tx.Query(ctx, `SELECT ci.product_item_id, ci.quantity
		FROM cart_items ci JOIN carts c ON c.id = ci.cart_id
		WHERE c.user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	want := map[string]int{}
	for rows.Next() {
		var itemID string
		var qty int
		if err := rows.Scan(&itemID, &qty); err != nil {
			return nil, err
		}
		want[itemID] = qty
	}
	return want, rows.Err()
}

func (t *storeTx) LockItems(ctx context.Context, ids []string) ([]catalog.SellableItem, error) {
	rows, err := t.tx.Query(ctx, `SELECT id, product_id, name, sku, price, stock, is_active
		FROM product_items WHERE id = ANY($1) ORDER BY id FOR UPDATE`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []catalog.SellableItem
	for rows.Next() {
		var it catalog.SellableItem
		if err := rows.Scan(&it.ID, &it.ProductID, &it.Name, &it.SKU, &it.Price, &it.Stock, &it.Active); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (t *storeTx) DecrementStock(ctx context.Context, itemID string, qty int) error {
	tag, err := t.tx.Exec(ctx, `UPDATE product_items SET stock = stock - $2
		WHERE id = $1 AND stock >= $2`, itemID, qty)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (t *storeTx) InsertOrder(ctx context.Context, o order.Order) error {
	_, err := t.tx.Exec(ctx, `INSERT INTO orders (id, user_id, address_id, status, total, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		o.ID, o.UserID, o.AddressID, o.Status, o.Total, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, l := range o.Lines {
		batch.Queue(`INSERT INTO order_items (order_id, product_item_id, quantity, price_at_time)
			VALUES ($1,$2,$3,$4)`, o.ID, l.ItemID, l.Qty, l.PriceAtTime)
	}
	return t.tx.SendBatch(ctx, batch).Close()
}

func (t *storeTx) AppendEvent(ctx context.Context, ev outbox.Event) error {
	_, err := t.tx.Exec(ctx, `INSERT INTO outbox (aggregate_type, aggregate_id, type, payload, headers, traceparent, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		ev.AggregateType, ev.AggregateID, ev.Type, ev.Payload,
		map[string]string{"source": "commerce-server"}, ev.Traceparent, string(outbox.StatusPending))
	return err
}

func (t *storeTx) ClearCart(ctx context.Context, userID string) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM cart_items USING carts
		WHERE cart_items.cart_id = carts.id AND carts.user_id = $1`, userID)
	return err
}

func (t *storeTx) Commit(ctx context.Context) error   { return t.tx.Commit(ctx) }
func (t *storeTx) Rollback(ctx context.Context) error { return t.tx.Rollback(ctx) }
