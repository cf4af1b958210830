package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gocommerce/commerce-backend/internal/apperror"
	"github.com/gocommerce/commerce-backend/internal/catalog/application"
	"github.com/gocommerce/commerce-backend/internal/catalog/domain"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, slug, parent_id, image_url FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.ParentID, &c.ImageURL); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repository) GetCategory(ctx context.Context, id string) (domain.Category, error) {
	var c domain.Category
	err := r.pool.QueryRow(ctx, `SELECT id, name, slug, parent_id, image_url FROM categories WHERE id=$1`, id).
		Scan(&c.ID, &c.Name, &c.Slug, &c.ParentID, &c.ImageURL)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Category{}, apperror.ErrNotFound
	}
	return c, err
}

func (r *Repository) CreateCategory(ctx context.Context, c domain.Category) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO categories (id, name, slug, parent_id, image_url)
		VALUES ($1,$2,$3,$4,$5)`, c.ID, c.Name, c.Slug, c.ParentID, c.ImageURL)
	return uniqueErr(err)
}

func (r *Repository) UpdateCategory(ctx context.Context, c domain.Category) error {
	ct, err := r.pool.Exec(ctx, `UPDATE categories SET name=$2, slug=$3, parent_id=$4, image_url=$5 WHERE id=$1`,
		c.ID, c.Name, c.Slug, c.ParentID, c.ImageURL)
	if err != nil {
		return uniqueErr(err)
	}
	if ct.RowsAffected() == 0 {
		return apperror.ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteCategory(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return apperror.ErrNotFound
	}
	return nil
}

func (r *Repository) ListProducts(ctx context.Context, f application.ProductFilter) ([]domain.Product, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.NameContains != "" {
		where = append(where, "p.name ILIKE "+arg("%"+f.NameContains+"%"))
	}
	if f.Active != nil {
		where = append(where, "p.is_active = "+arg(*f.Active))
	}
	if f.CategorySlug != "" {
		where = append(where, "c.slug = "+arg(f.CategorySlug))
	}

	q := `SELECT p.id, p.category_id, p.name, p.description, p.slug, p.is_active, p.created_at, p.updated_at
		FROM products p JOIN categories c ON c.id = p.category_id`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY p.created_at DESC LIMIT " + arg(f.Limit) + " OFFSET " + arg(f.Offset)

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.CategoryID, &p.Name, &p.Description, &p.Slug, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repository) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	return r.scanProduct(r.pool.QueryRow(ctx, `SELECT id, category_id, name, description, slug, is_active, created_at, updated_at
		FROM products WHERE id=$1`, id))
}

func (r *Repository) GetProductBySlug(ctx context.Context, slug string) (domain.Product, error) {
	return r.scanProduct(r.pool.QueryRow(ctx, `SELECT id, category_id, name, description, slug, is_active, created_at, updated_at
		FROM products WHERE slug=$1`, slug))
}

func (r *Repository) scanProduct(row pgx.Row) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.CategoryID, &p.Name, &p.Description, &p.Slug, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Product{}, apperror.ErrNotFound
	}
	return p, err
}

func (r *Repository) CreateProduct(ctx context.Context, p domain.Product) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO products (id, category_id, name, description, slug, is_active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		p.ID, p.CategoryID, p.Name, p.Description, p.Slug, p.Active, p.CreatedAt, p.UpdatedAt)
	return uniqueErr(err)
}

func (r *Repository) UpdateProduct(ctx context.Context, p domain.Product) error {
	ct, err := r.pool.Exec(ctx, `UPDATE products SET category_id=$2, name=$3, description=$4, slug=$5, is_active=$6, updated_at=$7
		WHERE id=$1`, p.ID, p.CategoryID, p.Name, p.Description, p.Slug, p.Active, p.UpdatedAt)
	if err != nil {
		return uniqueErr(err)
	}
	if ct.RowsAffected() == 0 {
		return apperror.ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteProduct(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return apperror.ErrNotFound
	}
	return nil
}

// ProductExists backs the review module's existence check.
func (r *Repository) ProductExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id=$1 AND is_active)`, id).Scan(&exists)
	return exists, err
}

func (r *Repository) ListItems(ctx context.Context, productID string) ([]domain.SellableItem, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, product_id, name, sku, price, stock, is_active
		FROM product_items WHERE product_id=$1 ORDER BY sku`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.SellableItem
	for rows.Next() {
		var it domain.SellableItem
		if err := rows.Scan(&it.ID, &it.ProductID, &it.Name, &it.SKU, &it.Price, &it.Stock, &it.Active); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *Repository) ListItemOptions(ctx context.Context, itemID string) ([]domain.ItemOption, error) {
	rows, err := r.pool.Query(ctx, `SELECT v.name, vo.name
		FROM product_item_options pio
		JOIN variation_options vo ON vo.id = pio.variation_option_id
		JOIN variations v ON v.id = vo.variation_id
		WHERE pio.product_item_id=$1 ORDER BY v.name`, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ItemOption
	for rows.Next() {
		var o domain.ItemOption
		if err := rows.Scan(&o.Variation, &o.Option); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *Repository) GetItem(ctx context.Context, id string) (domain.SellableItem, error) {
	var it domain.SellableItem
	err := r.pool.QueryRow(ctx, `SELECT id, product_id, name, sku, price, stock, is_active
		FROM product_items WHERE id=$1`, id).
		Scan(&it.ID, &it.ProductID, &it.Name, &it.SKU, &it.Price, &it.Stock, &it.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.SellableItem{}, apperror.ErrNotFound
	}
	return it, err
}

func (r *Repository) CreateItem(ctx context.Context, it domain.SellableItem) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO product_items (id, product_id, name, sku, price, stock, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		it.ID, it.ProductID, it.Name, it.SKU, it.Price, it.Stock, it.Active)
	return uniqueErr(err)
}

func (r *Repository) UpdateItem(ctx context.Context, it domain.SellableItem) error {
	ct, err := r.pool.Exec(ctx, `UPDATE product_items SET name=$2, sku=$3, price=$4, stock=$5, is_active=$6 WHERE id=$1`,
		it.ID, it.Name, it.SKU, it.Price, it.Stock, it.Active)
	if err != nil {
		return uniqueErr(err)
	}
	if ct.RowsAffected() == 0 {
		return apperror.ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteItem(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM product_items WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return apperror.ErrNotFound
	}
	return nil
}

func uniqueErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return apperror.ErrConflict
	}
	return err
}
