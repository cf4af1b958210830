package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gocommerce/commerce-backend/internal/apperror"
	"github.com/gocommerce/commerce-backend/internal/review/domain"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) Create(ctx context.Context, rev domain.Review) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO reviews (id, user_id, product_id, content, rating, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		rev.ID, rev.UserID, rev.ProductID, rev.Content, rev.Rating, rev.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return apperror.ErrConflict
	}
	return err
}

func (r *Repository) Get(ctx context.Context, id, userID string) (domain.Review, error) {
	var rev domain.Review
	err := r.pool.QueryRow(ctx, `SELECT id, user_id, product_id, content, rating, created_at
		FROM reviews WHERE id=$1 AND user_id=$2`, id, userID).
		Scan(&rev.ID, &rev.UserID, &rev.ProductID, &rev.Content, &rev.Rating, &rev.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Review{}, apperror.ErrNotFound
	}
	return rev, err
}

func (r *Repository) ListByProduct(ctx context.Context, productID string) ([]domain.Review, error) {
	return r.list(ctx, `SELECT id, user_id, product_id, content, rating, created_at
		FROM reviews WHERE product_id=$1 ORDER BY created_at DESC`, productID)
}

func (r *Repository) ListByUser(ctx context.Context, userID string) ([]domain.Review, error) {
	return r.list(ctx, `SELECT id, user_id, product_id, content, rating, created_at
		FROM reviews WHERE user_id=$1 ORDER BY created_at DESC`, userID)
}

func (r *Repository) list(ctx context.Context, query, arg string) ([]domain.Review, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Review
	for rows.Next() {
		var rev domain.Review
		if err := rows.Scan(&rev.ID, &rev.UserID, &rev.ProductID, &rev.Content, &rev.Rating, &rev.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rev)
	}
	return out, rows.Err()
}

func (r *Repository) Update(ctx context.Context, rev domain.Review) error {
	tag, err := r.pool.Exec(ctx, `UPDATE reviews SET content=$2, rating=$3 WHERE id=$1`,
		rev.ID, rev.Content, rev.Rating)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperror.ErrNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM reviews WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperror.ErrNotFound
	}
	return nil
}

func (r *Repository) Summary(ctx context.Context, productID string) (domain.RatingSummary, error) {
	rows, err := r.pool.Query(ctx, `SELECT rating, COUNT(*) FROM reviews
		WHERE product_id=$1 GROUP BY rating`, productID)
	if err != nil {
		return domain.RatingSummary{}, err
	}
	defer rows.Close()

	var sum domain.RatingSummary
	var weighted int
	for rows.Next() {
		var rating, count int
		if err := rows.Scan(&rating, &count); err != nil {
			return domain.RatingSummary{}, err
		}
		if rating < 1 || rating > 5 {
			continue
		}
		sum.Distribution[rating-1] = count
		sum.Total += count
		weighted += rating * count
	}
	if err := rows.Err(); err != nil {
		return domain.RatingSummary{}, err
	}
	if sum.Total > 0 {
		sum.Average = float64(weighted) / float64(sum.Total)
	}
	return sum, nil
}
