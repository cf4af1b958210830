package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gocommerce/commerce-backend/internal/apperror"
	"github.com/gocommerce/commerce-backend/internal/identity/domain"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) Create(ctx context.Context, u domain.User) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO users (id, email, password_hash, is_staff, created_at)
		VALUES ($1,$2,$3,$4,$5)`,
		u.ID, u.Email, u.PasswordHash, u.Staff, u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperror.ErrConflict
		}
		return err
	}
	return nil
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.scanOne(r.pool.QueryRow(ctx, `SELECT id, email, password_hash, is_staff, created_at
		FROM users WHERE email=$1`, email))
}

func (r *Repository) GetByID(ctx context.Context, id string) (domain.User, error) {
	return r.scanOne(r.pool.QueryRow(ctx, `SELECT id, email, password_hash, is_staff, created_at
		FROM users WHERE id=$1`, id))
}

func (r *Repository) scanOne(row pgx.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Staff, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, apperror.ErrNotFound
	}
	if err != nil {
		return domain.User{}, err
	}
	return u, nil
}
