package application

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/gocommerce/commerce-backend/internal/apperror"
	"github.com/gocommerce/commerce-backend/internal/identity/domain"
)

// ErrInvalidCredentials covers both unknown email and wrong password, so a
// caller cannot probe which addresses are registered.
var ErrInvalidCredentials = errors.New("invalid email or password")

type Service struct {
	log    *slog.Logger
	repo   UserRepository
	tokens *TokenIssuer
}

func NewService(log *slog.Logger, repo UserRepository, tokens *TokenIssuer) *Service {
	return &Service{log: log, repo: repo, tokens: tokens}
}

func (s *Service) Register(ctx context.Context, email, password string) (domain.User, error) {
	if email == "" {
		return domain.User{}, apperror.Invalid("email is required")
	}
	if len(password) < 8 {
		return domain.User{}, apperror.Invalid("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}

	u := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return domain.User{}, err
	}
	s.log.Info("user registered", "user_id", u.ID)
	return u, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return s.tokens.Issue(u.ID, u.Email)
}

// Resolve turns a bearer token into a Principal. Any verification failure
// yields the anonymous principal rather than an error; guards downstream
// decide whether anonymous access is acceptable.
func (s *Service) Resolve(ctx context.Context, token string) domain.Principal {
	if token == "" {
		return domain.Principal{}
	}
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return domain.Principal{}
	}
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return domain.Principal{}
	}
	return u.Principal()
}

func (s *Service) Me(ctx context.Context, p domain.Principal) (domain.User, error) {
	if err := domain.RequireUser(p); err != nil {
		return domain.User{}, err
	}
	return s.repo.GetByID(ctx, p.ID)
}
