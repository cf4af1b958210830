package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gocommerce/commerce-backend/internal/apperror"
	identityapp "github.com/gocommerce/commerce-backend/internal/identity/application"
	identity "github.com/gocommerce/commerce-backend/internal/identity/domain"
)

func TestWriteErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{apperror.ErrNotAuthenticated, http.StatusUnauthorized},
		{identityapp.ErrInvalidCredentials, http.StatusUnauthorized},
		{apperror.ErrNotAuthorized, http.StatusForbidden},
		{apperror.ErrNotFound, http.StatusNotFound},
		{apperror.ErrInvalidArgument, http.StatusBadRequest},
		{apperror.Invalid("rating must be between 1 and 5"), http.StatusBadRequest},
		{apperror.ErrEmptyCart, http.StatusBadRequest},
		{apperror.ErrItemUnavailable, http.StatusConflict},
		{apperror.ErrConflict, http.StatusConflict},
		{fmt.Errorf("wrapped: %w", apperror.ErrNotFound), http.StatusNotFound},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		writeError(rec, tc.err)
		assert.Equal(t, tc.status, rec.Code, tc.err.Error())
	}
}

func TestWriteErrorHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, errors.New("pq: connection refused"))

	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "internal error", body.Error)
}

func TestWriteErrorInsufficientStock(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, &apperror.InsufficientStockError{ItemID: "item-a", Available: 2})

	assert.Equal(t, http.StatusConflict, rec.Code)
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "item-a", body.ItemID)
	require.NotNil(t, body.Available)
	assert.Equal(t, 2, *body.Available)
}

type staticUserRepo struct {
	user identity.User
}

func (s *staticUserRepo) Create(context.Context, identity.User) error { return nil }

func (s *staticUserRepo) GetByEmail(_ context.Context, email string) (identity.User, error) {
	if email == s.user.Email {
		return s.user, nil
	}
	return identity.User{}, apperror.ErrNotFound
}

func (s *staticUserRepo) GetByID(_ context.Context, id string) (identity.User, error) {
	if id == s.user.ID {
		return s.user, nil
	}
	return identity.User{}, apperror.ErrNotFound
}

func TestAuthenticateMiddleware(t *testing.T) {
	tokens := identityapp.NewTokenIssuer([]byte("test-secret"), time.Hour)
	repo := &staticUserRepo{user: identity.User{ID: "user-1", Email: "a@example.com"}}
	identities := identityapp.NewService(slog.New(slog.NewTextHandler(io.Discard, nil)), repo, tokens)

	var got identity.Principal
	next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = PrincipalFrom(r.Context())
	})
	handler := Authenticate(identities)(next)

	token, err := tokens.Issue("user-1", "a@example.com")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "user-1", got.ID)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.True(t, got.Anonymous())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.True(t, got.Anonymous())
}
