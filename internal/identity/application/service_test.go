package application

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gocommerce/commerce-backend/internal/apperror"
	"github.com/gocommerce/commerce-backend/internal/identity/domain"
)

type fakeUserRepo struct {
	byID    map[string]domain.User
	byEmail map[string]domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: map[string]domain.User{}, byEmail: map[string]domain.User{}}
}

func (f *fakeUserRepo) Create(_ context.Context, u domain.User) error {
	if _, ok := f.byEmail[u.Email]; ok {
		return apperror.ErrConflict
	}
	f.byID[u.ID] = u
	f.byEmail[u.Email] = u
	return nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return domain.User{}, apperror.ErrNotFound
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return domain.User{}, apperror.ErrNotFound
}

func newIdentityService() (*Service, *fakeUserRepo) {
	repo := newFakeUserRepo()
	tokens := NewTokenIssuer([]byte("test-secret"), time.Hour)
	return NewService(slog.New(slog.NewTextHandler(io.Discard, nil)), repo, tokens), repo
}

func TestRegisterValidates(t *testing.T) {
	svc, _ := newIdentityService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "", "longenough")
	assert.ErrorIs(t, err, apperror.ErrInvalidArgument)

	_, err = svc.Register(ctx, "a@example.com", "short")
	assert.ErrorIs(t, err, apperror.ErrInvalidArgument)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newIdentityService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@example.com", "password1")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "a@example.com", "password2")
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestLoginRoundtrip(t *testing.T) {
	svc, _ := newIdentityService()
	ctx := context.Background()

	u, err := svc.Register(ctx, "a@example.com", "password1")
	require.NoError(t, err)

	token, err := svc.Login(ctx, "a@example.com", "password1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	p := svc.Resolve(ctx, token)
	assert.Equal(t, u.ID, p.ID)
	assert.False(t, p.Anonymous())
}

func TestLoginFailureIsIndistinguishable(t *testing.T) {
	svc, _ := newIdentityService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@example.com", "password1")
	require.NoError(t, err)

	_, badPassword := svc.Login(ctx, "a@example.com", "wrong-password")
	_, unknownEmail := svc.Login(ctx, "b@example.com", "password1")

	assert.ErrorIs(t, badPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	assert.Equal(t, badPassword.Error(), unknownEmail.Error())
}

func TestResolveBadTokenIsAnonymous(t *testing.T) {
	svc, _ := newIdentityService()
	ctx := context.Background()

	assert.True(t, svc.Resolve(ctx, "").Anonymous())
	assert.True(t, svc.Resolve(ctx, "not-a-jwt").Anonymous())

	other := NewTokenIssuer([]byte("other-secret"), time.Hour)
	forged, err := other.Issue("user-1", "a@example.com")
	require.NoError(t, err)
	assert.True(t, svc.Resolve(ctx, forged).Anonymous())
}

func TestResolveExpiredTokenIsAnonymous(t *testing.T) {
	repo := newFakeUserRepo()
	tokens := NewTokenIssuer([]byte("test-secret"), -time.Minute)
	svc := NewService(slog.New(slog.NewTextHandler(io.Discard, nil)), repo, tokens)
	ctx := context.Background()

	u, err := svc.Register(ctx, "a@example.com", "password1")
	require.NoError(t, err)
	expired, err := tokens.Issue(u.ID, u.Email)
	require.NoError(t, err)

	assert.True(t, svc.Resolve(ctx, expired).Anonymous())
}

func TestMe(t *testing.T) {
	svc, _ := newIdentityService()
	ctx := context.Background()

	u, err := svc.Register(ctx, "a@example.com", "password1")
	require.NoError(t, err)

	got, err := svc.Me(ctx, u.Principal())
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)

	_, err = svc.Me(ctx, domain.Principal{})
	assert.ErrorIs(t, err, apperror.ErrNotAuthenticated)
}
