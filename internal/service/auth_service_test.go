package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/bookstore-service/internal/auth"
	"github.com/spec-kit/bookstore-service/internal/config"
	"github.com/spec-kit/bookstore-service/internal/domain"
	"github.com/spec-kit/bookstore-service/internal/repository"
)

type stubUserRepo struct {
	users map[string]*domain.User // keyed by email
	err   error
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) error {
	if r.err != nil {
		return r.err
	}
	user.ID = "id-" + user.Email
	r.users[user.Email] = user
	return nil
}

func (r *stubUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	user, ok := r.users[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func (r *stubUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	for _, user := range r.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func newAuthFixture(t *testing.T) (*AuthService, *stubUserRepo, repository.SessionRepository) {
	t.Helper()

	users := &stubUserRepo{users: make(map[string]*domain.User)}
	sessions := repository.NewMemorySessionRepository()

	cfg := config.Config{}
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.AccessTokenTTLMinutes = 15
	cfg.Auth.RefreshTokenTTLHours = 24
	cfg.Auth.BcryptCost = bcrypt.MinCost

	svc := NewAuthService(cfg, AuthDependencies{
		UserRepo:    users,
		SessionRepo: sessions,
		Logger:      zap.NewNop(),
	})
	return svc, users, sessions
}

func seedUser(t *testing.T, users *stubUserRepo, email, password string, role domain.Role) *domain.User {
	t.Helper()
	hash, err := auth.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	user := &domain.User{ID: "id-" + email, Email: email, PasswordHash: hash, Role: role}
	users.users[email] = user
	return user
}

func TestSignIn_StoresIssuedRefreshToken(t *testing.T) {
	ctx := context.Background()
	svc, users, sessions := newAuthFixture(t)
	seedUser(t, users, "alice@example.com", "password1234", domain.RoleCustomer)

	user, pair, err := svc.SignIn(ctx, "alice@example.com", "password1234")
	require.NoError(t, err)
	require.Equal(t, domain.RoleCustomer, user.Role)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	stored, err := sessions.Get(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, pair.RefreshToken, stored)
}

func TestSignIn_UniformRejection(t *testing.T) {
	ctx := context.Background()
	svc, users, _ := newAuthFixture(t)
	seedUser(t, users, "alice@example.com", "password1234", domain.RoleCustomer)

	// wrong password and unknown email are indistinguishable
	_, _, errWrongPass := svc.SignIn(ctx, "alice@example.com", "nope")
	_, _, errUnknown := svc.SignIn(ctx, "nobody@example.com", "password1234")
	require.ErrorIs(t, errWrongPass, ErrInvalidCredentials)
	require.ErrorIs(t, errUnknown, ErrInvalidCredentials)
}

func TestSignIn_FailsClosedOnStoreError(t *testing.T) {
	ctx := context.Background()
	svc, users, _ := newAuthFixture(t)
	users.err = errors.New("connection refused")

	_, _, err := svc.SignIn(ctx, "alice@example.com", "password1234")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefresh_RotatesToken(t *testing.T) {
	ctx := context.Background()
	svc, users, sessions := newAuthFixture(t)
	user := seedUser(t, users, "alice@example.com", "password1234", domain.RoleCustomer)

	_, pair, err := svc.SignIn(ctx, "alice@example.com", "password1234")
	require.NoError(t, err)

	role, next, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, domain.RoleCustomer, role)
	require.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	stored, err := sessions.Get(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, next.RefreshToken, stored)
}

func TestRefresh_ReuseRevokesSession(t *testing.T) {
	ctx := context.Background()
	svc, users, sessions := newAuthFixture(t)
	user := seedUser(t, users, "alice@example.com", "password1234", domain.RoleCustomer)

	_, pair, err := svc.SignIn(ctx, "alice@example.com", "password1234")
	require.NoError(t, err)

	_, next, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)

	// replaying the superseded token is a compromise signal
	_, _, err = svc.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrTokenReuse)

	// the rotated token died with the session
	_, err = sessions.Get(ctx, user.ID)
	require.ErrorIs(t, err, repository.ErrSessionNotFound)
	_, _, err = svc.Refresh(ctx, next.RefreshToken)
	require.ErrorIs(t, err, ErrTokenReuse)
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	ctx := context.Background()
	svc, users, _ := newAuthFixture(t)
	seedUser(t, users, "alice@example.com", "password1234", domain.RoleCustomer)

	_, pair, err := svc.SignIn(ctx, "alice@example.com", "password1234")
	require.NoError(t, err)

	_, _, err = svc.Refresh(ctx, pair.AccessToken)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestRefresh_NoToken(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	_, _, err := svc.Refresh(context.Background(), "")
	require.ErrorIs(t, err, ErrNoToken)
}

func TestSignOut_RemovesSession(t *testing.T) {
	ctx := context.Background()
	svc, users, sessions := newAuthFixture(t)
	user := seedUser(t, users, "alice@example.com", "password1234", domain.RoleCustomer)

	_, pair, err := svc.SignIn(ctx, "alice@example.com", "password1234")
	require.NoError(t, err)

	require.NoError(t, svc.SignOut(ctx, pair.RefreshToken))

	_, err = sessions.Get(ctx, user.ID)
	require.ErrorIs(t, err, repository.ErrSessionNotFound)

	// the credential cannot be used again after sign-out
	_, _, err = svc.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrTokenReuse)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newAuthFixture(t)

	user, err := svc.Register(ctx, "bob@example.com", "password1234")
	require.NoError(t, err)
	require.Equal(t, domain.RoleCustomer, user.Role)

	_, err = svc.Register(ctx, "bob@example.com", "password1234")
	require.ErrorIs(t, err, ErrEmailTaken)
}
