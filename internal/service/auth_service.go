package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/bookstore-service/internal/auth"
	"github.com/spec-kit/bookstore-service/internal/config"
	"github.com/spec-kit/bookstore-service/internal/domain"
	"github.com/spec-kit/bookstore-service/internal/events"
	"github.com/spec-kit/bookstore-service/internal/repository"
)

// Auth flow errors. Callers map these to uniform client responses; the
// distinctions exist for logging and tests, never for the wire.
var (
	// ErrInvalidCredentials covers unknown email, wrong password and any
	// internal failure during credential lookup. Sign-in fails closed.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailTaken is returned on duplicate registration.
	ErrEmailTaken = errors.New("email already registered")
	// ErrNoToken means no refresh token was presented.
	ErrNoToken = errors.New("no refresh token presented")
	// ErrTokenInvalid covers expired, malformed and wrong-kind tokens.
	ErrTokenInvalid = errors.New("refresh token invalid")
	// ErrTokenReuse means a superseded refresh token was presented. The
	// session for its subject has been revoked.
	ErrTokenReuse = errors.New("refresh token reuse detected")
)

// AuthService coordinates registration and the session lifecycle: sign-in,
// refresh-token rotation and sign-out.
type AuthService struct {
	users      repository.UserRepository
	sessions   repository.SessionRepository
	codec      *auth.TokenCodec
	dispatcher events.Dispatcher
	logger     *zap.Logger
	bcryptCost int
	refreshTTL time.Duration
}

// AuthDependencies bundles collaborators for the auth service.
type AuthDependencies struct {
	UserRepo    repository.UserRepository
	SessionRepo repository.SessionRepository
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		sessions:   deps.SessionRepo,
		codec:      auth.NewTokenCodec(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL(), cfg.Auth.RefreshTokenTTL()),
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		bcryptCost: cfg.Auth.BcryptCost,
		refreshTTL: cfg.Auth.RefreshTokenTTL(),
	}
}

// Register creates a new customer account.
func (s *AuthService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if err != pgx.ErrNoRows {
		return nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleCustomer,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventUserRegistered,
			Subject:   user.ID,
			Timestamp: time.Now(),
		})
	}
	return user, nil
}

// SignIn verifies credentials and opens a session, overwriting any previous
// session for the subject. All failure modes collapse into
// ErrInvalidCredentials so callers cannot enumerate accounts.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*domain.User, *domain.TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if err != pgx.ErrNoRows {
			s.logger.Warn("credential lookup failed", zap.Error(err))
		}
		return nil, nil, ErrInvalidCredentials
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.issuePair(user.ID, user.Role)
	if err != nil {
		return nil, nil, err
	}
	if err := s.sessions.Put(ctx, user.ID, pair.RefreshToken, s.refreshTTL); err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Refresh exchanges a valid refresh token for a fresh token pair, rotating
// the stored refresh token. Presenting a superseded token revokes the whole
// session and returns ErrTokenReuse.
func (s *AuthService) Refresh(ctx context.Context, presented string) (domain.Role, *domain.TokenPair, error) {
	if presented == "" {
		return "", nil, ErrNoToken
	}

	claims, err := s.codec.Verify(presented, domain.TokenKindRefresh)
	if err != nil {
		return "", nil, ErrTokenInvalid
	}

	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		return "", nil, ErrTokenInvalid
	}

	pair, err := s.issuePair(user.ID, user.Role)
	if err != nil {
		return "", nil, err
	}

	if err := s.sessions.Rotate(ctx, user.ID, presented, pair.RefreshToken, s.refreshTTL); err != nil {
		if errors.Is(err, repository.ErrSessionMismatch) {
			s.logger.Warn("refresh token reuse detected; session revoked", zap.String("subject", user.ID))
			return "", nil, ErrTokenReuse
		}
		return "", nil, err
	}
	return user.Role, pair, nil
}

// SignOut removes the session identified by the presented refresh token.
// Revocation is best-effort: the session is removed even when the token no
// longer matches the stored one.
func (s *AuthService) SignOut(ctx context.Context, presented string) error {
	if presented == "" {
		return ErrNoToken
	}

	claims, err := s.codec.Verify(presented, domain.TokenKindRefresh)
	if err != nil {
		return ErrTokenInvalid
	}
	return s.sessions.Remove(ctx, claims.Subject)
}

func (s *AuthService) issuePair(subject string, role domain.Role) (*domain.TokenPair, error) {
	accessToken, accessExp, err := s.codec.IssueAccessToken(subject, role)
	if err != nil {
		return nil, err
	}
	refreshToken, refreshExp, err := s.codec.IssueRefreshToken(subject)
	if err != nil {
		return nil, err
	}
	return &domain.TokenPair{
		AccessToken:      accessToken,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// Codec exposes the token codec for middleware usage.
func (s *AuthService) Codec() *auth.TokenCodec {
	return s.codec
}
