package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/storefront-service/internal/auth"
	"github.com/spec-kit/storefront-service/internal/config"
	"github.com/spec-kit/storefront-service/internal/domain"
	"github.com/spec-kit/storefront-service/internal/events"
	"github.com/spec-kit/storefront-service/internal/repository"
	apperrors "github.com/spec-kit/storefront-service/pkg/util"
)

// AuthService coordinates registration and the identity resolution flows.
type AuthService struct {
	users      repository.UserRepository
	pipeline   *auth.Pipeline
	tokenMgr   *auth.TokenManager
	dispatcher events.Dispatcher
	bcryptCost int
}

// AuthDependencies encapsulates requirements for auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	tokenMgr := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())
	return &AuthService{
		users:      deps.UserRepo,
		pipeline:   auth.NewPipeline(deps.UserRepo, tokenMgr),
		tokenMgr:   tokenMgr,
		dispatcher: deps.Dispatcher,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Register creates a new local-password account with the user role.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", nil)
	} else if err != pgx.ErrNoRows {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: &hash,
		Role:         domain.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.EventUserRegistered, user.ID, events.UserRegisteredPayload{
		Email:     user.Email,
		Federated: false,
	})
	return user, nil
}

// Login authenticates with the local-password strategy. Unknown email and
// wrong password are indistinguishable in the returned failure.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	identity, err := s.pipeline.Resolve(ctx, auth.PasswordCredentials{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	return identity.User, nil
}

// LoginWithToken authenticates and issues a fresh signed token for the user.
func (s *AuthService) LoginWithToken(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	user, err := s.Login(ctx, email, password)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	token, exp, err := s.tokenMgr.Issue(user)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	return user, token, exp, nil
}

// FederatedLogin resolves or registers a user from a provider assertion.
func (s *AuthService) FederatedLogin(ctx context.Context, assertion auth.FederatedAssertion) (*domain.User, error) {
	identity, err := s.pipeline.Resolve(ctx, assertion)
	if err != nil {
		return nil, err
	}
	if identity.Created {
		s.publish(ctx, events.EventUserRegistered, identity.User.ID, events.UserRegisteredPayload{
			Email:     identity.User.Email,
			Provider:  identity.User.Provider,
			Federated: true,
		})
	}
	return identity.User, nil
}

// Logout is a no-op server-side: tokens are stateless and cannot be revoked
// without a revocation list, so logout means the client discards the token.
func (s *AuthService) Logout(_ context.Context) error {
	return nil
}

// Pipeline exposes the identity resolution pipeline for middleware usage.
func (s *AuthService) Pipeline() *auth.Pipeline {
	return s.pipeline
}

// TokenManager exposes the underlying token manager.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, entityID string, payload any) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		EntityID:  entityID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
