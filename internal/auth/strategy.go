package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/storefront-service/internal/domain"
	apperrors "github.com/spec-kit/storefront-service/pkg/util"
)

// Credentials is the closed set of authentication inputs the pipeline
// accepts. Each variant selects exactly one resolution strategy; adding a
// strategy means adding a variant and a case in Resolve, nothing else.
type Credentials interface {
	credentialKind() string
}

// PasswordCredentials selects the local-password strategy.
type PasswordCredentials struct {
	Email    string
	Password string
}

// TokenCredentials selects the bearer-token strategy.
type TokenCredentials struct {
	Token string
}

// FederatedAssertion selects the federated strategy. The assertion is
// expected to have been validated by the external identity provider
// integration before it reaches the pipeline.
type FederatedAssertion struct {
	Provider  string
	SubjectID string
	Email     string
	Name      string
}

func (PasswordCredentials) credentialKind() string { return "local-password" }
func (TokenCredentials) credentialKind() string    { return "bearer-token" }
func (FederatedAssertion) credentialKind() string  { return "federated" }

// Identity is the outcome of successful resolution. User is populated by the
// local-password and federated strategies; Claims by the bearer strategy,
// which trusts the signed token without a storage round-trip.
type Identity struct {
	UserID string
	Role   domain.Role
	User   *domain.User
	Claims *Claims
	// Created is true when resolution registered the user as a side
	// effect (federated first login).
	Created bool
}

// CredentialStore is the narrow storage contract the pipeline depends on.
type CredentialStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByProvider(ctx context.Context, provider, providerID string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
}

// Pipeline dispatches credentials to the matching resolution strategy.
type Pipeline struct {
	store  CredentialStore
	tokens *TokenManager
}

// NewPipeline constructs the pipeline.
func NewPipeline(store CredentialStore, tokens *TokenManager) *Pipeline {
	return &Pipeline{store: store, tokens: tokens}
}

// dummyHash keeps the lookup-miss path doing a bcrypt comparison so a missing
// email costs the same as a wrong password.
const dummyHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

// Resolve produces an authenticated identity or a typed failure.
func (p *Pipeline) Resolve(ctx context.Context, creds Credentials) (*Identity, error) {
	switch c := creds.(type) {
	case PasswordCredentials:
		return p.resolvePassword(ctx, c)
	case TokenCredentials:
		return p.resolveToken(c)
	case FederatedAssertion:
		return p.resolveFederated(ctx, c)
	default:
		return nil, apperrors.NewUnauthorized("unsupported credential kind")
	}
}

// resolvePassword implements the local-password strategy. Unknown email and
// wrong password collapse into the same failure so accounts cannot be
// enumerated.
func (p *Pipeline) resolvePassword(ctx context.Context, c PasswordCredentials) (*Identity, error) {
	user, err := p.store.GetByEmail(ctx, c.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			VerifyPassword(&domain.User{PasswordHash: ptr(dummyHash)}, c.Password)
			return nil, apperrors.NewInvalidCredentials()
		}
		return nil, apperrors.MapError(err)
	}
	if !VerifyPassword(user, c.Password) {
		return nil, apperrors.NewInvalidCredentials()
	}
	return &Identity{UserID: user.ID, Role: user.Role, User: user}, nil
}

// resolveToken implements the bearer-token strategy.
func (p *Pipeline) resolveToken(c TokenCredentials) (*Identity, error) {
	claims, err := p.tokens.Verify(c.Token)
	if err != nil {
		return nil, err
	}
	return &Identity{UserID: claims.SubjectID, Role: claims.Role, Claims: claims}, nil
}

// resolveFederated implements the federated strategy with
// registration-on-first-login semantics.
func (p *Pipeline) resolveFederated(ctx context.Context, c FederatedAssertion) (*Identity, error) {
	user, err := p.store.GetByProvider(ctx, c.Provider, c.SubjectID)
	if err == nil {
		return &Identity{UserID: user.ID, Role: user.Role, User: user}, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	user = &domain.User{
		Name:       c.Name,
		Email:      c.Email,
		Role:       domain.RoleUser,
		Provider:   ptr(c.Provider),
		ProviderID: ptr(c.SubjectID),
	}
	if err := p.store.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return &Identity{UserID: user.ID, Role: user.Role, User: user, Created: true}, nil
}

func ptr(s string) *string {
	return &s
}
