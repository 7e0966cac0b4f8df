package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apperrors "github.com/spec-kit/storefront-service/pkg/util"
)

const identityKey = "auth_identity"

// AuthMiddleware resolves bearer tokens into identities for protected routes.
type AuthMiddleware struct {
	pipeline   *Pipeline
	cookieName string
	logger     *zap.Logger
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(pipeline *Pipeline, cookieName string, logger *zap.Logger) *AuthMiddleware {
	if cookieName == "" {
		cookieName = "token"
	}
	return &AuthMiddleware{pipeline: pipeline, cookieName: cookieName, logger: logger}
}

// Handle enforces authentication for protected routes. The token is taken
// from the Authorization header, falling back to the session cookie.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	token := m.extractToken(c)
	if token == "" {
		return apperrors.NewUnauthorized("missing bearer token")
	}

	identity, err := m.pipeline.Resolve(c.UserContext(), TokenCredentials{Token: token})
	if err != nil {
		// The precise cause is logged here; clients see a uniform 401.
		switch {
		case errors.Is(err, ErrTokenExpired):
			m.logger.Info("rejected expired token", zap.String("path", c.Path()))
		case errors.Is(err, ErrTokenBadSignature):
			m.logger.Warn("rejected token with bad signature", zap.String("path", c.Path()))
		case errors.Is(err, ErrTokenMalformed):
			m.logger.Info("rejected malformed token", zap.String("path", c.Path()))
		default:
			return apperrors.MapError(err)
		}
		return apperrors.NewUnauthorized("invalid token")
	}

	c.Locals(identityKey, identity)
	return c.Next()
}

func (m *AuthMiddleware) extractToken(c *fiber.Ctx) string {
	if authHeader := c.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}
	// A non-Bearer Authorization header does not preclude cookie auth.
	return c.Cookies(m.cookieName)
}

// IdentityFromContext retrieves the authenticated identity.
func IdentityFromContext(c *fiber.Ctx) (*Identity, bool) {
	val := c.Locals(identityKey)
	if val == nil {
		return nil, false
	}
	identity, ok := val.(*Identity)
	return identity, ok
}
