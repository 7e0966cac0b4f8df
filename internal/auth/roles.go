package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/storefront-service/internal/domain"
	apperrors "github.com/spec-kit/storefront-service/pkg/util"
)

// Authorize allows continuation only when the identity carries exactly the
// required role. There is no role hierarchy: an admin is not implicitly a
// user, or vice versa.
func Authorize(identity *Identity, required domain.Role) error {
	if identity == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if identity.Role != required {
		return apperrors.NewForbidden("insufficient role")
	}
	return nil
}

// RequireRole gates a route on an exact role match. It fires after the auth
// middleware and never resolves identity itself.
func RequireRole(required domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if err := Authorize(identity, required); err != nil {
			return err
		}
		return c.Next()
	}
}
