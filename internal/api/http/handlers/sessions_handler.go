package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/storefront-service/internal/api/dto"
	"github.com/spec-kit/storefront-service/internal/auth"
	"github.com/spec-kit/storefront-service/internal/service"
	apperrors "github.com/spec-kit/storefront-service/pkg/util"
)

// SessionsHandler exposes authentication endpoints.
type SessionsHandler struct {
	auth       *service.AuthService
	cookieName string
}

// NewSessionsHandler constructs handler.
func NewSessionsHandler(authService *service.AuthService, cookieName string) *SessionsHandler {
	if cookieName == "" {
		cookieName = "token"
	}
	return &SessionsHandler{auth: authService, cookieName: cookieName}
}

// Register handles POST /api/session/register.
func (h *SessionsHandler) Register(c *fiber.Ctx) error {
	var req dto.UserRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("name, email, password required", nil)
	}

	if _, err := h.auth.Register(c.UserContext(), req.Name, req.Email, req.Password); err != nil {
		return err
	}
	return successMessage(c, http.StatusCreated, "User successfully created")
}

// Login handles POST /api/session/login.
func (h *SessionsHandler) Login(c *fiber.Ctx) error {
	var req dto.UserLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	user, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, dto.NewUserResponse(user))
}

// Google handles GET /api/session/google. The federation flow itself lives in
// an upstream integration; by the time the request reaches this handler the
// provider assertion has been validated and its fields forwarded as headers.
func (h *SessionsHandler) Google(c *fiber.Ctx) error {
	assertion := auth.FederatedAssertion{
		Provider:  "google",
		SubjectID: c.Get("X-Identity-Subject"),
		Email:     c.Get("X-Identity-Email"),
		Name:      c.Get("X-Identity-Name"),
	}
	if assertion.SubjectID == "" {
		return apperrors.NewUnauthorized("missing identity assertion")
	}

	user, err := h.auth.FederatedLogin(c.UserContext(), assertion)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, dto.NewUserResponse(user))
}

// JWT handles POST /api/session/jwt: password login that also issues a signed
// token, returned in the body and set as an HTTP-only cookie.
func (h *SessionsHandler) JWT(c *fiber.Ctx) error {
	var req dto.UserLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	user, token, exp, err := h.auth.LoginWithToken(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Expires:  exp,
		HTTPOnly: true,
	})

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"status":  "success",
		"payload": dto.NewUserResponse(user),
		"token":   token,
	})
}

// Current handles GET /api/session/current, returning the claims of the
// authenticated identity.
func (h *SessionsHandler) Current(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	resp := dto.ClaimsResponse{ID: identity.UserID, Role: identity.Role}
	if identity.Claims != nil {
		if identity.Claims.IssuedAt != nil {
			resp.IssuedAt = identity.Claims.IssuedAt.Time
		}
		if identity.Claims.ExpiresAt != nil {
			resp.ExpiresAt = identity.Claims.ExpiresAt.Time
		}
	}
	return success(c, http.StatusOK, resp)
}

// Logout handles GET /api/session/logout. Tokens are stateless, so the server
// only clears the cookie; discarding the token is the client's job.
func (h *SessionsHandler) Logout(c *fiber.Ctx) error {
	if err := h.auth.Logout(c.UserContext()); err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
	})
	return successMessage(c, http.StatusOK, "Session completed successfully")
}
