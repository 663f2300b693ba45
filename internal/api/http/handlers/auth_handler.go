package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spiderqueue/spiderqueue/internal/api/dto"
	"github.com/spiderqueue/spiderqueue/internal/auth"
	"github.com/spiderqueue/spiderqueue/internal/service"
	apperrors "github.com/spiderqueue/spiderqueue/pkg/util"
)

// AuthHandler serves registration, login and profile endpoints.
type AuthHandler struct {
	authService    *service.AuthService
	profileService *service.ProfileService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, profileService *service.ProfileService) *AuthHandler {
	return &AuthHandler{authService: authService, profileService: profileService}
}

// Register POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	session, err := h.authService.Register(c.UserContext(), req.Email, req.Name, req.Password)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": sessionResponse(session)})
}

// Login POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	session, err := h.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": sessionResponse(session)})
}

// GetProfile GET /me.
func (h *AuthHandler) GetProfile(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	user := h.profileService.ResolveUser(c.UserContext(), principal.Email)
	return c.JSON(fiber.Map{"data": dto.ProfileResponse{Email: user.Email, Name: user.Name}})
}

// UpdateProfile PUT /me.
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.profileService.SetName(c.UserContext(), principal.Email, req.Name); err != nil {
		return err
	}
	user := h.profileService.ResolveUser(c.UserContext(), principal.Email)
	return c.JSON(fiber.Map{"data": dto.ProfileResponse{Email: user.Email, Name: user.Name}})
}

func sessionResponse(session *service.Session) dto.SessionResponse {
	return dto.SessionResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		Email:     session.Email,
		Name:      session.Name,
	}
}
