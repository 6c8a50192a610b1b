package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gestar-hq/gestar-service/internal/api/dto"
	"github.com/gestar-hq/gestar-service/internal/auth"
	"github.com/gestar-hq/gestar-service/internal/service"
	apperrors "github.com/gestar-hq/gestar-service/pkg/util"
)

// AuthHandler exposes session endpoints.
type AuthHandler struct {
	users  *service.UserService
	tokens *auth.TokenManager
}

// NewAuthHandler constructs handler.
func NewAuthHandler(users *service.UserService, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Name == "" {
		return apperrors.NewValidationError("name required", nil)
	}

	user, err := h.users.Authenticate(c.Context(), req.Name, req.Password)
	if err != nil {
		return err
	}
	token, expiresAt, err := h.tokens.GenerateToken(user)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user": userResponse(user),
			"auth": dto.AuthResponse{Token: token, ExpiresAt: expiresAt},
		},
	})
}
