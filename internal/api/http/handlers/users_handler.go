package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gestar-hq/gestar-service/internal/api/dto"
	"github.com/gestar-hq/gestar-service/internal/domain"
	"github.com/gestar-hq/gestar-service/internal/service"
	apperrors "github.com/gestar-hq/gestar-service/pkg/util"
)

// UsersHandler exposes the user directory.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(users *service.UserService) *UsersHandler {
	return &UsersHandler{users: users}
}

// ListUsers GET /users.
func (h *UsersHandler) ListUsers(c *fiber.Ctx) error {
	onlyActive := !c.QueryBool("include_inactive")
	users, err := h.users.ListUsers(c.Context(), onlyActive)
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, userResponse(&users[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetUser GET /users/:id.
func (h *UsersHandler) GetUser(c *fiber.Ctx) error {
	userID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	user, err := h.users.GetUser(c.Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(user)})
}

// CreateUser POST /users. Administrator only.
func (h *UsersHandler) CreateUser(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, err := h.users.CreateUser(c.Context(), service.UserCreateInput{
		Name:     req.Name,
		Email:    req.Email,
		Role:     req.Role,
		Area:     req.Area,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": userResponse(user)})
}

// UpdateUser PATCH /users/:id. Administrator only.
func (h *UsersHandler) UpdateUser(c *fiber.Ctx) error {
	userID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	update := domain.UserUpdate{
		Role:   req.Role,
		Area:   req.Area,
		Email:  req.Email,
		Active: req.Active,
	}
	if err := h.users.UpdateUser(c.Context(), userID, update); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func userResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		Area:      user.Area,
		Active:    user.Active,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
