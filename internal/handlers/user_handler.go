package handlers

import (
	"log/slog"

	"promptly/internal/apperrors"
	"promptly/internal/middleware"
	"promptly/internal/services"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles HTTP requests about the authenticated user.
type UserHandler struct {
	userService *services.UserService
	logger      *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *services.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      loggerOrDefault(logger),
	}
}

// RegisterRoutes mounts the user routes behind auth.
func (h *UserHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	userRoutes := router.Group("/user", auth)
	userRoutes.Get("/profile", h.GetProfile)
}

// GetProfile returns the caller's id and username.
func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	id, ok := middleware.CurrentUserID(c)
	if !ok {
		return respondError(c, h.logger, apperrors.ErrTokenMissing)
	}

	user, err := h.userService.GetProfile(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(user)
}
