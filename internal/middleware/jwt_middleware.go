package middleware

import (
	"errors"
	"log/slog"
	"strings"

	"promptly/internal/apperrors"
	"promptly/internal/metrics"
	"promptly/internal/models"
	"promptly/internal/services"

	"github.com/gofiber/fiber/v2"
)

const userIDKey = "user_id"

// UnauthorizedMessage is the only message a rejected request ever sees.
const UnauthorizedMessage = "Invalid or missing token"

// AuthRequired is a Fiber middleware to check for a valid JWT token.
func AuthRequired(authService *services.AuthService, logger *slog.Logger, m *metrics.Metrics) fiber.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return func(c *fiber.Ctx) error {
		tokenString, err := bearerToken(c.Get(fiber.HeaderAuthorization))
		if err == nil {
			var id models.UserID
			id, err = authService.ResolveToken(tokenString)
			if err == nil {
				c.Locals(userIDKey, id)
				return c.Next()
			}
		}

		reason := failureReason(err)
		logger.Info("request rejected", "reason", reason, "path", c.Path(), "error", err)
		m.RecordAuthFailure(reason)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": UnauthorizedMessage,
		})
	}
}

// CurrentUserID returns the id stored by AuthRequired.
func CurrentUserID(c *fiber.Ctx) (models.UserID, bool) {
	id, ok := c.Locals(userIDKey).(models.UserID)
	return id, ok
}

// Expected format: "Bearer <token>"
func bearerToken(header string) (string, error) {
	if header == "" {
		return "", apperrors.ErrTokenMissing
	}
	scheme, token, _ := strings.Cut(strings.TrimSpace(header), " ")
	if !strings.EqualFold(scheme, "Bearer") {
		return "", apperrors.ErrTokenInvalid
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", apperrors.ErrTokenMissing
	}
	return token, nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrTokenMissing):
		return "missing"
	case errors.Is(err, apperrors.ErrTokenExpired):
		return "expired"
	default:
		return "invalid"
	}
}
