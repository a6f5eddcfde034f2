package handlers

import (
	"fmt"
	"log/slog"

	"promptly/internal/apperrors"
	"promptly/internal/middleware"
	"promptly/internal/models"
	"promptly/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// GeneratedTextHandler handles HTTP requests for generated texts.
type GeneratedTextHandler struct {
	textService *services.GeneratedTextService
	validate    *validator.Validate
	logger      *slog.Logger
}

// NewGeneratedTextHandler creates a new GeneratedTextHandler.
func NewGeneratedTextHandler(textService *services.GeneratedTextService, logger *slog.Logger) *GeneratedTextHandler {
	return &GeneratedTextHandler{
		textService: textService,
		validate:    newValidator(),
		logger:      loggerOrDefault(logger),
	}
}

// RegisterRoutes mounts the generated text routes behind auth.
func (h *GeneratedTextHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	router.Post("/generate-text", auth, h.CreateGeneratedText)

	textRoutes := router.Group("/generated-text", auth)
	textRoutes.Get("/:id", h.GetGeneratedText)
	textRoutes.Put("/:id", h.UpdateGeneratedText)
	textRoutes.Delete("/:id", h.DeleteGeneratedText)
}

// GenerateRequest is the body of POST /generate-text.
type GenerateRequest struct {
	Prompt string `json:"prompt" validate:"required"`
}

// UpdateRequest is the body of PUT /generated-text/:id. Absent fields are
// left unchanged.
type UpdateRequest struct {
	Prompt   *string `json:"prompt"`
	Response *string `json:"response"`
}

// CreateGeneratedText handles POST /generate-text.
func (h *GeneratedTextHandler) CreateGeneratedText(c *fiber.Ctx) error {
	caller, ok := middleware.CurrentUserID(c)
	if !ok {
		return respondError(c, h.logger, apperrors.ErrTokenMissing)
	}

	var req GenerateRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	text, err := h.textService.Create(c.UserContext(), caller, req.Prompt)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	h.logger.Info("generated text created", "text_id", text.ID, "user_id", caller)
	return c.Status(fiber.StatusCreated).JSON(text)
}

// GetGeneratedText handles GET /generated-text/:id.
func (h *GeneratedTextHandler) GetGeneratedText(c *fiber.Ctx) error {
	caller, id, err := h.target(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	text, err := h.textService.Get(c.UserContext(), caller, id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(text)
}

// UpdateGeneratedText handles PUT /generated-text/:id.
func (h *GeneratedTextHandler) UpdateGeneratedText(c *fiber.Ctx) error {
	caller, id, err := h.target(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	var req UpdateRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	text, err := h.textService.Update(c.UserContext(), caller, id, req.Prompt, req.Response)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(text)
}

// DeleteGeneratedText handles DELETE /generated-text/:id.
func (h *GeneratedTextHandler) DeleteGeneratedText(c *fiber.Ctx) error {
	caller, id, err := h.target(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	if err := h.textService.Delete(c.UserContext(), caller, id); err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Generated text with ID %d deleted", id),
	})
}

// target returns the caller and the record id from the path. An id that
// cannot name a record is reported as not found.
func (h *GeneratedTextHandler) target(c *fiber.Ctx) (models.UserID, models.TextID, error) {
	caller, ok := middleware.CurrentUserID(c)
	if !ok {
		return 0, 0, apperrors.ErrTokenMissing
	}

	id, err := models.ParseTextID(c.Params("id"))
	if err != nil {
		return 0, 0, fmt.Errorf("generated text %q: %w", c.Params("id"), apperrors.ErrNotFound)
	}
	return caller, id, nil
}
