package repositories

import (
	"context"

	"promptly/internal/models"
)

// GeneratedTextRepository defines the interface for generated text data
// access. Every method is all-or-nothing.
type GeneratedTextRepository interface {
	Create(ctx context.Context, ownerID models.UserID, prompt, response string) (*models.GeneratedText, error)
	GetByID(ctx context.Context, id models.TextID) (*models.GeneratedText, error)
	// Update sets only the non-nil fields and always refreshes Timestamp.
	Update(ctx context.Context, text *models.GeneratedText, newPrompt, newResponse *string) (*models.GeneratedText, error)
	Delete(ctx context.Context, text *models.GeneratedText) error
}
