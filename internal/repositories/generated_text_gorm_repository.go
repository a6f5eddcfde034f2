package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"promptly/internal/apperrors"
	"promptly/internal/models"

	"gorm.io/gorm"
)

// GORMGeneratedTextRepository is a GORM implementation of GeneratedTextRepository.
type GORMGeneratedTextRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGORMGeneratedTextRepository creates a new instance of GORMGeneratedTextRepository.
func NewGORMGeneratedTextRepository(db *gorm.DB) *GORMGeneratedTextRepository {
	return &GORMGeneratedTextRepository{
		db:  db,
		now: time.Now,
	}
}

// WithClock replaces the source of record timestamps.
func (r *GORMGeneratedTextRepository) WithClock(now func() time.Time) *GORMGeneratedTextRepository {
	r.now = now
	return r
}

// Create stores a new record stamped with the current time.
func (r *GORMGeneratedTextRepository) Create(ctx context.Context, ownerID models.UserID, prompt, response string) (*models.GeneratedText, error) {
	text := &models.GeneratedText{
		UserID:    ownerID,
		Prompt:    prompt,
		Response:  response,
		Timestamp: r.now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(text).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, fmt.Errorf("owner %d: %w", ownerID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to create generated text: %w", err)
	}
	return text, nil
}

// GetByID retrieves a single record by its ID.
func (r *GORMGeneratedTextRepository) GetByID(ctx context.Context, id models.TextID) (*models.GeneratedText, error) {
	var text models.GeneratedText
	if err := r.db.WithContext(ctx).First(&text, "id = ?", uint64(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("generated text with ID %d: %w", id, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get generated text by ID %d: %w", id, err)
	}
	return &text, nil
}

// Update writes the supplied fields and a fresh timestamp in one
// transaction and returns the stored row.
func (r *GORMGeneratedTextRepository) Update(ctx context.Context, text *models.GeneratedText, newPrompt, newResponse *string) (*models.GeneratedText, error) {
	updates := map[string]interface{}{
		"timestamp": r.now().UTC(),
	}
	if newPrompt != nil {
		updates["prompt"] = *newPrompt
	}
	if newResponse != nil {
		updates["response"] = *newResponse
	}

	var updated models.GeneratedText
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.GeneratedText{}).Where("id = ?", uint64(text.ID)).Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("failed to update generated text %d: %w", text.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("generated text with ID %d: %w", text.ID, apperrors.ErrNotFound)
		}
		if err := tx.First(&updated, "id = ?", uint64(text.ID)).Error; err != nil {
			return fmt.Errorf("failed to reload generated text %d: %w", text.ID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes the record.
func (r *GORMGeneratedTextRepository) Delete(ctx context.Context, text *models.GeneratedText) error {
	res := r.db.WithContext(ctx).Delete(&models.GeneratedText{}, "id = ?", uint64(text.ID))
	if res.Error != nil {
		return fmt.Errorf("failed to delete generated text %d: %w", text.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("generated text with ID %d: %w", text.ID, apperrors.ErrNotFound)
	}
	return nil
}
