package repositories

import (
	"context"
	"fmt"
	"sync"
	"time"

	"promptly/internal/apperrors"
	"promptly/internal/models"
)

// MemoryGeneratedTextRepository is an in-memory implementation of
// GeneratedTextRepository. It does not check that owners exist.
type MemoryGeneratedTextRepository struct {
	texts  map[models.TextID]models.GeneratedText
	nextID models.TextID
	now    func() time.Time
	mu     sync.RWMutex
}

// NewMemoryGeneratedTextRepository creates a new instance of MemoryGeneratedTextRepository.
func NewMemoryGeneratedTextRepository() *MemoryGeneratedTextRepository {
	return &MemoryGeneratedTextRepository{
		texts: make(map[models.TextID]models.GeneratedText),
		now:   time.Now,
	}
}

// WithClock replaces the source of record timestamps.
func (r *MemoryGeneratedTextRepository) WithClock(now func() time.Time) *MemoryGeneratedTextRepository {
	r.now = now
	return r
}

// Create adds a new record.
func (r *MemoryGeneratedTextRepository) Create(_ context.Context, ownerID models.UserID, prompt, response string) (*models.GeneratedText, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	text := models.GeneratedText{
		ID:        r.nextID,
		UserID:    ownerID,
		Prompt:    prompt,
		Response:  response,
		Timestamp: r.now().UTC(),
	}
	r.texts[text.ID] = text
	return &text, nil
}

// GetByID returns a record by its ID.
func (r *MemoryGeneratedTextRepository) GetByID(_ context.Context, id models.TextID) (*models.GeneratedText, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	text, ok := r.texts[id]
	if !ok {
		return nil, fmt.Errorf("generated text with ID %d: %w", id, apperrors.ErrNotFound)
	}
	return &text, nil
}

// Update modifies the supplied fields of an existing record.
func (r *MemoryGeneratedTextRepository) Update(_ context.Context, text *models.GeneratedText, newPrompt, newResponse *string) (*models.GeneratedText, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.texts[text.ID]
	if !ok {
		return nil, fmt.Errorf("generated text with ID %d: %w", text.ID, apperrors.ErrNotFound)
	}
	if newPrompt != nil {
		stored.Prompt = *newPrompt
	}
	if newResponse != nil {
		stored.Response = *newResponse
	}
	stored.Timestamp = r.now().UTC()
	r.texts[stored.ID] = stored
	return &stored, nil
}

// Delete removes a record.
func (r *MemoryGeneratedTextRepository) Delete(_ context.Context, text *models.GeneratedText) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.texts[text.ID]; !ok {
		return fmt.Errorf("generated text with ID %d: %w", text.ID, apperrors.ErrNotFound)
	}
	delete(r.texts, text.ID)
	return nil
}
