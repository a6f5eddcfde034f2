package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"promptly/internal/apperrors"
	"promptly/internal/models"
	"promptly/internal/repositories"
)

// GeneratedTextService handles the generated text lifecycle for one
// authenticated caller at a time.
type GeneratedTextService struct {
	repo      repositories.GeneratedTextRepository
	generator *GenerationService
	publisher EventPublisher
	logger    *slog.Logger
}

// NewGeneratedTextService creates a new GeneratedTextService. publisher may
// be nil, in which case no events are sent.
func NewGeneratedTextService(repo repositories.GeneratedTextRepository, generator *GenerationService, publisher EventPublisher, logger *slog.Logger) *GeneratedTextService {
	if logger == nil {
		logger = slog.Default()
	}
	return &GeneratedTextService{
		repo:      repo,
		generator: generator,
		publisher: publisher,
		logger:    logger,
	}
}

// Create generates a response for prompt and stores it for owner.
func (s *GeneratedTextService) Create(ctx context.Context, owner models.UserID, prompt string) (*models.GeneratedText, error) {
	response, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	text, err := s.repo.Create(ctx, owner, prompt, response)
	if err != nil {
		return nil, fmt.Errorf("failed to store generated text: %w", err)
	}

	s.publish(EventGeneratedTextCreated, text)
	return text, nil
}

// Get returns the record if it exists and belongs to caller.
func (s *GeneratedTextService) Get(ctx context.Context, caller models.UserID, id models.TextID) (*models.GeneratedText, error) {
	return s.load(ctx, caller, id)
}

// Update changes the supplied fields. With neither field supplied only the
// timestamp moves.
func (s *GeneratedTextService) Update(ctx context.Context, caller models.UserID, id models.TextID, newPrompt, newResponse *string) (*models.GeneratedText, error) {
	text, err := s.load(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	if newPrompt != nil && strings.TrimSpace(*newPrompt) == "" {
		return nil, apperrors.NewValidationError("prompt", "Prompt cannot be empty")
	}

	updated, err := s.repo.Update(ctx, text, newPrompt, newResponse)
	if err != nil {
		return nil, fmt.Errorf("failed to update generated text: %w", err)
	}

	s.publish(EventGeneratedTextUpdated, updated)
	return updated, nil
}

// Delete removes the record.
func (s *GeneratedTextService) Delete(ctx context.Context, caller models.UserID, id models.TextID) error {
	text, err := s.load(ctx, caller, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, text); err != nil {
		return fmt.Errorf("failed to delete generated text: %w", err)
	}

	s.publish(EventGeneratedTextDeleted, text)
	return nil
}

// load checks existence before ownership so the two failures stay distinct.
func (s *GeneratedTextService) load(ctx context.Context, caller models.UserID, id models.TextID) (*models.GeneratedText, error) {
	text, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := AuthorizeOwner(text, caller); err != nil {
		return nil, fmt.Errorf("generated text with ID %d: %w", id, err)
	}
	return text, nil
}

func (s *GeneratedTextService) publish(event string, text *models.GeneratedText) {
	if s.publisher == nil {
		return
	}

	body, err := json.Marshal(GeneratedTextEvent{
		Event:      event,
		ID:         text.ID,
		UserID:     text.UserID,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		s.logger.Error("failed to marshal event", "event", event, "error", err)
		return
	}

	if err := s.publisher.Publish(GeneratedTextExchange, event, body); err != nil {
		s.logger.Warn("failed to publish event", "event", event, "text_id", text.ID, "error", err)
	}
}
