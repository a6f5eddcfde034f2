package services

import (
	"time"

	"promptly/internal/models"
)

// GeneratedTextExchange is the topic exchange lifecycle events go to.
const GeneratedTextExchange = "generated_text"

// Routing keys for generated text lifecycle events.
const (
	EventGeneratedTextCreated = "generated_text.created"
	EventGeneratedTextUpdated = "generated_text.updated"
	EventGeneratedTextDeleted = "generated_text.deleted"
)

// EventPublisher sends a message body to an exchange. *rabbitmq.Client
// satisfies it.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// GeneratedTextEvent is the JSON body of every lifecycle event.
type GeneratedTextEvent struct {
	Event      string        `json:"event"`
	ID         models.TextID `json:"id"`
	UserID     models.UserID `json:"user_id"`
	OccurredAt time.Time     `json:"occurred_at"`
}
