package consumer

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/GringoXY/4-gamers-mailing/internal/models"
)

// Envelope is the JSON body of an inbound broker message. The nested payload
// stays serialized; the inbox stores it opaquely and the notification builder
// decodes it later against the event type tag.
type Envelope struct {
	EntityID   uuid.UUID `json:"entityId"`
	EntityType uint8     `json:"entityType"`
	EventType  string    `json:"eventType"`
	Payload    string    `json:"payload"`
}

// decodeEnvelope parses and validates a broker message body into an inbox message.
func decodeEnvelope(body []byte) (models.InboxMessage, error) {
	var envelope Envelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return models.InboxMessage{}, fmt.Errorf("failed to unmarshal message envelope: %w", err)
	}

	entityType, err := models.ParseEntityType(envelope.EntityType)
	if err != nil {
		return models.InboxMessage{}, fmt.Errorf("invalid message envelope: %w", err)
	}

	if envelope.EventType == "" {
		return models.InboxMessage{}, fmt.Errorf("invalid message envelope: empty event type")
	}

	return models.NewInboxMessage(envelope.EntityID, entityType, envelope.EventType, envelope.Payload), nil
}
