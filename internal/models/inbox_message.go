package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// InboxMessage is a durably recorded domain event waiting to be turned into
// an outbound notification. Rows are created by the broker consumer and
// mutated only by the dispatch scheduler, which sets ProcessedAt.
//
// There is no deduplication key on (entity_id, event_type): a broker
// redelivery that races a crash between insert and ack produces a duplicate
// pending row, which downstream consumers tolerate (at-least-once).
type InboxMessage struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	EntityID    uuid.UUID  `gorm:"type:uuid;not null" json:"entity_id"`
	EntityType  EntityType `gorm:"type:smallint;not null" json:"entity_type"`
	EventType   string     `gorm:"type:varchar(255);not null" json:"event_type"`
	Payload     string     `gorm:"type:text;not null" json:"payload"`
	ProcessedAt *time.Time `json:"processed_at"`
	CreatedAt   time.Time  `gorm:"not null;index" json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

func (InboxMessage) TableName() string {
	return "inbox_messages"
}

// NewInboxMessage creates an unprocessed inbox message with a fresh identity.
func NewInboxMessage(entityID uuid.UUID, entityType EntityType, eventType, payload string) InboxMessage {
	return InboxMessage{
		ID:         uuid.New(),
		EntityID:   entityID,
		EntityType: entityType,
		EventType:  eventType,
		Payload:    payload,
		CreatedAt:  time.Now().UTC(),
	}
}

// MarkProcessed records terminal success. The transition is one-shot: once
// ProcessedAt is set it is never cleared or overwritten.
func (m *InboxMessage) MarkProcessed(at time.Time) error {
	if m.IsProcessed() {
		return fmt.Errorf("inbox message %s is already processed", m.ID)
	}
	at = at.UTC()
	m.ProcessedAt = &at
	return nil
}

func (m *InboxMessage) IsProcessed() bool {
	return m.ProcessedAt != nil
}

func (m *InboxMessage) IsDeleted() bool {
	return m.DeletedAt != nil
}

// IsPending reports whether the message is still waiting for dispatch:
// not processed and not soft-deleted.
func (m *InboxMessage) IsPending() bool {
	return !m.IsProcessed() && !m.IsDeleted()
}
