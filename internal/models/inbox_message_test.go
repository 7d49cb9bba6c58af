package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInboxMessage(t *testing.T) {
	entityID := uuid.New()

	msg := NewInboxMessage(entityID, EntityTypeOrder, "OrderCreated", `{"Id":"abc"}`)

	assert.NotEqual(t, uuid.Nil, msg.ID)
	assert.Equal(t, entityID, msg.EntityID)
	assert.Equal(t, EntityTypeOrder, msg.EntityType)
	assert.Equal(t, "OrderCreated", msg.EventType)
	assert.Equal(t, `{"Id":"abc"}`, msg.Payload)
	assert.Nil(t, msg.ProcessedAt)
	assert.False(t, msg.CreatedAt.IsZero())
	assert.True(t, msg.IsPending())
}

func TestNewInboxMessageUniqueIdentity(t *testing.T) {
	entityID := uuid.New()

	first := NewInboxMessage(entityID, EntityTypeOrder, "OrderCreated", "{}")
	second := NewInboxMessage(entityID, EntityTypeOrder, "OrderCreated", "{}")

	assert.NotEqual(t, first.ID, second.ID)
}

func TestMarkProcessedIsOneShot(t *testing.T) {
	msg := NewInboxMessage(uuid.New(), EntityTypeOrder, "OrderCreated", "{}")

	now := time.Now()
	require.NoError(t, msg.MarkProcessed(now))
	require.NotNil(t, msg.ProcessedAt)
	first := *msg.ProcessedAt

	err := msg.MarkProcessed(now.Add(time.Hour))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already processed")
	assert.Equal(t, first, *msg.ProcessedAt)
}

func TestIsPending(t *testing.T) {
	msg := NewInboxMessage(uuid.New(), EntityTypeOrder, "OrderCreated", "{}")
	assert.True(t, msg.IsPending())

	require.NoError(t, msg.MarkProcessed(time.Now()))
	assert.False(t, msg.IsPending())

	deleted := NewInboxMessage(uuid.New(), EntityTypeOrder, "OrderCreated", "{}")
	now := time.Now()
	deleted.DeletedAt = &now
	assert.False(t, deleted.IsPending())
}

func TestParseEntityType(t *testing.T) {
	entityType, err := ParseEntityType(1)
	require.NoError(t, err)
	assert.Equal(t, EntityTypeOrder, entityType)
	assert.Equal(t, "order", entityType.String())

	_, err = ParseEntityType(99)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown entity type")
}
