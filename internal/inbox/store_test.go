package inbox

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GringoXY/4-gamers-mailing/internal/models"
)

func TestMarkProcessedBatchSkipsUnprocessedMessages(t *testing.T) {
	// Messages still pending must not reach the database at all; the guard
	// short-circuits before any statement is built, so a nil handle is safe.
	store := NewGormStore(nil)

	msgs := []models.InboxMessage{
		models.NewInboxMessage(uuid.New(), models.EntityTypeOrder, "OrderCreated", "{}"),
		models.NewInboxMessage(uuid.New(), models.EntityTypeOrder, "OrderStateUpdated", "{}"),
	}

	updated, err := store.MarkProcessedBatch(context.Background(), msgs)
	require.NoError(t, err)
	assert.Zero(t, updated)
}

func TestMarkProcessedBatchEmptyInput(t *testing.T) {
	store := NewGormStore(nil)

	updated, err := store.MarkProcessedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, updated)
}
