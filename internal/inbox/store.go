// Package inbox owns the durable record store for inbound domain events.
//
// The store contract is deliberately narrow: the consumer only inserts, the
// dispatch scheduler only reads pending rows and flips processed_at. Every
// read applies the pending predicate explicitly; soft-deleted rows are
// invisible to all queries.
package inbox

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/GringoXY/4-gamers-mailing/internal/models"
)

// pendingPredicate selects rows that are neither processed nor soft-deleted.
// This is the store's documented definition of "pending"; no implicit ORM
// scoping is involved.
const pendingPredicate = "processed_at IS NULL AND deleted_at IS NULL"

// Store is the durable record store consumed by the consumer and scheduler.
type Store interface {
	// Insert persists a freshly created inbox message. There is no
	// deduplication: redelivered broker messages produce duplicate rows.
	Insert(ctx context.Context, msg *models.InboxMessage) error

	// FetchPending returns every message with processed_at and deleted_at
	// both null, oldest first.
	FetchPending(ctx context.Context) ([]models.InboxMessage, error)

	// MarkProcessedBatch persists the processed subset of msgs in a single
	// best-effort statement and reports how many rows were updated. Rows
	// whose processed_at is already set are left untouched, keeping the
	// transition one-shot even if a stale batch is replayed.
	MarkProcessedBatch(ctx context.Context, msgs []models.InboxMessage) (int64, error)

	// CountPending returns the current pending depth.
	CountPending(ctx context.Context) (int64, error)
}

// GormStore implements Store on top of a GORM Postgres connection.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Insert(ctx context.Context, msg *models.InboxMessage) error {
	if err := s.db.WithContext(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("failed to insert inbox message %s: %w", msg.ID, err)
	}
	return nil
}

func (s *GormStore) FetchPending(ctx context.Context) ([]models.InboxMessage, error) {
	var messages []models.InboxMessage
	err := s.db.WithContext(ctx).
		Where(pendingPredicate).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending inbox messages: %w", err)
	}
	return messages, nil
}

func (s *GormStore) MarkProcessedBatch(ctx context.Context, msgs []models.InboxMessage) (int64, error) {
	ids := make([]uuid.UUID, 0, len(msgs))
	for _, msg := range msgs {
		if msg.IsProcessed() {
			ids = append(ids, msg.ID)
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	result := s.db.WithContext(ctx).
		Model(&models.InboxMessage{}).
		Where("id IN ?", ids).
		Where(pendingPredicate).
		Updates(map[string]interface{}{
			"processed_at": now,
			"updated_at":   now,
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark inbox messages processed: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (s *GormStore) CountPending(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.InboxMessage{}).
		Where(pendingPredicate).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count pending inbox messages: %w", err)
	}
	return count, nil
}
