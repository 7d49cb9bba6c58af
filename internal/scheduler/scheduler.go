// Package scheduler drives the interval-based dispatch of pending inbox
// records into outbound emails.
//
// The loop has two states: waiting out the interval and running one cycle.
// Cancellation during the wait exits immediately without starting a cycle; a
// cycle that is already running completes before the loop exits. Failures
// are contained at the smallest scope that preserves progress: one bad
// record never blocks its siblings, one bad cycle never prevents the next.
package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/GringoXY/4-gamers-mailing/internal/mailer"
	"github.com/GringoXY/4-gamers-mailing/internal/metrics"
	"github.com/GringoXY/4-gamers-mailing/internal/models"
)

// RecordStore is the slice of the inbox store the scheduler consumes.
type RecordStore interface {
	FetchPending(ctx context.Context) ([]models.InboxMessage, error)
	MarkProcessedBatch(ctx context.Context, msgs []models.InboxMessage) (int64, error)
}

// NotificationBuilder composes the outgoing email for one inbox record.
type NotificationBuilder interface {
	Build(ctx context.Context, msg models.InboxMessage) (mailer.Email, error)
}

// Scheduler owns the dispatch timer loop.
type Scheduler struct {
	store    RecordStore
	builder  NotificationBuilder
	sender   mailer.Sender
	interval time.Duration
	logger   *zap.Logger
}

func New(store RecordStore, builder NotificationBuilder, sender mailer.Sender, interval time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		store:    store,
		builder:  builder,
		sender:   sender,
		interval: interval,
		logger:   logger,
	}
}

// Run blocks until ctx is cancelled, executing one dispatch cycle per
// interval. The first cycle runs after one full interval has elapsed.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("Dispatch scheduler started",
		zap.Duration("interval", s.interval),
	)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Dispatch scheduler stopped")
			return
		case <-ticker.C:
			s.runCycle(ctx)
		}
	}
}

// runCycle reads all pending records, attempts notification for each with
// isolated failure, then persists the processed subset in one batch.
//
// A crash or persist failure after sends but before the batch update loses
// the cycle's in-memory progress: those records are re-read as pending next
// cycle and their emails are sent again. That duplicate-send window is an
// accepted property of the design, traded for not holding a transaction
// open across external calls.
func (s *Scheduler) runCycle(ctx context.Context) {
	messages, err := s.store.FetchPending(ctx)
	if err != nil {
		s.logger.Error("Failed to fetch pending inbox messages, skipping cycle",
			zap.Error(err),
		)
		return
	}

	if len(messages) == 0 {
		s.logger.Debug("No pending inbox messages")
		return
	}

	s.logger.Info("Dispatch cycle started",
		zap.Int("pending_count", len(messages)),
	)

	processed := 0
	for i := range messages {
		if err := s.dispatch(ctx, messages[i]); err != nil {
			// Record-scoped failure: log and leave processed_at unset so
			// the record is retried next cycle.
			s.logger.Error("Failed to dispatch inbox message",
				zap.String("inbox_message_id", messages[i].ID.String()),
				zap.String("event_type", messages[i].EventType),
				zap.Error(err),
			)
			metrics.RecordsFailed.Inc()
			continue
		}

		if err := messages[i].MarkProcessed(time.Now()); err != nil {
			s.logger.Error("Failed to mark inbox message processed",
				zap.String("inbox_message_id", messages[i].ID.String()),
				zap.Error(err),
			)
			continue
		}

		metrics.RecordsProcessed.Inc()
		processed++
	}

	if _, err := s.store.MarkProcessedBatch(ctx, messages); err != nil {
		// Cycle-scoped failure: all in-memory progress is lost and every
		// record reverts to pending, including ones already emailed.
		s.logger.Error("Failed to persist dispatch batch, records remain pending",
			zap.Int("processed_in_memory", processed),
			zap.Error(err),
		)
	}

	metrics.DispatchCycles.Inc()
	s.logger.Info("Dispatch cycle finished",
		zap.Int("processed", processed),
	)
	if notProcessed := len(messages) - processed; notProcessed > 0 {
		s.logger.Warn("Some inbox messages were not processed",
			zap.Int("not_processed", notProcessed),
		)
	}
}

// dispatch builds and sends the notification for a single record.
func (s *Scheduler) dispatch(ctx context.Context, msg models.InboxMessage) error {
	email, err := s.builder.Build(ctx, msg)
	if err != nil {
		return err
	}

	s.logger.Info("Sending email",
		zap.String("inbox_message_id", msg.ID.String()),
		zap.String("recipient", email.To),
		zap.Bool("has_attachment", email.Attachment != nil),
	)

	if err := s.sender.Send(ctx, email); err != nil {
		return err
	}

	s.logger.Info("Email sent",
		zap.String("inbox_message_id", msg.ID.String()),
		zap.String("recipient", email.To),
	)
	return nil
}
