// Package consumer relays domain events from RabbitMQ into the inbox store.
//
// A delivery is acknowledged only after its inbox row is committed. Decode
// and store failures leave the delivery unacked so the broker redelivers it,
// which gives at-least-once semantics: a crash between insert and ack yields
// a duplicate pending row on redelivery, never a lost event.
package consumer

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/GringoXY/4-gamers-mailing/internal/config"
	"github.com/GringoXY/4-gamers-mailing/internal/inbox"
	"github.com/GringoXY/4-gamers-mailing/internal/metrics"
	"github.com/GringoXY/4-gamers-mailing/internal/rabbitmq"
)

// Consumer handles consuming broker messages and writing them into the inbox
type Consumer struct {
	cfg         *config.RabbitMQConfig
	conn        *rabbitmq.Connection
	store       inbox.Store
	logger      *zap.Logger
	ctx         context.Context
	cancel      context.CancelFunc
	consumerTag string
	started     bool
}

// NewConsumer creates a new consumer instance with dependencies
func NewConsumer(cfg *config.RabbitMQConfig, conn *rabbitmq.Connection, store inbox.Store, logger *zap.Logger) *Consumer {
	ctx, cancel := context.WithCancel(context.Background())
	return &Consumer{
		cfg:         cfg,
		conn:        conn,
		store:       store,
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
		consumerTag: fmt.Sprintf("mailing-consumer-%d", time.Now().Unix()),
	}
}

// Start declares the durable queue and starts consuming messages
func (c *Consumer) Start() error {
	if c.cfg.QueueName == "" {
		return fmt.Errorf("queue name is required")
	}

	if err := c.conn.DeclareQueue(c.cfg.QueueName); err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := c.startConsuming(); err != nil {
		return err
	}

	c.started = true
	c.logger.Info("Consumer started and consuming messages",
		zap.String("queue", c.cfg.QueueName),
		zap.String("consumer_tag", c.consumerTag),
	)
	return nil
}

// startConsuming starts consuming messages from the queue
func (c *Consumer) startConsuming() error {
	// Prefetch one unacked message at a time; ordering is not required but
	// there is no reason to buffer deliveries we may fail to persist.
	if err := c.conn.SetQoS(1, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	messages, err := c.conn.ConsumeMessages(
		c.cfg.QueueName,
		c.consumerTag,
		false, // autoAck (we ack manually after the insert)
		false, // exclusive
		false, // noLocal
		false, // noWait
	)
	if err != nil {
		return fmt.Errorf("failed to start consuming from queue %s: %w", c.cfg.QueueName, err)
	}

	go c.processMessages(messages)

	return nil
}

// Stop gracefully stops the consumer
func (c *Consumer) Stop() error {
	c.logger.Info("Stopping consumer",
		zap.String("consumer_tag", c.consumerTag),
	)
	c.cancel()

	ch := c.conn.GetChannel()
	if ch != nil {
		if err := ch.Cancel(c.consumerTag, false); err != nil {
			c.logger.Error("Failed to cancel consumer",
				zap.String("consumer_tag", c.consumerTag),
				zap.Error(err),
			)
		}
	}

	c.logger.Info("Consumer stopped")
	return nil
}

// processMessages processes messages from the queue
func (c *Consumer) processMessages(messages <-chan amqp.Delivery) {
	for {
		select {
		case <-c.ctx.Done():
			c.logger.Info("Consumer context cancelled, stopping message processing")
			return
		case msg, ok := <-messages:
			if !ok {
				c.logger.Warn("Message channel closed, attempting to restart consumer...",
					zap.String("queue", c.cfg.QueueName),
				)
				// Channel closed - keep retrying until the connection
				// recovers or the context is cancelled
				for c.started {
					select {
					case <-c.ctx.Done():
						return
					default:
					}

					time.Sleep(2 * time.Second)

					if !c.conn.IsHealthy() {
						c.logger.Debug("Connection not healthy yet, waiting...",
							zap.String("queue", c.cfg.QueueName),
						)
						continue
					}

					if err := c.startConsuming(); err != nil {
						c.logger.Error("Failed to restart consuming after channel close, will retry",
							zap.String("queue", c.cfg.QueueName),
							zap.Error(err),
						)
						time.Sleep(5 * time.Second)
						continue
					}

					c.logger.Info("Successfully restarted consumer after channel close",
						zap.String("queue", c.cfg.QueueName),
					)
					return
				}
				return
			}
			c.handleDelivery(msg)
		}
	}
}

// handleDelivery persists one delivery and acks it afterwards. On any failure
// the delivery is left unacked; the broker redelivers per its own policy, so
// a permanently malformed message keeps coming back until operators drain it.
func (c *Consumer) handleDelivery(msg amqp.Delivery) {
	message, err := decodeEnvelope(msg.Body)
	if err != nil {
		c.logger.Error("Failed to decode message from queue",
			zap.String("queue", c.cfg.QueueName),
			zap.Uint64("delivery_tag", msg.DeliveryTag),
			zap.Error(err),
		)
		metrics.MessagesRejected.Inc()
		return
	}

	if err := c.store.Insert(c.ctx, &message); err != nil {
		c.logger.Error("Failed to persist inbox message",
			zap.String("queue", c.cfg.QueueName),
			zap.Uint64("delivery_tag", msg.DeliveryTag),
			zap.String("event_type", message.EventType),
			zap.Error(err),
		)
		metrics.MessagesRejected.Inc()
		return
	}

	// The row is committed; only now is the broker released from redelivery.
	if err := msg.Ack(false); err != nil {
		c.logger.Error("Failed to ack message from queue",
			zap.String("queue", c.cfg.QueueName),
			zap.Uint64("delivery_tag", msg.DeliveryTag),
			zap.Error(err),
		)
		return
	}

	metrics.MessagesStored.Inc()
	c.logger.Info("Inbox message recorded",
		zap.String("queue", c.cfg.QueueName),
		zap.String("inbox_message_id", message.ID.String()),
		zap.String("entity_id", message.EntityID.String()),
		zap.String("event_type", message.EventType),
	)
}
