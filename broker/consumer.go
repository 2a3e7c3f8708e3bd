package broker

import (
	"context"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Handler processes one message body. Returning an error wrapping
// ErrMalformed rejects the message; any other error leaves it unacked.
type Handler func(ctx context.Context, body []byte) error

type Consumer struct {
	url    string
	queue  string
	delay  time.Duration
	handle Handler
	log    *zap.Logger
}

func NewConsumer(url, queue string, delay time.Duration, handle Handler, log *zap.Logger) *Consumer {
	return &Consumer{url: url, queue: queue, delay: delay, handle: handle, log: log}
}

// Run consumes until ctx is cancelled, reconnecting after a fixed delay
// whenever the connection cannot be made or is lost.
func (c *Consumer) Run(ctx context.Context) {
	for {
		err := c.consume(ctx)
		if ctx.Err() != nil {
			return
		}
		c.log.Warn("consumer disconnected, retrying",
			zap.String("queue", c.queue),
			zap.Duration("delay", c.delay),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return
		case <-time.After(c.delay):
		}
	}
}

func (c *Consumer) consume(ctx context.Context) error {
	conn, err := amqp.Dial(c.url)
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if err := declare(ch, c.queue); err != nil {
		return err
	}

	deliveries, err := ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.queue, err)
	}
	closed := conn.NotifyClose(make(chan *amqp.Error, 1))

	c.log.Info("waiting for messages", zap.String("queue", c.queue))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case amqpErr := <-closed:
			return fmt.Errorf("connection closed: %v", amqpErr)
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			c.dispatch(ctx, d)
		}
	}
}

func (c *Consumer) dispatch(ctx context.Context, d amqp.Delivery) {
	err := c.handle(ctx, d.Body)
	switch {
	case err == nil:
		if ackErr := d.Ack(false); ackErr != nil {
			c.log.Error("ack failed", zap.Uint64("tag", d.DeliveryTag), zap.Error(ackErr))
		}
	case errors.Is(err, ErrMalformed):
		c.log.Warn("rejecting malformed message", zap.Uint64("tag", d.DeliveryTag), zap.Error(err))
		if nackErr := d.Nack(false, false); nackErr != nil {
			c.log.Error("nack failed", zap.Uint64("tag", d.DeliveryTag), zap.Error(nackErr))
		}
	default:
		c.log.Error("message processing failed, leaving unacked", zap.Uint64("tag", d.DeliveryTag), zap.Error(err))
	}
}
