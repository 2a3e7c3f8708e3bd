package services

import (
	"context"
	"encoding/json"
	"fmt"
	"spotfinder/broker"
	"spotfinder/models"
	"sync"
	"time"

	"go.uber.org/zap"
)

type NotificationWriter interface {
	Create(ctx context.Context, n *models.Notification) error
}

// Inbox turns queue messages into stored notifications and hands them to
// the optional outside delivery channels.
type Inbox struct {
	store   NotificationWriter
	deliver Deliverer
	log     *zap.Logger
	wg      sync.WaitGroup
}

func NewInbox(store NotificationWriter, deliver Deliverer, log *zap.Logger) *Inbox {
	return &Inbox{store: store, deliver: deliver, log: log}
}

func ValidateEvent(event models.NotificationEvent) error {
	if event.UserID <= 0 {
		return fmt.Errorf("%w: missing userId", broker.ErrMalformed)
	}
	if event.Message == "" {
		return fmt.Errorf("%w: missing message", broker.ErrMalformed)
	}
	switch event.Type {
	case models.NotificationSystem, models.NotificationReward:
		return nil
	default:
		return fmt.Errorf("%w: unknown type %q", broker.ErrMalformed, event.Type)
	}
}

func (i *Inbox) HandleMessage(ctx context.Context, body []byte) error {
	var event models.NotificationEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("%w: %v", broker.ErrMalformed, err)
	}
	if err := ValidateEvent(event); err != nil {
		return err
	}

	n := &models.Notification{UserID: event.UserID, Message: event.Message, Type: event.Type}
	if err := i.store.Create(ctx, n); err != nil {
		return err
	}
	i.log.Info("notification saved", zap.Int64("id", n.ID), zap.Int64("user_id", n.UserID), zap.String("type", n.Type))

	if i.deliver != nil {
		i.wg.Add(1)
		go i.fanOut(event)
	}
	return nil
}

// Wait blocks until every in-flight delivery has finished.
func (i *Inbox) Wait() {
	i.wg.Wait()
}

func (i *Inbox) fanOut(event models.NotificationEvent) {
	defer i.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			i.log.Error("delivery panic", zap.Any("panic", r))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := i.deliver.Deliver(ctx, event); err != nil {
		i.log.Warn("notification delivery failed", zap.Int64("user_id", event.UserID), zap.Error(err))
	}
}
