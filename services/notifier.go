package services

import (
	"context"
	"spotfinder/models"
	"sync"
	"time"

	"go.uber.org/zap"
)

type Publisher interface {
	Publish(ctx context.Context, event models.NotificationEvent) error
}

// Notifier publishes events in the background. Failures are logged and
// never reach the caller.
type Notifier struct {
	pub     Publisher
	timeout time.Duration
	log     *zap.Logger
	wg      sync.WaitGroup
}

func NewNotifier(pub Publisher, timeout time.Duration, log *zap.Logger) *Notifier {
	return &Notifier{pub: pub, timeout: timeout, log: log}
}

func (n *Notifier) Send(event models.NotificationEvent) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				n.log.Error("notification publish panic", zap.Any("panic", r))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()

		if err := n.pub.Publish(ctx, event); err != nil {
			n.log.Warn("notification publish failed",
				zap.Int64("user_id", event.UserID),
				zap.String("type", event.Type),
				zap.Error(err),
			)
			return
		}
		n.log.Debug("notification published", zap.Int64("user_id", event.UserID), zap.String("type", event.Type))
	}()
}

// Wait blocks until every in-flight publish has finished.
func (n *Notifier) Wait() {
	n.wg.Wait()
}
