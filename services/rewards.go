package services

import (
	"context"
	"fmt"
	"spotfinder/config"
	"spotfinder/models"

	"go.uber.org/zap"
)

type PointsStore interface {
	AddPoints(ctx context.Context, id int64, delta int) (models.User, error)
}

// EventSender hands a notification event off for delivery. Send must not
// block on the broker.
type EventSender interface {
	Send(event models.NotificationEvent)
}

type Rewards struct {
	users    PointsStore
	events   EventSender
	features config.Features
	log      *zap.Logger
}

func NewRewards(users PointsStore, events EventSender, features config.Features, log *zap.Logger) *Rewards {
	return &Rewards{users: users, events: events, features: features, log: log}
}

// Award adds delta to the user's points and emits a reward event when the
// status tier changes as a result. Only a promotion is congratulated.
func (r *Rewards) Award(ctx context.Context, userID int64, delta int) (models.User, error) {
	u, err := r.users.AddPoints(ctx, userID, delta)
	if err != nil {
		return models.User{}, err
	}

	before := StatusOf(u.Points - delta)
	after := StatusOf(u.Points)
	if before == after {
		return u, nil
	}

	r.log.Info("status changed",
		zap.Int64("user_id", u.ID),
		zap.String("from", string(before)),
		zap.String("to", string(after)),
	)
	if r.features.RewardNotifications {
		msg := fmt.Sprintf("Congratulations! You reached %s status", after)
		if delta < 0 {
			msg = fmt.Sprintf("Your status is now %s", after)
		}
		r.events.Send(models.NotificationEvent{
			UserID:  u.ID,
			Message: msg,
			Type:    models.NotificationReward,
			Email:   u.Email,
		})
	}
	return u, nil
}

func (r *Rewards) Welcome(u models.User) {
	if !r.features.WelcomeNotifications {
		return
	}
	r.events.Send(models.NotificationEvent{
		UserID:  u.ID,
		Message: fmt.Sprintf("Welcome to SpotFinder, %s! Share your first spot to start earning points.", u.Username),
		Type:    models.NotificationSystem,
		Email:   u.Email,
	})
}
