package store

import (
	"context"
	"database/sql"
	"fmt"
	"spotfinder/db"
	"spotfinder/models"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type NotificationStore struct {
	gdb *gorm.DB
}

// OpenNotificationStore wraps an existing connection pool with gorm's
// postgres dialect.
func OpenNotificationStore(conn *sql.DB) (*NotificationStore, error) {
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), &gorm.Config{
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open gorm: %w", err)
	}
	return &NotificationStore{gdb: gdb}, nil
}

func (s *NotificationStore) Create(ctx context.Context, n *models.Notification) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	if err := s.gdb.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("create notification: %w", db.MapError(err))
	}
	return nil
}

// ListByUser returns the user's notifications, newest first.
func (s *NotificationStore) ListByUser(ctx context.Context, userID int64) ([]models.Notification, error) {
	notifications := []models.Notification{}
	err := s.gdb.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&notifications).Error
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", db.MapError(err))
	}
	return notifications, nil
}

func (s *NotificationStore) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := s.gdb.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count notifications: %w", db.MapError(err))
	}
	return count, nil
}

func (s *NotificationStore) MarkRead(ctx context.Context, id int64) error {
	res := s.gdb.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ?", id).
		Update("is_read", true)
	if res.Error != nil {
		return fmt.Errorf("mark read: %w", db.MapError(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("mark read: %w", db.ErrNotFound)
	}
	return nil
}

// PurgeRead deletes read notifications created before cutoff.
func (s *NotificationStore) PurgeRead(ctx context.Context, cutoff time.Time) (int64, error) {
	res := s.gdb.WithContext(ctx).
		Where("is_read = ? AND created_at < ?", true, cutoff).
		Delete(&models.Notification{})
	if res.Error != nil {
		return 0, fmt.Errorf("purge notifications: %w", db.MapError(res.Error))
	}
	return res.RowsAffected, nil
}

func (s *NotificationStore) PingContext(ctx context.Context) error {
	sqlDB, err := s.gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
