package models

import (
	"time"
)

const (
	NotificationSystem = "system"
	NotificationReward = "reward"
)

type Notification struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	UserID    int64     `json:"user_id" gorm:"not null;index"`
	Message   string    `json:"message" gorm:"not null"`
	Type      string    `json:"type" gorm:"size:20;not null"`
	IsRead    bool      `json:"is_read" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}

// NotificationEvent is the queue payload. Email is optional and only used
// for the email copy of the notification.
type NotificationEvent struct {
	UserID  int64  `json:"userId"`
	Message string `json:"message"`
	Type    string `json:"type"`
	Email   string `json:"email,omitempty"`
}
