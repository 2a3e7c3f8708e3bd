package models

import (
	"time"
)

type Media struct {
	ID         int64     `json:"id"`
	SpotID     int64     `json:"spot_id"`
	ImageURL   string    `json:"image_url"`
	StorageKey string    `json:"-"`
	UploadedBy int64     `json:"uploaded_by"`
	UploadedAt time.Time `json:"uploaded_at"`
}
