package models

import (
	"time"
)

type Spot struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	SpotType    string    `json:"spot_type"`
	Tips        *string   `json:"tips"`
	ImageURL    *string   `json:"image_url"`
	CreatedBy   int64     `json:"created_by"`
	CreatorName *string   `json:"creator_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// SpotSummary is the list view used for map markers.
type SpotSummary struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	SpotType  string  `json:"spot_type"`
	ImageURL  *string `json:"image_url"`
}

// SpotPatch carries the fields of a partial update; nil means unchanged.
type SpotPatch struct {
	Name        *string
	Description *string
	Latitude    *float64
	Longitude   *float64
	SpotType    *string
	Tips        *string
	ImageURL    *string
}
