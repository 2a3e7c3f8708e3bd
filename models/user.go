package models

import (
	"time"
)

type Status string

const (
	StatusBeginner Status = "Beginner"
	StatusLocal    Status = "Local"
	StatusHero     Status = "Hero"
	StatusLegend   Status = "Legend"
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Points       int       `json:"points"`
	CreatedAt    time.Time `json:"created_at"`
}

// Profile is the user as returned to its owner, with the derived status.
type Profile struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Points   int    `json:"points"`
	Status   Status `json:"status"`
}

// PublicProfile deliberately omits points.
type PublicProfile struct {
	Username string `json:"username"`
	Status   Status `json:"status"`
}

// Identity is the authenticated caller, as decoded from the bearer token.
type Identity struct {
	UserID   int64
	Email    string
	Username string
}
