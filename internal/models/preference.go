package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// UserPreference stores a user's availability profile.
type UserPreference struct {
	ID           string         `db:"id" json:"id"`
	UserID       string         `db:"user_id" json:"user_id"`
	Availability types.JSONText `db:"availability" json:"availability"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}
