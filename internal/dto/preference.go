package dto

import (
	"time"

	"github.com/bbarathsrinivasan/ACMHack/internal/models"
)

// AvailabilityResponse is a user's effective availability profile.
type AvailabilityResponse struct {
	UserID       string                     `json:"userId"`
	Availability models.AvailabilityProfile `json:"availability"`
	Default      bool                       `json:"default"`
	UpdatedAt    *time.Time                 `json:"updatedAt,omitempty"`
}
