package domain

import (
	"time"

	"github.com/google/uuid"
)

// AdminUser is a platform operator who approves payouts, manages merchant fee
// schedules, and reviews alerts.
type AdminUser struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
