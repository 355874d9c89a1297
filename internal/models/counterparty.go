package models

import (
	"time"

	"github.com/google/uuid"
)

// Counterparty is the other side of a payment (receiver or payee).
// ExternalID is the natural key within one user's scope; ID is a stable
// surrogate assigned on first sighting.
type Counterparty struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	ExternalID  string    `gorm:"uniqueIndex:idx_counterparties_user_external"`
	DisplayName string
	UserID      uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_counterparties_user_external"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
