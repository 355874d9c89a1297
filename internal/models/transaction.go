package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction is one settled UPI payment. ExternalRef is the payment
// network's reference number and the upsert conflict target per user, so
// re-ingesting the same notification overwrites instead of duplicating.
type Transaction struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ExternalRef    string          `gorm:"uniqueIndex:idx_transactions_user_ref"`
	Amount         decimal.Decimal `gorm:"type:numeric(14,2)"`
	SenderID       string
	CounterpartyID uuid.UUID `gorm:"type:uuid;index"`
	OccurredAt     time.Time `gorm:"index"`
	UserID         uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_transactions_user_ref"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
