package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type IngestionRun struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID       uuid.UUID `gorm:"type:uuid;index"`
	Mode         string    // "full" or "incremental"
	Status       string    `gorm:"index"`
	MessageCount int
	RecordCount  int
	Details      datatypes.JSON
	StartedAt    time.Time
	CompletedAt  *time.Time
	CreatedAt    time.Time
}
