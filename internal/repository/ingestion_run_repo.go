package repository

import (
	"upi-ledger-backend/internal/models"

	"gorm.io/gorm"
)

type IngestionRunRepository struct {
	db *gorm.DB
}

func NewIngestionRunRepository(db *gorm.DB) *IngestionRunRepository {
	return &IngestionRunRepository{db: db}
}

func (r *IngestionRunRepository) Save(run *models.IngestionRun) error {
	return r.db.Save(run).Error
}
