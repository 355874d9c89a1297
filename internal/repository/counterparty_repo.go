package repository

import (
	"upi-ledger-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CounterpartyRepository struct {
	db *gorm.DB
}

func NewCounterpartyRepository(db *gorm.DB) *CounterpartyRepository {
	return &CounterpartyRepository{db: db}
}

// Upsert writes counterparties keyed by (user, external id). An existing
// row keeps its surrogate id; only the display name is overwritten.
func (r *CounterpartyRepository) Upsert(rows []models.Counterparty) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "external_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"display_name", "updated_at"}),
	}).Create(&rows).Error
}

// FindByExternalIDs returns the user's counterparties matching any of
// the given external ids.
func (r *CounterpartyRepository) FindByExternalIDs(userID uuid.UUID, externalIDs []string) ([]models.Counterparty, error) {
	var rows []models.Counterparty
	err := r.db.
		Where("user_id = ? AND external_id IN ?", userID, externalIDs).
		Find(&rows).Error
	return rows, err
}

func (r *CounterpartyRepository) DeleteByUser(userID uuid.UUID) error {
	return r.db.Where("user_id = ?", userID).Delete(&models.Counterparty{}).Error
}
