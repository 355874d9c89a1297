package repository

import (
	"errors"
	"time"

	"upi-ledger-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Upsert writes transactions keyed by (user, external ref), so
// re-ingesting an already-seen notification overwrites the prior row.
func (r *TransactionRepository) Upsert(rows []models.Transaction) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "external_ref"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"amount", "sender_id", "counterparty_id", "occurred_at", "updated_at",
		}),
	}).Create(&rows).Error
}

func (r *TransactionRepository) CountByUser(userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.Transaction{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

// LatestOccurredAt returns the timestamp of the user's most recent
// transaction, or nil when the user has none.
func (r *TransactionRepository) LatestOccurredAt(userID uuid.UUID) (*time.Time, error) {
	var tx models.Transaction
	err := r.db.
		Where("user_id = ?", userID).
		Order("occurred_at DESC").
		First(&tx).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tx.OccurredAt, nil
}

func (r *TransactionRepository) DeleteByUser(userID uuid.UUID) error {
	return r.db.Where("user_id = ?", userID).Delete(&models.Transaction{}).Error
}
