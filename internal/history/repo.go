package history

import (
	"context"

	"gorm.io/gorm"

	"github.com/paintqueue/paintqueue-backend/pkg/db/models"
)

// Repository appends and reads status history rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Append(ctx context.Context, entry *models.StatusHistory) error
	ListByOrder(ctx context.Context, transactionID string) ([]models.StatusHistory, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a status history repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Append(ctx context.Context, entry *models.StatusHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListByOrder returns the order's status entries, oldest first.
func (r *repository) ListByOrder(ctx context.Context, transactionID string) ([]models.StatusHistory, error) {
	var rows []models.StatusHistory
	err := r.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		Order("entered_at ASC").
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
