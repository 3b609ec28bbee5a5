package models

import (
	"time"

	"github.com/paintqueue/paintqueue-backend/pkg/enums"
)

// StatusHistory records each time an order entered a status. Rows are never
// updated or removed.
type StatusHistory struct {
	ID            int64             `gorm:"column:id;primaryKey;autoIncrement"`
	TransactionID string            `gorm:"column:transaction_id;type:text;not null;index:idx_status_history_transaction_id"`
	Status        enums.OrderStatus `gorm:"column:status;type:text;not null"`
	EnteredAt     time.Time         `gorm:"column:entered_at;not null"`
}

func (StatusHistory) TableName() string { return "status_history" }
