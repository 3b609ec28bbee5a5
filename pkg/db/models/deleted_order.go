package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/paintqueue/paintqueue-backend/pkg/enums"
)

// DeletedOrder is the archive copy written when an order is cancelled. Note
// carries the cancellation reason rather than the last working note.
type DeletedOrder struct {
	ID               int64               `gorm:"column:id;primaryKey;autoIncrement"`
	TransactionID    string              `gorm:"column:transaction_id;type:text;not null;uniqueIndex:idx_deleted_orders_transaction_id"`
	CustomerName     string              `gorm:"column:customer_name;type:text;not null"`
	ClientContact    string              `gorm:"column:client_contact;type:text;not null"`
	PaintType        string              `gorm:"column:paint_type;type:text;not null"`
	ColourCode       string              `gorm:"column:colour_code;type:text;not null"`
	Category         enums.OrderCategory `gorm:"column:category;type:text;not null"`
	OrderType        enums.OrderType     `gorm:"column:order_type;type:text;not null"`
	POType           *string             `gorm:"column:po_type;type:text"`
	PaintQuantity    decimal.NullDecimal `gorm:"column:paint_quantity;type:numeric(10,2)"`
	AssignedEmployee *string             `gorm:"column:assigned_employee;type:text"`
	CurrentStatus    enums.OrderStatus   `gorm:"column:current_status;type:text;not null"`
	Note             *string             `gorm:"column:note;type:text"`
	StartTime        time.Time           `gorm:"column:start_time;not null"`
	DeletedAt        time.Time           `gorm:"column:deleted_at;not null"`
	DeletedBy        *string             `gorm:"column:deleted_by;type:text"`
}

func (DeletedOrder) TableName() string { return "deleted_orders" }

// NewDeletedOrder snapshots an order for the archive table.
func NewDeletedOrder(o Order, reason string, deletedBy *string, at time.Time) DeletedOrder {
	return DeletedOrder{
		TransactionID:    o.TransactionID,
		CustomerName:     o.CustomerName,
		ClientContact:    o.ClientContact,
		PaintType:        o.PaintType,
		ColourCode:       o.ColourCode,
		Category:         o.Category,
		OrderType:        o.OrderType,
		POType:           o.POType,
		PaintQuantity:    o.PaintQuantity,
		AssignedEmployee: o.AssignedEmployee,
		CurrentStatus:    o.CurrentStatus,
		Note:             &reason,
		StartTime:        o.StartTime,
		DeletedAt:        at,
		DeletedBy:        deletedBy,
	}
}
