package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/paintqueue/paintqueue-backend/pkg/enums"
)

// Order is one customer paint job tracked through the shop floor. TransactionID
// is the business key used by clients; ID is internal only.
type Order struct {
	ID               int64               `gorm:"column:id;primaryKey;autoIncrement"`
	TransactionID    string              `gorm:"column:transaction_id;type:text;not null;uniqueIndex:idx_orders_transaction_id"`
	CustomerName     string              `gorm:"column:customer_name;type:text;not null"`
	ClientContact    string              `gorm:"column:client_contact;type:text;not null"`
	PaintType        string              `gorm:"column:paint_type;type:text;not null"`
	ColourCode       string              `gorm:"column:colour_code;type:text;not null;default:'Pending'"`
	Category         enums.OrderCategory `gorm:"column:category;type:text;not null"`
	OrderType        enums.OrderType     `gorm:"column:order_type;type:text;not null;default:'Order'"`
	POType           *string             `gorm:"column:po_type;type:text"`
	PaintQuantity    decimal.NullDecimal `gorm:"column:paint_quantity;type:numeric(10,2)"`
	AssignedEmployee *string             `gorm:"column:assigned_employee;type:text"`
	CurrentStatus    enums.OrderStatus   `gorm:"column:current_status;type:text;not null;default:'Waiting';index:idx_orders_status"`
	Note             *string             `gorm:"column:note;type:text"`
	Archived         bool                `gorm:"column:archived;not null;default:false"`
	Deleted          bool                `gorm:"column:deleted;not null;default:false"`
	StartTime        time.Time           `gorm:"column:start_time;not null"`
	CompletedAt      *time.Time          `gorm:"column:completed_at"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (Order) TableName() string { return "orders" }
