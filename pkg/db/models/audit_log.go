package models

import (
	"time"

	"github.com/paintqueue/paintqueue-backend/pkg/enums"
)

// AuditLog is the append-only business record of who changed what on an order.
type AuditLog struct {
	LogID        int64             `gorm:"column:log_id;primaryKey;autoIncrement"`
	OrderID      string            `gorm:"column:order_id;type:text;not null;index:idx_audit_logs_order_id"`
	Action       enums.AuditAction `gorm:"column:action;type:text;not null"`
	FromStatus   string            `gorm:"column:from_status;type:text"`
	ToStatus     string            `gorm:"column:to_status;type:text"`
	EmployeeName *string           `gorm:"column:employee_name;type:text"`
	UserRole     *string           `gorm:"column:user_role;type:text"`
	ColourCode   *string           `gorm:"column:colour_code;type:text"`
	Remarks      *string           `gorm:"column:remarks;type:text"`
	Timestamp    time.Time         `gorm:"column:timestamp;not null;index:idx_audit_logs_timestamp"`
}

func (AuditLog) TableName() string { return "audit_logs" }
