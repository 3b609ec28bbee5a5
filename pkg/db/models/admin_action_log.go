package models

import "time"

// AdminActionLog is an optional secondary trail of privileged actions.
type AdminActionLog struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	OrderID   string    `gorm:"column:order_id;type:text;not null"`
	Action    string    `gorm:"column:action;type:text;not null"`
	ActorName *string   `gorm:"column:actor_name;type:text"`
	ActorRole string    `gorm:"column:actor_role;type:text;not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

func (AdminActionLog) TableName() string { return "admin_action_logs" }
