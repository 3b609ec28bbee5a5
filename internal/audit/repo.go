package audit

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/paintqueue/paintqueue-backend/pkg/db/models"
)

// Repository appends and queries audit rows. There is no update or delete.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Append(ctx context.Context, entry *models.AuditLog) error
	AppendAdminAction(ctx context.Context, entry *models.AdminActionLog) error
	List(ctx context.Context, filters Filters, limit int) ([]models.AuditLog, error)
	CountByAction(ctx context.Context, filters Filters) (map[string]int64, error)
}

// Filters narrows audit queries. End is exclusive.
type Filters struct {
	OrderID  string
	Start    *time.Time
	End      *time.Time
	ToStatus string
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an audit repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Append(ctx context.Context, entry *models.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) AppendAdminAction(ctx context.Context, entry *models.AdminActionLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// List returns matching rows newest first.
func (r *repository) List(ctx context.Context, filters Filters, limit int) ([]models.AuditLog, error) {
	var rows []models.AuditLog
	q := applyFilters(r.db.WithContext(ctx).Model(&models.AuditLog{}), filters).
		Order("timestamp DESC").
		Order("log_id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

type actionCount struct {
	Action string
	Count  int64
}

func (r *repository) CountByAction(ctx context.Context, filters Filters) (map[string]int64, error) {
	var rows []actionCount
	err := applyFilters(r.db.WithContext(ctx).Model(&models.AuditLog{}), filters).
		Select("action, COUNT(*) AS count").
		Group("action").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Action] = row.Count
	}
	return out, nil
}

func applyFilters(q *gorm.DB, filters Filters) *gorm.DB {
	if filters.OrderID != "" {
		q = q.Where("order_id = ?", filters.OrderID)
	}
	if filters.Start != nil {
		q = q.Where("timestamp >= ?", filters.Start.UTC())
	}
	if filters.End != nil {
		q = q.Where("timestamp < ?", filters.End.UTC())
	}
	if filters.ToStatus != "" {
		q = q.Where("to_status = ?", filters.ToStatus)
	}
	return q
}
