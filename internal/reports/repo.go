package reports

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/paintqueue/paintqueue-backend/pkg/db/models"
)

// Dimension is a column orders can be grouped by.
type Dimension string

const (
	DimensionStatus   Dimension = "current_status"
	DimensionCategory Dimension = "category"
)

// OrderFilters narrows the order aggregates. End is exclusive.
type OrderFilters struct {
	Start    *time.Time
	End      *time.Time
	Status   string
	Category string
}

// Repository runs the grouped counts behind the summary report.
type Repository interface {
	CountOrders(ctx context.Context, by Dimension, filters OrderFilters) (map[string]int64, error)
	CountDeletedOrders(ctx context.Context, filters OrderFilters) (map[string]int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a reports repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

type bucket struct {
	Label string
	Count int64
}

// CountOrders groups live, non-deleted orders by the given dimension.
func (r *repository) CountOrders(ctx context.Context, by Dimension, filters OrderFilters) (map[string]int64, error) {
	if by != DimensionStatus && by != DimensionCategory {
		return nil, fmt.Errorf("unsupported report dimension %q", by)
	}
	q := r.db.WithContext(ctx).Model(&models.Order{}).Where("deleted = ?", false)
	return countBy(applyOrderFilters(q, filters), string(by))
}

// CountDeletedOrders groups the cancellation archive by the status each order
// had when it was cancelled.
func (r *repository) CountDeletedOrders(ctx context.Context, filters OrderFilters) (map[string]int64, error) {
	q := r.db.WithContext(ctx).Model(&models.DeletedOrder{})
	return countBy(applyOrderFilters(q, filters), string(DimensionStatus))
}

func countBy(q *gorm.DB, column string) (map[string]int64, error) {
	var rows []bucket
	err := q.Select(column + " AS label, COUNT(*) AS count").
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Label] = row.Count
	}
	return out, nil
}

func applyOrderFilters(q *gorm.DB, filters OrderFilters) *gorm.DB {
	if filters.Start != nil {
		q = q.Where("start_time >= ?", filters.Start.UTC())
	}
	if filters.End != nil {
		q = q.Where("start_time < ?", filters.End.UTC())
	}
	if filters.Status != "" {
		q = q.Where("current_status = ?", filters.Status)
	}
	if filters.Category != "" {
		q = q.Where("category = ?", filters.Category)
	}
	return q
}
