package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/paintqueue/paintqueue-backend/pkg/db/models"
	"github.com/paintqueue/paintqueue-backend/pkg/enums"
)

// searchSortColumns is the allow-list for Search ordering.
var searchSortColumns = map[string]string{
	"start_time":     "start_time",
	"customer_name":  "customer_name",
	"transaction_id": "transaction_id",
	"current_status": "current_status",
	"category":       "category",
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// FindByTransactionID returns the order including soft-deleted rows; callers
// decide how to treat Deleted.
func (r *repository) FindByTransactionID(ctx context.Context, transactionID string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindForUpdate is FindByTransactionID with a row lock where the dialect has one.
func (r *repository) FindForUpdate(ctx context.Context, transactionID string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("transaction_id = ?", transactionID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// TransactionIDExists checks both the live table and the deleted archive.
func (r *repository) TransactionIDExists(ctx context.Context, transactionID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("transaction_id = ?", transactionID).
		Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return true, nil
	}
	if err := r.db.WithContext(ctx).Model(&models.DeletedOrder{}).
		Where("transaction_id = ?", transactionID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) InsertDeleted(ctx context.Context, deleted *models.DeletedOrder) error {
	return r.db.WithContext(ctx).Create(deleted).Error
}

// ArchiveWaitingBefore flags stale Waiting orders in a single statement and
// returns how many rows changed.
func (r *repository) ArchiveWaitingBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("current_status = ?", enums.OrderStatusWaiting).
		Where("archived = ?", false).
		Where("deleted = ?", false).
		Where("start_time < ?", cutoff.UTC()).
		Update("archived", true)
	return res.RowsAffected, res.Error
}

func (r *repository) filtered(ctx context.Context, filter ListFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Order{}).Where("deleted = ?", false)
	if len(filter.Statuses) > 0 {
		q = q.Where("current_status IN ?", filter.Statuses)
	}
	if len(filter.ExcludeStatuses) > 0 {
		q = q.Where("current_status NOT IN ?", filter.ExcludeStatuses)
	}
	if filter.Archived != nil {
		q = q.Where("archived = ?", *filter.Archived)
	}
	return q
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]models.Order, error) {
	q := r.filtered(ctx, filter)
	if filter.StageOrdered {
		q = q.Order(stageOrderExpr()).Order("start_time ASC")
	} else {
		q = q.Order("start_time DESC")
	}
	q = q.Order("id DESC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var rows []models.Order
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count applies the List filter; ordering and limit are ignored.
func (r *repository) Count(ctx context.Context, filter ListFilter) (int64, error) {
	var count int64
	err := r.filtered(ctx, filter).Count(&count).Error
	return count, err
}

// CountContentMatches counts live orders sharing customer, contact, paint
// type and category, archived ones included.
func (r *repository) CountContentMatches(ctx context.Context, q DuplicateQuery) (int64, error) {
	var count int64
	err := r.filtered(ctx, ListFilter{}).
		Where("customer_name = ?", q.CustomerName).
		Where("client_contact = ?", q.ClientContact).
		Where("paint_type = ?", q.PaintType).
		Where("category = ?", q.Category).
		Count(&count).Error
	return count, err
}

func (r *repository) ListDeleted(ctx context.Context, limit int) ([]models.DeletedOrder, error) {
	q := r.db.WithContext(ctx).Order("deleted_at DESC").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []models.DeletedOrder
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Search matches the lowercased query against name, contact and id. The
// caller normalizes SortBy, SortOrder and Limit.
func (r *repository) Search(ctx context.Context, params SearchParams) ([]models.Order, error) {
	q := r.db.WithContext(ctx).Model(&models.Order{}).Where("deleted = ?", false)
	if term := strings.ToLower(strings.TrimSpace(params.Query)); term != "" {
		like := "%" + escapeLike(term) + "%"
		q = q.Where(
			"LOWER(customer_name) LIKE ? ESCAPE '\\' OR LOWER(client_contact) LIKE ? ESCAPE '\\' OR LOWER(transaction_id) LIKE ? ESCAPE '\\'",
			like, like, like,
		)
	}
	column, ok := searchSortColumns[params.SortBy]
	if !ok {
		column = "start_time"
	}
	q = q.Order(clause.OrderByColumn{
		Column: clause.Column{Name: column},
		Desc:   !strings.EqualFold(params.SortOrder, "asc"),
	})
	if params.Limit > 0 {
		q = q.Limit(params.Limit)
	}

	var rows []models.Order
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func stageOrderExpr() string {
	var b strings.Builder
	b.WriteString("CASE current_status")
	for _, status := range enums.OrderStatuses() {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", status, status.StageRank())
	}
	fmt.Fprintf(&b, " ELSE %d END", len(enums.OrderStatuses()))
	return b.String()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
