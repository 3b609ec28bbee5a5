package orders

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/paintqueue/paintqueue-backend/pkg/db/models"
	"github.com/paintqueue/paintqueue-backend/pkg/enums"
)

// Repository defines persistence operations for the orders and deleted_orders tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	FindByTransactionID(ctx context.Context, transactionID string) (*models.Order, error)
	FindForUpdate(ctx context.Context, transactionID string) (*models.Order, error)
	TransactionIDExists(ctx context.Context, transactionID string) (bool, error)
	Update(ctx context.Context, id int64, updates map[string]any) error
	InsertDeleted(ctx context.Context, deleted *models.DeletedOrder) error
	ArchiveWaitingBefore(ctx context.Context, cutoff time.Time) (int64, error)
	List(ctx context.Context, filter ListFilter) ([]models.Order, error)
	Count(ctx context.Context, filter ListFilter) (int64, error)
	CountContentMatches(ctx context.Context, q DuplicateQuery) (int64, error)
	ListDeleted(ctx context.Context, limit int) ([]models.DeletedOrder, error)
	Search(ctx context.Context, params SearchParams) ([]models.Order, error)
}

// ListFilter is the repository form of a listing. Soft-deleted rows are never
// returned.
type ListFilter struct {
	Statuses        []enums.OrderStatus
	ExcludeStatuses []enums.OrderStatus
	Archived        *bool
	StageOrdered    bool
	Limit           int
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}
