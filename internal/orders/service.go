package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/paintqueue/paintqueue-backend/internal/audit"
	"github.com/paintqueue/paintqueue-backend/internal/history"
	"github.com/paintqueue/paintqueue-backend/pkg/db"
	"github.com/paintqueue/paintqueue-backend/pkg/db/models"
	"github.com/paintqueue/paintqueue-backend/pkg/enums"
	pkgerrors "github.com/paintqueue/paintqueue-backend/pkg/errors"
	"github.com/paintqueue/paintqueue-backend/pkg/logger"
	"github.com/paintqueue/paintqueue-backend/pkg/metrics"
	"github.com/paintqueue/paintqueue-backend/pkg/pagination"
)

const (
	// DefaultArchiveCutoffDays is how long a Waiting order may sit before the sweep archives it.
	DefaultArchiveCutoffDays = 21
	defaultListLimit         = 100
)

// Service is the single entry point for order intake, queries and transitions.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*OrderView, error)
	CheckID(ctx context.Context, transactionID string) error
	Get(ctx context.Context, transactionID string) (*OrderView, error)
	List(ctx context.Context, view ListView, limit int) ([]OrderView, error)
	ListDeleted(ctx context.Context, limit int) ([]DeletedOrderView, error)
	Search(ctx context.Context, params SearchParams) ([]OrderView, error)
	History(ctx context.Context, transactionID string) ([]HistoryEntry, error)
	CountActive(ctx context.Context) (*ActiveCount, error)
	CheckDuplicate(ctx context.Context, q DuplicateQuery) (*DuplicateResult, error)

	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*OrderView, error)
	Cancel(ctx context.Context, input CancelInput) (*OrderView, error)
	MarkComplete(ctx context.Context, input MarkCompleteInput) (*OrderView, error)
	ArchiveStale(ctx context.Context, cutoffDays int) (*ArchiveResult, error)
}

// ServiceParams wires the service dependencies. Metrics are optional.
type ServiceParams struct {
	Repo           Repository
	History        history.Repository
	Audit          audit.Repository
	Tx             txRunner
	Logger         *logger.Logger
	Metrics        *metrics.OrderMetrics
	SweepMetrics   *metrics.SweepMetrics
	AdminActionLog bool
	ListLimit      int
	Now            func() time.Time
}

type service struct {
	repo           Repository
	history        history.Repository
	audit          audit.Repository
	tx             txRunner
	logg           *logger.Logger
	metrics        *metrics.OrderMetrics
	sweepMetrics   *metrics.SweepMetrics
	adminActionLog bool
	listLimit      int
	now            func() time.Time
}

// NewService builds the order service with the required dependencies.
func NewService(p ServiceParams) (Service, error) {
	if p.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if p.History == nil {
		return nil, fmt.Errorf("status history repository required")
	}
	if p.Audit == nil {
		return nil, fmt.Errorf("audit repository required")
	}
	if p.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if p.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	limit := p.ListLimit
	if limit <= 0 {
		limit = defaultListLimit
	}
	now := p.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:           p.Repo,
		history:        p.History,
		audit:          p.Audit,
		tx:             p.Tx,
		logg:           p.Logger,
		metrics:        p.Metrics,
		sweepMetrics:   p.SweepMetrics,
		adminActionLog: p.AdminActionLog,
		listLimit:      limit,
		now:            func() time.Time { return now().UTC() },
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateOrderInput) (*OrderView, error) {
	if err := validateCreate(input); err != nil {
		return nil, err
	}

	now := s.now()
	order := models.Order{
		TransactionID:    strings.TrimSpace(input.TransactionID),
		CustomerName:     strings.TrimSpace(input.CustomerName),
		ClientContact:    strings.TrimSpace(input.ClientContact),
		PaintType:        strings.TrimSpace(input.PaintType),
		ColourCode:       firstNonBlank(input.ColourCode, enums.ColourCodePending),
		Category:         enums.OrderCategory(strings.TrimSpace(input.Category)),
		OrderType:        enums.OrderType(firstNonBlank(input.OrderType, enums.OrderTypeOrder.String())),
		POType:           optionalString(input.POType),
		PaintQuantity:    input.PaintQuantity,
		AssignedEmployee: optionalString(input.AssignedEmployee),
		CurrentStatus:    enums.OrderStatusWaiting,
		Note:             optionalString(input.Note),
		StartTime:        now,
		UpdatedAt:        now,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, &order); err != nil {
			if db.IsUniqueViolation(err, "") {
				return duplicateTransactionID(order.TransactionID, err)
			}
			if db.IsCheckViolation(err) {
				return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "order rejected by table constraint")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert order")
		}
		if err := s.history.WithTx(tx).Append(ctx, &models.StatusHistory{
			TransactionID: order.TransactionID,
			Status:        order.CurrentStatus,
			EnteredAt:     now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "append status history")
		}
		entry := &models.AuditLog{
			OrderID:      order.TransactionID,
			Action:       enums.AuditActionOrderCreated,
			FromStatus:   enums.AuditStatusNotApplicable,
			ToStatus:     order.CurrentStatus.String(),
			EmployeeName: optionalString(input.EmployeeName),
			UserRole:     optionalString(input.UserRole),
			ColourCode:   &order.ColourCode,
			Remarks:      optionalString("Order created"),
			Timestamp:    now,
		}
		if err := s.audit.WithTx(tx).Append(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "append audit log")
		}
		return nil
	})
	if err != nil {
		s.metrics.IncFailure("create", string(pkgerrors.CodeOf(err)))
		return nil, err
	}
	s.metrics.IncTransition(order.CurrentStatus.String())
	view := toOrderView(order)
	return &view, nil
}

// CheckID returns a Conflict error when the id is already used by a live,
// cancelled or archived order.
func (s *service) CheckID(ctx context.Context, transactionID string) error {
	id := strings.TrimSpace(transactionID)
	if id == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "transaction id required")
	}
	exists, err := s.repo.TransactionIDExists(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check transaction id")
	}
	if exists {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, ErrDuplicateTransactionID, fmt.Sprintf("transaction id %s already exists", id))
	}
	return nil
}

func (s *service) Get(ctx context.Context, transactionID string) (*OrderView, error) {
	order, err := s.loadLive(ctx, s.repo, transactionID, false)
	if err != nil {
		return nil, err
	}
	view := toOrderView(*order)
	return &view, nil
}

func (s *service) List(ctx context.Context, view ListView, limit int) ([]OrderView, error) {
	filter, err := s.listFilter(view, limit)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("list %s orders", view))
	}
	return toOrderViews(rows), nil
}

func (s *service) listFilter(view ListView, limit int) (ListFilter, error) {
	notArchived := false
	archived := true
	limit = pagination.Clamp(limit, s.listLimit, pagination.MaxLimit)

	switch view {
	case ListViewActive:
		return ListFilter{
			ExcludeStatuses: []enums.OrderStatus{enums.OrderStatusReady, enums.OrderStatusComplete},
			Archived:        &notArchived,
			Limit:           limit,
		}, nil
	case ListViewFloor:
		return ListFilter{
			ExcludeStatuses: []enums.OrderStatus{enums.OrderStatusComplete},
			Archived:        &notArchived,
			StageOrdered:    true,
			Limit:           limit,
		}, nil
	case ListViewArchived:
		return ListFilter{Archived: &archived, Limit: limit}, nil
	case ListViewComplete:
		return ListFilter{Statuses: []enums.OrderStatus{enums.OrderStatusComplete}, Limit: limit}, nil
	case ListViewAwaitingAdmin:
		return ListFilter{Statuses: []enums.OrderStatus{enums.OrderStatusReady}, Limit: limit}, nil
	}
	return ListFilter{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown order view %q", view))
}

func (s *service) ListDeleted(ctx context.Context, limit int) ([]DeletedOrderView, error) {
	rows, err := s.repo.ListDeleted(ctx, pagination.Clamp(limit, s.listLimit, pagination.MaxLimit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list deleted orders")
	}
	return toDeletedOrderViews(rows), nil
}

func (s *service) Search(ctx context.Context, params SearchParams) ([]OrderView, error) {
	if params.SortBy == "" {
		params.SortBy = "start_time"
	}
	if _, ok := searchSortColumns[params.SortBy]; !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid sortBy").
			WithDetails(map[string]any{"field": "sortBy", "value": params.SortBy})
	}
	switch strings.ToLower(params.SortOrder) {
	case "", "desc":
		params.SortOrder = "desc"
	case "asc":
		params.SortOrder = "asc"
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sortOrder must be asc or desc").
			WithDetails(map[string]any{"field": "sortOrder"})
	}
	params.Limit = pagination.NormalizeLimit(params.Limit)

	rows, err := s.repo.Search(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "search orders")
	}
	return toOrderViews(rows), nil
}

func (s *service) History(ctx context.Context, transactionID string) ([]HistoryEntry, error) {
	if _, err := s.loadLive(ctx, s.repo, transactionID, false); err != nil {
		return nil, err
	}
	rows, err := s.history.ListByOrder(ctx, strings.TrimSpace(transactionID))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list status history")
	}
	return toHistoryEntries(rows), nil
}

// loadLive fetches an order that exists and is not soft-deleted.
func (s *service) loadLive(ctx context.Context, repo Repository, transactionID string, lock bool) (*models.Order, error) {
	id := strings.TrimSpace(transactionID)
	if id == "" {
		return nil, orderNotFound(transactionID)
	}
	find := repo.FindByTransactionID
	if lock {
		find = repo.FindForUpdate
	}
	order, err := find(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, orderNotFound(id)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	if order.Deleted {
		return nil, orderNotFound(id)
	}
	return order, nil
}

func validateCreate(input CreateOrderInput) error {
	details := map[string]string{}
	required := map[string]string{
		"transaction_id": input.TransactionID,
		"customer_name":  input.CustomerName,
		"client_contact": input.ClientContact,
		"paint_type":     input.PaintType,
		"category":       input.Category,
	}
	for field, value := range required {
		if isBlank(value) {
			details[field] = "is required"
		}
	}
	orderType := enums.OrderType(strings.TrimSpace(input.OrderType))
	if orderType.RequiresPOType() {
		if _, err := enums.ParsePOType(strings.TrimSpace(input.POType)); err != nil {
			details["po_type"] = "must be Nexa or Carvello for Paid orders"
		}
	}
	if input.PaintQuantity.Valid && input.PaintQuantity.Decimal.IsNegative() {
		details["paint_quantity"] = "must not be negative"
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func optionalString(s string) *string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
