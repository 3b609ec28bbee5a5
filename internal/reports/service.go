package reports

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/paintqueue/paintqueue-backend/internal/audit"
	"github.com/paintqueue/paintqueue-backend/pkg/db/models"
	"github.com/paintqueue/paintqueue-backend/pkg/enums"
	pkgerrors "github.com/paintqueue/paintqueue-backend/pkg/errors"
	"github.com/paintqueue/paintqueue-backend/pkg/logger"
	"github.com/paintqueue/paintqueue-backend/pkg/pagination"
)

const dateLayout = "2006-01-02"

// noAuditData replaces the history summary when audit rows cannot be read.
const noAuditData = "No audit data"

// SummaryQuery is the raw report query string.
type SummaryQuery struct {
	StartDate      string
	EndDate        string
	Status         string
	Category       string
	IncludeDeleted bool
}

// AuditLogQuery is the raw audit log listing query string.
type AuditLogQuery struct {
	StartDate string
	EndDate   string
	Status    string
	OrderID   string
}

// Summary is the aggregate report returned by /api/orders/report.
type Summary struct {
	StatusSummary   map[string]int64 `json:"statusSummary"`
	CategorySummary map[string]int64 `json:"categorySummary"`
	HistorySummary  map[string]int64 `json:"historySummary"`
	DeletedSummary  map[string]int64 `json:"deletedSummary"`
}

// AuditLogView is the API representation of one audit row.
type AuditLogView struct {
	LogID        int64     `json:"log_id"`
	OrderID      string    `json:"order_id"`
	Action       string    `json:"action"`
	FromStatus   string    `json:"from_status"`
	ToStatus     string    `json:"to_status"`
	EmployeeName *string   `json:"employee_name"`
	UserRole     *string   `json:"user_role"`
	ColourCode   *string   `json:"colour_code"`
	Remarks      *string   `json:"remarks"`
	Timestamp    time.Time `json:"timestamp"`
}

// Service is the read-only reporting facade.
type Service interface {
	Summary(ctx context.Context, query SummaryQuery) (*Summary, error)
	AuditLogs(ctx context.Context, query AuditLogQuery) ([]AuditLogView, error)
}

type service struct {
	repo  Repository
	audit audit.Repository
	logg  *logger.Logger
}

// NewService builds the reporting service.
func NewService(repo Repository, auditRepo audit.Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reports repository required")
	}
	if auditRepo == nil {
		return nil, fmt.Errorf("audit repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, audit: auditRepo, logg: logg}, nil
}

func (s *service) Summary(ctx context.Context, query SummaryQuery) (*Summary, error) {
	start, end, err := parseRange(query.StartDate, query.EndDate)
	if err != nil {
		return nil, err
	}
	status, err := parseStatus(query.Status)
	if err != nil {
		return nil, err
	}
	filters := OrderFilters{Start: start, End: end, Status: status, Category: allAsEmpty(query.Category)}

	byStatus, err := s.repo.CountOrders(ctx, DimensionStatus, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "summarize orders by status")
	}
	byCategory, err := s.repo.CountOrders(ctx, DimensionCategory, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "summarize orders by category")
	}

	history, err := s.audit.CountByAction(ctx, audit.Filters{Start: start, End: end, ToStatus: status})
	if err != nil {
		s.logg.WarnErr(ctx, "audit summary unavailable; returning placeholder", err)
		history = map[string]int64{noAuditData: 0}
	}

	deleted := map[string]int64{}
	if query.IncludeDeleted {
		deleted, err = s.repo.CountDeletedOrders(ctx, filters)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "summarize deleted orders")
		}
	}

	return &Summary{
		StatusSummary:   byStatus,
		CategorySummary: byCategory,
		HistorySummary:  history,
		DeletedSummary:  deleted,
	}, nil
}

func (s *service) AuditLogs(ctx context.Context, query AuditLogQuery) ([]AuditLogView, error) {
	start, end, err := parseRange(query.StartDate, query.EndDate)
	if err != nil {
		return nil, err
	}
	status, err := parseStatus(query.Status)
	if err != nil {
		return nil, err
	}
	rows, err := s.audit.List(ctx, audit.Filters{
		OrderID:  strings.TrimSpace(query.OrderID),
		Start:    start,
		End:      end,
		ToStatus: status,
	}, pagination.AuditLogLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list audit logs")
	}
	out := make([]AuditLogView, 0, len(rows))
	for _, row := range rows {
		out = append(out, toAuditLogView(row))
	}
	return out, nil
}

// parseRange turns YYYY-MM-DD bounds into a half-open UTC range. The end date
// covers its whole day.
func parseRange(startDate, endDate string) (*time.Time, *time.Time, error) {
	var start, end *time.Time
	if v := strings.TrimSpace(startDate); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return nil, nil, invalidQuery("Invalid start_date format. Use YYYY-MM-DD.", "start_date")
		}
		start = &t
	}
	if v := strings.TrimSpace(endDate); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return nil, nil, invalidQuery("Invalid end_date format. Use YYYY-MM-DD.", "end_date")
		}
		if start != nil && start.After(t) {
			return nil, nil, invalidQuery("start_date cannot be after end_date.", "start_date")
		}
		next := t.AddDate(0, 0, 1)
		end = &next
	}
	return start, end, nil
}

// parseStatus validates a status filter. "All" and blank disable filtering.
func parseStatus(value string) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" || v == enums.OrderStatusAll {
		return "", nil
	}
	status, err := enums.ParseOrderStatus(v)
	if err != nil {
		return "", invalidQuery("Invalid status value.", "status")
	}
	return status.String(), nil
}

func allAsEmpty(value string) string {
	v := strings.TrimSpace(value)
	if v == enums.OrderCategoryAll {
		return ""
	}
	return v
}

func invalidQuery(message, field string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, message).WithDetails(map[string]any{"field": field})
}

func toAuditLogView(row models.AuditLog) AuditLogView {
	return AuditLogView{
		LogID:        row.LogID,
		OrderID:      row.OrderID,
		Action:       row.Action.String(),
		FromStatus:   row.FromStatus,
		ToStatus:     row.ToStatus,
		EmployeeName: row.EmployeeName,
		UserRole:     row.UserRole,
		ColourCode:   row.ColourCode,
		Remarks:      row.Remarks,
		Timestamp:    row.Timestamp,
	}
}
