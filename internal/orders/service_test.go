package orders

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/paintqueue/paintqueue-backend/internal/audit"
	"github.com/paintqueue/paintqueue-backend/internal/history"
	"github.com/paintqueue/paintqueue-backend/pkg/db"
	"github.com/paintqueue/paintqueue-backend/pkg/db/dbtest"
	"github.com/paintqueue/paintqueue-backend/pkg/db/models"
	"github.com/paintqueue/paintqueue-backend/pkg/enums"
	pkgerrors "github.com/paintqueue/paintqueue-backend/pkg/errors"
	"github.com/paintqueue/paintqueue-backend/pkg/logger"
	"github.com/paintqueue/paintqueue-backend/pkg/metrics"
)

var fixedNow = time.Date(2025, 7, 14, 10, 30, 0, 0, time.UTC)

type harness struct {
	svc     Service
	client  *db.Client
	repo    Repository
	audit   audit.Repository
	history history.Repository
	logs    *bytes.Buffer
}

func newHarness(t *testing.T, opts ...func(*ServiceParams)) *harness {
	t.Helper()
	client := dbtest.New(t)
	logs := &bytes.Buffer{}
	h := &harness{
		client:  client,
		repo:    NewRepository(client.DB()),
		audit:   audit.NewRepository(client.DB()),
		history: history.NewRepository(client.DB()),
		logs:    logs,
	}
	params := ServiceParams{
		Repo:    h.repo,
		History: h.history,
		Audit:   h.audit,
		Tx:      client,
		Logger:  logger.New(logger.Options{ServiceName: "test", Output: logs}),
		Now:     func() time.Time { return fixedNow },
	}
	for _, opt := range opts {
		opt(&params)
	}
	svc, err := NewService(params)
	require.NoError(t, err)
	h.svc = svc
	return h
}

func (h *harness) create(t *testing.T, id string) *OrderView {
	t.Helper()
	view, err := h.svc.Create(context.Background(), CreateOrderInput{
		TransactionID: id,
		CustomerName:  "Sipho Dlamini",
		ClientContact: "071 000 1234",
		PaintType:     "Acrylic Enamel",
		Category:      enums.OrderCategoryNewMix.String(),
		PaintQuantity: decimal.NewNullDecimal(decimal.RequireFromString("2.50")),
		EmployeeName:  "Front Desk",
		UserRole:      "Order Desk",
	})
	require.NoError(t, err)
	return view
}

func (h *harness) auditRows(t *testing.T, id string) []models.AuditLog {
	t.Helper()
	rows, err := h.audit.List(context.Background(), audit.Filters{OrderID: id}, 100)
	require.NoError(t, err)
	return rows
}

func ptr(s string) *string { return &s }

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, code, pkgerrors.CodeOf(err))
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{})
	require.Error(t, err)
}

func TestCreateWritesHistoryAndAudit(t *testing.T) {
	h := newHarness(t)
	view := h.create(t, "TX-001")

	require.Equal(t, "Waiting", view.CurrentStatus)
	require.Equal(t, enums.ColourCodePending, view.ColourCode)
	require.Equal(t, "Order", view.OrderType)
	require.True(t, view.StartTime.Equal(fixedNow))

	entries, err := h.svc.History(context.Background(), "TX-001")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "Waiting", entries[0].Status)

	rows := h.auditRows(t, "TX-001")
	require.Len(t, rows, 1)
	require.Equal(t, enums.AuditActionOrderCreated, rows[0].Action)
	require.Equal(t, "N/A", rows[0].FromStatus)
	require.Equal(t, "Waiting", rows[0].ToStatus)
}

func TestCreateValidation(t *testing.T) {
	h := newHarness(t)
	_, err := h.svc.Create(context.Background(), CreateOrderInput{
		TransactionID: "TX-009",
		CustomerName:  "Lerato",
		ClientContact: "071",
		PaintType:     "Primer",
		Category:      "Reorder Mix",
		OrderType:     "Paid",
	})
	requireCode(t, err, pkgerrors.CodeValidation)
	details, ok := pkgerrors.As(err).Details().(map[string]string)
	require.True(t, ok)
	require.Contains(t, details, "po_type")

	_, err = h.svc.Create(context.Background(), CreateOrderInput{TransactionID: "TX-010"})
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestCreateDuplicateTransactionIDLeavesRowUnchanged(t *testing.T) {
	h := newHarness(t)
	h.create(t, "TX-001")

	_, err := h.svc.Create(context.Background(), CreateOrderInput{
		TransactionID: "TX-001",
		CustomerName:  "Someone Else",
		ClientContact: "000",
		PaintType:     "Other",
		Category:      "Colour Code",
	})
	requireCode(t, err, pkgerrors.CodeConflict)
	require.ErrorIs(t, err, ErrDuplicateTransactionID)

	view, err := h.svc.Get(context.Background(), "TX-001")
	require.NoError(t, err)
	require.Equal(t, "Sipho Dlamini", view.CustomerName)
	require.Len(t, h.auditRows(t, "TX-001"), 1)

	requireCode(t, h.svc.CheckID(context.Background(), "TX-001"), pkgerrors.CodeConflict)
	require.NoError(t, h.svc.CheckID(context.Background(), "TX-002"))
}

func TestUpdateStatusToReadyRecordsHistoryAndAudit(t *testing.T) {
	h := newHarness(t)
	h.create(t, "TX-001")
	ctx := context.Background()

	_, err := h.svc.UpdateStatus(ctx, UpdateStatusInput{
		TransactionID:    "TX-001",
		NewStatus:        "Mixing",
		AssignedEmployee: "Johan",
		UserRole:         "Staff",
	})
	require.NoError(t, err)

	view, err := h.svc.UpdateStatus(ctx, UpdateStatusInput{
		TransactionID:    "TX-001",
		NewStatus:        "Ready",
		AssignedEmployee: "Johan",
		ColourCode:       ptr("RAL-5012"),
		UserRole:         "Staff",
		ActorName:        "Johan",
	})
	require.NoError(t, err)
	require.Equal(t, "Ready", view.CurrentStatus)
	require.Equal(t, "RAL-5012", view.ColourCode)
	require.Equal(t, "Johan", *view.AssignedEmployee)

	entries, err := h.svc.History(ctx, "TX-001")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, "Ready", entries[2].Status)

	rows := h.auditRows(t, "TX-001")
	require.Len(t, rows, 3)
	latest := rows[0]
	require.Equal(t, enums.AuditActionStatusChanged, latest.Action)
	require.Equal(t, "Mixing", latest.FromStatus)
	require.Equal(t, "Ready", latest.ToStatus)
	require.Equal(t, "Johan", *latest.EmployeeName)
	require.Equal(t, "Staff", *latest.UserRole)
	require.Equal(t, "RAL-5012", *latest.ColourCode)
	require.Equal(t, "Status updated", *latest.Remarks)
}

func TestUpdateStatusValidationWritesNothing(t *testing.T) {
	h := newHarness(t)
	h.create(t, "TX-001")
	ctx := context.Background()

	_, err := h.svc.UpdateStatus(ctx, UpdateStatusInput{TransactionID: "TX-001", NewStatus: "Ready", AssignedEmployee: "Johan"})
	requireCode(t, err, pkgerrors.CodeValidation)
	require.ErrorIs(t, err, ErrMissingColourCode)

	_, err = h.svc.UpdateStatus(ctx, UpdateStatusInput{TransactionID: "TX-001", NewStatus: "Mixing", AssignedEmployee: "  "})
	require.ErrorIs(t, err, ErrMissingAssignee)

	_, err = h.svc.UpdateStatus(ctx, UpdateStatusInput{TransactionID: "TX-001", NewStatus: "Drying"})
	require.ErrorIs(t, err, ErrInvalidStatus)

	_, err = h.svc.UpdateStatus(ctx, UpdateStatusInput{TransactionID: "TX-404", NewStatus: "Waiting"})
	requireCode(t, err, pkgerrors.CodeNotFound)

	view, err := h.svc.Get(ctx, "TX-001")
	require.NoError(t, err)
	require.Equal(t, "Waiting", view.CurrentStatus)
	require.Len(t, h.auditRows(t, "TX-001"), 1)
}

func TestUpdateStatusNoteOnly(t *testing.T) {
	h := newHarness(t)
	h.create(t, "TX-001")
	ctx := context.Background()

	view, err := h.svc.UpdateStatus(ctx, UpdateStatusInput{
		TransactionID: "TX-001",
		NewStatus:     "Waiting",
		Note:          ptr("customer will collect Friday"),
		OldStatus:     "Mixing",
	})
	require.NoError(t, err)
	require.Equal(t, "customer will collect Friday", *view.Note)
	require.Equal(t, enums.ColourCodePending, view.ColourCode)

	entries, err := h.svc.History(ctx, "TX-001")
	require.NoError(t, err)
	require.Len(t, entries, 1)

	rows := h.auditRows(t, "TX-001")
	require.Len(t, rows, 2)
	require.Equal(t, enums.AuditActionNoteUpdated, rows[0].Action)
	require.Equal(t, "N/A", rows[0].FromStatus)
	require.Equal(t, "N/A", rows[0].ToStatus)
	require.Equal(t, "Note updated to: customer will collect Friday", *rows[0].Remarks)
	require.Contains(t, h.logs.String(), "client status out of date")

	view, err = h.svc.UpdateStatus(ctx, UpdateStatusInput{TransactionID: "TX-001", NewStatus: "Waiting", Note: ptr("  ")})
	require.NoError(t, err)
	require.Equal(t, "customer will collect Friday", *view.Note)
	rows = h.auditRows(t, "TX-001")
	require.Equal(t, "Note updated via UI", *rows[0].Remarks)
}

func TestUpdateStatusWithNoteRemarks(t *testing.T) {
	h := newHarness(t)
	h.create(t, "TX-001")

	_, err := h.svc.UpdateStatus(context.Background(), UpdateStatusInput{
		TransactionID:    "TX-001",
		NewStatus:        "Spraying",
		AssignedEmployee: "Naledi",
		Note:             ptr("second coat"),
	})
	require.NoError(t, err)
	rows := h.auditRows(t, "TX-001")
	require.Equal(t, "Status updated with note: second coat", *rows[0].Remarks)
	require.Equal(t, "Naledi", *rows[0].EmployeeName)
}

func TestUpdateStatusCompleteRules(t *testing.T) {
	h := newHarness(t)
	h.create(t, "TX-001")
	ctx := context.Background()

	_, err := h.svc.UpdateStatus(ctx, UpdateStatusInput{TransactionID: "TX-001", NewStatus: "Complete", AssignedEmployee: "Johan", UserRole: "Staff"})
	requireCode(t, err, pkgerrors.CodeForbidden)

	_, err = h.svc.UpdateStatus(ctx, UpdateStatusInput{TransactionID: "TX-001", NewStatus: "Complete", AssignedEmployee: "Johan", UserRole: "Admin"})
	requireCode(t, err, pkgerrors.CodeStateConflict)
	require.ErrorIs(t, err, ErrInvalidTransition)

	_, err = h.svc.UpdateStatus(ctx, UpdateStatusInput{TransactionID: "TX-001", NewStatus: "Ready", AssignedEmployee: "Johan", ColourCode: ptr("C-77")})
	require.NoError(t, err)

	view, err := h.svc.UpdateStatus(ctx, UpdateStatusInput{TransactionID: "TX-001", NewStatus: "Complete", AssignedEmployee: "Johan", UserRole: "Admin"})
	require.NoError(t, err)
	require.Equal(t, "Complete", view.CurrentStatus)
	require.NotNil(t, view.CompletedAt)
	require.Equal(t, "C-77", view.ColourCode)

	_, err = h.svc.UpdateStatus(ctx, UpdateStatusInput{TransactionID: "TX-001", NewStatus: "Mixing", AssignedEmployee: "Johan"})
	require.ErrorIs(t, err, ErrInvalidTransition)
}

type failingAudit struct {
	audit.Repository
}

func (f failingAudit) WithTx(tx *gorm.DB) audit.Repository {
	return failingAudit{Repository: f.Repository.WithTx(tx)}
}

func (failingAudit) Append(context.Context, *models.AuditLog) error {
	return errors.New("audit table unavailable")
}

func TestUpdateStatusRollsBackWhenAuditFails(t *testing.T) {
	h := newHarness(t)
	h.create(t, "TX-001")

	broken, err := NewService(ServiceParams{
		Repo:    h.repo,
		History: h.history,
		Audit:   failingAudit{Repository: h.audit},
		Tx:      h.client,
		Logger:  logger.New(logger.Options{Output: h.logs}),
		Now:     func() time.Time { return fixedNow.Add(time.Hour) },
	})
	require.NoError(t, err)

	_, err = broken.UpdateStatus(context.Background(), UpdateStatusInput{
		TransactionID:    "TX-001",
		NewStatus:        "Mixing",
		AssignedEmployee: "Johan",
	})
	requireCode(t, err, pkgerrors.CodeInternal)
	require.Equal(t, http.StatusInternalServerError, pkgerrors.MetadataFor(pkgerrors.CodeOf(err)).HTTPStatus)

	view, err := h.svc.Get(context.Background(), "TX-001")
	require.NoError(t, err)
	require.Equal(t, "Waiting", view.CurrentStatus)
	require.Nil(t, view.AssignedEmployee)

	entries, err := h.svc.History(context.Background(), "TX-001")
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestCancel(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.svc.Create(ctx, CreateOrderInput{
		TransactionID:    "TX-001",
		CustomerName:     "Sipho Dlamini",
		ClientContact:    "071 000 1234",
		PaintType:        "Acrylic Enamel",
		ColourCode:       "RAL-5012",
		Category:         enums.OrderCategoryNewMix.String(),
		OrderType:        "Paid",
		POType:           "Nexa",
		PaintQuantity:    decimal.NewNullDecimal(decimal.RequireFromString("2.50")),
		AssignedEmployee: "Johan",
	})
	require.NoError(t, err)
	_, err = h.svc.UpdateStatus(ctx, UpdateStatusInput{TransactionID: "TX-001", NewStatus: "Mixing", AssignedEmployee: "Johan"})
	require.NoError(t, err)
	before, err := h.svc.Get(ctx, "TX-001")
	require.NoError(t, err)

	_, err = h.svc.Cancel(ctx, CancelInput{TransactionID: "TX-001", Reason: "changed mind", ActorRole: "Staff"})
	requireCode(t, err, pkgerrors.CodeForbidden)

	_, err = h.svc.Cancel(ctx, CancelInput{TransactionID: "TX-001", Reason: " ", ActorRole: "Admin"})
	require.ErrorIs(t, err, ErrMissingReason)

	view, err := h.svc.Cancel(ctx, CancelInput{TransactionID: "TX-001", Reason: "changed mind", ActorRole: "Admin", ActorName: "Marike"})
	require.NoError(t, err)
	require.True(t, view.Deleted)

	deleted, err := h.svc.ListDeleted(ctx, 0)
	require.NoError(t, err)
	require.Len(t, deleted, 1)
	got := deleted[0]
	require.Equal(t, before.TransactionID, got.TransactionID)
	require.Equal(t, before.CustomerName, got.CustomerName)
	require.Equal(t, before.ClientContact, got.ClientContact)
	require.Equal(t, before.PaintType, got.PaintType)
	require.Equal(t, "RAL-5012", got.ColourCode)
	require.Equal(t, before.ColourCode, got.ColourCode)
	require.Equal(t, before.Category, got.Category)
	require.Equal(t, "Paid", got.OrderType)
	require.Equal(t, before.OrderType, got.OrderType)
	require.Equal(t, "Nexa", *got.POType)
	require.Equal(t, before.POType, got.POType)
	require.True(t, got.PaintQuantity.Valid)
	require.True(t, before.PaintQuantity.Decimal.Equal(got.PaintQuantity.Decimal))
	require.Equal(t, "Johan", *got.AssignedEmployee)
	require.Equal(t, before.AssignedEmployee, got.AssignedEmployee)
	require.Equal(t, "Mixing", got.CurrentStatus)
	require.True(t, before.StartTime.Equal(got.StartTime))
	require.Equal(t, "changed mind", *got.Note)
	require.Equal(t, "Marike", *got.DeletedBy)

	live, err := h.repo.FindByTransactionID(ctx, "TX-001")
	require.NoError(t, err)
	require.True(t, live.Deleted)

	for _, v := range []ListView{ListViewActive, ListViewFloor, ListViewArchived, ListViewComplete, ListViewAwaitingAdmin} {
		rows, err := h.svc.List(ctx, v, 0)
		require.NoError(t, err)
		require.Empty(t, rows, v)
	}
	_, err = h.svc.Get(ctx, "TX-001")
	require.ErrorIs(t, err, ErrOrderNotFound)

	rows := h.auditRows(t, "TX-001")
	require.Equal(t, enums.AuditActionOrderDeleted, rows[0].Action)
	require.Equal(t, "Mixing", rows[0].FromStatus)
	require.Equal(t, "Deleted", rows[0].ToStatus)
	require.Equal(t, "changed mind", *rows[0].Remarks)

	requireCode(t, h.svc.CheckID(ctx, "TX-001"), pkgerrors.CodeConflict)
}

func TestCancelReadyOrderRejected(t *testing.T) {
	h := newHarness(t)
	h.create(t, "TX-001")
	ctx := context.Background()

	_, err := h.svc.UpdateStatus(ctx, UpdateStatusInput{TransactionID: "TX-001", NewStatus: "Ready", AssignedEmployee: "Johan", ColourCode: ptr("C-1")})
	require.NoError(t, err)

	_, err = h.svc.Cancel(ctx, CancelInput{TransactionID: "TX-001", Reason: "late", ActorRole: "Admin"})
	requireCode(t, err, pkgerrors.CodeStateConflict)
	require.ErrorIs(t, err, ErrInvalidStateForDeletion)

	deleted, err := h.svc.ListDeleted(ctx, 0)
	require.NoError(t, err)
	require.Empty(t, deleted)
}

func TestMarkComplete(t *testing.T) {
	h := newHarness(t, func(p *ServiceParams) { p.AdminActionLog = true })
	h.create(t, "TX-001")
	ctx := context.Background()

	_, err := h.svc.MarkComplete(ctx, MarkCompleteInput{TransactionID: "TX-001", ActorRole: "Admin"})
	require.ErrorIs(t, err, ErrInvalidTransition)

	_, err = h.svc.UpdateStatus(ctx, UpdateStatusInput{TransactionID: "TX-001", NewStatus: "Ready", AssignedEmployee: "Johan", ColourCode: ptr("C-1")})
	require.NoError(t, err)

	_, err = h.svc.MarkComplete(ctx, MarkCompleteInput{TransactionID: "TX-001", ActorRole: "admin"})
	requireCode(t, err, pkgerrors.CodeForbidden)

	view, err := h.svc.MarkComplete(ctx, MarkCompleteInput{TransactionID: "TX-001", ActorRole: "Admin", ActorName: "Marike"})
	require.NoError(t, err)
	require.Equal(t, "Complete", view.CurrentStatus)

	complete, err := h.svc.List(ctx, ListViewComplete, 0)
	require.NoError(t, err)
	require.Len(t, complete, 1)

	var actions []models.AdminActionLog
	require.NoError(t, h.client.DB().Find(&actions).Error)
	require.Len(t, actions, 1)
	require.Equal(t, "TX-001", actions[0].OrderID)
}

func TestArchiveStaleIsIdempotent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.create(t, "TX-001")
	old := insertOrder(t, h.repo, "TX-OLD", enums.OrderStatusWaiting, fixedNow.AddDate(0, 0, -40))

	result, err := h.svc.ArchiveStale(ctx, DefaultArchiveCutoffDays)
	require.NoError(t, err)
	require.EqualValues(t, 1, result.Archived)
	require.Equal(t, DefaultArchiveCutoffDays, result.CutoffDays)

	result, err = h.svc.ArchiveStale(ctx, DefaultArchiveCutoffDays)
	require.NoError(t, err)
	require.Zero(t, result.Archived)

	archived, err := h.svc.List(ctx, ListViewArchived, 0)
	require.NoError(t, err)
	require.Len(t, archived, 1)
	require.Equal(t, old.TransactionID, archived[0].TransactionID)

	_, err = h.svc.ArchiveStale(ctx, 0)
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestListUnknownViewAndSearchValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.svc.List(ctx, ListView("everything"), 0)
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = h.svc.Search(ctx, SearchParams{Query: "x", SortBy: "note"})
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = h.svc.Search(ctx, SearchParams{Query: "x", SortOrder: "sideways"})
	requireCode(t, err, pkgerrors.CodeValidation)

	h.create(t, "TX-555")
	rows, err := h.svc.Search(ctx, SearchParams{Query: "sipho"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestUpdateStatusColourCodeFallback(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.create(t, "TX-001")

	view, err := h.svc.UpdateStatus(ctx, UpdateStatusInput{TransactionID: "TX-001", NewStatus: "Mixing", AssignedEmployee: "Johan"})
	require.NoError(t, err)
	require.Equal(t, enums.ColourCodePending, view.ColourCode)

	view, err = h.svc.UpdateStatus(ctx, UpdateStatusInput{TransactionID: "TX-001", NewStatus: "Spraying", AssignedEmployee: "Johan", ColourCode: ptr("RAL-5012")})
	require.NoError(t, err)
	require.Equal(t, "RAL-5012", view.ColourCode)

	view, err = h.svc.UpdateStatus(ctx, UpdateStatusInput{TransactionID: "TX-001", NewStatus: "Re-Mixing", AssignedEmployee: "Johan", ColourCode: ptr("  ")})
	require.NoError(t, err)
	require.Equal(t, "RAL-5012", view.ColourCode)

	rows := h.auditRows(t, "TX-001")
	require.Equal(t, "RAL-5012", *rows[0].ColourCode)
}

func TestTransitionMetricSkipsNoteOnlyUpdates(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := newHarness(t, func(p *ServiceParams) { p.Metrics = metrics.NewOrderMetrics(reg) })
	ctx := context.Background()
	h.create(t, "TX-001")

	_, err := h.svc.UpdateStatus(ctx, UpdateStatusInput{TransactionID: "TX-001", NewStatus: "Mixing", AssignedEmployee: "Johan"})
	require.NoError(t, err)
	_, err = h.svc.UpdateStatus(ctx, UpdateStatusInput{TransactionID: "TX-001", NewStatus: "Mixing", AssignedEmployee: "Johan", Note: ptr("thin with 10%")})
	require.NoError(t, err)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	var mixing float64
	for _, mf := range mfs {
		if mf.GetName() != "paintqueue_order_transitions_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "to_status" && l.GetValue() == "Mixing" {
					mixing += m.GetCounter().GetValue()
				}
			}
		}
	}
	require.Equal(t, float64(1), mixing)
}
