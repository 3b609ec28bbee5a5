package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"

	"github.com/paintqueue/paintqueue-backend/internal/app"
	"github.com/paintqueue/paintqueue-backend/internal/orders"
	"github.com/paintqueue/paintqueue-backend/pkg/config"
	"github.com/paintqueue/paintqueue-backend/pkg/db"
	"github.com/paintqueue/paintqueue-backend/pkg/db/dbtest"
	"github.com/paintqueue/paintqueue-backend/pkg/db/models"
	"github.com/paintqueue/paintqueue-backend/pkg/enums"
	"github.com/paintqueue/paintqueue-backend/pkg/logger"
)

type fixture struct {
	client *db.Client
	out    *bytes.Buffer
	env    *Env
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	color.NoColor = true

	client := dbtest.New(t)
	logg := logger.New(logger.Options{ServiceName: "test"})
	svcs, err := app.NewServices(&config.Config{}, logg, client, nil)
	require.NoError(t, err)

	out := &bytes.Buffer{}
	return &fixture{
		client: client,
		out:    out,
		env: &Env{
			Out:               out,
			Logger:            logg,
			Services:          func(context.Context) (*app.Services, error) { return svcs, nil },
			ArchiveCutoffDays: 21,
			Close:             func() error { return nil },
		},
	}
}

func (f *fixture) run(t *testing.T, args ...string) error {
	t.Helper()
	f.out.Reset()
	root := RootCmd(f.env)
	root.SetArgs(args)
	root.SetOut(f.out)
	root.SetErr(f.out)
	return root.ExecuteContext(context.Background())
}

func (f *fixture) seed(t *testing.T, id string, status enums.OrderStatus, started time.Time) {
	t.Helper()
	require.NoError(t, f.client.DB().Create(&models.Order{
		TransactionID: id,
		CustomerName:  "Customer " + id,
		ClientContact: "082 555 0100",
		PaintType:     "2K Basecoat",
		ColourCode:    enums.ColourCodePending,
		Category:      enums.OrderCategoryNewMix,
		OrderType:     enums.OrderTypeOrder,
		CurrentStatus: status,
		StartTime:     started,
		UpdatedAt:     started,
	}).Error)
}

func TestArchiveStaleUsesConfiguredCutoff(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "TX-OLD", enums.OrderStatusWaiting, time.Now().AddDate(0, 0, -30))
	f.seed(t, "TX-NEW", enums.OrderStatusWaiting, time.Now().AddDate(0, 0, -2))

	require.NoError(t, f.run(t, "archive-stale"))
	require.Contains(t, f.out.String(), "1 orders archived (cutoff 21 days)")

	require.NoError(t, f.run(t, "archive-stale", "--days", "1"))
	require.Contains(t, f.out.String(), "1 orders archived (cutoff 1 days)")

	require.NoError(t, f.run(t, "orders", "list", "--view", string(orders.ListViewArchived)))
	require.Contains(t, f.out.String(), "TX-OLD")
	require.Contains(t, f.out.String(), "TX-NEW")
}

func TestArchiveStaleRejectsNonPositiveDays(t *testing.T) {
	f := newFixture(t)
	require.Error(t, f.run(t, "archive-stale", "--days", "0"))
}

func TestMaintenanceRunsArchiveJob(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "TX-STALE", enums.OrderStatusWaiting, time.Now().AddDate(0, 0, -40))

	require.NoError(t, f.run(t, "maintenance", "list"))
	require.Equal(t, "archive_stale\n", f.out.String())

	require.NoError(t, f.run(t, "maintenance", "run"))
	require.Contains(t, f.out.String(), "archive_stale")
	require.Contains(t, f.out.String(), "1 orders archived (cutoff 21 days)")

	require.NoError(t, f.run(t, "maintenance", "run", "archive_stale"))
	require.Contains(t, f.out.String(), "0 orders archived")

	require.Error(t, f.run(t, "maintenance", "run", "reindex"))
}

func TestOrdersListAndHistory(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "TX-1", enums.OrderStatusMixing, time.Now().Add(-time.Hour))

	require.NoError(t, f.run(t, "orders", "list"))
	out := f.out.String()
	require.Contains(t, out, "TRANSACTION")
	require.Contains(t, out, "TX-1")
	require.Contains(t, out, "Mixing")

	require.Error(t, f.run(t, "orders", "list", "--view", "nope"))
	require.Error(t, f.run(t, "orders", "history"))
}

func TestReportAndAuditLogs(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "TX-R1", enums.OrderStatusWaiting, time.Now())
	f.seed(t, "TX-R2", enums.OrderStatusReady, time.Now())

	require.NoError(t, f.run(t, "report"))
	out := f.out.String()
	require.Contains(t, out, "By status")
	require.Contains(t, out, "Ready")
	require.Contains(t, out, "New Mix")
	require.NotContains(t, out, "Deleted")

	require.Error(t, f.run(t, "report", "--start", "14/07/2025"))

	require.NoError(t, f.run(t, "audit-logs"))
	require.Contains(t, f.out.String(), "No audit entries found.")
}

func TestStaffCommands(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.run(t, "staff", "list"))
	require.Contains(t, f.out.String(), "No employees found.")

	require.NoError(t, f.run(t, "staff", "add", "--code", "E7", "--name", "Lerato", "--role", "Colour Mixer"))
	require.Contains(t, f.out.String(), "Added Lerato (E7)")

	require.NoError(t, f.run(t, "staff", "list"))
	require.Contains(t, f.out.String(), "Colour Mixer")

	require.NoError(t, f.run(t, "staff", "remove", "E7"))
	require.Error(t, f.run(t, "staff", "remove", "E7"))
}
