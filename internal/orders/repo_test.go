package orders

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/paintqueue/paintqueue-backend/pkg/db/dbtest"
	"github.com/paintqueue/paintqueue-backend/pkg/db/models"
	"github.com/paintqueue/paintqueue-backend/pkg/enums"
)

func insertOrder(t *testing.T, repo Repository, id string, status enums.OrderStatus, started time.Time) *models.Order {
	t.Helper()
	order := &models.Order{
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
	}
	require.NoError(t, repo.Create(context.Background(), order))
	return order
}

func TestRepositoryListExcludesDeletedAndFiltersStatuses(t *testing.T) {
	repo := NewRepository(dbtest.New(t).DB())
	ctx := context.Background()
	base := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)

	insertOrder(t, repo, "TX-A", enums.OrderStatusWaiting, base)
	insertOrder(t, repo, "TX-B", enums.OrderStatusReady, base.Add(time.Hour))
	gone := insertOrder(t, repo, "TX-C", enums.OrderStatusMixing, base.Add(2*time.Hour))
	require.NoError(t, repo.Update(ctx, gone.ID, map[string]any{"deleted": true}))

	rows, err := repo.List(ctx, ListFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "TX-B", rows[0].TransactionID)

	rows, err = repo.List(ctx, ListFilter{Statuses: []enums.OrderStatus{enums.OrderStatusReady}})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "TX-B", rows[0].TransactionID)

	rows, err = repo.List(ctx, ListFilter{ExcludeStatuses: []enums.OrderStatus{enums.OrderStatusReady}})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "TX-A", rows[0].TransactionID)
}

func TestRepositoryListStageOrdered(t *testing.T) {
	repo := NewRepository(dbtest.New(t).DB())
	base := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)

	insertOrder(t, repo, "TX-READY", enums.OrderStatusReady, base)
	insertOrder(t, repo, "TX-MIX", enums.OrderStatusMixing, base.Add(time.Hour))
	insertOrder(t, repo, "TX-WAIT", enums.OrderStatusWaiting, base.Add(2*time.Hour))

	rows, err := repo.List(context.Background(), ListFilter{StageOrdered: true})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, "TX-WAIT", rows[0].TransactionID)
	require.Equal(t, "TX-MIX", rows[1].TransactionID)
	require.Equal(t, "TX-READY", rows[2].TransactionID)
}

func TestRepositoryArchiveWaitingBefore(t *testing.T) {
	repo := NewRepository(dbtest.New(t).DB())
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	insertOrder(t, repo, "TX-OLD", enums.OrderStatusWaiting, now.AddDate(0, 0, -30))
	insertOrder(t, repo, "TX-OLD-MIX", enums.OrderStatusMixing, now.AddDate(0, 0, -30))
	insertOrder(t, repo, "TX-NEW", enums.OrderStatusWaiting, now.AddDate(0, 0, -2))

	cutoff := now.AddDate(0, 0, -21)
	affected, err := repo.ArchiveWaitingBefore(ctx, cutoff)
	require.NoError(t, err)
	require.EqualValues(t, 1, affected)

	affected, err = repo.ArchiveWaitingBefore(ctx, cutoff)
	require.NoError(t, err)
	require.Zero(t, affected)

	order, err := repo.FindByTransactionID(ctx, "TX-OLD")
	require.NoError(t, err)
	require.True(t, order.Archived)
}

func TestRepositoryTransactionIDExistsChecksDeletedArchive(t *testing.T) {
	repo := NewRepository(dbtest.New(t).DB())
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	order := insertOrder(t, repo, "TX-LIVE", enums.OrderStatusWaiting, now)
	archived := models.NewDeletedOrder(*order, "customer cancelled", nil, now)
	archived.TransactionID = "TX-GONE"
	require.NoError(t, repo.InsertDeleted(ctx, &archived))

	for id, want := range map[string]bool{"TX-LIVE": true, "TX-GONE": true, "TX-NONE": false} {
		exists, err := repo.TransactionIDExists(ctx, id)
		require.NoError(t, err)
		require.Equal(t, want, exists, id)
	}
}

func TestRepositorySearch(t *testing.T) {
	repo := NewRepository(dbtest.New(t).DB())
	ctx := context.Background()
	base := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)

	a := insertOrder(t, repo, "TX-100", enums.OrderStatusWaiting, base)
	require.NoError(t, repo.Update(ctx, a.ID, map[string]any{"customer_name": "Thandi Mokoena"}))
	b := insertOrder(t, repo, "TX-200", enums.OrderStatusMixing, base.Add(time.Hour))
	require.NoError(t, repo.Update(ctx, b.ID, map[string]any{"customer_name": "Pieter van Wyk"}))
	insertOrder(t, repo, "TX_300", enums.OrderStatusWaiting, base.Add(2*time.Hour))

	rows, err := repo.Search(ctx, SearchParams{Query: "THANDI", SortBy: "start_time", SortOrder: "desc", Limit: 10})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "TX-100", rows[0].TransactionID)

	rows, err = repo.Search(ctx, SearchParams{Query: "tx-", SortBy: "transaction_id", SortOrder: "asc", Limit: 10})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "TX-100", rows[0].TransactionID)

	rows, err = repo.Search(ctx, SearchParams{Query: "_", SortBy: "start_time", Limit: 10})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "TX_300", rows[0].TransactionID)
}

func TestRepositoryUpdateMissingRow(t *testing.T) {
	repo := NewRepository(dbtest.New(t).DB())
	err := repo.Update(context.Background(), 999, map[string]any{"note": "x"})
	require.Error(t, err)
}
