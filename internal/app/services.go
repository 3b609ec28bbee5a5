// Package app wires repositories and services over a single database client.
// The API server and queuectl share it so both run the same service graph.
package app

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/paintqueue/paintqueue-backend/internal/audit"
	"github.com/paintqueue/paintqueue-backend/internal/history"
	"github.com/paintqueue/paintqueue-backend/internal/orders"
	"github.com/paintqueue/paintqueue-backend/internal/reports"
	"github.com/paintqueue/paintqueue-backend/internal/staff"
	"github.com/paintqueue/paintqueue-backend/pkg/config"
	"github.com/paintqueue/paintqueue-backend/pkg/db"
	"github.com/paintqueue/paintqueue-backend/pkg/logger"
	"github.com/paintqueue/paintqueue-backend/pkg/metrics"
)

type Services struct {
	Orders  orders.Service
	Staff   staff.Service
	Reports reports.Service
}

// NewServices builds the service graph. reg may be nil, in which case no
// order or sweep metrics are recorded.
func NewServices(cfg *config.Config, logg *logger.Logger, client *db.Client, reg prometheus.Registerer) (*Services, error) {
	if client == nil {
		return nil, fmt.Errorf("database client required")
	}

	var (
		orderMetrics *metrics.OrderMetrics
		sweepMetrics *metrics.SweepMetrics
	)
	if reg != nil {
		orderMetrics = metrics.NewOrderMetrics(reg)
		sweepMetrics = metrics.NewSweepMetrics(reg)
	}

	gdb := client.DB()
	auditRepo := audit.NewRepository(gdb)

	ordersSvc, err := orders.NewService(orders.ServiceParams{
		Repo:           orders.NewRepository(gdb),
		History:        history.NewRepository(gdb),
		Audit:          auditRepo,
		Tx:             client,
		Logger:         logg,
		Metrics:        orderMetrics,
		SweepMetrics:   sweepMetrics,
		AdminActionLog: cfg.FeatureFlags.AdminActionLog,
		ListLimit:      cfg.Orders.ListLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("orders service: %w", err)
	}

	staffSvc, err := staff.NewService(staff.NewRepository(gdb), logg)
	if err != nil {
		return nil, fmt.Errorf("staff service: %w", err)
	}

	reportsSvc, err := reports.NewService(reports.NewRepository(gdb), auditRepo, logg)
	if err != nil {
		return nil, fmt.Errorf("reports service: %w", err)
	}

	return &Services{Orders: ordersSvc, Staff: staffSvc, Reports: reportsSvc}, nil
}
