package maintenance

import (
	"context"
	"fmt"

	"github.com/paintqueue/paintqueue-backend/internal/orders"
)

// ArchiveStaleJobName is the registry name of the stale-order archive.
const ArchiveStaleJobName = "archive_stale"

type staleArchiver interface {
	ArchiveStale(ctx context.Context, cutoffDays int) (*orders.ArchiveResult, error)
}

type archiveStaleJob struct {
	orders     staleArchiver
	cutoffDays int
}

// NewArchiveStaleJob archives Waiting orders older than cutoffDays.
func NewArchiveStaleJob(svc staleArchiver, cutoffDays int) (Job, error) {
	if svc == nil {
		return nil, fmt.Errorf("orders service required")
	}
	if cutoffDays <= 0 {
		return nil, fmt.Errorf("cutoff days must be positive, got %d", cutoffDays)
	}
	return &archiveStaleJob{orders: svc, cutoffDays: cutoffDays}, nil
}

func (j *archiveStaleJob) Name() string { return ArchiveStaleJobName }

func (j *archiveStaleJob) Run(ctx context.Context) (string, error) {
	res, err := j.orders.ArchiveStale(ctx, j.cutoffDays)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s (cutoff %d days)", res.Message, res.CutoffDays), nil
}
