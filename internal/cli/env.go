// Package cli implements queuectl, the operator command line for the paint
// queue. Commands run against the same services as the API.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/paintqueue/paintqueue-backend/internal/app"
	"github.com/paintqueue/paintqueue-backend/pkg/config"
	"github.com/paintqueue/paintqueue-backend/pkg/db"
	"github.com/paintqueue/paintqueue-backend/pkg/logger"
)

// Env is what every command needs. Services is called lazily so that
// commands like --help never open a database connection.
type Env struct {
	Out      io.Writer
	Logger   *logger.Logger
	Services func(ctx context.Context) (*app.Services, error)
	// ArchiveCutoffDays is the default for archive-stale.
	ArchiveCutoffDays int
	// Close releases whatever Services opened.
	Close func() error
}

// NewEnv connects lazily using the environment configuration.
func NewEnv(cfg *config.Config, logg *logger.Logger, out io.Writer) *Env {
	env := &Env{
		Out:               out,
		Logger:            logg,
		ArchiveCutoffDays: cfg.Orders.ArchiveCutoffDays,
		Close:             func() error { return nil },
	}

	var cached *app.Services
	env.Services = func(ctx context.Context) (*app.Services, error) {
		if cached != nil {
			return cached, nil
		}
		client, err := db.New(ctx, cfg.DB, logg)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		svcs, err := app.NewServices(cfg, logg, client, nil)
		if err != nil {
			_ = client.Close()
			return nil, err
		}
		env.Close = client.Close
		cached = svcs
		return svcs, nil
	}
	return env
}
