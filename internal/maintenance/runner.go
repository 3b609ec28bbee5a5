package maintenance

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/paintqueue/paintqueue-backend/pkg/logger"
)

// Result is the outcome of one job run.
type Result struct {
	Job      string
	Summary  string
	Duration time.Duration
	Err      error
}

// Runner executes registered jobs sequentially.
type Runner struct {
	logg     *logger.Logger
	registry *Registry
}

func NewRunner(logg *logger.Logger, registry *Registry) (*Runner, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if registry == nil {
		registry = NewRegistry()
	}
	return &Runner{logg: logg, registry: registry}, nil
}

// RunAll runs every job once. A failing job does not stop the rest; the
// returned error combines every failure.
func (r *Runner) RunAll(ctx context.Context) ([]Result, error) {
	jobs := r.registry.Jobs()
	results := make([]Result, 0, len(jobs))
	var errs error
	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return results, multierr.Append(errs, err)
		}
		res := r.run(ctx, job)
		results = append(results, res)
		if res.Err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", res.Job, res.Err))
		}
	}
	return results, errs
}

// RunNamed runs a single registered job.
func (r *Runner) RunNamed(ctx context.Context, name string) (Result, error) {
	job, ok := r.registry.Lookup(name)
	if !ok {
		err := fmt.Errorf("unknown job %q", name)
		return Result{Job: name, Err: err}, err
	}
	res := r.run(ctx, job)
	return res, res.Err
}

func (r *Runner) run(ctx context.Context, job Job) Result {
	jobCtx := r.logg.WithFields(ctx, map[string]any{"job": job.Name(), "event": "maintenance.job"})
	start := time.Now()
	summary, err := job.Run(jobCtx)
	res := Result{Job: job.Name(), Summary: summary, Duration: time.Since(start), Err: err}

	jobCtx = r.logg.WithField(jobCtx, "duration_ms", res.Duration.Milliseconds())
	if err != nil {
		r.logg.Error(jobCtx, "job failed", err)
		return res
	}
	r.logg.Info(jobCtx, "job completed")
	return res
}
