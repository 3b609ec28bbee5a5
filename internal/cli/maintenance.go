package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/paintqueue/paintqueue-backend/internal/maintenance"
)

// MaintenanceCmd runs upkeep jobs once. Scheduling, if any, belongs to
// whatever invokes queuectl.
func MaintenanceCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "maintenance",
		Short: "Run one-shot maintenance jobs",
	}
	cmd.AddCommand(maintenanceListCmd(env))
	cmd.AddCommand(maintenanceRunCmd(env))
	return cmd
}

func maintenanceListCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := buildRegistry(cmd.Context(), env)
			if err != nil {
				return err
			}
			for _, job := range registry.Jobs() {
				fmt.Fprintln(env.Out, job.Name())
			}
			return nil
		},
	}
}

func maintenanceRunCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "run [job]",
		Short: "Run every job, or only the named one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := buildRegistry(cmd.Context(), env)
			if err != nil {
				return err
			}
			runner, err := maintenance.NewRunner(env.Logger, registry)
			if err != nil {
				return err
			}

			if len(args) == 1 {
				res, err := runner.RunNamed(cmd.Context(), args[0])
				writeResults(env.Out, []maintenance.Result{res})
				return err
			}
			results, err := runner.RunAll(cmd.Context())
			writeResults(env.Out, results)
			return err
		},
	}
}

func buildRegistry(ctx context.Context, env *Env) (*maintenance.Registry, error) {
	svcs, err := env.Services(ctx)
	if err != nil {
		return nil, err
	}
	archive, err := maintenance.NewArchiveStaleJob(svcs.Orders, env.ArchiveCutoffDays)
	if err != nil {
		return nil, err
	}
	return maintenance.NewRegistry(archive), nil
}

func writeResults(out io.Writer, results []maintenance.Result) {
	if len(results) == 0 || results[0].Job == "" {
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "JOB\tRESULT\tDURATION\tSUMMARY")
	for _, res := range results {
		outcome := color.New(color.FgGreen).Sprint("ok")
		summary := res.Summary
		if res.Err != nil {
			outcome = color.New(color.FgRed).Sprint("failed")
			summary = res.Err.Error()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", res.Job, outcome, res.Duration.Round(time.Millisecond), summary)
	}
	_ = w.Flush()
}
