package cli

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/paintqueue/paintqueue-backend/internal/reports"
)

// ReportCmd prints the order summary counts.
func ReportCmd(env *Env) *cobra.Command {
	var q reports.SummaryQuery

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize orders by status, category and audit action",
		RunE: func(cmd *cobra.Command, args []string) error {
			svcs, err := env.Services(cmd.Context())
			if err != nil {
				return err
			}
			summary, err := svcs.Reports.Summary(cmd.Context(), q)
			if err != nil {
				return err
			}

			writeCounts(env.Out, "By status", summary.StatusSummary)
			writeCounts(env.Out, "By category", summary.CategorySummary)
			writeCounts(env.Out, "Audit actions", summary.HistorySummary)
			if q.IncludeDeleted {
				writeCounts(env.Out, "Deleted", summary.DeletedSummary)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&q.StartDate, "start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&q.EndDate, "end", "", "end date, inclusive (YYYY-MM-DD)")
	cmd.Flags().StringVar(&q.Status, "status", "", "only this status")
	cmd.Flags().StringVar(&q.Category, "category", "", "only this category")
	cmd.Flags().BoolVar(&q.IncludeDeleted, "include-deleted", false, "include cancelled orders")
	return cmd
}

// AuditLogsCmd prints the most recent audit rows.
func AuditLogsCmd(env *Env) *cobra.Command {
	var q reports.AuditLogQuery

	cmd := &cobra.Command{
		Use:   "audit-logs",
		Short: "Show recent audit log entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			svcs, err := env.Services(cmd.Context())
			if err != nil {
				return err
			}
			rows, err := svcs.Reports.AuditLogs(cmd.Context(), q)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				fmt.Fprintln(env.Out, "No audit entries found.")
				return nil
			}

			w := tabwriter.NewWriter(env.Out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tORDER\tACTION\tFROM\tTO\tBY\tREMARKS")
			for _, row := range rows {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					row.Timestamp.Format("2006-01-02 15:04"),
					row.OrderID,
					row.Action,
					row.FromStatus,
					statusLabel(row.ToStatus),
					orDash(row.EmployeeName),
					orDash(row.Remarks),
				)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&q.StartDate, "start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&q.EndDate, "end", "", "end date, inclusive (YYYY-MM-DD)")
	cmd.Flags().StringVar(&q.Status, "status", "", "only transitions into this status")
	cmd.Flags().StringVar(&q.OrderID, "order", "", "only this transaction id")
	return cmd
}

func writeCounts(out io.Writer, title string, counts map[string]int64) {
	fmt.Fprintln(out, color.New(color.Bold).Sprint(title))
	if len(counts) == 0 {
		fmt.Fprintln(out, "  (none)")
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, k := range keys {
		fmt.Fprintf(w, "  %s\t%d\n", k, counts[k])
	}
	_ = w.Flush()
}
