package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/paintqueue/paintqueue-backend/internal/orders"
	"github.com/paintqueue/paintqueue-backend/pkg/enums"
)

// ArchiveStaleCmd archives Waiting orders older than the cutoff.
func ArchiveStaleCmd(env *Env) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "archive-stale",
		Short: "Archive Waiting orders older than the cutoff",
		RunE: func(cmd *cobra.Command, args []string) error {
			svcs, err := env.Services(cmd.Context())
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("days") {
				days = env.ArchiveCutoffDays
			}
			res, err := svcs.Orders.ArchiveStale(cmd.Context(), days)
			if err != nil {
				return err
			}
			msg := color.New(color.FgGreen).Sprint(res.Message)
			if res.Archived == 0 {
				msg = color.New(color.FgHiBlack).Sprint(res.Message)
			}
			fmt.Fprintf(env.Out, "%s (cutoff %d days)\n", msg, res.CutoffDays)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", orders.DefaultArchiveCutoffDays, "age in days after which Waiting orders are archived")
	return cmd
}

// OrdersCmd groups read-only order commands.
func OrdersCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Inspect orders",
	}
	cmd.AddCommand(ordersListCmd(env))
	cmd.AddCommand(ordersHistoryCmd(env))
	return cmd
}

func ordersListCmd(env *Env) *cobra.Command {
	var (
		view  string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List orders (views: active, floor, archived, complete, admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			svcs, err := env.Services(cmd.Context())
			if err != nil {
				return err
			}
			rows, err := svcs.Orders.List(cmd.Context(), orders.ListView(view), limit)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				fmt.Fprintln(env.Out, "No orders found.")
				return nil
			}

			w := tabwriter.NewWriter(env.Out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TRANSACTION\tCUSTOMER\tCATEGORY\tSTATUS\tASSIGNED\tSTARTED")
			for _, o := range rows {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					o.TransactionID,
					o.CustomerName,
					o.Category,
					statusLabel(o.CurrentStatus),
					orDash(o.AssignedEmployee),
					o.StartTime.Format("2006-01-02 15:04"),
				)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&view, "view", string(orders.ListViewActive), "listing to show")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum rows (0 uses the configured default)")
	return cmd
}

func ordersHistoryCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "history [transaction-id]",
		Short: "Show the status timeline of an order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svcs, err := env.Services(cmd.Context())
			if err != nil {
				return err
			}
			entries, err := svcs.Orders.History(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(env.Out, "Order %s\n", args[0])
			for _, e := range entries {
				fmt.Fprintf(env.Out, "  %s  %s\n", e.EnteredAt.Format("2006-01-02 15:04:05"), statusLabel(e.Status))
			}
			return nil
		},
	}
}

func statusLabel(status string) string {
	switch enums.OrderStatus(status) {
	case enums.OrderStatusWaiting:
		return color.New(color.FgYellow).Sprint(status)
	case enums.OrderStatusMixing, enums.OrderStatusReMixing:
		return color.New(color.FgCyan).Sprint(status)
	case enums.OrderStatusSpraying:
		return color.New(color.FgHiBlue).Sprint(status)
	case enums.OrderStatusReady:
		return color.New(color.FgHiGreen).Sprint(status)
	case enums.OrderStatusComplete:
		return color.New(color.FgHiBlack).Sprint(status)
	default:
		return status
	}
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}
