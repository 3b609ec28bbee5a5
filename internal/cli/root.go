package cli

import (
	"github.com/spf13/cobra"
)

// RootCmd assembles queuectl.
func RootCmd(env *Env) *cobra.Command {
	root := &cobra.Command{
		Use:   "queuectl",
		Short: "Operate the paint shop order queue",
		Long: `queuectl runs maintenance and reporting tasks against the order queue:
archiving stale Waiting orders, status summaries, the audit trail and
the staff directory.`,
		SilenceUsage: true,
	}

	root.AddCommand(ArchiveStaleCmd(env))
	root.AddCommand(MaintenanceCmd(env))
	root.AddCommand(OrdersCmd(env))
	root.AddCommand(ReportCmd(env))
	root.AddCommand(AuditLogsCmd(env))
	root.AddCommand(StaffCmd(env))
	return root
}
