package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/paintqueue/paintqueue-backend/internal/staff"
)

// StaffCmd manages the staff directory.
func StaffCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "staff",
		Short: "Manage employees",
	}
	cmd.AddCommand(staffListCmd(env))
	cmd.AddCommand(staffAddCmd(env))
	cmd.AddCommand(staffRemoveCmd(env))
	return cmd
}

func staffListCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List employees",
		RunE: func(cmd *cobra.Command, args []string) error {
			svcs, err := env.Services(cmd.Context())
			if err != nil {
				return err
			}
			employees, err := svcs.Staff.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(employees) == 0 {
				fmt.Fprintln(env.Out, "No employees found.")
				return nil
			}
			w := tabwriter.NewWriter(env.Out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CODE\tNAME\tROLE")
			for _, e := range employees {
				fmt.Fprintf(w, "%s\t%s\t%s\n", e.EmployeeCode, e.EmployeeName, e.Role)
			}
			return w.Flush()
		},
	}
}

func staffAddCmd(env *Env) *cobra.Command {
	var input staff.EmployeeInput

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an employee",
		RunE: func(cmd *cobra.Command, args []string) error {
			svcs, err := env.Services(cmd.Context())
			if err != nil {
				return err
			}
			created, err := svcs.Staff.Create(cmd.Context(), input)
			if err != nil {
				return err
			}
			fmt.Fprintf(env.Out, "Added %s (%s)\n", created.EmployeeName, created.EmployeeCode)
			return nil
		},
	}
	cmd.Flags().StringVar(&input.EmployeeCode, "code", "", "employee code")
	cmd.Flags().StringVar(&input.EmployeeName, "name", "", "employee name")
	cmd.Flags().StringVar(&input.Role, "role", "", "role, e.g. Admin or Colour Mixer")
	return cmd
}

func staffRemoveCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "remove [code]",
		Short: "Remove an employee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svcs, err := env.Services(cmd.Context())
			if err != nil {
				return err
			}
			if err := svcs.Staff.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(env.Out, "Removed %s\n", args[0])
			return nil
		},
	}
}
