package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/compta/internal/model"
)

func newAccountCommand(a *app) *cobra.Command {
	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Manage the chart of accounts",
	}
	accountCmd.AddCommand(newAccountListCommand(a))
	accountCmd.AddCommand(newAccountAddCommand(a))
	accountCmd.AddCommand(newAccountDeleteCommand(a))
	accountCmd.AddCommand(newAccountImportCommand(a))
	accountCmd.AddCommand(newAccountExportCommand(a))
	return accountCmd
}

func newAccountListCommand(a *app) *cobra.Command {
	var typ string
	var grouped bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts in code order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, out := cmd.Context(), cmd.OutOrStdout()

			if grouped {
				groups, err := a.accts.ListGroupedByType(ctx, a.chart)
				if err != nil {
					return err
				}
				for _, g := range groups {
					fmt.Fprintf(out, "%s\n", g.Name)
					for _, acct := range g.Accounts {
						fmt.Fprintf(out, "  %-8s %s\n", acct.Code, acct.Name)
					}
				}
				return nil
			}

			var accts []model.Account
			var err error
			if typ != "" {
				t, perr := model.ParseAccountType(typ)
				if perr != nil {
					return model.Invalid("type", "%v", perr)
				}
				accts, err = a.accts.ListByType(ctx, a.chart, t)
			} else {
				accts, err = a.accts.ListAll(ctx, a.chart)
			}
			if err != nil {
				return err
			}

			for _, acct := range accts {
				fmt.Fprintf(out, "%-8s %-12s %s\n", acct.Code, acct.Type, acct.Name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&typ, "type", "", "only list accounts of this type")
	cmd.Flags().BoolVar(&grouped, "grouped", false, "group postable accounts by type")

	return cmd
}

func newAccountAddCommand(a *app) *cobra.Command {
	var typ, description string
	var typeParent bool

	cmd := &cobra.Command{
		Use:   "add <code> <name>",
		Short: "Add an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := model.ParseAccountType(typ)
			if err != nil {
				return model.Invalid("type", "%v", err)
			}

			acct := model.Account{
				ChartID:     a.chart,
				Code:        args[0],
				Name:        args[1],
				Type:        t,
				TypeParent:  typeParent,
				Description: description,
			}
			if _, err := a.accts.Create(cmd.Context(), acct); err != nil {
				return err
			}

			parent, ok, err := a.accts.ResolveParent(cmd.Context(), a.chart, acct.Code)
			if err != nil {
				return err
			}
			if ok {
				fmt.Fprintf(cmd.OutOrStdout(), "Added account %s under %s %s\n", model.NormalizeCode(acct.Code), parent.Code, parent.Name)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Added account %s\n", model.NormalizeCode(acct.Code))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&typ, "type", "", "account type (asset, liability, equity, revenue, expense, analytical, volunteering)")
	cmd.Flags().BoolVar(&typeParent, "type-parent", false, "mark as the group header of its type")
	cmd.Flags().StringVar(&description, "description", "", "free-form description")

	return cmd
}

func newAccountDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <code>",
		Short: "Delete an account that no transaction references",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.accts.Delete(cmd.Context(), a.chart, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted account %s\n", model.NormalizeCode(args[0]))
			return nil
		},
	}
}

func newAccountImportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import accounts from CSV, skipping existing codes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[0], err)
			}
			defer f.Close()

			n, err := a.accts.Import(cmd.Context(), a.chart, f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d accounts\n", n)
			return nil
		},
	}
}

func newAccountExportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file.csv]",
		Short: "Export the chart of accounts as CSV (stdout by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 || args[0] == "-" {
				return a.accts.Export(cmd.Context(), a.chart, cmd.OutOrStdout())
			}

			f, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("creating %s: %w", args[0], err)
			}
			if err := a.accts.Export(cmd.Context(), a.chart, f); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}
}
