package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/compta/internal/model"
)

func newYearCommand(a *app) *cobra.Command {
	yearCmd := &cobra.Command{
		Use:   "year",
		Short: "Manage fiscal years",
	}
	yearCmd.AddCommand(newYearCreateCommand(a))
	yearCmd.AddCommand(newYearListCommand(a))
	yearCmd.AddCommand(newYearCloseCommand(a))
	yearCmd.AddCommand(newYearDeleteCommand(a))
	return yearCmd
}

func newYearCreateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "create <label> <start> <end>",
		Short: "Open a fiscal year (dates as YYYY-MM-DD)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseDate(args[1])
			if err != nil {
				return err
			}
			end, err := parseDate(args[2])
			if err != nil {
				return err
			}

			id, err := a.years.Create(cmd.Context(), a.chart, args[0], start, end)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created fiscal year %s (id %d)\n", args[0], id)
			return nil
		},
	}
}

func newYearListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List fiscal years, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			all, err := a.years.List(cmd.Context(), a.chart)
			if err != nil {
				return err
			}
			for _, y := range all {
				state := "open"
				if y.Closed {
					state = "closed " + y.ClosingDate.Format(model.DateFormat)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-4d %-12s %s → %s  %s\n", y.ID, y.Label,
					y.Start.Format(model.DateFormat), y.End.Format(model.DateFormat), state)
			}
			return nil
		},
	}
}

func newYearCloseCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "close <year>",
		Short: "Close a fiscal year and carry its balances forward",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			y, err := a.resolveYear(ctx, args[0])
			if err != nil {
				return err
			}
			if err := a.years.Close(ctx, y.ID); err != nil {
				return err
			}

			seeds, err := a.years.CarriedForward(ctx, y.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Closed fiscal year %s, %d balances carried forward\n", y.Label, len(seeds))
			for _, sd := range seeds {
				fmt.Fprintf(cmd.OutOrStdout(), "  %-8s %s\n", sd.Code, a.money(sd.Balance))
			}
			return nil
		},
	}
}

func newYearDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <year>",
		Short: "Delete an open fiscal year without transactions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			y, err := a.resolveYear(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := a.years.Delete(cmd.Context(), y.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted fiscal year %s\n", y.Label)
			return nil
		},
	}
}
