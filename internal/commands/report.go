package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/compta/internal/model"
	"github.com/cleared-dev/compta/internal/reports"
)

func newBalanceCommand(a *app) *cobra.Command {
	var year string

	cmd := &cobra.Command{
		Use:   "balance [code-prefix]",
		Short: "Show the credit − debit balance of accounts starting with a prefix",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prefix := ""
			if len(args) > 0 {
				prefix = args[0]
			}

			var yearID int64
			if year != "" {
				y, err := a.resolveYear(cmd.Context(), year)
				if err != nil {
					return err
				}
				yearID = y.ID
			}

			b, err := a.ledger.Balance(cmd.Context(), prefix, yearID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.money(b))
			return nil
		},
	}
	cmd.Flags().StringVar(&year, "year", "", "fiscal year label or ID (default current)")

	return cmd
}

func newReportCommand(a *app) *cobra.Command {
	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Build statements",
	}
	reportCmd.AddCommand(newReportStatementCommand(a))
	reportCmd.AddCommand(newReportTrialCommand(a))
	return reportCmd
}

func newReportStatementCommand(a *app) *cobra.Command {
	var year, compare string
	var category int64
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "statement",
		Short: "Hierarchical statement, volunteering accounts reported separately",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			y, err := a.resolveYear(ctx, year)
			if err != nil {
				return err
			}
			c := reports.Criteria{YearID: y.ID, ExcludeType: model.TypeVolunteering, CategoryID: category}
			if compare != "" {
				cy, err := a.resolveYear(ctx, compare)
				if err != nil {
					return err
				}
				c.CompareYearID = cy.ID
			}

			general, err := a.report.Statement(ctx, c)
			if err != nil {
				return err
			}
			volunteering, err := a.report.VolunteeringStatement(ctx, c, general)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]*reports.Statement{"general": general, "volunteering": volunteering})
			}

			a.printStatement(out, general)
			if len(volunteering.Sections) > 0 {
				fmt.Fprintln(out)
				a.printStatement(out, volunteering)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&year, "year", "", "fiscal year label or ID (default current)")
	cmd.Flags().StringVar(&compare, "compare", "", "fiscal year to compare with")
	cmd.Flags().Int64Var(&category, "category", 0, "only transactions of this category")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")

	return cmd
}

func newReportTrialCommand(a *app) *cobra.Command {
	var year string

	cmd := &cobra.Command{
		Use:   "trial",
		Short: "Trial balance: opening, debits, credits and closing per account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			y, err := a.resolveYear(cmd.Context(), year)
			if err != nil {
				return err
			}
			tb, err := a.report.TrialBalance(cmd.Context(), y.ID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Trial balance %s\n", tb.Year.Label)
			fmt.Fprintf(out, "%-8s %14s %14s %14s %14s\n", "account", "opening", "debit", "credit", "closing")
			for _, r := range tb.Rows {
				fmt.Fprintf(out, "%-8s %14s %14s %14s %14s\n", r.Code,
					a.money(r.Opening), a.money(r.Debit), a.money(r.Credit), a.money(r.Closing))
			}
			fmt.Fprintf(out, "%-8s %14s %14s %14s %14s\n", "total",
				a.money(tb.Opening), a.money(tb.Debit), a.money(tb.Credit), a.money(tb.Closing))
			if !tb.Balanced {
				fmt.Fprintln(out, "WARNING: the ledger does not balance")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&year, "year", "", "fiscal year label or ID (default current)")

	return cmd
}

func (a *app) printStatement(w io.Writer, st *reports.Statement) {
	title := "Statement " + st.Year.Label
	if st.Compare != nil {
		title += " vs " + st.Compare.Label
	}
	fmt.Fprintln(w, title)

	var printNode func(n *reports.Node, depth int)
	printNode = func(n *reports.Node, depth int) {
		line := fmt.Sprintf("%s%-8s %-32s %14s", strings.Repeat("  ", depth+1), n.Code, n.Name, a.money(n.Balance))
		if st.Compare != nil {
			line += fmt.Sprintf(" %14s %14s", a.money(n.Compare), a.money(n.Diff))
		}
		fmt.Fprintln(w, line)
		for _, child := range n.Children {
			printNode(child, depth+1)
		}
	}

	for _, sec := range st.Sections {
		fmt.Fprintf(w, "%s: %s\n", sec.Type, a.money(sec.Total))
		for _, n := range sec.Nodes {
			printNode(n, 0)
		}
	}
	fmt.Fprintf(w, "Result: %s\n", a.money(st.Result))
}
