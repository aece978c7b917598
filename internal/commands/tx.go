package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/compta/internal/importer"
	"github.com/cleared-dev/compta/internal/ledger"
	"github.com/cleared-dev/compta/internal/model"
)

func newTxCommand(a *app) *cobra.Command {
	txCmd := &cobra.Command{
		Use:   "tx",
		Short: "Record and inspect journal transactions",
	}
	txCmd.AddCommand(newTxAddCommand(a))
	txCmd.AddCommand(newTxEditCommand(a))
	txCmd.AddCommand(newTxShowCommand(a))
	txCmd.AddCommand(newTxListCommand(a))
	txCmd.AddCommand(newTxDeleteCommand(a))
	txCmd.AddCommand(newTxReverseCommand(a))
	txCmd.AddCommand(newTxReconcileCommand(a))
	txCmd.AddCommand(newTxExportCommand(a))
	txCmd.AddCommand(newTxImportCommand(a))
	return txCmd
}

// txFlags mirrors the fields of the entry form.
type txFlags struct {
	label, amount, debit, credit, date string
	payment, check, reference, notes   string
	typ                                string
	category, author                   int64
}

func (f *txFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.label, "label", "", "transaction label (required)")
	cmd.Flags().StringVar(&f.amount, "amount", "", "amount, e.g. 142,02 (required)")
	cmd.Flags().StringVar(&f.debit, "debit", "", "account code to debit (required)")
	cmd.Flags().StringVar(&f.credit, "credit", "", "account code to credit (required)")
	cmd.Flags().StringVar(&f.date, "date", "", "transaction date, YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&f.payment, "payment", "", "payment method code (ES, CB, CH, VI, PR)")
	cmd.Flags().StringVar(&f.check, "check", "", "check number, kept for CH payments")
	cmd.Flags().StringVar(&f.reference, "reference", "", "voucher reference")
	cmd.Flags().StringVar(&f.notes, "notes", "", "free-form notes")
	cmd.Flags().StringVar(&f.typ, "type", "", "transaction type (advanced, revenue, expense, transfer, debt, credit)")
	cmd.Flags().Int64Var(&f.category, "category", 0, "category ID")
	cmd.Flags().Int64Var(&f.author, "author", 0, "ID of the submitting user")
}

func (f *txFlags) candidate(a *app) (ledger.Candidate, error) {
	date := f.date
	if date == "" {
		date = a.clock.Now().Format(model.DateFormat)
	}
	fields := map[string]string{
		ledger.FieldLabel:         f.label,
		ledger.FieldAmount:        f.amount,
		ledger.FieldDebitAccount:  f.debit,
		ledger.FieldCreditAccount: f.credit,
		ledger.FieldDate:          date,
		ledger.FieldPaymentMethod: f.payment,
		ledger.FieldCheckNumber:   f.check,
		ledger.FieldReference:     f.reference,
		ledger.FieldNotes:         f.notes,
		ledger.FieldType:          f.typ,
	}
	if f.category != 0 {
		fields[ledger.FieldCategory] = strconv.FormatInt(f.category, 10)
	}
	if f.author != 0 {
		fields[ledger.FieldAuthor] = strconv.FormatInt(f.author, 10)
	}
	return ledger.ParseForm(fields)
}

func newTxAddCommand(a *app) *cobra.Command {
	var flags txFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a two-account transaction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := flags.candidate(a)
			if err != nil {
				return err
			}
			id, err := a.ledger.Add(cmd.Context(), c)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added transaction %d\n", id)
			return nil
		},
	}
	flags.register(cmd)

	return cmd
}

func newTxEditCommand(a *app) *cobra.Command {
	var flags txFlags

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Replace a transaction of an open fiscal year",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := flags.candidate(a)
			if err != nil {
				return err
			}
			if err := a.ledger.Edit(cmd.Context(), id, c); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated transaction %d\n", id)
			return nil
		},
	}
	flags.register(cmd)

	return cmd
}

func newTxShowCommand(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a transaction and its lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			t, err := a.ledger.Get(cmd.Context(), id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(t)
			}
			a.printTransaction(out, t)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")

	return cmd
}

func newTxListCommand(a *app) *cobra.Command {
	var year, from, to string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the journal of a fiscal year or of a date range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var txs []model.Transaction
			if from != "" || to != "" {
				if year != "" {
					return model.Invalid("year", "--year cannot be combined with --from/--to")
				}
				start, end, err := a.dateRange(from, to)
				if err != nil {
					return err
				}
				if txs, err = a.ledger.ListBetween(cmd.Context(), start, end); err != nil {
					return err
				}
			} else {
				y, err := a.resolveYear(cmd.Context(), year)
				if err != nil {
					return err
				}
				if txs, err = a.ledger.List(cmd.Context(), y.ID); err != nil {
					return err
				}
			}
			for _, t := range txs {
				a.printTransaction(cmd.OutOrStdout(), t)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&year, "year", "", "fiscal year label or ID (default current)")
	cmd.Flags().StringVar(&from, "from", "", "first date, YYYY-MM-DD (default January 1st of the --to year)")
	cmd.Flags().StringVar(&to, "to", "", "last date, YYYY-MM-DD (default today)")

	return cmd
}

// dateRange parses --from/--to. A missing bound defaults to January 1st of
// the other bound's year, or to today.
func (a *app) dateRange(from, to string) (start, end time.Time, err error) {
	end = model.Day(a.clock.Now())
	if to != "" {
		if end, err = parseDate(to); err != nil {
			return start, end, err
		}
	}
	start = time.Date(end.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	if from != "" {
		if start, err = parseDate(from); err != nil {
			return start, end, err
		}
	}
	return start, end, nil
}

func newTxDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction of an open fiscal year",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.ledger.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted transaction %d\n", id)
			return nil
		},
	}
}

func newTxReverseCommand(a *app) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "reverse <id>",
		Short: "Record the reversing entry of a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			when := a.clock.Now()
			if date != "" {
				if when, err = parseDate(date); err != nil {
					return err
				}
			}

			revID, err := a.ledger.Reverse(cmd.Context(), id, when)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reversed transaction %d as %d\n", id, revID)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "date of the reversing entry (default today)")

	return cmd
}

func newTxReconcileCommand(a *app) *cobra.Command {
	var undo bool

	cmd := &cobra.Command{
		Use:   "reconcile <line-id>",
		Short: "Mark a line as matched against the bank statement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.ledger.Reconcile(cmd.Context(), id, !undo)
		},
	}
	cmd.Flags().BoolVar(&undo, "undo", false, "clear the reconciled flag")

	return cmd
}

func newTxExportCommand(a *app) *cobra.Command {
	var year string

	cmd := &cobra.Command{
		Use:   "export [file.csv]",
		Short: "Export the journal of a fiscal year as CSV (stdout by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			y, err := a.resolveYear(cmd.Context(), year)
			if err != nil {
				return err
			}
			txs, err := a.ledger.List(cmd.Context(), y.ID)
			if err != nil {
				return err
			}

			if len(args) == 0 || args[0] == "-" {
				return ledger.WriteJournal(cmd.OutOrStdout(), txs)
			}
			f, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("creating %s: %w", args[0], err)
			}
			if err := ledger.WriteJournal(f, txs); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}
	cmd.Flags().StringVar(&year, "year", "", "fiscal year label or ID (default current)")

	return cmd
}

func newTxImportCommand(a *app) *cobra.Command {
	var format, bank, counterpart string

	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Record the transactions of a journal export or bank statement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := importer.DefaultRegistry(bank, counterpart).Get(format)
			if p == nil {
				return fmt.Errorf("unknown import format %q (want journal or bank)", format)
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[0], err)
			}
			defer f.Close()

			cands, err := p.Parse(f)
			if err != nil {
				return fmt.Errorf("parsing %s: %w", args[0], err)
			}

			ids, err := importer.Apply(cmd.Context(), a.ledger, cands)
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d of %d transactions\n", len(ids), len(cands))
			return err
		},
	}
	cmd.Flags().StringVar(&format, "format", "journal", "input format: journal or bank")
	cmd.Flags().StringVar(&bank, "bank", "512", "bank account debited by incoming amounts (bank format)")
	cmd.Flags().StringVar(&counterpart, "counterpart", "471", "suspense account for the other side (bank format)")

	return cmd
}

func (a *app) printTransaction(w io.Writer, t model.Transaction) {
	fmt.Fprintf(w, "#%d %s %s\n", t.ID, t.Date.Format(model.DateFormat), t.Label)
	for _, l := range t.Lines {
		if l.Debit > 0 {
			fmt.Fprintf(w, "  %-4d %-8s D %14s\n", l.ID, l.AccountCode, a.money(l.Debit))
		} else {
			fmt.Fprintf(w, "  %-4d %-8s C %14s\n", l.ID, l.AccountCode, a.money(l.Credit))
		}
	}
}
