// Package ledger records balanced journal transactions and answers balance queries.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cleared-dev/compta/internal/clock"
	"github.com/cleared-dev/compta/internal/model"
	"github.com/cleared-dev/compta/internal/store"
)

// Service provides business logic for journal transactions of one chart.
type Service struct {
	db      *store.DB
	chartID int64
	clock   clock.Clock
	log     *slog.Logger
}

// NewService creates a ledger Service. A nil clock uses the wall clock and a
// nil logger uses slog.Default().
func NewService(db *store.DB, chartID int64, clk clock.Clock, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{db: db, chartID: chartID, clock: clock.OrSystem(clk), log: logger}
}

// LineInput is one posting of a candidate transaction, against an account code.
type LineInput struct {
	Account    string
	Debit      int64
	Credit     int64
	Reference  string
	Label      string
	Reconciled bool
}

// Candidate holds a proposed transaction before validation.
type Candidate struct {
	Type          model.TransactionType
	Date          time.Time
	Label         string
	Reference     string
	PaymentMethod string
	PaymentNumber string
	Notes         string
	CategoryID    int64
	CreatorID     int64
	Lines         []LineInput
}

// Simple builds the two-line form: amount debited to debit and credited to credit.
func Simple(date time.Time, label string, amount int64, debit, credit string) Candidate {
	return Candidate{
		Type:  model.TransactionAdvanced,
		Date:  date,
		Label: label,
		Lines: []LineInput{
			{Account: debit, Debit: amount},
			{Account: credit, Credit: amount},
		},
	}
}

// Add validates c and records it, returning the new transaction ID.
// The fiscal year is resolved from the date: a closed year fails with
// model.ErrClosedPeriod and no covering year leaves the transaction year-less.
func (s *Service) Add(ctx context.Context, c Candidate) (int64, error) {
	var id int64
	err := s.db.Tx(ctx, func(q store.Querier) error {
		t, err := s.prepare(ctx, q, c)
		if err != nil {
			return err
		}

		year, ok, err := store.YearCovering(ctx, q, t.Date)
		if err != nil {
			return err
		}
		if ok {
			if year.Closed {
				return fmt.Errorf("%s is in %s: %w", t.Date.Format(model.DateFormat), year.Label, model.ErrClosedPeriod)
			}
			t.YearID = year.ID
		}

		id, err = store.InsertTransaction(ctx, q, t)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.log.Debug("transaction added", "id", id, "label", c.Label, "lines", len(c.Lines))
	return id, nil
}

// Edit re-validates c and replaces transaction id with it. A transaction whose
// stored year is closed can never be edited, whatever c contains. The year
// assignment is kept, so the new date must stay inside it.
func (s *Service) Edit(ctx context.Context, id int64, c Candidate) error {
	err := s.db.Tx(ctx, func(q store.Querier) error {
		existing, year, err := s.writable(ctx, q, id)
		if err != nil {
			return err
		}

		t, err := s.prepare(ctx, q, c)
		if err != nil {
			return err
		}

		if existing.YearID != 0 {
			if !year.Contains(t.Date) {
				return model.Invalid("date", "date %s is outside fiscal year %s", t.Date.Format(model.DateFormat), year.Label)
			}
		} else {
			covering, ok, err := store.YearCovering(ctx, q, t.Date)
			if err != nil {
				return err
			}
			if ok && covering.Closed {
				return fmt.Errorf("%s is in %s: %w", t.Date.Format(model.DateFormat), covering.Label, model.ErrClosedPeriod)
			}
		}

		t.ID = id
		t.YearID = existing.YearID
		return store.UpdateTransaction(ctx, q, t)
	})
	if err != nil {
		return err
	}

	s.log.Debug("transaction edited", "id", id)
	return nil
}

// Delete removes transaction id and its lines.
func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.db.Tx(ctx, func(q store.Querier) error {
		if _, _, err := s.writable(ctx, q, id); err != nil {
			return err
		}
		return store.DeleteTransaction(ctx, q, id)
	})
	if err != nil {
		return err
	}

	s.log.Debug("transaction deleted", "id", id)
	return nil
}

// Reverse records the mirror image of transaction id dated date, swapping
// debits and credits. It is how a closed year's entries are corrected.
func (s *Service) Reverse(ctx context.Context, id int64, date time.Time) (int64, error) {
	orig, err := s.Get(ctx, id)
	if err != nil {
		return 0, err
	}

	c := Candidate{
		Type:       orig.Type,
		Date:       date,
		Label:      fmt.Sprintf("Reversal of #%d: %s", orig.ID, orig.Label),
		Reference:  orig.Reference,
		CategoryID: orig.CategoryID,
		CreatorID:  orig.CreatorID,
	}
	for _, l := range orig.Lines {
		c.Lines = append(c.Lines, LineInput{
			Account:   l.AccountCode,
			Debit:     l.Credit,
			Credit:    l.Debit,
			Reference: l.Reference,
			Label:     l.Label,
		})
	}
	return s.Add(ctx, c)
}

// Reconcile flags a line as matched against a bank statement, or clears the flag.
func (s *Service) Reconcile(ctx context.Context, lineID int64, reconciled bool) error {
	return s.db.Tx(ctx, func(q store.Querier) error {
		l, err := store.GetLine(ctx, q, lineID)
		if err != nil {
			return err
		}
		if _, _, err := s.writable(ctx, q, l.TransactionID); err != nil {
			return err
		}
		return store.SetReconciled(ctx, q, lineID, reconciled)
	})
}

// Get returns a transaction with its lines, or model.ErrNotFound.
func (s *Service) Get(ctx context.Context, id int64) (model.Transaction, error) {
	return store.GetTransaction(ctx, s.db.Q(), id)
}

// List returns the journal of a year in date order; yearID 0 lists year-less transactions.
func (s *Service) List(ctx context.Context, yearID int64) ([]model.Transaction, error) {
	return store.ListTransactions(ctx, s.db.Q(), store.Where().Year("t.id_year", yearID))
}

// ListBetween returns the transactions dated within [start, end] by calendar
// day, whatever their fiscal year.
func (s *Service) ListBetween(ctx context.Context, start, end time.Time) ([]model.Transaction, error) {
	start, end = model.Day(start), model.Day(end)
	if end.Before(start) {
		return nil, model.Invalid("date", "end date %s is before start date %s",
			end.Format(model.DateFormat), start.Format(model.DateFormat))
	}
	return store.ListTransactions(ctx, s.db.Q(), store.Where().Between("t.date", start, end))
}

// Balance returns Σcredit − Σdebit over lines whose account code starts with
// prefix, restricted to yearID. When yearID is 0 the year covering the
// clock's current date is used, open or closed, or year-less transactions if
// no year covers it.
func (s *Service) Balance(ctx context.Context, prefix string, yearID int64) (int64, error) {
	q := s.db.Q()
	if yearID == 0 {
		year, ok, err := store.YearCovering(ctx, q, s.clock.Now())
		if err != nil {
			return 0, err
		}
		if ok {
			yearID = year.ID
		}
	}

	return store.SumBalance(ctx, q, store.Where().
		Eq("a.id_chart", s.chartID).
		Prefix("a.code", model.NormalizeCode(prefix)).
		Year("t.id_year", yearID))
}

// CreateCategory adds a transaction category and returns its ID.
func (s *Service) CreateCategory(ctx context.Context, label string) (int64, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return 0, model.Invalid("label", "category label is required")
	}
	return store.InsertCategory(ctx, s.db.Q(), label)
}

// ListCategories returns all categories.
func (s *Service) ListCategories(ctx context.Context) ([]model.Category, error) {
	return store.ListCategories(ctx, s.db.Q())
}

// PaymentMethods returns the recognised payment methods.
func (s *Service) PaymentMethods(ctx context.Context) ([]model.PaymentMethod, error) {
	return store.ListPaymentMethods(ctx, s.db.Q())
}

// writable loads transaction id and fails with model.ErrClosedPeriod when its
// stored year is closed.
func (s *Service) writable(ctx context.Context, q store.Querier, id int64) (model.Transaction, model.FiscalYear, error) {
	t, err := store.GetTransaction(ctx, q, id)
	if err != nil {
		return t, model.FiscalYear{}, err
	}
	if t.YearID == 0 {
		return t, model.FiscalYear{}, nil
	}

	year, err := store.GetYear(ctx, q, t.YearID)
	if err != nil {
		return t, year, err
	}
	if year.Closed {
		return t, year, fmt.Errorf("transaction %d belongs to %s: %w", id, year.Label, model.ErrClosedPeriod)
	}
	return t, year, nil
}

// prepare validates c in order (label, line amounts, payment method,
// accounts, category, balance) and returns the transaction to store.
func (s *Service) prepare(ctx context.Context, q store.Querier, c Candidate) (model.Transaction, error) {
	t := model.Transaction{
		Type:          c.Type,
		Date:          model.Day(c.Date),
		Label:         strings.TrimSpace(c.Label),
		Reference:     strings.TrimSpace(c.Reference),
		PaymentMethod: strings.ToUpper(strings.TrimSpace(c.PaymentMethod)),
		PaymentNumber: strings.TrimSpace(c.PaymentNumber),
		Notes:         strings.TrimSpace(c.Notes),
		CategoryID:    c.CategoryID,
		CreatorID:     c.CreatorID,
	}

	if t.Label == "" {
		return t, model.Invalid("label", "label is required")
	}
	if t.Type == "" {
		t.Type = model.TransactionAdvanced
	}
	if !t.Type.Valid() {
		return t, model.Invalid("type", "unknown transaction type %q", c.Type)
	}
	if c.Date.IsZero() {
		return t, model.Invalid("date", "date is required")
	}

	if len(c.Lines) < 2 {
		return t, fmt.Errorf("%w: a transaction needs at least two lines", model.ErrUnbalancedTransaction)
	}
	for i, in := range c.Lines {
		l := model.Line{AccountCode: model.NormalizeCode(in.Account), Debit: in.Debit, Credit: in.Credit}
		if err := CheckLine(l); err != nil {
			return t, fmt.Errorf("line %d: %w", i+1, err)
		}
	}

	if t.PaymentMethod != "" {
		ok, err := store.PaymentMethodExists(ctx, q, t.PaymentMethod)
		if err != nil {
			return t, err
		}
		if !ok {
			return t, model.Invalid("payment_method", "unknown payment method %q", t.PaymentMethod)
		}
	}
	if t.PaymentMethod != model.PaymentCheck {
		t.PaymentNumber = ""
	}

	for _, in := range c.Lines {
		code := model.NormalizeCode(in.Account)
		acct, err := store.AccountByCode(ctx, q, s.chartID, code)
		if err != nil {
			return t, err
		}
		t.Lines = append(t.Lines, model.Line{
			AccountID:   acct.ID,
			AccountCode: acct.Code,
			Debit:       in.Debit,
			Credit:      in.Credit,
			Reference:   strings.TrimSpace(in.Reference),
			Label:       strings.TrimSpace(in.Label),
			Reconciled:  in.Reconciled,
		})
	}

	if t.CategoryID != 0 {
		ok, err := store.CategoryExists(ctx, q, t.CategoryID)
		if err != nil {
			return t, err
		}
		if !ok {
			return t, fmt.Errorf("category %d: %w", t.CategoryID, model.ErrCategoryNotFound)
		}
	}

	if err := CheckLines(t.Lines); err != nil {
		return t, err
	}
	return t, nil
}
