// Package years manages fiscal years and their closing.
package years

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cleared-dev/compta/internal/clock"
	"github.com/cleared-dev/compta/internal/ledger"
	"github.com/cleared-dev/compta/internal/model"
	"github.com/cleared-dev/compta/internal/store"
)

// Service provides the fiscal year lifecycle: Open → Closed.
type Service struct {
	db    *store.DB
	clock clock.Clock
	log   *slog.Logger
}

// NewService creates a fiscal year Service. A nil clock uses the wall clock
// and a nil logger uses slog.Default().
func NewService(db *store.DB, clk clock.Clock, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{db: db, clock: clock.OrSystem(clk), log: logger}
}

// Create opens a new fiscal year. Years never overlap.
func (s *Service) Create(ctx context.Context, chartID int64, label string, start, end time.Time) (int64, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return 0, model.Invalid("label", "fiscal year label is required")
	}
	if start.IsZero() || end.IsZero() {
		return 0, model.Invalid("start_date", "start and end dates are required")
	}
	start, end = model.Day(start), model.Day(end)
	if start.After(end) {
		return 0, model.Invalid("end_date", "end date %s is before start date %s",
			end.Format(model.DateFormat), start.Format(model.DateFormat))
	}

	var id int64
	err := s.db.Tx(ctx, func(q store.Querier) error {
		if _, err := store.GetChart(ctx, q, chartID); err != nil {
			return err
		}

		existing, err := store.ListYears(ctx, q, nil)
		if err != nil {
			return err
		}
		for _, y := range existing {
			if y.Overlaps(start, end) {
				return model.Invalid("start_date", "dates overlap fiscal year %s", y.Label)
			}
		}

		id, err = store.InsertYear(ctx, q, model.FiscalYear{ChartID: chartID, Label: label, Start: start, End: end})
		return err
	})
	if err != nil {
		return 0, err
	}

	s.log.Debug("fiscal year created", "id", id, "label", label)
	return id, nil
}

// Get returns a fiscal year, or model.ErrNotFound.
func (s *Service) Get(ctx context.Context, id int64) (model.FiscalYear, error) {
	return store.GetYear(ctx, s.db.Q(), id)
}

// List returns the fiscal years of a chart, most recent first.
func (s *Service) List(ctx context.Context, chartID int64) ([]model.FiscalYear, error) {
	return store.ListYears(ctx, s.db.Q(), store.Where().Eq("id_chart", chartID))
}

// ListClosedExcept returns the closed years of a chart other than id, the
// candidates for a statement comparison.
func (s *Service) ListClosedExcept(ctx context.Context, chartID, id int64) ([]model.FiscalYear, error) {
	return store.ListYears(ctx, s.db.Q(), store.Where().
		Eq("id_chart", chartID).
		Eq("closed", 1).
		Ne("id", id))
}

// Delete removes an open fiscal year that has no transactions.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.db.Tx(ctx, func(q store.Querier) error {
		y, err := store.GetYear(ctx, q, id)
		if err != nil {
			return err
		}
		if y.Closed {
			return fmt.Errorf("deleting %s: %w", y.Label, model.ErrClosedPeriod)
		}

		n, err := store.CountTransactions(ctx, q, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return model.Invalid("id_year", "fiscal year %s still has %d transactions", y.Label, n)
		}
		return store.DeleteYear(ctx, q, id)
	})
}

// ResolveCurrent returns the open year containing date. ok is false when no
// year covers date or the covering year is closed.
func (s *Service) ResolveCurrent(ctx context.Context, date time.Time) (y model.FiscalYear, ok bool, err error) {
	y, ok, err = store.YearCovering(ctx, s.db.Q(), date)
	if err != nil || !ok || y.Closed {
		return model.FiscalYear{}, false, err
	}
	return y, true, nil
}

// Now resolves the open year covering the clock's current date.
func (s *Service) Now(ctx context.Context) (model.FiscalYear, bool, error) {
	return s.ResolveCurrent(ctx, s.clock.Now())
}

// Close re-verifies every transaction of the year, carries each account's
// balance forward and marks the year closed, all in one transaction. If any
// transaction is unbalanced nothing changes and a model.UnbalancedYearError
// is returned.
func (s *Service) Close(ctx context.Context, id int64) error {
	var seeds int
	err := s.db.Tx(ctx, func(q store.Querier) error {
		y, err := store.GetYear(ctx, q, id)
		if err != nil {
			return err
		}
		if y.Closed {
			return fmt.Errorf("closing %s: %w", y.Label, model.ErrClosedPeriod)
		}

		txs, err := store.ListTransactions(ctx, q, store.Where().Eq("t.id_year", id))
		if err != nil {
			return err
		}
		var bad []int64
		for _, t := range txs {
			if !ledger.Balanced(t.Lines) {
				bad = append(bad, t.ID)
			}
		}
		if len(bad) > 0 {
			return model.UnbalancedYearError{YearID: id, TransactionIDs: bad}
		}

		totals, err := store.AccountTotals(ctx, q, store.Where().Eq("t.id_year", id))
		if err != nil {
			return err
		}
		for _, t := range totals {
			if t.Balance() == 0 {
				continue
			}
			if err := store.InsertSeed(ctx, q, id, store.Seed{AccountID: t.AccountID, Code: t.Code, Balance: t.Balance()}); err != nil {
				return err
			}
			seeds++
		}

		return store.MarkYearClosed(ctx, q, id, s.clock.Now())
	})

	var unbalanced model.UnbalancedYearError
	if errors.As(err, &unbalanced) {
		s.log.Error("fiscal year contains unbalanced transactions, closing aborted",
			"year", id, "transactions", unbalanced.TransactionIDs)
	}
	if err != nil {
		return err
	}

	s.log.Info("fiscal year closed", "year", id, "carried_accounts", seeds)
	return nil
}

// CarriedForward returns the balances seeded by closing a year.
func (s *Service) CarriedForward(ctx context.Context, closedYearID int64) ([]store.Seed, error) {
	return store.ListSeeds(ctx, s.db.Q(), closedYearID, "")
}

// OpeningBalance returns the balance carried into a year for accounts whose
// code starts with prefix: the seeds of the closed year immediately before it.
func (s *Service) OpeningBalance(ctx context.Context, yearID int64, prefix string) (int64, error) {
	q := s.db.Q()
	y, err := store.GetYear(ctx, q, yearID)
	if err != nil {
		return 0, err
	}

	prev, ok, err := store.PreviousClosedYear(ctx, q, y)
	if err != nil || !ok {
		return 0, err
	}

	seeds, err := store.ListSeeds(ctx, q, prev.ID, model.NormalizeCode(prefix))
	if err != nil {
		return 0, err
	}
	var total int64
	for _, sd := range seeds {
		total += sd.Balance
	}
	return total, nil
}
