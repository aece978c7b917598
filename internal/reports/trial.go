package reports

import (
	"context"

	"github.com/cleared-dev/compta/internal/model"
	"github.com/cleared-dev/compta/internal/store"
)

// TrialRow is one account of a trial balance.
type TrialRow struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Opening int64  `json:"opening"`
	Debit   int64  `json:"debit"`
	Credit  int64  `json:"credit"`
	Closing int64  `json:"closing"`
}

// TrialBalance lists every account with an opening balance or movements in a year.
type TrialBalance struct {
	Year     model.FiscalYear `json:"year"`
	Rows     []TrialRow       `json:"rows"`
	Opening  int64            `json:"opening"`
	Debit    int64            `json:"debit"`
	Credit   int64            `json:"credit"`
	Closing  int64            `json:"closing"`
	Balanced bool             `json:"balanced"`
}

// TrialBalance computes, per account, the balance carried in from the
// previous closed year, the year's debits and credits, and the closing balance.
func (s *Service) TrialBalance(ctx context.Context, yearID int64) (*TrialBalance, error) {
	q := s.db.Q()
	y, err := store.GetYear(ctx, q, yearID)
	if err != nil {
		return nil, err
	}

	accts, err := store.ListAccounts(ctx, q, store.Where().Eq("a.id_chart", s.chartID))
	if err != nil {
		return nil, err
	}

	opening := make(map[int64]int64)
	prev, ok, err := store.PreviousClosedYear(ctx, q, y)
	if err != nil {
		return nil, err
	}
	if ok {
		seeds, err := store.ListSeeds(ctx, q, prev.ID, "")
		if err != nil {
			return nil, err
		}
		for _, sd := range seeds {
			opening[sd.AccountID] = sd.Balance
		}
	}

	totals, err := store.AccountTotals(ctx, q, store.Where().Eq("a.id_chart", s.chartID).Eq("t.id_year", yearID))
	if err != nil {
		return nil, err
	}
	moves := make(map[int64]store.Totals, len(totals))
	for _, t := range totals {
		moves[t.AccountID] = t
	}

	tb := &TrialBalance{Year: y}
	for _, a := range accts {
		m, moved := moves[a.ID]
		open, carried := opening[a.ID]
		if !moved && !carried {
			continue
		}
		row := TrialRow{
			Code:    a.Code,
			Name:    a.Name,
			Opening: open,
			Debit:   m.Debit,
			Credit:  m.Credit,
			Closing: open + m.Balance(),
		}
		tb.Rows = append(tb.Rows, row)
		tb.Opening += row.Opening
		tb.Debit += row.Debit
		tb.Credit += row.Credit
		tb.Closing += row.Closing
	}
	tb.Balanced = tb.Debit == tb.Credit && tb.Opening == 0 && tb.Closing == 0

	s.log.Debug("trial balance built", "year", yearID, "accounts", len(tb.Rows), "balanced", tb.Balanced)
	return tb, nil
}
