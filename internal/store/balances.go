package store

import (
	"context"
	"fmt"
)

// Totals aggregates the lines of one account.
type Totals struct {
	AccountID int64
	Code      string
	Debit     int64
	Credit    int64
}

// Balance returns credit - debit.
func (t Totals) Balance() int64 {
	return t.Credit - t.Debit
}

// Seed is a balance carried forward by a closed year.
type Seed struct {
	AccountID int64  `json:"id_account"`
	Code      string `json:"code"`
	Balance   int64  `json:"balance"`
}

const linesJoin = `
	FROM acc_transactions_lines l
	JOIN acc_accounts a ON a.id = l.id_account
	JOIN acc_transactions t ON t.id = l.id_transaction`

// SumBalance returns Σcredit - Σdebit over lines matching f.
func SumBalance(ctx context.Context, q Querier, f *Filter) (int64, error) {
	where, args := f.SQL()
	var balance int64
	err := q.QueryRowContext(ctx, `SELECT COALESCE(SUM(l.credit), 0) - COALESCE(SUM(l.debit), 0)`+linesJoin+where, args...).
		Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("summing balance: %w", err)
	}
	return balance, nil
}

// AccountTotals returns per-account debit and credit sums over lines matching f, by code.
func AccountTotals(ctx context.Context, q Querier, f *Filter) ([]Totals, error) {
	where, args := f.SQL()
	rows, err := q.QueryContext(ctx, `SELECT l.id_account, a.code, COALESCE(SUM(l.debit), 0), COALESCE(SUM(l.credit), 0)`+
		linesJoin+where+` GROUP BY l.id_account, a.code ORDER BY a.code COLLATE NOCASE`, args...)
	if err != nil {
		return nil, fmt.Errorf("aggregating account totals: %w", err)
	}
	defer rows.Close()

	var out []Totals
	for rows.Next() {
		var t Totals
		if err := rows.Scan(&t.AccountID, &t.Code, &t.Debit, &t.Credit); err != nil {
			return nil, fmt.Errorf("scanning account totals: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// InsertSeed stores a balance carried forward by closing yearID.
func InsertSeed(ctx context.Context, q Querier, yearID int64, s Seed) error {
	_, err := q.ExecContext(ctx, `INSERT INTO acc_opening_balances (id_year, id_account, balance) VALUES (?, ?, ?)`,
		yearID, s.AccountID, s.Balance)
	if err != nil {
		return fmt.Errorf("inserting carried balance for %s: %w", s.Code, err)
	}
	return nil
}

// ListSeeds returns the balances carried forward by closing yearID whose
// account code starts with prefix (all when prefix is empty).
func ListSeeds(ctx context.Context, q Querier, yearID int64, prefix string) ([]Seed, error) {
	where, args := Where().Eq("o.id_year", yearID).Prefix("a.code", prefix).SQL()
	rows, err := q.QueryContext(ctx, `SELECT o.id_account, a.code, o.balance
		FROM acc_opening_balances o
		JOIN acc_accounts a ON a.id = o.id_account`+where+`
		ORDER BY a.code COLLATE NOCASE`, args...)
	if err != nil {
		return nil, fmt.Errorf("listing carried balances: %w", err)
	}
	defer rows.Close()

	var out []Seed
	for rows.Next() {
		var s Seed
		if err := rows.Scan(&s.AccountID, &s.Code, &s.Balance); err != nil {
			return nil, fmt.Errorf("scanning carried balance: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
