package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cleared-dev/compta/internal/model"
)

const accountColumns = `a.id, a.id_chart, a.code, a.label, a.description, a.type, a.type_parent`

// InsertChart creates a chart of accounts and returns its ID.
func InsertChart(ctx context.Context, q Querier, c model.Chart) (int64, error) {
	res, err := q.ExecContext(ctx, `INSERT INTO acc_charts (label, country) VALUES (?, ?)`, c.Label, c.Country)
	if err != nil {
		return 0, fmt.Errorf("inserting chart: %w", err)
	}
	return res.LastInsertId()
}

// GetChart returns a chart by ID.
func GetChart(ctx context.Context, q Querier, id int64) (model.Chart, error) {
	var c model.Chart
	err := q.QueryRowContext(ctx, `SELECT id, label, country FROM acc_charts WHERE id = ?`, id).
		Scan(&c.ID, &c.Label, &c.Country)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Chart{}, fmt.Errorf("chart %d: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return model.Chart{}, fmt.Errorf("getting chart: %w", err)
	}
	return c, nil
}

// InsertAccount creates an account and returns its ID.
func InsertAccount(ctx context.Context, q Querier, a model.Account) (int64, error) {
	res, err := q.ExecContext(ctx, `
		INSERT INTO acc_accounts (id_chart, code, label, description, type, type_parent)
		VALUES (?, ?, ?, ?, ?, ?)`,
		a.ChartID, a.Code, a.Name, a.Description, int(a.Type), a.TypeParent)
	if err != nil {
		return 0, fmt.Errorf("inserting account %s: %w", a.Code, err)
	}
	return res.LastInsertId()
}

// UpdateAccount updates name, description and type of an account.
func UpdateAccount(ctx context.Context, q Querier, a model.Account) error {
	_, err := q.ExecContext(ctx, `
		UPDATE acc_accounts SET label = ?, description = ?, type = ?, type_parent = ?
		WHERE id = ?`,
		a.Name, a.Description, int(a.Type), a.TypeParent, a.ID)
	if err != nil {
		return fmt.Errorf("updating account %s: %w", a.Code, err)
	}
	return nil
}

// DeleteAccount removes an account.
func DeleteAccount(ctx context.Context, q Querier, id int64) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM acc_accounts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting account: %w", err)
	}
	return nil
}

// AccountByCode returns the account with code in chart, or model.ErrAccountNotFound.
func AccountByCode(ctx context.Context, q Querier, chartID int64, code string) (model.Account, error) {
	accts, err := ListAccounts(ctx, q, Where().Eq("a.id_chart", chartID).Eq("a.code", code))
	if err != nil {
		return model.Account{}, err
	}
	if len(accts) == 0 {
		return model.Account{}, fmt.Errorf("account %q: %w", code, model.ErrAccountNotFound)
	}
	return accts[0], nil
}

// ListAccounts returns accounts matching f, ordered by case-insensitive code.
func ListAccounts(ctx context.Context, q Querier, f *Filter) ([]model.Account, error) {
	return listAccounts(ctx, q, f, "a.code COLLATE NOCASE")
}

// ListAccountsByType returns accounts matching f, ordered by type then code.
func ListAccountsByType(ctx context.Context, q Querier, f *Filter) ([]model.Account, error) {
	return listAccounts(ctx, q, f, "a.type, a.code COLLATE NOCASE")
}

func listAccounts(ctx context.Context, q Querier, f *Filter, order string) ([]model.Account, error) {
	where, args := f.SQL()
	rows, err := q.QueryContext(ctx, `SELECT `+accountColumns+` FROM acc_accounts a`+where+` ORDER BY `+order, args...)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer rows.Close()

	var accts []model.Account
	for rows.Next() {
		var a model.Account
		var typ int
		if err := rows.Scan(&a.ID, &a.ChartID, &a.Code, &a.Name, &a.Description, &typ, &a.TypeParent); err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}
		a.Type = model.AccountType(typ)
		accts = append(accts, a)
	}
	return accts, rows.Err()
}

// AccountReferenced reports whether any line references the account.
func AccountReferenced(ctx context.Context, q Querier, accountID int64) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM acc_transactions_lines WHERE id_account = ?`, accountID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking account references: %w", err)
	}
	return n > 0, nil
}

// AccountInClosedYear reports whether a line in a closed year references the account.
func AccountInClosedYear(ctx context.Context, q Querier, accountID int64) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM acc_transactions_lines l
		JOIN acc_transactions t ON t.id = l.id_transaction
		JOIN acc_years y ON y.id = t.id_year
		WHERE l.id_account = ? AND y.closed = 1`, accountID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking closed references: %w", err)
	}
	return n > 0, nil
}
