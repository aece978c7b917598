package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cleared-dev/compta/internal/model"
)

const transactionColumns = `t.id, t.type, t.date, t.label, t.reference, t.payment_method, t.payment_number,
	t.notes, t.id_year, t.id_category, t.id_creator`

const lineColumns = `l.id, l.id_transaction, l.id_account, a.code, l.credit, l.debit, l.reference, l.label, l.reconciled`

// InsertTransaction writes a transaction and its lines, returning the new ID.
// Lines must carry a resolved AccountID.
func InsertTransaction(ctx context.Context, q Querier, t model.Transaction) (int64, error) {
	res, err := q.ExecContext(ctx, `
		INSERT INTO acc_transactions (type, date, label, reference, payment_method, payment_number,
			notes, id_year, id_category, id_creator)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(t.Type), formatDate(t.Date), t.Label, t.Reference, nullString(t.PaymentMethod), t.PaymentNumber,
		t.Notes, nullID(t.YearID), nullID(t.CategoryID), nullID(t.CreatorID))
	if err != nil {
		return 0, fmt.Errorf("inserting transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading transaction ID: %w", err)
	}

	if err := insertLines(ctx, q, id, t.Lines); err != nil {
		return 0, err
	}
	return id, nil
}

// UpdateTransaction rewrites a transaction's fields and replaces all its lines.
// The year assignment is left untouched.
func UpdateTransaction(ctx context.Context, q Querier, t model.Transaction) error {
	_, err := q.ExecContext(ctx, `
		UPDATE acc_transactions SET type = ?, date = ?, label = ?, reference = ?, payment_method = ?,
			payment_number = ?, notes = ?, id_category = ?, id_creator = ?
		WHERE id = ?`,
		string(t.Type), formatDate(t.Date), t.Label, t.Reference, nullString(t.PaymentMethod),
		t.PaymentNumber, t.Notes, nullID(t.CategoryID), nullID(t.CreatorID), t.ID)
	if err != nil {
		return fmt.Errorf("updating transaction %d: %w", t.ID, err)
	}

	if _, err := q.ExecContext(ctx, `DELETE FROM acc_transactions_lines WHERE id_transaction = ?`, t.ID); err != nil {
		return fmt.Errorf("deleting lines of transaction %d: %w", t.ID, err)
	}
	return insertLines(ctx, q, t.ID, t.Lines)
}

func insertLines(ctx context.Context, q Querier, transactionID int64, lines []model.Line) error {
	for i, l := range lines {
		_, err := q.ExecContext(ctx, `
			INSERT INTO acc_transactions_lines (id_transaction, id_account, credit, debit, reference, label, reconciled)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			transactionID, l.AccountID, l.Credit, l.Debit, l.Reference, l.Label, l.Reconciled)
		if err != nil {
			return fmt.Errorf("inserting line %d: %w", i+1, err)
		}
	}
	return nil
}

// DeleteTransaction removes a transaction; its lines cascade.
func DeleteTransaction(ctx context.Context, q Querier, id int64) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM acc_transactions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting transaction %d: %w", id, err)
	}
	return nil
}

// GetTransaction returns a transaction with its lines, or model.ErrNotFound.
func GetTransaction(ctx context.Context, q Querier, id int64) (model.Transaction, error) {
	txs, err := ListTransactions(ctx, q, Where().Eq("t.id", id))
	if err != nil {
		return model.Transaction{}, err
	}
	if len(txs) == 0 {
		return model.Transaction{}, fmt.Errorf("transaction %d: %w", id, model.ErrNotFound)
	}
	return txs[0], nil
}

// ListTransactions returns transactions matching f with their lines, by date then ID.
// f may only reference transaction columns (t.*).
func ListTransactions(ctx context.Context, q Querier, f *Filter) ([]model.Transaction, error) {
	where, args := f.SQL()
	rows, err := q.QueryContext(ctx, `SELECT `+transactionColumns+` FROM acc_transactions t`+where+` ORDER BY t.date, t.id`, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	var txs []model.Transaction
	index := make(map[int64]int)
	for rows.Next() {
		var t model.Transaction
		var typ, date string
		var method sql.NullString
		var year, category, creator sql.NullInt64
		if err := rows.Scan(&t.ID, &typ, &date, &t.Label, &t.Reference, &method, &t.PaymentNumber,
			&t.Notes, &year, &category, &creator); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		if t.Date, err = parseDate(date); err != nil {
			rows.Close()
			return nil, fmt.Errorf("transaction %d date: %w", t.ID, err)
		}
		t.Type = model.TransactionType(typ)
		t.PaymentMethod = method.String
		t.YearID = year.Int64
		t.CategoryID = category.Int64
		t.CreatorID = creator.Int64
		index[t.ID] = len(txs)
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	rows.Close()

	if len(txs) == 0 {
		return nil, nil
	}

	// ListLines joins t, so the same filter selects the lines of these transactions.
	lines, err := ListLines(ctx, q, f)
	if err != nil {
		return nil, err
	}
	for _, l := range lines {
		i := index[l.TransactionID]
		txs[i].Lines = append(txs[i].Lines, l)
	}
	return txs, nil
}

// ListLines returns lines matching f, in insertion order.
// Filters may reference l (lines), a (accounts) and t (transactions).
func ListLines(ctx context.Context, q Querier, f *Filter) ([]model.Line, error) {
	where, args := f.SQL()
	rows, err := q.QueryContext(ctx, `SELECT `+lineColumns+`
		FROM acc_transactions_lines l
		JOIN acc_accounts a ON a.id = l.id_account
		JOIN acc_transactions t ON t.id = l.id_transaction`+where+`
		ORDER BY l.id_transaction, l.id`, args...)
	if err != nil {
		return nil, fmt.Errorf("listing lines: %w", err)
	}
	defer rows.Close()

	var lines []model.Line
	for rows.Next() {
		var l model.Line
		if err := rows.Scan(&l.ID, &l.TransactionID, &l.AccountID, &l.AccountCode, &l.Credit, &l.Debit,
			&l.Reference, &l.Label, &l.Reconciled); err != nil {
			return nil, fmt.Errorf("scanning line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// GetLine returns a single line, or model.ErrNotFound.
func GetLine(ctx context.Context, q Querier, id int64) (model.Line, error) {
	lines, err := ListLines(ctx, q, Where().Eq("l.id", id))
	if err != nil {
		return model.Line{}, err
	}
	if len(lines) == 0 {
		return model.Line{}, fmt.Errorf("line %d: %w", id, model.ErrNotFound)
	}
	return lines[0], nil
}

// SetReconciled flags a line reconciled or not.
func SetReconciled(ctx context.Context, q Querier, lineID int64, reconciled bool) error {
	if _, err := q.ExecContext(ctx, `UPDATE acc_transactions_lines SET reconciled = ? WHERE id = ?`, reconciled, lineID); err != nil {
		return fmt.Errorf("reconciling line %d: %w", lineID, err)
	}
	return nil
}

func nullID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
