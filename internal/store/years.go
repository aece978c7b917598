package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cleared-dev/compta/internal/model"
)

const yearColumns = `id, id_chart, label, start_date, end_date, closed, closing_date`

// InsertYear creates a fiscal year and returns its ID.
func InsertYear(ctx context.Context, q Querier, y model.FiscalYear) (int64, error) {
	res, err := q.ExecContext(ctx, `
		INSERT INTO acc_years (id_chart, label, start_date, end_date) VALUES (?, ?, ?, ?)`,
		y.ChartID, y.Label, formatDate(y.Start), formatDate(y.End))
	if err != nil {
		return 0, fmt.Errorf("inserting year: %w", err)
	}
	return res.LastInsertId()
}

// GetYear returns a fiscal year by ID, or model.ErrNotFound.
func GetYear(ctx context.Context, q Querier, id int64) (model.FiscalYear, error) {
	years, err := ListYears(ctx, q, Where().Eq("id", id))
	if err != nil {
		return model.FiscalYear{}, err
	}
	if len(years) == 0 {
		return model.FiscalYear{}, fmt.Errorf("fiscal year %d: %w", id, model.ErrNotFound)
	}
	return years[0], nil
}

// ListYears returns fiscal years matching f, most recent first.
func ListYears(ctx context.Context, q Querier, f *Filter) ([]model.FiscalYear, error) {
	where, args := f.SQL()
	rows, err := q.QueryContext(ctx, `SELECT `+yearColumns+` FROM acc_years`+where+` ORDER BY end_date DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("listing years: %w", err)
	}
	defer rows.Close()

	var years []model.FiscalYear
	for rows.Next() {
		y, err := scanYear(rows)
		if err != nil {
			return nil, err
		}
		years = append(years, y)
	}
	return years, rows.Err()
}

func scanYear(rows *sql.Rows) (model.FiscalYear, error) {
	var y model.FiscalYear
	var start, end string
	var closing sql.NullString
	if err := rows.Scan(&y.ID, &y.ChartID, &y.Label, &start, &end, &y.Closed, &closing); err != nil {
		return y, fmt.Errorf("scanning year: %w", err)
	}

	var err error
	if y.Start, err = parseDate(start); err != nil {
		return y, fmt.Errorf("year %d start date: %w", y.ID, err)
	}
	if y.End, err = parseDate(end); err != nil {
		return y, fmt.Errorf("year %d end date: %w", y.ID, err)
	}
	if closing.Valid {
		if y.ClosingDate, err = parseDate(closing.String); err != nil {
			return y, fmt.Errorf("year %d closing date: %w", y.ID, err)
		}
	}
	return y, nil
}

// YearCovering returns the year whose range contains date, open or closed.
// ok is false when no year covers it.
func YearCovering(ctx context.Context, q Querier, date time.Time) (y model.FiscalYear, ok bool, err error) {
	d := formatDate(date)
	years, err := ListYears(ctx, q, Where().Cmp("start_date", "<=", d).Cmp("end_date", ">=", d))
	if err != nil {
		return model.FiscalYear{}, false, err
	}
	if len(years) == 0 {
		return model.FiscalYear{}, false, nil
	}
	return years[0], true, nil
}

// PreviousClosedYear returns the closed year ending last before y starts.
func PreviousClosedYear(ctx context.Context, q Querier, y model.FiscalYear) (prev model.FiscalYear, ok bool, err error) {
	years, err := ListYears(ctx, q, Where().
		Eq("closed", 1).
		Eq("id_chart", y.ChartID).
		Cmp("end_date", "<", formatDate(y.Start)))
	if err != nil {
		return model.FiscalYear{}, false, err
	}
	if len(years) == 0 {
		return model.FiscalYear{}, false, nil
	}
	return years[0], true, nil
}

// MarkYearClosed flags a year closed at closingDate.
func MarkYearClosed(ctx context.Context, q Querier, id int64, closingDate time.Time) error {
	_, err := q.ExecContext(ctx, `UPDATE acc_years SET closed = 1, closing_date = ? WHERE id = ? AND closed = 0`,
		formatDate(closingDate), id)
	if err != nil {
		return fmt.Errorf("closing year %d: %w", id, err)
	}
	return nil
}

// DeleteYear removes a fiscal year.
func DeleteYear(ctx context.Context, q Querier, id int64) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM acc_years WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting year %d: %w", id, err)
	}
	return nil
}

// CountTransactions returns the number of transactions attributed to a year.
func CountTransactions(ctx context.Context, q Querier, yearID int64) (int, error) {
	var n int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM acc_transactions WHERE id_year = ?`, yearID).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting transactions: %w", err)
	}
	return n, nil
}
