package store

import (
	"context"
	"fmt"

	"github.com/cleared-dev/compta/internal/model"
)

// InsertCategory creates a category and returns its ID.
func InsertCategory(ctx context.Context, q Querier, label string) (int64, error) {
	res, err := q.ExecContext(ctx, `INSERT INTO acc_categories (label) VALUES (?)`, label)
	if err != nil {
		return 0, fmt.Errorf("inserting category: %w", err)
	}
	return res.LastInsertId()
}

// ListCategories returns all categories by label.
func ListCategories(ctx context.Context, q Querier) ([]model.Category, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, label FROM acc_categories ORDER BY label COLLATE NOCASE`)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var out []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Label); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CategoryExists reports whether a category ID exists.
func CategoryExists(ctx context.Context, q Querier, id int64) (bool, error) {
	var n int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM acc_categories WHERE id = ?`, id).Scan(&n); err != nil {
		return false, fmt.Errorf("checking category: %w", err)
	}
	return n > 0, nil
}

// PaymentMethodExists reports whether a payment method code is recognised.
func PaymentMethodExists(ctx context.Context, q Querier, code string) (bool, error) {
	var n int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM acc_payment_methods WHERE code = ?`, code).Scan(&n); err != nil {
		return false, fmt.Errorf("checking payment method: %w", err)
	}
	return n > 0, nil
}

// ListPaymentMethods returns all payment methods by code.
func ListPaymentMethods(ctx context.Context, q Querier) ([]model.PaymentMethod, error) {
	rows, err := q.QueryContext(ctx, `SELECT code, label FROM acc_payment_methods ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("listing payment methods: %w", err)
	}
	defer rows.Close()

	var out []model.PaymentMethod
	for rows.Next() {
		var m model.PaymentMethod
		if err := rows.Scan(&m.Code, &m.Label); err != nil {
			return nil, fmt.Errorf("scanning payment method: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
