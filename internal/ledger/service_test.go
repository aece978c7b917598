package ledger

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/compta/internal/clock"
	"github.com/cleared-dev/compta/internal/model"
	"github.com/cleared-dev/compta/internal/store"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

type fixture struct {
	db      *store.DB
	svc     *Service
	chartID int64
	year    int64
}

func setup(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()

	db, err := store.Open(filepath.Join(t.TempDir(), "compta.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	chartID, err := store.InsertChart(ctx, db.Q(), model.Chart{Label: "Plan comptable", Country: "FR"})
	require.NoError(t, err)

	for _, a := range []model.Account{
		{Code: "512", Name: "Banque", Type: model.TypeAsset},
		{Code: "512A", Name: "Banque bis", Type: model.TypeAsset},
		{Code: "530", Name: "Caisse", Type: model.TypeAsset},
		{Code: "606", Name: "Achats", Type: model.TypeExpense},
		{Code: "706", Name: "Prestations", Type: model.TypeRevenue},
		{Code: "756", Name: "Cotisations", Type: model.TypeRevenue},
	} {
		a.ChartID = chartID
		_, err := store.InsertAccount(ctx, db.Q(), a)
		require.NoError(t, err)
	}

	yearID, err := store.InsertYear(ctx, db.Q(), model.FiscalYear{
		ChartID: chartID, Label: "2025", Start: date(2025, 1, 1), End: date(2025, 12, 31),
	})
	require.NoError(t, err)

	svc := NewService(db, chartID, clock.Fixed(date(2025, 6, 15)), nil)
	return fixture{db: db, svc: svc, chartID: chartID, year: yearID}
}

func (f fixture) addYear(t *testing.T, label string, start, end time.Time) int64 {
	t.Helper()
	id, err := store.InsertYear(context.Background(), f.db.Q(), model.FiscalYear{
		ChartID: f.chartID, Label: label, Start: start, End: end,
	})
	require.NoError(t, err)
	return id
}

func (f fixture) close(t *testing.T, yearID int64) {
	t.Helper()
	require.NoError(t, store.MarkYearClosed(context.Background(), f.db.Q(), yearID, date(2026, 1, 15)))
}

func TestAdd_BalanceScenario(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	id, err := f.svc.Add(ctx, Simple(date(2025, 3, 1), "Prestation mars", 10000, "512", "706"))
	require.NoError(t, err)
	assert.NotZero(t, id)

	bank, err := f.svc.Balance(ctx, "512", f.year)
	require.NoError(t, err)
	assert.Equal(t, int64(-10000), bank)

	revenue, err := f.svc.Balance(ctx, "706", f.year)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), revenue)

	all, err := f.svc.Balance(ctx, "", f.year)
	require.NoError(t, err)
	assert.Zero(t, all, "a balanced ledger sums to zero")

	tx, err := f.svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, f.year, tx.YearID)
	assert.Equal(t, model.TransactionAdvanced, tx.Type)
	require.Len(t, tx.Lines, 2)
	debit, credit := tx.Totals()
	assert.Equal(t, debit, credit)
	for _, l := range tx.Lines {
		assert.NoError(t, CheckLine(l))
	}
}

func TestAdd_MultiLine(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Add(ctx, Candidate{
		Type:  model.TransactionRevenue,
		Date:  date(2025, 4, 2),
		Label: "Encaissement groupé",
		Lines: []LineInput{
			{Account: "512", Debit: 15000},
			{Account: "706", Credit: 10000},
			{Account: "756", Credit: 5000},
		},
	})
	require.NoError(t, err)

	revenue, err := f.svc.Balance(ctx, "7", f.year)
	require.NoError(t, err)
	assert.Equal(t, int64(15000), revenue)
}

func TestAdd_YearLess(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	id, err := f.svc.Add(ctx, Simple(date(2031, 2, 1), "Hors exercice", 2500, "606", "530"))
	require.NoError(t, err)

	tx, err := f.svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, tx.YearID)

	yearLess, err := f.svc.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, yearLess, 1)
	assert.Equal(t, id, yearLess[0].ID)

	inYear, err := f.svc.Balance(ctx, "606", f.year)
	require.NoError(t, err)
	assert.Zero(t, inYear)
}

func TestAdd_Validation(t *testing.T) {
	tests := []struct {
		name string
		c    Candidate
		want error
	}{
		{
			name: "missing label wins over bad account",
			c:    Simple(date(2025, 3, 1), "  ", 100, "999", "706"),
			want: model.ErrValidation,
		},
		{
			name: "missing date",
			c:    Simple(time.Time{}, "x", 100, "512", "706"),
			want: model.ErrValidation,
		},
		{
			name: "unknown type",
			c:    Candidate{Type: "gift", Date: date(2025, 3, 1), Label: "x", Lines: Simple(date(2025, 3, 1), "x", 1, "512", "706").Lines},
			want: model.ErrValidation,
		},
		{
			name: "degenerate line wins over bad account",
			c: Candidate{Date: date(2025, 3, 1), Label: "x", Lines: []LineInput{
				{Account: "999", Debit: 100, Credit: 100},
				{Account: "706", Credit: 100},
			}},
			want: model.ErrUnbalancedLine,
		},
		{
			name: "empty line",
			c: Candidate{Date: date(2025, 3, 1), Label: "x", Lines: []LineInput{
				{Account: "512"},
				{Account: "706", Credit: 100},
			}},
			want: model.ErrUnbalancedLine,
		},
		{
			name: "single line",
			c:    Candidate{Date: date(2025, 3, 1), Label: "x", Lines: []LineInput{{Account: "512", Debit: 1}}},
			want: model.ErrUnbalancedTransaction,
		},
		{
			name: "unknown payment method",
			c: func() Candidate {
				c := Simple(date(2025, 3, 1), "x", 100, "999", "706")
				c.PaymentMethod = "BTC"
				return c
			}(),
			want: model.ErrValidation,
		},
		{
			name: "unknown account",
			c:    Simple(date(2025, 3, 1), "x", 100, "999", "706"),
			want: model.ErrAccountNotFound,
		},
		{
			name: "unknown category",
			c: func() Candidate {
				c := Simple(date(2025, 3, 1), "x", 100, "512", "706")
				c.CategoryID = 42
				return c
			}(),
			want: model.ErrCategoryNotFound,
		},
		{
			name: "unbalanced",
			c: Candidate{Date: date(2025, 3, 1), Label: "x", Lines: []LineInput{
				{Account: "512", Debit: 10000},
				{Account: "706", Credit: 9999},
			}},
			want: model.ErrUnbalancedTransaction,
		},
		{
			name: "debits wrapping past int64",
			c: Candidate{Date: date(2025, 3, 1), Label: "x", Lines: []LineInput{
				{Account: "512", Debit: math.MaxInt64},
				{Account: "512A", Debit: math.MaxInt64},
				{Account: "530", Debit: 3},
				{Account: "706", Credit: 1},
			}},
			want: model.ErrUnbalancedLine,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)
			ctx := context.Background()

			_, err := f.svc.Add(ctx, tt.c)
			assert.ErrorIs(t, err, tt.want)

			txs, err := f.svc.List(ctx, f.year)
			require.NoError(t, err)
			assert.Empty(t, txs, "nothing is written on failure")
		})
	}
}

func TestAdd_ClosedYear(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.close(t, f.year)

	_, err := f.svc.Add(ctx, Simple(date(2025, 3, 1), "Trop tard", 100, "512", "706"))
	assert.ErrorIs(t, err, model.ErrClosedPeriod)
}

func TestAdd_PaymentMethod(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	card := Simple(date(2025, 3, 1), "Carte", 100, "606", "512")
	card.PaymentMethod = "CB"
	card.PaymentNumber = "0042"
	id, err := f.svc.Add(ctx, card)
	require.NoError(t, err)
	tx, err := f.svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "CB", tx.PaymentMethod)
	assert.Empty(t, tx.PaymentNumber, "check number is only kept for checks")

	check := Simple(date(2025, 3, 2), "Chèque", 100, "606", "512")
	check.PaymentMethod = "ch"
	check.PaymentNumber = "1234567"
	id, err = f.svc.Add(ctx, check)
	require.NoError(t, err)
	tx, err = f.svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentCheck, tx.PaymentMethod)
	assert.Equal(t, "1234567", tx.PaymentNumber)
}

func TestAdd_Category(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	catID, err := f.svc.CreateCategory(ctx, "Fête annuelle")
	require.NoError(t, err)

	c := Simple(date(2025, 3, 1), "Buvette", 3000, "512", "706")
	c.CategoryID = catID
	id, err := f.svc.Add(ctx, c)
	require.NoError(t, err)

	tx, err := f.svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, catID, tx.CategoryID)

	cats, err := f.svc.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, "Fête annuelle", cats[0].Label)

	_, err = f.svc.CreateCategory(ctx, " ")
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestEdit(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	id, err := f.svc.Add(ctx, Simple(date(2025, 3, 1), "Prestation", 10000, "512", "706"))
	require.NoError(t, err)

	err = f.svc.Edit(ctx, id, Simple(date(2025, 3, 5), "Prestation corrigée", 12000, "512", "756"))
	require.NoError(t, err)

	tx, err := f.svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Prestation corrigée", tx.Label)
	assert.Equal(t, date(2025, 3, 5), tx.Date)
	assert.Equal(t, f.year, tx.YearID)

	b706, err := f.svc.Balance(ctx, "706", f.year)
	require.NoError(t, err)
	assert.Zero(t, b706)
	b756, err := f.svc.Balance(ctx, "756", f.year)
	require.NoError(t, err)
	assert.Equal(t, int64(12000), b756)

	err = f.svc.Edit(ctx, id, Simple(date(2026, 1, 5), "Hors exercice", 12000, "512", "756"))
	assert.ErrorIs(t, err, model.ErrValidation)

	err = f.svc.Edit(ctx, id, Simple(date(2025, 3, 5), "Déséquilibrée", 0, "512", "756"))
	assert.ErrorIs(t, err, model.ErrUnbalancedLine)

	tx, err = f.svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Prestation corrigée", tx.Label, "failed edits leave the transaction untouched")
}

func TestEdit_NotFound(t *testing.T) {
	f := setup(t)
	err := f.svc.Edit(context.Background(), 404, Simple(date(2025, 3, 1), "x", 1, "512", "706"))
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestEditDelete_ClosedYear(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	id, err := f.svc.Add(ctx, Simple(date(2025, 3, 1), "Prestation", 10000, "512", "706"))
	require.NoError(t, err)
	tx, err := f.svc.Get(ctx, id)
	require.NoError(t, err)
	f.close(t, f.year)

	candidates := []Candidate{
		Simple(date(2025, 3, 1), "Même date", 10000, "512", "706"),
		Simple(date(2031, 3, 1), "Autre année", 10000, "512", "706"),
		{},
	}
	for _, c := range candidates {
		assert.ErrorIs(t, f.svc.Edit(ctx, id, c), model.ErrClosedPeriod)
	}
	assert.ErrorIs(t, f.svc.Delete(ctx, id), model.ErrClosedPeriod)
	assert.ErrorIs(t, f.svc.Reconcile(ctx, tx.Lines[0].ID, true), model.ErrClosedPeriod)

	bank, err := f.svc.Balance(ctx, "512", f.year)
	require.NoError(t, err)
	assert.Equal(t, int64(-10000), bank)
}

func TestEdit_YearLessIntoClosedYear(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	id, err := f.svc.Add(ctx, Simple(date(2031, 3, 1), "Hors exercice", 100, "512", "706"))
	require.NoError(t, err)
	f.close(t, f.year)

	err = f.svc.Edit(ctx, id, Simple(date(2025, 3, 1), "Dans 2025", 100, "512", "706"))
	assert.ErrorIs(t, err, model.ErrClosedPeriod)
}

func TestDelete(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	id, err := f.svc.Add(ctx, Simple(date(2025, 3, 1), "Prestation", 10000, "512", "706"))
	require.NoError(t, err)
	require.NoError(t, f.svc.Delete(ctx, id))

	_, err = f.svc.Get(ctx, id)
	assert.ErrorIs(t, err, model.ErrNotFound)

	bank, err := f.svc.Balance(ctx, "512", f.year)
	require.NoError(t, err)
	assert.Zero(t, bank)

	assert.ErrorIs(t, f.svc.Delete(ctx, id), model.ErrNotFound)
}

func TestReverse_IntoNextYear(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	next := f.addYear(t, "2026", date(2026, 1, 1), date(2026, 12, 31))

	id, err := f.svc.Add(ctx, Simple(date(2025, 3, 1), "Erreur", 10000, "512", "706"))
	require.NoError(t, err)
	f.close(t, f.year)

	revID, err := f.svc.Reverse(ctx, id, date(2026, 1, 2))
	require.NoError(t, err)

	rev, err := f.svc.Get(ctx, revID)
	require.NoError(t, err)
	assert.Equal(t, next, rev.YearID)
	assert.Contains(t, rev.Label, "Erreur")
	require.Len(t, rev.Lines, 2)
	assert.Equal(t, int64(10000), rev.Lines[0].Credit)
	assert.Equal(t, "512", rev.Lines[0].AccountCode)

	bank, err := f.svc.Balance(ctx, "512", next)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), bank)

	_, err = f.svc.Reverse(ctx, id, date(2025, 12, 31))
	assert.ErrorIs(t, err, model.ErrClosedPeriod)
}

func TestReconcile(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	id, err := f.svc.Add(ctx, Simple(date(2025, 3, 1), "Prestation", 10000, "512", "706"))
	require.NoError(t, err)
	tx, err := f.svc.Get(ctx, id)
	require.NoError(t, err)

	require.NoError(t, f.svc.Reconcile(ctx, tx.Lines[0].ID, true))
	tx, err = f.svc.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, tx.Lines[0].Reconciled)
	assert.False(t, tx.Lines[1].Reconciled)

	assert.ErrorIs(t, f.svc.Reconcile(ctx, 9999, true), model.ErrNotFound)
}

func TestBalance_Prefix(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Add(ctx, Simple(date(2025, 3, 1), "A", 10000, "512", "706"))
	require.NoError(t, err)
	_, err = f.svc.Add(ctx, Simple(date(2025, 3, 2), "B", 2500, "512A", "756"))
	require.NoError(t, err)

	b, err := f.svc.Balance(ctx, "51", f.year)
	require.NoError(t, err)
	assert.Equal(t, int64(-12500), b)

	b, err = f.svc.Balance(ctx, "512a", f.year)
	require.NoError(t, err)
	assert.Equal(t, int64(-2500), b)
}

func TestBalance_Idempotent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Add(ctx, Simple(date(2025, 3, 1), "A", 4321, "606", "512"))
	require.NoError(t, err)

	first, err := f.svc.Balance(ctx, "512", f.year)
	require.NoError(t, err)
	second, err := f.svc.Balance(ctx, "512", f.year)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBalance_CurrentYear(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Add(ctx, Simple(date(2025, 3, 1), "En 2025", 10000, "512", "706"))
	require.NoError(t, err)
	_, err = f.svc.Add(ctx, Simple(date(2031, 3, 1), "Sans exercice", 700, "512", "706"))
	require.NoError(t, err)

	b, err := f.svc.Balance(ctx, "512", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(-10000), b, "clock is in 2025")

	later := NewService(f.db, f.chartID, clock.Fixed(date(2031, 6, 1)), nil)
	b, err = later.Balance(ctx, "512", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(-700), b, "no year covers 2031")

	f.close(t, f.year)
	b, err = f.svc.Balance(ctx, "512", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(-10000), b, "a closed covering year is still used")
}

func TestListBetween(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	for _, d := range []time.Time{date(2025, 1, 31), date(2025, 2, 1), date(2025, 2, 28), date(2025, 3, 1), date(2031, 2, 10)} {
		_, err := f.svc.Add(ctx, Simple(d, d.Format(model.DateFormat), 100, "512", "706"))
		require.NoError(t, err)
	}

	txs, err := f.svc.ListBetween(ctx, date(2025, 2, 1), date(2025, 2, 28))
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "2025-02-01", txs[0].Label)
	assert.Equal(t, "2025-02-28", txs[1].Label)
	assert.Len(t, txs[0].Lines, 2)

	txs, err = f.svc.ListBetween(ctx, date(2025, 1, 1), date(2031, 12, 31))
	require.NoError(t, err)
	assert.Len(t, txs, 5, "spans years and year-less transactions")

	_, err = f.svc.ListBetween(ctx, date(2025, 3, 1), date(2025, 2, 1))
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestPaymentMethods(t *testing.T) {
	f := setup(t)
	methods, err := f.svc.PaymentMethods(context.Background())
	require.NoError(t, err)

	codes := make([]string, len(methods))
	for i, m := range methods {
		codes[i] = m.Code
	}
	assert.Contains(t, codes, model.PaymentCheck)
	assert.Contains(t, codes, "CB")
}
