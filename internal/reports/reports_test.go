package reports

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/compta/internal/accounts"
	"github.com/cleared-dev/compta/internal/clock"
	"github.com/cleared-dev/compta/internal/ledger"
	"github.com/cleared-dev/compta/internal/model"
	"github.com/cleared-dev/compta/internal/store"
	"github.com/cleared-dev/compta/internal/years"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

type fixture struct {
	db      *store.DB
	reports *Service
	ledger  *ledger.Service
	years   *years.Service
	chartID int64
	y2024   int64
	y2025   int64
}

// setup books one entry in 2024 and a handful in 2025 on the default chart.
func setup(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()

	db, err := store.Open(filepath.Join(t.TempDir(), "compta.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	accts := accounts.NewService(db, nil)
	chartID, err := accts.CreateChart(ctx, "Plan associatif", "FR")
	require.NoError(t, err)
	_, err = accts.Seed(ctx, chartID, accounts.DefaultChart())
	require.NoError(t, err)

	clk := clock.Fixed(date(2025, 6, 30))
	f := fixture{
		db:      db,
		reports: NewService(db, chartID, nil),
		ledger:  ledger.NewService(db, chartID, clk, nil),
		years:   years.NewService(db, clk, nil),
		chartID: chartID,
	}

	f.y2024, err = f.years.Create(ctx, chartID, "2024", date(2024, 1, 1), date(2024, 12, 31))
	require.NoError(t, err)
	f.y2025, err = f.years.Create(ctx, chartID, "2025", date(2025, 1, 1), date(2025, 12, 31))
	require.NoError(t, err)

	for _, c := range []ledger.Candidate{
		ledger.Simple(date(2024, 9, 1), "Cotisations 2024", 4000, "512", "756"),
		ledger.Simple(date(2025, 2, 1), "Prestation", 10000, "512", "706"),
		ledger.Simple(date(2025, 2, 3), "Cotisations 2025", 5000, "512", "756"),
		ledger.Simple(date(2025, 3, 1), "Fournitures", 2000, "606", "512"),
		ledger.Simple(date(2025, 3, 8), "Bénévolat", 3000, "864", "875"),
		ledger.Simple(date(2025, 4, 1), "Épargne", 1000, "512A", "512"),
	} {
		_, err := f.ledger.Add(ctx, c)
		require.NoError(t, err)
	}
	return f
}

func TestStatement_Tree(t *testing.T) {
	f := setup(t)
	st, err := f.reports.Statement(context.Background(), Criteria{
		YearID:        f.y2025,
		CompareYearID: f.y2024,
		ExcludeType:   model.TypeVolunteering,
	})
	require.NoError(t, err)

	types := make([]model.AccountType, len(st.Sections))
	for i, s := range st.Sections {
		types[i] = s.Type
	}
	assert.Equal(t, []model.AccountType{model.TypeAsset, model.TypeRevenue, model.TypeExpense}, types)

	_, ok := st.Section(model.TypeVolunteering)
	assert.False(t, ok, "volunteering is excluded")

	assets, ok := st.Section(model.TypeAsset)
	require.True(t, ok)
	require.Len(t, assets.Nodes, 1, "empty 41 and 53 groups are pruned")
	banks := assets.Nodes[0]
	assert.Equal(t, "51", banks.Code)
	assert.Equal(t, int64(-13000), banks.Balance)
	assert.Equal(t, int64(-4000), banks.Compare)
	assert.Equal(t, int64(-9000), banks.Diff)
	assert.Equal(t, int64(-13000), assets.Total)
	assert.Equal(t, int64(-9000), assets.Diff)

	bank, ok := st.Find("512")
	require.True(t, ok)
	assert.Equal(t, int64(-13000), bank.Balance, "512A rolls into 512")
	require.Len(t, bank.Children, 1)
	assert.Equal(t, "512A", bank.Children[0].Code)
	assert.Equal(t, int64(-1000), bank.Children[0].Balance)

	revenue, ok := st.Section(model.TypeRevenue)
	require.True(t, ok)
	assert.Equal(t, int64(15000), revenue.Total)
	assert.Equal(t, int64(4000), revenue.Compare)
	_, ok = st.Find("74")
	assert.False(t, ok, "accounts without movements are pruned")

	assert.Equal(t, int64(13000), st.Result)
	assert.Equal(t, int64(4000), st.CompareResult)
	require.NotNil(t, st.Compare)
	assert.Equal(t, "2024", st.Compare.Label)
}

func TestStatement_NoComparison(t *testing.T) {
	f := setup(t)
	st, err := f.reports.Statement(context.Background(), Criteria{YearID: f.y2024})
	require.NoError(t, err)

	assert.Nil(t, st.Compare)
	require.Len(t, st.Sections, 2)
	assert.Equal(t, int64(4000), st.Result)

	fees, ok := st.Find("756")
	require.True(t, ok)
	assert.Equal(t, int64(4000), fees.Balance)
	assert.Equal(t, int64(4000), fees.Diff)
}

func TestVolunteeringStatement(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	c := Criteria{YearID: f.y2025, CompareYearID: f.y2024, ExcludeType: model.TypeVolunteering}
	general, err := f.reports.Statement(ctx, c)
	require.NoError(t, err)

	vol, err := f.reports.VolunteeringStatement(ctx, c, general)
	require.NoError(t, err)

	assert.Equal(t, general.Year.ID, vol.Year.ID)
	require.NotNil(t, vol.Compare)
	assert.Equal(t, general.Compare.ID, vol.Compare.ID)

	require.Len(t, vol.Sections, 1)
	sec := vol.Sections[0]
	assert.Equal(t, model.TypeVolunteering, sec.Type)
	require.Len(t, sec.Nodes, 2)
	assert.Equal(t, "86", sec.Nodes[0].Code)
	assert.Equal(t, int64(-3000), sec.Nodes[0].Balance)
	assert.Equal(t, "87", sec.Nodes[1].Code)
	assert.Equal(t, int64(3000), sec.Nodes[1].Balance)
	assert.Zero(t, sec.Total)
	assert.Zero(t, vol.Result, "volunteering does not affect the result")

	_, err = f.reports.VolunteeringStatement(ctx, c, nil)
	assert.Error(t, err)
}

func TestStatement_Category(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	cat, err := f.ledger.CreateCategory(ctx, "Gala")
	require.NoError(t, err)
	c := ledger.Simple(date(2025, 5, 1), "Buvette du gala", 700, "530", "706")
	c.CategoryID = cat
	_, err = f.ledger.Add(ctx, c)
	require.NoError(t, err)

	st, err := f.reports.Statement(ctx, Criteria{YearID: f.y2025, CategoryID: cat})
	require.NoError(t, err)
	require.Len(t, st.Sections, 2)
	assert.Equal(t, int64(700), st.Result)

	cash, ok := st.Find("53")
	require.True(t, ok)
	assert.Equal(t, int64(-700), cash.Balance)
	_, ok = st.Find("512")
	assert.False(t, ok)
}

func TestStatement_InvalidCriteria(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.reports.Statement(ctx, Criteria{})
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = f.reports.Statement(ctx, Criteria{YearID: f.y2025, CompareYearID: f.y2025})
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = f.reports.Statement(ctx, Criteria{YearID: 404})
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = f.reports.Statement(ctx, Criteria{YearID: f.y2025, CompareYearID: 404})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestStatement_ReadOnly(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	c := Criteria{YearID: f.y2025, CompareYearID: f.y2024}

	first, err := f.reports.Statement(ctx, c)
	require.NoError(t, err)
	second, err := f.reports.Statement(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	bank, err := f.ledger.Balance(ctx, "512", f.y2025)
	require.NoError(t, err)
	assert.Equal(t, int64(-12000), bank)
}

func TestTrialBalance(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	require.NoError(t, f.years.Close(ctx, f.y2024))

	tb, err := f.reports.TrialBalance(ctx, f.y2025)
	require.NoError(t, err)

	codes := make([]string, len(tb.Rows))
	for i, r := range tb.Rows {
		codes[i] = r.Code
	}
	assert.Equal(t, []string{"512", "512A", "606", "706", "756", "864", "875"}, codes)

	bank := tb.Rows[0]
	assert.Equal(t, int64(-4000), bank.Opening)
	assert.Equal(t, int64(15000), bank.Debit)
	assert.Equal(t, int64(3000), bank.Credit)
	assert.Equal(t, int64(-16000), bank.Closing)

	fees := tb.Rows[4]
	assert.Equal(t, int64(4000), fees.Opening)
	assert.Equal(t, int64(9000), fees.Closing)

	assert.Equal(t, int64(21000), tb.Debit)
	assert.Equal(t, int64(21000), tb.Credit)
	assert.Zero(t, tb.Opening)
	assert.Zero(t, tb.Closing)
	assert.True(t, tb.Balanced)
}

func TestTrialBalance_Unbalanced(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	bank, err := store.AccountByCode(ctx, f.db.Q(), f.chartID, "512")
	require.NoError(t, err)
	_, err = store.InsertTransaction(ctx, f.db.Q(), model.Transaction{
		Type:   model.TransactionAdvanced,
		Date:   date(2025, 7, 1),
		Label:  "Injectée",
		YearID: f.y2025,
		Lines:  []model.Line{{AccountID: bank.ID, Debit: 100}},
	})
	require.NoError(t, err)

	tb, err := f.reports.TrialBalance(ctx, f.y2025)
	require.NoError(t, err)
	assert.False(t, tb.Balanced)
	assert.Equal(t, tb.Debit-100, tb.Credit)
}
