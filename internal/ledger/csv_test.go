package ledger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/compta/internal/model"
)

func TestWriteJournal(t *testing.T) {
	txs := []model.Transaction{
		{
			ID:            1,
			Type:          model.TransactionRevenue,
			Date:          date(2025, 3, 1),
			Label:         "Cotisation, Dupont",
			PaymentMethod: "CH",
			PaymentNumber: "123",
			Notes:         "Chèque déposé",
			CategoryID:    4,
			YearID:        2,
			Lines: []model.Line{
				{AccountCode: "512", Debit: 14202, Reconciled: true},
				{AccountCode: "756", Credit: 14202},
			},
		},
		{
			ID:    2,
			Type:  model.TransactionAdvanced,
			Date:  date(2031, 1, 5),
			Label: "Hors exercice",
			Lines: []model.Line{
				{AccountCode: "606", Debit: 5},
				{AccountCode: "530", Credit: 5},
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteJournal(&buf, txs))

	rows := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, rows, 5)
	assert.Equal(t, Header, rows[0])
	assert.Equal(t, `1,2025-03-01,revenue,"Cotisation, Dupont",,CH,123,Chèque déposé,4,,512,142.02,,,,true,2`, rows[1])
	assert.Equal(t, `1,2025-03-01,revenue,"Cotisation, Dupont",,CH,123,Chèque déposé,4,,756,,142.02,,,false,2`, rows[2])
	assert.Equal(t, "2,2031-01-05,advanced,Hors exercice,,,,,,,530,,0.05,,,false,", rows[4])
}

func TestWriteJournal_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJournal(&buf, nil))
	assert.Equal(t, Header+"\n", buf.String())
}
