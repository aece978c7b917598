package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/compta/internal/model"
)

func TestParseForm(t *testing.T) {
	c, err := ParseForm(map[string]string{
		"libelle":        "  Cotisation Dupont ",
		"montant":        "142,02",
		"moyen_paiement": "CH",
		"numero_cheque":  "0012345",
		"compte_debit":   "512",
		"compte_credit":  "756",
		"id_categorie":   "3",
		"id_auteur":      "7",
		"date":           "2025-03-01",
		"numero_piece":   "F-001",
		"remarques":      "payé en avance",
	})
	require.NoError(t, err)

	assert.Equal(t, "Cotisation Dupont", c.Label)
	assert.Equal(t, date(2025, 3, 1), c.Date)
	assert.Equal(t, "CH", c.PaymentMethod)
	assert.Equal(t, "0012345", c.PaymentNumber)
	assert.Equal(t, int64(3), c.CategoryID)
	assert.Equal(t, int64(7), c.CreatorID)
	assert.Equal(t, "F-001", c.Reference)
	assert.Equal(t, "payé en avance", c.Notes)
	assert.Equal(t, []LineInput{
		{Account: "512", Debit: 14202},
		{Account: "756", Credit: 14202},
	}, c.Lines)
}

func TestParseForm_Aliases(t *testing.T) {
	c, err := ParseForm(map[string]string{
		"label":          "Loyer",
		"amount":         "142",
		"payment_method": "VI",
		"payment_number": "99",
		"debit":          "613",
		"credit":         "512",
		"date":           "01/04/2025",
		"type":           "expense",
	})
	require.NoError(t, err)

	assert.Equal(t, "Loyer", c.Label)
	assert.Equal(t, model.TransactionExpense, c.Type)
	assert.Equal(t, date(2025, 4, 1), c.Date)
	assert.Empty(t, c.PaymentNumber, "check number is cleared for non-check payments")
	assert.Equal(t, int64(14200), c.Lines[0].Debit)
	assert.Equal(t, "613", c.Lines[0].Account)
}

func TestParseForm_Invalid(t *testing.T) {
	base := func() map[string]string {
		return map[string]string{
			"libelle":       "Don",
			"montant":       "10",
			"compte_debit":  "512",
			"compte_credit": "754",
			"date":          "2025-03-01",
		}
	}

	tests := map[string]struct {
		key, value, field string
	}{
		"missing label":    {"libelle", " ", FieldLabel},
		"text amount":      {"montant", "abc", "amount"},
		"three decimals":   {"montant", "1,234", "amount"},
		"negative amount":  {"montant", "-5", "amount"},
		"zero amount":      {"montant", "0,00", FieldAmount},
		"missing date":     {"date", "", FieldDate},
		"bad date":         {"date", "2025-13-01", FieldDate},
		"bad category":     {"id_categorie", "abc", FieldCategory},
		"negative creator": {"id_auteur", "-1", FieldAuthor},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			fields := base()
			fields[tt.key] = tt.value

			_, err := ParseForm(fields)
			require.ErrorIs(t, err, model.ErrValidation)

			var verr model.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}
