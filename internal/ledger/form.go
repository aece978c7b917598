package ledger

import (
	"strconv"
	"strings"
	"time"

	"github.com/cleared-dev/compta/internal/amount"
	"github.com/cleared-dev/compta/internal/model"
)

// Field names accepted by ParseForm. French keys come from the legacy entry
// form; English aliases are accepted as well.
const (
	FieldLabel         = "libelle"
	FieldAmount        = "montant"
	FieldPaymentMethod = "moyen_paiement"
	FieldCheckNumber   = "numero_cheque"
	FieldDebitAccount  = "compte_debit"
	FieldCreditAccount = "compte_credit"
	FieldCategory      = "id_categorie"
	FieldAuthor        = "id_auteur"
	FieldDate          = "date"
	FieldReference     = "numero_piece"
	FieldNotes         = "remarques"
	FieldType          = "type"
)

var aliases = map[string]string{
	FieldLabel:         "label",
	FieldAmount:        "amount",
	FieldPaymentMethod: "payment_method",
	FieldCheckNumber:   "payment_number",
	FieldDebitAccount:  "debit",
	FieldCreditAccount: "credit",
	FieldCategory:      "category",
	FieldAuthor:        "creator",
	FieldReference:     "reference",
	FieldNotes:         "notes",
}

var dateLayouts = []string{model.DateFormat, "02/01/2006"}

// ParseForm turns a submitted field map into a two-line Candidate.
// It checks the label and amount formats; the remaining rules are applied by
// Add and Edit.
func ParseForm(fields map[string]string) (Candidate, error) {
	get := func(key string) string {
		if v, ok := fields[key]; ok {
			return strings.TrimSpace(v)
		}
		return strings.TrimSpace(fields[aliases[key]])
	}

	c := Candidate{
		Type:          model.TransactionType(get(FieldType)),
		Label:         get(FieldLabel),
		Reference:     get(FieldReference),
		PaymentMethod: get(FieldPaymentMethod),
		PaymentNumber: get(FieldCheckNumber),
		Notes:         get(FieldNotes),
	}

	if c.Label == "" {
		return c, model.Invalid(FieldLabel, "label is required")
	}

	amt, err := amount.Parse(get(FieldAmount))
	if err != nil {
		return c, err
	}
	if amt == 0 {
		return c, model.Invalid(FieldAmount, "amount must be positive")
	}

	if c.Date, err = parseDate(get(FieldDate)); err != nil {
		return c, err
	}

	if c.CategoryID, err = parseID(FieldCategory, get(FieldCategory)); err != nil {
		return c, err
	}
	if c.CreatorID, err = parseID(FieldAuthor, get(FieldAuthor)); err != nil {
		return c, err
	}

	if !strings.EqualFold(c.PaymentMethod, model.PaymentCheck) {
		c.PaymentNumber = ""
	}

	c.Lines = []LineInput{
		{Account: get(FieldDebitAccount), Debit: amt},
		{Account: get(FieldCreditAccount), Credit: amt},
	}
	return c, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, model.Invalid(FieldDate, "date is required")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, model.Invalid(FieldDate, "invalid date %q, expected YYYY-MM-DD", s)
}

func parseID(field, s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 0 {
		return 0, model.Invalid(field, "invalid identifier %q", s)
	}
	return id, nil
}
