package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cleared-dev/compta/internal/amount"
	"github.com/cleared-dev/compta/internal/model"
)

// Header is the CSV header of an exported journal, one row per line.
const Header = "id,date,type,label,reference,payment_method,payment_number,notes,id_category,id_creator," +
	"account,debit,credit,line_label,line_reference,reconciled,id_year"

// WriteJournal writes the lines of txs as CSV, header included.
// Amounts are exact decimals in major units; the empty side is left blank.
func WriteJournal(w io.Writer, txs []model.Transaction) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	row := 2
	for _, t := range txs {
		for _, l := range t.Lines {
			if err := cw.Write(MarshalLine(t, l)); err != nil {
				return fmt.Errorf("writing row %d: %w", row, err)
			}
			row++
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalLine converts one line of t to a CSV record.
func MarshalLine(t model.Transaction, l model.Line) []string {
	return []string{
		strconv.FormatInt(t.ID, 10),
		t.Date.Format(model.DateFormat),
		string(t.Type),
		t.Label,
		t.Reference,
		t.PaymentMethod,
		t.PaymentNumber,
		t.Notes,
		optionalID(t.CategoryID),
		optionalID(t.CreatorID),
		l.AccountCode,
		side(l.Debit),
		side(l.Credit),
		l.Label,
		l.Reference,
		strconv.FormatBool(l.Reconciled),
		optionalID(t.YearID),
	}
}

func optionalID(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}

func side(minor int64) string {
	if minor == 0 {
		return ""
	}
	return amount.String(minor)
}
