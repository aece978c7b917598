package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cleared-dev/compta/internal/amount"
	"github.com/cleared-dev/compta/internal/ledger"
	"github.com/cleared-dev/compta/internal/model"
)

// BankParser reads bank statement exports ("Date;Libellé;Montant", day-first
// dates, signed amounts with a decimal comma). Credits to the account are
// debited to Bank; payments are credited to it. The other side goes to
// Counterpart, a suspense account to be reassigned with "tx edit".
type BankParser struct {
	Bank        string
	Counterpart string
}

const (
	bankDateFormat = "02/01/2006"
	bankNumFields  = 3
	bankColDate    = 0
	bankColLabel   = 1
	bankColAmount  = 2
)

// Format returns the parser name.
func (p *BankParser) Format() string { return "bank" }

// Parse reads a bank statement and returns two-line Candidates.
func (p *BankParser) Parse(r io.Reader) ([]ledger.Candidate, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = bankNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading bank CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var cands []ledger.Candidate
	for i, rec := range records[1:] {
		c, err := p.parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		cands = append(cands, c)
	}
	return cands, nil
}

func (p *BankParser) parseRow(rec []string) (ledger.Candidate, error) {
	date, err := time.Parse(bankDateFormat, strings.TrimSpace(rec[bankColDate]))
	if err != nil {
		return ledger.Candidate{}, fmt.Errorf("parsing date %q: %w", rec[bankColDate], err)
	}

	raw := strings.ReplaceAll(strings.TrimSpace(rec[bankColAmount]), " ", "")
	negative := strings.HasPrefix(raw, "-")
	minor, err := amount.Parse(strings.TrimLeft(raw, "+-"))
	if err != nil {
		return ledger.Candidate{}, fmt.Errorf("parsing amount %q: %w", rec[bankColAmount], err)
	}

	label := strings.TrimSpace(rec[bankColLabel])
	c := ledger.Simple(date, label, minor, p.Bank, p.Counterpart)
	c.Type = model.TransactionRevenue
	if negative {
		c = ledger.Simple(date, label, minor, p.Counterpart, p.Bank)
		c.Type = model.TransactionExpense
	}
	c.Reference = makeBankRef(date, label)
	return c, nil
}

// makeBankRef creates a reference like bank_20250103_COTISATIO.
func makeBankRef(date time.Time, label string) string {
	prefix := strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, strings.ToUpper(label))
	if len(prefix) > 10 {
		prefix = prefix[:10]
	}
	return fmt.Sprintf("bank_%s_%s", date.Format("20060102"), prefix)
}
