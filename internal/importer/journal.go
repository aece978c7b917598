package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/cleared-dev/compta/internal/amount"
	"github.com/cleared-dev/compta/internal/ledger"
	"github.com/cleared-dev/compta/internal/model"
)

// JournalParser reads the CSV written by ledger.WriteJournal. Consecutive rows
// sharing an id form one transaction. The id_year column is informational:
// the year is resolved again from the date when the transaction is added.
type JournalParser struct{}

const (
	journalNumFields   = 17
	journalColID       = 0
	journalColDate     = 1
	journalColType     = 2
	journalColLabel    = 3
	journalColRef      = 4
	journalColMethod   = 5
	journalColNumber   = 6
	journalColNotes    = 7
	journalColCategory = 8
	journalColCreator  = 9
	journalColAccount  = 10
	journalColDebit    = 11
	journalColCredit   = 12
	journalColLLabel   = 13
	journalColLRef     = 14
	journalColRecon    = 15
)

// Format returns the parser name.
func (p *JournalParser) Format() string { return "journal" }

// Parse reads a journal CSV and returns one Candidate per transaction.
func (p *JournalParser) Parse(r io.Reader) ([]ledger.Candidate, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = journalNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading journal CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}
	if strings.Join(records[0], ",") != ledger.Header {
		return nil, fmt.Errorf("unexpected journal header %q", strings.Join(records[0], ","))
	}

	var cands []ledger.Candidate
	prevID := ""
	for i, rec := range records[1:] {
		line, err := parseJournalLine(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}

		if rec[journalColID] != prevID || len(cands) == 0 {
			c, err := parseJournalHeader(rec)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i+2, err)
			}
			cands = append(cands, c)
			prevID = rec[journalColID]
		}
		c := &cands[len(cands)-1]
		c.Lines = append(c.Lines, line)
	}
	return cands, nil
}

// parseJournalHeader reads the transaction fields repeated on every row.
func parseJournalHeader(rec []string) (ledger.Candidate, error) {
	date, err := time.Parse(model.DateFormat, rec[journalColDate])
	if err != nil {
		return ledger.Candidate{}, fmt.Errorf("parsing date %q: %w", rec[journalColDate], err)
	}
	c := ledger.Candidate{
		Type:          model.TransactionType(rec[journalColType]),
		Date:          date,
		Label:         rec[journalColLabel],
		Reference:     rec[journalColRef],
		PaymentMethod: rec[journalColMethod],
		PaymentNumber: rec[journalColNumber],
		Notes:         rec[journalColNotes],
	}
	if c.CategoryID, err = parseID("id_category", rec[journalColCategory]); err != nil {
		return c, err
	}
	if c.CreatorID, err = parseID("id_creator", rec[journalColCreator]); err != nil {
		return c, err
	}
	return c, nil
}

func parseJournalLine(rec []string) (ledger.LineInput, error) {
	l := ledger.LineInput{
		Account:   rec[journalColAccount],
		Label:     rec[journalColLLabel],
		Reference: rec[journalColLRef],
	}
	var err error
	if rec[journalColDebit] != "" {
		if l.Debit, err = amount.Parse(rec[journalColDebit]); err != nil {
			return l, fmt.Errorf("parsing debit: %w", err)
		}
	}
	if rec[journalColCredit] != "" {
		if l.Credit, err = amount.Parse(rec[journalColCredit]); err != nil {
			return l, fmt.Errorf("parsing credit: %w", err)
		}
	}
	if v := rec[journalColRecon]; v != "" {
		if l.Reconciled, err = strconv.ParseBool(v); err != nil {
			return l, fmt.Errorf("parsing reconciled %q: %w", v, err)
		}
	}
	return l, nil
}

func parseID(column, s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("parsing %s %q: invalid identifier", column, s)
	}
	return id, nil
}
