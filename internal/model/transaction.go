package model

import (
	"fmt"
	"time"
)

// TransactionType describes how a journal entry was entered.
type TransactionType string

const (
	TransactionAdvanced TransactionType = "advanced"
	TransactionRevenue  TransactionType = "revenue"
	TransactionExpense  TransactionType = "expense"
	TransactionTransfer TransactionType = "transfer"
	TransactionDebt     TransactionType = "debt"
	TransactionCredit   TransactionType = "credit"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionAdvanced, TransactionRevenue, TransactionExpense,
		TransactionTransfer, TransactionDebt, TransactionCredit:
		return true
	}
	return false
}

// DateFormat is the storage and CLI format of dates.
const DateFormat = "2006-01-02"

// Transaction is a journal entry. It exclusively owns its Lines.
// YearID is zero for year-less transactions; it is set at creation and
// never recomputed.
type Transaction struct {
	ID            int64           `json:"id"`
	Type          TransactionType `json:"type"`
	Date          time.Time       `json:"date"`
	Label         string          `json:"label"`
	Reference     string          `json:"reference,omitempty"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	PaymentNumber string          `json:"payment_number,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	YearID        int64           `json:"id_year,omitempty"`
	CategoryID    int64           `json:"id_category,omitempty"`
	CreatorID     int64           `json:"id_creator,omitempty"`
	Lines         []Line          `json:"lines"`
}

// Totals returns the sums of debits and credits over all lines.
func (t Transaction) Totals() (debit, credit int64) {
	for _, l := range t.Lines {
		debit += l.Debit
		credit += l.Credit
	}
	return debit, credit
}

// Line is one debit or credit posting against one account.
// Amounts are in minor currency units.
type Line struct {
	ID            int64  `json:"id"`
	TransactionID int64  `json:"id_transaction"`
	AccountID     int64  `json:"id_account"`
	AccountCode   string `json:"account_code"`
	Credit        int64  `json:"credit"`
	Debit         int64  `json:"debit"`
	Reference     string `json:"reference,omitempty"`
	Label         string `json:"label,omitempty"`
	Reconciled    bool   `json:"reconciled"`
}

// Balance returns credit - debit for this line.
func (l Line) Balance() int64 {
	return l.Credit - l.Debit
}

func (l Line) String() string {
	if l.Debit > 0 {
		return fmt.Sprintf("%s D %d", l.AccountCode, l.Debit)
	}
	return fmt.Sprintf("%s C %d", l.AccountCode, l.Credit)
}

// Category is an optional analytic/budget tag on a transaction.
type Category struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
}

// PaymentMethod is a recognised means of payment.
type PaymentMethod struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// PaymentCheck is the payment method code for which a check number is kept.
const PaymentCheck = "CH"
