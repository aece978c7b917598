package ledger

import (
	"fmt"
	"math"

	"github.com/cleared-dev/compta/internal/amount"
	"github.com/cleared-dev/compta/internal/model"
)

// CheckLine enforces that exactly one of debit/credit is strictly positive.
func CheckLine(l model.Line) error {
	if l.Debit < 0 || l.Credit < 0 {
		return fmt.Errorf("%w: negative amount on %s", model.ErrUnbalancedLine, l.AccountCode)
	}
	if l.Debit > amount.MaxMinor || l.Credit > amount.MaxMinor {
		return fmt.Errorf("%w: amount on %s exceeds %s", model.ErrUnbalancedLine, l.AccountCode, amount.String(amount.MaxMinor))
	}
	if (l.Debit > 0) == (l.Credit > 0) {
		return fmt.Errorf("%w: account %s must have exactly one of debit or credit", model.ErrUnbalancedLine, l.AccountCode)
	}
	return nil
}

// CheckLines enforces the double-entry invariant on one transaction's lines:
// every line is one-sided and Σcredit == Σdebit.
func CheckLines(lines []model.Line) error {
	if len(lines) < 2 {
		return fmt.Errorf("%w: a transaction needs at least two lines", model.ErrUnbalancedTransaction)
	}

	var debit, credit int64
	for i, l := range lines {
		if err := CheckLine(l); err != nil {
			return fmt.Errorf("line %d: %w", i+1, err)
		}
		if debit > math.MaxInt64-l.Debit || credit > math.MaxInt64-l.Credit {
			return fmt.Errorf("%w: totals overflow at line %d", model.ErrUnbalancedTransaction, i+1)
		}
		debit += l.Debit
		credit += l.Credit
	}

	if debit != credit {
		return fmt.Errorf("%w: debits (%s) != credits (%s)", model.ErrUnbalancedTransaction,
			amount.String(debit), amount.String(credit))
	}
	return nil
}

// Balanced reports whether lines satisfy CheckLines.
func Balanced(lines []model.Line) bool {
	return CheckLines(lines) == nil
}
