package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrValidation marks malformed or missing input; the message is meant for the end user.
	ErrValidation = errors.New("validation error")
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound              = errors.New("not found")
	ErrAccountNotFound       = errors.New("account not found")
	ErrCategoryNotFound      = errors.New("category not found")
	ErrAccountInUse          = errors.New("account is referenced by transaction lines")
	ErrUnbalancedLine        = errors.New("unbalanced line")
	ErrUnbalancedTransaction = errors.New("unbalanced transaction")
	ErrClosedPeriod          = errors.New("fiscal year is closed")
	// ErrUnbalancedYear means committed data violates the balance invariant.
	ErrUnbalancedYear = errors.New("fiscal year contains unbalanced transactions")
)

// ValidationError describes one invalid input field.
type ValidationError struct {
	Field   string
	Message string
}

// Invalid returns a ValidationError for field.
func Invalid(field, format string, args ...any) ValidationError {
	return ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func (e ValidationError) Error() string {
	return e.Message
}

// Is makes errors.Is(err, ErrValidation) hold.
func (e ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// UnbalancedYearError names the transactions that prevented closing a year.
type UnbalancedYearError struct {
	YearID         int64
	TransactionIDs []int64
}

func (e UnbalancedYearError) Error() string {
	ids := make([]string, len(e.TransactionIDs))
	for i, id := range e.TransactionIDs {
		ids[i] = strconv.FormatInt(id, 10)
	}
	return fmt.Sprintf("fiscal year %d: unbalanced transactions: %s", e.YearID, strings.Join(ids, ", "))
}

// Is makes errors.Is(err, ErrUnbalancedYear) hold.
func (e UnbalancedYearError) Is(target error) bool {
	return target == ErrUnbalancedYear
}
