package model

import (
	"fmt"
	"strings"
)

// AccountType classifies accounts in the chart of accounts.
// TypeNone marks structural group nodes that never carry postings of their own.
type AccountType int

const (
	TypeNone AccountType = iota
	TypeAsset
	TypeLiability
	TypeEquity
	TypeRevenue
	TypeExpense
	TypeAnalytical
	TypeVolunteering
)

// AccountTypes lists every type in display order.
var AccountTypes = []AccountType{
	TypeNone,
	TypeAsset,
	TypeLiability,
	TypeEquity,
	TypeRevenue,
	TypeExpense,
	TypeAnalytical,
	TypeVolunteering,
}

func (t AccountType) String() string {
	switch t {
	case TypeNone:
		return "none"
	case TypeAsset:
		return "asset"
	case TypeLiability:
		return "liability"
	case TypeEquity:
		return "equity"
	case TypeRevenue:
		return "revenue"
	case TypeExpense:
		return "expense"
	case TypeAnalytical:
		return "analytical"
	case TypeVolunteering:
		return "volunteering"
	default:
		return fmt.Sprintf("AccountType(%d)", int(t))
	}
}

// Valid reports whether t is one of the declared types.
func (t AccountType) Valid() bool {
	return t >= TypeNone && t <= TypeVolunteering
}

// ParseAccountType converts a type name back to an AccountType.
// The empty string maps to TypeNone.
func ParseAccountType(s string) (AccountType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return TypeNone, nil
	}
	for _, t := range AccountTypes {
		if t.String() == s {
			return t, nil
		}
	}
	return TypeNone, fmt.Errorf("unknown account type %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (t AccountType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid account type %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *AccountType) UnmarshalText(b []byte) error {
	v, err := ParseAccountType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Chart is one chart of accounts (one per book).
type Chart struct {
	ID      int64  `json:"id"`
	Label   string `json:"label"`
	Country string `json:"country"`
}

// Account represents a row of the chart of accounts.
// Nesting is derived from Code: the parent of an account is the longest
// proper prefix of its code that exists in the same chart.
type Account struct {
	ID          int64       `json:"id"`
	ChartID     int64       `json:"id_chart"`
	Code        string      `json:"code"`
	Name        string      `json:"name"`
	Type        AccountType `json:"type"`
	TypeParent  bool        `json:"type_parent"` // top-level grouping of its type
	Description string      `json:"description,omitempty"`
}

// NormalizeCode upper-cases and trims an account code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
