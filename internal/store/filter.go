package store

import (
	"strings"
	"time"

	"github.com/cleared-dev/compta/internal/model"
)

// Filter composes a parameterised WHERE clause. Column names come from code
// in this package; values are always bound as arguments.
type Filter struct {
	clauses []string
	args    []any
}

// Where starts an empty filter.
func Where() *Filter {
	return &Filter{}
}

// Eq adds "col = v".
func (f *Filter) Eq(col string, v any) *Filter {
	f.clauses = append(f.clauses, col+" = ?")
	f.args = append(f.args, v)
	return f
}

// Ne adds "col != v".
func (f *Filter) Ne(col string, v any) *Filter {
	f.clauses = append(f.clauses, col+" != ?")
	f.args = append(f.args, v)
	return f
}

// Cmp adds "col op v" for op one of <, <=, >, >=.
func (f *Filter) Cmp(col, op string, v any) *Filter {
	switch op {
	case "<", "<=", ">", ">=":
	default:
		panic("store: unsupported comparison " + op)
	}
	f.clauses = append(f.clauses, col+" "+op+" ?")
	f.args = append(f.args, v)
	return f
}

// IsNull adds "col IS NULL".
func (f *Filter) IsNull(col string) *Filter {
	f.clauses = append(f.clauses, col+" IS NULL")
	return f
}

// Prefix matches values of col starting with p, without LIKE wildcards.
func (f *Filter) Prefix(col, p string) *Filter {
	if p == "" {
		return f
	}
	f.clauses = append(f.clauses, "substr("+col+", 1, ?) = ?")
	f.args = append(f.args, len(p), p)
	return f
}

// In adds "col IN (...)". An empty set matches nothing.
func (f *Filter) In(col string, values ...any) *Filter {
	if len(values) == 0 {
		f.clauses = append(f.clauses, "0")
		return f
	}
	f.clauses = append(f.clauses, col+" IN ("+strings.TrimSuffix(strings.Repeat("?, ", len(values)), ", ")+")")
	f.args = append(f.args, values...)
	return f
}

// NotIn adds "col NOT IN (...)". An empty set is ignored.
func (f *Filter) NotIn(col string, values ...any) *Filter {
	if len(values) == 0 {
		return f
	}
	f.clauses = append(f.clauses, col+" NOT IN ("+strings.TrimSuffix(strings.Repeat("?, ", len(values)), ", ")+")")
	f.args = append(f.args, values...)
	return f
}

// Year restricts t.id_year to yearID, or to year-less rows when yearID is 0.
func (f *Filter) Year(col string, yearID int64) *Filter {
	if yearID == 0 {
		return f.IsNull(col)
	}
	return f.Eq(col, yearID)
}

// Between adds an inclusive date range on a date column.
func (f *Filter) Between(col string, start, end time.Time) *Filter {
	f.clauses = append(f.clauses, col+" BETWEEN ? AND ?")
	f.args = append(f.args, formatDate(start), formatDate(end))
	return f
}

// SQL returns the " WHERE ..." fragment (empty when there are no clauses) and its arguments.
func (f *Filter) SQL() (string, []any) {
	if f == nil || len(f.clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(f.clauses, " AND "), f.args
}

func formatDate(t time.Time) string {
	return t.Format(model.DateFormat)
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(model.DateFormat, s)
}
