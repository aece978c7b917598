// Package importer turns CSV files into ledger transactions.
package importer

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cleared-dev/compta/internal/ledger"
)

// Parser converts a CSV file into candidate transactions.
type Parser interface {
	Parse(r io.Reader) ([]ledger.Candidate, error)
	Format() string
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// DefaultRegistry returns a registry with the journal parser and a bank
// statement parser posting against bank and counterpart.
func DefaultRegistry(bank, counterpart string) *Registry {
	r := NewRegistry()
	r.Register(&JournalParser{})
	r.Register(&BankParser{Bank: bank, Counterpart: counterpart})
	return r
}

// Adder records one candidate transaction; *ledger.Service satisfies it.
type Adder interface {
	Add(ctx context.Context, c ledger.Candidate) (int64, error)
}

// Apply records candidates in order and returns the new IDs. It stops at the
// first rejected candidate; transactions recorded before it are kept.
func Apply(ctx context.Context, l Adder, cands []ledger.Candidate) ([]int64, error) {
	ids := make([]int64, 0, len(cands))
	for i, c := range cands {
		id, err := l.Add(ctx, c)
		if err != nil {
			return ids, fmt.Errorf("transaction %d (%s): %w", i+1, c.Label, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
