// Package reports builds read-only statements over committed ledger data.
package reports

import (
	"context"
	"errors"
	"log/slog"

	"github.com/cleared-dev/compta/internal/accounts"
	"github.com/cleared-dev/compta/internal/model"
	"github.com/cleared-dev/compta/internal/store"
)

// Service builds reports for one chart. It never writes.
type Service struct {
	db      *store.DB
	chartID int64
	log     *slog.Logger
}

// NewService creates a reporting Service. A nil logger uses slog.Default().
func NewService(db *store.DB, chartID int64, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{db: db, chartID: chartID, log: logger}
}

// Criteria selects what a statement covers.
type Criteria struct {
	YearID        int64
	CompareYearID int64             // 0 for no comparison
	ExcludeType   model.AccountType // TypeNone excludes nothing
	OnlyType      model.AccountType // TypeNone keeps every type
	CategoryID    int64             // 0 for every category
}

// Node is one account of the statement tree. Balance and Compare include the
// balances of the node's children.
type Node struct {
	Code     string            `json:"code"`
	Name     string            `json:"name"`
	Type     model.AccountType `json:"type"`
	Balance  int64             `json:"balance"`
	Compare  int64             `json:"compare,omitempty"`
	Diff     int64             `json:"diff,omitempty"`
	Children []*Node           `json:"children,omitempty"`
}

// Section holds the top-level nodes of one account type.
type Section struct {
	Type    model.AccountType `json:"type"`
	Total   int64             `json:"total"`
	Compare int64             `json:"compare,omitempty"`
	Diff    int64             `json:"diff,omitempty"`
	Nodes   []*Node           `json:"nodes"`
}

// Statement is a hierarchical balance statement. Amounts follow the
// credit − debit sign convention; Result is the revenue section total plus
// the expense section total.
type Statement struct {
	Year          model.FiscalYear  `json:"year"`
	Compare       *model.FiscalYear `json:"compare,omitempty"`
	Criteria      Criteria          `json:"-"`
	Sections      []Section         `json:"sections"`
	Result        int64             `json:"result"`
	CompareResult int64             `json:"compare_result,omitempty"`
}

// Section returns the section of type t, if present.
func (st *Statement) Section(t model.AccountType) (Section, bool) {
	for _, s := range st.Sections {
		if s.Type == t {
			return s, true
		}
	}
	return Section{}, false
}

// Find returns the node with code anywhere in the tree.
func (st *Statement) Find(code string) (*Node, bool) {
	var walk func(nodes []*Node) *Node
	walk = func(nodes []*Node) *Node {
		for _, n := range nodes {
			if n.Code == code {
				return n
			}
			if found := walk(n.Children); found != nil {
				return found
			}
		}
		return nil
	}
	for _, s := range st.Sections {
		if n := walk(s.Nodes); n != nil {
			return n, true
		}
	}
	return nil, false
}

// Statement builds the statement tree: accounts in chart order, grouped by
// type, each account rolled into its nearest ancestor of the same type.
// Accounts with nothing to show are left out.
func (s *Service) Statement(ctx context.Context, c Criteria) (*Statement, error) {
	q := s.db.Q()
	if c.YearID == 0 {
		return nil, model.Invalid("id_year", "a fiscal year is required")
	}
	if c.CompareYearID == c.YearID {
		return nil, model.Invalid("compare", "cannot compare a fiscal year with itself")
	}

	st := &Statement{Criteria: c}
	var err error
	if st.Year, err = store.GetYear(ctx, q, c.YearID); err != nil {
		return nil, err
	}
	if c.CompareYearID != 0 {
		cmp, err := store.GetYear(ctx, q, c.CompareYearID)
		if err != nil {
			return nil, err
		}
		st.Compare = &cmp
	}

	accts, err := store.ListAccounts(ctx, q, store.Where().Eq("a.id_chart", s.chartID))
	if err != nil {
		return nil, err
	}

	current, err := s.balances(ctx, q, c, c.YearID)
	if err != nil {
		return nil, err
	}
	var compare map[int64]int64
	if st.Compare != nil {
		if compare, err = s.balances(ctx, q, c, c.CompareYearID); err != nil {
			return nil, err
		}
	}

	codes := make(map[model.AccountType]map[string]bool)
	nodes := make(map[string]*Node)
	var included []model.Account
	for _, a := range accts {
		if a.Type == model.TypeNone || a.Type == c.ExcludeType {
			continue
		}
		if c.OnlyType != model.TypeNone && a.Type != c.OnlyType {
			continue
		}
		if codes[a.Type] == nil {
			codes[a.Type] = make(map[string]bool)
		}
		codes[a.Type][a.Code] = true
		nodes[a.Code] = &Node{Code: a.Code, Name: a.Name, Type: a.Type, Balance: current[a.ID], Compare: compare[a.ID]}
		included = append(included, a)
	}

	roots := make(map[model.AccountType][]*Node)
	for _, a := range included {
		n := nodes[a.Code]
		if parent, ok := accounts.ParentCode(codes[a.Type], a.Code); ok {
			nodes[parent].Children = append(nodes[parent].Children, n)
			continue
		}
		roots[a.Type] = append(roots[a.Type], n)
	}

	for _, t := range model.AccountTypes {
		sec := Section{Type: t}
		for _, n := range roots[t] {
			if !rollUp(n) {
				continue
			}
			sec.Total += n.Balance
			sec.Compare += n.Compare
			sec.Nodes = append(sec.Nodes, n)
		}
		if len(sec.Nodes) == 0 {
			continue
		}
		sec.Diff = sec.Total - sec.Compare
		st.Sections = append(st.Sections, sec)

		if t == model.TypeRevenue || t == model.TypeExpense {
			st.Result += sec.Total
			st.CompareResult += sec.Compare
		}
	}

	s.log.Debug("statement built", "year", c.YearID, "compare", c.CompareYearID, "sections", len(st.Sections))
	return st, nil
}

// VolunteeringStatement builds the volunteering accounts statement for the
// same years and category as an already built general statement.
func (s *Service) VolunteeringStatement(ctx context.Context, c Criteria, general *Statement) (*Statement, error) {
	if general == nil {
		return nil, errors.New("volunteering statement: general statement is required")
	}
	vc := Criteria{
		YearID:     general.Year.ID,
		OnlyType:   model.TypeVolunteering,
		CategoryID: c.CategoryID,
	}
	if general.Compare != nil {
		vc.CompareYearID = general.Compare.ID
	}
	return s.Statement(ctx, vc)
}

// balances returns the credit − debit balance per account ID for one year.
func (s *Service) balances(ctx context.Context, q store.Querier, c Criteria, yearID int64) (map[int64]int64, error) {
	f := store.Where().Eq("a.id_chart", s.chartID).Eq("t.id_year", yearID)
	if c.CategoryID != 0 {
		f.Eq("t.id_category", c.CategoryID)
	}

	totals, err := store.AccountTotals(ctx, q, f)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]int64, len(totals))
	for _, t := range totals {
		out[t.AccountID] = t.Balance()
	}
	return out, nil
}

// rollUp adds children into n depth-first, drops empty children and reports
// whether n has anything to show.
func rollUp(n *Node) bool {
	kept := n.Children[:0]
	for _, child := range n.Children {
		if !rollUp(child) {
			continue
		}
		n.Balance += child.Balance
		n.Compare += child.Compare
		kept = append(kept, child)
	}
	n.Children = kept
	n.Diff = n.Balance - n.Compare
	return n.Balance != 0 || n.Compare != 0 || len(n.Children) > 0
}
