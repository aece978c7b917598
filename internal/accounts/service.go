// Package accounts manages the chart of accounts.
package accounts

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/cleared-dev/compta/internal/model"
	"github.com/cleared-dev/compta/internal/store"
)

var codePattern = regexp.MustCompile(`^[0-9A-Z]+$`)

// Service provides the chart of accounts over the store.
type Service struct {
	db  *store.DB
	log *slog.Logger
}

// NewService creates a chart of accounts Service.
func NewService(db *store.DB, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{db: db, log: logger}
}

// Group is the list of postable accounts of one type.
type Group struct {
	Type     model.AccountType `json:"type"`
	Name     string            `json:"name"`
	Accounts []model.Account   `json:"accounts"`
}

// CreateChart creates an empty chart and returns its ID.
func (s *Service) CreateChart(ctx context.Context, label, country string) (int64, error) {
	if strings.TrimSpace(label) == "" {
		return 0, model.Invalid("label", "chart label is required")
	}
	return store.InsertChart(ctx, s.db.Q(), model.Chart{Label: strings.TrimSpace(label), Country: country})
}

// ListAll returns all accounts of a chart, ordered by code (case-insensitive).
func (s *Service) ListAll(ctx context.Context, chartID int64) ([]model.Account, error) {
	return store.ListAccounts(ctx, s.db.Q(), store.Where().Eq("a.id_chart", chartID))
}

// ListByType returns the accounts of one type.
func (s *Service) ListByType(ctx context.Context, chartID int64, t model.AccountType) ([]model.Account, error) {
	if !t.Valid() {
		return nil, model.Invalid("type", "invalid account type %d", int(t))
	}
	return store.ListAccounts(ctx, s.db.Q(), store.Where().Eq("a.id_chart", chartID).Eq("a.type", int(t)))
}

// ListCommon returns accounts used in general accounting: typed accounts
// that are neither analytical nor volunteering.
func (s *Service) ListCommon(ctx context.Context, chartID int64) ([]model.Account, error) {
	return store.ListAccounts(ctx, s.db.Q(), store.Where().
		Eq("a.id_chart", chartID).
		Ne("a.type", int(model.TypeNone)).
		NotIn("a.type", int(model.TypeAnalytical), int(model.TypeVolunteering)))
}

// ListGroupedByType returns postable accounts grouped by type, in type order.
// Type group headers (type_parent) and structural accounts are left out.
func (s *Service) ListGroupedByType(ctx context.Context, chartID int64) ([]Group, error) {
	accts, err := store.ListAccountsByType(ctx, s.db.Q(), store.Where().
		Eq("a.id_chart", chartID).
		Ne("a.type", int(model.TypeNone)).
		Eq("a.type_parent", 0))
	if err != nil {
		return nil, err
	}

	var groups []Group
	for _, a := range accts {
		if len(groups) == 0 || groups[len(groups)-1].Type != a.Type {
			groups = append(groups, Group{Type: a.Type, Name: a.Type.String()})
		}
		g := &groups[len(groups)-1]
		g.Accounts = append(g.Accounts, a)
	}
	return groups, nil
}

// TypeParents maps each type to the code of its top-level group account.
func (s *Service) TypeParents(ctx context.Context, chartID int64) (map[model.AccountType]string, error) {
	accts, err := store.ListAccountsByType(ctx, s.db.Q(), store.Where().Eq("a.id_chart", chartID).Eq("a.type_parent", 1))
	if err != nil {
		return nil, err
	}
	out := make(map[model.AccountType]string, len(accts))
	for _, a := range accts {
		if _, ok := out[a.Type]; !ok {
			out[a.Type] = a.Code
		}
	}
	return out, nil
}

// Get returns an account by code, or model.ErrAccountNotFound.
func (s *Service) Get(ctx context.Context, chartID int64, code string) (model.Account, error) {
	return store.AccountByCode(ctx, s.db.Q(), chartID, model.NormalizeCode(code))
}

// ResolveParent returns the nearest existing ancestor of code, found by
// stripping trailing characters. ok is false for root accounts.
func (s *Service) ResolveParent(ctx context.Context, chartID int64, code string) (parent model.Account, ok bool, err error) {
	code = model.NormalizeCode(code)
	prefixes := make([]any, 0, len(code))
	for i := len(code) - 1; i > 0; i-- {
		prefixes = append(prefixes, code[:i])
	}

	candidates, err := store.ListAccounts(ctx, s.db.Q(), store.Where().Eq("a.id_chart", chartID).In("a.code", prefixes...))
	if err != nil {
		return model.Account{}, false, err
	}
	for _, a := range candidates {
		if len(a.Code) > len(parent.Code) {
			parent, ok = a, true
		}
	}
	return parent, ok, nil
}

// Create adds an account to a chart and returns its ID.
func (s *Service) Create(ctx context.Context, a model.Account) (int64, error) {
	a, err := validate(a)
	if err != nil {
		return 0, err
	}

	var id int64
	err = s.db.Tx(ctx, func(q store.Querier) error {
		if _, err := store.AccountByCode(ctx, q, a.ChartID, a.Code); err == nil {
			return model.Invalid("code", "account %s already exists", a.Code)
		}
		id, err = store.InsertAccount(ctx, q, a)
		return err
	})
	if err != nil {
		return 0, err
	}
	s.log.Debug("account created", "chart", a.ChartID, "code", a.Code, "type", a.Type.String())
	return id, nil
}

// Update changes name, description and type of an existing account.
// Accounts referenced by a closed year are immutable.
func (s *Service) Update(ctx context.Context, a model.Account) error {
	a, err := validate(a)
	if err != nil {
		return err
	}

	return s.db.Tx(ctx, func(q store.Querier) error {
		cur, err := store.AccountByCode(ctx, q, a.ChartID, a.Code)
		if err != nil {
			return err
		}
		locked, err := store.AccountInClosedYear(ctx, q, cur.ID)
		if err != nil {
			return err
		}
		if locked {
			return fmt.Errorf("account %s: %w", a.Code, model.ErrClosedPeriod)
		}
		a.ID = cur.ID
		return store.UpdateAccount(ctx, q, a)
	})
}

// Delete removes an account that no line references.
func (s *Service) Delete(ctx context.Context, chartID int64, code string) error {
	return s.db.Tx(ctx, func(q store.Querier) error {
		a, err := store.AccountByCode(ctx, q, chartID, model.NormalizeCode(code))
		if err != nil {
			return err
		}
		used, err := store.AccountReferenced(ctx, q, a.ID)
		if err != nil {
			return err
		}
		if used {
			return fmt.Errorf("account %s: %w", a.Code, model.ErrAccountInUse)
		}
		return store.DeleteAccount(ctx, q, a.ID)
	})
}

// Seed inserts accounts into a chart atomically, skipping codes that already exist.
// It returns the number of accounts created.
func (s *Service) Seed(ctx context.Context, chartID int64, accts []model.Account) (int, error) {
	created := 0
	err := s.db.Tx(ctx, func(q store.Querier) error {
		for _, a := range accts {
			a.ChartID = chartID
			acct, err := validate(a)
			if err != nil {
				return err
			}
			if _, err := store.AccountByCode(ctx, q, chartID, acct.Code); err == nil {
				continue
			}
			if _, err := store.InsertAccount(ctx, q, acct); err != nil {
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.log.Info("chart seeded", "chart", chartID, "created", created)
	return created, nil
}

// Import reads a chart CSV and seeds it into chartID.
func (s *Service) Import(ctx context.Context, chartID int64, r io.Reader) (int, error) {
	accts, err := ReadAccounts(r)
	if err != nil {
		return 0, err
	}
	return s.Seed(ctx, chartID, accts)
}

// Export writes a chart as CSV.
func (s *Service) Export(ctx context.Context, chartID int64, w io.Writer) error {
	accts, err := s.ListAll(ctx, chartID)
	if err != nil {
		return err
	}
	return WriteAccounts(w, accts)
}

// ParentCode returns the longest proper prefix of code present in codes.
func ParentCode(codes map[string]bool, code string) (string, bool) {
	for i := len(code) - 1; i > 0; i-- {
		if codes[code[:i]] {
			return code[:i], true
		}
	}
	return "", false
}

func validate(a model.Account) (model.Account, error) {
	a.Code = model.NormalizeCode(a.Code)
	a.Name = strings.TrimSpace(a.Name)
	if !codePattern.MatchString(a.Code) {
		return a, model.Invalid("code", "invalid account code %q", a.Code)
	}
	if a.Name == "" {
		return a, model.Invalid("name", "account %s: name is required", a.Code)
	}
	if !a.Type.Valid() {
		return a, model.Invalid("type", "account %s: invalid type %d", a.Code, int(a.Type))
	}
	if a.ChartID == 0 {
		return a, model.Invalid("chart", "account %s: chart is required", a.Code)
	}
	return a, nil
}
