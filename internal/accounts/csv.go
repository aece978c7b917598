package accounts

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cleared-dev/compta/internal/model"
)

// Columns of a chart CSV, in export order. On import they are matched by
// header name; only code and name are required.
var Columns = []string{"code", "name", "type", "type_parent", "description"}

// ReadAccounts reads a chart CSV. An empty input yields no accounts.
func ReadAccounts(r io.Reader) ([]model.Account, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV header: %w", err)
	}
	index, err := columnIndex(header)
	if err != nil {
		return nil, err
	}
	cr.FieldsPerRecord = len(header)

	var accounts []model.Account
	for row := 2; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return accounts, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading accounts CSV: %w", err)
		}

		acct, err := UnmarshalAccount(index, rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		accounts = append(accounts, acct)
	}
}

// columnIndex maps known column names to their position in header.
func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		if _, dup := index[name]; dup {
			return nil, fmt.Errorf("duplicate column %q", name)
		}
		index[name] = i
	}
	for _, required := range Columns[:2] {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}
	return index, nil
}

// WriteAccounts writes a chart CSV with the Columns header.
func WriteAccounts(w io.Writer, accounts []model.Account) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, acct := range accounts {
		if err := cw.Write(MarshalAccount(acct)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalAccount converts an Account to a record in Columns order.
// Structural accounts leave the type blank.
func MarshalAccount(acct model.Account) []string {
	typ := ""
	if acct.Type != model.TypeNone {
		typ = acct.Type.String()
	}
	typeParent := ""
	if acct.TypeParent {
		typeParent = "1"
	}
	return []string{acct.Code, acct.Name, typ, typeParent, acct.Description}
}

// UnmarshalAccount converts a record to an Account, reading fields through
// index as built from the header row.
func UnmarshalAccount(index map[string]int, record []string) (model.Account, error) {
	field := func(name string) string {
		if i, ok := index[name]; ok && i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}

	typ, err := model.ParseAccountType(field("type"))
	if err != nil {
		return model.Account{}, fmt.Errorf("parsing type: %w", err)
	}

	var typeParent bool
	if v := field("type_parent"); v != "" {
		if typeParent, err = strconv.ParseBool(v); err != nil {
			return model.Account{}, fmt.Errorf("parsing type_parent %q: %w", v, err)
		}
	}

	return model.Account{
		Code:        model.NormalizeCode(field("code")),
		Name:        field("name"),
		Type:        typ,
		TypeParent:  typeParent,
		Description: field("description"),
	}, nil
}
