package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/cleared-dev/compta/internal/accounts"
	"github.com/cleared-dev/compta/internal/amount"
	"github.com/cleared-dev/compta/internal/clock"
	"github.com/cleared-dev/compta/internal/config"
	"github.com/cleared-dev/compta/internal/ledger"
	"github.com/cleared-dev/compta/internal/model"
	"github.com/cleared-dev/compta/internal/reports"
	"github.com/cleared-dev/compta/internal/store"
	"github.com/cleared-dev/compta/internal/years"
)

// annotationNoBook marks commands that run without an opened book.
const annotationNoBook = "compta/no-book"

// app carries the global flags and the services of the opened book.
type app struct {
	configPath string
	envFile    string
	debug      bool

	clock  clock.Clock
	logOut io.Writer
	log    *slog.Logger
	cfg    *config.Config
	db     *store.DB
	chart  int64
	accts  *accounts.Service
	years  *years.Service
	ledger *ledger.Service
	report *reports.Service
}

func (a *app) setupLogging(w io.Writer, level slog.Level) {
	a.logOut = w
	if a.debug {
		level = slog.LevelDebug
	}
	a.log = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(a.log)
}

// open resolves the configuration and opens the book's database.
func (a *app) open(ctx context.Context) error {
	cfg, err := config.Resolve(a.configPath, a.envFile)
	if err != nil {
		return err
	}
	level, err := cfg.LogLevel()
	if err != nil {
		return err
	}
	a.setupLogging(a.logOut, level)

	db, err := store.Open(cfg.DatabasePath(a.configPath))
	if err != nil {
		return err
	}
	if _, err := store.GetChart(ctx, db.Q(), cfg.Book.ChartID); err != nil {
		db.Close()
		return fmt.Errorf("opening book: %w", err)
	}

	a.cfg = cfg
	a.db = db
	a.chart = cfg.Book.ChartID
	a.accts = accounts.NewService(db, a.log)
	a.years = years.NewService(db, a.clock, a.log)
	a.ledger = ledger.NewService(db, a.chart, a.clock, a.log)
	a.report = reports.NewService(db, a.chart, a.log)
	a.log.Debug("book opened", "path", db.Path(), "chart", a.chart)
	return nil
}

func (a *app) close() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}

// money formats minor units in the book's currency.
func (a *app) money(minor int64) string {
	currency := ""
	if a.cfg != nil {
		currency = a.cfg.Book.Currency
	}
	return amount.Format(minor, currency)
}

// resolveYear accepts a fiscal year ID or label; empty means the open year
// covering today.
func (a *app) resolveYear(ctx context.Context, ref string) (model.FiscalYear, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		y, ok, err := a.years.Now(ctx)
		if err != nil {
			return y, err
		}
		if !ok {
			return y, errors.New("no open fiscal year covers today, use --year")
		}
		return y, nil
	}

	all, err := a.years.List(ctx, a.chart)
	if err != nil {
		return model.FiscalYear{}, err
	}
	for _, y := range all {
		if y.Label == ref {
			return y, nil
		}
	}
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return a.years.Get(ctx, id)
	}
	return model.FiscalYear{}, fmt.Errorf("fiscal year %q: %w", ref, model.ErrNotFound)
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(model.DateFormat, s)
	if err != nil {
		return time.Time{}, model.Invalid("date", "invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, model.Invalid("id", "invalid identifier %q", s)
	}
	return id, nil
}
