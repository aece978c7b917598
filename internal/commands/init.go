package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/compta/internal/accounts"
	"github.com/cleared-dev/compta/internal/config"
	"github.com/cleared-dev/compta/internal/store"
)

func newInitCommand(a *app) *cobra.Command {
	var name, country string

	cmd := &cobra.Command{
		Use:         "init [directory]",
		Short:       "Initialize a new book with the default chart of accounts",
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{annotationNoBook: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd.Context(), a, cmd.OutOrStdout(), absDir, name, country)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "organization name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&country, "country", "FR", "organization country code")

	return cmd
}

func runInit(ctx context.Context, a *app, out io.Writer, dir, name, country string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("checking config: %w", err)
	}

	cfg := config.Default(name, country)
	db, err := store.Open(cfg.DatabasePath(cfgPath))
	if err != nil {
		return err
	}
	defer db.Close()

	svc := accounts.NewService(db, a.log)
	chartID, err := svc.CreateChart(ctx, name, country)
	if err != nil {
		return fmt.Errorf("creating chart: %w", err)
	}
	n, err := svc.Seed(ctx, chartID, accounts.DefaultChart())
	if err != nil {
		return fmt.Errorf("writing chart of accounts: %w", err)
	}

	cfg.Book.ChartID = chartID
	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Fprintf(out, "Initialized book %q at %s (%d accounts)\n", name, dir, n)
	return nil
}
