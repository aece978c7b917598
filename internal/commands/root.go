package commands

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/compta/internal/buildinfo"
	"github.com/cleared-dev/compta/internal/clock"
	"github.com/cleared-dev/compta/internal/config"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&app{clock: clock.System{}})
}

// Execute runs the CLI on os.Args. The book is closed whatever the outcome.
func Execute(ctx context.Context) error {
	a := &app{clock: clock.System{}}
	return execute(ctx, a, newRootCommand(a))
}

// execute runs cmd and closes the book opened for it. cobra skips
// PersistentPostRunE when RunE fails, so the close is deferred here.
func execute(ctx context.Context, a *app, cmd *cobra.Command) (err error) {
	defer func() {
		if cerr := a.close(); err == nil {
			err = cerr
		}
	}()
	return cmd.ExecuteContext(ctx)
}

func newRootCommand(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "compta",
		Short:   "Double-entry bookkeeping for associations",
		Version: buildinfo.Summary(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.setupLogging(cmd.ErrOrStderr(), slog.LevelInfo)
			if cmd.Annotations[annotationNoBook] != "" {
				return nil
			}
			return a.open(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", config.FileName, "path to compta.yaml")
	rootCmd.PersistentFlags().StringVar(&a.envFile, "env", ".env", "optional .env file with COMPTA_* overrides")
	rootCmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(newInitCommand(a))
	rootCmd.AddCommand(newAccountCommand(a))
	rootCmd.AddCommand(newYearCommand(a))
	rootCmd.AddCommand(newTxCommand(a))
	rootCmd.AddCommand(newBalanceCommand(a))
	rootCmd.AddCommand(newReportCommand(a))

	return rootCmd
}
