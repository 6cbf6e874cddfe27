package app

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/agentstation/fcupdater/internal/config"
	"github.com/agentstation/fcupdater/internal/deps"
	"github.com/agentstation/fcupdater/pkg/errors"
	"github.com/agentstation/fcupdater/pkg/history"
)

// NewHistoryCommand creates the history command, which lists recorded runs.
func (a *App) NewHistoryCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs",
		Long: `History lists the runs recorded in the sqlite database named by the
history_db setting (` + config.EnvPrefix + `_HISTORY_DB), newest first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.config.HistoryDB == "" {
				return errors.NewConfigError("history", "history_db is not set", nil)
			}
			store, err := history.Open(cmd.Context(), a.config.HistoryDB)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			runs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return a.print(runs)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to show (0 for all)")
	return cmd
}

// NewDepsCommand creates the deps command, which reports the external
// helpers found on this system.
func (a *App) NewDepsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check external helpers",
		Long: `Deps reports whether the optional external helpers (date, iconv, unzip)
are installed. A missing helper is never fatal; fcupdater falls back to its
built-in implementation.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			statuses := deps.CheckAll(cmd.Context(), a.runner, a.config.Limits.CommandTimeout)
			if missing := deps.Missing(statuses); len(missing) > 0 {
				a.logger.Debug().Strs("missing", missing).Msg("Some helpers are not installed")
			}
			return a.print(statuses)
		},
	}
}

// NewVersionCommand creates the version command.
func (a *App) NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "fcupdater version %s\n", a.version)
			fmt.Fprintf(w, "commit: %s\n", a.commit)
			fmt.Fprintf(w, "built: %s\n", a.date)
			fmt.Fprintf(w, "built by: %s\n", a.builtBy)
			fmt.Fprintf(w, "go version: %s\n", runtime.Version())
			fmt.Fprintf(w, "platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}
