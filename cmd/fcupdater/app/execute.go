package app

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/fcupdater"
	"github.com/agentstation/fcupdater/internal/cmd/output"
	"github.com/agentstation/fcupdater/pkg/constants"
	"github.com/agentstation/fcupdater/pkg/errors"
	"github.com/agentstation/fcupdater/pkg/logging"
)

// runFlags are the flags of a reconciliation run.
type runFlags struct {
	master        string
	sourcesDir    string
	sourcesPrefix string
	output        string
	inPlace       bool
	noChangeLog   bool
	dryRun        bool
	fastSave      bool
}

// Execute runs the fcupdater CLI with the given arguments.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	flags := &runFlags{}

	rootCmd := &cobra.Command{
		Use:     "fcupdater",
		Short:   "Fuel-station master workbook updater",
		Version: a.version,
		Long: `fcupdater reconciles a fuel-station master workbook against the
regional source workbooks exported from the price service.

Stations are matched by normalized address. Changed prices and details are
updated in place, new stations are appended, closed stations are removed and
every change is recorded in the 변경내역 sheet. The result is written next to
the master as <master>_updated_<date>.xlsx unless --in-place is given.`,
		Args:              cobra.NoArgs,
		PersistentPreRunE: a.setupCommand,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runUpdate(cmd.Context(), flags)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config file (default is $HOME/.fcupdater.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringP("format", "f", "", "summary format: table, json, yaml")
	rootCmd.PersistentFlags().String("log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")

	// Run flags
	rootCmd.Flags().StringVar(&flags.master, "master", constants.DefaultMasterPath, "master workbook (.xlsx or .xls)")
	rootCmd.Flags().StringVar(&flags.sourcesDir, "sources-dir", constants.DefaultSourcesDir, "directory searched for source workbooks")
	rootCmd.Flags().StringVar(&flags.sourcesPrefix, "sources-prefix", constants.DefaultSourcesPrefix, "file name prefix of source workbooks")
	rootCmd.Flags().StringVar(&flags.output, "output", "", "output path (default <master>_updated_<date>.xlsx)")
	rootCmd.Flags().BoolVar(&flags.inPlace, "in-place", false, "overwrite the master after backing it up")
	rootCmd.Flags().BoolVar(&flags.noChangeLog, "no-change-log", false, "do not append to the change-log sheet")
	rootCmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "report changes without writing anything")
	rootCmd.Flags().BoolVar(&flags.fastSave, "fast-save", false, "skip integrity verification of the written workbook")

	rootCmd.SetVersionTemplate("fcupdater {{.Version}}\n")
	rootCmd.SetOut(a.out)

	rootCmd.AddCommand(a.NewHistoryCommand())
	rootCmd.AddCommand(a.NewDepsCommand())
	rootCmd.AddCommand(a.NewVersionCommand())

	return rootCmd
}

// setupCommand is called before any command runs.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	if path := mustGetString(cmd, "config"); path != "" {
		cfg, err := LoadConfig(path)
		if err != nil {
			return err
		}
		a.config = cfg
	}

	a.config.UpdateFromFlags(
		mustGetBool(cmd, "verbose"),
		mustGetBool(cmd, "quiet"),
		mustGetBool(cmd, "no-color"),
		mustGetString(cmd, "format"),
		mustGetString(cmd, "log-level"),
	)

	if _, err := output.ParseFormat(a.config.Format); err != nil {
		return errors.NewValidationError("format", a.config.Format, err.Error())
	}

	logger := NewLogger(a.config)
	a.logger = &logger
	return nil
}

// runUpdate performs one reconciliation and prints its summary.
func (a *App) runUpdate(ctx context.Context, flags *runFlags) error {
	u, err := a.Updater(
		fcupdater.WithMaster(flags.master),
		fcupdater.WithSources(flags.sourcesDir, flags.sourcesPrefix),
		fcupdater.WithOutput(flags.output),
		fcupdater.WithInPlace(flags.inPlace),
		fcupdater.WithChangeLog(!flags.noChangeLog),
		fcupdater.WithDryRun(flags.dryRun),
		fcupdater.WithFastSave(flags.fastSave),
	)
	if err != nil {
		return err
	}

	summary, err := u.Run(logging.WithLogger(ctx, a.logger))
	if err != nil {
		return err
	}
	return a.print(summary)
}

// print writes data in the configured format.
func (a *App) print(data any) error {
	formatter := output.NewFormatter(output.DetectFormat(a.config.Format, a.out))
	return formatter.Format(a.out, data)
}

// ExitOnError prints the error and exits. Argument conflicts are usage
// errors and exit with 2; everything else exits with 1.
func ExitOnError(err error) {
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.IsArgumentConflict(err):
		return 2
	default:
		return 1
	}
}

// mustGetBool retrieves a boolean flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

// mustGetString retrieves a string flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}
