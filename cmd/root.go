package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/robert-claypool/dotfiles/internal/config"
	"github.com/robert-claypool/dotfiles/internal/db"
	"github.com/robert-claypool/dotfiles/internal/history"
	"github.com/robert-claypool/dotfiles/internal/hook"
	"github.com/robert-claypool/dotfiles/internal/logging"
	"github.com/robert-claypool/dotfiles/internal/payload"
	"github.com/robert-claypool/dotfiles/internal/state"
	"github.com/robert-claypool/dotfiles/internal/version"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   config.AppName,
		Short: "Claude Code hook that re-injects the working agreement after compaction",
		Long: `context-reminder is invoked by Claude Code on SessionStart, PreCompact and
UserPromptSubmit. It reads the hook event from stdin and prints either the full
reminder, the compact reminder, or nothing, tracking whether a compaction is
pending for the current session in a small state file.

Run without a subcommand it behaves as the hook and always exits 0. The
subcommands inspect the state, the dispatch history and the hook log.`,
		// The host's hook command line may carry extra words; they are logged
		// and ignored so the hook never reports a failure.
		Args:               cobra.ArbitraryArgs,
		FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
		SilenceUsage:       true,
		SilenceErrors:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flag("version").Changed {
				fmt.Fprintln(cmd.OutOrStdout(), version.Version)
				return nil
			}

			configFile, _ := cmd.Flags().GetString("config")
			debug, _ := cmd.Flags().GetBool("debug")
			runHook(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), configFile, debug, args)
			return nil
		},
	}

	rootCmd.Flags().BoolP("version", "v", false, "Version")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Config file (default is $XDG_CONFIG_HOME/context-reminder/config.json)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Debug logging")

	rootCmd.AddCommand(newStateCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newLogsCmd())
	return rootCmd
}

// runHook handles a single hook invocation. Every problem is logged to the
// hook log and absorbed; only the reminder reaches out.
func runHook(ctx context.Context, in io.Reader, out io.Writer, configFile string, debug bool, extraArgs []string) hook.Outcome {
	cfg, cfgErr := config.Load(configFile, debug)

	closer, logErr := logging.Setup(cfg.Log.Path, cfg.Log.Level)
	defer closer.Close()

	logger := slog.Default().With("invocation", uuid.NewString())
	if logErr != nil {
		logger.Warn("log setup failed", "error", logErr)
	}
	if len(extraArgs) > 0 {
		logger.Warn("ignoring extra arguments", "args", extraArgs)
	}
	if cfgErr != nil {
		logger.Warn("config problems, using defaults where needed", "error", cfgErr)
	}

	payloads, err := payload.Load(cfg.Payload.FullFile, cfg.Payload.CompactFile)
	if err != nil {
		logger.Warn("payload override ignored", "error", err)
	}

	opts := hook.Options{
		Payloads: &payloads,
		Format:   cfg.Output.Format,
		Logger:   logger,
	}
	if cfg.History.Enabled {
		opts.Journal = &lazyJournal{path: cfg.History.Path}
	}

	store := state.NewStore(cfg.State.Path, &state.Options{NoLock: !cfg.State.Lock})
	return hook.NewDispatcher(store, opts).Handle(ctx, in, out)
}

// lazyJournal opens the history database only when there is something to
// record, so ignored input never touches it.
type lazyJournal struct {
	path string
}

func (j *lazyJournal) Record(ctx context.Context, entry history.Entry) (history.Entry, error) {
	conn, err := db.Connect(ctx, j.path)
	if err != nil {
		return history.Entry{}, err
	}
	defer conn.Close()
	return history.NewService(conn).Record(ctx, entry)
}

// loadConfig is used by the inspection subcommands, which report config
// problems on stderr instead of the hook log.
func loadConfig(cmd *cobra.Command) *config.Config {
	configFile, _ := cmd.Flags().GetString("config")
	debug, _ := cmd.Flags().GetBool("debug")
	cfg, err := config.Load(configFile, debug)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
	}
	return cfg
}

func Execute() {
	err := newRootCmd().Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
