package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robert-claypool/dotfiles/internal/state"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newStateCmd() *cobra.Command {
	stateCmd := &cobra.Command{
		Use:   "state",
		Short: "Inspect or reset the stored session state",
		Args:  cobra.NoArgs,
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the stored session state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")
			store := newStore(cmd)
			return showState(cmd.Context(), store, cmd.OutOrStdout(), cmd.ErrOrStderr(), output)
		},
	}
	showCmd.Flags().StringP("output", "o", "text", "Output format: text, json or yaml")

	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Forget the current session and any pending compaction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := newStore(cmd)
			if res := store.Reset(cmd.Context()); !res.OK() {
				return res.Err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "state reset:", store.Path())
			return nil
		},
	}

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the state file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), newStore(cmd).Path())
			return nil
		},
	}

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Print the session state every time a hook invocation changes it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return watchState(ctx, newStore(cmd), cmd.OutOrStdout())
		},
	}

	stateCmd.AddCommand(showCmd, resetCmd, pathCmd, watchCmd)
	return stateCmd
}

func newStore(cmd *cobra.Command) *state.Store {
	cfg := loadConfig(cmd)
	return state.NewStore(cfg.State.Path, &state.Options{NoLock: !cfg.State.Lock})
}

func showState(ctx context.Context, store *state.Store, out, errOut io.Writer, output string) error {
	res := store.Load(ctx)
	if res.Err != nil && !errors.Is(res.Err, state.ErrNoState) {
		fmt.Fprintln(errOut, warnStyle.Render(fmt.Sprintf("warning: %v (showing default)", res.Err)))
	}

	switch output {
	case "json":
		data, err := json.MarshalIndent(res.State, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal state: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	case "yaml":
		data, err := yaml.Marshal(res.State)
		if err != nil {
			return fmt.Errorf("failed to marshal state: %w", err)
		}
		_, err = out.Write(data)
		return err
	case "text", "":
	default:
		return fmt.Errorf("unsupported output %q", output)
	}

	fmt.Fprintln(out, field("state file", store.Path()))
	fmt.Fprintln(out, field("session", sessionText(res.State)))
	fmt.Fprintln(out, field("compaction", pendingText(res.State.CompactionPending)))
	return nil
}

func sessionText(st state.SessionState) string {
	id, ok := st.Session()
	switch {
	case !ok:
		return mutedStyle.Render("(none)")
	case id == "":
		return mutedStyle.Render(`("")`)
	default:
		return id
	}
}

// watchState prints the current record, then one line per change until ctx
// is done.
func watchState(ctx context.Context, store *state.Store, out io.Writer) error {
	dir := filepath.Dir(store.Path())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create state dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	last := store.Load(ctx).State
	printWatchLine(out, last)

	name := filepath.Base(store.Path())
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != name || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			res := store.Load(ctx)
			if res.Err != nil || sameState(res.State, last) {
				continue
			}
			last = res.State
			printWatchLine(out, last)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch error: %w", err)
		}
	}
}

func printWatchLine(out io.Writer, st state.SessionState) {
	fmt.Fprintf(out, "%s  %s  %s\n",
		mutedStyle.Render(time.Now().Format(time.TimeOnly)),
		sessionText(st),
		pendingText(st.CompactionPending),
	)
}

func sameState(a, b state.SessionState) bool {
	aID, aOK := a.Session()
	bID, bOK := b.Session()
	return aOK == bOK && aID == bID && a.CompactionPending == b.CompactionPending
}
