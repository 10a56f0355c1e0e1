package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/robert-claypool/dotfiles/internal/db"
	"github.com/robert-claypool/dotfiles/internal/history"
	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List recent hook dispatches (requires history.enabled)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig(cmd)
			limit, _ := cmd.Flags().GetInt("limit")
			sessionID, _ := cmd.Flags().GetString("session")
			return listHistory(cmd.Context(), cfg.History.Path, history.Filter{SessionID: sessionID, Limit: limit}, cmd.OutOrStdout())
		},
	}
	historyCmd.Flags().IntP("limit", "n", 20, "Maximum number of dispatches to show")
	historyCmd.Flags().StringP("session", "s", "", "Only show dispatches for this session id")
	return historyCmd
}

func listHistory(ctx context.Context, path string, filter history.Filter, out io.Writer) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(out, mutedStyle.Render("no history recorded; set history.enabled to true to start journalling"))
		return nil
	}

	conn, err := db.Connect(ctx, path)
	if err != nil {
		return err
	}
	defer conn.Close()

	entries, err := history.NewService(conn).List(ctx, filter)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, mutedStyle.Render("no dispatches recorded"))
		return nil
	}

	for _, e := range entries {
		reset := ""
		if e.SessionReset {
			reset = mutedStyle.Render(" (new session)")
		}
		fmt.Fprintf(out, "%s  %-36s  %-16s  %-7s  %s -> %s%s\n",
			mutedStyle.Render(e.CreatedAt.Local().Format(time.DateTime)),
			e.SessionID,
			e.Event,
			e.Payload,
			pendingText(e.PendingBefore),
			pendingText(e.PendingAfter),
			reset,
		)
	}
	return nil
}
