package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/robert-claypool/dotfiles/internal/logging"
	"github.com/spf13/cobra"
)

func newLogsCmd() *cobra.Command {
	logsCmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the tail of the hook log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig(cmd)
			limit, _ := cmd.Flags().GetInt("limit")
			records, err := logging.Tail(cfg.Log.Path, limit)
			if err != nil {
				return err
			}
			printRecords(cmd.OutOrStdout(), records)
			return nil
		},
	}
	logsCmd.Flags().IntP("limit", "n", 50, "Maximum number of records to show")
	return logsCmd
}

func printRecords(out io.Writer, records []logging.Record) {
	if len(records) == 0 {
		fmt.Fprintln(out, mutedStyle.Render("log is empty"))
		return
	}
	for _, r := range records {
		keys := make([]string, 0, len(r.Attributes))
		for k := range r.Attributes {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		attrs := make([]string, 0, len(keys))
		for _, k := range keys {
			attrs = append(attrs, fmt.Sprintf("%s=%s", k, r.Attributes[k]))
		}

		fmt.Fprintf(out, "%s %-5s %s %s\n",
			mutedStyle.Render(r.Timestamp.Local().Format(time.DateTime)),
			levelText(r.Level),
			r.Message,
			mutedStyle.Render(strings.Join(attrs, " ")),
		)
	}
}
