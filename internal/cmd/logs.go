package cmd

import (
	"fmt"
	"regexp"
	"time"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/superchat/internal/config"
	"github.com/Iron-Ham/superchat/internal/logging"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "View the debug log",
	Long: `View and filter ~/.superchat/debug.log, written when a chat runs with
--debug or logging.enabled.

Examples:
  # Show the last 50 entries
  superchat logs

  # Everything from one chat, by session ID prefix
  superchat logs -s 3f2a -n 0

  # Warnings about slot 2 in the last hour
  superchat logs --level warn --slot 2 --since 1h

  # Search messages
  superchat logs --grep "timeout|failed"`,
	Args: cobra.NoArgs,
	RunE: runLogs,
}

var (
	logsSessionID string
	logsTail      int
	logsLevel     string
	logsSince     string
	logsGrep      string
	logsSlot      int
)

func init() {
	rootCmd.AddCommand(logsCmd)

	logsCmd.Flags().StringVarP(&logsSessionID, "session", "s", "", "Session ID prefix")
	logsCmd.Flags().IntVarP(&logsTail, "tail", "n", 50, "Number of entries to show (0 for all)")
	logsCmd.Flags().StringVar(&logsLevel, "level", "", "Filter by minimum level (debug/info/warn/error)")
	logsCmd.Flags().StringVar(&logsSince, "since", "", "Show entries since duration ago (e.g., 1h, 30m)")
	logsCmd.Flags().StringVar(&logsGrep, "grep", "", "Filter messages matching pattern (regex)")
	logsCmd.Flags().IntVar(&logsSlot, "slot", 0, "Filter by slot ordinal")
}

func runLogs(cmd *cobra.Command, args []string) error {
	filter, err := buildLogFilter(time.Now())
	if err != nil {
		return err
	}

	entries, err := logging.ReadEntries(config.StateDir())
	if err != nil {
		return err
	}
	entries = filter.Apply(entries)

	if logsTail > 0 && len(entries) > logsTail {
		entries = entries[len(entries)-logsTail:]
	}

	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(out, "No matching log entries.")
		return nil
	}
	for _, e := range entries {
		fmt.Fprintln(out, e.Format())
	}
	return nil
}

func buildLogFilter(now time.Time) (logging.Filter, error) {
	filter := logging.Filter{
		MinLevel:  logsLevel,
		SessionID: logsSessionID,
		Slot:      logsSlot,
	}

	if logsSince != "" {
		d, err := time.ParseDuration(logsSince)
		if err != nil {
			return filter, fmt.Errorf("invalid --since duration: %w", err)
		}
		filter.Since = now.Add(-d)
	}

	if logsGrep != "" {
		re, err := regexp.Compile(logsGrep)
		if err != nil {
			return filter, fmt.Errorf("invalid --grep pattern: %w", err)
		}
		filter.Pattern = re
	}
	return filter, nil
}
