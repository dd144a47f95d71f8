package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/modkit/swfpatch/internal/history"
)

// HistoryEntry is one recorded batch outcome.
type HistoryEntry struct {
	RecordedAt string `json:"recorded_at"`
	Name       string `json:"name"`
	Status     string `json:"status"`
	Output     string `json:"output,omitempty"`
	Error      string `json:"error,omitempty"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:           "history <database>",
		Short:         "Show recent batch entry outcomes",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(rootOpts, args[0], limit, cmd)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of entries to show")
	return cmd
}

func runHistory(opts *RootOptions, dbPath string, limit int, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	store, err := history.Open(dbPath)
	if err != nil {
		_ = formatter.Error("HISTORY", err.Error(), nil)
		return WrapExitError(ExitCommandError, "open history database", err)
	}
	defer store.Close()

	entries, err := store.Recent(limit)
	if err != nil {
		_ = formatter.Error("HISTORY", err.Error(), nil)
		return WrapExitError(ExitCommandError, "query history database", err)
	}

	if formatter.Format == "json" {
		out := make([]HistoryEntry, 0, len(entries))
		for _, e := range entries {
			out = append(out, HistoryEntry{
				RecordedAt: e.RecordedAt.Format(time.RFC3339),
				Name:       e.Name,
				Status:     e.Status,
				Output:     e.Output,
				Error:      e.Error,
			})
		}
		return formatter.Success(out)
	}

	for _, e := range entries {
		mark := "✓"
		detail := e.Output
		if e.Status == "failed" {
			mark = "✗"
			detail = e.Error
		}
		fmt.Fprintf(formatter.Writer, "%s %s  %s  %s\n",
			mark, e.RecordedAt.Format(time.RFC3339), e.Name, detail)
	}
	return nil
}
