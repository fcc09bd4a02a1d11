package cli

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/abelbrown/booklib/internal/journal"
	"github.com/abelbrown/booklib/internal/state"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	Limit int
	Type  string
}

// NewHistoryCommand lists the newest journal entries.
func NewHistoryCommand(root *RootOptions) *cobra.Command {
	opts := &HistoryOptions{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently recorded actions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(root)
			if err != nil {
				return err
			}
			path := cfg.JournalPath()
			if path == "" {
				return errors.New("journal is disabled")
			}

			j, err := journal.Open(path)
			if err != nil {
				return err
			}
			defer j.Close()

			total, err := j.Count(state.ActionType(opts.Type))
			if err != nil {
				return err
			}
			entries, err := j.Recent(opts.Limit, state.ActionType(opts.Type))
			if err != nil {
				return err
			}

			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("SEQ", "TIME", "ACTION", "PAYLOAD")
			for _, e := range entries {
				t.Row(strconv.FormatInt(e.Seq, 10), e.At.Format(time.RFC3339), e.Type, e.Payload)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, t.String())
			fmt.Fprintf(out, "%d actions recorded\n", total)
			return nil
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "number of entries to show")
	cmd.Flags().StringVar(&opts.Type, "type", "", "only show this action type, e.g. books/addBook")
	return cmd
}
