package cli

import (
	"context"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// NewFetchCommand runs one API fetch without the TUI and prints the resulting state.
// The request is bounded only by api.timeout and by cancellation of the command
// context (SIGINT/SIGTERM in main). The state is printed after the fetch settled.
func NewFetchCommand(root *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch [url]",
		Short: "Fetch one book from the API and print the resulting state",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(root)
			if err != nil {
				return err
			}
			url := cfg.API.URL
			if len(args) == 1 {
				url = args[0]
			}

			rt, err := openRuntime(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer rt.Close()

			task := rt.coord.FetchBook(rt.ctx, rt.store, url)
			// The task completes once its settlement is dispatched, cancelled or not.
			_, fetchErr := task.Result(context.Background())

			out, err := jsonAPI.MarshalIndent(rt.store.State(), "", "  ")
			if err != nil {
				return fmt.Errorf("encode state: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))

			if fetchErr != nil {
				return fmt.Errorf("fetch failed: %w", fetchErr)
			}
			return nil
		},
	}
	return cmd
}
