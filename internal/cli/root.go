// Package cli builds the booklib command tree.
package cli

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/abelbrown/booklib/internal/config"
	"github.com/abelbrown/booklib/internal/otel"
	"github.com/abelbrown/booklib/internal/ui"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	APIURL     string
	Journal    string
	Trace      bool
}

// isTerminal reports whether stdout is a terminal. Swapped in tests.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd())) && term.IsTerminal(int(os.Stdin.Fd()))
}

// NewRootCommand creates the root command. Run without a subcommand it opens the TUI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "booklib",
		Short:         "booklib - a small book library",
		Long:          "Keep a list of books: add them by hand, pick a random classic, or fetch one from an API.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isTerminal() {
				return fmt.Errorf("booklib needs an interactive terminal; try 'booklib fetch' or 'booklib history'")
			}
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if opts.Trace {
				otel.SetTraceEnabled(true)
			}
			return runTUI(cmd, cfg)
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default ~/.booklib/config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.APIURL, "api-url", "", "endpoint for 'add random via API'")
	cmd.PersistentFlags().StringVar(&opts.Journal, "journal", "", "journal database path, ':memory:', or 'off'")
	cmd.Flags().BoolVar(&opts.Trace, "trace", false, "write every UI message to the event log")

	// Add subcommands
	cmd.AddCommand(NewFetchCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	return cmd
}

// loadConfig reads the config file, then applies flag overrides on top of env.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.ConfigPath == "" {
		cfg, err = config.Load()
	} else {
		cfg, err = config.LoadFrom(opts.ConfigPath)
	}
	if err != nil {
		return nil, err
	}

	if opts.APIURL != "" {
		cfg.API.URL = opts.APIURL
	}
	switch opts.Journal {
	case "":
	case "off":
		cfg.Journal.Enabled = false
	default:
		cfg.Journal.Enabled = true
		cfg.Journal.Path = opts.Journal
	}
	return cfg, nil
}

func runTUI(cmd *cobra.Command, cfg *config.Config) error {
	rt, err := openRuntime(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	rt.logger.Info(otel.KindStartup, "main", "tui")

	app := ui.NewAppWithConfig(ui.AppConfig{
		Store:         rt.store,
		Coord:         rt.coord,
		APIURL:        cfg.API.URL,
		ToastDuration: cfg.UI.ToastDuration,
		StartInList:   cfg.UI.StartInList,
		Context:       rt.ctx,
		Obs:           ui.ObsConfig{Logger: rt.logger, Ring: rt.ring},
	})

	program := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(rt.ctx))
	if _, err := program.Run(); err != nil {
		rt.logger.Error(otel.KindError, "main", err)
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
