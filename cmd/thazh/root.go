package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/entrhq/thazh/pkg/app"
	"github.com/entrhq/thazh/pkg/config"
	"github.com/entrhq/thazh/pkg/tui"
	"github.com/spf13/cobra"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	dataDir    string
	backend    string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "thazh",
		Short: "A tabbed web browser for the terminal",
		Long: `thazh browses the web from the terminal. Pages are rendered by a
Chromium instance; the terminal shows tabs, the address bar and load
progress. Bookmarks, history and settings persist between runs.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowser(cmd.Context(), cmd.ErrOrStderr(), opts)
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default ~/.thazh/config.yaml)")
	root.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "directory for the store and logs (default ~/.thazh)")
	root.PersistentFlags().StringVar(&opts.backend, "backend", "", "storage backend: file, sqlite or memory")

	root.AddCommand(
		newBookmarksCmd(opts),
		newHistoryCmd(opts),
		newSettingsCmd(opts),
		&cobra.Command{
			Use:   "version",
			Short: "Print the thazh version",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "thazh v%s\n", version)
			},
		},
	)
	return root
}

// loadConfig reads the config file and applies flag overrides.
func (o *globalOptions) loadConfig() (*config.Config, error) {
	path := o.configPath
	if path == "" && o.dataDir != "" {
		path = filepath.Join(o.dataDir, "config.yaml")
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if o.dataDir != "" {
		cfg.DataDir = o.dataDir
	}
	if o.backend != "" {
		cfg.Storage.Backend = o.backend
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, nil
}

// openApp opens the stores without starting a browser.
func (o *globalOptions) openApp(ctx context.Context) (*app.App, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	return app.Open(ctx, cfg)
}

// runBrowser starts Chromium and the terminal chrome. In debug verbosity the
// log file is named on exit.
func runBrowser(ctx context.Context, stderr io.Writer, opts *globalOptions) error {
	a, err := opts.openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	engine := a.NewEngine()
	if err := engine.Initialize(); err != nil {
		return fmt.Errorf("failed to start browser engine: %w", err)
	}
	defer engine.Shutdown()

	if err := a.StartSession(ctx, engine); err != nil {
		return err
	}

	err = tui.Run(ctx, tui.Deps{
		Session:          a.Session,
		Bookmarks:        a.Bookmarks,
		History:          a.History,
		Settings:         a.Settings,
		OnSettingsChange: func() { a.ApplyPolicy(engine) },
	})
	if a.Config.Logging.Verbosity == "debug" && a.LogPath() != "" {
		fmt.Fprintf(stderr, "Log: %s\n", a.LogPath())
	}
	return err
}

// confirm asks question on out and reads a yes/no answer from in.
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", question)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

// newClearCmd builds a destructive "clear" subcommand guarded by a prompt.
func newClearCmd(opts *globalOptions, short, question, done string, fn func(context.Context, *app.App) error) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes && !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), question) {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
				return nil
			}
			a, err := opts.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			if err := fn(cmd.Context(), a); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), done)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}
