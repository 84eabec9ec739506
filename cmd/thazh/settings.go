package main

import (
	"fmt"
	"strconv"

	"github.com/entrhq/thazh/pkg/app"
	"github.com/entrhq/thazh/pkg/settings"
	"github.com/spf13/cobra"
)

func newSettingsCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show and change browser settings",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print every setting",
			Args:  cobra.NoArgs,
			RunE: withApp(opts, func(cmd *cobra.Command, a *app.App, args []string) error {
				printSettings(cmd, a.Settings.Current())
				return nil
			}),
		},
		&cobra.Command{
			Use:       "set <name> <true|false>",
			Short:     "Change a setting",
			Args:      cobra.ExactArgs(2),
			ValidArgs: settings.Names(),
			RunE: withApp(opts, func(cmd *cobra.Command, a *app.App, args []string) error {
				value, err := strconv.ParseBool(args[1])
				if err != nil {
					return fmt.Errorf("invalid value %q for %s (must be true or false)", args[1], args[0])
				}
				s, err := a.Settings.Set(cmd.Context(), args[0], value)
				if err != nil {
					return err
				}
				printSettings(cmd, s)
				return nil
			}),
		},
		&cobra.Command{
			Use:       "toggle <name>",
			Short:     "Flip a setting",
			Args:      cobra.ExactArgs(1),
			ValidArgs: settings.Names(),
			RunE: withApp(opts, func(cmd *cobra.Command, a *app.App, args []string) error {
				s, err := a.Settings.Toggle(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				printSettings(cmd, s)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Restore default settings",
			Args:  cobra.NoArgs,
			RunE: withApp(opts, func(cmd *cobra.Command, a *app.App, args []string) error {
				s, err := a.Settings.Reset(cmd.Context())
				if err != nil {
					return err
				}
				printSettings(cmd, s)
				return nil
			}),
		},
	)
	return cmd
}

func printSettings(cmd *cobra.Command, s settings.Settings) {
	data := s.Data()
	rows := make([][]string, 0, len(data))
	for _, name := range settings.Names() {
		rows = append(rows, []string{name, fmt.Sprint(data[name])})
	}
	printTable(cmd.OutOrStdout(), "No settings", []string{"SETTING", "VALUE"}, rows)
}
