package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/entrhq/thazh/pkg/app"
	"github.com/entrhq/thazh/pkg/history"
	"github.com/spf13/cobra"
)

func newHistoryCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect and prune browsing history",
	}

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List visited pages, most recent first",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, a *app.App, args []string) error {
			items := a.History.List(cmd.Context())
			if limit > 0 && len(items) > limit {
				items = items[:limit]
			}
			printHistory(cmd, items)
			return nil
		}),
	}
	list.Flags().IntVarP(&limit, "limit", "n", 0, "show at most n entries")

	var top int
	frequent := &cobra.Command{
		Use:   "frequent",
		Short: "List pages visited more than once, most visited first",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, a *app.App, args []string) error {
			printHistory(cmd, a.History.FrequentSites(cmd.Context(), top))
			return nil
		}),
	}
	frequent.Flags().IntVarP(&top, "limit", "n", history.DefaultFrequentLimit, "number of sites")

	cmd.AddCommand(
		list,
		&cobra.Command{
			Use:   "search <query>",
			Short: "Find history entries by title or URL",
			Args:  cobra.MinimumNArgs(1),
			RunE: withApp(opts, func(cmd *cobra.Command, a *app.App, args []string) error {
				printHistory(cmd, a.History.Search(cmd.Context(), strings.Join(args, " ")))
				return nil
			}),
		},
		frequent,
		&cobra.Command{
			Use:   "today",
			Short: "List pages last visited today",
			Args:  cobra.NoArgs,
			RunE: withApp(opts, func(cmd *cobra.Command, a *app.App, args []string) error {
				printHistory(cmd, a.History.ByDate(cmd.Context(), time.Now()))
				return nil
			}),
		},
		&cobra.Command{
			Use:   "rm <id>",
			Short: "Remove one history entry",
			Args:  cobra.ExactArgs(1),
			RunE: withApp(opts, func(cmd *cobra.Command, a *app.App, args []string) error {
				return a.History.DeleteItem(cmd.Context(), args[0])
			}),
		},
		newClearCmd(opts, "Remove all browsing history", "Clear all browsing history?", "History cleared",
			func(ctx context.Context, a *app.App) error { return a.History.Clear(ctx) }),
	)
	return cmd
}

func printHistory(cmd *cobra.Command, items []history.Item) {
	rows := make([][]string, 0, len(items))
	for _, h := range items {
		rows = append(rows, []string{h.ID, clip(h.Title, 40), clip(h.URL, 60), strconv.Itoa(h.VisitCount), formatTime(h.Visited())})
	}
	printTable(cmd.OutOrStdout(), "No history", []string{"ID", "TITLE", "URL", "VISITS", "LAST VISIT"}, rows)
}

// withApp opens the stores around fn.
func withApp(opts *globalOptions, fn func(*cobra.Command, *app.App, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := opts.openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		if err := fn(cmd, a, args); err != nil {
			return fmt.Errorf("%s: %w", cmd.CommandPath(), err)
		}
		return nil
	}
}
