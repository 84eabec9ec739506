package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/entrhq/thazh/pkg/app"
	"github.com/entrhq/thazh/pkg/bookmarks"
	"github.com/spf13/cobra"
)

func newBookmarksCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "bookmarks",
		Aliases: []string{"bm"},
		Short:   "Manage bookmarks",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List bookmarks, newest first",
			Args:  cobra.NoArgs,
			RunE: withApp(opts, func(cmd *cobra.Command, a *app.App, args []string) error {
				printBookmarks(cmd, a.Bookmarks.List(cmd.Context()))
				return nil
			}),
		},
		&cobra.Command{
			Use:   "add <url> [title]",
			Short: "Bookmark a URL",
			Args:  cobra.RangeArgs(1, 2),
			RunE: withApp(opts, func(cmd *cobra.Command, a *app.App, args []string) error {
				title := ""
				if len(args) == 2 {
					title = args[1]
				}
				b, err := a.Bookmarks.Add(cmd.Context(), args[0], title)
				if errors.Is(err, bookmarks.ErrDuplicate) {
					return fmt.Errorf("%s is already bookmarked", args[0])
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", b.Title, b.ID)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "rm <id>",
			Short: "Remove a bookmark",
			Args:  cobra.ExactArgs(1),
			RunE: withApp(opts, func(cmd *cobra.Command, a *app.App, args []string) error {
				return a.Bookmarks.Delete(cmd.Context(), args[0])
			}),
		},
		&cobra.Command{
			Use:   "search <query>",
			Short: "Find bookmarks by title or URL",
			Args:  cobra.MinimumNArgs(1),
			RunE: withApp(opts, func(cmd *cobra.Command, a *app.App, args []string) error {
				printBookmarks(cmd, a.Bookmarks.Search(cmd.Context(), strings.Join(args, " ")))
				return nil
			}),
		},
		newBookmarksExportCmd(opts),
		newBookmarksImportCmd(opts),
		newClearCmd(opts, "Remove every bookmark", "Delete all bookmarks?", "All bookmarks deleted",
			func(ctx context.Context, a *app.App) error { return a.Bookmarks.ClearAll(ctx) }),
	)
	return cmd
}

func newBookmarksExportCmd(opts *globalOptions) *cobra.Command {
	var (
		color  bool
		output string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export bookmarks as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			data, err := a.Bookmarks.Export(cmd.Context())
			if err != nil {
				return err
			}
			if output != "" {
				if err := os.WriteFile(output, data, 0600); err != nil {
					return fmt.Errorf("failed to write export: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", output)
				return nil
			}
			return printJSON(cmd.OutOrStdout(), data, color)
		},
	}
	cmd.Flags().BoolVar(&color, "color", false, "syntax highlight the JSON")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}

func newBookmarksImportCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import bookmarks from a JSON export or a browser bookmarks HTML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			a, err := opts.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			var n int
			switch strings.ToLower(filepath.Ext(args[0])) {
			case ".html", ".htm":
				n, err = a.Bookmarks.ImportHTML(cmd.Context(), bytes.NewReader(data))
			default:
				n, err = a.Bookmarks.Import(cmd.Context(), data)
			}
			switch {
			case errors.Is(err, bookmarks.ErrInvalidFormat):
				return fmt.Errorf("%s is not a bookmark export: %w", args[0], err)
			case errors.Is(err, bookmarks.ErrNoValidEntries):
				return fmt.Errorf("%s contains no usable bookmarks", args[0])
			case err != nil:
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d bookmarks\n", n)
			return nil
		},
	}
}

func printBookmarks(cmd *cobra.Command, list []bookmarks.Bookmark) {
	rows := make([][]string, 0, len(list))
	for _, b := range list {
		rows = append(rows, []string{b.ID, clip(b.Title, 40), clip(b.URL, 60), formatTime(b.Added())})
	}
	printTable(cmd.OutOrStdout(), "No bookmarks", []string{"ID", "TITLE", "URL", "ADDED"}, rows)
}
