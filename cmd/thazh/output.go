package main

import (
	"fmt"
	"io"
	"time"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB3BA")).Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

// printTable renders rows under headers, or a hint when there are none.
func printTable(out io.Writer, empty string, headers []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Fprintln(out, mutedStyle.Render(empty))
		return
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(mutedStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...)
	fmt.Fprintln(out, t)
}

// printJSON writes data, syntax highlighted when color is set.
func printJSON(out io.Writer, data []byte, color bool) error {
	if !color {
		_, err := fmt.Fprintln(out, string(data))
		return err
	}
	if err := quick.Highlight(out, string(data), "json", "terminal256", "monokai"); err != nil {
		return fmt.Errorf("highlight: %w", err)
	}
	_, err := fmt.Fprintln(out)
	return err
}

func formatTime(t time.Time) string {
	return t.Format("2006-01-02 15:04")
}

// clip shortens s to n runes for table cells.
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
