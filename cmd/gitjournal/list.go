package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/choplin/gitjournal/internal/journal"
	"github.com/choplin/gitjournal/internal/services"
	"github.com/choplin/gitjournal/internal/usecase"
)

func newListCmd(opts *rootOptions) *cobra.Command {
	var (
		limit  int
		format string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List journal entries, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != "table" && format != "json" {
				return fmt.Errorf("invalid format: %s (valid values: table, json)", format)
			}

			ctx := cmd.Context()

			var settings journal.Settings
			err := withSettings(ctx, opts, func(svc *services.SettingsService) error {
				var err error
				settings, err = svc.Load(ctx)
				return err
			})
			if err != nil {
				return err
			}

			entries, err := usecase.NewEntry(settings).List(usecase.ListOptions{Limit: limit})
			if err != nil {
				return err
			}

			if format == "json" {
				return outputJSON(cmd, settings.RepositoryPath, entries)
			}
			outputTable(cmd, entries)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show at most N entries (0 for all)")
	cmd.Flags().StringVar(&format, "format", "table", "Output format: table or json")

	return cmd
}

type listOutputEntry struct {
	Timestamp string `json:"timestamp"`
	Path      string `json:"path"`
	Message   string `json:"message"`
}

func outputJSON(cmd *cobra.Command, root string, entries []usecase.ListEntry) error {
	output := make([]listOutputEntry, 0, len(entries))
	for _, entry := range entries {
		path := entry.FilePath
		if rel, err := filepath.Rel(root, path); err == nil {
			path = filepath.ToSlash(rel)
		}
		output = append(output, listOutputEntry{
			Timestamp: entry.Timestamp.Format(time.RFC3339),
			Path:      path,
			Message:   entry.Message,
		})
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func getTerminalWidth() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return 80
}

// columnWidths holds the widths of the table columns.
type columnWidths struct {
	created      int
	useShortDate bool
	message      int
}

// calculateColumnWidths gives the message column whatever the date leaves.
func calculateColumnWidths(termWidth int) columnWidths {
	// borders and padding, roughly 3 chars per column
	available := termWidth - 2*3

	createdWidth := 19 // "2006-01-02 15:04:05"
	useShortDate := false
	messageWidth := available - createdWidth
	if messageWidth < 30 {
		createdWidth = 11 // "01-02 15:04"
		useShortDate = true
		messageWidth = available - createdWidth
	}

	if messageWidth < 15 {
		messageWidth = 15
	}

	return columnWidths{
		created:      createdWidth,
		useShortDate: useShortDate,
		message:      messageWidth,
	}
}

// firstLine collapses a message to its first non-empty line and marks it
// when more lines follow.
func firstLine(message string) string {
	lines := strings.Split(strings.TrimSpace(message), "\n")
	line := strings.TrimSpace(lines[0])
	if len(lines) > 1 {
		line += " ..."
	}
	return line
}

func outputTable(cmd *cobra.Command, entries []usecase.ListEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No entries found")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)

	widths := calculateColumnWidths(getTerminalWidth())

	// WidthMax is not set on columns: go-pretty miscounts multi-byte
	// characters, so messages are truncated with runewidth instead.
	t.AppendHeader(table.Row{"Created", "Message"})

	for _, entry := range entries {
		var created string
		if widths.useShortDate {
			created = entry.Timestamp.Format("01-02 15:04")
		} else {
			created = entry.Timestamp.Format("2006-01-02 15:04:05")
		}

		t.AppendRow(table.Row{
			created,
			runewidth.Truncate(firstLine(entry.Message), widths.message, "..."),
		})
	}

	t.Render()
}
