package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
)

var (
	successColor = lipgloss.Color("#1DB954")
	warningColor = lipgloss.Color("#F59E0B")
	errorColor   = lipgloss.Color("#EF4444")
	mutedColor   = lipgloss.Color("#9CA3AF")
)

var (
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(successColor)
	warningStyle = lipgloss.NewStyle().Foreground(warningColor)
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(errorColor)
	mutedStyle   = lipgloss.NewStyle().Foreground(mutedColor)
	labelStyle   = lipgloss.NewStyle().Foreground(mutedColor).Width(12)
)

var stdout io.Writer = os.Stdout

// Table provides a simple table formatter.
type Table struct {
	w *tabwriter.Writer
}

// NewTable creates a new table with the given headers.
func NewTable(headers ...string) *Table {
	return NewTableWriter(stdout, headers...)
}

// NewTableWriter creates a table writing to a specific writer.
func NewTableWriter(out io.Writer, headers ...string) *Table {
	t := &Table{
		w: tabwriter.NewWriter(out, 0, 0, 2, ' ', 0),
	}
	if len(headers) > 0 {
		t.Row(headers...)
	}
	return t
}

// Row adds a row to the table.
func (t *Table) Row(values ...string) {
	_, _ = t.w.Write([]byte(strings.Join(values, "\t") + "\n"))
}

// Flush writes the table output.
func (t *Table) Flush() {
	_ = t.w.Flush()
}

func printJSON(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Success prints a highlighted confirmation line.
func Success(format string, args ...any) {
	_, _ = fmt.Fprintln(stdout, successStyle.Render("✓")+" "+fmt.Sprintf(format, args...))
}

// Warn prints a highlighted warning line.
func Warn(format string, args ...any) {
	_, _ = fmt.Fprintln(stdout, warningStyle.Render("!")+" "+fmt.Sprintf(format, args...))
}

// Fail prints a highlighted failure line.
func Fail(format string, args ...any) {
	_, _ = fmt.Fprintln(stdout, errorStyle.Render("✗")+" "+fmt.Sprintf(format, args...))
}

// Field prints a label and value pair.
func Field(label, value string) {
	_, _ = fmt.Fprintln(stdout, labelStyle.Render(label)+value)
}

// Muted prints a dimmed line.
func Muted(format string, args ...any) {
	_, _ = fmt.Fprintln(stdout, mutedStyle.Render(fmt.Sprintf(format, args...)))
}

// TruncateString truncates a string to maxLen, adding "..." if truncated.
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
