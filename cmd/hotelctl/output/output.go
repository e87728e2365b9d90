// Package output форматирует вывод hotelctl: цветные статусы, таблицы и JSON.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorSuccess = lipgloss.Color("#10B981")
	colorWarning = lipgloss.Color("#F59E0B")
	colorError   = lipgloss.Color("#EF4444")
	colorInfo    = lipgloss.Color("#3B82F6")
	colorMuted   = lipgloss.Color("#6B7280")
	colorPrimary = lipgloss.Color("#7C3AED")

	successStyle = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(colorInfo)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	primaryStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
)

// Printer пишет сообщения в w. В режиме JSON сообщения-статусы подавляются,
// а данные выводятся как JSON.
type Printer struct {
	w    io.Writer
	json bool
}

// New создаёт Printer.
func New(w io.Writer, jsonMode bool) *Printer {
	return &Printer{w: w, json: jsonMode}
}

// JSONMode сообщает, включён ли JSON-вывод.
func (p *Printer) JSONMode() bool { return p.json }

// Success prints a success message
func (p *Printer) Success(format string, args ...any) {
	p.status(successStyle.Render("✓ "), format, args...)
}

// Warning prints a warning message
func (p *Printer) Warning(format string, args ...any) {
	p.status(warningStyle.Render("⚠ "), format, args...)
}

// Error prints an error message
func (p *Printer) Error(format string, args ...any) {
	p.status(errorStyle.Render("✗ "), format, args...)
}

// Info prints an info message
func (p *Printer) Info(format string, args ...any) {
	p.status(infoStyle.Render("ℹ "), format, args...)
}

// Section prints a section header
func (p *Printer) Section(title string) {
	if p.json {
		return
	}
	_, _ = fmt.Fprintln(p.w, primaryStyle.Render(title))
}

// Muted prints a muted message
func (p *Printer) Muted(format string, args ...any) {
	if p.json {
		return
	}
	_, _ = fmt.Fprintln(p.w, mutedStyle.Render(fmt.Sprintf(format, args...)))
}

func (p *Printer) status(icon, format string, args ...any) {
	if p.json {
		return
	}
	_, _ = fmt.Fprint(p.w, icon)
	_, _ = fmt.Fprintf(p.w, format+"\n", args...)
}

// JSON выводит value с отступом в два пробела.
func (p *Printer) JSON(value any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(value)
}

// Table выводит строки с выравниванием по колонкам.
func (p *Printer) Table(header []string, rows [][]string) error {
	w := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	writeRow(w, header)
	for _, row := range rows {
		writeRow(w, row)
	}
	return w.Flush()
}

func writeRow(w io.Writer, cells []string) {
	for i, cell := range cells {
		if i > 0 {
			_, _ = fmt.Fprint(w, "\t")
		}
		_, _ = fmt.Fprint(w, cell)
	}
	_, _ = fmt.Fprintln(w)
}

// StatusIcon returns a colored status icon
func StatusIcon(status string) string {
	switch status {
	case "active":
		return successStyle.Render("●")
	case "cancelled":
		return mutedStyle.Render("○")
	case "drift":
		return warningStyle.Render("⚠")
	default:
		return mutedStyle.Render("•")
	}
}
