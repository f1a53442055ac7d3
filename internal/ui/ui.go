// Package ui renders command output for the terminal.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/pterm/pterm"
)

var (
	// Out receives regular output, Err receives errors.
	Out io.Writer = os.Stdout
	Err io.Writer = os.Stderr
)

var (
	accent = lipgloss.Color("#00D9FF")
	muted  = lipgloss.Color("#6C757D")

	titleStyle   = lipgloss.NewStyle().Foreground(accent).Bold(true).MarginBottom(1)
	mutedStyle   = lipgloss.NewStyle().Foreground(muted)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF88")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB800")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4444")).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(accent)
)

func width() int {
	if w := pterm.GetTerminalWidth(); w > 0 {
		return w
	}
	return 80
}

func status(w io.Writer, style lipgloss.Style, symbol, format string, args []any) {
	fmt.Fprintln(w, style.Render(symbol+" "+fmt.Sprintf(format, args...)))
}

// PrintHeader prints a boxed title with a subtitle under it.
func PrintHeader(title, subtitle string) {
	box := lipgloss.NewStyle().
		Width(width()-2).
		Align(lipgloss.Center).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 2)

	fmt.Fprintln(Out, box.Render(lipgloss.JoinVertical(lipgloss.Center,
		titleStyle.Render(title),
		mutedStyle.Render(subtitle),
	)))
	fmt.Fprintln(Out)
}

// PrintSuccess prints a success message
func PrintSuccess(format string, args ...any) { status(Out, successStyle, "✓", format, args) }

// PrintWarning prints a warning message
func PrintWarning(format string, args ...any) { status(Out, warningStyle, "⚠", format, args) }

// PrintInfo prints an info message
func PrintInfo(format string, args ...any) { status(Out, infoStyle, "ℹ", format, args) }

// PrintError prints an error message to Err.
func PrintError(format string, args ...any) { status(Err, errorStyle, "✗", format, args) }

// PrintStep prints a "[step/total] message" progress line.
func PrintStep(step, total int, message string) {
	fmt.Fprintf(Out, "%s %s\n", mutedStyle.Render(fmt.Sprintf("[%d/%d]", step, total)), message)
}

// PrintTable prints rows under a header row.
func PrintTable(headers []string, rows [][]string) error {
	data := append(pterm.TableData{headers}, rows...)
	s, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	fmt.Fprintln(Out, s)
	return nil
}

// PrintList prints a bulleted list
func PrintList(items []string) {
	for _, item := range items {
		fmt.Fprintf(Out, "  • %s\n", item)
	}
}

// PrintMarkdown renders Markdown with glamour.
func PrintMarkdown(content string) error {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(width()))
	if err != nil {
		return err
	}
	rendered, err := r.Render(content)
	if err != nil {
		return err
	}
	fmt.Fprint(Out, rendered)
	return nil
}

// PrintSpinner starts a spinner that clears itself when stopped.
func PrintSpinner(message string) (*pterm.SpinnerPrinter, error) {
	return pterm.DefaultSpinner.WithWriter(Out).WithRemoveWhenDone(true).Start(message)
}

// PrintSection prints an underlined section title.
func PrintSection(title string) {
	fmt.Fprintln(Out, lipgloss.NewStyle().
		Width(width()).
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(muted).
		Render(title))
}

// PrintCodeBlock prints code in a rounded box, labelled with its language.
func PrintCodeBlock(code, language string) {
	if language != "" {
		fmt.Fprintln(Out, mutedStyle.Render(" "+language+" "))
	}
	fmt.Fprintln(Out, lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(muted).
		Padding(0, 1).
		Render(strings.TrimRight(code, "\n")))
}

// GetColorPrinters returns fatih/color printers keyed by role.
func GetColorPrinters() map[string]*color.Color {
	return map[string]*color.Color{
		"success": color.New(color.FgGreen, color.Bold),
		"error":   color.New(color.FgRed, color.Bold),
		"warning": color.New(color.FgYellow, color.Bold),
		"info":    color.New(color.FgCyan),
		"primary": color.New(color.FgCyan, color.Bold),
	}
}

// ColorPrint writes a formatted message to Out in color c.
func ColorPrint(c *color.Color, format string, args ...any) {
	_, _ = c.Fprintf(Out, format, args...)
}
