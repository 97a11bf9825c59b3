package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette shared by the command output, the layout table and the city picker.
var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorBlue   = lipgloss.Color("75")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

var (
	// StyleTitle for headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	// StyleLink for URLs.
	StyleLink = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)
	// StyleDim for secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)
	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)
	// StyleWarning for warnings.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(12)
)

// statusIcon pairs a glyph with its color.
type statusIcon struct {
	glyph string
	style lipgloss.Style
}

func (i statusIcon) render() string { return i.style.Render(i.glyph) }

var (
	iconSuccess = statusIcon{"✓", lipgloss.NewStyle().Foreground(colorGreen)}
	iconError   = statusIcon{"✗", lipgloss.NewStyle().Foreground(colorRed)}
	iconWarning = statusIcon{"!", lipgloss.NewStyle().Foreground(colorYellow)}
	iconInfo    = statusIcon{"›", lipgloss.NewStyle().Foreground(colorGray)}

	badgeCached = statusIcon{"cached", lipgloss.NewStyle().Foreground(colorGreen)}
	badgeFresh  = statusIcon{"fresh", lipgloss.NewStyle().Foreground(colorGray)}
)

// out receives all user-facing command output. Tests swap it for a buffer.
var out io.Writer = os.Stdout

func writeLine(line string) {
	fmt.Fprintln(out, line)
}

func printStatus(icon statusIcon, format string, args ...any) {
	writeLine(icon.render() + " " + fmt.Sprintf(format, args...))
}

func printSuccess(format string, args ...any) { printStatus(iconSuccess, format, args...) }

func printError(format string, args ...any) { printStatus(iconError, format, args...) }

func printInfo(format string, args ...any) { printStatus(iconInfo, format, args...) }

func printWarning(format string, args ...any) {
	writeLine(iconWarning.render() + " " + StyleWarning.Render(fmt.Sprintf(format, args...)))
}

// printDetail prints an indented secondary line.
func printDetail(format string, args ...any) {
	writeLine("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written artifact path.
func printFile(path string) {
	writeLine("  " + StyleDim.Render("→") + " " + StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	writeLine(styleKey.Render(key) + " " + StyleValue.Render(value))
}

// printStats prints city and route counts followed by the cache badge.
func printStats(cities, routes int, cached bool) {
	var parts []string
	if cities > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d %s", cities, plural(cities, "city", "cities"))))
	}
	if routes > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d %s", routes, plural(routes, "route", "routes"))))
	}
	badge := badgeFresh
	if cached {
		badge = badgeCached
	}
	parts = append(parts, badge.render())
	writeLine("  " + strings.Join(parts, StyleDim.Render(" · ")))
}

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	writeLine(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

func printNewline() {
	writeLine("")
}
