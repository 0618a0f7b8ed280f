package output

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

var (
	// Comparison colors
	Update   = color.New(color.FgYellow)
	Newer    = color.New(color.FgCyan)
	NotFound = color.New(color.FgRed)

	// Message colors
	Success = color.New(color.FgGreen)
	Warning = color.New(color.FgYellow)
	Error   = color.New(color.FgRed)
	Info    = color.New(color.FgCyan)
	Dim     = color.New(color.Faint)

	// Structural colors
	Header  = color.New(color.FgWhite, color.Bold)
	Package = color.New(color.FgBlue, color.Bold)
	Version = color.New(color.FgGreen, color.Bold)
)

// DefaultWidth is used when stdout is not a terminal
const DefaultWidth = 80

// Color modes accepted by SetColorMode
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// NoColor disables color output
func NoColor() {
	color.NoColor = true
}

// ForceColor enables color output even when not a TTY
func ForceColor() {
	color.NoColor = false
}

// SetColorMode applies one of auto, always or never.
// auto leaves fatih/color's own TTY detection in place.
func SetColorMode(mode string) error {
	switch strings.ToLower(mode) {
	case "", ColorAuto:
		return nil
	case ColorAlways:
		ForceColor()
	case ColorNever:
		NoColor()
	default:
		return fmt.Errorf("invalid color mode %q: must be auto, always or never", mode)
	}
	return nil
}

// IsTerminal returns true if stdout is a terminal
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// TerminalWidth returns the column count of stdout, or DefaultWidth
func TerminalWidth() int {
	if !IsTerminal() {
		return DefaultWidth
	}
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return DefaultWidth
	}
	return w
}

// Sprintf returns a colored string without printing
func Sprintf(c *color.Color, format string, args ...interface{}) string {
	return c.Sprintf(format, args...)
}

// Sprint returns a colored string without printing
func Sprint(c *color.Color, a ...interface{}) string {
	return c.Sprint(a...)
}

// Wrap breaks text into lines no wider than width display columns,
// prefixing every line with indent. Wide runes count as two columns.
// Words are never split, so a single overlong word may exceed width.
func Wrap(text string, width int, indent string) string {
	avail := width - runewidth.StringWidth(indent)
	if avail < 20 {
		avail = 20
	}

	var lines []string
	var line strings.Builder
	lineWidth := 0
	for _, word := range strings.Fields(text) {
		w := runewidth.StringWidth(word)
		if lineWidth > 0 && lineWidth+1+w > avail {
			lines = append(lines, line.String())
			line.Reset()
			lineWidth = 0
		}
		if lineWidth > 0 {
			line.WriteByte(' ')
			lineWidth++
		}
		line.WriteString(word)
		lineWidth += w
	}
	lines = append(lines, line.String())

	for i, l := range lines {
		lines[i] = indent + l
	}
	return strings.Join(lines, "\n")
}

// PadRight pads s with spaces to the given display width
func PadRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}

// FormatPackage formats a package name with color
func FormatPackage(repo, pkg string) string {
	if repo != "" {
		return Sprint(Dim, repo+"/") + Package.Sprint(pkg)
	}
	return Package.Sprint(pkg)
}
