package output

import (
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// ColorScheme defines the colors used for the different output elements.
type ColorScheme struct {
	Method      *color.Color
	URL         *color.Color
	StatusOK    *color.Color
	StatusError *color.Color
	HeaderKey   *color.Color
	HeaderValue *color.Color
	Success     *color.Color
	Error       *color.Color
}

// NewColorScheme returns the default scheme, with every color disabled when
// noColor is set.
func NewColorScheme(noColor bool) *ColorScheme {
	scheme := &ColorScheme{
		Method:      color.New(color.FgBlue, color.Bold),
		URL:         color.New(color.FgCyan),
		StatusOK:    color.New(color.FgGreen, color.Bold),
		StatusError: color.New(color.FgRed, color.Bold),
		HeaderKey:   color.New(color.FgYellow),
		HeaderValue: color.New(color.FgWhite),
		Success:     color.New(color.FgGreen),
		Error:       color.New(color.FgRed),
	}
	if noColor {
		for _, c := range []*color.Color{
			scheme.Method, scheme.URL, scheme.StatusOK, scheme.StatusError,
			scheme.HeaderKey, scheme.HeaderValue, scheme.Success, scheme.Error,
		} {
			c.DisableColor()
		}
	}
	return scheme
}

// IsTerminal reports whether f is attached to a terminal, so callers can
// default to plain output when piped.
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// SuccessIcon returns a checkmark, colored unless noColor is set.
func SuccessIcon(noColor bool) string {
	if noColor {
		return "✓"
	}
	return color.New(color.FgGreen).Sprint("✓")
}

// ErrorIcon returns a cross, colored unless noColor is set.
func ErrorIcon(noColor bool) string {
	if noColor {
		return "✗"
	}
	return color.New(color.FgRed).Sprint("✗")
}
