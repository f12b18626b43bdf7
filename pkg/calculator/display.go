package calculator

import "strings"

const (
	// MaxChars is the number of character positions on the readout.
	MaxChars = 10

	// ErrorMarker is shown instead of any value that cannot fit.
	ErrorMarker = "Err"
)

// NormalizeDisplay left-pads text with spaces to MaxChars, or returns
// ErrorMarker when text is too wide.
func NormalizeDisplay(text string) string {
	if len(text) > MaxChars {
		return ErrorMarker
	}
	return strings.Repeat(" ", MaxChars-len(text)) + text
}
