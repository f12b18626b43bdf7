package calculator

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

var (
	ErrDivisionByZero  = errors.New("unsupported divide by zero")
	ErrUnrepresentable = errors.New("result does not fit the display")
)

const (
	fixedDigits      = 8
	scientificDigits = 4

	// below this magnitude the fixed form would round to zero
	smallestFixed = 1e-7
)

// FormatNumber renders v as the shortest text that fits MaxChars:
// fixed-point first, scientific notation second, ErrorMarker last.
func FormatNumber(v float64) string {
	text, err := formatResult(v)
	if err != nil {
		return ErrorMarker
	}
	return text
}

func formatResult(v float64) (string, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "", ErrUnrepresentable
	}

	var text string
	if abs := math.Abs(v); abs > 0 && abs < smallestFixed {
		text = formatScientific(v)
	} else {
		text = formatFixed(v)
	}

	if len(text) > MaxChars {
		text = formatScientific(v)
	}
	if len(text) > MaxChars {
		return "", ErrUnrepresentable
	}
	return text, nil
}

func formatFixed(v float64) string {
	text := strconv.FormatFloat(v, 'f', fixedDigits, 64)
	text = strings.TrimRight(text, "0")
	text = strings.TrimSuffix(text, ".")
	if text == "-0" {
		return "0"
	}
	return text
}

// formatScientific writes 1.2345E7 rather than Go's 1.2345e+07.
func formatScientific(v float64) string {
	text := strconv.FormatFloat(v, 'e', scientificDigits, 64)
	mantissa, exp, _ := strings.Cut(text, "e")
	n, err := strconv.Atoi(exp)
	if err != nil {
		return text
	}
	return mantissa + "E" + strconv.Itoa(n)
}
