// Package spelling turns words into numerals that read as the word when
// a calculator display is turned upside down.
package spelling

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/turbekoff/lcdcalc/pkg/calculator"
)

var (
	ErrNotAlphabetic = errors.New("letters A-Z only")
	ErrTooLong       = errors.New("too long for display")
)

// strict holds only letters with an unambiguous seven-segment digit.
var strict = map[rune]byte{
	'A': '4',
	'B': '8',
	'E': '3',
	'G': '6',
	'H': '4',
	'I': '1',
	'L': '7',
	'O': '0',
	'Q': '0',
	'S': '5',
	'T': '7',
	'Z': '2',
}

// UnmappedError lists the letters of a word that have no digit, in the
// order they first appear.
type UnmappedError struct {
	Letters []rune
}

func (e *UnmappedError) Error() string {
	names := make([]string, len(e.Letters))
	for i, r := range e.Letters {
		names[i] = string(r)
	}
	return "cannot map " + strings.Join(names, ", ")
}

// Fold trims word and upper-cases it after NFKC normalization, so
// fullwidth letters and ligatures compare equal to their ASCII forms and
// dotless i upper-cases to I.
func Fold(word string) string {
	t := transform.Chain(norm.NFKC, cases.Upper(language.English))
	folded, _, err := transform.String(t, strings.TrimSpace(word))
	if err != nil {
		return strings.ToUpper(strings.TrimSpace(word))
	}
	return folded
}

// IsAlphabetic reports whether s is non-empty and made of A-Z only.
func IsAlphabetic(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// Translate maps word to a numeral ready for calculator.State.InjectValue.
// Failures are ErrNotAlphabetic, ErrTooLong or *UnmappedError.
func Translate(word string) (string, error) {
	word = Fold(word)
	if !IsAlphabetic(word) {
		return "", ErrNotAlphabetic
	}

	var (
		digits   = make([]byte, 0, len(word))
		unmapped []rune
		seen     = make(map[rune]bool)
	)
	for _, r := range word {
		d, ok := strict[r]
		if !ok {
			if !seen[r] {
				seen[r] = true
				unmapped = append(unmapped, r)
			}
			continue
		}
		digits = append(digits, d)
	}
	if len(unmapped) > 0 {
		return "", &UnmappedError{Letters: unmapped}
	}

	// upside down, the last letter is read first
	for i, j := 0, len(digits)-1; i < j; i, j = i+1, j-1 {
		digits[i], digits[j] = digits[j], digits[i]
	}

	numeral := string(digits)
	if len(numeral) > 1 && numeral[0] == '0' {
		numeral = "0." + numeral[1:]
	}
	if len(numeral) > calculator.MaxChars {
		return "", fmt.Errorf("%w (%d max)", ErrTooLong, calculator.MaxChars)
	}
	return numeral, nil
}
