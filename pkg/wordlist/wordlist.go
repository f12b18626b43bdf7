// Package wordlist loads newline-delimited candidate words for the
// spelling challenge.
package wordlist

import (
	"bufio"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/turbekoff/lcdcalc/pkg/spelling"
)

var ErrEmpty = errors.New("word list has no usable words")

//go:embed words.txt
var defaultWords string

// Entry is a word together with its strict translation.
type Entry struct {
	Word    string
	Numeral string
}

// Parse reads one word per line. Lines are trimmed and upper-cased;
// anything not purely alphabetic is skipped.
func Parse(r io.Reader) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		word := spelling.Fold(scanner.Text())
		if !spelling.IsAlphabetic(word) {
			continue
		}
		words = append(words, word)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read word list: %w", err)
	}
	return words, nil
}

// Load reads the list at path, or the embedded list when path is empty.
func Load(path string) ([]string, error) {
	if path == "" {
		return Default(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	words, err := Parse(f)
	if err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmpty)
	}
	return words, nil
}

// Default returns the embedded word list.
func Default() []string {
	words, _ := Parse(strings.NewReader(defaultWords))
	return words
}

// Translatable keeps the distinct words that translate strictly, with
// their numerals.
func Translatable(words []string) []Entry {
	entries := make([]Entry, 0, len(words))
	seen := make(map[string]bool, len(words))
	for _, word := range words {
		if seen[word] {
			continue
		}
		seen[word] = true
		numeral, err := spelling.Translate(word)
		if err != nil {
			continue
		}
		entries = append(entries, Entry{Word: word, Numeral: numeral})
	}
	return entries
}

// Challenge picks up to n distinct translatable words.
func Challenge(rng *rand.Rand, words []string, n int) []Entry {
	entries := Translatable(words)
	rng.Shuffle(len(entries), func(i, j int) {
		entries[i], entries[j] = entries[j], entries[i]
	})
	if n < len(entries) {
		entries = entries[:n]
	}
	return entries
}
