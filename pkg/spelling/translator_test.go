package spelling

import (
	"errors"
	"reflect"
	"testing"

	"github.com/turbekoff/lcdcalc/pkg/calculator"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		word string
		want string
	}{
		{"HELLO", "0.7734"},
		{"hello", "0.7734"},
		{"  Hello ", "0.7734"},
		{"ＨＥＬＬＯ", "0.7734"},
		{"hıll", "7714"},
		{"BOOBIES", "5318008"},
		{"SHELL", "77345"},
		{"O", "0"},
		{"OO", "0.0"},
		{"GIGGLES", "5376616"},
		{"EGGSHELLS", "577345663"},
	}
	for _, tt := range tests {
		got, err := Translate(tt.word)
		if err != nil {
			t.Errorf("Translate(%q): %v", tt.word, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Translate(%q) = %q, want %q", tt.word, got, tt.want)
		}
	}
}

func TestTranslateUnmapped(t *testing.T) {
	tests := []struct {
		word string
		want []rune
	}{
		{"JUMP", []rune{'J', 'U', 'M', 'P'}},
		{"jump", []rune{'J', 'U', 'M', 'P'}},
		{"NONE", []rune{'N'}},
		{"ﬁg", []rune{'F'}},
		{"CROWD", []rune{'C', 'R', 'W', 'D'}},
	}
	for _, tt := range tests {
		_, err := Translate(tt.word)
		var unmapped *UnmappedError
		if !errors.As(err, &unmapped) {
			t.Errorf("Translate(%q) error = %v, want *UnmappedError", tt.word, err)
			continue
		}
		if !reflect.DeepEqual(unmapped.Letters, tt.want) {
			t.Errorf("Translate(%q) unmapped = %q, want %q", tt.word, unmapped.Letters, tt.want)
		}
	}

	_, err := Translate("JUMP")
	if got, want := err.Error(), "cannot map J, U, M, P"; got != want {
		t.Errorf("got message %q, want %q", got, want)
	}
}

func TestTranslateNotAlphabetic(t *testing.T) {
	for _, word := range []string{"", "   ", "HELL0", "HI THERE", "BOSS!", "ÉLISE"} {
		if _, err := Translate(word); !errors.Is(err, ErrNotAlphabetic) {
			t.Errorf("Translate(%q) error = %v, want ErrNotAlphabetic", word, err)
		}
	}
}

func TestTranslateTooLong(t *testing.T) {
	for _, word := range []string{"SLEIGHBELLS", "OBLIGATES" + "SLOT"} {
		if _, err := Translate(word); !errors.Is(err, ErrTooLong) {
			t.Errorf("Translate(%q) error = %v, want ErrTooLong", word, err)
		}
	}

	got, err := Translate("GLOBALISTS")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got != "5751748076" {
		t.Errorf("got %q, want 5751748076", got)
	}

	// the "0." rewrite pushes ten digits past the display
	if _, err := Translate("SHELLSHOOO"); !errors.Is(err, ErrTooLong) {
		t.Errorf("got %v, want ErrTooLong", err)
	}
}

func TestTranslateInjects(t *testing.T) {
	numeral, err := Translate("HELLO")
	if err != nil {
		t.Fatal(err)
	}
	s := calculator.NewState().InjectValue(numeral)
	if s.Display != "    0.7734" {
		t.Errorf("got display %q", s.Display)
	}
}
