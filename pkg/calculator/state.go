package calculator

import (
	"strconv"
	"strings"
)

// State is one snapshot of the calculator. Transitions never modify the
// receiver; each returns the next State.
type State struct {
	// CurrentInput is the entry buffer, always a valid (possibly
	// partial) numeral such as "0", "12." or "1.2345E7".
	CurrentInput string

	// Accumulator holds the left operand while HasAccumulator is set.
	Accumulator    float64
	HasAccumulator bool

	Pending Operator

	// FreshInput means the next digit starts a new numeral.
	FreshInput bool

	// Display is NormalizeDisplay(CurrentInput), or ErrorMarker.
	Display string

	Error bool
}

// NewState returns the power-on state.
func NewState() State {
	return State{
		CurrentInput: "0",
		FreshInput:   true,
		Display:      NormalizeDisplay("0"),
	}
}

func errorState() State {
	return State{
		CurrentInput: "0",
		FreshInput:   true,
		Display:      ErrorMarker,
		Error:        true,
	}
}

func (s State) withInput(input string) State {
	s.CurrentInput = input
	s.Display = NormalizeDisplay(input)
	return s
}

func (s State) value() float64 {
	v, err := strconv.ParseFloat(s.CurrentInput, 64)
	if err != nil {
		return 0
	}
	return v
}

// Digit enters one of '0'..'9'. Other runes leave the state unchanged.
func (s State) Digit(d rune) State {
	if d < '0' || d > '9' {
		return s
	}
	if s.Error {
		s = NewState()
	}

	input := s.CurrentInput
	switch {
	case s.FreshInput:
		input = string(d)
		s.FreshInput = false
	case input == "0":
		input = string(d)
	case len(input) < MaxChars:
		input += string(d)
	}
	return s.withInput(input)
}

// Decimal enters the decimal point.
func (s State) Decimal() State {
	if s.Error {
		s = NewState()
	}

	input := s.CurrentInput
	switch {
	case s.FreshInput:
		input = "0."
		s.FreshInput = false
	// a point past MaxChars would push Display to ErrorMarker outside the error state
	case !strings.Contains(input, ".") && len(input) < MaxChars:
		input += "."
	}
	return s.withInput(input)
}

// Operator chooses the next binary operator. A pending operation whose
// right operand has been typed is folded into the accumulator first, so
// chains evaluate strictly left to right.
func (s State) Operator(token string) State {
	if s.Error {
		return s
	}
	op, ok := NormalizeOperator(token)
	if !ok {
		return s
	}

	switch {
	case s.Pending != OpNone && !s.FreshInput:
		result, text, err := s.compute()
		if err != nil {
			return errorState()
		}
		s = s.withInput(text)
		s.Accumulator = result
	case !s.HasAccumulator:
		s.Accumulator = s.value()
		s.HasAccumulator = true
	}

	s.Pending = op
	s.FreshInput = true
	return s
}

// Evaluate applies the pending operator. Without one it does nothing.
func (s State) Evaluate() State {
	if s.Error || s.Pending == OpNone {
		return s
	}

	result, text, err := s.compute()
	if err != nil {
		return errorState()
	}

	s = s.withInput(text)
	s.Accumulator = result
	s.HasAccumulator = true
	s.Pending = OpNone
	s.FreshInput = true
	s.Error = false
	return s
}

func (s State) compute() (float64, string, error) {
	left := s.Accumulator
	if !s.HasAccumulator {
		left = 0
	}

	result, err := s.Pending.apply(left, s.value())
	if err != nil {
		return 0, "", err
	}
	text, err := formatResult(result)
	if err != nil {
		return 0, "", err
	}
	return result, text, nil
}

// ClearEntry discards the current entry but keeps a pending operation.
func (s State) ClearEntry() State {
	if s.Error {
		return NewState()
	}
	s = s.withInput("0")
	s.FreshInput = true
	return s
}

// AllClear returns to the power-on state.
func (s State) AllClear() State {
	return NewState()
}

// InjectValue loads a numeral produced outside the keypad, such as a
// translated word. The numeral must already fit the display.
func (s State) InjectValue(numeral string) State {
	return State{
		CurrentInput: numeral,
		FreshInput:   true,
		Display:      NormalizeDisplay(numeral),
	}
}
