package calculator

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

var ErrUnknownAction = errors.New("unknown action")

type ActionKind int

const (
	ActionDigit ActionKind = iota + 1
	ActionDecimal
	ActionOperator
	ActionEquals
	ActionClearEntry
	ActionAllClear
	ActionInject
)

// Action is one entry of the closed vocabulary a controller may send.
// Value carries the digit, operator glyph or injected numeral.
type Action struct {
	Kind  ActionKind
	Value string
}

// ParseAction decodes a key code: "0".."9", ".", any operator glyph,
// "=", "CE" or "AC".
func ParseAction(code string) (Action, error) {
	switch code {
	case ".":
		return Action{Kind: ActionDecimal}, nil
	case "=":
		return Action{Kind: ActionEquals}, nil
	case "CE", "C":
		return Action{Kind: ActionClearEntry}, nil
	case "AC":
		return Action{Kind: ActionAllClear}, nil
	}

	if len(code) == 1 && '0' <= code[0] && code[0] <= '9' {
		return Action{Kind: ActionDigit, Value: code}, nil
	}
	if op, ok := NormalizeOperator(code); ok {
		return Action{Kind: ActionOperator, Value: op.String()}, nil
	}
	return Action{}, fmt.Errorf("%w: %q", ErrUnknownAction, code)
}

// Apply runs the transition named by a. Unknown kinds return s unchanged.
func Apply(s State, a Action) State {
	switch a.Kind {
	case ActionDigit:
		r, _ := utf8.DecodeRuneInString(a.Value)
		return s.Digit(r)
	case ActionDecimal:
		return s.Decimal()
	case ActionOperator:
		return s.Operator(a.Value)
	case ActionEquals:
		return s.Evaluate()
	case ActionClearEntry:
		return s.ClearEntry()
	case ActionAllClear:
		return s.AllClear()
	case ActionInject:
		return s.InjectValue(a.Value)
	}
	return s
}
