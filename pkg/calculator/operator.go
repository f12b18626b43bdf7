package calculator

// Operator is a canonical binary operator. The zero value means none.
type Operator byte

const (
	OpNone Operator = 0
	OpAdd  Operator = '+'
	OpSub  Operator = '-'
	OpMul  Operator = '*'
	OpDiv  Operator = '/'
)

func (op Operator) String() string {
	if op == OpNone {
		return ""
	}
	return string(rune(op))
}

// NormalizeOperator maps an operator glyph to its canonical token.
// The second result is false for anything that is not an operator.
func NormalizeOperator(token string) (Operator, bool) {
	switch token {
	case "+":
		return OpAdd, true
	case "-", "−":
		return OpSub, true
	case "*", "×", "x", "X":
		return OpMul, true
	case "/", "÷":
		return OpDiv, true
	}
	return OpNone, false
}

func (op Operator) apply(left, right float64) (float64, error) {
	switch op {
	case OpAdd:
		return left + right, nil
	case OpSub:
		return left - right, nil
	case OpMul:
		return left * right, nil
	case OpDiv:
		if right == 0 {
			return 0, ErrDivisionByZero
		}
		return left / right, nil
	}
	return right, nil
}
