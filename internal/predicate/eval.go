package predicate

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// DBLMin is the value of DBL_MIN, the runtime's floating point null.
const DBLMin = 2.2250738585072014e-308

// ValueKind is the dynamic type of a Value.
type ValueKind int

const (
	IntValue ValueKind = iota
	FloatValue
	TextValue
)

// Value is one record field or literal during evaluation. Text values with a
// nil Text are the string null.
type Value struct {
	Kind  ValueKind
	Int   int64
	Float float64
	Text  *string
}

// Int returns an integer value.
func Int(v int64) Value { return Value{Kind: IntValue, Int: v} }

// Float returns a floating point value.
func Float(v float64) Value { return Value{Kind: FloatValue, Float: v} }

// String returns a non-null text value.
func String(s string) Value { return Value{Kind: TextValue, Text: &s} }

// NullText returns the string null.
func NullText() Value { return Value{Kind: TextValue} }

// IsNull reports whether v holds its kind's null sentinel.
func (v Value) IsNull() bool {
	switch v.Kind {
	case IntValue:
		return v.Int == math.MinInt64
	case FloatValue:
		return v.Float == DBLMin
	default:
		return v.Text == nil
	}
}

func (v Value) truthy() bool {
	switch v.Kind {
	case IntValue:
		return v.Int != 0
	case FloatValue:
		return v.Float != 0
	default:
		return v.Text != nil
	}
}

func (v Value) float() float64 {
	if v.Kind == IntValue {
		return float64(v.Int)
	}
	return v.Float
}

// Constants maps the runtime macros a test may reference to their values.
var Constants = map[string]Value{
	"YB_INT_NULL":    Int(math.MinInt64),
	"YB_FLOAT_NULL":  Float(DBLMin),
	"YB_STRING_NULL": NullText(),
	"NULL":           NullText(),
	"YB_OK":          Int(0),
	"YB_FAIL":        Int(-1),
}

// ErrUnknownIdentifier is returned when a test names neither a field nor a
// runtime constant.
var ErrUnknownIdentifier = errors.New("unknown identifier")

// Env resolves record fields by name.
type Env func(name string) (Value, bool)

// Eval evaluates expr with C semantics against env.
func Eval(expr *Expression, env Env) (bool, error) {
	return evalExpression(expr, env)
}

func evalExpression(e *Expression, env Env) (bool, error) {
	ok, err := evalConjunction(e.Left, env)
	if err != nil || ok {
		return ok, err
	}
	for _, c := range e.Right {
		if ok, err = evalConjunction(c, env); err != nil || ok {
			return ok, err
		}
	}
	return false, nil
}

func evalConjunction(c *Conjunction, env Env) (bool, error) {
	ok, err := evalUnary(c.Left, env)
	if err != nil || !ok {
		return ok, err
	}
	for _, u := range c.Right {
		if ok, err = evalUnary(u, env); err != nil || !ok {
			return ok, err
		}
	}
	return true, nil
}

func evalUnary(u *Unary, env Env) (bool, error) {
	if u.Not != nil {
		ok, err := evalUnary(u.Not, env)
		return !ok, err
	}
	return evalComparison(u.Comparison, env)
}

func evalComparison(c *Comparison, env Env) (bool, error) {
	left, err := evalOperand(c.Left, env)
	if err != nil {
		return false, err
	}
	if c.Right == nil {
		return left.truthy(), nil
	}
	right, err := evalOperand(c.Right, env)
	if err != nil {
		return false, err
	}
	return compare(left, c.Op, right)
}

func compare(l Value, op string, r Value) (bool, error) {
	if l.Kind == TextValue || r.Kind == TextValue {
		if l.Kind != r.Kind {
			return false, fmt.Errorf("cannot compare text with a number")
		}
		if l.Text != nil && r.Text != nil {
			return false, fmt.Errorf("text fields can only be compared with YB_STRING_NULL")
		}
		switch op {
		case "==":
			return (l.Text == nil) == (r.Text == nil), nil
		case "!=":
			return (l.Text == nil) != (r.Text == nil), nil
		default:
			return false, fmt.Errorf("operator %s is not defined for text", op)
		}
	}

	if l.Kind == IntValue && r.Kind == IntValue {
		a, b := l.Int, r.Int
		switch op {
		case "==":
			return a == b, nil
		case "!=":
			return a != b, nil
		case "<":
			return a < b, nil
		case "<=":
			return a <= b, nil
		case ">":
			return a > b, nil
		case ">=":
			return a >= b, nil
		}
		return false, fmt.Errorf("unknown operator %s", op)
	}

	a, b := l.float(), r.float()
	switch op {
	case "==":
		return a == b, nil
	case "!=":
		return a != b, nil
	case "<":
		return a < b, nil
	case "<=":
		return a <= b, nil
	case ">":
		return a > b, nil
	case ">=":
		return a >= b, nil
	}
	return false, fmt.Errorf("unknown operator %s", op)
}

func evalOperand(o *Operand, env Env) (Value, error) {
	var v Value
	switch {
	case o.Number != nil:
		n, err := parseNumber(*o.Number)
		if err != nil {
			return Value{}, err
		}
		v = n
	case o.Ident != nil:
		name := *o.Ident
		if env != nil {
			if fv, ok := env(name); ok {
				v = fv
				break
			}
		}
		cv, ok := Constants[name]
		if !ok {
			return Value{}, fmt.Errorf("%w: %s", ErrUnknownIdentifier, name)
		}
		v = cv
	case o.Group != nil:
		if inner := o.Group.bareOperand(); inner != nil {
			gv, err := evalOperand(inner, env)
			if err != nil {
				return Value{}, err
			}
			v = gv
			break
		}
		// Logical and relational operators yield 0 or 1, as in C.
		ok, err := evalExpression(o.Group, env)
		if err != nil {
			return Value{}, err
		}
		if ok {
			v = Int(1)
		} else {
			v = Int(0)
		}
	}

	if o.Negative {
		switch v.Kind {
		case IntValue:
			v.Int = -v.Int
		case FloatValue:
			v.Float = -v.Float
		default:
			return Value{}, fmt.Errorf("cannot negate text")
		}
	}
	return v, nil
}

// bareOperand returns the operand e consists of when it has no operator,
// such as the inside of "(age)".
func (e *Expression) bareOperand() *Operand {
	if len(e.Right) > 0 || len(e.Left.Right) > 0 {
		return nil
	}
	u := e.Left.Left
	if u.Not != nil || u.Comparison.Right != nil {
		return nil
	}
	return u.Comparison.Left
}

func parseNumber(s string) (Value, error) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Int(i), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Value{}, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return Float(f), nil
}
