package expr

import (
	"math"
	"strings"
)

// Scope resolves variable names during evaluation.
// Names are passed in lower case.
type Scope interface {
	Lookup(name string) (Value, bool)
}

// MapScope is a Scope backed by a map.
type MapScope map[string]Value

// Lookup implements Scope.
func (m MapScope) Lookup(name string) (Value, bool) {
	v, ok := m[name]
	return v, ok
}

// Evaluator evaluates expressions against a function registry.
// It holds no state besides the registry and is safe for concurrent use.
type Evaluator struct {
	registry *Registry
}

// NewEvaluator creates an Evaluator. A nil registry selects the built-in functions.
func NewEvaluator(registry *Registry) *Evaluator {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Evaluator{registry: registry}
}

// Registry returns the evaluator's function registry.
func (ev *Evaluator) Registry() *Registry {
	return ev.registry
}

// Eval parses and evaluates src.
func (ev *Evaluator) Eval(src string, scope Scope) (Value, error) {
	e, err := Parse(src)
	if err != nil {
		return Value{}, err
	}
	return ev.Evaluate(e, scope)
}

// Evaluate evaluates a parsed expression.
func (ev *Evaluator) Evaluate(e *Expression, scope Scope) (Value, error) {
	if scope == nil {
		scope = MapScope(nil)
	}
	v, err := e.root.eval(ev, scope)
	if err != nil {
		return Value{}, withExpr(err, e.src)
	}
	return v, nil
}

// EvalBool evaluates src and requires a boolean result.
func (ev *Evaluator) EvalBool(src string, scope Scope) (bool, error) {
	v, err := ev.Eval(src, scope)
	if err != nil {
		return false, err
	}
	if v.Kind() != KindBool {
		return false, &EvalError{Expr: src, Message: "expected bool result, got " + v.Kind().String()}
	}
	return v.AsBool(), nil
}

// EvalString evaluates src and requires a string result.
func (ev *Evaluator) EvalString(src string, scope Scope) (string, error) {
	v, err := ev.Eval(src, scope)
	if err != nil {
		return "", err
	}
	if v.Kind() != KindString {
		return "", &EvalError{Expr: src, Message: "expected string result, got " + v.Kind().String()}
	}
	return v.AsString(), nil
}

func (n *literalNode) eval(*Evaluator, Scope) (Value, error) {
	return n.value, nil
}

func (n *variableNode) eval(_ *Evaluator, scope Scope) (Value, error) {
	if v, ok := scope.Lookup(n.name); ok {
		return v, nil
	}
	return Value{}, newEvalError("unknown variable %q", n.name)
}

func (n *unaryNode) eval(ev *Evaluator, scope Scope) (Value, error) {
	v, err := n.operand.eval(ev, scope)
	if err != nil {
		return Value{}, err
	}
	switch {
	case n.op == "!" && v.Kind() == KindBool:
		return Bool(!v.AsBool()), nil
	case n.op == "-" && v.Kind() == KindInt:
		return Int(-v.AsInt()), nil
	case n.op == "-" && v.Kind() == KindFloat:
		return Float(-v.AsFloat()), nil
	}
	return Value{}, newEvalError("operator %q does not accept (%s)", n.op, v.Kind())
}

func (n *binaryNode) eval(ev *Evaluator, scope Scope) (Value, error) {
	left, err := n.left.eval(ev, scope)
	if err != nil {
		return Value{}, err
	}

	if n.op == "&&" || n.op == "||" {
		if left.Kind() != KindBool {
			return Value{}, newEvalError("operator %q does not accept (%s, ...)", n.op, left.Kind())
		}
		if n.op == "&&" && !left.AsBool() {
			return Bool(false), nil
		}
		if n.op == "||" && left.AsBool() {
			return Bool(true), nil
		}
		right, err := n.right.eval(ev, scope)
		if err != nil {
			return Value{}, err
		}
		if right.Kind() != KindBool {
			return Value{}, mismatch(n.op, left, right)
		}
		return right, nil
	}

	right, err := n.right.eval(ev, scope)
	if err != nil {
		return Value{}, err
	}
	return applyBinary(n.op, left, right)
}

func (n *callNode) eval(ev *Evaluator, scope Scope) (Value, error) {
	fn, ok := ev.registry.Lookup(n.name)
	if !ok {
		msg := "unknown function \"" + n.name + "\""
		if hint := Suggest(n.name, ev.registry.Names()); hint != "" {
			msg += ", did you mean \"" + hint + "\"?"
		}
		return Value{}, newEvalError("%s", msg)
	}
	args := make([]Value, len(n.args))
	for i, a := range n.args {
		v, err := a.eval(ev, scope)
		if err != nil {
			return Value{}, err
		}
		args[i] = v
	}
	return fn.call(scope, args)
}

func applyBinary(op string, l, r Value) (Value, error) {
	lk, rk := l.Kind(), r.Kind()
	switch op {
	case "+":
		switch {
		case lk == KindInt && rk == KindInt:
			return Int(l.AsInt() + r.AsInt()), nil
		case l.isNumeric() && r.isNumeric():
			return Float(l.AsFloat() + r.AsFloat()), nil
		case lk == KindSet && rk == KindSet:
			return Set(append(l.Members(), r.set...)...), nil
		case lk == KindSet && rk == KindString:
			return Set(append(l.Members(), r.s)...), nil
		case lk == KindString || rk == KindString:
			return String(l.String() + r.String()), nil
		}
	case "-", "*", "/":
		if lk == KindInt && rk == KindInt {
			return intArith(op, l.AsInt(), r.AsInt())
		}
		if l.isNumeric() && r.isNumeric() {
			return floatArith(op, l.AsFloat(), r.AsFloat()), nil
		}
	case "%":
		if lk == KindInt && rk == KindInt {
			if r.AsInt() == 0 {
				return Value{}, newEvalError("division by zero")
			}
			return Int(l.AsInt() % r.AsInt()), nil
		}
	case "<", "<=", ">", ">=":
		if c, ok := compare(l, r); ok {
			switch op {
			case "<":
				return Bool(c < 0), nil
			case "<=":
				return Bool(c <= 0), nil
			case ">":
				return Bool(c > 0), nil
			default:
				return Bool(c >= 0), nil
			}
		}
	case "==", "!=":
		eq, ok := equal(l, r)
		if ok {
			if op == "!=" {
				eq = !eq
			}
			return Bool(eq), nil
		}
	}
	return Value{}, mismatch(op, l, r)
}

func intArith(op string, a, b int64) (Value, error) {
	switch op {
	case "-":
		return Int(a - b), nil
	case "*":
		return Int(a * b), nil
	default:
		if b == 0 {
			return Value{}, newEvalError("division by zero")
		}
		return Int(a / b), nil
	}
}

func floatArith(op string, a, b float64) Value {
	switch op {
	case "-":
		return Float(a - b)
	case "*":
		return Float(a * b)
	default:
		return Float(a / b)
	}
}

// compare orders numeric or string operands.
func compare(l, r Value) (int, bool) {
	switch {
	case l.Kind() == KindInt && r.Kind() == KindInt:
		return cmpInt(l.AsInt(), r.AsInt()), true
	case l.isNumeric() && r.isNumeric():
		a, b := l.AsFloat(), r.AsFloat()
		if math.IsNaN(a) || math.IsNaN(b) {
			return 0, false
		}
		switch {
		case a < b:
			return -1, true
		case a > b:
			return 1, true
		}
		return 0, true
	case l.Kind() == KindString && r.Kind() == KindString:
		return strings.Compare(l.AsString(), r.AsString()), true
	}
	return 0, false
}

func equal(l, r Value) (bool, bool) {
	if l.isNumeric() && r.isNumeric() {
		c, ok := compare(l, r)
		return ok && c == 0, true
	}
	if l.Kind() != r.Kind() {
		return false, false
	}
	return l.Equal(r), true
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func mismatch(op string, l, r Value) *EvalError {
	return newEvalError("operator %q does not accept (%s, %s)", op, l.Kind(), r.Kind())
}
