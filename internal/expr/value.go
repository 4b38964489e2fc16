package expr

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies the type of a Value.
type Kind int

const (
	// KindBool represents a boolean value.
	KindBool Kind = iota
	// KindInt represents a 64-bit signed integer.
	KindInt
	// KindFloat represents a 64-bit float.
	KindFloat
	// KindString represents a string.
	KindString
	// KindSet represents a set of strings.
	KindSet
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindSet:
		return "set"
	case KindAny:
		return "any"
	default:
		return "unknown"
	}
}

// Value is an immutable typed result of expression evaluation.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	set  []string
}

// Bool creates a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int creates an integer value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float creates a float value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// String creates a string value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Set creates a string set value. Duplicates are removed and members are sorted.
func Set(members ...string) Value {
	seen := make(map[string]struct{}, len(members))
	out := make([]string, 0, len(members))
	for _, m := range members {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	sort.Strings(out)
	return Value{kind: KindSet, set: out}
}

// Kind returns the value's type.
func (v Value) Kind() Kind { return v.kind }

// AsBool returns the boolean payload.
func (v Value) AsBool() bool { return v.b }

// AsInt returns the integer payload.
func (v Value) AsInt() int64 { return v.i }

// AsFloat returns the numeric payload as a float, converting integers.
func (v Value) AsFloat() float64 {
	if v.kind == KindInt {
		return float64(v.i)
	}
	return v.f
}

// AsString returns the string payload.
func (v Value) AsString() string { return v.s }

// Members returns a copy of the set members in sorted order.
func (v Value) Members() []string {
	out := make([]string, len(v.set))
	copy(out, v.set)
	return out
}

// Has reports whether the set contains member.
func (v Value) Has(member string) bool {
	i := sort.SearchStrings(v.set, member)
	return i < len(v.set) && v.set[i] == member
}

// String returns the textual form used by inline substitution.
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case KindString:
		return v.s
	case KindSet:
		return strings.Join(v.set, ",")
	default:
		return ""
	}
}

// GoString renders the value with its type, used in error messages and `cpre eval`.
func (v Value) GoString() string {
	switch v.kind {
	case KindString:
		return strconv.Quote(v.s)
	case KindSet:
		return fmt.Sprintf("set[%s]", strings.Join(v.set, ","))
	default:
		return v.String()
	}
}

// Equal reports whether two values have the same kind and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindBool:
		return v.b == o.b
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f
	case KindString:
		return v.s == o.s
	case KindSet:
		if len(v.set) != len(o.set) {
			return false
		}
		for i := range v.set {
			if v.set[i] != o.set[i] {
				return false
			}
		}
		return true
	}
	return false
}

func (v Value) isNumeric() bool {
	return v.kind == KindInt || v.kind == KindFloat
}
