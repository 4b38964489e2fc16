package expr

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/agext/levenshtein"
)

// KindAny matches every value kind in a function signature.
const KindAny Kind = -1

// CallFunc implements a function. Arguments have already been checked against the signatures.
type CallFunc func(scope Scope, args []Value) (Value, error)

// Function describes a callable function of the expression language.
type Function struct {
	// Name is the lower-case function name.
	Name string
	// Signatures lists the accepted argument-kind tuples.
	Signatures [][]Kind
	// Result is the kind every call returns.
	Result Kind
	// Reference is a one-line description shown in listings.
	Reference string
	// Call executes the function.
	Call CallFunc
}

func (f *Function) accepts(args []Value) bool {
	for _, sig := range f.Signatures {
		if len(sig) != len(args) {
			continue
		}
		ok := true
		for i, k := range sig {
			if k != KindAny && k != args[i].Kind() {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

func (f *Function) call(scope Scope, args []Value) (Value, error) {
	if !f.accepts(args) {
		kinds := make([]string, len(args))
		for i, a := range args {
			kinds[i] = a.Kind().String()
		}
		return Value{}, newEvalError("function %s does not accept (%s)", f.Name, strings.Join(kinds, ", "))
	}
	v, err := f.Call(scope, args)
	if err != nil {
		if ee, ok := err.(*EvalError); ok {
			return Value{}, ee
		}
		return Value{}, wrapEvalError(err, "function %s: %v", f.Name, err)
	}
	if v.Kind() != f.Result {
		return Value{}, newEvalError("function %s returned %s, declared %s", f.Name, v.Kind(), f.Result)
	}
	return v, nil
}

// Registry holds the functions callable from expressions.
// Registration happens before processing starts; lookups are safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]*Function
}

// NewRegistry creates a registry populated with the built-in functions.
func NewRegistry() *Registry {
	r := &Registry{funcs: make(map[string]*Function)}
	for _, f := range builtins() {
		r.funcs[f.Name] = f
	}
	return r
}

// Register adds a function. Names are case-insensitive; registering an existing name fails.
func (r *Registry) Register(f *Function) error {
	if f == nil || f.Name == "" || f.Call == nil {
		return fmt.Errorf("invalid function definition")
	}
	name := strings.ToLower(f.Name)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.funcs[name]; exists {
		return fmt.Errorf("function %q already registered", name)
	}
	f.Name = name
	r.funcs[name] = f
	return nil
}

// Lookup returns the function with the given lower-case name.
func (r *Registry) Lookup(name string) (*Function, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.funcs[name]
	return f, ok
}

// Names returns the registered function names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Suggest returns the candidate closest to given, or "" when none is close enough.
func Suggest(given string, candidates []string) string {
	best := ""
	bestDist := 3
	for _, c := range candidates {
		if d := levenshtein.Distance(given, c, nil); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

func builtins() []*Function {
	str := []Kind{KindString}
	return []*Function{
		{
			Name:       "abs",
			Signatures: [][]Kind{{KindInt}},
			Result:     KindInt,
			Reference:  "absolute value of an integer",
			Call: func(_ Scope, args []Value) (Value, error) {
				i := args[0].AsInt()
				if i == math.MinInt64 {
					return Value{}, newEvalError("abs: %d overflows int", i)
				}
				if i < 0 {
					i = -i
				}
				return Int(i), nil
			},
		},
		{
			Name:       "round",
			Signatures: [][]Kind{{KindFloat}, {KindInt}},
			Result:     KindInt,
			Reference:  "round a number to the nearest integer",
			Call: func(_ Scope, args []Value) (Value, error) {
				if args[0].Kind() == KindInt {
					return args[0], nil
				}
				f := math.Round(args[0].AsFloat())
				if math.IsNaN(f) || f < math.MinInt64 || f >= math.MaxInt64 {
					return Value{}, newEvalError("round: %v overflows int", args[0].AsFloat())
				}
				return Int(int64(f)), nil
			},
		},
		{
			Name:       "strlen",
			Signatures: [][]Kind{str},
			Result:     KindInt,
			Reference:  "length of a string in characters",
			Call: func(_ Scope, args []Value) (Value, error) {
				return Int(int64(len([]rune(args[0].AsString())))), nil
			},
		},
		{
			Name:       "issubstr",
			Signatures: [][]Kind{{KindString, KindString}},
			Result:     KindBool,
			Reference:  "case-insensitive check that the first string contains the second",
			Call: func(_ Scope, args []Value) (Value, error) {
				s := strings.ToLower(args[0].AsString())
				sub := strings.ToLower(args[1].AsString())
				return Bool(strings.Contains(s, sub)), nil
			},
		},
		{
			Name:       "str2int",
			Signatures: [][]Kind{str},
			Result:     KindInt,
			Reference:  "parse a decimal or 0x-prefixed integer",
			Call: func(_ Scope, args []Value) (Value, error) {
				i, err := strconv.ParseInt(strings.TrimSpace(args[0].AsString()), 0, 64)
				if err != nil {
					return Value{}, newEvalError("str2int: cannot parse %q", args[0].AsString())
				}
				return Int(i), nil
			},
		},
		{
			Name:       "str2bool",
			Signatures: [][]Kind{str},
			Result:     KindBool,
			Reference:  "parse true/false, or a number where non-zero is true",
			Call: func(_ Scope, args []Value) (Value, error) {
				s := strings.ToLower(strings.TrimSpace(args[0].AsString()))
				if b, err := strconv.ParseBool(s); err == nil {
					return Bool(b), nil
				}
				if i, err := strconv.ParseInt(s, 0, 64); err == nil {
					return Bool(i != 0), nil
				}
				return Value{}, newEvalError("str2bool: cannot parse %q", args[0].AsString())
			},
		},
		{
			Name:       "str",
			Signatures: [][]Kind{{KindAny}},
			Result:     KindString,
			Reference:  "string form of any value",
			Call: func(_ Scope, args []Value) (Value, error) {
				return String(args[0].String()), nil
			},
		},
		{
			Name:       "trim",
			Signatures: [][]Kind{str},
			Result:     KindString,
			Reference:  "remove leading and trailing whitespace",
			Call: func(_ Scope, args []Value) (Value, error) {
				return String(strings.TrimSpace(args[0].AsString())), nil
			},
		},
		{
			Name:       "lower",
			Signatures: [][]Kind{str},
			Result:     KindString,
			Reference:  "lower-case a string",
			Call: func(_ Scope, args []Value) (Value, error) {
				return String(strings.ToLower(args[0].AsString())), nil
			},
		},
		{
			Name:       "upper",
			Signatures: [][]Kind{str},
			Result:     KindString,
			Reference:  "upper-case a string",
			Call: func(_ Scope, args []Value) (Value, error) {
				return String(strings.ToUpper(args[0].AsString())), nil
			},
		},
		{
			Name:       "str2web",
			Signatures: [][]Kind{str},
			Result:     KindString,
			Reference:  "escape a string for HTML",
			Call: func(_ Scope, args []Value) (Value, error) {
				return String(html.EscapeString(args[0].AsString())), nil
			},
		},
		{
			Name:       "str2json",
			Signatures: [][]Kind{str},
			Result:     KindString,
			Reference:  "escape a string for a JSON string literal",
			Call: func(_ Scope, args []Value) (Value, error) {
				var buf bytes.Buffer
				enc := json.NewEncoder(&buf)
				enc.SetEscapeHTML(false)
				if err := enc.Encode(args[0].AsString()); err != nil {
					return Value{}, err
				}
				quoted := strings.TrimSuffix(buf.String(), "\n")
				return String(quoted[1 : len(quoted)-1]), nil
			},
		},
		{
			Name:       "split",
			Signatures: [][]Kind{{KindString, KindString}},
			Result:     KindSet,
			Reference:  "split a string by a separator into a set of trimmed, non-empty members",
			Call: func(_ Scope, args []Value) (Value, error) {
				sep := args[1].AsString()
				if sep == "" {
					return Value{}, newEvalError("split: empty separator")
				}
				var members []string
				for _, part := range strings.Split(args[0].AsString(), sep) {
					if part = strings.TrimSpace(part); part != "" {
						members = append(members, part)
					}
				}
				return Set(members...), nil
			},
		},
		{
			Name:       "contains",
			Signatures: [][]Kind{{KindSet, KindString}},
			Result:     KindBool,
			Reference:  "check that a set contains a member",
			Call: func(_ Scope, args []Value) (Value, error) {
				return Bool(args[0].Has(args[1].AsString())), nil
			},
		},
		{
			Name:       "setsize",
			Signatures: [][]Kind{{KindSet}},
			Result:     KindInt,
			Reference:  "number of members in a set",
			Call: func(_ Scope, args []Value) (Value, error) {
				return Int(int64(len(args[0].set))), nil
			},
		},
		{
			Name:       "defined",
			Signatures: [][]Kind{str},
			Result:     KindBool,
			Reference:  "check that a variable is defined",
			Call: func(scope Scope, args []Value) (Value, error) {
				_, ok := scope.Lookup(strings.ToLower(strings.TrimSpace(args[0].AsString())))
				return Bool(ok), nil
			},
		},
	}
}
