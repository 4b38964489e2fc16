package preprocessor

import (
	"strings"

	"github.com/tacogips/cpre/internal/expr"
)

// Variable directives.

func lower(s string) string { return strings.ToLower(s) }

// parseAssignment splits "name = expression".
func parseAssignment(arg string) (string, string, error) {
	i := strings.IndexByte(arg, '=')
	if i < 0 {
		return "", "", newProcessError(KindUsage, "expected name = expression, found %q", arg)
	}
	name := strings.TrimSpace(arg[:i])
	value := strings.TrimSpace(arg[i+1:])
	if !IsVariableName(name) {
		return "", "", newProcessError(KindUsage, "invalid variable name %q", name)
	}
	if value == "" || strings.HasPrefix(value, "=") {
		return "", "", newProcessError(KindUsage, "expected name = expression, found %q", arg)
	}
	return lower(name), value, nil
}

// parseDefinition splits "name" or "name = expression"; a bare name defines true.
func parseDefinition(arg string) (string, string, error) {
	if !strings.Contains(arg, "=") {
		if !IsVariableName(arg) {
			return "", "", newProcessError(KindUsage, "invalid variable name %q", arg)
		}
		return lower(arg), "", nil
	}
	return parseAssignment(arg)
}

func (p *Preprocessor) evalDefinition(st *State, arg string, allowBare bool) (string, expr.Value, error) {
	var (
		name, src string
		err       error
	)
	if allowBare {
		name, src, err = parseDefinition(arg)
	} else {
		name, src, err = parseAssignment(arg)
	}
	if err != nil {
		return "", expr.Value{}, err
	}
	if src == "" {
		return name, expr.Bool(true), nil
	}
	v, err := p.evaluator.Eval(src, st)
	if err != nil {
		return "", expr.Value{}, err
	}
	return name, v, nil
}

func setGlobal(st *State, name string, v expr.Value) error {
	if err := st.Globals().Set(name, v); err != nil {
		return wrapProcessError(KindUsage, err, "cannot set %q", name)
	}
	return nil
}

var globalDirective = &Directive{
	Keyword:   "global",
	Phases:    PhaseGlobal,
	Arg:       ArgAssignment,
	Reference: "set a global variable during the global pass",
	Execute: func(p *Preprocessor, st *State, arg string) (Outcome, error) {
		name, v, err := p.evalDefinition(st, arg, false)
		if err != nil {
			return OutcomeProcessed, err
		}
		return OutcomeProcessed, setGlobal(st, name, v)
	},
}

var localDirective = &Directive{
	Keyword:   "local",
	Phases:    PhaseMain,
	Arg:       ArgAssignment,
	Reference: "set a variable visible in this file only",
	Execute: func(p *Preprocessor, st *State, arg string) (Outcome, error) {
		name, v, err := p.evalDefinition(st, arg, false)
		if err != nil {
			return OutcomeProcessed, err
		}
		return OutcomeProcessed, st.SetLocal(name, v)
	},
}

var defineLocalDirective = &Directive{
	Keyword:   "definel",
	Phases:    PhaseMain,
	Arg:       ArgTail,
	Reference: "define a local variable, true unless a value is given",
	Execute: func(p *Preprocessor, st *State, arg string) (Outcome, error) {
		name, v, err := p.evalDefinition(st, arg, true)
		if err != nil {
			return OutcomeProcessed, err
		}
		return OutcomeProcessed, st.SetLocal(name, v)
	},
}

var defineDirective = &Directive{
	Keyword:   "define",
	Phases:    PhaseMain,
	Arg:       ArgTail,
	Reference: "define a global variable, true unless a value is given",
	Execute: func(p *Preprocessor, st *State, arg string) (Outcome, error) {
		name, v, err := p.evalDefinition(st, arg, true)
		if err != nil {
			return OutcomeProcessed, err
		}
		return OutcomeProcessed, setGlobal(st, name, v)
	},
}

var undefineDirective = &Directive{
	Keyword:   "undefine",
	Phases:    PhaseMain,
	Arg:       ArgVarName,
	Reference: "remove a local variable, or the global one when no local exists",
	Execute: func(_ *Preprocessor, st *State, arg string) (Outcome, error) {
		name := lower(arg)
		if _, ok := st.locals[name]; ok {
			delete(st.locals, name)
			return OutcomeProcessed, nil
		}
		st.Globals().Delete(name)
		return OutcomeProcessed, nil
	},
}
