package preprocessor

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tacogips/cpre/internal/expr"
)

// DirectivePrefix starts every directive line.
const DirectivePrefix = "//#"

// Phase is a bit set of passes a directive runs in.
type Phase uint8

const (
	// PhaseGlobal is the first pass, collecting global directives.
	PhaseGlobal Phase = 1 << iota
	// PhaseMain is the second pass, performing substitution and emission.
	PhaseMain
)

// String returns the string representation of the phase set.
func (p Phase) String() string {
	switch p {
	case PhaseGlobal:
		return "global"
	case PhaseMain:
		return "main"
	case PhaseGlobal | PhaseMain:
		return "global+main"
	default:
		return "none"
	}
}

// ArgShape declares what follows a directive keyword.
type ArgShape int

const (
	// ArgNone means nothing may follow the keyword.
	ArgNone ArgShape = iota
	// ArgTail is free text.
	ArgTail
	// ArgVarName is a single variable name.
	ArgVarName
	// ArgExpression is an expression.
	ArgExpression
	// ArgAssignment is "name = expression".
	ArgAssignment
)

// String returns the string representation of the argument shape.
func (a ArgShape) String() string {
	switch a {
	case ArgNone:
		return "none"
	case ArgTail:
		return "text"
	case ArgVarName:
		return "name"
	case ArgExpression:
		return "expression"
	case ArgAssignment:
		return "name = expression"
	default:
		return "unknown"
	}
}

// Outcome is the control signal returned by a directive.
type Outcome int

const (
	// OutcomeProcessed means the line was handled.
	OutcomeProcessed Outcome = iota
	// OutcomeReadNextLine means the directive does not run in this pass.
	OutcomeReadNextLine
)

// Handler executes a directive. arg is the trimmed argument text.
type Handler func(p *Preprocessor, st *State, arg string) (Outcome, error)

// Directive describes one directive keyword.
type Directive struct {
	// Keyword follows the directive prefix.
	Keyword string
	// Phases lists the passes the directive runs in.
	Phases Phase
	// Arg is the argument shape.
	Arg ArgShape
	// AlwaysExecute directives run even inside skipped regions to keep scopes balanced.
	AlwaysExecute bool
	// Reference is a one-line description.
	Reference string
	// Execute runs the directive.
	Execute Handler
}

// Usage returns the directive as written in source, e.g. "//#if <expression>".
func (d *Directive) Usage() string {
	if d.Arg == ArgNone {
		return DirectivePrefix + d.Keyword
	}
	return fmt.Sprintf("%s%s <%s>", DirectivePrefix, d.Keyword, d.Arg)
}

// DirectiveRegistry is an ordered list of directives. The first keyword that
// prefixes the directive text wins, so registration order matters.
type DirectiveRegistry struct {
	directives []*Directive
}

// NewDirectiveRegistry creates a registry. It fails when a keyword is duplicated
// or can never match because an earlier keyword is a prefix of it.
func NewDirectiveRegistry(directives ...*Directive) (*DirectiveRegistry, error) {
	for i, d := range directives {
		if d.Keyword == "" || d.Execute == nil {
			return nil, fmt.Errorf("directive #%d is incomplete", i)
		}
		for _, earlier := range directives[:i] {
			if strings.HasPrefix(d.Keyword, earlier.Keyword) {
				return nil, fmt.Errorf("directive %q is shadowed by %q", d.Keyword, earlier.Keyword)
			}
		}
	}
	return &DirectiveRegistry{directives: directives}, nil
}

// Directives returns the directives in registration order.
func (r *DirectiveRegistry) Directives() []*Directive {
	out := make([]*Directive, len(r.directives))
	copy(out, r.directives)
	return out
}

// Match returns the first directive whose keyword prefixes text, and the rest of text.
func (r *DirectiveRegistry) Match(text string) (*Directive, string, bool) {
	for _, d := range r.directives {
		if strings.HasPrefix(text, d.Keyword) {
			return d, text[len(d.Keyword):], true
		}
	}
	return nil, "", false
}

// Keywords returns the keywords in registration order.
func (r *DirectiveRegistry) Keywords() []string {
	out := make([]string, len(r.directives))
	for i, d := range r.directives {
		out[i] = d.Keyword
	}
	return out
}

// directiveText returns the text after the directive prefix of a left-trimmed line.
func directiveText(trimmed string, allowWhitespace bool) (string, bool) {
	if strings.HasPrefix(trimmed, DirectivePrefix) {
		return trimmed[len(DirectivePrefix):], true
	}
	if !allowWhitespace || !strings.HasPrefix(trimmed, "//") {
		return "", false
	}
	rest := strings.TrimLeft(trimmed[2:], " \t")
	if len(rest) == len(trimmed)-2 || !strings.HasPrefix(rest, "#") {
		return "", false
	}
	return rest[1:], true
}

// dispatch routes one directive through the phase, execution and argument gates.
func (p *Preprocessor) dispatch(st *State, text string, phase Phase) (Outcome, error) {
	d, rest, ok := p.directives.Match(text)
	if !ok {
		word := strings.FieldsFunc(text, unicode.IsSpace)
		msg := fmt.Sprintf("unknown directive %s%s", DirectivePrefix, strings.TrimSpace(text))
		if len(word) > 0 {
			if hint := expr.Suggest(word[0], p.directives.Keywords()); hint != "" {
				msg += fmt.Sprintf(", did you mean %s%s?", DirectivePrefix, hint)
			}
		}
		return OutcomeProcessed, newProcessError(KindUnknownDirective, "%s", msg)
	}

	if d.Phases&phase == 0 {
		return OutcomeReadNextLine, nil
	}

	allowed := d.AlwaysExecute || st.CanDirectiveExecute()

	if d.Arg == ArgNone {
		if strings.TrimSpace(rest) != "" {
			if !allowed {
				return OutcomeProcessed, nil
			}
			return OutcomeProcessed, newProcessError(KindUsage,
				"directive %s%s takes no argument, found %q", DirectivePrefix, d.Keyword, strings.TrimSpace(rest))
		}
		if !allowed {
			return OutcomeProcessed, nil
		}
		return d.Execute(p, st, "")
	}

	r, _ := utf8.DecodeRuneInString(rest)
	arg := strings.TrimSpace(rest)
	if rest == "" || !unicode.IsSpace(r) || arg == "" {
		if !allowed {
			return OutcomeProcessed, nil
		}
		return OutcomeProcessed, newProcessError(KindUsage,
			"directive %s%s needs %s", DirectivePrefix, d.Keyword, article(d.Arg))
	}
	if !allowed {
		return OutcomeProcessed, nil
	}
	if d.Arg == ArgVarName && !IsVariableName(arg) {
		return OutcomeProcessed, newProcessError(KindUsage, "invalid variable name %q", arg)
	}
	return d.Execute(p, st, arg)
}

func article(a ArgShape) string {
	switch a {
	case ArgExpression:
		return "an expression"
	case ArgVarName:
		return "a variable name"
	case ArgAssignment:
		return "an assignment (name = expression)"
	default:
		return "an argument"
	}
}
