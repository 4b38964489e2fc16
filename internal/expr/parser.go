package expr

import (
	"strconv"
	"strings"
)

// node is an element of a parsed expression tree.
type node interface {
	eval(ev *Evaluator, scope Scope) (Value, error)
}

type literalNode struct {
	value Value
}

type variableNode struct {
	name string
}

type unaryNode struct {
	op      string
	operand node
}

type binaryNode struct {
	op          string
	left, right node
}

type callNode struct {
	name string
	args []node
}

// Expression is a parsed expression ready for evaluation.
type Expression struct {
	src  string
	root node
}

// Source returns the text the expression was parsed from.
func (e *Expression) Source() string {
	return e.src
}

// binary operator precedence levels, lowest first.
var precedence = [][]string{
	{"||"},
	{"&&"},
	{"==", "!="},
	{"<", "<=", ">", ">="},
	{"+", "-"},
	{"*", "/", "%"},
}

// Parse parses src into an Expression.
func Parse(src string) (*Expression, error) {
	if strings.TrimSpace(src) == "" {
		return nil, &EvalError{Expr: src, Message: "empty expression"}
	}
	tokens, err := lex(src)
	if err != nil {
		return nil, &EvalError{Expr: src, Message: "syntax error " + err.Error(), Cause: err}
	}
	p := &parser{tokens: tokens}
	root, err := p.parseLevel(0)
	if err != nil {
		return nil, withExpr(err, src)
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, &EvalError{Expr: src, Message: "unexpected " + strconv.Quote(tok.text) + " at " + strconv.Itoa(tok.pos)}
	}
	return &Expression{src: src, root: root}, nil
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) parseLevel(level int) (node, error) {
	if level == len(precedence) {
		return p.parseUnary()
	}
	left, err := p.parseLevel(level + 1)
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		if tok.kind != tokOp || !contains(precedence[level], tok.text) {
			return left, nil
		}
		p.next()
		right, err := p.parseLevel(level + 1)
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: tok.text, left: left, right: right}
	}
}

func (p *parser) parseUnary() (node, error) {
	tok := p.peek()
	if tok.kind == tokOp && tok.text == "-" && p.tokens[p.pos+1].kind == tokInt {
		// Negative integer literals are parsed whole so the minimum int64 is representable.
		p.next()
		lit := p.next()
		i, err := strconv.ParseInt("-"+lit.text, 0, 64)
		if err != nil {
			return nil, wrapEvalError(err, "invalid integer literal -%s", lit.text)
		}
		return &literalNode{value: Int(i)}, nil
	}
	if tok.kind == tokOp && (tok.text == "!" || tok.text == "-") {
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &unaryNode{op: tok.text, operand: operand}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (node, error) {
	tok := p.next()
	switch tok.kind {
	case tokInt:
		i, err := strconv.ParseInt(tok.text, 0, 64)
		if err != nil {
			return nil, wrapEvalError(err, "invalid integer literal %s", tok.text)
		}
		return &literalNode{value: Int(i)}, nil
	case tokFloat:
		f, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			return nil, wrapEvalError(err, "invalid float literal %s", tok.text)
		}
		return &literalNode{value: Float(f)}, nil
	case tokString:
		return &literalNode{value: String(tok.text)}, nil
	case tokIdent:
		name := strings.ToLower(tok.text)
		if p.peek().kind == tokLParen {
			p.next()
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			return &callNode{name: name, args: args}, nil
		}
		switch name {
		case "true":
			return &literalNode{value: Bool(true)}, nil
		case "false":
			return &literalNode{value: Bool(false)}, nil
		}
		return &variableNode{name: name}, nil
	case tokLParen:
		inner, err := p.parseLevel(0)
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return nil, newEvalError("expected ')' at %d", closing.pos)
		}
		return inner, nil
	case tokEOF:
		return nil, newEvalError("unexpected end of expression")
	default:
		return nil, newEvalError("unexpected %q at %d", tok.text, tok.pos)
	}
}

func (p *parser) parseArgs() ([]node, error) {
	var args []node
	if p.peek().kind == tokRParen {
		p.next()
		return args, nil
	}
	for {
		arg, err := p.parseLevel(0)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		tok := p.next()
		switch tok.kind {
		case tokComma:
			continue
		case tokRParen:
			return args, nil
		default:
			return nil, newEvalError("expected ',' or ')' at %d", tok.pos)
		}
	}
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func withExpr(err error, src string) error {
	if ee, ok := err.(*EvalError); ok {
		if ee.Expr == "" {
			ee.Expr = src
		}
		return ee
	}
	return &EvalError{Expr: src, Message: err.Error(), Cause: err}
}
