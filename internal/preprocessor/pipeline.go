// Package preprocessor implements the comment-directive preprocessing engine:
// the per-file state machine, directive dispatch, inline macro substitution,
// the two-pass file pipeline and output emission.
package preprocessor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tacogips/cpre/internal/charset"
	"github.com/tacogips/cpre/internal/expr"
	"github.com/tacogips/cpre/internal/logger"
	"github.com/tacogips/cpre/internal/model"
)

// DefaultMaxIncludeDepth bounds nested //#include and evalfile calls.
const DefaultMaxIncludeDepth = 10

// Options are the fixed-for-the-run settings of a Preprocessor.
type Options struct {
	// InputCharset decodes source files. Nil selects UTF-8.
	InputCharset *charset.Codec
	// OutputCharset encodes destination files. Nil selects UTF-8.
	OutputCharset *charset.Codec
	// ContentStableWrite skips writes when the destination already holds the output.
	ContentStableWrite bool
	// StripComments removes comments from the assembled output.
	StripComments bool
	// PreserveAttributes copies mode and modification time from the source.
	PreserveAttributes bool
	// AllowWhitespaceBeforePrefix accepts "// #keyword" as a directive.
	AllowWhitespaceBeforePrefix bool
	// MaxIncludeDepth bounds inclusion nesting. Zero selects DefaultMaxIncludeDepth.
	MaxIncludeDepth int
	// DryRun renders and diffs without writing.
	DryRun bool
}

func (o Options) withDefaults() Options {
	if o.InputCharset == nil {
		o.InputCharset = charset.MustLookup(charset.Default)
	}
	if o.OutputCharset == nil {
		o.OutputCharset = charset.MustLookup(charset.Default)
	}
	if o.MaxIncludeDepth <= 0 {
		o.MaxIncludeDepth = DefaultMaxIncludeDepth
	}
	return o
}

// FileResult is the outcome of processing one file.
type FileResult struct {
	// File is the processed file.
	File *model.FileDescriptor
	// Excluded is true when a deferred exclusion removed the file from the main pass.
	Excluded bool
	// Emit describes the destination write; nil for excluded files.
	Emit *EmitResult
}

// Preprocessor runs the two-pass pipeline. It is safe for concurrent use
// as long as each file is processed by one goroutine.
type Preprocessor struct {
	opts       Options
	globals    *Globals
	evaluator  *expr.Evaluator
	directives *DirectiveRegistry
	emitter    *Emitter
	log        logger.Logger
}

// New creates a Preprocessor sharing globals across every file it processes.
// A nil log discards directive messages.
func New(opts Options, globals *Globals, log logger.Logger) (*Preprocessor, error) {
	opts = opts.withDefaults()
	if globals == nil {
		globals = NewGlobals(nil)
	}
	if log == nil {
		log = logger.Discard
	}
	directives, err := NewDirectiveRegistry(DefaultDirectives()...)
	if err != nil {
		return nil, err
	}
	p := &Preprocessor{
		opts:       opts,
		globals:    globals,
		directives: directives,
		emitter:    NewEmitter(opts, nil),
		log:        log,
	}
	functions := expr.NewRegistry()
	if err := functions.Register(p.evalFileFunction()); err != nil {
		return nil, err
	}
	p.evaluator = expr.NewEvaluator(functions)
	return p, nil
}

// Globals returns the shared variable table.
func (p *Preprocessor) Globals() *Globals { return p.globals }

// Evaluator returns the expression evaluator, including evalfile.
func (p *Preprocessor) Evaluator() *expr.Evaluator { return p.evaluator }

// Directives returns the directive registry.
func (p *Preprocessor) Directives() *DirectiveRegistry { return p.directives }

// ProcessFile runs both passes for one file and writes its destination.
func (p *Preprocessor) ProcessFile(ctx context.Context, fd *model.FileDescriptor) (*FileResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	st, err := p.GlobalPass(fd)
	if err != nil {
		return nil, err
	}
	excluded, err := p.ResolveExclusions(st)
	if err != nil {
		st.Dispose()
		return nil, err
	}
	if excluded {
		st.Dispose()
		return &FileResult{File: fd, Excluded: true}, nil
	}
	res, err := p.MainPass(st)
	if err != nil {
		return nil, err
	}
	return &FileResult{File: fd, Emit: res}, nil
}

// GlobalPass reads the file collecting global directives. The returned state
// keeps the deferred exclusions for ResolveExclusions and is reused by MainPass.
func (p *Preprocessor) GlobalPass(fd *model.FileDescriptor) (*State, error) {
	logger.Debug("[preprocessor] global pass %s", fd.SourcePath)
	root, err := p.readContainer(fd.SourcePath)
	if err != nil {
		var pe *ProcessError
		if errors.As(err, &pe) {
			pe.Frames = []FilePosition{{Path: fd.SourcePath}}
		}
		return nil, err
	}
	st := NewState(fd, root, p.globals)
	if err := p.run(st, PhaseGlobal); err != nil {
		st.Dispose()
		return nil, err
	}
	return st, nil
}

// ResolveExclusions evaluates the deferred exclusions of a global pass.
// A true condition marks the file descriptor excluded.
func (p *Preprocessor) ResolveExclusions(st *State) (bool, error) {
	for _, ex := range st.TakeExclusions() {
		ok, err := p.evaluator.EvalBool(ex.Condition, st)
		if err != nil {
			return false, &ProcessError{
				Kind:      KindEvaluation,
				Message:   "exclusion condition failed",
				Frames:    ex.Frames,
				Directive: DirectivePrefix + excludeIfDirective.Keyword + " " + ex.Condition,
				Cause:     err,
			}
		}
		if ok {
			logger.Debug("[preprocessor] %s excluded by %q (line %d)", ex.File.SourcePath, ex.Condition, ex.Line+1)
			ex.File.Excluded = true
			return true, nil
		}
	}
	return false, nil
}

// MainPass re-reads the file from its first line, performing substitution,
// dispatch and emission. The state is disposed when the pass ends.
func (p *Preprocessor) MainPass(st *State) (*EmitResult, error) {
	defer st.Dispose()
	logger.Debug("[preprocessor] main pass %s", st.File().SourcePath)
	st.Reset()
	if err := p.run(st, PhaseMain); err != nil {
		return nil, err
	}
	result, err := p.emitter.Emit(st)
	if err != nil {
		return nil, locate(st, "", err)
	}
	return result, nil
}

// Render preprocesses path with both passes and returns the assembled text
// without writing it. locals seed the file's local variables.
func (p *Preprocessor) Render(path string, locals map[string]expr.Value) (string, error) {
	return p.render(path, locals, 0)
}

func (p *Preprocessor) render(path string, locals map[string]expr.Value, depth int) (string, error) {
	root, err := p.readContainer(path)
	if err != nil {
		return "", err
	}
	st := NewState(model.NewFileDescriptor(path, path, false), root, p.globals)
	defer st.Dispose()
	st.evalDepth = depth
	if err := p.run(st, PhaseGlobal); err != nil {
		return "", err
	}
	st.Reset()
	for name, v := range locals {
		st.locals[name] = v
	}
	if err := p.run(st, PhaseMain); err != nil {
		return "", err
	}
	return st.Rendered(), nil
}

func (p *Preprocessor) evalFileFunction() *expr.Function {
	return &expr.Function{
		Name:       "evalfile",
		Signatures: [][]expr.Kind{{expr.KindString}},
		Result:     expr.KindString,
		Reference:  "preprocess another file with the caller's variables and return its text",
		Call: func(scope expr.Scope, args []expr.Value) (expr.Value, error) {
			st, ok := scope.(*State)
			if !ok {
				return expr.Value{}, &expr.EvalError{Message: "evalfile is only available while processing a file"}
			}
			if st.evalDepth >= p.opts.MaxIncludeDepth {
				return expr.Value{}, &expr.EvalError{Message: fmt.Sprintf("evalfile nesting exceeds %d", p.opts.MaxIncludeDepth)}
			}
			path := p.resolvePath(st, args[0].AsString())
			text, err := p.render(path, st.Locals(), st.evalDepth+1)
			if err != nil {
				return expr.Value{}, &expr.EvalError{Message: fmt.Sprintf("evalfile %s: %v", path, err), Cause: err}
			}
			return expr.String(text), nil
		},
	}
}

// run reads every line of the state through one pass.
func (p *Preprocessor) run(st *State, phase Phase) error {
	for {
		raw, ok := st.ReadNextLine()
		if !ok {
			break
		}
		if err := p.processLine(st, raw, phase); err != nil {
			return locate(st, raw, err)
		}
	}
	if st.HasFlag(FlagEndProcessing) {
		return nil
	}
	return checkBalanced(st, phase)
}

func (p *Preprocessor) processLine(st *State, raw string, phase Phase) error {
	trimmed := strings.TrimLeft(raw, " \t")
	indent := raw[:len(raw)-len(trimmed)]

	if phase == PhaseGlobal {
		if text, ok := directiveText(trimmed, p.opts.AllowWhitespaceBeforePrefix); ok {
			return dispatchResult(p.dispatch(st, text, phase))
		}
		return nil
	}

	line := trimmed
	verbatim := strings.HasPrefix(trimmed, "//$$")
	if !verbatim && st.CanDirectiveExecute() {
		expanded, err := p.expandMacros(st, trimmed)
		if err != nil {
			return err
		}
		line = expanded
	}

	if text, ok := directiveText(line, p.opts.AllowWhitespaceBeforePrefix); ok {
		return dispatchResult(p.dispatch(st, text, phase))
	}

	if !st.CanDirectiveExecute() || st.HasFlag(FlagTextOutputDisabled) {
		return nil
	}

	switch {
	case verbatim:
		st.Write(indent + trimmed[len("//$$"):])
	case strings.HasPrefix(line, "//$"):
		st.Write(indent + line[len("//$"):])
	default:
		if st.HasFlag(FlagCommentNextLine) {
			st.Write("//")
			st.ClearFlag(FlagCommentNextLine)
		}
		st.Write(indent + removeTail(line))
	}
	if st.LineHasBreak() {
		st.Write(st.Newline())
	}
	return nil
}

func dispatchResult(outcome Outcome, err error) error {
	if err != nil {
		return err
	}
	switch outcome {
	case OutcomeProcessed, OutcomeReadNextLine:
		return nil
	default:
		return fmt.Errorf("unsupported directive outcome %d", outcome)
	}
}

func checkBalanced(st *State, phase Phase) error {
	opener := "if"
	if phase == PhaseGlobal {
		opener = "_if"
	}
	if c, ok := st.peekConditional(); ok {
		return &ProcessError{
			Kind:    KindStructural,
			Message: fmt.Sprintf("unclosed %s%s", DirectivePrefix, opener),
			Frames:  c.opened,
		}
	}
	if l, ok := st.peekLoop(); ok {
		return &ProcessError{
			Kind:    KindStructural,
			Message: fmt.Sprintf("unclosed %swhile", DirectivePrefix),
			Frames:  l.opened,
		}
	}
	return nil
}

func (p *Preprocessor) resolvePath(st *State, name string) string {
	if filepath.IsAbs(name) {
		return filepath.Clean(name)
	}
	return filepath.Join(filepath.Dir(st.CurrentPath()), name)
}

func (p *Preprocessor) readContainer(path string) (*TextContainer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, wrapProcessError(KindIO, err, "cannot read %s", path)
	}
	text, err := p.opts.InputCharset.Decode(data)
	if err != nil {
		return nil, wrapProcessError(KindIO, err, "cannot decode %s", path)
	}
	return NewTextContainer(path, text), nil
}
