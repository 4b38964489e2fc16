package preprocessor

import (
	"path/filepath"

	"github.com/tacogips/cpre/internal/logger"
)

// Output, inclusion and diagnostic directives.

func flagDirective(keyword, reference string, apply func(st *State)) *Directive {
	return &Directive{
		Keyword:   keyword,
		Phases:    PhaseMain,
		Reference: reference,
		Execute: func(_ *Preprocessor, st *State, _ string) (Outcome, error) {
			apply(st)
			return OutcomeProcessed, nil
		},
	}
}

func bufferDirective(keyword string, b Buffer, reference string) *Directive {
	return flagDirective(keyword, reference, func(st *State) { st.SelectBuffer(b) })
}

var includeDirective = &Directive{
	Keyword:   "include",
	Phases:    PhaseMain,
	Arg:       ArgExpression,
	Reference: "read the lines of another file in place, path relative to the current file",
	Execute: func(p *Preprocessor, st *State, arg string) (Outcome, error) {
		name, err := p.evaluator.EvalString(arg, st)
		if err != nil {
			return OutcomeProcessed, err
		}
		path := p.resolvePath(st, name)
		if st.IncludeDepth() > p.opts.MaxIncludeDepth {
			return OutcomeProcessed, newProcessError(KindStructural,
				"maximum include depth (%d) exceeded", p.opts.MaxIncludeDepth)
		}
		if st.Including(path) {
			return OutcomeProcessed, newProcessError(KindStructural, "circular include of %s", path)
		}
		c, err := p.readContainer(path)
		if err != nil {
			return OutcomeProcessed, err
		}
		logger.Debug("[preprocessor] include %s (depth %d)", path, st.IncludeDepth())
		st.PushInclude(c)
		return OutcomeProcessed, nil
	},
}

var outDirDirective = &Directive{
	Keyword:   "outdir",
	Phases:    PhaseMain,
	Arg:       ArgExpression,
	Reference: "override the destination directory of this file",
	Execute: func(p *Preprocessor, st *State, arg string) (Outcome, error) {
		dir, err := p.evaluator.EvalString(arg, st)
		if err != nil {
			return OutcomeProcessed, err
		}
		dir = filepath.Clean(dir)
		st.outDir = &dir
		return OutcomeProcessed, nil
	},
}

var outNameDirective = &Directive{
	Keyword:   "outname",
	Phases:    PhaseMain,
	Arg:       ArgExpression,
	Reference: "override the destination file name of this file",
	Execute: func(p *Preprocessor, st *State, arg string) (Outcome, error) {
		name, err := p.evaluator.EvalString(arg, st)
		if err != nil {
			return OutcomeProcessed, err
		}
		if name == "" || filepath.Base(name) != name {
			return OutcomeProcessed, newProcessError(KindUsage, "invalid output file name %q", name)
		}
		st.outName = &name
		return OutcomeProcessed, nil
	},
}

var outEnabledDirective = &Directive{
	Keyword:   "outenabled",
	Phases:    PhaseMain,
	Arg:       ArgExpression,
	Reference: "enable or disable writing the destination of this file",
	Execute: func(p *Preprocessor, st *State, arg string) (Outcome, error) {
		ok, err := p.evaluator.EvalBool(arg, st)
		if err != nil {
			return OutcomeProcessed, err
		}
		st.outEnabled = ok
		return OutcomeProcessed, nil
	},
}

func messageDirective(keyword, reference string, emit func(log logger.Logger, text string)) *Directive {
	return &Directive{
		Keyword:   keyword,
		Phases:    PhaseMain,
		Arg:       ArgTail,
		Reference: reference,
		Execute: func(p *Preprocessor, st *State, arg string) (Outcome, error) {
			emit(p.log, arg)
			return OutcomeProcessed, nil
		},
	}
}

var errorDirective = &Directive{
	Keyword:   "error",
	Phases:    PhaseMain,
	Arg:       ArgTail,
	Reference: "log an error and fail the file",
	Execute: func(p *Preprocessor, st *State, arg string) (Outcome, error) {
		p.log.Error(arg)
		return OutcomeProcessed, newProcessError(KindAborted, "%s", arg)
	},
}
