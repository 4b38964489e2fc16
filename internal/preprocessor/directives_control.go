package preprocessor

// Conditional and loop directives.

func ifDirective(keyword string, phases Phase, reference string) *Directive {
	return &Directive{
		Keyword:       keyword,
		Phases:        phases,
		Arg:           ArgExpression,
		AlwaysExecute: true,
		Reference:     reference,
		Execute: func(p *Preprocessor, st *State, arg string) (Outcome, error) {
			return openConditional(st, func() (bool, error) {
				return p.evaluator.EvalBool(arg, st)
			})
		},
	}
}

func definedDirective(keyword string, want bool, reference string) *Directive {
	return &Directive{
		Keyword:       keyword,
		Phases:        PhaseMain,
		Arg:           ArgVarName,
		AlwaysExecute: true,
		Reference:     reference,
		Execute: func(_ *Preprocessor, st *State, arg string) (Outcome, error) {
			return openConditional(st, func() (bool, error) {
				_, ok := st.Lookup(lower(arg))
				return ok == want, nil
			})
		},
	}
}

// openConditional pushes an inactive frame inside skipped regions, otherwise
// evaluates the condition and pushes the active frame.
func openConditional(st *State, cond func() (bool, error)) (Outcome, error) {
	if !st.CanDirectiveExecute() {
		st.PushConditional(false)
		return OutcomeProcessed, nil
	}
	ok, err := cond()
	if err != nil {
		return OutcomeProcessed, err
	}
	st.PushConditional(true)
	if !ok {
		st.SetFlag(FlagConditionFalse)
	}
	return OutcomeProcessed, nil
}

func elseDirective(keyword, opener string, phases Phase) *Directive {
	return &Directive{
		Keyword:       keyword,
		Phases:        phases,
		AlwaysExecute: true,
		Reference:     "switch to the other branch of " + DirectivePrefix + opener,
		Execute: func(_ *Preprocessor, st *State, _ string) (Outcome, error) {
			if _, ok := st.peekConditional(); !ok {
				return OutcomeProcessed, newProcessError(KindStructural,
					"%s%s without %s%s", DirectivePrefix, keyword, DirectivePrefix, opener)
			}
			if st.AtActiveConditional() {
				st.toggleFlag(FlagConditionFalse)
			}
			return OutcomeProcessed, nil
		},
	}
}

func endifDirective(keyword, opener string, phases Phase) *Directive {
	return &Directive{
		Keyword:       keyword,
		Phases:        phases,
		AlwaysExecute: true,
		Reference:     "close " + DirectivePrefix + opener,
		Execute: func(_ *Preprocessor, st *State, _ string) (Outcome, error) {
			if _, ok := st.peekConditional(); !ok {
				return OutcomeProcessed, newProcessError(KindStructural,
					"%s%s without %s%s", DirectivePrefix, keyword, DirectivePrefix, opener)
			}
			if st.AtActiveConditional() {
				st.ClearFlag(FlagConditionFalse)
			}
			return OutcomeProcessed, st.PopConditional()
		},
	}
}

var whileDirective = &Directive{
	Keyword:       "while",
	Phases:        PhaseMain,
	Arg:           ArgExpression,
	AlwaysExecute: true,
	Reference:     "repeat the lines up to " + DirectivePrefix + "end while the condition is true",
	Execute: func(p *Preprocessor, st *State, arg string) (Outcome, error) {
		if !st.CanDirectiveExecute() {
			st.PushLoop(false)
			return OutcomeProcessed, nil
		}
		ok, err := p.evaluator.EvalBool(arg, st)
		if err != nil {
			return OutcomeProcessed, err
		}
		st.PushLoop(true)
		if !ok {
			st.SetFlag(FlagBreak)
		}
		return OutcomeProcessed, nil
	},
}

var breakDirective = &Directive{
	Keyword:   "break",
	Phases:    PhaseMain,
	Reference: "leave the innermost loop at its " + DirectivePrefix + "end",
	Execute: func(_ *Preprocessor, st *State, _ string) (Outcome, error) {
		if _, ok := st.peekLoop(); !ok {
			return OutcomeProcessed, newProcessError(KindStructural, "%sbreak without %swhile", DirectivePrefix, DirectivePrefix)
		}
		st.SetFlag(FlagBreak)
		return OutcomeProcessed, nil
	},
}

var continueDirective = &Directive{
	Keyword:   "continue",
	Phases:    PhaseMain,
	Reference: "jump back to the condition of the innermost loop",
	Execute: func(_ *Preprocessor, st *State, _ string) (Outcome, error) {
		loop, ok := st.peekLoop()
		if !ok {
			return OutcomeProcessed, newProcessError(KindStructural, "%scontinue without %swhile", DirectivePrefix, DirectivePrefix)
		}
		if loop.container != st.top() {
			return OutcomeProcessed, newProcessError(KindStructural, "%scontinue in a different file than its %swhile", DirectivePrefix, DirectivePrefix)
		}
		for {
			c, ok := st.peekConditional()
			if !ok || c.container != loop.container || c.line <= loop.line {
				break
			}
			if err := st.PopConditional(); err != nil {
				return OutcomeProcessed, err
			}
		}
		if err := st.PopLoop(); err != nil {
			return OutcomeProcessed, err
		}
		st.GotoLine(loop.line)
		return OutcomeProcessed, nil
	},
}

var endDirective = &Directive{
	Keyword:       "end",
	Phases:        PhaseMain,
	AlwaysExecute: true,
	Reference:     "close " + DirectivePrefix + "while",
	Execute: func(_ *Preprocessor, st *State, _ string) (Outcome, error) {
		loop, ok := st.peekLoop()
		if !ok {
			return OutcomeProcessed, newProcessError(KindStructural, "%send without %swhile", DirectivePrefix, DirectivePrefix)
		}
		if loop.container != st.top() {
			return OutcomeProcessed, newProcessError(KindStructural, "%send in a different file than its %swhile", DirectivePrefix, DirectivePrefix)
		}
		if st.AtActiveLoop() && !st.HasFlag(FlagBreak) {
			st.GotoLine(loop.line)
		}
		return OutcomeProcessed, st.PopLoop()
	},
}

var exitIfDirective = &Directive{
	Keyword:   "exitif",
	Phases:    PhaseMain,
	Arg:       ArgExpression,
	Reference: "stop processing the file when the condition is true",
	Execute: func(p *Preprocessor, st *State, arg string) (Outcome, error) {
		ok, err := p.evaluator.EvalBool(arg, st)
		if err != nil {
			return OutcomeProcessed, err
		}
		if ok {
			st.SetFlag(FlagEndProcessing)
		}
		return OutcomeProcessed, nil
	},
}

var exitDirective = &Directive{
	Keyword:   "exit",
	Phases:    PhaseMain,
	Reference: "stop processing the file",
	Execute: func(_ *Preprocessor, st *State, _ string) (Outcome, error) {
		st.SetFlag(FlagEndProcessing)
		return OutcomeProcessed, nil
	},
}

var excludeIfDirective = &Directive{
	Keyword:   "excludeif",
	Phases:    PhaseGlobal,
	Arg:       ArgExpression,
	Reference: "exclude the file from the main pass when the condition is true after the global pass",
	Execute: func(_ *Preprocessor, st *State, arg string) (Outcome, error) {
		st.AddExclusion(arg)
		return OutcomeProcessed, nil
	},
}
