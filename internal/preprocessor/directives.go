package preprocessor

import "github.com/tacogips/cpre/internal/logger"

// DefaultDirectives returns the directive catalog in registration order.
// A keyword must come before any keyword it is a prefix of.
func DefaultDirectives() []*Directive {
	return []*Directive{
		flagDirective("//", "comment out the next text line", func(st *State) { st.SetFlag(FlagCommentNextLine) }),
		flagDirective("-", "stop emitting text lines", func(st *State) { st.SetFlag(FlagTextOutputDisabled) }),
		flagDirective("+", "resume emitting text lines", func(st *State) { st.ClearFlag(FlagTextOutputDisabled) }),

		ifDirective("_if", PhaseGlobal, "global pass conditional"),
		elseDirective("_else", "_if", PhaseGlobal),
		endifDirective("_endif", "_if", PhaseGlobal),

		definedDirective("ifdefined", true, "conditional on a variable being defined"),
		definedDirective("ifdef", true, "short form of "+DirectivePrefix+"ifdefined"),
		definedDirective("ifndef", false, "conditional on a variable not being defined"),
		ifDirective("if", PhaseMain, "conditional on a boolean expression"),
		elseDirective("else", "if", PhaseMain),
		endifDirective("endif", "if", PhaseMain),

		whileDirective,
		breakDirective,
		continueDirective,
		endDirective,
		exitIfDirective,
		exitDirective,
		excludeIfDirective,

		globalDirective,
		localDirective,
		defineLocalDirective,
		defineDirective,
		undefineDirective,

		includeDirective,
		outDirDirective,
		outNameDirective,
		outEnabledDirective,
		bufferDirective("prefix+", BufferPrefix, "send text lines to the prefix section"),
		bufferDirective("prefix-", BufferBody, "send text lines back to the body"),
		bufferDirective("postfix+", BufferPostfix, "send text lines to the postfix section"),
		bufferDirective("postfix-", BufferBody, "send text lines back to the body"),

		messageDirective("msg", "log an informational message", func(log logger.Logger, text string) { log.Info(text) }),
		messageDirective("echo", "log an informational message", func(log logger.Logger, text string) { log.Info(text) }),
		messageDirective("warning", "log a warning", func(log logger.Logger, text string) { log.Warn(text) }),
		errorDirective,
	}
}
