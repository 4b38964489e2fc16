package preprocessor

import (
	"path/filepath"
	"strings"

	"github.com/tacogips/cpre/internal/expr"
	"github.com/tacogips/cpre/internal/model"
)

// Flag is a transient processing signal.
type Flag uint8

const (
	// FlagEndProcessing stops reading the current file.
	FlagEndProcessing Flag = 1 << iota
	// FlagTextOutputDisabled suppresses text lines.
	FlagTextOutputDisabled
	// FlagCommentNextLine prefixes the next emitted text line with "//".
	FlagCommentNextLine
	// FlagBreak marks the innermost active loop as breaking.
	FlagBreak
	// FlagConditionFalse marks the active conditional branch as not taken.
	FlagConditionFalse
)

// Buffer selects one of the three output sections.
type Buffer int

const (
	// BufferBody is the main output section.
	BufferBody Buffer = iota
	// BufferPrefix is written before the body.
	BufferPrefix
	// BufferPostfix is written after the body.
	BufferPostfix
)

// scope is a conditional or loop frame.
type scope struct {
	// container is the inclusion-stack entry that was being read when the frame was opened.
	container *TextContainer
	// line is the 0-indexed position of the opening directive.
	line int
	// opened is the inclusion stack at the opening directive.
	opened []FilePosition
}

// Exclusion is a deferred exclusion collected by //#excludeif during the global pass.
type Exclusion struct {
	// File is the file the condition applies to.
	File *model.FileDescriptor
	// Condition is the raw expression text.
	Condition string
	// Line is the 0-indexed line of the directive.
	Line int
	// Frames is the inclusion stack at the directive.
	Frames []FilePosition
}

// State holds all mutable processing state for one source file.
// A State is owned by a single goroutine.
type State struct {
	file    *model.FileDescriptor
	root    *TextContainer
	globals *Globals

	include     []*TextContainer
	conditional []scope
	loop        []scope
	activeIf    int
	activeWhile int
	flags       Flag

	exclusions []Exclusion
	locals     map[string]expr.Value

	buffers [3]strings.Builder
	current Buffer

	outDir     *string
	outName    *string
	outEnabled bool

	// evalDepth counts nested evalfile invocations.
	evalDepth int
}

// NewState creates a state reading root.
func NewState(file *model.FileDescriptor, root *TextContainer, globals *Globals) *State {
	if globals == nil {
		globals = NewGlobals(nil)
	}
	st := &State{
		file:    file,
		root:    root,
		globals: globals,
		locals:  make(map[string]expr.Value),
	}
	st.Reset()
	return st
}

// Reset rewinds the state to the first line of the root file and clears everything
// a pass accumulates. Deferred exclusions are kept.
func (s *State) Reset() {
	s.include = []*TextContainer{s.root.Rewound()}
	s.conditional = nil
	s.loop = nil
	s.activeIf = -1
	s.activeWhile = -1
	s.flags = 0
	for i := range s.buffers {
		s.buffers[i].Reset()
	}
	s.current = BufferBody
	s.outDir = nil
	s.outName = nil
	s.outEnabled = true
	s.locals = make(map[string]expr.Value)
}

// Dispose clears all stacks, buffers and variables.
func (s *State) Dispose() {
	s.include = nil
	s.conditional = nil
	s.loop = nil
	s.exclusions = nil
	s.locals = nil
	for i := range s.buffers {
		s.buffers[i].Reset()
	}
}

// File returns the descriptor of the root file.
func (s *State) File() *model.FileDescriptor { return s.file }

// Globals returns the shared variable table.
func (s *State) Globals() *Globals { return s.globals }

// HasFlag reports whether f is set.
func (s *State) HasFlag(f Flag) bool { return s.flags&f != 0 }

// SetFlag sets f.
func (s *State) SetFlag(f Flag) { s.flags |= f }

// ClearFlag clears f.
func (s *State) ClearFlag(f Flag) { s.flags &^= f }

func (s *State) toggleFlag(f Flag) { s.flags ^= f }

func (s *State) top() *TextContainer {
	if len(s.include) == 0 {
		return nil
	}
	return s.include[len(s.include)-1]
}

// ReadNextLine returns the next line of the file on top of the inclusion stack.
// Exhausted included files are popped; false means the root file is done
// or processing was stopped.
func (s *State) ReadNextLine() (string, bool) {
	for len(s.include) > 0 {
		if s.HasFlag(FlagEndProcessing) {
			return "", false
		}
		if line, ok := s.top().NextLine(); ok {
			return line, true
		}
		if len(s.include) == 1 {
			return "", false
		}
		s.include = s.include[:len(s.include)-1]
	}
	return "", false
}

// LineHasBreak reports whether the line last read is followed by a line break in its file.
func (s *State) LineHasBreak() bool {
	if t := s.top(); t != nil {
		return t.LastLineHasBreak()
	}
	return true
}

// Newline returns the root file's line break sequence.
func (s *State) Newline() string { return s.root.Newline() }

// IncludeDepth returns the number of files on the inclusion stack.
func (s *State) IncludeDepth() int { return len(s.include) }

// PushInclude makes c the file being read.
func (s *State) PushInclude(c *TextContainer) {
	s.include = append(s.include, c)
}

// Including reports whether path is already on the inclusion stack.
func (s *State) Including(path string) bool {
	for _, c := range s.include {
		if c.Path() == path {
			return true
		}
	}
	return false
}

// Snapshot returns the inclusion stack positions, root first.
func (s *State) Snapshot() []FilePosition {
	frames := make([]FilePosition, len(s.include))
	for i, c := range s.include {
		frames[i] = FilePosition{Path: c.Path(), Line: c.LastIndex() + 1}
	}
	return frames
}

// CurrentLine returns the 1-indexed line last read from the file on top of the stack.
func (s *State) CurrentLine() int {
	if t := s.top(); t != nil {
		return t.LastIndex() + 1
	}
	return 0
}

// CurrentPath returns the path of the file on top of the inclusion stack.
func (s *State) CurrentPath() string {
	if t := s.top(); t != nil {
		return t.Path()
	}
	return s.root.Path()
}

func (s *State) newScope() scope {
	t := s.top()
	return scope{container: t, line: t.LastIndex(), opened: s.Snapshot()}
}

// PushConditional opens a conditional frame at the line last read.
// An activated frame is the one whose body is being read.
func (s *State) PushConditional(activate bool) {
	s.conditional = append(s.conditional, s.newScope())
	if activate {
		s.activeIf = len(s.conditional) - 1
	}
}

// PopConditional closes the innermost conditional frame.
func (s *State) PopConditional() error {
	n := len(s.conditional)
	if n == 0 {
		return newProcessError(KindStructural, "conditional stack is empty")
	}
	s.conditional = s.conditional[:n-1]
	if s.activeIf == n-1 {
		s.activeIf = n - 2
	}
	return nil
}

// PushLoop opens a loop frame at the line last read.
func (s *State) PushLoop(activate bool) {
	s.loop = append(s.loop, s.newScope())
	if activate {
		s.activeWhile = len(s.loop) - 1
	}
}

// PopLoop closes the innermost loop frame. Popping the active frame clears
// the break flag and activates the parent frame.
func (s *State) PopLoop() error {
	n := len(s.loop)
	if n == 0 {
		return newProcessError(KindStructural, "loop stack is empty")
	}
	s.loop = s.loop[:n-1]
	if s.activeWhile == n-1 {
		s.ClearFlag(FlagBreak)
		s.activeWhile = n - 2
	}
	return nil
}

func (s *State) peekConditional() (scope, bool) {
	if len(s.conditional) == 0 {
		return scope{}, false
	}
	return s.conditional[len(s.conditional)-1], true
}

func (s *State) peekLoop() (scope, bool) {
	if len(s.loop) == 0 {
		return scope{}, false
	}
	return s.loop[len(s.loop)-1], true
}

// GotoLine positions the file on top of the inclusion stack so that the next read returns line index.
func (s *State) GotoLine(index int) {
	if t := s.top(); t != nil {
		t.SetNextIndex(index)
	}
}

// AtActiveConditional reports whether no conditional is open or the innermost one is active.
func (s *State) AtActiveConditional() bool {
	return len(s.conditional) == 0 || s.activeIf == len(s.conditional)-1
}

// AtActiveLoop reports whether no loop is open or the innermost one is active.
func (s *State) AtActiveLoop() bool {
	return len(s.loop) == 0 || s.activeWhile == len(s.loop)-1
}

// IsExecutionEnabled reports whether the current line lies in taken branches of every open scope.
func (s *State) IsExecutionEnabled() bool {
	return s.AtActiveConditional() && s.AtActiveLoop() && !s.HasFlag(FlagConditionFalse)
}

// CanDirectiveExecute is IsExecutionEnabled with no pending loop break.
func (s *State) CanDirectiveExecute() bool {
	return s.IsExecutionEnabled() && !s.HasFlag(FlagBreak)
}

// SelectBuffer switches the section that receives text.
func (s *State) SelectBuffer(b Buffer) { s.current = b }

// Write appends text to the current section.
func (s *State) Write(text string) {
	s.buffers[s.current].WriteString(text)
}

// BufferText returns the content of a section.
func (s *State) BufferText(b Buffer) string {
	return s.buffers[b].String()
}

// Rendered assembles prefix, body and postfix.
func (s *State) Rendered() string {
	var b strings.Builder
	for _, section := range []Buffer{BufferPrefix, BufferBody, BufferPostfix} {
		if text := s.BufferText(section); text != "" {
			b.WriteString(text)
		}
	}
	return b.String()
}

// AddExclusion queues a deferred exclusion for the root file.
func (s *State) AddExclusion(condition string) {
	s.exclusions = append(s.exclusions, Exclusion{
		File:      s.file,
		Condition: condition,
		Line:      s.top().LastIndex(),
		Frames:    s.Snapshot(),
	})
}

// TakeExclusions returns and clears the queued exclusions.
func (s *State) TakeExclusions() []Exclusion {
	out := s.exclusions
	s.exclusions = nil
	return out
}

// SetLocal assigns a per-file variable.
func (s *State) SetLocal(name string, v expr.Value) error {
	name = strings.ToLower(name)
	if !IsVariableName(name) {
		return newProcessError(KindUsage, "invalid variable name %q", name)
	}
	if isSpecialVariable(name) {
		return newProcessError(KindUsage, "variable %q is read-only", name)
	}
	s.locals[name] = v
	return nil
}

// Locals returns a copy of the per-file variables.
func (s *State) Locals() map[string]expr.Value {
	out := make(map[string]expr.Value, len(s.locals))
	for k, v := range s.locals {
		out[k] = v
	}
	return out
}

// Lookup implements expr.Scope: special variables, then locals, then globals.
func (s *State) Lookup(name string) (expr.Value, bool) {
	switch name {
	case varFile:
		return expr.String(s.CurrentPath()), true
	case varFileName:
		return expr.String(filepath.Base(s.CurrentPath())), true
	case varFileFolder:
		return expr.String(filepath.Dir(s.CurrentPath())), true
	case varLine:
		return expr.Int(int64(s.CurrentLine())), true
	}
	if v, ok := s.locals[name]; ok {
		return v, true
	}
	return s.globals.Lookup(name)
}

// DestinationPath returns the output path with //#outdir and //#outname overrides applied.
// The file descriptor is not modified.
func (s *State) DestinationPath() string {
	dir, name := s.file.DestDir, s.file.DestName
	if s.outDir != nil {
		dir = *s.outDir
	}
	if s.outName != nil {
		name = *s.outName
	}
	return filepath.Join(dir, name)
}

// OutputEnabled reports whether the destination will be written.
func (s *State) OutputEnabled() bool { return s.outEnabled }
