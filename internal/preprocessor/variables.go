package preprocessor

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/tacogips/cpre/internal/expr"
)

// Globals is the process-wide variable table shared by every file of a run.
// It is safe for concurrent use.
type Globals struct {
	mu   sync.RWMutex
	vars map[string]expr.Value
}

// NewGlobals creates a table seeded with initial values. Names are lower-cased.
func NewGlobals(initial map[string]expr.Value) *Globals {
	g := &Globals{vars: make(map[string]expr.Value, len(initial))}
	for name, v := range initial {
		g.vars[strings.ToLower(name)] = v
	}
	return g
}

// Lookup implements expr.Scope.
func (g *Globals) Lookup(name string) (expr.Value, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	v, ok := g.vars[name]
	return v, ok
}

// Set assigns a variable.
func (g *Globals) Set(name string, v expr.Value) error {
	name = strings.ToLower(name)
	if !IsVariableName(name) {
		return fmt.Errorf("invalid variable name %q", name)
	}
	if isSpecialVariable(name) {
		return fmt.Errorf("variable %q is read-only", name)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.vars[name] = v
	return nil
}

// Delete removes a variable and reports whether it existed.
func (g *Globals) Delete(name string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.vars[name]
	delete(g.vars, name)
	return ok
}

// Snapshot returns a copy of all variables.
func (g *Globals) Snapshot() map[string]expr.Value {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make(map[string]expr.Value, len(g.vars))
	for k, v := range g.vars {
		out[k] = v
	}
	return out
}

// Names returns the variable names in sorted order.
func (g *Globals) Names() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	names := make([]string, 0, len(g.vars))
	for k := range g.vars {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Special read-only variables resolved from the state.
const (
	varFile       = "__file"
	varFileName   = "__filename"
	varFileFolder = "__filefolder"
	varLine       = "__line"
)

func isSpecialVariable(name string) bool {
	switch name {
	case varFile, varFileName, varFileFolder, varLine:
		return true
	}
	return false
}

// IsVariableName reports whether name is a valid variable name:
// a letter or underscore followed by letters, digits, underscores or dots.
func IsVariableName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z'):
		case i > 0 && (r == '.' || ('0' <= r && r <= '9')):
		default:
			return false
		}
	}
	return true
}
