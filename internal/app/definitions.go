package app

import (
	"fmt"
	"strings"

	"github.com/tacogips/cpre/internal/expr"
	"github.com/tacogips/cpre/internal/logger"
	"github.com/tacogips/cpre/internal/preprocessor"
)

// Definition is one command-line global definition.
type Definition struct {
	// Name is the lower-cased variable name.
	Name string
	// Expression is the source of the value; empty means true.
	Expression string
}

// ParseDefinition parses "name=expression" or a bare "name".
func ParseDefinition(def string) (Definition, error) {
	name, src, hasValue := strings.Cut(def, "=")
	name = strings.TrimSpace(name)
	src = strings.TrimSpace(src)

	if !preprocessor.IsVariableName(name) {
		return Definition{}, NewDefinitionError(fmt.Sprintf("invalid variable name %q in definition %q", name, def), nil)
	}
	if hasValue && src == "" {
		return Definition{}, NewDefinitionError(fmt.Sprintf("definition %q has no value", def), nil)
	}
	return Definition{Name: strings.ToLower(name), Expression: src}, nil
}

// ApplyDefinitions evaluates each definition in order and stores it in globals.
// A definition can reference globals set by earlier ones.
func ApplyDefinitions(globals *preprocessor.Globals, evaluator *expr.Evaluator, defs []string) error {
	for _, raw := range defs {
		def, err := ParseDefinition(raw)
		if err != nil {
			return err
		}

		value := expr.Bool(true)
		if def.Expression != "" {
			value, err = evaluator.Eval(def.Expression, globals)
			if err != nil {
				return NewDefinitionError(fmt.Sprintf("cannot evaluate definition of %s", def.Name), err)
			}
		}
		if err := globals.Set(def.Name, value); err != nil {
			return NewDefinitionError(fmt.Sprintf("cannot define %s", def.Name), err)
		}
		logger.Debug("[app] defined %s = %#v", def.Name, value)
	}
	return nil
}
