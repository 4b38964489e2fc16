package app

import (
	"github.com/tacogips/cpre/internal/config"
	"github.com/tacogips/cpre/internal/expr"
	"github.com/tacogips/cpre/internal/logger"
	"github.com/tacogips/cpre/internal/preprocessor"
)

// EvalOptions contains options for evaluating a single expression.
type EvalOptions struct {
	// ConfigPath is the configuration file whose globals are in scope.
	ConfigPath string
	// WorkDir is searched for a configuration file when ConfigPath is empty.
	WorkDir string
	// Definitions are "name=expression" globals applied before evaluation.
	Definitions []string
	// Expression is the expression to evaluate.
	Expression string
}

// Evaluate evaluates an expression against the configured and defined globals.
func Evaluate(opts EvalOptions) (expr.Value, error) {
	logger.DebugSection("[app] Eval workflow start")
	if opts.Expression == "" {
		return expr.Value{}, NewValidationError("expression is required", nil)
	}

	cfg, err := LoadConfig(opts.ConfigPath, opts.WorkDir)
	if err != nil {
		return expr.Value{}, err
	}
	if err := config.Validate(cfg); err != nil {
		return expr.Value{}, NewValidationError("invalid configuration", err)
	}

	pre, err := preprocessor.New(preprocessor.Options{}, preprocessor.NewGlobals(cfg.Globals), nil)
	if err != nil {
		return expr.Value{}, NewValidationError("failed to create preprocessor", err)
	}
	if err := ApplyDefinitions(pre.Globals(), pre.Evaluator(), opts.Definitions); err != nil {
		return expr.Value{}, err
	}

	value, err := pre.Evaluator().Eval(opts.Expression, pre.Globals())
	if err != nil {
		return expr.Value{}, NewAppError(EvalFailed, "evaluation failed", err)
	}
	logger.DebugValue("[app] Result", value)
	return value, nil
}
