package expr_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tacogips/cpre/internal/expr"
)

func TestEval_Literals(t *testing.T) {
	t.Parallel()

	ev := expr.NewEvaluator(nil)
	tests := []struct {
		src  string
		want expr.Value
	}{
		{`true`, expr.Bool(true)},
		{`FALSE`, expr.Bool(false)},
		{`42`, expr.Int(42)},
		{`0x1F`, expr.Int(31)},
		{`1.5`, expr.Float(1.5)},
		{`2e3`, expr.Float(2000)},
		{`"a\tb\"c"`, expr.String("a\tb\"c")},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := ev.Eval(tt.src, nil)
			require.NoError(t, err)
			require.True(t, tt.want.Equal(got), "got %#v", got)
		})
	}
}

func TestEval_Operators(t *testing.T) {
	t.Parallel()

	ev := expr.NewEvaluator(nil)
	tests := []struct {
		src  string
		want string
		kind expr.Kind
	}{
		{`1 + 2 * 3`, "7", expr.KindInt},
		{`(1 + 2) * 3`, "9", expr.KindInt},
		{`7 / 2`, "3", expr.KindInt},
		{`7 % 4`, "3", expr.KindInt},
		{`7.0 / 2`, "3.5", expr.KindFloat},
		{`1 + 0.5`, "1.5", expr.KindFloat},
		{`-3 + 1`, "-2", expr.KindInt},
		{`5 -3`, "2", expr.KindInt},
		{`- -3`, "3", expr.KindInt},
		{`-9223372036854775808`, "-9223372036854775808", expr.KindInt},
		{`-0x10`, "-16", expr.KindInt},
		{`"v" + 1`, "v1", expr.KindString},
		{`1 + "v"`, "1v", expr.KindString},
		{`"a" + true`, "atrue", expr.KindString},
		{`1 < 2 && 2 <= 2`, "true", expr.KindBool},
		{`3 > 2.5`, "true", expr.KindBool},
		{`"abc" < "abd"`, "true", expr.KindBool},
		{`1 == 1.0`, "true", expr.KindBool},
		{`"a" != "b"`, "true", expr.KindBool},
		{`!true || false`, "false", expr.KindBool},
		{`true == !false`, "true", expr.KindBool},
		{`split("b,a", ",") + "c"`, "a,b,c", expr.KindSet},
		{`split("a", ",") + split("b,a", ",")`, "a,b", expr.KindSet},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := ev.Eval(tt.src, nil)
			require.NoError(t, err)
			require.Equal(t, tt.kind, got.Kind())
			require.Equal(t, tt.want, got.String())
		})
	}
}

func TestEval_ShortCircuit(t *testing.T) {
	t.Parallel()

	ev := expr.NewEvaluator(nil)

	got, err := ev.Eval(`false && missing`, nil)
	require.NoError(t, err)
	require.False(t, got.AsBool())

	got, err = ev.Eval(`true || missing`, nil)
	require.NoError(t, err)
	require.True(t, got.AsBool())

	_, err = ev.Eval(`true && missing`, nil)
	require.Error(t, err)
}

func TestEval_Variables(t *testing.T) {
	t.Parallel()

	ev := expr.NewEvaluator(nil)
	scope := expr.MapScope{
		"version":      expr.Int(3),
		"build.target": expr.String("release"),
	}

	got, err := ev.Eval(`Version * 2`, scope)
	require.NoError(t, err)
	require.Equal(t, int64(6), got.AsInt())

	got, err = ev.Eval(`build.target == "release"`, scope)
	require.NoError(t, err)
	require.True(t, got.AsBool())

	_, err = ev.Eval(`nope`, scope)
	var evalErr *expr.EvalError
	require.True(t, errors.As(err, &evalErr))
	require.Contains(t, evalErr.Message, `unknown variable "nope"`)
	require.Equal(t, "nope", evalErr.Expr)
}

func TestEval_TypeErrors(t *testing.T) {
	t.Parallel()

	ev := expr.NewEvaluator(nil)
	tests := []struct {
		src     string
		wantMsg string
	}{
		{`1 && true`, `operator "&&" does not accept (int, ...)`},
		{`true + 1`, `operator "+" does not accept (bool, int)`},
		{`"a" * 2`, `operator "*" does not accept (string, int)`},
		{`1 == "1"`, `operator "==" does not accept (int, string)`},
		{`-"a"`, `operator "-" does not accept (string)`},
		{`1 / 0`, `division by zero`},
		{`strlen(1)`, `function strlen does not accept (int)`},
		{`issubstr("a")`, `function issubstr does not accept (string)`},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := ev.Eval(tt.src, nil)
			require.Error(t, err)
			var evalErr *expr.EvalError
			require.True(t, errors.As(err, &evalErr))
			require.Contains(t, evalErr.Message, tt.wantMsg)
			require.Equal(t, tt.src, evalErr.Expr)
		})
	}
}

func TestParse_SyntaxErrors(t *testing.T) {
	t.Parallel()

	for _, src := range []string{``, `1 +`, `(1`, `"open`, `1 2`, `a $ b`, `f(1,`} {
		_, err := expr.Parse(src)
		require.Error(t, err, "source %q", src)
	}
}

func TestParse_NonASCIIIdentifier(t *testing.T) {
	t.Parallel()

	_, err := expr.Parse(`café + 1`)
	require.ErrorContains(t, err, `at 3: unexpected character 'é'`)
}

func TestEvalBoolAndString(t *testing.T) {
	t.Parallel()

	ev := expr.NewEvaluator(nil)

	b, err := ev.EvalBool(`2 > 1`, nil)
	require.NoError(t, err)
	require.True(t, b)

	_, err = ev.EvalBool(`1`, nil)
	require.ErrorContains(t, err, "expected bool result, got int")

	s, err := ev.EvalString(`"x" + 1`, nil)
	require.NoError(t, err)
	require.Equal(t, "x1", s)

	_, err = ev.EvalString(`1`, nil)
	require.ErrorContains(t, err, "expected string result")
}

func TestValueString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "0.1", expr.Float(0.1).String())
	require.Equal(t, "2", expr.Float(2).String())
	require.Equal(t, "a,b", expr.Set("b", "a", "b").String())
	require.Equal(t, `"q"`, expr.String("q").GoString())
	require.Equal(t, "set[a,b]", expr.Set("a", "b").GoString())
}
