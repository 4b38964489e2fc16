package config

import (
	"encoding/json"
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/tacogips/cpre/internal/expr"
)

// valueFromJSON converts a value decoded with json.Decoder.UseNumber into an expression value.
// Arrays of strings become sets.
func valueFromJSON(v interface{}) (expr.Value, error) {
	switch t := v.(type) {
	case bool:
		return expr.Bool(t), nil
	case string:
		return expr.String(t), nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return expr.Int(i), nil
		}
		f, err := t.Float64()
		if err != nil {
			return expr.Value{}, fmt.Errorf("invalid number %s", t)
		}
		return expr.Float(f), nil
	case []interface{}:
		members := make([]string, 0, len(t))
		for _, m := range t {
			s, ok := m.(string)
			if !ok {
				return expr.Value{}, fmt.Errorf("set members must be strings, got %T", m)
			}
			members = append(members, s)
		}
		return expr.Set(members...), nil
	case nil:
		return expr.Value{}, fmt.Errorf("null is not a value")
	default:
		return expr.Value{}, fmt.Errorf("unsupported value of type %T", v)
	}
}

// valueFromCty converts an evaluated HCL attribute into an expression value.
// Lists, tuples and sets are converted to a set of strings.
func valueFromCty(v cty.Value) (expr.Value, error) {
	if v.IsNull() {
		return expr.Value{}, fmt.Errorf("null is not a value")
	}
	if !v.IsKnown() {
		return expr.Value{}, fmt.Errorf("value is not known")
	}

	ty := v.Type()
	switch {
	case ty == cty.Bool:
		var b bool
		if err := gocty.FromCtyValue(v, &b); err != nil {
			return expr.Value{}, err
		}
		return expr.Bool(b), nil
	case ty == cty.String:
		var s string
		if err := gocty.FromCtyValue(v, &s); err != nil {
			return expr.Value{}, err
		}
		return expr.String(s), nil
	case ty == cty.Number:
		if v.AsBigFloat().IsInt() {
			var i int64
			if err := gocty.FromCtyValue(v, &i); err != nil {
				return expr.Value{}, err
			}
			return expr.Int(i), nil
		}
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return expr.Value{}, err
		}
		return expr.Float(f), nil
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		list, err := convert.Convert(v, cty.List(cty.String))
		if err != nil {
			return expr.Value{}, fmt.Errorf("cannot convert %s to a set of strings: %w", ty.FriendlyName(), err)
		}
		var members []string
		if err := gocty.FromCtyValue(list, &members); err != nil {
			return expr.Value{}, err
		}
		return expr.Set(members...), nil
	default:
		return expr.Value{}, fmt.Errorf("unsupported value of type %s", ty.FriendlyName())
	}
}
