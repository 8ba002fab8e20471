package evaluator

import (
	"errors"
	"fmt"
	"math"
	"math/big"

	"github.com/zclconf/go-cty/cty"
)

// ToGo converts an evaluated value into the plain Go shapes request
// parameters use: string, bool, int64, float64, []any and map[string]any.
// Whole numbers become int64 so they decode into integer fields.
func ToGo(val cty.Value) (any, error) {
	return toGo("", val)
}

func toGo(path string, val cty.Value) (any, error) {
	if val.IsMarked() {
		val, _ = val.Unmark()
	}
	if !val.IsKnown() {
		return nil, &ValueConversionError{Path: path, Err: errors.New("value is not known until apply")}
	}
	if val.IsNull() {
		return nil, nil
	}

	ty := val.Type()
	switch {
	case ty == cty.String:
		return val.AsString(), nil
	case ty == cty.Bool:
		return val.True(), nil
	case ty == cty.Number:
		bf := val.AsBigFloat()
		if i, acc := bf.Int64(); acc == big.Exact {
			return i, nil
		}
		f, _ := bf.Float64()
		if math.IsInf(f, 0) {
			return nil, &ValueConversionError{Path: path, Err: fmt.Errorf("number %s out of range", bf.Text('g', -1))}
		}
		return f, nil
	case ty.IsListType() || ty.IsSetType() || ty.IsTupleType():
		out := []any{}
		for i, it := 0, val.ElementIterator(); it.Next(); i++ {
			_, elem := it.Element()
			goVal, err := toGo(fmt.Sprintf("%s[%d]", path, i), elem)
			if err != nil {
				return nil, err
			}
			out = append(out, goVal)
		}
		return out, nil
	case ty.IsMapType() || ty.IsObjectType():
		out := map[string]any{}
		for it := val.ElementIterator(); it.Next(); {
			key, elem := it.Element()
			name := key.AsString()
			goVal, err := toGo(joinPath(path, name), elem)
			if err != nil {
				return nil, err
			}
			out[name] = goVal
		}
		return out, nil
	default:
		return nil, &ValueConversionError{Path: path, Err: fmt.Errorf("unsupported type %s", ty.FriendlyName())}
	}
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
