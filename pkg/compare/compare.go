package compare

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	jsoniter "github.com/json-iterator/go"

	"github.com/olusolaa/infra-reconciler/pkg/reflectutil"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Values reports whether a desired and an observed value are equal once both
// are normalized: numbers compare by value, booleans and numeric strings are
// coerced, and maps and slices recurse.
func Values(desired, observed any) (bool, error) {
	if desired == nil && observed == nil {
		return true, nil
	}
	if desired == nil || observed == nil {
		return reflectutil.IsEmptyValue(desired) && reflectutil.IsEmptyValue(observed), nil
	}

	dVal := reflectutil.DerefValue(reflect.ValueOf(desired))
	oVal := reflectutil.DerefValue(reflect.ValueOf(observed))
	if !dVal.IsValid() || !oVal.IsValid() {
		return dVal.IsValid() == oVal.IsValid(), nil
	}

	if dVal.Kind() == reflect.Map && oVal.Kind() == reflect.Map {
		return mapsEqual(dVal, oVal)
	}
	if isList(dVal) && isList(oVal) {
		return slicesEqual(dVal, oVal)
	}

	if dVal.Kind() == reflect.Bool || oVal.Kind() == reflect.Bool {
		dBool, dOk := toBool(dVal)
		oBool, oOk := toBool(oVal)
		if dOk && oOk {
			return dBool == oBool, nil
		}
	}

	if reflectutil.IsNumberOrNumericString(dVal) && reflectutil.IsNumberOrNumericString(oVal) &&
		(reflectutil.IsNumber(dVal) || reflectutil.IsNumber(oVal)) {
		dFloat, dOk := reflectutil.ToFloat64(dVal)
		oFloat, oOk := reflectutil.ToFloat64(oVal)
		if dOk && oOk {
			const tolerance = 1e-9
			diff := dFloat - oFloat
			return diff < tolerance && diff > -tolerance, nil
		}
	}

	if dVal.Kind() == reflect.String && oVal.Kind() == reflect.String {
		return dVal.String() == oVal.String(), nil
	}

	if dVal.Type() == oVal.Type() && dVal.Type().Comparable() {
		return dVal.Interface() == oVal.Interface(), nil
	}
	if !dVal.Type().Comparable() || !oVal.Type().Comparable() {
		return cmp.Equal(dVal.Interface(), oVal.Interface(), cmpopts.EquateEmpty()), nil
	}
	return false, nil
}

func isList(v reflect.Value) bool {
	return v.Kind() == reflect.Slice || v.Kind() == reflect.Array
}

func mapsEqual(dVal, oVal reflect.Value) (bool, error) {
	if dVal.Len() != oVal.Len() {
		return false, nil
	}
	observed := make(map[string]reflect.Value, oVal.Len())
	iter := oVal.MapRange()
	for iter.Next() {
		observed[fmt.Sprintf("%v", iter.Key().Interface())] = iter.Value()
	}

	iter = dVal.MapRange()
	for iter.Next() {
		key := fmt.Sprintf("%v", iter.Key().Interface())
		ov, ok := observed[key]
		if !ok {
			return false, nil
		}
		equal, err := Values(iter.Value().Interface(), ov.Interface())
		if err != nil {
			return false, fmt.Errorf("map key '%s': %w", key, err)
		}
		if !equal {
			return false, nil
		}
	}
	return true, nil
}

func slicesEqual(dVal, oVal reflect.Value) (bool, error) {
	if dVal.Len() != oVal.Len() {
		return false, nil
	}
	for i := 0; i < dVal.Len(); i++ {
		equal, err := Values(dVal.Index(i).Interface(), oVal.Index(i).Interface())
		if err != nil {
			return false, fmt.Errorf("slice idx %d: %w", i, err)
		}
		if !equal {
			return false, nil
		}
	}
	return true, nil
}

func toBool(val reflect.Value) (bool, bool) {
	switch val.Kind() {
	case reflect.Bool:
		return val.Bool(), true
	case reflect.String:
		b, err := strconv.ParseBool(val.String())
		if err == nil {
			return b, true
		}
	}
	return false, false
}

// Sets checks if two string slices contain the same elements, ignoring order
// and duplicates. The detail string lists what the second set lacks and adds.
func Sets(desired, observed []string) (bool, string) {
	want := make(map[string]struct{}, len(desired))
	for _, s := range desired {
		want[s] = struct{}{}
	}
	have := make(map[string]struct{}, len(observed))
	for _, s := range observed {
		have[s] = struct{}{}
	}

	var missing, extra []string
	for s := range want {
		if _, ok := have[s]; !ok {
			missing = append(missing, s)
		}
	}
	for s := range have {
		if _, ok := want[s]; !ok {
			extra = append(extra, s)
		}
	}
	if len(missing) == 0 && len(extra) == 0 {
		return true, ""
	}
	sort.Strings(missing)
	sort.Strings(extra)

	var parts []string
	if len(missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing: [%s]", strings.Join(missing, ", ")))
	}
	if len(extra) > 0 {
		parts = append(parts, fmt.Sprintf("unexpected: [%s]", strings.Join(extra, ", ")))
	}
	return false, strings.Join(parts, "; ")
}

// TagChanges is the minimal set of calls that converges observed tags.
type TagChanges struct {
	Set    map[string]string
	Remove []string
}

func (t TagChanges) Empty() bool {
	return len(t.Set) == 0 && len(t.Remove) == 0
}

// Tags computes the tag updates needed to reach desired. Keys only present on
// the resource are removed when purge is set and kept otherwise.
func Tags(desired, observed map[string]string, purge bool) TagChanges {
	changes := TagChanges{Set: map[string]string{}}
	for k, v := range desired {
		if cur, ok := observed[k]; !ok || cur != v {
			changes.Set[k] = v
		}
	}
	if purge {
		for k := range observed {
			if _, ok := desired[k]; !ok {
				changes.Remove = append(changes.Remove, k)
			}
		}
		sort.Strings(changes.Remove)
	}
	return changes
}

// JSONStrings compares two JSON documents ignoring formatting and key order.
func JSONStrings(a, b string) (bool, string) {
	if a == b {
		return true, ""
	}
	if a == "" || b == "" {
		return false, "JSON differs (one side empty)"
	}

	var dataA, dataB any
	if err := json.Unmarshal([]byte(a), &dataA); err != nil {
		return false, fmt.Sprintf("strings differ (first is not valid JSON: %v)", err)
	}
	if err := json.Unmarshal([]byte(b), &dataB); err != nil {
		return false, fmt.Sprintf("JSON differs (second is not valid JSON: %v)", err)
	}
	if !cmp.Equal(dataA, dataB, cmpopts.EquateEmpty()) {
		return false, "JSON structures differ"
	}
	return true, ""
}
