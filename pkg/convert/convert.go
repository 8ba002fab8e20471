package convert

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var errNotMap = fmt.Errorf("input data is not a map")
var errNotStringValue = fmt.Errorf("map value is not a string")
var errNotSlice = fmt.Errorf("input data is not a slice")

// envelopeFields are SDK response wrappers that never belong in a normalized resource.
var envelopeFields = map[string]struct{}{
	"ResultMetadata":   {},
	"ResponseMetadata": {},
}

// ToStringMap converts map[string]any or map[string]string to map[string]string.
// A nil input yields a nil map.
func ToStringMap(data any) (map[string]string, error) {
	if data == nil {
		return nil, nil
	}
	if m, ok := data.(map[string]string); ok {
		return m, nil
	}
	if mAny, ok := data.(map[string]any); ok {
		result := make(map[string]string, len(mAny))
		for k, v := range mAny {
			switch tv := v.(type) {
			case string:
				result[k] = tv
			case nil:
				result[k] = ""
			case bool, int, int32, int64, float64:
				result[k] = fmt.Sprintf("%v", tv)
			default:
				return nil, fmt.Errorf("key '%s': %w (type %T)", k, errNotStringValue, v)
			}
		}
		return result, nil
	}
	return nil, fmt.Errorf("%w: input type %T", errNotMap, data)
}

// ToSliceOfString converts []string or any other slice to []string,
// formatting elements with %v.
func ToSliceOfString(data any) ([]string, error) {
	if data == nil {
		return []string{}, nil
	}
	if slice, ok := data.([]string); ok {
		return slice, nil
	}

	val := reflect.ValueOf(data)
	if val.Kind() != reflect.Slice {
		return nil, fmt.Errorf("%w: input type %T", errNotSlice, data)
	}

	result := make([]string, 0, val.Len())
	for i := 0; i < val.Len(); i++ {
		result = append(result, fmt.Sprintf("%v", val.Index(i).Interface()))
	}
	return result, nil
}

// ToSnakeMap renders an SDK output shape as a generic map with snake_case
// keys, dropping response envelopes. Timestamps become RFC 3339 strings.
func ToSnakeMap(v any) (map[string]any, error) {
	if v == nil {
		return map[string]any{}, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %T: %w", v, err)
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("unmarshal %T: %w", v, err)
	}
	out, ok := SnakeKeys(generic).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: input type %T", errNotMap, v)
	}
	return out, nil
}

// SnakeKeys rewrites map keys recursively. Values are left untouched.
func SnakeKeys(v any) any {
	switch tv := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(tv))
		for k, val := range tv {
			if _, skip := envelopeFields[k]; skip {
				continue
			}
			out[CamelToSnake(k)] = SnakeKeys(val)
		}
		return out
	case []any:
		out := make([]any, len(tv))
		for i, val := range tv {
			out[i] = SnakeKeys(val)
		}
		return out
	default:
		return v
	}
}

// CamelToSnake converts "VpcId" to "vpc_id" and "IPAddress" to "ip_address".
func CamelToSnake(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// TagListToMap folds a Key/Value tag list, as rendered by ToSnakeMap, into a map.
func TagListToMap(v any) map[string]string {
	out := map[string]string{}
	items, ok := v.([]any)
	if !ok {
		return out
	}
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		k, _ := m["key"].(string)
		if k == "" {
			continue
		}
		val, _ := m["value"].(string)
		out[k] = val
	}
	return out
}
