package queryengine

import (
	"fmt"
	"reflect"
	"strconv"
	"time"
)

// comparableValue coerces a filter value into something the range operators
// can compare: numbers pass through, strings are parsed as numbers or
// RFC 3339 timestamps. A value that cannot be coerced fails the whole call;
// silently truncating a malformed bound would return a wrong page.
func comparableValue(v any) (any, error) {
	switch vv := v.(type) {
	case nil:
		return nil, fmt.Errorf("queryengine: range operator requires a value")
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return vv, nil
	case time.Time:
		return vv, nil
	case string:
		if n, err := strconv.ParseFloat(vv, 64); err == nil {
			return n, nil
		}
		if t, err := time.Parse(time.RFC3339, vv); err == nil {
			return t, nil
		}
		return nil, fmt.Errorf("queryengine: %q is not a number or RFC 3339 timestamp", vv)
	default:
		return nil, fmt.Errorf("queryengine: cannot compare value of type %T", v)
	}
}

// setValues expands a filter value into the member list for In/NotIn.
// Slices and arrays expand element-wise; any other value becomes a
// single-member set.
func setValues(v any) []any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return []any{v}
	}
	out := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

// patternValue renders a filter value as the string body of a LIKE pattern.
func patternValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
