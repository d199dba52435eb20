// Package value classifies request parameter values into the closed set of
// kinds the engine knows how to bind and render.
package value

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
)

// Kind is the bind category of a runtime value.
type Kind int

// Supported value kinds.
const (
	KindNull   Kind = iota // SQL NULL
	KindInt                // 32-bit integer
	KindLong               // 64-bit integer
	KindFloat              // single or double precision
	KindBool               // boolean
	KindString             // string
	KindObject             // map, serialized as JSON
	KindArray              // slice or array, serialized as JSON
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInt:
		return "int"
	case KindLong:
		return "long"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	}
	return "unknown"
}

// UnsupportedTypeError reports a value whose runtime type has no bind mapping.
type UnsupportedTypeError struct {
	TypeName string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported value type %s", e.TypeName)
}

// Classify maps a runtime value onto its bind kind. Raw byte slices are
// deliberately not treated as arrays: binary blobs have no bind mapping.
func Classify(v any) (Kind, error) {
	switch v.(type) {
	case nil:
		return KindNull, nil
	case int32:
		return KindInt, nil
	case int, int64:
		return KindLong, nil
	case float32, float64:
		return KindFloat, nil
	case bool:
		return KindBool, nil
	case string:
		return KindString, nil
	case []byte:
		return 0, &UnsupportedTypeError{TypeName: fmt.Sprintf("%T", v)}
	}

	switch reflect.TypeOf(v).Kind() {
	case reflect.Map:
		return KindObject, nil
	case reflect.Slice, reflect.Array:
		return KindArray, nil
	default:
		return 0, &UnsupportedTypeError{TypeName: fmt.Sprintf("%T", v)}
	}
}

// AsInt64 widens any supported integer value to int64.
func AsInt64(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	}
	return 0
}

// AsFloat64 widens any supported float value to float64.
func AsFloat64(v any) float64 {
	switch f := v.(type) {
	case float32:
		return float64(f)
	case float64:
		return f
	}
	return 0
}

// DecimalString renders a float as its shortest exact decimal literal,
// avoiding binary-float rounding drift when the driver parses it back.
func DecimalString(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// JSONString serializes a map or collection value for string binding.
func JSONString(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Literal renders a value's textual form for direct substitution into SQL
// text. Strings are emitted raw, without quoting: callers using text mode
// have opted out of parameter binding entirely.
func Literal(v any) (string, error) {
	kind, err := Classify(v)
	if err != nil {
		return "", err
	}
	switch kind {
	case KindNull:
		return "null", nil
	case KindInt, KindLong:
		return strconv.FormatInt(AsInt64(v), 10), nil
	case KindFloat:
		return DecimalString(AsFloat64(v)), nil
	case KindBool:
		return strconv.FormatBool(v.(bool)), nil
	case KindString:
		return v.(string), nil
	case KindObject, KindArray:
		return JSONString(v)
	}
	return "", &UnsupportedTypeError{TypeName: fmt.Sprintf("%T", v)}
}
