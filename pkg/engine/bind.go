package engine

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/lowkit/sqlrunner/pkg/sqldrv"
	"github.com/lowkit/sqlrunner/pkg/value"
	"github.com/lowkit/sqlrunner/server/apierror"
)

// bindParams maps every bind value onto the typed parameter-setting protocol
// at its 1-based position. Any failure aborts the whole execution before the
// statement runs; nothing is skipped or retried.
func bindParams(binder sqldrv.ParamBinder, args []any, names []string) error {
	for i, v := range args {
		if err := bindParam(binder, i+1, v); err != nil {
			return apierror.NewBindError(paramLabel(names, i), bindTypeName(err, v), err)
		}
	}
	return nil
}

// bindParam dispatches on the closed value-kind set. Adding a supported bind
// type means adding one arm here and one kind in pkg/value.
func bindParam(binder sqldrv.ParamBinder, index int, v any) error {
	kind, err := value.Classify(v)
	if err != nil {
		return err
	}
	switch kind {
	case value.KindNull:
		return binder.BindNull(index)
	case value.KindInt:
		return binder.BindInt(index, v.(int32))
	case value.KindLong:
		return binder.BindLong(index, value.AsInt64(v))
	case value.KindFloat:
		return binder.BindDecimal(index, value.DecimalString(value.AsFloat64(v)))
	case value.KindBool:
		return binder.BindBool(index, v.(bool))
	case value.KindObject, value.KindArray:
		s, err := value.JSONString(v)
		if err != nil {
			return err
		}
		return binder.BindString(index, s)
	case value.KindString:
		return binder.BindString(index, v.(string))
	}
	return &value.UnsupportedTypeError{TypeName: fmt.Sprintf("%T", v)}
}

func paramLabel(names []string, i int) string {
	if i < len(names) && names[i] != "" {
		return names[i]
	}
	return strconv.Itoa(i + 1)
}

func bindTypeName(err error, v any) string {
	var ute *value.UnsupportedTypeError
	if errors.As(err, &ute) {
		return ute.TypeName
	}
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%T", v)
}
