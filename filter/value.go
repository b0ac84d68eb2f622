package filter

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/scalar"
)

// timeLayouts are accepted for string values compared against temporal columns.
var timeLayouts = []string{time.RFC3339Nano, time.DateTime, time.DateOnly}

// isCollection reports whether v holds several values (slice, array or map).
// Strings and []byte are scalars.
func isCollection(v any) bool {
	if v == nil {
		return false
	}
	if _, ok := v.([]byte); ok {
		return false
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return true
	}
	return false
}

// normalizeValue converts decoded wire values to the canonical Go types:
// int64, uint64 (only above MaxInt64), float64, bool, string, time.Time,
// and []any for collections.
func normalizeValue(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case uint:
		return normalizeUint(uint64(x))
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		return normalizeUint(x)
	case float32:
		return float64(x)
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = normalizeValue(item)
		}
		return out
	default:
		return v
	}
}

func normalizeUint(u uint64) any {
	if u <= math.MaxInt64 {
		return int64(u)
	}
	return u
}

// formatValue renders a scalar the way it appears in canonical strings.
func formatValue(v any) string {
	switch x := normalizeValue(v).(type) {
	case nil:
		return "None"
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float64:
		return formatFloat(x)
	case time.Time:
		return x.Format(time.DateTime)
	default:
		return fmt.Sprint(x)
	}
}

// formatFloat keeps integral floats distinguishable from integers:
// 15.0 renders as "15.0", 1e+16 and beyond switch to exponent form.
func formatFloat(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e16 {
		return strconv.FormatFloat(f, 'f', 1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// checkScalar validates that v can be used as a comparison operand.
func checkScalar(v any) error {
	if isCollection(v) {
		return fmt.Errorf("%w: got %T", ErrInvalidValueKind, v)
	}
	switch normalizeValue(v).(type) {
	case bool, int64, uint64, float64, string, time.Time:
		return nil
	case nil:
		return fmt.Errorf("%w: null", ErrUnsupportedValue)
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}
}

// scalarFor converts v to an Arrow scalar comparable with a column of type dt.
// Numeric types are left to the compute kernels' implicit casts; temporal
// columns get a scalar of the exact column type. Date columns only accept
// values at midnight.
func scalarFor(v any, dt arrow.DataType) (scalar.Scalar, error) {
	v = normalizeValue(v)

	switch typ := dt.(type) {
	case *arrow.TimestampType:
		t, err := asTime(v)
		if err != nil {
			return nil, err
		}
		ts, err := arrow.TimestampFromTime(t, typ.Unit)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedValue, err)
		}
		return scalar.NewTimestampScalar(ts, typ), nil
	case *arrow.Date32Type:
		t, err := asTime(v)
		if err != nil {
			return nil, err
		}
		if h, m, sec := t.Clock(); h != 0 || m != 0 || sec != 0 || t.Nanosecond() != 0 {
			return nil, fmt.Errorf("%w: %s has a time of day, %s column holds dates only",
				ErrUnsupportedValue, t.Format(time.RFC3339Nano), dt)
		}
		return scalar.NewDate32Scalar(arrow.Date32FromTime(t)), nil
	}

	switch x := v.(type) {
	case bool:
		return scalar.NewBooleanScalar(x), nil
	case int64:
		return scalar.NewInt64Scalar(x), nil
	case uint64:
		return scalar.NewUint64Scalar(x), nil
	case float64:
		return scalar.NewFloat64Scalar(x), nil
	case string:
		return scalar.NewStringScalar(x), nil
	case time.Time:
		return nil, fmt.Errorf("%w: time value against %s column", ErrUnsupportedValue, dt)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}
}

func asTime(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case string:
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, x); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("%w: cannot parse %q as time", ErrUnsupportedValue, x)
	default:
		return time.Time{}, fmt.Errorf("%w: %T against temporal column", ErrUnsupportedValue, v)
	}
}
