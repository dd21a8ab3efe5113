package tile

import (
	"fmt"
	"math"

	"github.com/arloliu/mlt/column"
	"github.com/arloliu/mlt/errs"
	"github.com/arloliu/mlt/format"
)

// toInt64 converts any Go integer, or a float holding an integral value, to int64.
func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), uint64(n) <= math.MaxInt64
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), n <= math.MaxInt64
	case float32:
		return floatToInt64(float64(n))
	case float64:
		return floatToInt64(n)
	default:
		return 0, false
	}
}

func floatToInt64(f float64) (int64, bool) {
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}

	return int64(f), true
}

// toUint64 converts any non-negative Go integer, or a float holding a
// non-negative integral value, to uint64.
func toUint64(v any) (uint64, bool) {
	switch n := v.(type) {
	case uint:
		return uint64(n), true
	case uint8:
		return uint64(n), true
	case uint16:
		return uint64(n), true
	case uint32:
		return uint64(n), true
	case uint64:
		return n, true
	case float32:
		return floatToUint64(float64(n))
	case float64:
		return floatToUint64(n)
	default:
		i, ok := toInt64(v)
		if !ok || i < 0 {
			return 0, false
		}

		return uint64(i), true
	}
}

func floatToUint64(f float64) (uint64, bool) {
	if f != math.Trunc(f) || f < 0 || f >= math.MaxUint64 {
		return 0, false
	}

	return uint64(f), true
}

// toFloat64 converts any Go number to float64.
func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		if i, ok := toInt64(v); ok {
			return float64(i), true
		}
		if u, ok := toUint64(v); ok {
			return float64(u), true
		}

		return 0, false
	}
}

// gather builds a nullable column from one property of every feature,
// converting each non-nil value with conv.
func gather[T any](features []Feature, name string, typ format.DataType, conv func(any) (T, bool)) (column.Nullable[T], error) {
	col := column.NewNullable[T](len(features))
	for i, f := range features {
		raw, ok := f.Properties[name]
		if !ok || raw == nil {
			continue
		}
		v, ok := conv(raw)
		if !ok {
			return column.Nullable[T]{}, fmt.Errorf("%w: feature %d field %q: %T value %v is not a %s",
				errs.ErrSchemaMismatch, i, name, raw, raw, typ)
		}
		col.Set(i, v)
	}

	return col, nil
}

func asBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asInt32(v any) (int32, bool) {
	i, ok := toInt64(v)
	if !ok || i < math.MinInt32 || i > math.MaxInt32 {
		return 0, false
	}

	return int32(i), true
}

func asUint32(v any) (uint32, bool) {
	u, ok := toUint64(v)
	if !ok || u > math.MaxUint32 {
		return 0, false
	}

	return uint32(u), true
}

func asFloat32(v any) (float32, bool) {
	f, ok := toFloat64(v)
	return float32(f), ok
}

// structChild reads one child of a struct property. The struct value may be a
// map[string]any or a map[string]string.
func structChild(v any, child string) (any, bool) {
	switch m := v.(type) {
	case map[string]any:
		c, ok := m[child]
		return c, ok
	case map[string]string:
		c, ok := m[child]
		return c, ok
	default:
		return nil, false
	}
}

func isStructValue(v any) bool {
	switch v.(type) {
	case map[string]any, map[string]string:
		return true
	default:
		return false
	}
}
