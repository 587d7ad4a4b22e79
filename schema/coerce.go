package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrTypeMismatch is returned when a value cannot be represented as the
// declared type of its field.
var ErrTypeMismatch = errors.New("type mismatch")

// Timestamps are kept at millisecond precision so every backend round-trips
// them unchanged.
const timestampPrecision = time.Millisecond

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// Coerce converts a decoded value into the canonical Go type for f:
// int64 for integers, decimal.Decimal for decimals, string, and UTC
// time.Time for timestamps. A nil value is returned unchanged.
func Coerce(f Field, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	var (
		out any
		ok  bool
	)
	switch f.Type {
	case TypeInteger:
		out, ok = toInteger(v)
	case TypeDecimal:
		out, ok = toDecimal(v)
	case TypeString:
		out, ok = toString(v)
	case TypeTimestamp:
		out, ok = toTimestamp(v)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s expects %s, got %T", ErrTypeMismatch, f.Name, f.Type, v)
	}
	return out, nil
}

// Parse converts a raw string, such as a query parameter, into the canonical
// type for f. The literal "null" parses to nil.
func Parse(f Field, raw string) (any, error) {
	if raw == "null" {
		return nil, nil
	}
	switch f.Type {
	case TypeInteger:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s expects integer, got %q", ErrTypeMismatch, f.Name, raw)
		}
		return n, nil
	case TypeDecimal:
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s expects decimal, got %q", ErrTypeMismatch, f.Name, raw)
		}
		return d, nil
	default:
		return Coerce(f, raw)
	}
}

// Normalize returns a copy of doc with every declared field coerced to its
// canonical type. Values that cannot be coerced are kept as they are.
// Optional fields holding null are dropped and missing nullable fields are
// set to null, so documents from every backend share one shape.
func (s Schema) Normalize(doc map[string]any) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	for _, f := range s.Fields {
		v, present := out[f.Name]
		switch {
		case !present || v == nil:
			if f.Nullable {
				out[f.Name] = nil
			} else if present {
				delete(out, f.Name)
			}
		default:
			if cv, err := Coerce(f, v); err == nil {
				out[f.Name] = cv
			}
		}
	}
	return out
}

// Equal reports whether two field values are equal, treating every numeric
// representation of the same number as equal.
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if ai, ok := toInteger(a); ok {
		if bi, ok := toInteger(b); ok {
			return ai == bi
		}
	}
	if ad, ok := toNumber(a); ok {
		bd, ok := toNumber(b)
		return ok && ad.Equal(bd)
	}
	_, aTime := a.(time.Time)
	_, bTime := b.(time.Time)
	if aTime || bTime {
		at, aok := toTimestamp(a)
		bt, bok := toTimestamp(b)
		return aok && bok && at.(time.Time).Equal(bt.(time.Time))
	}
	as, aok := toString(a)
	bs, bok := toString(b)
	return aok && bok && as == bs
}

// toNumber accepts numeric values only; decimal strings are not numbers here.
func toNumber(v any) (decimal.Decimal, bool) {
	switch v.(type) {
	case string, []byte:
		return decimal.Decimal{}, false
	}
	d, ok := toDecimal(v)
	if !ok {
		return decimal.Decimal{}, false
	}
	return d.(decimal.Decimal), true
}

func toInteger(v any) (any, bool) {
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
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return nil, false
		}
		return int64(n), true
	case float32:
		return wholeFloat(float64(n))
	case float64:
		return wholeFloat(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		return nil, false
	}
	// Named integer types such as typed identifiers.
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	}
	return nil, false
}

// wholeFloat converts f when it is a whole number in int64 range. The
// upper bound is exclusive: float64(math.MaxInt64) rounds up to 2^63.
func wholeFloat(f float64) (any, bool) {
	if f != math.Trunc(f) || f >= 1<<63 || f < -(1<<63) {
		return nil, false
	}
	return int64(f), true
}

// toDecimal rejects NaN and infinities, which have no decimal form.
func toDecimal(v any) (any, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, false
		}
		return decimal.NewFromFloat(n), true
	case float32:
		return toDecimal(float64(n))
	case decimal.Decimal:
		return n, true
	case json.Number:
		return toDecimal(string(n))
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(n))
		if err != nil {
			return nil, false
		}
		return d, true
	case []byte:
		return toDecimal(string(n))
	}
	if i, ok := toInteger(v); ok {
		return decimal.NewFromInt(i.(int64)), true
	}
	return nil, false
}

func toString(v any) (any, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case []byte:
		return string(s), true
	}
	// Named string types such as enumerations.
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.String {
		return rv.String(), true
	}
	return nil, false
}

func toTimestamp(v any) (any, bool) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC().Truncate(timestampPrecision), true
	case *time.Time:
		if t == nil {
			return nil, false
		}
		return t.UTC().Truncate(timestampPrecision), true
	case []byte:
		return toTimestamp(string(t))
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range timestampLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed.UTC().Truncate(timestampPrecision), true
			}
		}
	}
	return nil, false
}
