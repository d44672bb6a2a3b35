package codec

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"

	"github.com/desertthunder/spotx/internal/shared"
)

// Object is a decoded JSON object. A nil Object behaves like an empty one, so every accessor is safe to call on the
// result of a missing sub-key.
type Object map[string]any

// Decoder maps a JSON object onto a typed record. Decoders never fail: missing or mistyped fields fall back to
// defaults.
type Decoder[T any] func(Object) T

// Parse decodes a response body into an [Object]. Numbers are kept as [json.Number] so 64-bit integers survive.
//
// This is the only step of decoding that can fail: a body that is not valid JSON, or valid JSON that is not an object,
// yields a [shared.DecodeError].
func Parse(data []byte) (Object, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, &shared.DecodeError{Msg: "invalid JSON", Body: data, Err: err}
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return nil, &shared.DecodeError{Msg: "expected a JSON object", Body: data}
	}
	return Object(obj), nil
}

// Has reports whether key is present with a non-null value.
func (o Object) Has(key string) bool {
	v, ok := o[key]
	return ok && v != nil
}

// Raw returns the value stored under key, or nil.
func (o Object) Raw(key string) any {
	return o[key]
}

// String returns the string under key, or def when absent, null or not a string.
func (o Object) String(key, def string) string {
	if s, ok := o[key].(string); ok {
		return s
	}
	return def
}

// Bool returns the boolean under key, or def.
func (o Object) Bool(key string, def bool) bool {
	if b, ok := o[key].(bool); ok {
		return b
	}
	return def
}

// Int returns the integer under key, or def. Fractional numbers are truncated.
func (o Object) Int(key string, def int) int {
	n, ok := toInt64(o[key])
	if !ok || n > math.MaxInt || n < math.MinInt {
		return def
	}
	return int(n)
}

// Int64 returns the 64-bit integer under key, or def.
func (o Object) Int64(key string, def int64) int64 {
	if n, ok := toInt64(o[key]); ok {
		return n
	}
	return def
}

// Float returns the number under key, or def.
func (o Object) Float(key string, def float64) float64 {
	if f, ok := toFloat(o[key]); ok {
		return f
	}
	return def
}

// Object returns the sub-object under key. The second result is false when the key is absent, null or not an object;
// the returned Object is then empty.
func (o Object) Object(key string) (Object, bool) {
	if m, ok := o[key].(map[string]any); ok {
		return Object(m), true
	}
	return Object{}, false
}

// Strings returns the string elements of the array under key in document order. An absent array yields an empty,
// non-nil slice; non-string elements are skipped.
func (o Object) Strings(key string) []string {
	arr, _ := o[key].([]any)
	out := make([]string, 0, len(arr))
	for _, v := range arr {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Bools returns the boolean elements of the array under key.
func (o Object) Bools(key string) []bool {
	arr, _ := o[key].([]any)
	out := make([]bool, 0, len(arr))
	for _, v := range arr {
		if b, ok := v.(bool); ok {
			out = append(out, b)
		}
	}
	return out
}

// Ints returns the integer elements of the array under key.
func (o Object) Ints(key string) []int {
	arr, _ := o[key].([]any)
	out := make([]int, 0, len(arr))
	for _, v := range arr {
		if n, ok := toInt64(v); ok && n <= math.MaxInt && n >= math.MinInt {
			out = append(out, int(n))
		}
	}
	return out
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		f, err := n.Float64()
		if err != nil || math.IsNaN(f) || f >= 1<<63 || f < math.MinInt64 {
			return 0, false
		}
		return int64(f), true
	case float64:
		if math.IsNaN(n) || n >= 1<<63 || n < math.MinInt64 {
			return 0, false
		}
		return int64(n), true
	case int:
		return int64(n), true
	case int64:
		return n, true
	default:
		return 0, false
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := strconv.ParseFloat(n.String(), 64)
		return f, err == nil
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
