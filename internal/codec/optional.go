package codec

import "encoding/json"

// Optional holds a value that may be "not set". Absent and explicit null fields both decode to not set.
type Optional[T any] struct {
	value T
	set   bool
}

// Some returns a set Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// None returns an unset Optional.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the value and whether it is set.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

// IsSet reports whether a value is present.
func (o Optional[T]) IsSet() bool {
	return o.set
}

// OrElse returns the value, or def when not set.
func (o Optional[T]) OrElse(def T) T {
	if o.set {
		return o.value
	}
	return def
}

// MarshalJSON renders an unset Optional as null.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.set {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// OptString reads an optional string field.
func OptString(o Object, key string) Optional[string] {
	if s, ok := o[key].(string); ok {
		return Some(s)
	}
	return None[string]()
}

// OptBool reads an optional boolean field.
func OptBool(o Object, key string) Optional[bool] {
	if b, ok := o[key].(bool); ok {
		return Some(b)
	}
	return None[bool]()
}

// OptInt reads an optional integer field.
func OptInt(o Object, key string) Optional[int] {
	if _, ok := toInt64(o[key]); !ok {
		return None[int]()
	}
	return Some(o.Int(key, 0))
}

// OptInt64 reads an optional 64-bit integer field.
func OptInt64(o Object, key string) Optional[int64] {
	if n, ok := toInt64(o[key]); ok {
		return Some(n)
	}
	return None[int64]()
}

// OptObject decodes an optional nested record. Absent, null and non-object values are not set.
func OptObject[T any](o Object, key string, decode Decoder[T]) Optional[T] {
	sub, ok := o.Object(key)
	if !ok {
		return None[T]()
	}
	return Some(decode(sub))
}

// Nested always decodes the record under key. When the sub-key is absent the record is decoded from an empty object,
// leaving every field at its default.
func Nested[T any](o Object, key string, decode Decoder[T]) T {
	sub, _ := o.Object(key)
	return decode(sub)
}

// Array decodes the array of records under key in document order, skipping elements that are not objects.
func Array[T any](o Object, key string, decode Decoder[T]) []T {
	items, _ := ArrayCount(o, key, decode)
	return items
}

// ArrayCount is [Array] that also reports how many elements were skipped. An absent array yields an empty, non-nil
// slice.
func ArrayCount[T any](o Object, key string, decode Decoder[T]) ([]T, int) {
	arr, _ := o[key].([]any)
	out := make([]T, 0, len(arr))
	skipped := 0
	for _, v := range arr {
		m, ok := v.(map[string]any)
		if !ok {
			skipped++
			continue
		}
		out = append(out, decode(Object(m)))
	}
	return out, skipped
}
