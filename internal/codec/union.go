package codec

// DiscriminatorKey is the payload field that selects a union variant.
const DiscriminatorKey = "type"

// Variants maps discriminator tags to the decoder for that variant.
type Variants[T any] map[string]Decoder[T]

// Union decodes o through the variant selected by its "type" field. An absent, null, non-string or unrecognized tag
// yields the zero value and false; no default variant is guessed.
func Union[T any](o Object, variants Variants[T]) (T, bool) {
	var zero T
	tag, ok := o[DiscriminatorKey].(string)
	if !ok {
		return zero, false
	}
	decode, ok := variants[tag]
	if !ok {
		return zero, false
	}
	return decode(o), true
}
