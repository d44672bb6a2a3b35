package codec

// Cursors is the before/after marker pair of a cursor-paged envelope.
type Cursors struct {
	After  Optional[string] `json:"after"`
	Before Optional[string] `json:"before"`
}

// Envelope is a page of items plus its pagination metadata. Exactly one of Offset and Cursors is set, depending on
// which paging style the payload used.
type Envelope[T any] struct {
	Items   []T               `json:"items"`
	Limit   int               `json:"limit"`
	Total   int               `json:"total"`
	Href    Optional[string]  `json:"href"`
	Next    Optional[string]  `json:"next"`
	Prev    Optional[string]  `json:"previous"`
	Offset  Optional[int]     `json:"offset"`
	Cursors Optional[Cursors] `json:"cursors"`

	// Skipped counts elements of "items" that were not objects and were dropped.
	Skipped int `json:"-"`
}

// HasNext reports whether the upstream advertised a next page.
func (e Envelope[T]) HasNext() bool {
	next, ok := e.Next.Get()
	return ok && next != ""
}

// IsCursor reports whether the envelope uses cursor paging.
func (e Envelope[T]) IsCursor() bool {
	return e.Cursors.IsSet()
}

// DecodeEnvelope decodes a paging envelope, using decode for every element of "items".
//
// The paging style is inferred from the payload: a "cursors" object, or top-level "after"/"before" keys, make the
// envelope cursor-paged and Offset stays unset; otherwise an "offset" key populates Offset.
func DecodeEnvelope[T any](o Object, decode Decoder[T]) Envelope[T] {
	items, skipped := ArrayCount(o, "items", decode)
	env := Envelope[T]{
		Items:   items,
		Limit:   o.Int("limit", 0),
		Total:   o.Int("total", 0),
		Href:    OptString(o, "href"),
		Next:    OptString(o, "next"),
		Prev:    OptString(o, "previous"),
		Skipped: skipped,
	}
	if !env.Prev.IsSet() {
		env.Prev = OptString(o, "prev")
	}

	if c, ok := decodeCursors(o); ok {
		env.Cursors = Some(c)
	} else {
		env.Offset = OptInt(o, "offset")
	}
	return env
}

// EnvelopeDecoder lifts an item decoder into a decoder for a whole envelope, for envelopes nested inside records.
func EnvelopeDecoder[T any](decode Decoder[T]) Decoder[Envelope[T]] {
	return func(o Object) Envelope[T] {
		return DecodeEnvelope(o, decode)
	}
}

func decodeCursors(o Object) (Cursors, bool) {
	if sub, ok := o.Object("cursors"); ok {
		return Cursors{After: OptString(sub, "after"), Before: OptString(sub, "before")}, true
	}
	if o.Has("after") || o.Has("before") {
		return Cursors{After: OptString(o, "after"), Before: OptString(o, "before")}, true
	}
	return Cursors{}, false
}
