// Package codec decodes Spotify Web API responses into typed records.
//
// Decoding is lenient: an [Object] accessor that finds a missing, null or mistyped value returns the caller's
// default, [Optional] distinguishes "not set" from a zero value, and arrays skip elements that are not objects.
// [Union] dispatches on an item's "type" field and [Envelope] covers both offset and cursor paging.
//
// Only [Parse] can fail.
package codec
