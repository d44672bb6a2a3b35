// Package models defines the Spotify Web API records returned by the client and the decoders that build them.
//
// Every record has a matching Decode function of type [codec.Decoder]. Decoders are total: missing or mistyped
// fields fall back to defaults and nothing in this package returns an error. The records fall into three groups:
//
// 1. Shared objects embedded everywhere
//   - [Image], [ExternalURLs], [ExternalIDs], [Restrictions], [Followers], [Copyright], [ResumePoint]
//
// 2. Catalog and library objects
//   - [Track], [Episode], [Artist], [SimplifiedAlbum], [SimplifiedShow], [Playlist], [User]
//   - [SavedTrack], [SavedEpisode], [PlaylistItem], [PlayHistory]
//
// 3. Player objects
//   - [PlaybackState], [Device], [Actions], [Queue]
//
// Track-or-episode positions are represented by [Playable], a tagged variant selected by the item's "type" field.
//
// [Token] is the persisted OAuth token state and [TokenStore] is the persistence interface implemented in the
// repositories package.
package models
