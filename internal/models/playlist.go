package models

import "github.com/desertthunder/spotx/internal/codec"

// TrackCollection is the href/total summary of a playlist's items.
type TrackCollection struct {
	Href  string `json:"href"`
	Total int    `json:"total"`
}

func DecodeTrackCollection(o codec.Object) TrackCollection {
	return TrackCollection{Href: o.String("href", ""), Total: o.Int("total", 0)}
}

type SimplifiedPlaylist struct {
	Collaborative bool            `json:"collaborative"`
	Description   string          `json:"description"`
	ExternalURLs  ExternalURLs    `json:"external_urls"`
	Href          string          `json:"href"`
	ID            string          `json:"id"`
	Images        []Image         `json:"images"`
	Name          string          `json:"name"`
	Owner         Owner           `json:"owner"`
	Public        bool            `json:"public"`
	SnapshotID    string          `json:"snapshot_id"`
	Tracks        TrackCollection `json:"tracks"`
	Type          string          `json:"type"`
	URI           string          `json:"uri"`
}

func DecodeSimplifiedPlaylist(o codec.Object) SimplifiedPlaylist {
	return SimplifiedPlaylist{
		Collaborative: o.Bool("collaborative", false),
		Description:   o.String("description", ""),
		ExternalURLs:  codec.Nested(o, "external_urls", DecodeExternalURLs),
		Href:          o.String("href", ""),
		ID:            o.String("id", ""),
		Images:        codec.Array(o, "images", DecodeImage),
		Name:          o.String("name", ""),
		Owner:         codec.Nested(o, "owner", DecodeOwner),
		Public:        o.Bool("public", false),
		SnapshotID:    o.String("snapshot_id", ""),
		Tracks:        codec.Nested(o, "tracks", DecodeTrackCollection),
		Type:          o.String("type", ""),
		URI:           o.String("uri", ""),
	}
}

// PlaylistItem is one entry of a playlist. Track holds either a track or an episode.
type PlaylistItem struct {
	AddedAt string   `json:"added_at"`
	AddedBy Owner    `json:"added_by"`
	IsLocal bool     `json:"is_local"`
	Track   Playable `json:"track"`
}

func DecodePlaylistItem(o codec.Object) PlaylistItem {
	return PlaylistItem{
		AddedAt: o.String("added_at", ""),
		AddedBy: codec.Nested(o, "added_by", DecodeOwner),
		IsLocal: o.Bool("is_local", false),
		Track:   PlayableAt(o, "track"),
	}
}

// Playlist is the full playlist object, including the first page of its items.
type Playlist struct {
	Collaborative bool                         `json:"collaborative"`
	Description   codec.Optional[string]       `json:"description"`
	ExternalURLs  ExternalURLs                 `json:"external_urls"`
	Followers     Followers                    `json:"followers"`
	Href          string                       `json:"href"`
	ID            string                       `json:"id"`
	Images        []Image                      `json:"images"`
	Name          string                       `json:"name"`
	Owner         Owner                        `json:"owner"`
	Public        bool                         `json:"public"`
	SnapshotID    string                       `json:"snapshot_id"`
	Tracks        codec.Envelope[PlaylistItem] `json:"tracks"`
	Type          string                       `json:"type"`
	URI           string                       `json:"uri"`
}

func DecodePlaylist(o codec.Object) Playlist {
	return Playlist{
		Collaborative: o.Bool("collaborative", false),
		Description:   codec.OptString(o, "description"),
		ExternalURLs:  codec.Nested(o, "external_urls", DecodeExternalURLs),
		Followers:     codec.Nested(o, "followers", DecodeFollowers),
		Href:          o.String("href", ""),
		ID:            o.String("id", ""),
		Images:        codec.Array(o, "images", DecodeImage),
		Name:          o.String("name", ""),
		Owner:         codec.Nested(o, "owner", DecodeOwner),
		Public:        o.Bool("public", false),
		SnapshotID:    o.String("snapshot_id", ""),
		Tracks:        codec.Nested(o, "tracks", codec.EnvelopeDecoder(DecodePlaylistItem)),
		Type:          o.String("type", ""),
		URI:           o.String("uri", ""),
	}
}
