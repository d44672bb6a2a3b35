package models

import (
	"strings"

	"github.com/desertthunder/spotx/internal/codec"
)

type SimplifiedArtist struct {
	ExternalURLs ExternalURLs `json:"external_urls"`
	Href         string       `json:"href"`
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Type         string       `json:"type"`
	URI          string       `json:"uri"`
}

func DecodeSimplifiedArtist(o codec.Object) SimplifiedArtist {
	return SimplifiedArtist{
		ExternalURLs: codec.Nested(o, "external_urls", DecodeExternalURLs),
		Href:         o.String("href", ""),
		ID:           o.String("id", ""),
		Name:         o.String("name", ""),
		Type:         o.String("type", ""),
		URI:          o.String("uri", ""),
	}
}

// Artist is the full artist object returned by the followed and top artist endpoints.
type Artist struct {
	SimplifiedArtist
	Followers  Followers `json:"followers"`
	Genres     []string  `json:"genres"`
	Images     []Image   `json:"images"`
	Popularity int       `json:"popularity"`
}

func DecodeArtist(o codec.Object) Artist {
	return Artist{
		SimplifiedArtist: DecodeSimplifiedArtist(o),
		Followers:        codec.Nested(o, "followers", DecodeFollowers),
		Genres:           o.Strings("genres"),
		Images:           codec.Array(o, "images", DecodeImage),
		Popularity:       o.Int("popularity", 0),
	}
}

type SimplifiedAlbum struct {
	AlbumType            string             `json:"album_type"`
	TotalTracks          int                `json:"total_tracks"`
	AvailableMarkets     []string           `json:"available_markets"`
	ExternalURLs         ExternalURLs       `json:"external_urls"`
	Href                 string             `json:"href"`
	ID                   string             `json:"id"`
	Images               []Image            `json:"images"`
	Name                 string             `json:"name"`
	ReleaseDate          string             `json:"release_date"`
	ReleaseDatePrecision string             `json:"release_date_precision"`
	Restrictions         Restrictions       `json:"restrictions"`
	Type                 string             `json:"type"`
	URI                  string             `json:"uri"`
	Artists              []SimplifiedArtist `json:"artists"`
}

func DecodeSimplifiedAlbum(o codec.Object) SimplifiedAlbum {
	return SimplifiedAlbum{
		AlbumType:            o.String("album_type", ""),
		TotalTracks:          o.Int("total_tracks", 0),
		AvailableMarkets:     o.Strings("available_markets"),
		ExternalURLs:         codec.Nested(o, "external_urls", DecodeExternalURLs),
		Href:                 o.String("href", ""),
		ID:                   o.String("id", ""),
		Images:               codec.Array(o, "images", DecodeImage),
		Name:                 o.String("name", ""),
		ReleaseDate:          o.String("release_date", ""),
		ReleaseDatePrecision: o.String("release_date_precision", ""),
		Restrictions:         codec.Nested(o, "restrictions", DecodeRestrictions),
		Type:                 o.String("type", ""),
		URI:                  o.String("uri", ""),
		Artists:              codec.Array(o, "artists", DecodeSimplifiedArtist),
	}
}

// LinkedFrom points at the originally requested track when track relinking substituted another one.
type LinkedFrom struct {
	ExternalURLs ExternalURLs `json:"external_urls"`
	Href         string       `json:"href"`
	ID           string       `json:"id"`
	Type         string       `json:"type"`
	URI          string       `json:"uri"`
}

func DecodeLinkedFrom(o codec.Object) LinkedFrom {
	return LinkedFrom{
		ExternalURLs: codec.Nested(o, "external_urls", DecodeExternalURLs),
		Href:         o.String("href", ""),
		ID:           o.String("id", ""),
		Type:         o.String("type", ""),
		URI:          o.String("uri", ""),
	}
}

type Track struct {
	Album            SimplifiedAlbum        `json:"album"`
	Artists          []SimplifiedArtist     `json:"artists"`
	AvailableMarkets []string               `json:"available_markets"`
	DiscNumber       int                    `json:"disc_number"`
	DurationMS       int                    `json:"duration_ms"`
	Explicit         bool                   `json:"explicit"`
	ExternalIDs      ExternalIDs            `json:"external_ids"`
	ExternalURLs     ExternalURLs           `json:"external_urls"`
	Href             string                 `json:"href"`
	ID               string                 `json:"id"`
	IsPlayable       bool                   `json:"is_playable"`
	LinkedFrom       LinkedFrom             `json:"linked_from"`
	Restrictions     Restrictions           `json:"restrictions"`
	Name             string                 `json:"name"`
	Popularity       int                    `json:"popularity"`
	PreviewURL       codec.Optional[string] `json:"preview_url"`
	TrackNumber      int                    `json:"track_number"`
	Type             string                 `json:"type"`
	URI              string                 `json:"uri"`
	IsLocal          bool                   `json:"is_local"`
}

func DecodeTrack(o codec.Object) Track {
	return Track{
		Album:            codec.Nested(o, "album", DecodeSimplifiedAlbum),
		Artists:          codec.Array(o, "artists", DecodeSimplifiedArtist),
		AvailableMarkets: o.Strings("available_markets"),
		DiscNumber:       o.Int("disc_number", 0),
		DurationMS:       o.Int("duration_ms", 0),
		Explicit:         o.Bool("explicit", false),
		ExternalIDs:      codec.Nested(o, "external_ids", DecodeExternalIDs),
		ExternalURLs:     codec.Nested(o, "external_urls", DecodeExternalURLs),
		Href:             o.String("href", ""),
		ID:               o.String("id", ""),
		IsPlayable:       o.Bool("is_playable", false),
		LinkedFrom:       codec.Nested(o, "linked_from", DecodeLinkedFrom),
		Restrictions:     codec.Nested(o, "restrictions", DecodeRestrictions),
		Name:             o.String("name", ""),
		Popularity:       o.Int("popularity", 0),
		PreviewURL:       codec.OptString(o, "preview_url"),
		TrackNumber:      o.Int("track_number", 0),
		Type:             o.String("type", ""),
		URI:              o.String("uri", ""),
		IsLocal:          o.Bool("is_local", false),
	}
}

// ArtistNames joins the track's artist names with ", ".
func (t Track) ArtistNames() string {
	names := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}

// SavedTrack is a track in the user's library.
type SavedTrack struct {
	AddedAt string `json:"added_at"`
	Track   Track  `json:"track"`
}

func DecodeSavedTrack(o codec.Object) SavedTrack {
	return SavedTrack{
		AddedAt: o.String("added_at", ""),
		Track:   codec.Nested(o, "track", DecodeTrack),
	}
}
