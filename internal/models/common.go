package models

import "github.com/desertthunder/spotx/internal/codec"

// Image is a cover or avatar image. Dimensions are unknown for some user-uploaded images.
type Image struct {
	URL    string              `json:"url"`
	Width  codec.Optional[int] `json:"width"`
	Height codec.Optional[int] `json:"height"`
}

func DecodeImage(o codec.Object) Image {
	return Image{
		URL:    o.String("url", ""),
		Width:  codec.OptInt(o, "width"),
		Height: codec.OptInt(o, "height"),
	}
}

type ExternalURLs struct {
	Spotify string `json:"spotify"`
}

func DecodeExternalURLs(o codec.Object) ExternalURLs {
	return ExternalURLs{Spotify: o.String("spotify", "")}
}

type ExternalIDs struct {
	ISRC string `json:"isrc,omitempty"`
	EAN  string `json:"ean,omitempty"`
	UPC  string `json:"upc,omitempty"`
}

func DecodeExternalIDs(o codec.Object) ExternalIDs {
	return ExternalIDs{
		ISRC: o.String("isrc", ""),
		EAN:  o.String("ean", ""),
		UPC:  o.String("upc", ""),
	}
}

// Restrictions explains why content is unavailable ("market", "product" or "explicit").
type Restrictions struct {
	Reason string `json:"reason,omitempty"`
}

func DecodeRestrictions(o codec.Object) Restrictions {
	return Restrictions{Reason: o.String("reason", "")}
}

type Followers struct {
	Href  codec.Optional[string] `json:"href"`
	Total int                    `json:"total"`
}

func DecodeFollowers(o codec.Object) Followers {
	return Followers{Href: codec.OptString(o, "href"), Total: o.Int("total", 0)}
}

type Copyright struct {
	Text string `json:"text"`
	Type string `json:"type"`
}

func DecodeCopyright(o codec.Object) Copyright {
	return Copyright{Text: o.String("text", ""), Type: o.String("type", "")}
}

// ResumePoint is the user's listening position within an episode.
type ResumePoint struct {
	FullyPlayed      bool `json:"fully_played"`
	ResumePositionMS int  `json:"resume_position_ms"`
}

func DecodeResumePoint(o codec.Object) ResumePoint {
	return ResumePoint{
		FullyPlayed:      o.Bool("fully_played", false),
		ResumePositionMS: o.Int("resume_position_ms", 0),
	}
}

// ExplicitContent holds the user's explicit content filter settings.
type ExplicitContent struct {
	FilterEnabled bool `json:"filter_enabled"`
	FilterLocked  bool `json:"filter_locked"`
}

func DecodeExplicitContent(o codec.Object) ExplicitContent {
	return ExplicitContent{
		FilterEnabled: o.Bool("filter_enabled", false),
		FilterLocked:  o.Bool("filter_locked", false),
	}
}

// Owner identifies the user that owns a playlist or added an item to it.
type Owner struct {
	ExternalURLs ExternalURLs           `json:"external_urls"`
	Href         string                 `json:"href"`
	ID           string                 `json:"id"`
	Type         string                 `json:"type"`
	URI          string                 `json:"uri"`
	DisplayName  codec.Optional[string] `json:"display_name"`
}

func DecodeOwner(o codec.Object) Owner {
	return Owner{
		ExternalURLs: codec.Nested(o, "external_urls", DecodeExternalURLs),
		Href:         o.String("href", ""),
		ID:           o.String("id", ""),
		Type:         o.String("type", ""),
		URI:          o.String("uri", ""),
		DisplayName:  codec.OptString(o, "display_name"),
	}
}

// Context is the album, artist, playlist or show that playback was started from.
type Context struct {
	Type         string       `json:"type"`
	Href         string       `json:"href"`
	URI          string       `json:"uri"`
	ExternalURLs ExternalURLs `json:"external_urls"`
}

func DecodeContext(o codec.Object) Context {
	return Context{
		Type:         o.String("type", ""),
		Href:         o.String("href", ""),
		URI:          o.String("uri", ""),
		ExternalURLs: codec.Nested(o, "external_urls", DecodeExternalURLs),
	}
}
