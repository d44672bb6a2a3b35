package models

import "github.com/desertthunder/spotx/internal/codec"

type SimplifiedShow struct {
	AvailableMarkets   []string     `json:"available_markets"`
	Copyrights         []Copyright  `json:"copyrights"`
	Description        string       `json:"description"`
	HTMLDescription    string       `json:"html_description"`
	Explicit           bool         `json:"explicit"`
	ExternalURLs       ExternalURLs `json:"external_urls"`
	Href               string       `json:"href"`
	ID                 string       `json:"id"`
	Images             []Image      `json:"images"`
	IsExternallyHosted bool         `json:"is_externally_hosted"`
	Languages          []string     `json:"languages"`
	MediaType          string       `json:"media_type"`
	Name               string       `json:"name"`
	Publisher          string       `json:"publisher"`
	Type               string       `json:"type"`
	URI                string       `json:"uri"`
	TotalEpisodes      int          `json:"total_episodes"`
}

func DecodeSimplifiedShow(o codec.Object) SimplifiedShow {
	return SimplifiedShow{
		AvailableMarkets:   o.Strings("available_markets"),
		Copyrights:         codec.Array(o, "copyrights", DecodeCopyright),
		Description:        o.String("description", ""),
		HTMLDescription:    o.String("html_description", ""),
		Explicit:           o.Bool("explicit", false),
		ExternalURLs:       codec.Nested(o, "external_urls", DecodeExternalURLs),
		Href:               o.String("href", ""),
		ID:                 o.String("id", ""),
		Images:             codec.Array(o, "images", DecodeImage),
		IsExternallyHosted: o.Bool("is_externally_hosted", false),
		Languages:          o.Strings("languages"),
		MediaType:          o.String("media_type", ""),
		Name:               o.String("name", ""),
		Publisher:          o.String("publisher", ""),
		Type:               o.String("type", ""),
		URI:                o.String("uri", ""),
		TotalEpisodes:      o.Int("total_episodes", 0),
	}
}

type Episode struct {
	AudioPreviewURL      codec.Optional[string] `json:"audio_preview_url"`
	Description          string                 `json:"description"`
	HTMLDescription      string                 `json:"html_description"`
	DurationMS           int                    `json:"duration_ms"`
	Explicit             bool                   `json:"explicit"`
	ExternalURLs         ExternalURLs           `json:"external_urls"`
	Href                 string                 `json:"href"`
	ID                   string                 `json:"id"`
	Images               []Image                `json:"images"`
	IsExternallyHosted   bool                   `json:"is_externally_hosted"`
	IsPlayable           bool                   `json:"is_playable"`
	Languages            []string               `json:"languages"`
	Name                 string                 `json:"name"`
	ReleaseDate          string                 `json:"release_date"`
	ReleaseDatePrecision string                 `json:"release_date_precision"`
	ResumePoint          ResumePoint            `json:"resume_point"`
	Type                 string                 `json:"type"`
	URI                  string                 `json:"uri"`
	Restrictions         Restrictions           `json:"restrictions"`
	Show                 SimplifiedShow         `json:"show"`
}

func DecodeEpisode(o codec.Object) Episode {
	return Episode{
		AudioPreviewURL:      codec.OptString(o, "audio_preview_url"),
		Description:          o.String("description", ""),
		HTMLDescription:      o.String("html_description", ""),
		DurationMS:           o.Int("duration_ms", 0),
		Explicit:             o.Bool("explicit", false),
		ExternalURLs:         codec.Nested(o, "external_urls", DecodeExternalURLs),
		Href:                 o.String("href", ""),
		ID:                   o.String("id", ""),
		Images:               codec.Array(o, "images", DecodeImage),
		IsExternallyHosted:   o.Bool("is_externally_hosted", false),
		IsPlayable:           o.Bool("is_playable", false),
		Languages:            o.Strings("languages"),
		Name:                 o.String("name", ""),
		ReleaseDate:          o.String("release_date", ""),
		ReleaseDatePrecision: o.String("release_date_precision", ""),
		ResumePoint:          codec.Nested(o, "resume_point", DecodeResumePoint),
		Type:                 o.String("type", ""),
		URI:                  o.String("uri", ""),
		Restrictions:         codec.Nested(o, "restrictions", DecodeRestrictions),
		Show:                 codec.Nested(o, "show", DecodeSimplifiedShow),
	}
}

// SavedEpisode is an episode in the user's library.
type SavedEpisode struct {
	AddedAt string  `json:"added_at"`
	Episode Episode `json:"episode"`
}

func DecodeSavedEpisode(o codec.Object) SavedEpisode {
	return SavedEpisode{
		AddedAt: o.String("added_at", ""),
		Episode: codec.Nested(o, "episode", DecodeEpisode),
	}
}
