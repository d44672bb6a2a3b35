package models

import (
	"encoding/json"

	"github.com/desertthunder/spotx/internal/codec"
)

// Kind tags the variant held by a [Playable].
type Kind int

const (
	KindNone Kind = iota
	KindTrack
	KindEpisode
)

func (k Kind) String() string {
	switch k {
	case KindTrack:
		return "track"
	case KindEpisode:
		return "episode"
	default:
		return "none"
	}
}

// Playable is a position that may hold a track or an episode. Exactly the pointer matching Kind is non-nil; KindNone
// means the item was absent, null or of an unknown type.
type Playable struct {
	Kind    Kind
	Track   *Track
	Episode *Episode
}

var playableVariants = codec.Variants[Playable]{
	"track": func(o codec.Object) Playable {
		t := DecodeTrack(o)
		return Playable{Kind: KindTrack, Track: &t}
	},
	"episode": func(o codec.Object) Playable {
		e := DecodeEpisode(o)
		return Playable{Kind: KindEpisode, Episode: &e}
	},
}

// DecodePlayable dispatches on the object's "type" field. Unknown tags decode to KindNone.
func DecodePlayable(o codec.Object) Playable {
	p, _ := codec.Union(o, playableVariants)
	return p
}

// PlayableAt decodes the union stored under key. Absent and null values decode to KindNone.
func PlayableAt(o codec.Object, key string) Playable {
	sub, ok := o.Object(key)
	if !ok {
		return Playable{}
	}
	return DecodePlayable(sub)
}

func (p Playable) IsNone() bool { return p.Kind == KindNone }

// Name returns the track or episode name.
func (p Playable) Name() string {
	switch p.Kind {
	case KindTrack:
		return p.Track.Name
	case KindEpisode:
		return p.Episode.Name
	}
	return ""
}

// Creator returns the track's artists or the episode's show name.
func (p Playable) Creator() string {
	switch p.Kind {
	case KindTrack:
		return p.Track.ArtistNames()
	case KindEpisode:
		return p.Episode.Show.Name
	}
	return ""
}

func (p Playable) URI() string {
	switch p.Kind {
	case KindTrack:
		return p.Track.URI
	case KindEpisode:
		return p.Episode.URI
	}
	return ""
}

func (p Playable) DurationMS() int {
	switch p.Kind {
	case KindTrack:
		return p.Track.DurationMS
	case KindEpisode:
		return p.Episode.DurationMS
	}
	return 0
}

// MarshalJSON renders the held variant, or null for KindNone.
func (p Playable) MarshalJSON() ([]byte, error) {
	switch p.Kind {
	case KindTrack:
		return json.Marshal(p.Track)
	case KindEpisode:
		return json.Marshal(p.Episode)
	default:
		return []byte("null"), nil
	}
}
