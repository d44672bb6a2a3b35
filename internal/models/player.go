package models

import (
	"fmt"

	"github.com/desertthunder/spotx/internal/codec"
)

// Device is a Spotify Connect target. Name and Type default to "Unknown".
type Device struct {
	ID               codec.Optional[string] `json:"id"`
	IsActive         bool                   `json:"is_active"`
	IsPrivateSession bool                   `json:"is_private_session"`
	IsRestricted     bool                   `json:"is_restricted"`
	Name             string                 `json:"name"`
	Type             string                 `json:"type"`
	VolumePercent    codec.Optional[int]    `json:"volume_percent"`
	SupportsVolume   bool                   `json:"supports_volume"`
}

func DecodeDevice(o codec.Object) Device {
	return Device{
		ID:               codec.OptString(o, "id"),
		IsActive:         o.Bool("is_active", false),
		IsPrivateSession: o.Bool("is_private_session", false),
		IsRestricted:     o.Bool("is_restricted", false),
		Name:             o.String("name", "Unknown"),
		Type:             o.String("type", "Unknown"),
		VolumePercent:    codec.OptInt(o, "volume_percent"),
		SupportsVolume:   o.Bool("supports_volume", false),
	}
}

// Actions lists which player controls are currently allowed. The API reports the inverse ("disallows"), so every
// action not marked as disallowed is allowed.
type Actions struct {
	InterruptingPlayback  bool `json:"interrupting_playback"`
	Pausing               bool `json:"pausing"`
	Resuming              bool `json:"resuming"`
	Seeking               bool `json:"seeking"`
	SkippingNext          bool `json:"skipping_next"`
	SkippingPrev          bool `json:"skipping_prev"`
	TogglingRepeatContext bool `json:"toggling_repeat_context"`
	TogglingShuffle       bool `json:"toggling_shuffle"`
	TogglingRepeatTrack   bool `json:"toggling_repeat_track"`
	TransferringPlayback  bool `json:"transferring_playback"`
}

func DecodeActions(o codec.Object) Actions {
	dis, _ := o.Object("disallows")
	allowed := func(key string) bool { return !dis.Bool(key, false) }
	return Actions{
		InterruptingPlayback:  allowed("interrupting_playback"),
		Pausing:               allowed("pausing"),
		Resuming:              allowed("resuming"),
		Seeking:               allowed("seeking"),
		SkippingNext:          allowed("skipping_next"),
		SkippingPrev:          allowed("skipping_prev"),
		TogglingRepeatContext: allowed("toggling_repeat_context"),
		TogglingShuffle:       allowed("toggling_shuffle"),
		TogglingRepeatTrack:   allowed("toggling_repeat_track"),
		TransferringPlayback:  allowed("transferring_playback"),
	}
}

// RepeatState is the player's repeat mode.
type RepeatState string

const (
	RepeatOff     RepeatState = "off"
	RepeatTrack   RepeatState = "track"
	RepeatContext RepeatState = "context"
)

// ParseRepeatState maps a wire value onto a [RepeatState]. Unknown values are treated as [RepeatOff].
func ParseRepeatState(s string) RepeatState {
	switch RepeatState(s) {
	case RepeatTrack:
		return RepeatTrack
	case RepeatContext:
		return RepeatContext
	default:
		return RepeatOff
	}
}

// PlaybackState is the response of the player and currently-playing endpoints.
//
// Item is decoded from the item's own "type" field. CurrentlyPlayingType is kept as reported and may be "ad" or
// "unknown" while Item is KindNone.
type PlaybackState struct {
	Device               Device                  `json:"device"`
	RepeatState          RepeatState             `json:"repeat_state"`
	ShuffleState         bool                    `json:"shuffle_state"`
	Context              codec.Optional[Context] `json:"context"`
	Timestamp            int64                   `json:"timestamp"`
	ProgressMS           codec.Optional[int]     `json:"progress_ms"`
	IsPlaying            bool                    `json:"is_playing"`
	Item                 Playable                `json:"item"`
	CurrentlyPlayingType string                  `json:"currently_playing_type"`
	Actions              Actions                 `json:"actions"`
}

func DecodePlaybackState(o codec.Object) PlaybackState {
	return PlaybackState{
		Device:               codec.Nested(o, "device", DecodeDevice),
		RepeatState:          ParseRepeatState(o.String("repeat_state", "")),
		ShuffleState:         o.Bool("shuffle_state", false),
		Context:              codec.OptObject(o, "context", DecodeContext),
		Timestamp:            o.Int64("timestamp", 0),
		ProgressMS:           codec.OptInt(o, "progress_ms"),
		IsPlaying:            o.Bool("is_playing", false),
		Item:                 PlayableAt(o, "item"),
		CurrentlyPlayingType: o.String("currently_playing_type", ""),
		Actions:              codec.Nested(o, "actions", DecodeActions),
	}
}

// Progress renders position and duration as "m:ss / m:ss".
func (s PlaybackState) Progress() string {
	return fmt.Sprintf("%s / %s", FormatDuration(s.ProgressMS.OrElse(0)), FormatDuration(s.Item.DurationMS()))
}

// Queue is the user's playback queue. Entries with an unknown type stay in place as KindNone.
type Queue struct {
	CurrentlyPlaying Playable   `json:"currently_playing"`
	Queue            []Playable `json:"queue"`
}

func DecodeQueue(o codec.Object) Queue {
	raw, _ := o.Raw("queue").([]any)
	queue := make([]Playable, 0, len(raw))
	for _, v := range raw {
		m, _ := v.(map[string]any)
		queue = append(queue, DecodePlayable(codec.Object(m)))
	}
	return Queue{CurrentlyPlaying: PlayableAt(o, "currently_playing"), Queue: queue}
}

// PlayHistory is one entry of the recently played list.
type PlayHistory struct {
	Track    Track                   `json:"track"`
	PlayedAt string                  `json:"played_at"`
	Context  codec.Optional[Context] `json:"context"`
}

func DecodePlayHistory(o codec.Object) PlayHistory {
	return PlayHistory{
		Track:    codec.Nested(o, "track", DecodeTrack),
		PlayedAt: o.String("played_at", ""),
		Context:  codec.OptObject(o, "context", DecodeContext),
	}
}

// FormatDuration renders milliseconds as m:ss, or h:mm:ss from one hour.
func FormatDuration(ms int) string {
	if ms < 0 {
		ms = 0
	}
	total := ms / 1000
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
